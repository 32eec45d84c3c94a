package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSequenceRepositoryNextIsSingleUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSequenceRepository(db)
	columns := []string{"entity", "organization_id", "last_id", "prefix", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (entity, organization_id)")).
		WithArgs("Quotes", "org-1", nil, nil, "Q-", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("Quotes", "org-1", 1, "Q-", time.Now()))
	first, err := repo.Next(context.Background(), NextParams{Entity: "Quotes", OrganizationID: "org-1", DefaultPrefix: "Q-"})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.LastID)
	require.Equal(t, "Q-", first.Prefix)

	explicit := int64(40)
	prefix := "QT-"
	mock.ExpectQuery(regexp.QuoteMeta("last_id = COALESCE($3::bigint, last_inserted_ids.last_id + 1)")).
		WithArgs("Quotes", "org-1", explicit, prefix, "Q-", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("Quotes", "org-1", 40, "QT-", time.Now()))
	second, err := repo.Next(context.Background(), NextParams{
		Entity: "Quotes", OrganizationID: "org-1", DefaultPrefix: "Q-", ExplicitID: &explicit, Prefix: &prefix,
	})
	require.NoError(t, err)
	require.Equal(t, int64(40), second.LastID)
	require.Equal(t, "QT-", second.Prefix)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSequenceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM last_inserted_ids WHERE entity = $1 AND organization_id = $2")).
		WithArgs("Bookings", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{"entity", "organization_id", "last_id", "prefix", "updated_at"}).
			AddRow("Bookings", "org-1", 7, "BK-", time.Now()))

	counter, err := repo.Get(context.Background(), "Bookings", "org-1")
	require.NoError(t, err)
	require.Equal(t, int64(7), counter.LastID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepositorySetPrefixKeepsCounter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSequenceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DO UPDATE SET prefix = EXCLUDED.prefix, updated_at = EXCLUDED.updated_at")).
		WithArgs("Quotes", "org-1", "QT-", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetPrefix(context.Background(), "Quotes", "org-1", "QT-"))
	require.NoError(t, mock.ExpectationsWereMet())
}
