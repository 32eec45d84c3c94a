package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-api/internal/models"
)

func TestNotificationRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	next := models.ApprovalVerified
	n := &models.Notification{
		OrganizationID: "org-1",
		Feature:        "quotes",
		Stage:          models.ApprovalReviewed,
		NextLevel:      &next,
		Title:          "Quote Q-01 awaiting verified",
		Message:        "Quote Q-01 was reviewed",
		Link:           "/quotes/doc-1",
		DocumentID:     "doc-1",
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), n))
	require.NotEmpty(t, n.ID)

	columns := []string{"id", "organization_id", "company_id", "feature", "stage", "next_level", "title", "message", "link", "document_id", "read_at", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE organization_id = $1 AND company_id = $2 AND read_at IS NULL ORDER BY created_at DESC LIMIT 50 OFFSET 0")).
		WithArgs("org-1", "co-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(n.ID, "org-1", "co-1", "quotes", "reviewed", "verified", n.Title, n.Message, n.Link, "doc-1", nil, time.Now()))

	items, err := repo.List(context.Background(), models.NotificationFilter{OrganizationID: "org-1", CompanyID: "co-1", UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.ApprovalVerified, *items[0].NextLevel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read_at = $3")).
		WithArgs("n-1", "org-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRead(context.Background(), "org-1", "n-1", now))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read_at = $3")).
		WithArgs("n-1", "org-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.MarkRead(context.Background(), "org-1", "n-1", now), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
