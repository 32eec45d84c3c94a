package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-api/internal/models"
)

func TestApprovalPolicyRepositorySeed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApprovalPolicyRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (organization_id, feature) DO NOTHING")).
		WithArgs("org-1", "leavemanagement", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (organization_id, feature) DO NOTHING")).
		WithArgs("org-1", "quotes", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.Seed(context.Background(), "org-1", []string{"leavemanagement", "quotes"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovalPolicyRepositorySeedRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApprovalPolicyRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO approval_policies")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	require.Error(t, repo.Seed(context.Background(), "org-1", []string{"offer"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovalPolicyRepositoryListAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApprovalPolicyRepository(db)
	columns := []string{"organization_id", "feature", "reviewed", "verified", "acknowledged", "approved1", "approved2", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM approval_policies WHERE organization_id = $1 ORDER BY feature ASC")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("org-1", "booking", false, false, false, false, false, time.Now()).
			AddRow("org-1", "quotes", true, true, false, true, false, time.Now()))

	policies, err := repo.List(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, policies, 2)
	require.False(t, policies[0].Enabled())
	require.True(t, policies[1].Enabled())

	mock.ExpectQuery(regexp.QuoteMeta("FROM approval_policies WHERE organization_id = $1 AND feature = $2")).
		WithArgs("org-1", "quotes").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("org-1", "quotes", true, true, false, true, false, time.Now()))
	policy, err := repo.Get(context.Background(), "org-1", "quotes")
	require.NoError(t, err)
	require.Equal(t, models.ApprovalVerified, policy.NextLevel(models.ApprovalReviewed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovalPolicyRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApprovalPolicyRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO approval_policies")).
		WithArgs("org-1", "offer", true, false, false, true, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	policy := &models.ApprovalPolicy{OrganizationID: "org-1", Feature: "offer", Reviewed: true, Approved1: true}
	require.NoError(t, repo.Upsert(context.Background(), policy))
	require.False(t, policy.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
