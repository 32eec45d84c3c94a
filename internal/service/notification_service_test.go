package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-api/internal/models"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
	"github.com/noah-isme/erp-api/pkg/jobs"
)

type memNotificationStore struct {
	mu        sync.Mutex
	items     []models.Notification
	createErr error
	readErr   error
}

func (m *memNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = "n-1"
	m.items = append(m.items, *n)
	return nil
}

func (m *memNotificationStore) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification(nil), m.items...), nil
}

func (m *memNotificationStore) MarkRead(ctx context.Context, organizationID, id string, readAt time.Time) error {
	return m.readErr
}

func (m *memNotificationStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type stubPolicyReader struct {
	policy *models.ApprovalPolicy
	err    error
}

func (s *stubPolicyReader) Policy(ctx context.Context, feature, organizationID string) (*models.ApprovalPolicy, error) {
	return s.policy, s.err
}

func notifyRequest(stage models.ApprovalStatus) NotifyRequest {
	return NotifyRequest{
		Feature:           "quotes",
		Stage:             stage,
		OrganizationID:    "org-1",
		CompanyID:         "co-1",
		DocumentLabel:     "Q-01",
		EntityDisplayName: "Quote",
		RouteSlug:         "quotes",
		DocumentID:        "doc-1",
	}
}

func TestNotifyNextApprovalLevel(t *testing.T) {
	policy := &models.ApprovalPolicy{Reviewed: true, Approved1: true, Approved2: true}
	tests := []struct {
		name      string
		stage     models.ApprovalStatus
		wantNext  models.ApprovalStatus
		wantTitle string
		skipped   bool
	}{
		{"pending goes to first stage", models.ApprovalPending, models.ApprovalReviewed, "Quote Q-01 awaiting reviewed", false},
		{"reviewed skips disabled stages", models.ApprovalReviewed, models.ApprovalApproved1, "Quote Q-01 awaiting approved1", false},
		{"final stage", models.ApprovalApproved2, "", "Quote Q-01 fully approved", false},
		{"rejected", models.ApprovalRejected, "", "Quote Q-01 rejected", false},
		{"correction", models.ApprovalCorrection, "", "Quote Q-01 needs correction", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memNotificationStore{}
			svc := NewNotificationService(store, &stubPolicyReader{policy: policy}, nil, zap.NewNop())
			require.NoError(t, svc.NotifyNextApprovalLevel(context.Background(), notifyRequest(tt.stage)))
			require.Len(t, store.items, 1)
			n := store.items[0]
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, "/quotes/doc-1", n.Link)
			assert.Equal(t, "co-1", n.CompanyID)
			if tt.wantNext == "" {
				assert.Nil(t, n.NextLevel)
			} else {
				require.NotNil(t, n.NextLevel)
				assert.Equal(t, tt.wantNext, *n.NextLevel)
			}
		})
	}
}

func TestNotifyDisabledStageIsNotFinalApproval(t *testing.T) {
	tests := []struct {
		name   string
		policy *models.ApprovalPolicy
		stage  models.ApprovalStatus
	}{
		{"every stage off", &models.ApprovalPolicy{}, models.ApprovalReviewed},
		{"stage after the enabled chain", &models.ApprovalPolicy{Reviewed: true}, models.ApprovalApproved1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memNotificationStore{}
			svc := NewNotificationService(store, &stubPolicyReader{policy: tt.policy}, nil, nil)
			require.NoError(t, svc.NotifyNextApprovalLevel(context.Background(), notifyRequest(tt.stage)))
			require.Len(t, store.items, 1)
			n := store.items[0]
			assert.Equal(t, "Quote Q-01 marked "+string(tt.stage), n.Title)
			assert.NotContains(t, n.Message, "approval chain")
			assert.Nil(t, n.NextLevel)
		})
	}
}

func TestNotifySkipsEntryStateWithoutPolicy(t *testing.T) {
	store := &memNotificationStore{}
	svc := NewNotificationService(store, &stubPolicyReader{policy: &models.ApprovalPolicy{}}, NewMetricsService(), nil)
	require.NoError(t, svc.NotifyNextApprovalLevel(context.Background(), notifyRequest(models.ApprovalNone)))
	assert.Empty(t, store.items)
}

func TestDispatchSwallowsFailures(t *testing.T) {
	store := &memNotificationStore{createErr: errors.New("db down")}
	svc := NewNotificationService(store, &stubPolicyReader{policy: &models.ApprovalPolicy{Reviewed: true}}, nil, nil)
	assert.NotPanics(t, func() {
		svc.Dispatch(context.Background(), notifyRequest(models.ApprovalPending))
	})

	policyErr := NewNotificationService(&memNotificationStore{}, &stubPolicyReader{err: errors.New("boom")}, nil, nil)
	require.Error(t, policyErr.NotifyNextApprovalLevel(context.Background(), notifyRequest(models.ApprovalPending)))
}

func TestDispatchThroughQueue(t *testing.T) {
	store := &memNotificationStore{}
	svc := NewNotificationService(store, &stubPolicyReader{policy: &models.ApprovalPolicy{Reviewed: true}}, nil, nil)
	queue := jobs.NewQueue("notifications", svc.HandleJob, jobs.QueueConfig{Workers: 1, MaxRetries: 1, RetryDelay: 10 * time.Millisecond})
	queue.Start(context.Background())
	svc.AttachQueue(queue)

	svc.Dispatch(context.Background(), notifyRequest(models.ApprovalPending))
	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, queue.Stop(context.Background()))

	// a stopped queue falls back to inline delivery
	svc.Dispatch(context.Background(), notifyRequest(models.ApprovalPending))
	assert.Equal(t, 2, store.count())
}

func TestHandleJobRejectsForeignPayload(t *testing.T) {
	svc := NewNotificationService(&memNotificationStore{}, &stubPolicyReader{}, nil, nil)
	require.Error(t, svc.HandleJob(context.Background(), jobs.Job{Payload: "nope"}))
}

func TestNotificationListAndMarkRead(t *testing.T) {
	store := &memNotificationStore{}
	svc := NewNotificationService(store, &stubPolicyReader{policy: &models.ApprovalPolicy{Reviewed: true}}, nil, nil)
	require.NoError(t, svc.NotifyNextApprovalLevel(context.Background(), notifyRequest(models.ApprovalPending)))

	items, err := svc.List(context.Background(), models.NotificationFilter{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.List(context.Background(), models.NotificationFilter{})
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.MarkRead(context.Background(), "org-1", "n-1"))
	store.readErr = sql.ErrNoRows
	require.ErrorIs(t, svc.MarkRead(context.Background(), "org-1", "n-1"), appErrors.ErrNotFound)
}
