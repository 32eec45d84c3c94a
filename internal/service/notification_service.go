package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-api/internal/models"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
	"github.com/noah-isme/erp-api/pkg/jobs"
)

const notifyJobType = "notify_next_approval_level"

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, organizationID, id string, readAt time.Time) error
}

type policyReader interface {
	Policy(ctx context.Context, feature, organizationID string) (*models.ApprovalPolicy, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// NotifyRequest describes a document that just changed approval status.
type NotifyRequest struct {
	Feature           string
	Stage             models.ApprovalStatus
	OrganizationID    string
	CompanyID         string
	DocumentLabel     string
	EntityDisplayName string
	RouteSlug         string
	DocumentID        string
}

// NotificationService raises in-app notifications for the next approval level.
type NotificationService struct {
	repo     notificationStore
	policies policyReader
	queue    jobEnqueuer
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService constructs the service. Dispatch is synchronous until a queue is attached.
func NewNotificationService(repo notificationStore, policies policyReader, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:     repo,
		policies: policies,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// AttachQueue routes Dispatch through q. HandleJob must be q's handler.
func (s *NotificationService) AttachQueue(q jobEnqueuer) {
	s.queue = q
}

// Dispatch notifies either inline or through the queue. Failures are logged
// and never surfaced, the approval change is already committed.
func (s *NotificationService) Dispatch(ctx context.Context, req NotifyRequest) {
	if s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{
			ID:       uuid.NewString(),
			Type:     notifyJobType,
			Payload:  req,
			Enqueued: s.now().UTC(),
		})
		if err == nil {
			return
		}
		s.logger.Warn("notification queue unavailable, sending inline", zap.Error(err))
	}
	if err := s.NotifyNextApprovalLevel(ctx, req); err != nil {
		s.logger.Error("notify next approval level failed",
			zap.String("feature", req.Feature),
			zap.String("document_id", req.DocumentID),
			zap.String("stage", string(req.Stage)),
			zap.Error(err),
		)
	}
}

// HandleJob is the queue handler for dispatched notifications.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(NotifyRequest)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	return s.NotifyNextApprovalLevel(ctx, req)
}

// NotifyNextApprovalLevel resolves who acts next under the feature's policy and
// stores a notification. Entry states without a policy raise nothing.
func (s *NotificationService) NotifyNextApprovalLevel(ctx context.Context, req NotifyRequest) error {
	policy, err := s.policies.Policy(ctx, req.Feature, req.OrganizationID)
	if err != nil {
		s.metrics.RecordNotification(req.Feature, "failed")
		return err
	}

	n := s.compose(req, policy)
	if n == nil {
		s.metrics.RecordNotification(req.Feature, "skipped")
		return nil
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.metrics.RecordNotification(req.Feature, "failed")
		return fmt.Errorf("store notification: %w", err)
	}
	s.metrics.RecordNotification(req.Feature, "sent")
	s.logger.Info("approval notification raised",
		zap.String("feature", req.Feature),
		zap.String("document_id", req.DocumentID),
		zap.String("stage", string(req.Stage)),
		zap.Stringp("next_level", (*string)(n.NextLevel)),
	)
	return nil
}

func (s *NotificationService) compose(req NotifyRequest, policy *models.ApprovalPolicy) *models.Notification {
	subject := fmt.Sprintf("%s %s", req.EntityDisplayName, req.DocumentLabel)
	n := &models.Notification{
		OrganizationID: req.OrganizationID,
		CompanyID:      req.CompanyID,
		Feature:        req.Feature,
		Stage:          req.Stage,
		Link:           fmt.Sprintf("/%s/%s", req.RouteSlug, req.DocumentID),
		DocumentID:     req.DocumentID,
		CreatedAt:      s.now().UTC(),
	}

	switch req.Stage {
	case models.ApprovalCorrection:
		n.Title = subject + " needs correction"
		n.Message = fmt.Sprintf("%s was sent back for correction.", subject)
		return n
	case models.ApprovalRejected:
		n.Title = subject + " rejected"
		n.Message = fmt.Sprintf("%s was rejected.", subject)
		return n
	}

	next := policy.NextLevel(req.Stage)
	switch {
	case next != "":
		n.NextLevel = &next
		n.Title = fmt.Sprintf("%s awaiting %s", subject, next)
		if req.Stage.IsSignOff() {
			n.Message = fmt.Sprintf("%s was %s and is waiting for %s sign-off.", subject, req.Stage, next)
		} else {
			n.Message = fmt.Sprintf("%s is waiting for %s sign-off.", subject, next)
		}
	case req.Stage.IsSignOff() && policy.StageEnabled(req.Stage):
		n.Title = subject + " fully approved"
		n.Message = fmt.Sprintf("%s completed its approval chain at %s.", subject, req.Stage)
	case req.Stage.IsSignOff():
		n.Title = fmt.Sprintf("%s marked %s", subject, req.Stage)
		n.Message = fmt.Sprintf("%s was marked %s.", subject, req.Stage)
	default:
		return nil
	}
	return n
}

// List returns notifications of the caller's organization.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	if filter.OrganizationID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "organization scope required")
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return items, nil
}

// MarkRead stamps a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, organizationID, id string) error {
	if err := s.repo.MarkRead(ctx, organizationID, id, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found or already read")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
