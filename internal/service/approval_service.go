package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-api/internal/dto"
	"github.com/noah-isme/erp-api/internal/models"
	"github.com/noah-isme/erp-api/internal/workflow"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
)

type approvalStore interface {
	GetByID(ctx context.Context, organizationID, id string) (*models.Document, error)
	UpdateApproval(ctx context.Context, doc *models.Document, expectedVersion int64) error
}

type approvalNotifier interface {
	Dispatch(ctx context.Context, req NotifyRequest)
}

// ApprovalService moves documents of one kind through the sign-off chain.
type ApprovalService struct {
	kind         models.DocumentKind
	machine      *workflow.Machine
	repo         approvalStore
	policies     approvalPolicyChecker
	activity     activityRecorder
	notifier     approvalNotifier
	validator    *validator.Validate
	metrics      *MetricsService
	logger       *zap.Logger
	validityMode workflow.ValidityMode
	now          func() time.Time
}

// ApprovalServiceOption configures the service.
type ApprovalServiceOption func(*ApprovalService)

// WithValidityMode selects what ChangeValidity does to the approval status.
func WithValidityMode(mode workflow.ValidityMode) ApprovalServiceOption {
	return func(s *ApprovalService) {
		s.validityMode = mode
	}
}

// WithApprovalNotifier sets the next-level notifier.
func WithApprovalNotifier(n approvalNotifier) ApprovalServiceOption {
	return func(s *ApprovalService) {
		s.notifier = n
	}
}

// WithApprovalMetrics records transitions and conflicts on m.
func WithApprovalMetrics(m *MetricsService) ApprovalServiceOption {
	return func(s *ApprovalService) {
		s.metrics = m
	}
}

// WithApprovalClock overrides the time source used for sign-off timestamps.
func WithApprovalClock(now func() time.Time) ApprovalServiceOption {
	return func(s *ApprovalService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewApprovalService constructs the service for kind.
func NewApprovalService(
	kind models.DocumentKind,
	repo approvalStore,
	policies approvalPolicyChecker,
	activity activityRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...ApprovalServiceOption,
) *ApprovalService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ApprovalService{
		kind:      kind,
		machine:   workflow.ForKind(kind),
		repo:      repo,
		policies:  policies,
		activity:  activity,
		validator: validate,
		logger:    logger.With(zap.String("kind", string(kind.Key))),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// UpdateApproval applies one approval transition. The write only lands when
// the document version is unchanged since it was read; a lost race returns
// ErrApprovalConflict. Notification runs after the commit and cannot fail it.
func (s *ApprovalService) UpdateApproval(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateApprovalRequest) (*models.Document, error) {
	if err := requireScope(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}
	doc, err := s.load(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if req.Version > 0 && req.Version != doc.Version {
		return nil, appErrors.ErrApprovalConflict
	}
	expected := doc.Version
	previous := doc.Approval

	if err := s.machine.Apply(&doc.ApprovalFields, req.Approval, actor.UserID, req.ApprovalComment, s.now().UTC()); err != nil {
		return nil, mapWorkflowError(err)
	}
	if err := s.persist(ctx, doc, expected); err != nil {
		return nil, err
	}

	s.metrics.RecordApprovalTransition(string(s.kind.Key), string(doc.Approval))
	recordActivity(ctx, s.activity, s.logger, actor, models.ActivityApproval, s.kind, doc)
	s.logger.Info("approval updated",
		zap.String("document_id", doc.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(doc.Approval)),
		zap.String("actor", actor.UserID),
	)

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, NotifyRequest{
			Feature:           s.kind.Feature,
			Stage:             doc.Approval,
			OrganizationID:    doc.OrganizationID,
			CompanyID:         doc.CompanyID,
			DocumentLabel:     doc.Label(),
			EntityDisplayName: s.kind.DisplayName,
			RouteSlug:         s.kind.Route,
			DocumentID:        doc.ID,
		})
	}
	return doc, nil
}

// ChangeValidity sets the valid flag. Every sign-off pair is cleared whichever
// way the flag moves; the approval status follows the configured mode.
func (s *ApprovalService) ChangeValidity(ctx context.Context, actor *models.JWTClaims, id string, req dto.ChangeValidityRequest) (*models.Document, error) {
	if err := requireScope(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validity payload")
	}
	doc, err := s.load(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	expected := doc.Version

	hasPolicy := false
	if s.validityMode == workflow.ValidityResetStatus {
		hasPolicy, err = s.policies.HasApprovalPolicy(ctx, s.kind.Feature, actor.OrganizationID)
		if err != nil {
			return nil, err
		}
	}
	workflow.ChangeValidity(&doc.ApprovalFields, *req.Valid, s.validityMode, hasPolicy)

	if err := s.persist(ctx, doc, expected); err != nil {
		return nil, err
	}
	recordActivity(ctx, s.activity, s.logger, actor, models.ActivityValidity, s.kind, doc)
	return doc, nil
}

func (s *ApprovalService) load(ctx context.Context, organizationID, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", s.kind.DisplayName))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s", s.kind.DisplayName))
	}
	return doc, nil
}

func (s *ApprovalService) persist(ctx context.Context, doc *models.Document, expected int64) error {
	if err := s.repo.UpdateApproval(ctx, doc, expected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordApprovalConflict(string(s.kind.Key))
			s.logger.Warn("approval write lost race", zap.String("document_id", doc.ID), zap.Int64("version", expected))
			return appErrors.ErrApprovalConflict
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update approval")
	}
	return nil
}

func mapWorkflowError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrInvalidStatus):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown approval status")
	case errors.Is(err, workflow.ErrStageNotAllowed):
		return appErrors.Wrap(err, appErrors.ErrStageNotAllowed.Code, appErrors.ErrStageNotAllowed.Status, appErrors.ErrStageNotAllowed.Message)
	case errors.Is(err, workflow.ErrMissingActor):
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "actor is required")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply approval")
}
