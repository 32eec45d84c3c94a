package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-api/internal/dto"
	"github.com/noah-isme/erp-api/internal/models"
	"github.com/noah-isme/erp-api/internal/workflow"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
	"github.com/noah-isme/erp-api/pkg/export"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, organizationID, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	Update(ctx context.Context, doc *models.Document, expectedVersion int64) error
	UpdateApproval(ctx context.Context, doc *models.Document, expectedVersion int64) error
	SoftDelete(ctx context.Context, organizationID, id string, deletedAt time.Time) error
}

type approvalPolicyChecker interface {
	HasApprovalPolicy(ctx context.Context, feature, organizationID string) (bool, error)
}

type sequenceIssuer interface {
	Next(ctx context.Context, kind models.DocumentKind, organizationID string, req SequenceRequest) (string, error)
}

type activityRecorder interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
}

type activityHistoryReader interface {
	ListByAction(ctx context.Context, organizationID, actionID string) ([]models.ActivityLog, error)
}

type sheetRenderer interface {
	Render(sheet export.ApprovalSheet) ([]byte, error)
}

// DocumentService manages the lifecycle of one document kind.
type DocumentService struct {
	kind      models.DocumentKind
	repo      documentStore
	policies  approvalPolicyChecker
	sequences sequenceIssuer
	activity  activityRecorder
	renderer  sheetRenderer
	history   activityHistoryReader
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// DocumentServiceOption configures the service.
type DocumentServiceOption func(*DocumentService)

// WithSheetRenderer overrides the approval sheet renderer.
func WithSheetRenderer(r sheetRenderer) DocumentServiceOption {
	return func(s *DocumentService) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithActivityHistory enables History lookups.
func WithActivityHistory(r activityHistoryReader) DocumentServiceOption {
	return func(s *DocumentService) {
		s.history = r
	}
}

// WithDocumentMetrics records edit conflicts on m.
func WithDocumentMetrics(m *MetricsService) DocumentServiceOption {
	return func(s *DocumentService) {
		s.metrics = m
	}
}

// NewDocumentService constructs the service for kind.
func NewDocumentService(
	kind models.DocumentKind,
	repo documentStore,
	policies approvalPolicyChecker,
	sequences sequenceIssuer,
	activity activityRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...DocumentServiceOption,
) *DocumentService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DocumentService{
		kind:      kind,
		repo:      repo,
		policies:  policies,
		sequences: sequences,
		activity:  activity,
		renderer:  export.NewPDFExporter(),
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

// Kind returns the document kind served.
func (s *DocumentService) Kind() models.DocumentKind {
	return s.kind
}

// Create stores a new document. Its approval starts at pending when the
// organization has an approval policy for the feature, none otherwise.
func (s *DocumentService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateDocumentRequest) (*models.Document, error) {
	if err := requireScope(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	details, raw, err := s.decodeDetails(req.Details)
	if err != nil {
		return nil, err
	}
	hasPolicy, err := s.policies.HasApprovalPolicy(ctx, s.kind.Feature, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		Kind:           s.kind.Key,
		OrganizationID: actor.OrganizationID,
		CompanyID:      firstNonEmpty(req.CompanyID, actor.CompanyID),
		Title:          firstNonEmpty(strings.TrimSpace(req.Title), details.DefaultTitle()),
		Details:        raw,
		CreatedBy:      actor.UserID,
	}
	doc.Approval = workflow.InitialStatus(hasPolicy)
	doc.Valid = true

	if s.kind.Sequenced() || strings.TrimSpace(req.SequenceID) != "" {
		seq, err := s.sequences.Next(ctx, s.kind, actor.OrganizationID, SequenceRequest{
			CustomID:   req.SequenceID,
			ExplicitID: req.LastID,
			Prefix:     req.Prefix,
		})
		if err != nil {
			return nil, err
		}
		doc.SequenceID = &seq
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to create %s", s.kind.DisplayName))
	}
	s.recordActivity(ctx, actor, models.ActivityCreate, doc)
	s.logger.Info("document created",
		zap.String("document_id", doc.ID),
		zap.String("organization_id", doc.OrganizationID),
		zap.String("approval", string(doc.Approval)),
	)
	return doc, nil
}

// Get returns a document of the caller's organization.
func (s *DocumentService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Document, error) {
	if err := requireScope(actor); err != nil {
		return nil, err
	}
	return s.load(ctx, actor.OrganizationID, id)
}

// History returns the activity trail of one document, oldest first.
func (s *DocumentService) History(ctx context.Context, actor *models.JWTClaims, id string) ([]models.ActivityLog, error) {
	if err := requireScope(actor); err != nil {
		return nil, err
	}
	doc, err := s.load(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []models.ActivityLog{}, nil
	}
	entries, err := s.history.ListByAction(ctx, doc.OrganizationID, doc.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity history")
	}
	return entries, nil
}

// List returns a page of documents with pagination metadata.
func (s *DocumentService) List(ctx context.Context, actor *models.JWTClaims, query dto.DocumentQuery) ([]models.Document, *models.Pagination, error) {
	if err := requireScope(actor); err != nil {
		return nil, nil, err
	}
	for _, status := range query.Approval {
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown approval status %q", status))
		}
	}
	filter := models.DocumentFilter{
		OrganizationID: actor.OrganizationID,
		Approval:       query.Approval,
		Valid:          query.Valid,
		Search:         query.Search,
		Page:           query.Page,
		PageSize:       query.PageSize,
	}
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to list %s", s.kind.Route))
	}
	page, size := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	return docs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update applies a full edit. Every prior sign-off is dropped, approval goes
// back to its initial status and ForceRevision bumps the -REV suffix.
func (s *DocumentService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateDocumentRequest) (*models.Document, error) {
	if err := requireScope(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	doc, err := s.load(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if req.Version > 0 && req.Version != doc.Version {
		return nil, appErrors.ErrApprovalConflict
	}
	expected := doc.Version

	details, raw, err := s.decodeDetails(req.Details)
	if err != nil {
		return nil, err
	}
	hasPolicy, err := s.policies.HasApprovalPolicy(ctx, s.kind.Feature, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	workflow.ResetForEdit(&doc.ApprovalFields, hasPolicy)
	if req.ForceRevision && doc.SequenceID != nil && *doc.SequenceID != "" {
		revised := workflow.NextRevision(*doc.SequenceID)
		doc.SequenceID = &revised
	}
	doc.Title = firstNonEmpty(strings.TrimSpace(req.Title), doc.Title, details.DefaultTitle())
	doc.Details = raw

	if err := s.repo.Update(ctx, doc, expected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordApprovalConflict(string(s.kind.Key))
			return nil, appErrors.ErrApprovalConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to update %s", s.kind.DisplayName))
	}
	s.recordActivity(ctx, actor, models.ActivityUpdate, doc)
	return doc, nil
}

// Delete soft-deletes a document.
func (s *DocumentService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := requireScope(actor); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, actor.OrganizationID, id, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", s.kind.DisplayName))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to delete %s", s.kind.DisplayName))
	}
	s.recordActivity(ctx, actor, models.ActivityDelete, &models.Document{
		ID:             id,
		OrganizationID: actor.OrganizationID,
		CompanyID:      actor.CompanyID,
	})
	return nil
}

// ApprovalSheet renders the printable sign-off sheet of a document.
func (s *DocumentService) ApprovalSheet(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, string, error) {
	if err := requireScope(actor); err != nil {
		return nil, "", err
	}
	doc, err := s.load(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, "", err
	}

	sheet := export.ApprovalSheet{
		Title:    fmt.Sprintf("%s approval sheet", s.kind.DisplayName),
		Label:    doc.Label(),
		Status:   string(doc.Approval),
		Valid:    doc.Valid,
		Footnote: fmt.Sprintf("Generated %s", s.now().UTC().Format(time.RFC3339)),
	}
	if doc.ApprovalComment != nil {
		sheet.Comment = *doc.ApprovalComment
	}
	if details, err := dto.NewDetails(s.kind.Key); err == nil && json.Unmarshal(doc.Details, details) == nil {
		sheet.Fields = details.Describe()
	}
	if doc.SequenceID != nil {
		if rev := workflow.Revision(*doc.SequenceID); rev > 0 {
			sheet.Fields = append([][2]string{{"Revision", fmt.Sprint(rev)}}, sheet.Fields...)
		}
	}
	for _, stage := range s.kind.Stages {
		row := export.SheetRow{Stage: string(stage), SignedBy: "-", SignedAt: "-"}
		if by, at := doc.SignOff(stage); by != nil {
			row.SignedBy = *by
			if at != nil {
				row.SignedAt = at.UTC().Format("2006-01-02 15:04")
			}
		}
		sheet.Sign = append(sheet.Sign, row)
	}

	pdf, err := s.renderer.Render(sheet)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render approval sheet")
	}
	filename := fmt.Sprintf("%s-%s-approval.pdf", s.kind.Key, sanitizeFilename(doc.Label()))
	return pdf, filename, nil
}

func (s *DocumentService) load(ctx context.Context, organizationID, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", s.kind.DisplayName))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s", s.kind.DisplayName))
	}
	return doc, nil
}

func (s *DocumentService) decodeDetails(raw json.RawMessage) (dto.Details, json.RawMessage, error) {
	details, err := dto.NewDetails(s.kind.Key)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "unsupported document kind")
	}
	if err := json.Unmarshal(raw, details); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid details payload")
	}
	details.Normalize()
	if err := s.validator.Struct(details); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s details", strings.ToLower(s.kind.DisplayName)))
	}
	normalized, err := json.Marshal(details)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode details")
	}
	return details, normalized, nil
}

func (s *DocumentService) recordActivity(ctx context.Context, actor *models.JWTClaims, action string, doc *models.Document) {
	recordActivity(ctx, s.activity, s.logger, actor, action, s.kind, doc)
}

func recordActivity(ctx context.Context, activity activityRecorder, logger *zap.Logger, actor *models.JWTClaims, action string, kind models.DocumentKind, doc *models.Document) {
	if activity == nil {
		return
	}
	entry := &models.ActivityLog{
		UserID:         actor.UserID,
		Action:         action,
		Type:           kind.DisplayName,
		ActionID:       doc.ID,
		OrganizationID: doc.OrganizationID,
		CompanyID:      doc.CompanyID,
	}
	if err := activity.Create(ctx, entry); err != nil {
		logger.Warn("failed to record activity log",
			zap.String("action", action),
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
	}
}

func requireScope(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.OrganizationID == "" {
		return appErrors.Clone(appErrors.ErrForbidden, "organization scope required")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
