package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/erp-api/internal/dto"
	"github.com/noah-isme/erp-api/internal/models"
	"github.com/noah-isme/erp-api/internal/repository"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
)

type sequenceStore interface {
	Next(ctx context.Context, params repository.NextParams) (*models.SequenceCounter, error)
	Get(ctx context.Context, entity, organizationID string) (*models.SequenceCounter, error)
	SetPrefix(ctx context.Context, entity, organizationID, prefix string) error
}

// SequenceRequest carries the caller's overrides for one id.
type SequenceRequest struct {
	// CustomID is used verbatim and leaves the counter untouched.
	CustomID   string
	ExplicitID *int64
	Prefix     *string
}

// SequenceService formats human-readable document numbers.
type SequenceService struct {
	repo    sequenceStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSequenceService constructs the service.
func NewSequenceService(repo sequenceStore, metrics *MetricsService, logger *zap.Logger) *SequenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SequenceService{repo: repo, metrics: metrics, logger: logger}
}

// FormatSequenceID renders prefix plus a number padded to two digits.
func FormatSequenceID(prefix string, lastID int64) string {
	return fmt.Sprintf("%s%02d", prefix, lastID)
}

// Next issues the id for a new document of kind.
func (s *SequenceService) Next(ctx context.Context, kind models.DocumentKind, organizationID string, req SequenceRequest) (string, error) {
	if custom := strings.TrimSpace(req.CustomID); custom != "" {
		if kind.Sequenced() && req.Prefix != nil {
			if p := strings.TrimSpace(*req.Prefix); p != "" {
				if err := s.repo.SetPrefix(ctx, kind.CounterEntity, organizationID, p); err != nil {
					return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store sequence prefix")
				}
			}
		}
		return custom, nil
	}
	if !kind.Sequenced() {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s documents have no sequence id", kind.Key))
	}
	var prefix *string
	if req.Prefix != nil {
		p := strings.TrimSpace(*req.Prefix)
		prefix = &p
	}
	counter, err := s.repo.Next(ctx, repository.NextParams{
		Entity:         kind.CounterEntity,
		OrganizationID: organizationID,
		ExplicitID:     req.ExplicitID,
		Prefix:         prefix,
		DefaultPrefix:  kind.DefaultPrefix,
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate sequence id")
	}
	s.metrics.RecordSequenceIssued(kind.CounterEntity)
	id := FormatSequenceID(counter.Prefix, counter.LastID)
	s.logger.Debug("sequence id issued",
		zap.String("entity", kind.CounterEntity),
		zap.String("organization_id", organizationID),
		zap.String("sequence_id", id),
	)
	return id, nil
}

// Peek previews the id the next creation would receive without consuming it.
func (s *SequenceService) Peek(ctx context.Context, kind models.DocumentKind, organizationID string) (*dto.NextIDResponse, error) {
	if !kind.Sequenced() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s documents have no sequence id", kind.Key))
	}
	resp := &dto.NextIDResponse{Entity: kind.CounterEntity, Prefix: kind.DefaultPrefix}
	counter, err := s.repo.Get(ctx, kind.CounterEntity, organizationID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sequence counter")
	default:
		resp.Prefix = counter.Prefix
		resp.LastID = counter.LastID
	}
	resp.NextID = FormatSequenceID(resp.Prefix, resp.LastID+1)
	return resp, nil
}
