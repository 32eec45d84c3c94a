package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/erp-api/internal/dto"
	"github.com/noah-isme/erp-api/internal/models"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
)

type policyStore interface {
	Seed(ctx context.Context, organizationID string, features []string) error
	List(ctx context.Context, organizationID string) ([]models.ApprovalPolicy, error)
	Get(ctx context.Context, organizationID, feature string) (*models.ApprovalPolicy, error)
	Upsert(ctx context.Context, policy *models.ApprovalPolicy) error
}

type policyCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// PolicyService answers whether a feature requires approval for an organization.
type PolicyService struct {
	repo     policyStore
	cache    policyCache
	ttl      time.Duration
	features []string
	logger   *zap.Logger
}

// PolicyServiceOption configures the service.
type PolicyServiceOption func(*PolicyService)

// WithPolicyCache caches policies for ttl.
func WithPolicyCache(cache policyCache, ttl time.Duration) PolicyServiceOption {
	return func(s *PolicyService) {
		s.cache = cache
		s.ttl = ttl
	}
}

// WithPolicyFeatures overrides the feature keys seeded for each organization.
func WithPolicyFeatures(features []string) PolicyServiceOption {
	return func(s *PolicyService) {
		if len(features) > 0 {
			s.features = append([]string(nil), features...)
		}
	}
}

// NewPolicyService constructs the service.
func NewPolicyService(repo policyStore, logger *zap.Logger, opts ...PolicyServiceOption) *PolicyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &PolicyService{
		repo:     repo,
		logger:   logger,
		features: models.ApprovalFeatures(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

func policyCacheKey(organizationID, feature string) string {
	return fmt.Sprintf("approval-policy:%s:%s", organizationID, feature)
}

// Policy returns the stored policy of a feature, seeding defaults on first access.
func (s *PolicyService) Policy(ctx context.Context, feature, organizationID string) (*models.ApprovalPolicy, error) {
	feature = strings.ToLower(strings.TrimSpace(feature))
	key := policyCacheKey(organizationID, feature)
	if s.cache != nil {
		var cached models.ApprovalPolicy
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	policy, err := s.repo.Get(ctx, organizationID, feature)
	if errors.Is(err, sql.ErrNoRows) {
		if !s.known(feature) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown approval feature")
		}
		if err := s.repo.Seed(ctx, organizationID, s.features); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed approval policies")
		}
		policy, err = s.repo.Get(ctx, organizationID, feature)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approval policy")
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, policy, s.ttl)
	}
	return policy, nil
}

// HasApprovalPolicy reports whether any sign-off stage is enabled for feature.
func (s *PolicyService) HasApprovalPolicy(ctx context.Context, feature, organizationID string) (bool, error) {
	policy, err := s.Policy(ctx, feature, organizationID)
	if err != nil {
		return false, err
	}
	return policy.Enabled(), nil
}

// List seeds any missing features and returns every policy of the organization.
func (s *PolicyService) List(ctx context.Context, organizationID string) ([]models.ApprovalPolicy, error) {
	if organizationID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "organization scope required")
	}
	if err := s.repo.Seed(ctx, organizationID, s.features); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed approval policies")
	}
	policies, err := s.repo.List(ctx, organizationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approval policies")
	}
	return policies, nil
}

// Update replaces the stage toggles of one feature.
func (s *PolicyService) Update(ctx context.Context, organizationID, feature string, req dto.UpdateApprovalPolicyRequest) (*models.ApprovalPolicy, error) {
	feature = strings.ToLower(strings.TrimSpace(feature))
	if !s.known(feature) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown approval feature")
	}
	policy := &models.ApprovalPolicy{
		OrganizationID: organizationID,
		Feature:        feature,
		Reviewed:       req.Reviewed,
		Verified:       req.Verified,
		Acknowledged:   req.Acknowledged,
		Approved1:      req.Approved1,
		Approved2:      req.Approved2,
	}
	if err := s.repo.Upsert(ctx, policy); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update approval policy")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, policyCacheKey(organizationID, feature)); err != nil {
			s.logger.Warn("approval policy cache not invalidated", zap.String("feature", feature), zap.Error(err))
		}
	}
	s.logger.Info("approval policy updated",
		zap.String("organization_id", organizationID),
		zap.String("feature", feature),
		zap.Bool("enabled", policy.Enabled()),
	)
	return policy, nil
}

func (s *PolicyService) known(feature string) bool {
	for _, f := range s.features {
		if f == feature {
			return true
		}
	}
	return false
}
