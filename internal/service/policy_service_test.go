package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-api/internal/dto"
	"github.com/noah-isme/erp-api/internal/models"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
)

type memPolicyStore struct {
	policies map[string]models.ApprovalPolicy
	seeds    int
	gets     int
	seedErr  error
}

func newMemPolicyStore() *memPolicyStore {
	return &memPolicyStore{policies: make(map[string]models.ApprovalPolicy)}
}

func (m *memPolicyStore) Seed(ctx context.Context, organizationID string, features []string) error {
	m.seeds++
	if m.seedErr != nil {
		return m.seedErr
	}
	for _, f := range features {
		key := organizationID + "/" + f
		if _, ok := m.policies[key]; !ok {
			m.policies[key] = models.ApprovalPolicy{OrganizationID: organizationID, Feature: f}
		}
	}
	return nil
}

func (m *memPolicyStore) List(ctx context.Context, organizationID string) ([]models.ApprovalPolicy, error) {
	var out []models.ApprovalPolicy
	for _, p := range m.policies {
		if p.OrganizationID == organizationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPolicyStore) Get(ctx context.Context, organizationID, feature string) (*models.ApprovalPolicy, error) {
	m.gets++
	p, ok := m.policies[organizationID+"/"+feature]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *memPolicyStore) Upsert(ctx context.Context, policy *models.ApprovalPolicy) error {
	m.policies[policy.OrganizationID+"/"+policy.Feature] = *policy
	return nil
}

type memPolicyCache struct {
	values  map[string]models.ApprovalPolicy
	deleted []string
}

func (c *memPolicyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	*dest.(*models.ApprovalPolicy) = v
	return true, nil
}

func (c *memPolicyCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.values[key] = *value.(*models.ApprovalPolicy)
	return nil
}

func (c *memPolicyCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	c.deleted = append(c.deleted, keys...)
	return nil
}

func TestPolicyServiceSeedsOnFirstLookup(t *testing.T) {
	store := newMemPolicyStore()
	svc := NewPolicyService(store, nil)

	has, err := svc.HasApprovalPolicy(context.Background(), "quotes", "org-1")
	require.NoError(t, err)
	assert.False(t, has)
	assert.Equal(t, 1, store.seeds)
	assert.Len(t, store.policies, len(models.ApprovalFeatures()))

	_, err = svc.HasApprovalPolicy(context.Background(), "payroll", "org-1")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestPolicyServiceUpdateAndCache(t *testing.T) {
	store := newMemPolicyStore()
	cache := &memPolicyCache{values: make(map[string]models.ApprovalPolicy)}
	svc := NewPolicyService(store, nil, WithPolicyCache(cache, time.Minute))
	ctx := context.Background()

	has, err := svc.HasApprovalPolicy(ctx, "leavemanagement", "org-1")
	require.NoError(t, err)
	assert.False(t, has)
	gets := store.gets

	// served from cache
	_, err = svc.HasApprovalPolicy(ctx, "leavemanagement", "org-1")
	require.NoError(t, err)
	assert.Equal(t, gets, store.gets)

	updated, err := svc.Update(ctx, "org-1", "LeaveManagement", dto.UpdateApprovalPolicyRequest{Reviewed: true, Approved2: true})
	require.NoError(t, err)
	assert.Equal(t, "leavemanagement", updated.Feature)
	assert.Contains(t, cache.deleted, "approval-policy:org-1:leavemanagement")

	has, err = svc.HasApprovalPolicy(ctx, "leavemanagement", "org-1")
	require.NoError(t, err)
	assert.True(t, has)

	policy, err := svc.Policy(ctx, "leavemanagement", "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved2, policy.NextLevel(models.ApprovalReviewed))

	_, err = svc.Update(ctx, "org-1", "unknown", dto.UpdateApprovalPolicyRequest{})
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestPolicyServiceList(t *testing.T) {
	store := newMemPolicyStore()
	svc := NewPolicyService(store, nil, WithPolicyFeatures([]string{"quotes", "offer"}))

	policies, err := svc.List(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Len(t, policies, 2)

	_, err = svc.List(context.Background(), "")
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	store.seedErr = errors.New("db down")
	_, err = svc.List(context.Background(), "org-2")
	require.ErrorIs(t, err, appErrors.ErrInternal)
}
