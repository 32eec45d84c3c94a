package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-api/internal/models"
	"github.com/noah-isme/erp-api/internal/repository"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
)

// memCounterStore applies the same rules as the upsert in SequenceRepository.
type memCounterStore struct {
	mu       sync.Mutex
	counters map[string]models.SequenceCounter
	err      error
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{counters: make(map[string]models.SequenceCounter)}
}

func (m *memCounterStore) Next(ctx context.Context, p repository.NextParams) (*models.SequenceCounter, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := p.Entity + "/" + p.OrganizationID
	counter, ok := m.counters[key]
	if !ok {
		counter = models.SequenceCounter{Entity: p.Entity, OrganizationID: p.OrganizationID, Prefix: p.DefaultPrefix}
	}
	if p.ExplicitID != nil {
		counter.LastID = *p.ExplicitID
	} else {
		counter.LastID++
	}
	if p.Prefix != nil {
		counter.Prefix = *p.Prefix
	}
	m.counters[key] = counter
	return &counter, nil
}

func (m *memCounterStore) Get(ctx context.Context, entity, organizationID string) (*models.SequenceCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counter, ok := m.counters[entity+"/"+organizationID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &counter, nil
}

func (m *memCounterStore) SetPrefix(ctx context.Context, entity, organizationID, prefix string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entity + "/" + organizationID
	counter, ok := m.counters[key]
	if !ok {
		counter = models.SequenceCounter{Entity: entity, OrganizationID: organizationID}
	}
	counter.Prefix = prefix
	m.counters[key] = counter
	return nil
}

func TestSequenceServiceFirstAndSecondQuote(t *testing.T) {
	svc := NewSequenceService(newMemCounterStore(), nil, nil)
	quotes := mustKind(t, models.KindQuote)

	first, err := svc.Next(context.Background(), quotes, "org-x", SequenceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Q-01", first)

	second, err := svc.Next(context.Background(), quotes, "org-x", SequenceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Q-02", second)

	otherOrg, err := svc.Next(context.Background(), quotes, "org-y", SequenceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Q-01", otherOrg)
}

func TestSequenceServiceOverrides(t *testing.T) {
	store := newMemCounterStore()
	svc := NewSequenceService(store, NewMetricsService(), nil)
	quotes := mustKind(t, models.KindQuote)
	ctx := context.Background()

	explicit := int64(120)
	id, err := svc.Next(ctx, quotes, "org-1", SequenceRequest{ExplicitID: &explicit})
	require.NoError(t, err)
	assert.Equal(t, "Q-120", id)

	prefix := " QT/2024/ "
	id, err = svc.Next(ctx, quotes, "org-1", SequenceRequest{Prefix: &prefix})
	require.NoError(t, err)
	assert.Equal(t, "QT/2024/121", id)

	id, err = svc.Next(ctx, quotes, "org-1", SequenceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "QT/2024/122", id)

	id, err = svc.Next(ctx, quotes, "org-1", SequenceRequest{CustomID: "MANUAL-1"})
	require.NoError(t, err)
	assert.Equal(t, "MANUAL-1", id)
	assert.Equal(t, int64(122), store.counters["Quotes/org-1"].LastID)
}

func TestSequenceServiceConcurrentIssuesUniqueIDs(t *testing.T) {
	svc := NewSequenceService(newMemCounterStore(), nil, nil)
	bookings := mustKind(t, models.KindBooking)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := svc.Next(context.Background(), bookings, "org-1", SequenceRequest{})
			assert.NoError(t, err)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestSequenceServiceUnsequencedKindAndErrors(t *testing.T) {
	store := newMemCounterStore()
	svc := NewSequenceService(store, nil, nil)

	_, err := svc.Next(context.Background(), mustKind(t, models.KindLeave), "org-1", SequenceRequest{})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	store.err = errors.New("db down")
	_, err = svc.Next(context.Background(), mustKind(t, models.KindQuote), "org-1", SequenceRequest{})
	require.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestSequenceServicePeek(t *testing.T) {
	store := newMemCounterStore()
	svc := NewSequenceService(store, nil, nil)
	enquiries := mustKind(t, models.KindEnquiry)

	preview, err := svc.Peek(context.Background(), enquiries, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "EN-01", preview.NextID)

	_, err = svc.Next(context.Background(), enquiries, "org-1", SequenceRequest{})
	require.NoError(t, err)
	preview, err = svc.Peek(context.Background(), enquiries, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "EN-02", preview.NextID)
	assert.Equal(t, int64(1), preview.LastID)

	_, err = svc.Peek(context.Background(), mustKind(t, models.KindOffer), "org-1")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSequenceServiceCustomIDStillStoresPrefix(t *testing.T) {
	store := newMemCounterStore()
	svc := NewSequenceService(store, nil, nil)
	quotes := mustKind(t, models.KindQuote)
	ctx := context.Background()

	prefix := "QT-"
	id, err := svc.Next(ctx, quotes, "org-1", SequenceRequest{CustomID: "MANUAL-7", Prefix: &prefix})
	require.NoError(t, err)
	assert.Equal(t, "MANUAL-7", id)
	assert.Equal(t, int64(0), store.counters["Quotes/org-1"].LastID)
	assert.Equal(t, "QT-", store.counters["Quotes/org-1"].Prefix)

	id, err = svc.Next(ctx, quotes, "org-1", SequenceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "QT-01", id)

	leaves := mustKind(t, models.KindLeave)
	id, err = svc.Next(ctx, leaves, "org-1", SequenceRequest{CustomID: "L-1", Prefix: &prefix})
	require.NoError(t, err)
	assert.Equal(t, "L-1", id)
	assert.NotContains(t, store.counters, "/org-1")
}
