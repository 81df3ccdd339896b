package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// MockLedgerRepository is a mock implementation of payment.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.LedgerRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.LedgerRow), args.Error(1)
}

func (m *MockLedgerRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]payment.LedgerRow, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.LedgerRow), args.Error(1)
}

func (m *MockLedgerRepository) FindByEntityID(ctx context.Context, kind payment.EntityKind, entityID uuid.UUID) (*payment.LedgerRow, error) {
	args := m.Called(ctx, kind, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.LedgerRow), args.Error(1)
}

func (m *MockLedgerRepository) Create(ctx context.Context, row *payment.LedgerRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockLedgerRepository) Save(ctx context.Context, row *payment.LedgerRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerRepository) ExistsByInvoiceNo(ctx context.Context, invoiceNo string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, invoiceNo, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockDetailRepository is a mock implementation of payment.DetailRepository
type MockDetailRepository struct {
	mock.Mock
}

func (m *MockDetailRepository) Create(ctx context.Context, detail payment.Detail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

func (m *MockDetailRepository) Update(ctx context.Context, detail payment.Detail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

func (m *MockDetailRepository) Delete(ctx context.Context, kind payment.EntityKind, id uuid.UUID) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockDetailRepository) FindByID(ctx context.Context, kind payment.EntityKind, id uuid.UUID) (payment.Detail, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Detail), args.Error(1)
}

func (m *MockDetailRepository) FindByIDs(ctx context.Context, kind payment.EntityKind, ids []uuid.UUID) (map[uuid.UUID]payment.Detail, error) {
	args := m.Called(ctx, kind, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]payment.Detail), args.Error(1)
}

func (m *MockDetailRepository) ExistsByColumn(ctx context.Context, kind payment.EntityKind, column, value string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, kind, column, value, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDetailRepository) TransitionFinancingStatus(ctx context.Context, id uuid.UUID, to payment.ApprovalStatus, approvedBy *uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, to, approvedBy)
	return args.Bool(0), args.Error(1)
}

// MockActorDirectory is a mock implementation of payment.ActorDirectory
type MockActorDirectory struct {
	mock.Mock
}

func (m *MockActorDirectory) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// recordingHook captures every event it is handed, optionally failing
// or panicking to exercise the error boundary
type recordingHook struct {
	mu     sync.Mutex
	name   string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHook) Name() string { return h.name }

func (h *recordingHook) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	if h.panics {
		panic("hook exploded")
	}
	return h.err
}

func (h *recordingHook) recorded() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.events...)
}

// mapStore is an in-memory cache.Store for read-through tests
type mapStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMapStore() *mapStore {
	return &mapStore{entries: make(map[string][]byte)}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[key]
	return data, ok, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	s.sets++
	return nil
}

func (s *mapStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *mapStore) DeleteByPrefix(_ context.Context, _ string) error { return nil }

type serviceFixture struct {
	ledgerRepo *MockLedgerRepository
	detailRepo *MockDetailRepository
	actors     *MockActorDirectory
	hook       *recordingHook
	service    *LedgerService
}

func newServiceFixture(opts ...LedgerServiceOption) *serviceFixture {
	f := &serviceFixture{
		ledgerRepo: new(MockLedgerRepository),
		detailRepo: new(MockDetailRepository),
		actors:     new(MockActorDirectory),
		hook:       &recordingHook{name: "recording"},
	}
	opts = append([]LedgerServiceOption{WithPostCommitHooks(f.hook)}, opts...)
	f.service = NewLedgerService(
		NewNoOpTransactionScope(f.ledgerRepo, f.detailRepo),
		f.ledgerRepo,
		f.detailRepo,
		f.actors,
		zap.NewNop(),
		opts...,
	)
	return f
}
