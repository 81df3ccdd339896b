package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
	"github.com/visaflow/backend/internal/infrastructure/cache"
)

// LedgerService coordinates payment writes and the merged ledger+detail
// read projection. Writes go through a transaction scope so the detail
// record and the ledger row commit or roll back together; post-commit
// hooks (cache invalidation, fan-out) run afterwards, each inside its
// own error boundary.
type LedgerService struct {
	txScope    TransactionScope
	ledgerRepo payment.LedgerRepository
	detailRepo payment.DetailRepository
	actors     payment.ActorDirectory
	store      cache.Store
	cacheTTL   time.Duration
	hooks      []shared.PostCommitHook
	logger     *zap.Logger
}

// LedgerServiceOption is a functional option for configuring LedgerService
type LedgerServiceOption func(*LedgerService)

// WithCacheStore sets the read-through cache backend
func WithCacheStore(store cache.Store) LedgerServiceOption {
	return func(s *LedgerService) {
		s.store = store
	}
}

// WithCacheTTL overrides the default entry lifetime
func WithCacheTTL(ttl time.Duration) LedgerServiceOption {
	return func(s *LedgerService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithPostCommitHooks registers the hooks run after a successful write,
// in order
func WithPostCommitHooks(hooks ...shared.PostCommitHook) LedgerServiceOption {
	return func(s *LedgerService) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// NewLedgerService creates a new LedgerService. Without options it runs
// cache-less with no hooks.
func NewLedgerService(
	txScope TransactionScope,
	ledgerRepo payment.LedgerRepository,
	detailRepo payment.DetailRepository,
	actors payment.ActorDirectory,
	logger *zap.Logger,
	opts ...LedgerServiceOption,
) *LedgerService {
	s := &LedgerService{
		txScope:    txScope,
		ledgerRepo: ledgerRepo,
		detailRepo: detailRepo,
		actors:     actors,
		store:      cache.NewNoopStore(),
		cacheTTL:   cache.DefaultTTL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePayment records a payment for a client. Master-only products
// write a single ledger row; detail-backed products insert the detail
// record and the linking ledger row in one transaction.
func (s *LedgerService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*PaymentView, error) {
	kind, err := input.ProductType.EntityKind()
	if err != nil {
		return nil, shared.NewValidationError("productType", fmt.Sprintf("%q is not a known product", input.ProductType))
	}
	if input.ActorID == uuid.Nil {
		return nil, shared.NewValidationError("actorId", "is required")
	}

	var (
		row    *payment.LedgerRow
		detail payment.Detail
	)
	if kind == payment.KindMasterOnly {
		row, err = s.createMasterOnly(ctx, input)
	} else {
		row, detail, err = s.createWithDetail(ctx, input, kind)
	}
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, row, input.ActorID)
	return s.buildView(ctx, *row, detail), nil
}

func (s *LedgerService) createMasterOnly(ctx context.Context, input CreatePaymentInput) (*payment.LedgerRow, error) {
	p := input.Payload
	if p.Amount == nil {
		return nil, shared.NewValidationError("amount", "is required")
	}
	var paymentDate = timeOrZero(p.PaymentDate)
	remarks := ""
	if p.Remarks != nil {
		remarks = *p.Remarks
	}
	row, err := payment.NewMasterOnlyRow(input.ClientID, input.ProductType, *p.Amount, paymentDate, normalizeInvoice(p.InvoiceNo), remarks)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := s.checkRowInvoice(ctx, repos.Ledger(), row.InvoiceNo, uuid.Nil); err != nil {
			return err
		}
		return repos.Ledger().Create(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *LedgerService) createWithDetail(ctx context.Context, input CreatePaymentInput, kind payment.EntityKind) (*payment.LedgerRow, payment.Detail, error) {
	var (
		row    *payment.LedgerRow
		detail payment.Detail
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		detail, err = createDetail(ctx, repos.Details(), kind, input.Payload)
		if err != nil {
			return err
		}
		row, err = payment.NewDetailRow(input.ClientID, input.ProductType, detail.DetailID())
		if err != nil {
			return err
		}
		return repos.Ledger().Create(ctx, row)
	})
	if err != nil {
		return nil, nil, err
	}
	return row, detail, nil
}

// UpdatePayment edits an existing payment. Omitted payload fields are
// preserved. A detail-backed row whose detail pointer is still empty
// gets its detail record created and linked on this first edit, in the
// same transaction.
func (s *LedgerService) UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*PaymentView, error) {
	if input.ActorID == uuid.Nil {
		return nil, shared.NewValidationError("actorId", "is required")
	}
	row, err := s.ledgerRepo.FindByID(ctx, input.LedgerID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, shared.NewNotFoundError(fmt.Sprintf("payment %s", input.LedgerID))
	}

	var detail payment.Detail
	switch {
	case row.IsMasterOnly():
		err = s.updateMasterOnly(ctx, row, input.Payload)
	case row.HasDetail():
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var txErr error
			detail, txErr = updateDetail(ctx, repos.Details(), row.EntityKind, *row.EntityID, input.Payload)
			return txErr
		})
		if err == nil {
			row.AddDomainEvent(payment.NewPaymentUpdatedEvent(row))
		}
	default:
		// Lazy creation: the row predates its detail record and the
		// first edit carrying a detail payload creates and links one.
		if !input.Payload.HasDetailFields() {
			return nil, shared.NewValidationError("payload", "has no fields to update")
		}
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var txErr error
			detail, txErr = createDetail(ctx, repos.Details(), row.EntityKind, input.Payload)
			if txErr != nil {
				return txErr
			}
			if txErr = row.LinkDetail(detail.DetailID()); txErr != nil {
				return txErr
			}
			return repos.Ledger().Save(ctx, row)
		})
		if err == nil {
			row.AddDomainEvent(payment.NewPaymentUpdatedEvent(row))
		}
	}
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, row, input.ActorID)
	return s.buildView(ctx, *row, detail), nil
}

func (s *LedgerService) updateMasterOnly(ctx context.Context, row *payment.LedgerRow, p DetailPayload) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice := normalizeInvoice(p.InvoiceNo)
		if err := s.checkRowInvoice(ctx, repos.Ledger(), invoice, row.ID); err != nil {
			return err
		}
		if err := row.PatchMasterFields(p.Amount, p.PaymentDate, invoice, p.Remarks); err != nil {
			return err
		}
		return repos.Ledger().Save(ctx, row)
	})
}

// DeletePayment removes a payment. The detail record, when present, is
// deleted in the same transaction; a missing detail is tolerated so an
// orphaned row can still be cleaned up.
func (s *LedgerService) DeletePayment(ctx context.Context, ledgerID, actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return shared.NewValidationError("actorId", "is required")
	}
	row, err := s.ledgerRepo.FindByID(ctx, ledgerID)
	if err != nil {
		return err
	}
	if row == nil {
		return shared.NewNotFoundError(fmt.Sprintf("payment %s", ledgerID))
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if row.HasDetail() {
			if err := repos.Details().Delete(ctx, row.EntityKind, *row.EntityID); err != nil {
				return err
			}
		}
		return repos.Ledger().Delete(ctx, row.ID)
	})
	if err != nil {
		return err
	}

	row.AddDomainEvent(payment.NewPaymentDeletedEvent(row))
	s.afterCommit(ctx, row, actorID)
	return nil
}

// GetPayment returns one payment's merged projection, read through the
// cache.
func (s *LedgerService) GetPayment(ctx context.Context, ledgerID uuid.UUID) (*PaymentView, error) {
	key := cache.LedgerKey(ledgerID)
	if data, hit := s.cacheGet(ctx, key); hit {
		var view PaymentView
		if err := json.Unmarshal(data, &view); err == nil {
			return &view, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	row, err := s.ledgerRepo.FindByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, shared.NewNotFoundError(fmt.Sprintf("payment %s", ledgerID))
	}
	var detail payment.Detail
	if row.HasDetail() {
		detail, err = s.detailRepo.FindByID(ctx, row.EntityKind, *row.EntityID)
		if err != nil {
			return nil, err
		}
	}
	view := s.buildView(ctx, *row, detail)
	s.cacheSet(ctx, key, view)
	return view, nil
}

// ListByClient returns a client's payments as the merged projection,
// read through the cache. Detail records are batch-loaded with one
// query per kind; a row whose detail record is missing is kept with a
// nil entity rather than dropped.
func (s *LedgerService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]PaymentView, error) {
	key := cache.ClientPaymentsKey(clientID)
	if data, hit := s.cacheGet(ctx, key); hit {
		var views []PaymentView
		if err := json.Unmarshal(data, &views); err == nil {
			return views, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	views, err := s.listFromStore(ctx, clientID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, views)
	return views, nil
}

// SummaryByClient returns the pre-aggregated dashboard view for one
// client, read through the cache.
func (s *LedgerService) SummaryByClient(ctx context.Context, clientID uuid.UUID) (*payment.ClientSummary, error) {
	key := cache.ClientSummaryKey(clientID)
	if data, hit := s.cacheGet(ctx, key); hit {
		var summary payment.ClientSummary
		if err := json.Unmarshal(data, &summary); err == nil {
			return &summary, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	views, err := s.listFromStore(ctx, clientID)
	if err != nil {
		return nil, err
	}
	summary := summarize(clientID, views)
	s.cacheSet(ctx, key, summary)
	return summary, nil
}

func (s *LedgerService) listFromStore(ctx context.Context, clientID uuid.UUID) ([]PaymentView, error) {
	rows, err := s.ledgerRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	// One batch load per kind instead of a query per row
	idsByKind := make(map[payment.EntityKind][]uuid.UUID)
	for _, row := range rows {
		if row.HasDetail() {
			idsByKind[row.EntityKind] = append(idsByKind[row.EntityKind], *row.EntityID)
		}
	}
	detailsByKind := make(map[payment.EntityKind]map[uuid.UUID]payment.Detail, len(idsByKind))
	for kind, ids := range idsByKind {
		loaded, err := s.detailRepo.FindByIDs(ctx, kind, ids)
		if err != nil {
			return nil, err
		}
		detailsByKind[kind] = loaded
	}

	views := make([]PaymentView, 0, len(rows))
	for _, row := range rows {
		var detail payment.Detail
		if row.HasDetail() {
			detail = detailsByKind[row.EntityKind][*row.EntityID]
			if detail == nil {
				s.logger.Warn("ledger row points at a missing detail record",
					zap.String("ledgerId", row.ID.String()),
					zap.String("entityKind", string(row.EntityKind)),
					zap.String("entityId", row.EntityID.String()))
			}
		}
		views = append(views, *s.buildView(ctx, row, detail))
	}
	return views, nil
}

// buildView merges a ledger row and its detail record into the
// normalized projection. Master-only rows surface their own payment
// fields; detail-backed rows hoist the detail's shared fields and carry
// the full record as the entity, financing wrapped with the approver's
// display name.
func (s *LedgerService) buildView(ctx context.Context, row payment.LedgerRow, detail payment.Detail) *PaymentView {
	view := &PaymentView{
		ID:          row.ID,
		ClientID:    row.ClientID,
		ProductType: row.ProductType,
		EntityKind:  row.EntityKind,
		Remarks:     row.Remarks,
		CreatedAt:   row.CreatedAt,
	}
	if row.IsMasterOnly() {
		view.Amount = row.Amount
		view.PaymentDate = row.PaymentDate
		view.InvoiceNo = row.InvoiceNo
		return view
	}
	if detail == nil {
		// Orphaned pointer or never-created detail: the row is still
		// listed, just without payment figures.
		return view
	}

	base := detail.Base()
	amount := base.Amount
	paymentDate := base.PaymentDate
	view.Amount = &amount
	view.PaymentDate = &paymentDate
	view.InvoiceNo = base.InvoiceNo
	view.Remarks = base.Remarks

	if fin, ok := detail.(*payment.FinancingDetail); ok {
		view.Entity = s.financingView(ctx, fin)
	} else {
		view.Entity = detail
	}
	return view
}

func (s *LedgerService) financingView(ctx context.Context, fin *payment.FinancingDetail) *FinancingView {
	fv := &FinancingView{FinancingDetail: fin}
	if fin.ApprovedBy != nil {
		name, err := s.actors.DisplayName(ctx, *fin.ApprovedBy)
		if err != nil {
			s.logger.Warn("resolving approver name failed",
				zap.String("approverId", fin.ApprovedBy.String()), zap.Error(err))
		}
		fv.ApproverName = name
	}
	return fv
}

// summarize derives the per-client aggregate from the merged
// projection. Financing payments still in the approval queue (or
// rejected) are counted but excluded from the collected total.
func summarize(clientID uuid.UUID, views []PaymentView) *payment.ClientSummary {
	summary := &payment.ClientSummary{
		ClientID:       clientID,
		PaymentCount:   int64(len(views)),
		TotalCollected: decimal.Zero,
	}
	for _, v := range views {
		if v.Amount == nil {
			continue
		}
		if fv, ok := v.Entity.(*FinancingView); ok && fv.ApprovalStatus != payment.ApprovalApproved {
			continue
		}
		summary.TotalCollected = summary.TotalCollected.Add(*v.Amount)
	}
	return summary
}

// afterCommit drains the aggregate's domain events, stamps them with
// the actor and a fresh client summary, and runs every hook. Hook
// failures are logged and swallowed: the authoritative write already
// committed.
func (s *LedgerService) afterCommit(ctx context.Context, row *payment.LedgerRow, actorID uuid.UUID) {
	events := row.GetDomainEvents()
	row.ClearDomainEvents()
	if len(events) == 0 {
		return
	}

	summary := s.freshSummary(ctx, row.ClientID)
	for _, event := range events {
		if enrichable, ok := event.(payment.EnrichableEvent); ok {
			if enrichable.Mutation().ActorID == uuid.Nil {
				enrichable.SetActor(actorID)
			}
			enrichable.SetSummary(summary)
		}
		s.runHooks(ctx, event)
	}
}

func (s *LedgerService) freshSummary(ctx context.Context, clientID uuid.UUID) *payment.ClientSummary {
	views, err := s.listFromStore(ctx, clientID)
	if err != nil {
		s.logger.Warn("deriving client summary failed",
			zap.String("clientId", clientID.String()), zap.Error(err))
		return nil
	}
	return summarize(clientID, views)
}

// runHooks gives each hook its own error boundary. A panicking or
// failing hook is logged and the next hook still runs.
func (s *LedgerService) runHooks(ctx context.Context, event shared.DomainEvent) {
	for _, hook := range s.hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("post-commit hook panicked",
						zap.String("hook", hook.Name()),
						zap.String("eventType", event.EventType()),
						zap.Any("panic", r))
				}
			}()
			if err := hook.Handle(ctx, event); err != nil {
				s.logger.Error("post-commit hook failed",
					zap.String("hook", hook.Name()),
					zap.String("eventType", event.EventType()),
					zap.Error(err))
			}
		}()
	}
}

func (s *LedgerService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed, falling through", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, hit
}

func (s *LedgerService) cacheSet(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// timeOrZero dereferences an optional time, zero when omitted
func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// normalizeInvoice treats an empty invoice number as absent so the
// unique index never collides on ""
func normalizeInvoice(invoiceNo *string) *string {
	if invoiceNo == nil || *invoiceNo == "" {
		return nil
	}
	return invoiceNo
}

func (s *LedgerService) checkRowInvoice(ctx context.Context, repo payment.LedgerRepository, invoiceNo *string, excludeID uuid.UUID) error {
	if invoiceNo == nil || *invoiceNo == "" {
		return nil
	}
	taken, err := repo.ExistsByInvoiceNo(ctx, *invoiceNo, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDuplicateKeyError("invoiceNo", *invoiceNo)
	}
	return nil
}
