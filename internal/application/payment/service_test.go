package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
	"github.com/visaflow/backend/internal/infrastructure/cache"
)

func strPtr(s string) *string { return &s }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestCreatePayment_MasterOnly(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	clientID := uuid.New()
	actorID := uuid.New()

	f.ledgerRepo.On("ExistsByInvoiceNo", ctx, "INV-100", uuid.Nil).Return(false, nil)
	f.ledgerRepo.On("Create", ctx, mock.AnythingOfType("*payment.LedgerRow")).Return(nil)
	f.ledgerRepo.On("FindByClient", ctx, clientID).Return([]payment.LedgerRow{}, nil)

	view, err := f.service.CreatePayment(ctx, CreatePaymentInput{
		ClientID:    clientID,
		ProductType: payment.ProductConsultationFee,
		ActorID:     actorID,
		Payload: DetailPayload{
			Amount:    decPtr(decimal.NewFromInt(1500)),
			InvoiceNo: strPtr("INV-100"),
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, payment.KindMasterOnly, view.EntityKind)
	assert.Nil(t, view.Entity)
	assert.True(t, view.Amount.Equal(decimal.NewFromInt(1500)))
	assert.NotNil(t, view.PaymentDate)

	events := f.hook.recorded()
	assert.Len(t, events, 1)
	created := events[0].(*payment.PaymentCreatedEvent)
	assert.Equal(t, payment.ActionCreated, created.Mutation().Action)
	assert.Equal(t, actorID, created.Mutation().ActorID)
	f.ledgerRepo.AssertExpectations(t)
}

func TestCreatePayment_MasterOnlyRequiresAmount(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentInput{
		ClientID:    uuid.New(),
		ProductType: payment.ProductVisitorVisaFee,
		ActorID:     uuid.New(),
	})

	assert.True(t, shared.IsValidation(err))
	f.ledgerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePayment_UnknownProduct(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentInput{
		ClientID:    uuid.New(),
		ProductType: payment.ProductType("yacht_rental"),
		ActorID:     uuid.New(),
	})

	assert.True(t, shared.IsValidation(err))
}

func TestCreatePayment_DuplicateRowInvoice(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.ledgerRepo.On("ExistsByInvoiceNo", ctx, "INV-100", uuid.Nil).Return(true, nil)

	_, err := f.service.CreatePayment(ctx, CreatePaymentInput{
		ClientID:    uuid.New(),
		ProductType: payment.ProductEmbassyFee,
		ActorID:     uuid.New(),
		Payload: DetailPayload{
			Amount:    decPtr(decimal.NewFromInt(900)),
			InvoiceNo: strPtr("INV-100"),
		},
	})

	assert.True(t, shared.IsDuplicateKey(err))
	f.ledgerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePayment_WithDetail(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	clientID := uuid.New()

	f.detailRepo.On("Create", ctx, mock.AnythingOfType("*payment.SimCardDetail")).Return(nil)
	f.ledgerRepo.On("Create", ctx, mock.AnythingOfType("*payment.LedgerRow")).Return(nil)
	f.ledgerRepo.On("FindByClient", ctx, clientID).Return([]payment.LedgerRow{}, nil)

	view, err := f.service.CreatePayment(ctx, CreatePaymentInput{
		ClientID:    clientID,
		ProductType: payment.ProductSimCard,
		ActorID:     uuid.New(),
		Payload: DetailPayload{
			Amount:   decPtr(decimal.NewFromInt(499)),
			Provider: strPtr("Airtel"),
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, payment.KindSimCard, view.EntityKind)
	sim := view.Entity.(*payment.SimCardDetail)
	assert.Equal(t, "Airtel", sim.Provider)
	assert.Equal(t, payment.SimStatusPending, sim.Status)
	// Hoisted from the detail record, never from the row
	assert.True(t, view.Amount.Equal(decimal.NewFromInt(499)))
	f.detailRepo.AssertExpectations(t)
	f.ledgerRepo.AssertExpectations(t)
}

func TestCreatePayment_DetailValidationStopsLedgerWrite(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentInput{
		ClientID:    uuid.New(),
		ProductType: payment.ProductSimCard,
		ActorID:     uuid.New(),
		Payload: DetailPayload{
			Amount: decPtr(decimal.NewFromInt(499)),
			// provider missing
		},
	})

	assert.True(t, shared.IsValidation(err))
	f.ledgerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.hook.recorded())
}

func TestCreatePayment_DuplicateTicketNo(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.detailRepo.On("ExistsByColumn", ctx, payment.KindAirTicket, "ticket_no", "TK-9", uuid.Nil).Return(true, nil)

	_, err := f.service.CreatePayment(ctx, CreatePaymentInput{
		ClientID:    uuid.New(),
		ProductType: payment.ProductAirTicket,
		ActorID:     uuid.New(),
		Payload: DetailPayload{
			Amount:   decPtr(decimal.NewFromInt(42000)),
			Airline:  strPtr("Air India"),
			Side:     strPtr("departure"),
			TicketNo: strPtr("TK-9"),
		},
	})

	var dup *shared.DuplicateKeyError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "ticketNo", dup.Field)
	f.detailRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdatePayment_NotFound(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	id := uuid.New()

	f.ledgerRepo.On("FindByID", ctx, id).Return(nil, nil)

	_, err := f.service.UpdatePayment(ctx, UpdatePaymentInput{LedgerID: id, ActorID: uuid.New()})
	assert.True(t, shared.IsNotFound(err))
}

func TestUpdatePayment_MasterOnlyPreservesOmittedFields(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	invoice := "INV-7"
	row, err := payment.NewMasterOnlyRow(uuid.New(), payment.ProductCourierCharge, decimal.NewFromInt(350), time.Now(), &invoice, "urgent")
	assert.NoError(t, err)
	row.ClearDomainEvents()

	f.ledgerRepo.On("FindByID", ctx, row.ID).Return(row, nil)
	f.ledgerRepo.On("Save", ctx, row).Return(nil)
	f.ledgerRepo.On("FindByClient", ctx, row.ClientID).Return([]payment.LedgerRow{*row}, nil)

	view, err := f.service.UpdatePayment(ctx, UpdatePaymentInput{
		LedgerID: row.ID,
		ActorID:  uuid.New(),
		Payload:  DetailPayload{Amount: decPtr(decimal.NewFromInt(400))},
	})

	assert.NoError(t, err)
	assert.True(t, view.Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "INV-7", *view.InvoiceNo)
	assert.Equal(t, "urgent", view.Remarks)

	events := f.hook.recorded()
	assert.Len(t, events, 1)
	assert.Equal(t, payment.ActionUpdated, events[0].(*payment.PaymentUpdatedEvent).Mutation().Action)
}

func TestUpdatePayment_DetailEdit(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	detail := &payment.TuitionDetail{Institution: "Conestoga"}
	detail.Amount = decimal.NewFromInt(120000)
	detail.ApplyDefaults()
	row, err := payment.NewDetailRow(uuid.New(), payment.ProductTuitionFee, detail.ID)
	assert.NoError(t, err)
	row.ClearDomainEvents()

	f.ledgerRepo.On("FindByID", ctx, row.ID).Return(row, nil)
	f.detailRepo.On("FindByID", ctx, payment.KindTuition, detail.ID).Return(detail, nil)
	f.detailRepo.On("Update", ctx, detail).Return(nil)
	f.ledgerRepo.On("FindByClient", ctx, row.ClientID).Return([]payment.LedgerRow{}, nil)

	view, err := f.service.UpdatePayment(ctx, UpdatePaymentInput{
		LedgerID: row.ID,
		ActorID:  uuid.New(),
		Payload:  DetailPayload{Intake: strPtr("Jan 2027")},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Conestoga", view.Entity.(*payment.TuitionDetail).Institution)
	assert.Equal(t, "Jan 2027", view.Entity.(*payment.TuitionDetail).Intake)
	f.detailRepo.AssertExpectations(t)
}

func TestUpdatePayment_LazyDetailCreation(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	row := &payment.LedgerRow{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          uuid.New(),
		ProductType:       payment.ProductIELTSBooking,
		EntityKind:        payment.KindTestEnrollment,
	}

	f.ledgerRepo.On("FindByID", ctx, row.ID).Return(row, nil)
	f.detailRepo.On("Create", ctx, mock.AnythingOfType("*payment.TestEnrollmentDetail")).Return(nil)
	f.ledgerRepo.On("Save", ctx, row).Return(nil)
	f.ledgerRepo.On("FindByClient", ctx, row.ClientID).Return([]payment.LedgerRow{}, nil)

	view, err := f.service.UpdatePayment(ctx, UpdatePaymentInput{
		LedgerID: row.ID,
		ActorID:  uuid.New(),
		Payload: DetailPayload{
			Amount:   decPtr(decimal.NewFromInt(17000)),
			TestName: strPtr("IELTS"),
		},
	})

	assert.NoError(t, err)
	assert.True(t, row.HasDetail())
	enrollment := view.Entity.(*payment.TestEnrollmentDetail)
	assert.Equal(t, *row.EntityID, enrollment.EnrollmentID)
	assert.NotEmpty(t, enrollment.BookingRef)
	f.detailRepo.AssertExpectations(t)
	f.ledgerRepo.AssertExpectations(t)
}

func TestUpdatePayment_UnlinkedRowNeedsDetailPayload(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	row := &payment.LedgerRow{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          uuid.New(),
		ProductType:       payment.ProductSimCard,
		EntityKind:        payment.KindSimCard,
	}

	f.ledgerRepo.On("FindByID", ctx, row.ID).Return(row, nil)

	_, err := f.service.UpdatePayment(ctx, UpdatePaymentInput{LedgerID: row.ID, ActorID: uuid.New()})
	assert.True(t, shared.IsValidation(err))
}

func TestDeletePayment_RemovesDetailAndRow(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	detailID := uuid.New()
	row, err := payment.NewDetailRow(uuid.New(), payment.ProductEducationLoan, detailID)
	assert.NoError(t, err)
	row.ClearDomainEvents()
	actorID := uuid.New()

	f.ledgerRepo.On("FindByID", ctx, row.ID).Return(row, nil)
	f.detailRepo.On("Delete", ctx, payment.KindLoan, detailID).Return(nil)
	f.ledgerRepo.On("Delete", ctx, row.ID).Return(nil)
	f.ledgerRepo.On("FindByClient", ctx, row.ClientID).Return([]payment.LedgerRow{}, nil)

	err = f.service.DeletePayment(ctx, row.ID, actorID)

	assert.NoError(t, err)
	events := f.hook.recorded()
	assert.Len(t, events, 1)
	deleted := events[0].(*payment.PaymentDeletedEvent)
	assert.Equal(t, payment.ActionDeleted, deleted.Mutation().Action)
	assert.Equal(t, actorID, deleted.Mutation().ActorID)
	f.detailRepo.AssertExpectations(t)
	f.ledgerRepo.AssertExpectations(t)
}

func TestDeletePayment_StorageFailureSkipsHooks(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	row, err := payment.NewMasterOnlyRow(uuid.New(), payment.ProductEmbassyFee, decimal.NewFromInt(100), time.Now(), nil, "")
	assert.NoError(t, err)
	row.ClearDomainEvents()

	f.ledgerRepo.On("FindByID", ctx, row.ID).Return(row, nil)
	f.ledgerRepo.On("Delete", ctx, row.ID).Return(shared.NewStorageError("delete ledger row", errors.New("connection reset")))

	err = f.service.DeletePayment(ctx, row.ID, uuid.New())

	assert.Equal(t, shared.CodeStorage, shared.ErrorCode(err))
	assert.Empty(t, f.hook.recorded())
}

func TestListByClient_MergesDetailsAndKeepsOrphans(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	clientID := uuid.New()

	sim := &payment.SimCardDetail{Provider: "Jio", Status: payment.SimStatusActivated}
	sim.Amount = decimal.NewFromInt(499)
	sim.ApplyDefaults()
	simRow, _ := payment.NewDetailRow(clientID, payment.ProductSimCard, sim.ID)

	orphanRow, _ := payment.NewDetailRow(clientID, payment.ProductAirTicket, uuid.New())
	masterRow, _ := payment.NewMasterOnlyRow(clientID, payment.ProductConsultationFee, decimal.NewFromInt(2000), time.Now(), nil, "")

	f.ledgerRepo.On("FindByClient", ctx, clientID).Return([]payment.LedgerRow{*simRow, *orphanRow, *masterRow}, nil)
	f.detailRepo.On("FindByIDs", ctx, payment.KindSimCard, []uuid.UUID{sim.ID}).
		Return(map[uuid.UUID]payment.Detail{sim.ID: sim}, nil)
	f.detailRepo.On("FindByIDs", ctx, payment.KindAirTicket, []uuid.UUID{*orphanRow.EntityID}).
		Return(map[uuid.UUID]payment.Detail{}, nil)

	views, err := f.service.ListByClient(ctx, clientID)

	assert.NoError(t, err)
	assert.Len(t, views, 3)

	byID := make(map[uuid.UUID]PaymentView)
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.NotNil(t, byID[simRow.ID].Entity)
	// The orphaned row is listed without payment figures, not dropped
	assert.Nil(t, byID[orphanRow.ID].Entity)
	assert.Nil(t, byID[orphanRow.ID].Amount)
	assert.True(t, byID[masterRow.ID].Amount.Equal(decimal.NewFromInt(2000)))
}

func TestListByClient_ReadThroughCache(t *testing.T) {
	store := newMapStore()
	f := newServiceFixture(WithCacheStore(store))
	ctx := context.Background()
	clientID := uuid.New()

	f.ledgerRepo.On("FindByClient", ctx, clientID).Return([]payment.LedgerRow{}, nil).Once()

	_, err := f.service.ListByClient(ctx, clientID)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.sets)

	// Second read is served from the cache; the repo would panic on a
	// second call because of Once()
	_, err = f.service.ListByClient(ctx, clientID)
	assert.NoError(t, err)
	f.ledgerRepo.AssertExpectations(t)
}

func TestListByClient_UndecodableCacheEntryFallsThrough(t *testing.T) {
	store := newMapStore()
	f := newServiceFixture(WithCacheStore(store))
	ctx := context.Background()
	clientID := uuid.New()
	store.entries[cache.ClientPaymentsKey(clientID)] = []byte("{not json")

	f.ledgerRepo.On("FindByClient", ctx, clientID).Return([]payment.LedgerRow{}, nil)

	views, err := f.service.ListByClient(ctx, clientID)
	assert.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetPayment_CacheMissLoadsAndCaches(t *testing.T) {
	store := newMapStore()
	f := newServiceFixture(WithCacheStore(store))
	ctx := context.Background()
	row, _ := payment.NewMasterOnlyRow(uuid.New(), payment.ProductWorkVisaFee, decimal.NewFromInt(5500), time.Now(), nil, "")

	f.ledgerRepo.On("FindByID", ctx, row.ID).Return(row, nil).Once()

	view, err := f.service.GetPayment(ctx, row.ID)
	assert.NoError(t, err)
	assert.True(t, view.Amount.Equal(decimal.NewFromInt(5500)))

	cached, ok := store.entries[cache.LedgerKey(row.ID)]
	assert.True(t, ok)
	var decoded PaymentView
	assert.NoError(t, json.Unmarshal(cached, &decoded))
	assert.Equal(t, row.ID, decoded.ID)

	// Served from cache on the second call
	again, err := f.service.GetPayment(ctx, row.ID)
	assert.NoError(t, err)
	assert.Equal(t, view.ID, again.ID)
	f.ledgerRepo.AssertExpectations(t)
}

func TestSummaryByClient_ExcludesUndecidedFinancing(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	clientID := uuid.New()

	pending := &payment.FinancingDetail{PartialPayment: true}
	pending.Amount = decimal.NewFromInt(30000)
	pending.ApplyDefaults()
	pendingRow, _ := payment.NewDetailRow(clientID, payment.ProductFinancing, pending.ID)

	masterRow, _ := payment.NewMasterOnlyRow(clientID, payment.ProductEmbassyFee, decimal.NewFromInt(1000), time.Now(), nil, "")

	f.ledgerRepo.On("FindByClient", ctx, clientID).Return([]payment.LedgerRow{*pendingRow, *masterRow}, nil)
	f.detailRepo.On("FindByIDs", ctx, payment.KindFinancing, []uuid.UUID{pending.ID}).
		Return(map[uuid.UUID]payment.Detail{pending.ID: pending}, nil)

	summary, err := f.service.SummaryByClient(ctx, clientID)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), summary.PaymentCount)
	assert.True(t, summary.TotalCollected.Equal(decimal.NewFromInt(1000)))
}

func TestHookFailuresAreIsolated(t *testing.T) {
	f := newServiceFixture()
	panicking := &recordingHook{name: "panicking", panics: true}
	failing := &recordingHook{name: "failing", err: errors.New("redis down")}
	tail := &recordingHook{name: "tail"}
	WithPostCommitHooks(panicking, failing, tail)(f.service)
	ctx := context.Background()
	clientID := uuid.New()

	f.ledgerRepo.On("ExistsByInvoiceNo", ctx, mock.Anything, mock.Anything).Return(false, nil).Maybe()
	f.ledgerRepo.On("Create", ctx, mock.AnythingOfType("*payment.LedgerRow")).Return(nil)
	f.ledgerRepo.On("FindByClient", ctx, clientID).Return([]payment.LedgerRow{}, nil)

	_, err := f.service.CreatePayment(ctx, CreatePaymentInput{
		ClientID:    clientID,
		ProductType: payment.ProductDocumentAttestation,
		ActorID:     uuid.New(),
		Payload:     DetailPayload{Amount: decPtr(decimal.NewFromInt(750))},
	})

	assert.NoError(t, err)
	// Every hook still ran despite the panic and the error before it
	assert.Len(t, panicking.recorded(), 1)
	assert.Len(t, failing.recorded(), 1)
	assert.Len(t, tail.recorded(), 1)
}

func TestAfterCommitAttachesSummary(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	clientID := uuid.New()

	f.ledgerRepo.On("ExistsByInvoiceNo", ctx, mock.Anything, mock.Anything).Return(false, nil).Maybe()
	f.ledgerRepo.On("Create", ctx, mock.AnythingOfType("*payment.LedgerRow")).Return(nil)
	f.ledgerRepo.On("FindByClient", ctx, clientID).Return([]payment.LedgerRow{
		mustMasterRow(t, clientID, decimal.NewFromInt(1200)),
	}, nil)

	_, err := f.service.CreatePayment(ctx, CreatePaymentInput{
		ClientID:    clientID,
		ProductType: payment.ProductStudentVisaFee,
		ActorID:     uuid.New(),
		Payload:     DetailPayload{Amount: decPtr(decimal.NewFromInt(1200))},
	})

	assert.NoError(t, err)
	events := f.hook.recorded()
	assert.Len(t, events, 1)
	summary := events[0].(*payment.PaymentCreatedEvent).Mutation().Summary
	assert.NotNil(t, summary)
	assert.Equal(t, int64(1), summary.PaymentCount)
	assert.True(t, summary.TotalCollected.Equal(decimal.NewFromInt(1200)))
}

func mustMasterRow(t *testing.T, clientID uuid.UUID, amount decimal.Decimal) payment.LedgerRow {
	t.Helper()
	row, err := payment.NewMasterOnlyRow(clientID, payment.ProductStudentVisaFee, amount, time.Now(), nil, "")
	assert.NoError(t, err)
	return *row
}
