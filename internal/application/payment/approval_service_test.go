package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

type approvalFixture struct {
	*serviceFixture
	approval *ApprovalService
}

func newApprovalFixture() *approvalFixture {
	f := newServiceFixture()
	return &approvalFixture{
		serviceFixture: f,
		approval:       NewApprovalService(f.service, zap.NewNop()),
	}
}

func pendingFinancing(amount int64) *payment.FinancingDetail {
	fin := &payment.FinancingDetail{PartialPayment: true}
	fin.Amount = decimal.NewFromInt(amount)
	fin.ApplyDefaults()
	return fin
}

func TestApprove_RecordsApprover(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	fin := pendingFinancing(25000)
	actorID := uuid.New()
	row, _ := payment.NewDetailRow(uuid.New(), payment.ProductFinancing, fin.ID)
	row.ClearDomainEvents()

	f.detailRepo.On("FindByID", ctx, payment.KindFinancing, fin.ID).Return(fin, nil)
	f.detailRepo.On("TransitionFinancingStatus", ctx, fin.ID, payment.ApprovalApproved, &actorID).Return(true, nil)
	f.ledgerRepo.On("FindByEntityID", ctx, payment.KindFinancing, fin.ID).Return(row, nil)
	f.ledgerRepo.On("FindByClient", ctx, row.ClientID).Return([]payment.LedgerRow{}, nil)
	f.actors.On("DisplayName", ctx, actorID).Return("Priya Sharma", nil)

	view, err := f.approval.Approve(ctx, fin.ID, actorID)

	assert.NoError(t, err)
	assert.Equal(t, payment.ApprovalApproved, view.ApprovalStatus)
	assert.Equal(t, actorID, *view.ApprovedBy)
	assert.Equal(t, "Priya Sharma", view.ApproverName)

	events := f.hook.recorded()
	assert.Len(t, events, 1)
	approved := events[0].(*payment.FinancingApprovedEvent)
	assert.Equal(t, payment.ActionApproved, approved.Mutation().Action)
	assert.Equal(t, actorID, approved.Mutation().ActorID)
	assert.Equal(t, fin.ID, approved.FinancingID)
	f.detailRepo.AssertExpectations(t)
}

func TestReject_LeavesApproverEmpty(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	fin := pendingFinancing(18000)
	actorID := uuid.New()
	row, _ := payment.NewDetailRow(uuid.New(), payment.ProductFinancing, fin.ID)
	row.ClearDomainEvents()

	f.detailRepo.On("FindByID", ctx, payment.KindFinancing, fin.ID).Return(fin, nil)
	f.detailRepo.On("TransitionFinancingStatus", ctx, fin.ID, payment.ApprovalRejected, (*uuid.UUID)(nil)).Return(true, nil)
	f.ledgerRepo.On("FindByEntityID", ctx, payment.KindFinancing, fin.ID).Return(row, nil)
	f.ledgerRepo.On("FindByClient", ctx, row.ClientID).Return([]payment.LedgerRow{}, nil)

	view, err := f.approval.Reject(ctx, fin.ID, actorID)

	assert.NoError(t, err)
	assert.Equal(t, payment.ApprovalRejected, view.ApprovalStatus)
	assert.Nil(t, view.ApprovedBy)
	assert.Empty(t, view.ApproverName)

	events := f.hook.recorded()
	assert.Len(t, events, 1)
	rejected := events[0].(*payment.FinancingRejectedEvent)
	assert.Equal(t, payment.ActionRejected, rejected.Mutation().Action)
}

func TestApprove_NotFound(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	id := uuid.New()

	f.detailRepo.On("FindByID", ctx, payment.KindFinancing, id).Return(nil, nil)

	_, err := f.approval.Approve(ctx, id, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}

func TestApprove_AlreadyDecided(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	fin := pendingFinancing(9000)
	assert.NoError(t, fin.Approve(uuid.New()))

	f.detailRepo.On("FindByID", ctx, payment.KindFinancing, fin.ID).Return(fin, nil)

	_, err := f.approval.Approve(ctx, fin.ID, uuid.New())

	assert.True(t, shared.IsInvalidState(err))
	assert.Contains(t, err.Error(), "already approved")
	f.detailRepo.AssertNotCalled(t, "TransitionFinancingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.hook.recorded())
}

func TestApprove_LostRace(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	fin := pendingFinancing(9000)
	actorID := uuid.New()

	f.detailRepo.On("FindByID", ctx, payment.KindFinancing, fin.ID).Return(fin, nil)
	// The conditional update matches zero rows: another manager decided
	// between our read and the write
	f.detailRepo.On("TransitionFinancingStatus", ctx, fin.ID, payment.ApprovalApproved, &actorID).Return(false, nil)

	_, err := f.approval.Approve(ctx, fin.ID, actorID)

	assert.True(t, shared.IsInvalidState(err))
	assert.Empty(t, f.hook.recorded())
	f.ledgerRepo.AssertNotCalled(t, "FindByEntityID", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_DecisionSticksWithoutLedgerRow(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	fin := pendingFinancing(5000)
	actorID := uuid.New()

	f.detailRepo.On("FindByID", ctx, payment.KindFinancing, fin.ID).Return(fin, nil)
	f.detailRepo.On("TransitionFinancingStatus", ctx, fin.ID, payment.ApprovalApproved, &actorID).Return(true, nil)
	f.ledgerRepo.On("FindByEntityID", ctx, payment.KindFinancing, fin.ID).Return(nil, nil)
	f.actors.On("DisplayName", ctx, actorID).Return("", nil)

	view, err := f.approval.Approve(ctx, fin.ID, actorID)

	assert.NoError(t, err)
	assert.Equal(t, payment.ApprovalApproved, view.ApprovalStatus)
	// No row means no event, but the decision already committed
	assert.Empty(t, f.hook.recorded())
}
