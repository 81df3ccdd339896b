package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apppayment "github.com/visaflow/backend/internal/application/payment"
	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment ledger API endpoints
type PaymentHandler struct {
	BaseHandler
	ledgerService *apppayment.LedgerService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(ledgerService *apppayment.LedgerService) *PaymentHandler {
	return &PaymentHandler{ledgerService: ledgerService}
}

// PaymentPayloadRequest is the union of fields the product shapes
// accept. Nil means omitted; on update, omitted fields are preserved.
// @Description Product-specific payment fields
type PaymentPayloadRequest struct {
	Amount      *float64   `json:"amount" binding:"omitempty,gt=0" example:"1500.00"`
	PaymentDate *time.Time `json:"payment_date" example:"2026-02-10T00:00:00Z"`
	InvoiceNo   *string    `json:"invoice_no" binding:"omitempty,max=50" example:"INV-2026-0042"`
	Remarks     *string    `json:"remarks" binding:"omitempty,max=500" example:"paid in cash"`

	Provider  *string `json:"provider" binding:"omitempty,max=100" example:"Airtel"`
	SimNumber *string `json:"sim_number" binding:"omitempty,max=30" example:"+91-98000-11111"`
	SimStatus *string `json:"sim_status" binding:"omitempty,oneof=pending activated" example:"pending"`

	Airline    *string    `json:"airline" binding:"omitempty,max=100" example:"Air India"`
	TicketNo   *string    `json:"ticket_no" binding:"omitempty,max=50" example:"098-1234567890"`
	Side       *string    `json:"side" binding:"omitempty,oneof=arrival departure" example:"departure"`
	TravelDate *time.Time `json:"travel_date" example:"2026-03-01T00:00:00Z"`

	TestName   *string    `json:"test_name" binding:"omitempty,max=50" example:"IELTS"`
	BookingRef *string    `json:"booking_ref" binding:"omitempty,max=50" example:"IEL-88421"`
	ExamDate   *time.Time `json:"exam_date" example:"2026-02-20T00:00:00Z"`

	Bank             *string  `json:"bank" binding:"omitempty,max=100" example:"HDFC"`
	SanctionedAmount *float64 `json:"sanctioned_amount" binding:"omitempty,gt=0" example:"2500000.00"`
	AccountType      *string  `json:"account_type" binding:"omitempty,max=50" example:"gic"`
	CardType         *string  `json:"card_type" binding:"omitempty,max=50" example:"student"`

	CardProvider   *string  `json:"card_provider" binding:"omitempty,max=100" example:"Niyo"`
	CurrencyLoaded *string  `json:"currency_loaded" binding:"omitempty,max=10" example:"CAD"`
	ConversionRate *float64 `json:"conversion_rate" binding:"omitempty,gt=0" example:"61.85"`
	TransferRef    *string  `json:"transfer_ref" binding:"omitempty,max=50" example:"SWIFT-774411"`
	Beneficiary    *string  `json:"beneficiary" binding:"omitempty,max=200" example:"Conestoga College"`

	Institution *string `json:"institution" binding:"omitempty,max=200" example:"Seneca College"`
	Intake      *string `json:"intake" binding:"omitempty,max=30" example:"Fall 2026"`

	PolicyNo       *string `json:"policy_no" binding:"omitempty,max=50" example:"POL-99120"`
	CoverageMonths *int    `json:"coverage_months" binding:"omitempty,gt=0" example:"12"`

	VisaType       *string    `json:"visa_type" binding:"omitempty,max=50" example:"visitor"`
	ExtensionUntil *time.Time `json:"extension_until" example:"2027-01-31T00:00:00Z"`

	Description *string `json:"description" binding:"omitempty,max=500" example:"translation service"`
	SaleType    *string `json:"sale_type" binding:"omitempty,max=50" example:"service"`

	PartialPayment *bool      `json:"partial_payment" example:"true"`
	SecondAmount   *float64   `json:"second_amount" binding:"omitempty,gt=0" example:"40000.00"`
	SecondDate     *time.Time `json:"second_date" example:"2026-04-15T00:00:00Z"`
}

// toPayload converts the HTTP payload to the application payload
func (r PaymentPayloadRequest) toPayload() apppayment.DetailPayload {
	p := apppayment.DetailPayload{
		PaymentDate: r.PaymentDate,
		InvoiceNo:   r.InvoiceNo,
		Remarks:     r.Remarks,

		Provider:  r.Provider,
		SimNumber: r.SimNumber,
		SimStatus: r.SimStatus,

		Airline:    r.Airline,
		TicketNo:   r.TicketNo,
		Side:       r.Side,
		TravelDate: r.TravelDate,

		TestName:   r.TestName,
		BookingRef: r.BookingRef,
		ExamDate:   r.ExamDate,

		Bank:        r.Bank,
		AccountType: r.AccountType,
		CardType:    r.CardType,

		CardProvider:   r.CardProvider,
		CurrencyLoaded: r.CurrencyLoaded,
		TransferRef:    r.TransferRef,
		Beneficiary:    r.Beneficiary,

		Institution: r.Institution,
		Intake:      r.Intake,

		PolicyNo:       r.PolicyNo,
		CoverageMonths: r.CoverageMonths,

		VisaType:       r.VisaType,
		ExtensionUntil: r.ExtensionUntil,

		Description: r.Description,
		SaleType:    r.SaleType,

		PartialPayment: r.PartialPayment,
		SecondDate:     r.SecondDate,
	}
	if r.Amount != nil {
		p.Amount = toDecimalPtr(*r.Amount)
	}
	if r.SanctionedAmount != nil {
		p.SanctionedAmount = toDecimalPtr(*r.SanctionedAmount)
	}
	if r.ConversionRate != nil {
		p.ConversionRate = toDecimalPtr(*r.ConversionRate)
	}
	if r.SecondAmount != nil {
		p.SecondAmount = toDecimalPtr(*r.SecondAmount)
	}
	return p
}

// CreatePaymentRequest is the request to record a payment
// @Description Request body for recording a payment
type CreatePaymentRequest struct {
	ClientID    string                `json:"client_id" binding:"required,uuid" example:"7b45aa00-19af-4b21-b0ac-10e773327c2c"`
	ProductType string                `json:"product_type" binding:"required,max=40" example:"sim_card"`
	Payload     PaymentPayloadRequest `json:"payload"`
}

// UpdatePaymentRequest is the request to edit a payment
// @Description Request body for editing a payment; omitted fields are preserved
type UpdatePaymentRequest struct {
	Payload PaymentPayloadRequest `json:"payload"`
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Create)
		payments.GET("/:id", h.Get)
		payments.PUT("/:id", h.Update)
		payments.DELETE("/:id", h.Delete)
	}
	clients := rg.Group("/clients")
	{
		clients.GET("/:clientId/payments", h.ListByClient)
		clients.GET("/:clientId/summary", h.Summary)
	}
}

// Create godoc
// @ID           createPayment
// @Summary      Record a payment
// @Description  Records a payment for a client; the payload shape follows the product type
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting user ID" format(uuid)
// @Param        request body CreatePaymentRequest true "Payment creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "X-Actor-ID header is required")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	view, err := h.ledgerService.CreatePayment(c.Request.Context(), apppayment.CreatePaymentInput{
		ClientID:    clientID,
		ProductType: payment.ProductType(req.ProductType),
		ActorID:     actorID,
		Payload:     req.Payload.toPayload(),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, view)
}

// Get godoc
// @ID           getPayment
// @Summary      Get a payment
// @Description  Returns one ledger row merged with its detail record
// @Tags         payments
// @Produce      json
// @Param        id path string true "Ledger row ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	ledgerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	view, err := h.ledgerService.GetPayment(c.Request.Context(), ledgerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, view)
}

// Update godoc
// @ID           updatePayment
// @Summary      Edit a payment
// @Description  Edits a payment and its detail record; omitted fields are preserved
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting user ID" format(uuid)
// @Param        id path string true "Ledger row ID" format(uuid)
// @Param        request body UpdatePaymentRequest true "Payment update request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "X-Actor-ID header is required")
		return
	}

	ledgerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.ledgerService.UpdatePayment(c.Request.Context(), apppayment.UpdatePaymentInput{
		LedgerID: ledgerID,
		ActorID:  actorID,
		Payload:  req.Payload.toPayload(),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, view)
}

// Delete godoc
// @ID           deletePayment
// @Summary      Delete a payment
// @Description  Removes the ledger row and its detail record
// @Tags         payments
// @Param        X-Actor-ID header string true "Acting user ID" format(uuid)
// @Param        id path string true "Ledger row ID" format(uuid)
// @Success      204 "No Content"
// @Failure      404 {object} dto.Response
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "X-Actor-ID header is required")
		return
	}

	ledgerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	if err := h.ledgerService.DeletePayment(c.Request.Context(), ledgerID, actorID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ListByClient godoc
// @ID           listClientPayments
// @Summary      List a client's payments
// @Description  Returns every payment for one client, newest first
// @Tags         payments
// @Produce      json
// @Param        clientId path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /clients/{clientId}/payments [get]
func (h *PaymentHandler) ListByClient(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	views, err := h.ledgerService.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, views)
}

// Summary godoc
// @ID           getClientSummary
// @Summary      Get a client's payment summary
// @Description  Returns the pre-aggregated payment count and collected total
// @Tags         payments
// @Produce      json
// @Param        clientId path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /clients/{clientId}/summary [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	summary, err := h.ledgerService.SummaryByClient(c.Request.Context(), clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}
