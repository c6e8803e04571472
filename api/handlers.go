/*
handlers.go - HTTP API handlers for the billing engine

PURPOSE:
  Exposes the maintenance-fee billing engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Associations:
    GET    /api/associations                        List known associations

  Units:
    GET    /api/associations/{id}/units             List units
    POST   /api/associations/{id}/units             Register unit
    PUT    /api/associations/{id}/units/{unitID}    Update quota/occupancy

  Expenses:
    GET    /api/associations/{id}/expenses          List expenses
    POST   /api/associations/{id}/expenses          Record expense

  Funds:
    GET    /api/associations/{id}/funds             List recurring funds
    POST   /api/associations/{id}/funds             Configure recurring fund

  Payments:
    GET    /api/associations/{id}/payments          List payments
    POST   /api/associations/{id}/payments          Record payment
    POST   /api/associations/{id}/payments/{paymentID}/confirm

  Rules:
    GET    /api/associations/{id}/rules             Get billing rules
    PUT    /api/associations/{id}/rules             Set billing rules

  Billing:
    GET    /api/associations/{id}/statement?month&year[&as_of]
    GET    /api/associations/{id}/avizier?month&year[&as_of]
    GET    /api/associations/{id}/units/{unitID}/receipt?month&year[&as_of]

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (snapshots + statement cache)
  - Assembler: The statement computation chain
  - Receipts: Receipt number sequence

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Load snapshot, call the assembler
  4. Serialize response
  5. Handle errors

  Statement, avizier, and receipt endpoints all go through the one
  assembler over the same snapshot, so the three surfaces always agree.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate ID)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background statement cache warmer
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blocadmin/billing-engine/avizier"
	"github.com/blocadmin/billing-engine/chitanta"
	"github.com/blocadmin/billing-engine/engine"
	"github.com/blocadmin/billing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Assembler *engine.Assembler
	Receipts  *chitanta.Sequence

	// now is injected for tests; defaults to time.Now.
	now func() time.Time
}

// NewHandler creates a new handler over the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:     store,
		Assembler: engine.NewAssembler(),
		Receipts:  chitanta.NewSequence("BL", 1),
		now:       time.Now,
	}
}

// =============================================================================
// ASSOCIATION HANDLERS
// =============================================================================

// ListAssociations returns the IDs of all known associations.
func (h *Handler) ListAssociations(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Store.ListAssociations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list associations", err)
		return
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// UNIT HANDLERS
// =============================================================================

// ListUnits returns all units of an association.
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	units, err := h.Store.ListUnits(r.Context(), assocID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list units", err)
		return
	}

	dtos := make([]UnitDTO, len(units))
	for i, u := range units {
		dtos[i] = toUnitDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUnit registers a new unit.
func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	var req CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required", nil)
		return
	}
	if req.QuotaShare < 0 {
		writeError(w, http.StatusBadRequest, "quota_share must not be negative", nil)
		return
	}
	if req.OccupantCount < 0 {
		writeError(w, http.StatusBadRequest, "occupant_count must not be negative", nil)
		return
	}

	unit := engine.Unit{
		ID:            engine.UnitID(orNewID(req.ID)),
		AssociationID: assocID,
		Label:         req.Label,
		QuotaShare:    decimal.NewFromFloat(req.QuotaShare),
		OccupantCount: req.OccupantCount,
	}

	if err := h.Store.SaveUnit(r.Context(), unit); err != nil {
		writeStoreError(w, "Failed to create unit", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUnitDTO(unit))
}

// UpdateUnit changes a unit's label, quota share, or occupant count.
func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))
	unitID := engine.UnitID(chi.URLParam(r, "unitID"))

	var req UpdateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	units, err := h.Store.ListUnits(r.Context(), assocID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load units", err)
		return
	}

	var unit *engine.Unit
	for i := range units {
		if units[i].ID == unitID {
			unit = &units[i]
			break
		}
	}
	if unit == nil {
		writeError(w, http.StatusNotFound, "Unit not found", nil)
		return
	}

	if req.Label != nil {
		unit.Label = *req.Label
	}
	if req.QuotaShare != nil {
		if *req.QuotaShare < 0 {
			writeError(w, http.StatusBadRequest, "quota_share must not be negative", nil)
			return
		}
		unit.QuotaShare = decimal.NewFromFloat(*req.QuotaShare)
	}
	if req.OccupantCount != nil {
		if *req.OccupantCount < 0 {
			writeError(w, http.StatusBadRequest, "occupant_count must not be negative", nil)
			return
		}
		unit.OccupantCount = *req.OccupantCount
	}

	if err := h.Store.UpdateUnit(r.Context(), *unit); err != nil {
		writeStoreError(w, "Failed to update unit", err)
		return
	}

	writeJSON(w, http.StatusOK, toUnitDTO(*unit))
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

// ListExpenses returns all recorded expenses of an association.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	expenses, err := h.Store.ListExpenses(r.Context(), assocID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expenses", err)
		return
	}

	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateExpense records an expense against a billing period.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period := engine.NewBillingPeriod(req.Year, time.Month(req.Month))
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid month/year", nil)
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required", nil)
		return
	}

	// Unknown modes are accepted and fall back to quota-share allocation
	// at computation time, so the record is never lost.
	mode := engine.DistributionMode(req.Mode)
	if mode == "" {
		mode = engine.ByQuotaShare
	}

	expense := engine.Expense{
		ID:            engine.ExpenseID(orNewID(req.ID)),
		AssociationID: assocID,
		Amount:        engine.NewAmount(req.Amount),
		Mode:          mode,
		Period:        period,
		Category:      req.Category,
	}
	if req.InvoiceDate != "" {
		invoiceDate, err := time.Parse("2006-01-02", req.InvoiceDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid invoice_date format (use YYYY-MM-DD)", err)
			return
		}
		expense.InvoiceDate = invoiceDate
	}

	if err := h.Store.SaveExpense(r.Context(), expense); err != nil {
		writeStoreError(w, "Failed to record expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseDTO(expense))
}

// =============================================================================
// FUND HANDLERS
// =============================================================================

// ListFunds returns all recurring funds of an association.
func (h *Handler) ListFunds(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	funds, err := h.Store.ListFunds(r.Context(), assocID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list funds", err)
		return
	}

	dtos := make([]FundDTO, len(funds))
	for i, f := range funds {
		dtos[i] = toFundDTO(f)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateFund configures a recurring monthly fund.
func (h *Handler) CreateFund(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	var req CreateFundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.MonthlyAmount < 0 {
		writeError(w, http.StatusBadRequest, "monthly_amount must not be negative", nil)
		return
	}

	fund := engine.RecurringFund{
		ID:            engine.FundID(orNewID(req.ID)),
		AssociationID: assocID,
		Name:          req.Name,
		MonthlyAmount: engine.NewAmount(req.MonthlyAmount),
	}

	if err := h.Store.SaveFund(r.Context(), fund); err != nil {
		writeStoreError(w, "Failed to configure fund", err)
		return
	}

	writeJSON(w, http.StatusCreated, toFundDTO(fund))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns all recorded payments of an association.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	payments, err := h.Store.ListPayments(r.Context(), assocID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment records a payment attributed to a billing period.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UnitID == "" {
		writeError(w, http.StatusBadRequest, "unit_id is required", nil)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive", nil)
		return
	}

	period := engine.NewBillingPeriod(req.Year, time.Month(req.Month))
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid month/year", nil)
		return
	}

	status := engine.PaymentStatus(req.Status)
	switch status {
	case "":
		status = engine.PaymentPending
	case engine.PaymentPending, engine.PaymentConfirmed, engine.PaymentRejected:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status", nil)
		return
	}

	paidAt := h.now()
	if req.PaidAt != "" {
		t, err := time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid paid_at format (use RFC3339)", err)
			return
		}
		paidAt = t
	}

	payment := engine.Payment{
		ID:     engine.PaymentID(orNewID(req.ID)),
		UnitID: engine.UnitID(req.UnitID),
		Amount: engine.NewAmount(req.Amount),
		Status: status,
		Period: period,
		PaidAt: paidAt,
	}

	if err := h.Store.SavePayment(r.Context(), assocID, payment); err != nil {
		writeStoreError(w, "Failed to record payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

// ConfirmPayment flips a pending payment to confirmed.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))
	paymentID := engine.PaymentID(chi.URLParam(r, "paymentID"))

	if err := h.Store.ConfirmPayment(r.Context(), assocID, paymentID); err != nil {
		writeStoreError(w, "Failed to confirm payment", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": string(paymentID), "status": string(engine.PaymentConfirmed)})
}

// =============================================================================
// RULES HANDLERS
// =============================================================================

// GetRules returns the association's billing rules. Unconfigured rules
// come back as zero values with configured=false.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	rules, err := h.Store.GetRules(r.Context(), assocID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get rules", err)
		return
	}

	rate, _ := rules.DailyPenaltyRatePercent.Float64()
	writeJSON(w, http.StatusOK, RulesDTO{
		DueDay:                  rules.DueDay,
		DailyPenaltyRatePercent: rate,
		Configured:              rules.Configured(),
	})
}

// PutRules sets the association's billing rules.
func (h *Handler) PutRules(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	var req RulesDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DueDay < 1 || req.DueDay > 31 {
		writeError(w, http.StatusBadRequest, "due_day must be between 1 and 31", nil)
		return
	}
	if req.DailyPenaltyRatePercent < 0 {
		writeError(w, http.StatusBadRequest, "daily_penalty_rate_percent must not be negative", nil)
		return
	}

	rules := engine.BillingRules{
		DueDay:                  req.DueDay,
		DailyPenaltyRatePercent: decimal.NewFromFloat(req.DailyPenaltyRatePercent),
	}

	if err := h.Store.SaveRules(r.Context(), assocID, rules); err != nil {
		writeStoreError(w, "Failed to save rules", err)
		return
	}

	rate, _ := rules.DailyPenaltyRatePercent.Float64()
	writeJSON(w, http.StatusOK, RulesDTO{
		DueDay:                  rules.DueDay,
		DailyPenaltyRatePercent: rate,
		Configured:              rules.Configured(),
	})
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// GetStatement computes the monthly statement for an association.
// GET /api/associations/{id}/statement?month=&year=[&as_of=YYYY-MM-DD][&cached=true]
//
// With cached=true the handler serves the scheduler-warmed copy when one
// exists and silently recomputes when it does not. Fresh assembly over
// the same snapshot produces the identical statement, so the flag only
// trades latency, never correctness.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	if r.URL.Query().Get("cached") == "true" {
		period, _, err := parseStatementQuery(r, h.now)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		cached, err := h.Store.GetStatement(r.Context(), assocID, period)
		if err != nil && !errors.Is(err, engine.ErrStatementNotCached) {
			writeError(w, http.StatusInternalServerError, "Failed to read statement cache", err)
			return
		}
		if cached != nil {
			dto := toStatementDTO(*cached)
			dto.Cached = true
			writeJSON(w, http.StatusOK, dto)
			return
		}
	}

	st, _, ok := h.assembleWithSnapshot(w, r, assocID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toStatementDTO(st))
}

// GetAvizier renders the notice-board sheet for an association.
func (h *Handler) GetAvizier(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))

	st, snap, ok := h.assembleWithSnapshot(w, r, assocID)
	if !ok {
		return
	}

	sheet := avizier.BuildSheet(st, snap.Rules)
	writeJSON(w, http.StatusOK, toAvizierDTO(sheet))
}

// GetReceipt issues a numbered receipt for one unit's statement line.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	assocID := engine.AssociationID(chi.URLParam(r, "id"))
	unitID := engine.UnitID(chi.URLParam(r, "unitID"))

	st, _, ok := h.assembleWithSnapshot(w, r, assocID)
	if !ok {
		return
	}

	series, number := h.Receipts.Next()
	receipt, err := chitanta.FromStatement(st, unitID, series, number, h.now())
	if err != nil {
		if errors.Is(err, chitanta.ErrUnitNotInStatement) {
			writeError(w, http.StatusNotFound, "Unit not found in statement", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to issue receipt", err)
		return
	}

	writeJSON(w, http.StatusOK, toReceiptDTO(receipt))
}

// assembleWithSnapshot parses period/asOf, loads the snapshot, and runs
// the assembler. Writes the error response itself on failure.
func (h *Handler) assembleWithSnapshot(w http.ResponseWriter, r *http.Request, assocID engine.AssociationID) (engine.BillingStatement, *engine.Snapshot, bool) {
	period, asOf, err := parseStatementQuery(r, h.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return engine.BillingStatement{}, nil, false
	}

	snap, err := h.Store.Snapshot(r.Context(), assocID)
	if err != nil {
		writeStoreError(w, "Failed to load association", err)
		return engine.BillingStatement{}, nil, false
	}

	st := h.Assembler.Assemble(snap, period, asOf)
	return st, snap, true
}

// =============================================================================
// HELPERS
// =============================================================================

func parseStatementQuery(r *http.Request, now func() time.Time) (engine.BillingPeriod, time.Time, error) {
	q := r.URL.Query()

	month, err := atoiParam(q.Get("month"), "month")
	if err != nil {
		return engine.BillingPeriod{}, time.Time{}, err
	}
	year, err := atoiParam(q.Get("year"), "year")
	if err != nil {
		return engine.BillingPeriod{}, time.Time{}, err
	}

	period := engine.NewBillingPeriod(year, time.Month(month))
	if !period.Valid() {
		return engine.BillingPeriod{}, time.Time{}, errInvalidQuery("month/year out of range")
	}

	asOf := now()
	if v := q.Get("as_of"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return engine.BillingPeriod{}, time.Time{}, errInvalidQuery("as_of must be YYYY-MM-DD")
		}
		asOf = t
	}

	return period, asOf, nil
}

func atoiParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, errInvalidQuery(name + " is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidQuery(name + " must be an integer")
	}
	return n, nil
}

func errInvalidQuery(msg string) error {
	return fmt.Errorf("invalid query: %s", msg)
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// writeStoreError maps engine sentinel errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, engine.ErrDuplicateID):
		writeError(w, http.StatusConflict, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
