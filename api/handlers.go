/*
handlers.go - HTTP API handlers for the workforce records system

PURPOSE:
  Exposes the workforce core via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Requests:
    POST   /api/requests                  Submit time-off/overtime request
    GET    /api/requests/pending          Requests awaiting decision
    POST   /api/requests/{id}/decide      Approve or reject (one-shot)
    GET    /api/employees/{id}/requests   An employee's request history

  Attendance:
    GET    /api/attendance?year=&month=   Month grid (records + status map)
    POST   /api/attendance/cell           Manual cell upsert

  Payroll:
    POST   /api/payroll/finalize          Finalize a batch (atomic)
    GET    /api/payroll/pending           Lines awaiting the gate
    POST   /api/payroll/approve-all       Bulk approve
    POST   /api/payroll/reject-all        Bulk reject (note required)

  Roster:
    GET    /api/employees                 List roster
    POST   /api/employees                 Create/update employee
    GET    /api/employees/{id}            Get employee

ERROR HANDLING:
  Domain errors map to HTTP status plus a machine-readable code:
  - validation -> 400
  - not_found  -> 404
  - conflict   -> 409
  - internal   -> 500 (generic message; storage details never leak)

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/vicmis/workforce-core/store/sqlite"
	"github.com/vicmis/workforce-core/workforce"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Requests   *workforce.RequestLedger
	Attendance *workforce.AttendanceLedger
	Payroll    *workforce.PayrollAggregator
	Gate       *workforce.PayrollApprovalGate
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	notifier := workforce.LogNotifier{}
	return &Handler{
		Store:      store,
		Requests:   workforce.NewRequestLedger(store, store, notifier),
		Attendance: workforce.NewAttendanceLedger(store),
		Payroll:    workforce.NewPayrollAggregator(store, store),
		Gate:       workforce.NewPayrollApprovalGate(store, notifier),
	}
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// SubmitRequest submits a new time-off or overtime request.
// POST /api/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var dto SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "validation")
		return
	}

	in := workforce.SubmitInput{
		EmployeeID: workforce.EmployeeID(dto.EmployeeID),
		Type:       workforce.RequestType(dto.Type),
		Reason:     dto.Reason,
	}

	if dto.Date != "" || dto.StartTime != "" || dto.EndTime != "" {
		date, err := workforce.ParseDay(dto.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)", "validation")
			return
		}
		start, err := workforce.ParseTimeOfDay(dto.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_time (use HH:MM)", "validation")
			return
		}
		end, err := workforce.ParseTimeOfDay(dto.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_time (use HH:MM)", "validation")
			return
		}
		in.Overtime = &workforce.OvertimeInput{Date: date, Start: start, End: end}
	}

	if dto.StartDate != "" || dto.EndDate != "" {
		start, err := workforce.ParseDay(dto.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date (use YYYY-MM-DD)", "validation")
			return
		}
		end, err := workforce.ParseDay(dto.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date (use YYYY-MM-DD)", "validation")
			return
		}
		in.Range = &workforce.DateRange{Start: start, End: end}
	}

	req, err := h.Requests.Submit(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestDTO(*req))
}

// ListPendingRequests returns requests awaiting a decision, newest first.
// GET /api/requests/pending
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.ListPending(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// ListEmployeeRequests returns an employee's request history.
// GET /api/employees/{id}/requests
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	id := workforce.EmployeeID(chi.URLParam(r, "id"))

	reqs, err := h.Requests.ListByEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// DecideRequest applies a one-shot approve/reject transition.
// POST /api/requests/{id}/decide
func (h *Handler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	id := workforce.RequestID(chi.URLParam(r, "id"))

	var dto DecideRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "validation")
		return
	}

	req, synced, err := h.Requests.Decide(r.Context(), id, workforce.RequestStatus(dto.Decision), dto.DecidedBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DecideResponseDTO{
		Request:     toRequestDTO(*req),
		CellsSynced: synced,
	})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetMonthAttendance returns the month grid for all employees.
// GET /api/attendance?year=2026&month=3
func (h *Handler) GetMonthAttendance(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", "validation")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", "validation")
		return
	}

	view, err := h.Attendance.QueryMonth(r.Context(), year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := MonthAttendanceDTO{
		Year:     year,
		Month:    month,
		Records:  make([]AttendanceRecordDTO, len(view.Records)),
		Statuses: make(map[string]string, len(view.Statuses)),
	}
	for i, rec := range view.Records {
		dto.Records[i] = toAttendanceRecordDTO(rec)
	}
	for key, status := range view.Statuses {
		dto.Statuses[key] = string(status)
	}

	writeJSON(w, http.StatusOK, dto)
}

// UpsertAttendanceCell creates or overwrites one cell directly, bypassing
// the request workflow.
// POST /api/attendance/cell
func (h *Handler) UpsertAttendanceCell(w http.ResponseWriter, r *http.Request) {
	var dto AttendanceCellRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "validation")
		return
	}

	rec, err := h.Attendance.Upsert(r.Context(),
		workforce.EmployeeID(dto.EmployeeID),
		dto.Year, dto.Month, dto.Day,
		workforce.AttendanceStatus(dto.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttendanceRecordDTO(*rec))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// FinalizePayroll finalizes a batch of payroll lines atomically.
// POST /api/payroll/finalize
func (h *Handler) FinalizePayroll(w http.ResponseWriter, r *http.Request) {
	var dto FinalizePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "validation")
		return
	}

	items := make([]workforce.BatchItem, len(dto.Payrolls))
	for i, p := range dto.Payrolls {
		item := workforce.BatchItem{
			EmployeeID: workforce.EmployeeID(p.EmployeeID),
			Month:      p.Month,
			Year:       p.Year,
		}
		if p.DaysPresent != nil && p.TotalAmount != nil {
			amount, err := decimal.NewFromString(*p.TotalAmount)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid total_amount", "validation")
				return
			}
			item.Precomputed = &workforce.PrecomputedLine{
				DaysPresent: *p.DaysPresent,
				TotalAmount: amount,
			}
		}
		items[i] = item
	}

	records, err := h.Payroll.FinalizeBatch(r.Context(), items)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPayrollDTOs(records))
}

// ListPendingPayroll returns all lines awaiting the approval gate.
// GET /api/payroll/pending
func (h *Handler) ListPendingPayroll(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Gate.ListPending(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollDTOs(recs))
}

// ApproveAllPayroll bulk-approves every pending payroll line.
// POST /api/payroll/approve-all
func (h *Handler) ApproveAllPayroll(w http.ResponseWriter, r *http.Request) {
	n, err := h.Gate.ApproveAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkResultDTO{Updated: n})
}

// RejectAllPayroll bulk-rejects every pending payroll line. The note is
// required and is stamped on each rejected line.
// POST /api/payroll/reject-all
func (h *Handler) RejectAllPayroll(w http.ResponseWriter, r *http.Request) {
	var dto RejectAllRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "validation")
		return
	}

	n, err := h.Gate.RejectAll(r.Context(), dto.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkResultDTO{Updated: n})
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ListEmployees returns the full roster.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := workforce.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "employee not found", "not_found")
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee and its department profile.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "validation")
		return
	}
	if dto.ID == "" || dto.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", "validation")
		return
	}

	dept := workforce.Department(dto.Department)
	if !dept.Valid() {
		writeError(w, http.StatusBadRequest, "unknown department", "validation")
		return
	}

	rate := decimal.Zero
	if dto.DailyRate != "" {
		var err error
		rate, err = decimal.NewFromString(dto.DailyRate)
		if err != nil || rate.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid daily_rate", "validation")
			return
		}
	}

	var birthday workforce.Day
	if dto.Birthday != "" {
		var err error
		birthday, err = workforce.ParseDay(dto.Birthday)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid birthday (use YYYY-MM-DD)", "validation")
			return
		}
	}

	active := true
	if dto.Active != nil {
		active = *dto.Active
	}

	emp := workforce.Employee{
		ID:         workforce.EmployeeID(dto.ID),
		Name:       dto.Name,
		Email:      dto.Email,
		Department: dept,
		Active:     active,
		Position:   dto.Position,
		DailyRate:  rate,
		Birthday:   birthday,
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// UTILITY HANDLERS
// =============================================================================

// Health reports server liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ResetDatabase clears all data (dev only).
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeDomainError maps the error taxonomy to HTTP. Internal failures get
// a generic body; the underlying cause is logged, never sent to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case workforce.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), "validation")
	case workforce.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), "not_found")
	case workforce.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), "conflict")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "internal")
	}
}
