/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

WIRE FORMATS:
  Dates are "YYYY-MM-DD", times of day "HH:MM", money and hours decimal
  strings. The month attendance response carries both the record list and
  the "{employee}-{year}-{month}-{day}" -> status map the calendar grid
  consumes.

VALIDATION:
  Structural validation (JSON decoding, date parsing) is done in handlers;
  semantic validation lives in the workforce package. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - workforce/types.go: The domain model behind them
*/
package api

import (
	"time"

	"github.com/vicmis/workforce-core/workforce"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
	Position   string `json:"position,omitempty"`
	DailyRate  string `json:"daily_rate"`
	Birthday   string `json:"birthday,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Active     *bool  `json:"active,omitempty"`
	Position   string `json:"position"`
	DailyRate  string `json:"daily_rate"`
	Birthday   string `json:"birthday,omitempty"`
}

// SubmitRequestDTO is the body of a request submission.
type SubmitRequestDTO struct {
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	Reason     string `json:"reason,omitempty"`

	// Overtime fields
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	// Leave/absent fields
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// RequestDTO represents an employee request in API responses.
type RequestDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`

	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Hours     string `json:"hours,omitempty"`

	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	DecidedBy string `json:"decided_by,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// DecideRequestDTO is the body of a decide call.
type DecideRequestDTO struct {
	Decision  string `json:"decision"`
	DecidedBy string `json:"decided_by,omitempty"`
}

// DecideResponseDTO is the result of a decide call.
type DecideResponseDTO struct {
	Request     RequestDTO `json:"request"`
	CellsSynced int        `json:"cells_synced"`
}

// AttendanceCellRequest is the body of a manual cell upsert.
type AttendanceCellRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Status     string `json:"status"`
}

// AttendanceRecordDTO represents one attendance cell.
type AttendanceRecordDTO struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

// MonthAttendanceDTO is the month query response: raw records plus the
// keyed status map the calendar grid renders from.
type MonthAttendanceDTO struct {
	Year     int                   `json:"year"`
	Month    int                   `json:"month"`
	Records  []AttendanceRecordDTO `json:"records"`
	Statuses map[string]string     `json:"statuses"`
}

// FinalizePayrollRequest is the body of a finalize run.
type FinalizePayrollRequest struct {
	Payrolls []PayrollItemDTO `json:"payrolls"`
}

// PayrollItemDTO is one item of a finalize run. days_present and
// total_amount are optional: when both are present the figures are stored
// as-is, otherwise the server recomputes from the attendance grid.
type PayrollItemDTO struct {
	EmployeeID  string  `json:"employee_id"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	DaysPresent *int    `json:"days_present,omitempty"`
	TotalAmount *string `json:"total_amount,omitempty"`
}

// PayrollDTO represents a payroll line in API responses.
type PayrollDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	DaysPresent   int    `json:"days_present"`
	TotalAmount   string `json:"total_amount"`
	Status        string `json:"status"`
	RejectionNote string `json:"rejection_note,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// RejectAllRequest is the body of a bulk rejection.
type RejectAllRequest struct {
	Note string `json:"note"`
}

// BulkResultDTO is the result of a bulk approval-gate transition.
type BulkResultDTO struct {
	Updated int `json:"updated"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e workforce.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		Email:      e.Email,
		Department: string(e.Department),
		Active:     e.Active,
		Position:   e.Position,
		DailyRate:  e.DailyRate.String(),
	}
	if !e.Birthday.IsZero() {
		dto.Birthday = e.Birthday.String()
	}
	return dto
}

func toRequestDTO(r workforce.EmployeeRequest) RequestDTO {
	dto := RequestDTO{
		ID:         string(r.ID),
		EmployeeID: string(r.EmployeeID),
		Type:       string(r.Type),
		Status:     string(r.Status),
		Reason:     r.Reason,
		DecidedBy:  r.DecidedBy,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Overtime != nil {
		dto.Date = r.Overtime.Date.String()
		dto.StartTime = r.Overtime.Start.String()
		dto.EndTime = r.Overtime.End.String()
		dto.Hours = r.Overtime.Hours.String()
	}
	if r.Range != nil {
		dto.StartDate = r.Range.Start.String()
		dto.EndDate = r.Range.End.String()
	}
	return dto
}

func toRequestDTOs(reqs []workforce.EmployeeRequest) []RequestDTO {
	dtos := make([]RequestDTO, len(reqs))
	for i, r := range reqs {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}

func toAttendanceRecordDTO(rec workforce.AttendanceRecord) AttendanceRecordDTO {
	return AttendanceRecordDTO{
		EmployeeID: string(rec.EmployeeID),
		Year:       rec.Year,
		Month:      rec.Month,
		Day:        rec.Day,
		Date:       rec.Date.String(),
		Status:     string(rec.Status),
	}
}

func toPayrollDTO(rec workforce.PayrollRecord) PayrollDTO {
	return PayrollDTO{
		ID:            rec.ID,
		EmployeeID:    string(rec.EmployeeID),
		Month:         rec.Month,
		Year:          rec.Year,
		DaysPresent:   rec.DaysPresent,
		TotalAmount:   rec.TotalAmount.String(),
		Status:        string(rec.Status),
		RejectionNote: rec.RejectionNote,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
}

func toPayrollDTOs(recs []workforce.PayrollRecord) []PayrollDTO {
	dtos := make([]PayrollDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toPayrollDTO(rec)
	}
	return dtos
}
