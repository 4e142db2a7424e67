/*
Package workforce provides the core workforce-records engine.

PURPOSE:
  This package contains the domain types and services for managing employee
  time-off/overtime requests, the per-employee daily attendance ledger, and
  monthly payroll computed from that ledger. The pipeline is:

    submit request -> review decision -> attendance sync -> payroll aggregation
                                                         -> payroll approval gate

KEY CONCEPTS IN THIS FILE (types.go):
  - AttendanceStatus: The code stored per employee per calendar day
  - Day / TimeOfDay: Calendar-date and wall-clock abstractions (no timezones)
  - EmployeeRequest: Tagged-variant request (Overtime XOR date range)
  - AttendanceRecord / PayrollRecord: The two upsert-only ledgers

DESIGN PRINCIPLES:
  1. Upsert semantics: Attendance cells and payroll lines are keyed by composite
     identity; re-writing the same key overwrites, never duplicates
  2. Precision: Uses decimal.Decimal for pay rates, amounts, and overtime hours
  3. Structural invariants: Request variants are separate structs, so "exactly
     one field group populated" is enforced by the type, not convention
  4. Calendar dates, not instants: Day carries no timezone; weekday math is
     done on the calendar the dates were written in

SEE ALSO:
  - request.go: Request lifecycle (submit/decide)
  - sync.go: Approved-request expansion into attendance cells
  - attendance.go: Attendance ledger service
  - payroll.go: Payroll aggregation and approval gate
*/
package workforce

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RequestID string

// =============================================================================
// ATTENDANCE STATUS - The value stored per employee per calendar day
// =============================================================================

type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "present"
	StatusAbsent   AttendanceStatus = "absent"
	StatusLeave    AttendanceStatus = "leave"
	StatusHoliday  AttendanceStatus = "holiday"
	StatusOvertime AttendanceStatus = "overtime"

	// StatusUnset is the zero value: the cell has no recorded status.
	StatusUnset AttendanceStatus = ""
)

// Valid reports whether s is a known status code. StatusUnset is valid:
// clearing a cell back to "no status" is an ordinary upsert.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave, StatusHoliday, StatusOvertime, StatusUnset:
		return true
	}
	return false
}

// =============================================================================
// DAY - Calendar date with day granularity (never an instant)
// =============================================================================

// Day is a calendar date. It is stored normalized to midnight UTC purely so
// weekday arithmetic has a concrete calendar to run on; no value in this
// system is ever interpreted as a point in time.
type Day struct {
	t time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses "YYYY-MM-DD".
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return Day{t: t}, nil
}

func Today() Day {
	now := time.Now().UTC()
	return NewDay(now.Year(), now.Month(), now.Day())
}

// Properties
func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) DayOfMonth() int       { return d.t.Day() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }
func (d Day) IsZero() bool          { return d.t.IsZero() }

func (d Day) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Comparison and arithmetic
func (d Day) Before(o Day) bool        { return d.t.Before(o.t) }
func (d Day) After(o Day) bool         { return d.t.After(o.t) }
func (d Day) Equal(o Day) bool         { return d.t.Equal(o.t) }
func (d Day) BeforeOrEqual(o Day) bool { return !d.After(o) }
func (d Day) AddDays(n int) Day        { return Day{t: d.t.AddDate(0, 0, n)} }

func (d Day) String() string { return d.t.Format("2006-01-02") }

// ValidCalendarDate reports whether (year, month, day) names a real calendar
// date. time.Date normalizes overflow (Feb 30 -> Mar 2), so a round-trip
// comparison detects invalid composites.
func ValidCalendarDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// =============================================================================
// TIME OF DAY - Wall-clock time for overtime spans
// =============================================================================

// TimeOfDay is minutes since midnight. It exists only to compute overtime
// hours; it never crosses a date boundary.
type TimeOfDay struct {
	Minutes int
}

// ParseTimeOfDay parses "HH:MM" (seconds, if present, are ignored).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return TimeOfDay{}, &ValidationError{Field: "time", Reason: "must be HH:MM"}
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, &ValidationError{Field: "time", Reason: "must be HH:MM"}
	}
	return TimeOfDay{Minutes: h*60 + m}, nil
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.Minutes < o.Minutes }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Minutes/60, t.Minutes%60)
}

// HoursBetween returns (end - start) in fractional hours, e.g. 13:00 to 17:30
// yields 4.5. Callers must ensure start < end.
func HoursBetween(start, end TimeOfDay) decimal.Decimal {
	return decimal.NewFromInt(int64(end.Minutes - start.Minutes)).
		Div(decimal.NewFromInt(60))
}

// =============================================================================
// ATTENDANCE RECORD - One cell of the persisted calendar grid
// =============================================================================

// CellKey is the composite identity of an attendance cell.
type CellKey struct {
	EmployeeID EmployeeID
	Year       int
	Month      int
	Day        int
}

// String renders the wire key used by month queries:
// "{employee}-{year}-{month}-{day}".
func (k CellKey) String() string {
	return fmt.Sprintf("%s-%d-%d-%d", k.EmployeeID, k.Year, k.Month, k.Day)
}

// AttendanceRecord is one cell. Date is redundant with (Year, Month, Day) and
// is re-derived on every write; it must never disagree with the composite.
type AttendanceRecord struct {
	EmployeeID EmployeeID
	Year       int
	Month      int
	Day        int
	Date       Day
	Status     AttendanceStatus
}

func (r AttendanceRecord) Key() CellKey {
	return CellKey{EmployeeID: r.EmployeeID, Year: r.Year, Month: r.Month, Day: r.Day}
}

// =============================================================================
// EMPLOYEE REQUEST - Tagged variant: Overtime XOR date range
// =============================================================================

type RequestType string

const (
	RequestOvertime RequestType = "overtime"
	RequestLeave    RequestType = "leave"
	RequestAbsent   RequestType = "absent"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestOvertime, RequestLeave, RequestAbsent:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// OvertimeSpan is the payload of an overtime request: a single work date and
// a time span. Hours is derived once at submission and never recomputed.
type OvertimeSpan struct {
	Date  Day
	Start TimeOfDay
	End   TimeOfDay
	Hours decimal.Decimal
}

// DateRange is the payload of a leave or absence request, inclusive on both ends.
type DateRange struct {
	Start Day
	End   Day
}

// EmployeeRequest is a request in the approval workflow. Exactly one of
// Overtime and Range is populated, matching Type; Validate enforces this.
// Status is terminal once non-pending.
type EmployeeRequest struct {
	ID         RequestID
	EmployeeID EmployeeID
	Type       RequestType
	Status     RequestStatus
	Reason     string

	Overtime *OvertimeSpan
	Range    *DateRange

	DecidedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the structural invariant: the populated variant matches Type.
func (r *EmployeeRequest) Validate() error {
	if !r.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "must be overtime, leave, or absent"}
	}
	if strings.TrimSpace(r.Reason) == "" {
		return &ValidationError{Field: "reason", Reason: "must not be empty"}
	}
	switch r.Type {
	case RequestOvertime:
		if r.Overtime == nil || r.Range != nil {
			return &ValidationError{Field: "overtime", Reason: "overtime requests carry exactly the overtime fields"}
		}
		if r.Overtime.Date.IsZero() {
			return &ValidationError{Field: "date", Reason: "required for overtime"}
		}
		if !r.Overtime.Start.Before(r.Overtime.End) {
			return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
		}
	default:
		if r.Range == nil || r.Overtime != nil {
			return &ValidationError{Field: "range", Reason: "leave/absent requests carry exactly the date-range fields"}
		}
		if r.Range.Start.IsZero() || r.Range.End.IsZero() {
			return &ValidationError{Field: "start_date", Reason: "start and end dates required"}
		}
		if r.Range.End.Before(r.Range.Start) {
			return &ValidationError{Field: "end_date", Reason: "must be on or after start_date"}
		}
	}
	return nil
}

// =============================================================================
// PAYROLL RECORD - One payroll line per (employee, month, year)
// =============================================================================

type PayrollStatus string

const (
	PayrollPending  PayrollStatus = "pending"
	PayrollApproved PayrollStatus = "approved"
	PayrollRejected PayrollStatus = "rejected"
)

// PayrollKey is the composite identity of a payroll line.
type PayrollKey struct {
	EmployeeID EmployeeID
	Month      int
	Year       int
}

// PayrollRecord is one payroll line. TotalAmount = DaysPresent x the
// employee's daily rate at computation time. A line is immutable once its
// status leaves pending.
type PayrollRecord struct {
	ID            string
	EmployeeID    EmployeeID
	Month         int
	Year          int
	DaysPresent   int
	TotalAmount   decimal.Decimal
	Status        PayrollStatus
	RejectionNote string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p PayrollRecord) Key() PayrollKey {
	return PayrollKey{EmployeeID: p.EmployeeID, Month: p.Month, Year: p.Year}
}
