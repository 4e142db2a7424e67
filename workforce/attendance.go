/*
attendance.go - The attendance ledger service

PURPOSE:
  Pure storage + query over the persisted calendar grid. Cells are written
  either here (direct manual edit, bypassing the request workflow) or by the
  sync engine expanding an approved request. Both paths share the same
  invariant: at most one record per (employee, year, month, day), upsert
  semantics only.

DATE REDUNDANCY:
  Each cell stores a calendar date alongside its (year, month, day)
  composite. The date is ALWAYS re-derived from the composite on write, so
  the two can never disagree.

SEE ALSO:
  - sync.go: The other writer of this grid
  - payroll.go: Reads the grid at period close
*/
package workforce

import (
	"context"
	"time"
)

// AttendanceLedger exposes upsert and query over attendance cells.
type AttendanceLedger struct {
	Store AttendanceStore
}

func NewAttendanceLedger(store AttendanceStore) *AttendanceLedger {
	return &AttendanceLedger{Store: store}
}

// Upsert creates or overwrites the cell at (employeeID, year, month, day).
// The stored date field is re-derived from the composite every time.
func (l *AttendanceLedger) Upsert(ctx context.Context, employeeID EmployeeID, year, month, day int, status AttendanceStatus) (*AttendanceRecord, error) {
	if employeeID == "" {
		return nil, &ValidationError{Field: "employee_id", Reason: "must not be empty"}
	}
	if !ValidCalendarDate(year, month, day) {
		return nil, &ValidationError{Field: "day", Reason: "not a real calendar date"}
	}
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown attendance status"}
	}

	rec := AttendanceRecord{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
		Day:        day,
		Date:       NewDay(year, time.Month(month), day),
		Status:     status,
	}
	if err := l.Store.UpsertCell(ctx, rec); err != nil {
		return nil, PersistenceFailure("attendance upsert", err)
	}
	return &rec, nil
}

// MonthView is the result of a month query: the raw records plus the
// key->status map consumers use for O(1) cell lookup.
type MonthView struct {
	Records  []AttendanceRecord
	Statuses map[string]AttendanceStatus
}

// QueryMonth returns every cell for (year, month), keyed
// "{employee}-{year}-{month}-{day}".
func (l *AttendanceLedger) QueryMonth(ctx context.Context, year, month int) (*MonthView, error) {
	if month < 1 || month > 12 {
		return nil, &ValidationError{Field: "month", Reason: "must be 1-12"}
	}
	records, err := l.Store.ListMonth(ctx, year, month)
	if err != nil {
		return nil, PersistenceFailure("attendance month query", err)
	}

	view := &MonthView{
		Records:  records,
		Statuses: make(map[string]AttendanceStatus, len(records)),
	}
	for _, rec := range records {
		view.Statuses[rec.Key().String()] = rec.Status
	}
	return view, nil
}

// QueryCell returns the status at a single cell, StatusUnset when the cell
// has never been written.
func (l *AttendanceLedger) QueryCell(ctx context.Context, employeeID EmployeeID, year, month, day int) (AttendanceStatus, error) {
	rec, err := l.Store.GetCell(ctx, employeeID, year, month, day)
	if err != nil {
		return StatusUnset, PersistenceFailure("attendance cell query", err)
	}
	if rec == nil {
		return StatusUnset, nil
	}
	return rec.Status, nil
}
