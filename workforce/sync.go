/*
sync.go - Expansion of approved requests into attendance writes

PURPOSE:
  Translates exactly one approved request into zero or more attendance-cell
  upserts. This is the only bridge between the request workflow and the
  calendar grid.

EXPANSION RULES:
  Overtime     -> one cell at the work date, status overtime
  Leave/Absent -> one cell per WEEKDAY in [start, end] inclusive, status
                  leave/absent; Saturday and Sunday are never written

  A range that contains no weekdays yields zero writes - that is a valid,
  non-error outcome (count 0). Cells that already hold a manually entered
  status are overwritten: last writer wins, no merge.

IDEMPOTENCY:
  Re-applying the same request upserts the same composite keys, so the cell
  count is stable and no duplicates can appear.

CALENDAR NOTE:
  Weekday determination runs on the same calendar the dates carry. Dates are
  calendar dates, not instants; no timezone shifting happens anywhere here.

SEE ALSO:
  - request.go: Invokes Apply inside the decide transaction
  - attendance.go: The grid being written
*/
package workforce

import (
	"context"
	"fmt"
)

// SyncEngine expands approved requests into attendance records.
type SyncEngine struct{}

func NewSyncEngine() *SyncEngine { return &SyncEngine{} }

// cellStatus maps a request type to the attendance code its cells receive.
func cellStatus(t RequestType) (AttendanceStatus, error) {
	switch t {
	case RequestOvertime:
		return StatusOvertime, nil
	case RequestLeave:
		return StatusLeave, nil
	case RequestAbsent:
		return StatusAbsent, nil
	default:
		return StatusUnset, fmt.Errorf("unknown request type %q", t)
	}
}

// Expand computes the attendance records an approved request produces,
// without touching storage. The request must be structurally valid.
func (e *SyncEngine) Expand(req *EmployeeRequest) ([]AttendanceRecord, error) {
	status, err := cellStatus(req.Type)
	if err != nil {
		return nil, err
	}

	if req.Type == RequestOvertime {
		d := req.Overtime.Date
		return []AttendanceRecord{{
			EmployeeID: req.EmployeeID,
			Year:       d.Year(),
			Month:      int(d.Month()),
			Day:        d.DayOfMonth(),
			Date:       d,
			Status:     status,
		}}, nil
	}

	var records []AttendanceRecord
	for d := req.Range.Start; d.BeforeOrEqual(req.Range.End); d = d.AddDays(1) {
		if d.IsWeekend() {
			continue
		}
		records = append(records, AttendanceRecord{
			EmployeeID: req.EmployeeID,
			Year:       d.Year(),
			Month:      int(d.Month()),
			Day:        d.DayOfMonth(),
			Date:       d,
			Status:     status,
		})
	}
	return records, nil
}

// Apply upserts the expansion of req into store and returns the number of
// cells touched. Callers that need the writes to be atomic with other state
// (the decide path) pass the transactional store view.
func (e *SyncEngine) Apply(ctx context.Context, store AttendanceStore, req *EmployeeRequest) (int, error) {
	records, err := e.Expand(req)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		if err := store.UpsertCell(ctx, rec); err != nil {
			return 0, PersistenceFailure("attendance sync", err)
		}
	}
	return len(records), nil
}
