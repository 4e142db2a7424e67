/*
store.go - Persistence interfaces for the three core collections

PURPOSE:
  Defines the interface between the domain services and the database.
  Three logical collections: requests, attendance cells (unique on
  employee+year+month+day), payroll lines (unique on employee+month+year).

UPSERT CONTRACT:
  Attendance cells and payroll lines are upsert-only at their composite keys.
  There are NO delete methods: cells are only ever overwritten, and a payroll
  line only changes through recomputation (while pending) or the approval
  gate's bulk transition.

ATOMIC UNITS:
  TxStore.WithTx brackets the operations that must be all-or-nothing:
  - decide(approved) + the resulting attendance writes
  - a payroll finalize batch
  - approve-all / reject-all bulk transitions

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - workforce/store/memory.go: In-memory for testing

SEE ALSO:
  - request.go, attendance.go, payroll.go: Consumers of these interfaces
*/
package workforce

import "context"

// =============================================================================
// REQUEST STORE
// =============================================================================

// RequestStore persists employee requests. SaveRequest is an upsert by ID;
// status transitions are enforced by RequestLedger, not here.
type RequestStore interface {
	SaveRequest(ctx context.Context, r EmployeeRequest) error

	// GetRequest returns (nil, nil) when the request does not exist.
	GetRequest(ctx context.Context, id RequestID) (*EmployeeRequest, error)

	// ListPendingRequests returns pending requests, newest first.
	ListPendingRequests(ctx context.Context) ([]EmployeeRequest, error)

	// ListRequestsByEmployee returns all requests for one employee, newest first.
	ListRequestsByEmployee(ctx context.Context, id EmployeeID) ([]EmployeeRequest, error)
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

// AttendanceStore persists the calendar grid. UpsertCell must create or
// overwrite at the composite key and never produce a second row for it.
type AttendanceStore interface {
	UpsertCell(ctx context.Context, rec AttendanceRecord) error

	// GetCell returns (nil, nil) when the cell has never been written.
	GetCell(ctx context.Context, id EmployeeID, year, month, day int) (*AttendanceRecord, error)

	// ListMonth returns every cell for (year, month) across all employees.
	ListMonth(ctx context.Context, year, month int) ([]AttendanceRecord, error)

	// CountStatus counts an employee's cells with the given status in a month.
	CountStatus(ctx context.Context, id EmployeeID, year, month int, status AttendanceStatus) (int, error)
}

// =============================================================================
// PAYROLL STORE
// =============================================================================

// PayrollStore persists payroll lines, unique on (employee, month, year).
type PayrollStore interface {
	UpsertPayroll(ctx context.Context, rec PayrollRecord) error

	// GetPayroll returns (nil, nil) when no line exists for the key.
	GetPayroll(ctx context.Context, id EmployeeID, month, year int) (*PayrollRecord, error)

	// ListPendingPayroll returns all lines with status pending.
	ListPendingPayroll(ctx context.Context) ([]PayrollRecord, error)

	// UpdateAllPendingPayroll transitions every pending line to status in one
	// bulk write, stamping note on each, and returns the count transitioned.
	UpdateAllPendingPayroll(ctx context.Context, status PayrollStatus, note string) (int, error)
}

// =============================================================================
// AGGREGATE / TRANSACTIONAL STORE
// =============================================================================

// Store is the full persistence surface the core owns.
type Store interface {
	RequestStore
	AttendanceStore
	PayrollStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back and the error is returned.
	WithTx(ctx context.Context, fn func(Store) error) error
}
