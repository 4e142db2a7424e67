/*
roster.go - External collaborator interfaces

PURPOSE:
  The core reads the employee roster, looks up capabilities, and emits
  notifications - but owns none of it. This file defines those seams.

ROSTER:
  Employees live outside the core. The core needs one thing per employee at
  payroll time: the daily pay rate. Department-specific fields (position,
  rate, birthday) come from a single profile repository parameterized by the
  Department enum; the per-department lookup is implemented once behind the
  Roster interface, never repeated at call sites.

CAPABILITIES:
  Permission sets derived from role/department are an opaque function to this
  core. Nothing here inspects the returned capability strings.

NOTIFICATIONS:
  Fire-and-forget. Errors from the sink are ignored by design; a lost
  notification must never fail a ledger write.

SEE ALSO:
  - store/sqlite/sqlite.go: Roster implementation backed by the
    department_profiles table
*/
package workforce

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEPARTMENT - Enum replacing the name->table switch
// =============================================================================

type Department string

const (
	DeptEngineering Department = "engineering"
	DeptSales       Department = "sales"
	DeptHR          Department = "hr"
	DeptManagement  Department = "management"
	DeptLogistics   Department = "logistics"
	DeptMarketing   Department = "marketing"
	DeptAccounting  Department = "accounting"
	DeptIT          Department = "it"
)

func (d Department) Valid() bool {
	switch d {
	case DeptEngineering, DeptSales, DeptHR, DeptManagement,
		DeptLogistics, DeptMarketing, DeptAccounting, DeptIT:
		return true
	}
	return false
}

// =============================================================================
// EMPLOYEE - Read-only roster view
// =============================================================================

// Employee is the roster record as the core sees it. DailyRate is the only
// field the payroll aggregator consumes; it is read at computation time,
// never cached.
type Employee struct {
	ID         EmployeeID
	Name       string
	Email      string
	Department Department
	Active     bool

	// Department profile
	Position  string
	DailyRate decimal.Decimal
	Birthday  Day
}

// Roster is the employee lookup collaborator.
type Roster interface {
	// GetEmployee returns (nil, nil) when the employee does not exist.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	ListEmployees(ctx context.Context) ([]Employee, error)
}

// StaticRoster is a fixed in-memory roster for tests and demos.
type StaticRoster struct {
	Employees map[EmployeeID]Employee
}

func (r *StaticRoster) GetEmployee(_ context.Context, id EmployeeID) (*Employee, error) {
	emp, ok := r.Employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (r *StaticRoster) ListEmployees(_ context.Context) ([]Employee, error) {
	out := make([]Employee, 0, len(r.Employees))
	for _, emp := range r.Employees {
		out = append(out, emp)
	}
	return out, nil
}

// =============================================================================
// CAPABILITY LOOKUP - Opaque permission function
// =============================================================================

// CapabilityLookup resolves the capability set for a role within a
// department. The core never interprets the result; it only threads it
// through to callers that need it.
type CapabilityLookup func(role string, dept Department) []string

// =============================================================================
// NOTIFIER - Fire-and-forget event sink
// =============================================================================

// Notifier receives workflow events. Implementations must not block the
// caller meaningfully; the core ignores delivery failures.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]any)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, map[string]any) {}

// LogNotifier writes events to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event string, payload map[string]any) {
	log.Printf("notify %s: %v", event, payload)
}
