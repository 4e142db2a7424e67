/*
payroll.go - Payroll aggregation and the approval gate

PURPOSE:
  At period close, turn an employee's attendance grid into a payroll line:
  days_present = count of Present cells in the month, total = days_present x
  the employee's daily rate (read from the roster at computation time, never
  cached). Lines sit at pending until the approval gate moves the whole
  batch.

IMMUTABILITY:
  Re-running a computation while the line is pending overwrites it. Once the
  line is approved or rejected it is immutable; recomputation fails with a
  conflict. There is no reset operation.

BATCHES:
  finalize applies every item under ONE transaction - either the whole run
  posts or none of it does. Items may carry precomputed figures (the caller
  already aggregated) or ask the server to recompute from the grid.

APPROVAL GATE:
  approve-all / reject-all are bulk, unconditional transitions over every
  pending line; there is no per-line selection. Rejection requires a note,
  stamped on each rejected line.

SEE ALSO:
  - attendance.go: The grid being aggregated
  - store.go: UpdateAllPendingPayroll bulk contract
*/
package workforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYROLL AGGREGATOR
// =============================================================================

// PayrollAggregator computes and upserts payroll lines from attendance data.
type PayrollAggregator struct {
	Store  TxStore
	Roster Roster
}

func NewPayrollAggregator(store TxStore, roster Roster) *PayrollAggregator {
	return &PayrollAggregator{Store: store, Roster: roster}
}

// BatchItem is one entry of a finalize run. When Precomputed is set the
// caller's figures are stored as-is; otherwise the line is recomputed from
// the attendance grid.
type BatchItem struct {
	EmployeeID  EmployeeID
	Month       int
	Year        int
	Precomputed *PrecomputedLine
}

// PrecomputedLine carries client-side aggregation results.
type PrecomputedLine struct {
	DaysPresent int
	TotalAmount decimal.Decimal
}

// ComputeForEmployee recomputes one line from the grid and upserts it as
// pending. Fails with a conflict if the line was already finalized.
func (a *PayrollAggregator) ComputeForEmployee(ctx context.Context, id EmployeeID, month, year int) (*PayrollRecord, error) {
	item := BatchItem{EmployeeID: id, Month: month, Year: year}
	if err := validateBatchItem(item); err != nil {
		return nil, err
	}

	emp, err := a.lookupEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	var rec *PayrollRecord
	err = a.Store.WithTx(ctx, func(tx Store) error {
		r, err := a.computeItem(ctx, tx, item, emp)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, PersistenceFailure("payroll compute", err)
	}
	return rec, nil
}

// FinalizeBatch applies every item under one transaction: all lines persist
// or none do. All validation happens before any write.
func (a *PayrollAggregator) FinalizeBatch(ctx context.Context, items []BatchItem) ([]PayrollRecord, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Field: "payrolls", Reason: "must not be empty"}
	}
	for _, item := range items {
		if err := validateBatchItem(item); err != nil {
			return nil, err
		}
	}

	// Roster lookups happen before the transaction opens; only ledger reads
	// and writes run inside it. Every item's employee must exist, including
	// items carrying precomputed figures - a line for a nonexistent employee
	// must never reach the approval gate.
	employees := make(map[EmployeeID]*Employee)
	for _, item := range items {
		if _, ok := employees[item.EmployeeID]; ok {
			continue
		}
		emp, err := a.lookupEmployee(ctx, item.EmployeeID)
		if err != nil {
			return nil, err
		}
		employees[item.EmployeeID] = emp
	}

	records := make([]PayrollRecord, 0, len(items))
	err := a.Store.WithTx(ctx, func(tx Store) error {
		for _, item := range items {
			rec, err := a.computeItem(ctx, tx, item, employees[item.EmployeeID])
			if err != nil {
				return err
			}
			records = append(records, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, PersistenceFailure("payroll finalize", err)
	}
	return records, nil
}

func validateBatchItem(item BatchItem) error {
	if item.EmployeeID == "" {
		return &ValidationError{Field: "employee_id", Reason: "must not be empty"}
	}
	if item.Month < 1 || item.Month > 12 {
		return &ValidationError{Field: "month", Reason: "must be 1-12"}
	}
	if item.Year < 1 {
		return &ValidationError{Field: "year", Reason: "must be positive"}
	}
	if item.Precomputed != nil {
		if item.Precomputed.DaysPresent < 0 {
			return &ValidationError{Field: "days_present", Reason: "must not be negative"}
		}
		if item.Precomputed.TotalAmount.IsNegative() {
			return &ValidationError{Field: "total_amount", Reason: "must not be negative"}
		}
	}
	return nil
}

// lookupEmployee resolves the roster record whose daily rate prices the
// line. Called right before the computation transaction opens, so the rate
// used is whatever the roster holds at computation time.
func (a *PayrollAggregator) lookupEmployee(ctx context.Context, id EmployeeID) (*Employee, error) {
	emp, err := a.Roster.GetEmployee(ctx, id)
	if err != nil {
		return nil, PersistenceFailure("roster lookup", err)
	}
	if emp == nil {
		return nil, &NotFoundError{Kind: "employee", ID: string(id)}
	}
	return emp, nil
}

// computeItem runs inside the batch transaction. A finalized existing line
// is immutable; a pending one is overwritten in place (same ID, same key).
// emp is already resolved; precomputed items use it only as an existence
// proof.
func (a *PayrollAggregator) computeItem(ctx context.Context, tx Store, item BatchItem, emp *Employee) (*PayrollRecord, error) {
	existing, err := tx.GetPayroll(ctx, item.EmployeeID, item.Month, item.Year)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != PayrollPending {
		return nil, &ConflictError{
			Kind:   "payroll line",
			Key:    existing.Key().String(),
			Reason: "already " + string(existing.Status),
		}
	}

	var daysPresent int
	var total decimal.Decimal
	if item.Precomputed != nil {
		daysPresent = item.Precomputed.DaysPresent
		total = item.Precomputed.TotalAmount
	} else {
		daysPresent, err = tx.CountStatus(ctx, item.EmployeeID, item.Year, item.Month, StatusPresent)
		if err != nil {
			return nil, err
		}
		total = emp.DailyRate.Mul(decimal.NewFromInt(int64(daysPresent)))
	}

	now := time.Now().UTC()
	rec := PayrollRecord{
		ID:          uuid.NewString(),
		EmployeeID:  item.EmployeeID,
		Month:       item.Month,
		Year:        item.Year,
		DaysPresent: daysPresent,
		TotalAmount: total,
		Status:      PayrollPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}

	if err := tx.UpsertPayroll(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// String renders the payroll composite key for error messages.
func (k PayrollKey) String() string {
	return fmt.Sprintf("%s-%d-%d", k.EmployeeID, k.Month, k.Year)
}

// =============================================================================
// PAYROLL APPROVAL GATE
// =============================================================================

// PayrollApprovalGate moves payroll lines through pending -> approved/rejected
// in bulk. Both operations are single atomic updates over ALL pending lines.
type PayrollApprovalGate struct {
	Store    TxStore
	Notifier Notifier
}

func NewPayrollApprovalGate(store TxStore, notifier Notifier) *PayrollApprovalGate {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PayrollApprovalGate{Store: store, Notifier: notifier}
}

// ListPending returns every payroll line awaiting the gate.
func (g *PayrollApprovalGate) ListPending(ctx context.Context) ([]PayrollRecord, error) {
	recs, err := g.Store.ListPendingPayroll(ctx)
	if err != nil {
		return nil, PersistenceFailure("pending payroll list", err)
	}
	return recs, nil
}

// ApproveAll transitions every pending line to approved and returns the count.
func (g *PayrollApprovalGate) ApproveAll(ctx context.Context) (int, error) {
	n, err := g.Store.UpdateAllPendingPayroll(ctx, PayrollApproved, "")
	if err != nil {
		return 0, PersistenceFailure("payroll approve-all", err)
	}
	g.Notifier.Notify(ctx, "payroll.approved", map[string]any{"count": n})
	return n, nil
}

// RejectAll transitions every pending line to rejected and stamps the note
// on each. The note is required; an empty note changes nothing.
func (g *PayrollApprovalGate) RejectAll(ctx context.Context, note string) (int, error) {
	if strings.TrimSpace(note) == "" {
		return 0, &ValidationError{Field: "note", Reason: "must not be empty"}
	}
	n, err := g.Store.UpdateAllPendingPayroll(ctx, PayrollRejected, note)
	if err != nil {
		return 0, PersistenceFailure("payroll reject-all", err)
	}
	g.Notifier.Notify(ctx, "payroll.rejected", map[string]any{"count": n, "note": note})
	return n, nil
}
