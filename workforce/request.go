/*
request.go - Employee request lifecycle

PURPOSE:
  Owns the submit -> decide workflow for time-off and overtime requests.

REQUEST FLOW:
  submit  -> validate everything, store as pending (no ledger writes yet)
  decide  -> one-shot transition to approved or rejected
             approved: status change + attendance sync in ONE transaction
             rejected: status change only

ATOMICITY:
  Approval and its attendance writes form a single atomic unit. If the
  date-range expansion fails partway, the status change rolls back too - a
  request is never left "approved" with an incomplete ledger.

TERMINAL STATES:
  approved and rejected are terminal. Deciding a non-pending request fails
  with a conflict and changes nothing.

OVERTIME HOURS:
  Hours are computed from the time span at submission and stored immutably;
  nothing downstream ever recomputes them.

SEE ALSO:
  - sync.go: The expansion applied on approval
  - store.go: TxStore providing the atomic unit
*/
package workforce

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SUBMIT INPUT
// =============================================================================

// OvertimeInput carries the overtime-specific fields of a submission.
type OvertimeInput struct {
	Date  Day
	Start TimeOfDay
	End   TimeOfDay
}

// SubmitInput is a request submission. Exactly one of Overtime and Range
// must be set, matching Type.
type SubmitInput struct {
	EmployeeID EmployeeID
	Type       RequestType
	Reason     string
	Overtime   *OvertimeInput
	Range      *DateRange
}

// =============================================================================
// REQUEST LEDGER
// =============================================================================

// RequestLedger owns the request lifecycle.
type RequestLedger struct {
	Store    TxStore
	Roster   Roster
	Sync     *SyncEngine
	Notifier Notifier
}

func NewRequestLedger(store TxStore, roster Roster, notifier Notifier) *RequestLedger {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RequestLedger{
		Store:    store,
		Roster:   roster,
		Sync:     NewSyncEngine(),
		Notifier: notifier,
	}
}

// Submit validates the input and stores a pending request. All validation
// happens before any write; submission never touches the attendance grid.
func (l *RequestLedger) Submit(ctx context.Context, in SubmitInput) (*EmployeeRequest, error) {
	if in.EmployeeID == "" {
		return nil, &ValidationError{Field: "employee_id", Reason: "must not be empty"}
	}

	emp, err := l.Roster.GetEmployee(ctx, in.EmployeeID)
	if err != nil {
		return nil, PersistenceFailure("roster lookup", err)
	}
	if emp == nil {
		return nil, &NotFoundError{Kind: "employee", ID: string(in.EmployeeID)}
	}

	now := time.Now().UTC()
	req := &EmployeeRequest{
		ID:         RequestID(uuid.NewString()),
		EmployeeID: in.EmployeeID,
		Type:       in.Type,
		Status:     RequestPending,
		Reason:     strings.TrimSpace(in.Reason),
		Range:      in.Range,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Overtime != nil {
		req.Overtime = &OvertimeSpan{
			Date:  in.Overtime.Date,
			Start: in.Overtime.Start,
			End:   in.Overtime.End,
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Hours are derived exactly once, here.
	if req.Type == RequestOvertime {
		req.Overtime.Hours = HoursBetween(req.Overtime.Start, req.Overtime.End)
	}

	if err := l.Store.SaveRequest(ctx, *req); err != nil {
		return nil, PersistenceFailure("request save", err)
	}

	l.Notifier.Notify(ctx, "request.submitted", map[string]any{
		"request_id":  string(req.ID),
		"employee_id": string(req.EmployeeID),
		"type":        string(req.Type),
	})
	return req, nil
}

// Decide applies a one-shot approve/reject transition and returns the
// updated request plus the number of attendance cells touched (0 for a
// rejection). The transition and any sync writes commit together or not
// at all. The load and pending check run inside the same transaction as
// the write, so two racing decides cannot both observe pending: the
// second one conflicts.
func (l *RequestLedger) Decide(ctx context.Context, id RequestID, decision RequestStatus, decidedBy string) (*EmployeeRequest, int, error) {
	if decision != RequestApproved && decision != RequestRejected {
		return nil, 0, &ValidationError{Field: "decision", Reason: "must be approved or rejected"}
	}

	var req *EmployeeRequest
	synced := 0
	err := l.Store.WithTx(ctx, func(tx Store) error {
		r, err := tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return &NotFoundError{Kind: "request", ID: string(id)}
		}
		if r.Status != RequestPending {
			return &ConflictError{
				Kind:   "request",
				Key:    string(id),
				Reason: "already " + string(r.Status),
			}
		}

		r.Status = decision
		r.DecidedBy = decidedBy
		r.UpdatedAt = time.Now().UTC()

		if err := tx.SaveRequest(ctx, *r); err != nil {
			return err
		}
		if decision == RequestApproved {
			n, err := l.Sync.Apply(ctx, tx, r)
			if err != nil {
				return err
			}
			synced = n
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, 0, PersistenceFailure("request decide", err)
	}

	l.Notifier.Notify(ctx, "request.decided", map[string]any{
		"request_id":  string(req.ID),
		"employee_id": string(req.EmployeeID),
		"decision":    string(decision),
		"synced":      synced,
	})
	return req, synced, nil
}

// ListPending returns all requests awaiting a decision, newest first.
func (l *RequestLedger) ListPending(ctx context.Context) ([]EmployeeRequest, error) {
	reqs, err := l.Store.ListPendingRequests(ctx)
	if err != nil {
		return nil, PersistenceFailure("pending request list", err)
	}
	return reqs, nil
}

// ListByEmployee returns an employee's request history, newest first.
func (l *RequestLedger) ListByEmployee(ctx context.Context, id EmployeeID) ([]EmployeeRequest, error) {
	reqs, err := l.Store.ListRequestsByEmployee(ctx, id)
	if err != nil {
		return nil, PersistenceFailure("employee request list", err)
	}
	return reqs, nil
}
