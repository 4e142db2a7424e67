package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicmis/workforce-core/store/sqlite"
	"github.com/vicmis/workforce-core/workforce"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func saveTestEmployee(t *testing.T, s *sqlite.Store, id string, rate int64) {
	t.Helper()
	require.NoError(t, s.SaveEmployee(context.Background(), workforce.Employee{
		ID:         workforce.EmployeeID(id),
		Name:       "Employee " + id,
		Email:      id + "@example.com",
		Department: workforce.DeptEngineering,
		Active:     true,
		Position:   "Engineer",
		DailyRate:  decimal.NewFromInt(rate),
	}))
}

// =============================================================================
// SCHEMA-LEVEL UNIQUENESS
// =============================================================================

func TestSQLiteStore_CellUpsert_NoDuplicateRows(t *testing.T) {
	// GIVEN: A cell written twice with different statuses
	// WHEN: Listing the month
	// THEN: One row, last status wins

	s := newTestStore(t)
	ctx := context.Background()

	rec := workforce.AttendanceRecord{
		EmployeeID: "emp-1", Year: 2026, Month: 3, Day: 10,
		Date: workforce.NewDay(2026, time.March, 10), Status: workforce.StatusPresent,
	}
	require.NoError(t, s.UpsertCell(ctx, rec))
	rec.Status = workforce.StatusAbsent
	require.NoError(t, s.UpsertCell(ctx, rec))

	cells, err := s.ListMonth(ctx, 2026, 3)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, workforce.StatusAbsent, cells[0].Status)
	assert.Equal(t, "2026-03-10", cells[0].Date.String())
}

func TestSQLiteStore_PayrollUpsert_UniquePerPeriod(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	line := workforce.PayrollRecord{
		ID: "line-1", EmployeeID: "emp-1", Month: 3, Year: 2026,
		DaysPresent: 20, TotalAmount: decimal.NewFromInt(20000),
		Status: workforce.PayrollPending, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.UpsertPayroll(ctx, line))

	line.DaysPresent = 21
	line.TotalAmount = decimal.NewFromInt(21000)
	require.NoError(t, s.UpsertPayroll(ctx, line))

	stored, err := s.GetPayroll(ctx, "emp-1", 3, 2026)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 21, stored.DaysPresent)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(21000)))

	pending, err := s.ListPendingPayroll(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSQLiteStore_CountStatus_FiltersStatusAndPeriod(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, d := range []int{2, 3, 4} {
		require.NoError(t, s.UpsertCell(ctx, workforce.AttendanceRecord{
			EmployeeID: "emp-1", Year: 2026, Month: 3, Day: d,
			Date: workforce.NewDay(2026, time.March, d), Status: workforce.StatusPresent,
		}))
	}
	require.NoError(t, s.UpsertCell(ctx, workforce.AttendanceRecord{
		EmployeeID: "emp-1", Year: 2026, Month: 3, Day: 5,
		Date: workforce.NewDay(2026, time.March, 5), Status: workforce.StatusLeave,
	}))
	require.NoError(t, s.UpsertCell(ctx, workforce.AttendanceRecord{
		EmployeeID: "emp-1", Year: 2026, Month: 4, Day: 1,
		Date: workforce.NewDay(2026, time.April, 1), Status: workforce.StatusPresent,
	}))

	n, err := s.CountStatus(ctx, "emp-1", 2026, 3, workforce.StatusPresent)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestSQLiteStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction writing a request and a cell, then failing
	// WHEN: WithTx returns
	// THEN: Neither write is visible

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	err := s.WithTx(ctx, func(tx workforce.Store) error {
		if err := tx.SaveRequest(ctx, workforce.EmployeeRequest{
			ID: "req-1", EmployeeID: "emp-1",
			Type: workforce.RequestLeave, Status: workforce.RequestApproved,
			Reason: "vacation",
			Range: &workforce.DateRange{
				Start: workforce.NewDay(2026, time.March, 2),
				End:   workforce.NewDay(2026, time.March, 2),
			},
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		if err := tx.UpsertCell(ctx, workforce.AttendanceRecord{
			EmployeeID: "emp-1", Year: 2026, Month: 3, Day: 2,
			Date: workforce.NewDay(2026, time.March, 2), Status: workforce.StatusLeave,
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	req, err := s.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Nil(t, req)
	cells, err := s.ListMonth(ctx, 2026, 3)
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestSQLiteStore_WithTx_CommitsOnSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx workforce.Store) error {
		return tx.UpsertCell(ctx, workforce.AttendanceRecord{
			EmployeeID: "emp-1", Year: 2026, Month: 3, Day: 2,
			Date: workforce.NewDay(2026, time.March, 2), Status: workforce.StatusPresent,
		})
	})
	require.NoError(t, err)

	cell, err := s.GetCell(ctx, "emp-1", 2026, 3, 2)
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, workforce.StatusPresent, cell.Status)
}

// =============================================================================
// REQUEST ROUND-TRIP
// =============================================================================

func TestSQLiteStore_RequestRoundTrip_BothVariants(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	ot := workforce.EmployeeRequest{
		ID: "req-ot", EmployeeID: "emp-1",
		Type: workforce.RequestOvertime, Status: workforce.RequestPending,
		Reason: "release push",
		Overtime: &workforce.OvertimeSpan{
			Date:  workforce.NewDay(2026, time.March, 4),
			Start: workforce.TimeOfDay{Minutes: 13 * 60},
			End:   workforce.TimeOfDay{Minutes: 17*60 + 30},
			Hours: decimal.RequireFromString("4.5"),
		},
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.SaveRequest(ctx, ot))

	leave := workforce.EmployeeRequest{
		ID: "req-leave", EmployeeID: "emp-1",
		Type: workforce.RequestLeave, Status: workforce.RequestPending,
		Reason: "vacation",
		Range: &workforce.DateRange{
			Start: workforce.NewDay(2026, time.March, 2),
			End:   workforce.NewDay(2026, time.March, 6),
		},
		CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second),
	}
	require.NoError(t, s.SaveRequest(ctx, leave))

	gotOT, err := s.GetRequest(ctx, "req-ot")
	require.NoError(t, err)
	require.NotNil(t, gotOT)
	require.NotNil(t, gotOT.Overtime)
	assert.Nil(t, gotOT.Range)
	assert.Equal(t, "2026-03-04", gotOT.Overtime.Date.String())
	assert.Equal(t, "13:00", gotOT.Overtime.Start.String())
	assert.Equal(t, "17:30", gotOT.Overtime.End.String())
	assert.True(t, gotOT.Overtime.Hours.Equal(decimal.RequireFromString("4.5")))

	gotLeave, err := s.GetRequest(ctx, "req-leave")
	require.NoError(t, err)
	require.NotNil(t, gotLeave)
	require.NotNil(t, gotLeave.Range)
	assert.Nil(t, gotLeave.Overtime)
	assert.Equal(t, "2026-03-02", gotLeave.Range.Start.String())

	// Newest first
	pending, err := s.ListPendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, workforce.RequestID("req-leave"), pending[0].ID)

	missing, err := s.GetRequest(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// ROSTER
// =============================================================================

func TestSQLiteStore_Roster_ProfileJoin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saveTestEmployee(t, s, "emp-1", 1000)
	saveTestEmployee(t, s, "emp-2", 1200)

	emp, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, "Engineer", emp.Position)
	assert.True(t, emp.DailyRate.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, workforce.DeptEngineering, emp.Department)

	all, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	missing, err := s.GetEmployee(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_SaveEmployee_UpdatesProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saveTestEmployee(t, s, "emp-1", 1000)
	require.NoError(t, s.SaveEmployee(ctx, workforce.Employee{
		ID: "emp-1", Name: "Employee emp-1",
		Department: workforce.DeptManagement, Active: true,
		Position: "Lead", DailyRate: decimal.NewFromInt(1500),
	}))

	emp, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, workforce.DeptManagement, emp.Department)
	assert.Equal(t, "Lead", emp.Position)
	assert.True(t, emp.DailyRate.Equal(decimal.NewFromInt(1500)))

	all, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must not duplicate the roster row")
}

// =============================================================================
// FULL ENGINE FLOW ON SQLITE
// =============================================================================

func TestWorkforceEngine_FullFlowOnSQLite(t *testing.T) {
	// GIVEN: An employee with rate 1000
	// WHEN: Submitting + approving a Mon-Fri leave, marking 20 present days,
	//       finalizing payroll, approving the batch
	// THEN: Every stage reads back consistently

	s := newTestStore(t)
	ctx := context.Background()
	saveTestEmployee(t, s, "emp-1", 1000)

	requests := workforce.NewRequestLedger(s, s, nil)
	attendance := workforce.NewAttendanceLedger(s)
	payroll := workforce.NewPayrollAggregator(s, s)
	gate := workforce.NewPayrollApprovalGate(s, nil)

	// Leave Mon 2026-03-02 .. Sun 2026-03-08 -> 5 weekday cells
	req, err := requests.Submit(ctx, workforce.SubmitInput{
		EmployeeID: "emp-1", Type: workforce.RequestLeave, Reason: "vacation",
		Range: &workforce.DateRange{
			Start: workforce.NewDay(2026, time.March, 2),
			End:   workforce.NewDay(2026, time.March, 8),
		},
	})
	require.NoError(t, err)

	_, synced, err := requests.Decide(ctx, req.ID, workforce.RequestApproved, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, 5, synced)

	// 20 present days in the rest of March
	for d := 9; d <= 28; d++ {
		_, err := attendance.Upsert(ctx, "emp-1", 2026, 3, d, workforce.StatusPresent)
		require.NoError(t, err)
	}

	view, err := attendance.QueryMonth(ctx, 2026, 3)
	require.NoError(t, err)
	assert.Len(t, view.Records, 25)
	assert.Equal(t, workforce.StatusLeave, view.Statuses["emp-1-2026-3-2"])
	assert.Equal(t, workforce.StatusPresent, view.Statuses["emp-1-2026-3-9"])

	line, err := payroll.ComputeForEmployee(ctx, "emp-1", 3, 2026)
	require.NoError(t, err)
	assert.Equal(t, 20, line.DaysPresent)
	assert.True(t, line.TotalAmount.Equal(decimal.NewFromInt(20000)), "got %s", line.TotalAmount)

	n, err := gate.ApproveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The line is now immutable
	_, err = payroll.ComputeForEmployee(ctx, "emp-1", 3, 2026)
	assert.True(t, workforce.IsConflict(err), "expected conflict, got %v", err)
}
