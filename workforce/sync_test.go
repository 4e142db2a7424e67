package workforce_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicmis/workforce-core/workforce"
	"github.com/vicmis/workforce-core/workforce/store"
)

// 2026-03-02 is a Monday; 2026-03-07/08 are the following weekend.

func leaveRequest(emp string, start, end workforce.Day) *workforce.EmployeeRequest {
	return &workforce.EmployeeRequest{
		ID:         "req-1",
		EmployeeID: workforce.EmployeeID(emp),
		Type:       workforce.RequestLeave,
		Status:     workforce.RequestApproved,
		Reason:     "vacation",
		Range:      &workforce.DateRange{Start: start, End: end},
	}
}

func TestSyncEngine_WeekLongLeave_WritesWeekdaysOnly(t *testing.T) {
	// GIVEN: An approved leave request spanning Monday through Sunday
	// WHEN: Expanding it
	// THEN: Exactly the 5 weekdays produce cells; Saturday and Sunday never appear

	engine := workforce.NewSyncEngine()
	req := leaveRequest("emp-1",
		workforce.NewDay(2026, time.March, 2),
		workforce.NewDay(2026, time.March, 8))

	records, err := engine.Expand(req)
	require.NoError(t, err)

	require.Len(t, records, 5)
	for _, rec := range records {
		assert.False(t, rec.Date.IsWeekend(), "weekend cell %s must not be written", rec.Date)
		assert.Equal(t, workforce.StatusLeave, rec.Status)
		assert.Equal(t, workforce.EmployeeID("emp-1"), rec.EmployeeID)
	}
	assert.Equal(t, 2, records[0].Day)
	assert.Equal(t, 6, records[4].Day)
}

func TestSyncEngine_WeekendOnlyRange_ZeroWrites(t *testing.T) {
	// GIVEN: An approved absence covering only Saturday and Sunday
	// WHEN: Applying it to a store
	// THEN: Zero cells are written and that is a non-error outcome

	engine := workforce.NewSyncEngine()
	mem := store.NewMemory()
	req := leaveRequest("emp-1",
		workforce.NewDay(2026, time.March, 7),
		workforce.NewDay(2026, time.March, 8))
	req.Type = workforce.RequestAbsent

	n, err := engine.Apply(context.Background(), mem, req)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	cells, err := mem.ListMonth(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestSyncEngine_SingleWeekendDay_ZeroWrites(t *testing.T) {
	// GIVEN: A one-day range falling on a Saturday
	// WHEN: Expanding it
	// THEN: No cells are produced

	engine := workforce.NewSyncEngine()
	sat := workforce.NewDay(2026, time.March, 7)
	req := leaveRequest("emp-1", sat, sat)

	records, err := engine.Expand(req)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSyncEngine_Overtime_SingleCellAtWorkDate(t *testing.T) {
	// GIVEN: An approved overtime request for one date
	// WHEN: Expanding it
	// THEN: Exactly one cell at that date with status overtime

	engine := workforce.NewSyncEngine()
	req := &workforce.EmployeeRequest{
		ID:         "req-ot",
		EmployeeID: "emp-1",
		Type:       workforce.RequestOvertime,
		Status:     workforce.RequestApproved,
		Reason:     "release push",
		Overtime: &workforce.OvertimeSpan{
			Date:  workforce.NewDay(2026, time.March, 4),
			Start: workforce.TimeOfDay{Minutes: 18 * 60},
			End:   workforce.TimeOfDay{Minutes: 21 * 60},
		},
	}

	records, err := engine.Expand(req)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, workforce.StatusOvertime, records[0].Status)
	assert.Equal(t, 2026, records[0].Year)
	assert.Equal(t, 3, records[0].Month)
	assert.Equal(t, 4, records[0].Day)
	assert.Equal(t, "2026-03-04", records[0].Date.String())
}

func TestSyncEngine_OverwritesManualCell_LastWriterWins(t *testing.T) {
	// GIVEN: A cell manually marked present
	// WHEN: An approved leave covering that day is applied
	// THEN: The cell now reads leave; no second record exists

	engine := workforce.NewSyncEngine()
	mem := store.NewMemory()
	ctx := context.Background()

	day := workforce.NewDay(2026, time.March, 3)
	require.NoError(t, mem.UpsertCell(ctx, workforce.AttendanceRecord{
		EmployeeID: "emp-1", Year: 2026, Month: 3, Day: 3,
		Date: day, Status: workforce.StatusPresent,
	}))

	_, err := engine.Apply(ctx, mem, leaveRequest("emp-1", day, day))
	require.NoError(t, err)

	cells, err := mem.ListMonth(ctx, 2026, 3)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, workforce.StatusLeave, cells[0].Status)
}

func TestSyncEngine_ReApply_Idempotent(t *testing.T) {
	// GIVEN: A leave already applied once
	// WHEN: Applying the same request again
	// THEN: The cell count is unchanged (upserts hit the same keys)

	engine := workforce.NewSyncEngine()
	mem := store.NewMemory()
	ctx := context.Background()

	req := leaveRequest("emp-1",
		workforce.NewDay(2026, time.March, 2),
		workforce.NewDay(2026, time.March, 6))

	n1, err := engine.Apply(ctx, mem, req)
	require.NoError(t, err)
	n2, err := engine.Apply(ctx, mem, req)
	require.NoError(t, err)

	assert.Equal(t, n1, n2)
	cells, err := mem.ListMonth(ctx, 2026, 3)
	require.NoError(t, err)
	assert.Len(t, cells, 5)
}
