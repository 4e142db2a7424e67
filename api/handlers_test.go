/*
handlers_test.go - HTTP-level tests for the API surface

Tests for:
- The full request -> decision -> attendance -> payroll -> gate flow
- Error taxonomy mapping (validation/not_found/conflict codes)
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicmis/workforce-core/api"
	"github.com/vicmis/workforce-core/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(store)))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON performs a request and decodes the response body into out (which
// may be nil when the body is irrelevant).
func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createTestEmployee(t *testing.T, srv *httptest.Server, id string, rate string) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees", api.CreateEmployeeRequest{
		ID:         id,
		Name:       "Employee " + id,
		Email:      id + "@example.com",
		Department: "engineering",
		Position:   "Engineer",
		DailyRate:  rate,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// =============================================================================
// FULL FLOW
// =============================================================================

func TestAPI_FullFlow_LeaveToPayroll(t *testing.T) {
	// GIVEN: One employee at rate 1000/day
	// WHEN: Walking the whole pipeline over HTTP
	// THEN: Every stage responds consistently

	srv := newTestServer(t)
	createTestEmployee(t, srv, "emp-1", "1000")

	// Submit a Monday-Sunday leave
	var submitted api.RequestDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", api.SubmitRequestDTO{
		EmployeeID: "emp-1",
		Type:       "leave",
		Reason:     "vacation",
		StartDate:  "2026-03-02",
		EndDate:    "2026-03-08",
	}, &submitted)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", submitted.Status)
	assert.NotEmpty(t, submitted.ID)

	// It shows up in the pending list
	var pending []api.RequestDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/requests/pending", nil, &pending)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, pending, 1)

	// Approve: 5 weekday cells sync
	var decided api.DecideResponseDTO
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+submitted.ID+"/decide",
		api.DecideRequestDTO{Decision: "approved", DecidedBy: "manager-1"}, &decided)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", decided.Request.Status)
	assert.Equal(t, 5, decided.CellsSynced)

	// The month view carries the keyed status map
	var month api.MonthAttendanceDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/attendance?year=2026&month=3", nil, &month)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, month.Records, 5)
	assert.Equal(t, "leave", month.Statuses["emp-1-2026-3-2"])
	assert.Equal(t, "leave", month.Statuses["emp-1-2026-3-6"])
	_, hasSaturday := month.Statuses["emp-1-2026-3-7"]
	assert.False(t, hasSaturday, "weekend cells must never be written")

	// Mark 10 present days manually
	for d := 9; d <= 18; d++ {
		resp = doJSON(t, http.MethodPost, srv.URL+"/api/attendance/cell", api.AttendanceCellRequest{
			EmployeeID: "emp-1", Year: 2026, Month: 3, Day: d, Status: "present",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Finalize: server-side computation from the grid
	var lines []api.PayrollDTO
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/payroll/finalize", api.FinalizePayrollRequest{
		Payrolls: []api.PayrollItemDTO{{EmployeeID: "emp-1", Month: 3, Year: 2026}},
	}, &lines)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, lines, 1)
	assert.Equal(t, 10, lines[0].DaysPresent)
	assert.Equal(t, "10000", lines[0].TotalAmount)
	assert.Equal(t, "pending", lines[0].Status)

	// The gate sees it
	var gatePending []api.PayrollDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/payroll/pending", nil, &gatePending)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, gatePending, 1)

	// Approve all
	var bulk api.BulkResultDTO
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/payroll/approve-all", nil, &bulk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, bulk.Updated)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/payroll/pending", nil, &gatePending)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, gatePending)
}

func TestAPI_OvertimeSubmission_CarriesDerivedHours(t *testing.T) {
	srv := newTestServer(t)
	createTestEmployee(t, srv, "emp-1", "1000")

	var submitted api.RequestDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", api.SubmitRequestDTO{
		EmployeeID: "emp-1",
		Type:       "overtime",
		Reason:     "release push",
		Date:       "2026-03-04",
		StartTime:  "13:00",
		EndTime:    "17:30",
	}, &submitted)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "4.5", submitted.Hours)

	// History endpoint returns it
	var history []api.RequestDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/employees/emp-1/requests", nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, history, 1)
	assert.Equal(t, submitted.ID, history[0].ID)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_DecideTwice_ConflictCode(t *testing.T) {
	srv := newTestServer(t)
	createTestEmployee(t, srv, "emp-1", "1000")

	var submitted api.RequestDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", api.SubmitRequestDTO{
		EmployeeID: "emp-1", Type: "absent", Reason: "errand",
		StartDate: "2026-03-02", EndDate: "2026-03-02",
	}, &submitted)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	decideURL := fmt.Sprintf("%s/api/requests/%s/decide", srv.URL, submitted.ID)
	resp = doJSON(t, http.MethodPost, decideURL,
		api.DecideRequestDTO{Decision: "rejected", DecidedBy: "manager-1"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var errResp api.ErrorResponse
	resp = doJSON(t, http.MethodPost, decideURL,
		api.DecideRequestDTO{Decision: "approved", DecidedBy: "manager-2"}, &errResp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", errResp.Code)
}

func TestAPI_UnknownEmployee_NotFoundCode(t *testing.T) {
	srv := newTestServer(t)

	var errResp api.ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", api.SubmitRequestDTO{
		EmployeeID: "ghost", Type: "leave", Reason: "vacation",
		StartDate: "2026-03-02", EndDate: "2026-03-06",
	}, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errResp.Code)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/employees/ghost", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errResp.Code)
}

func TestAPI_ValidationFailures_ValidationCode(t *testing.T) {
	srv := newTestServer(t)
	createTestEmployee(t, srv, "emp-1", "1000")

	cases := []struct {
		name string
		body api.SubmitRequestDTO
	}{
		{"impossible date", api.SubmitRequestDTO{
			EmployeeID: "emp-1", Type: "leave", Reason: "x",
			StartDate: "2026-02-30", EndDate: "2026-03-02",
		}},
		{"bad time format", api.SubmitRequestDTO{
			EmployeeID: "emp-1", Type: "overtime", Reason: "x",
			Date: "2026-03-04", StartTime: "25:99", EndTime: "17:00",
		}},
		{"missing variant", api.SubmitRequestDTO{
			EmployeeID: "emp-1", Type: "leave", Reason: "x",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var errResp api.ErrorResponse
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", tc.body, &errResp)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "validation", errResp.Code)
		})
	}
}

func TestAPI_RejectAllWithoutNote_ValidationCode(t *testing.T) {
	srv := newTestServer(t)
	createTestEmployee(t, srv, "emp-1", "1000")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/finalize", api.FinalizePayrollRequest{
		Payrolls: []api.PayrollItemDTO{{EmployeeID: "emp-1", Month: 3, Year: 2026}},
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var errResp api.ErrorResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/payroll/reject-all",
		api.RejectAllRequest{Note: ""}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", errResp.Code)

	// The line is still pending
	var gatePending []api.PayrollDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/payroll/pending", nil, &gatePending)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, gatePending, 1)

	// With a note it goes through and the note is stamped
	var bulk api.BulkResultDTO
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/payroll/reject-all",
		api.RejectAllRequest{Note: "wrong period totals"}, &bulk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, bulk.Updated)
}

func TestAPI_FinalizeTwiceAfterApproval_ConflictCode(t *testing.T) {
	srv := newTestServer(t)
	createTestEmployee(t, srv, "emp-1", "1000")

	finalize := api.FinalizePayrollRequest{
		Payrolls: []api.PayrollItemDTO{{EmployeeID: "emp-1", Month: 3, Year: 2026}},
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/payroll/finalize", finalize, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/payroll/approve-all", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var errResp api.ErrorResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/payroll/finalize", finalize, &errResp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", errResp.Code)
}

func TestAPI_Health(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
