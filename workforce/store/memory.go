// Package store provides in-memory implementations of the workforce
// persistence interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vicmis/workforce-core/workforce"
)

// =============================================================================
// MEMORY STORE - In-memory TxStore (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	requests map[workforce.RequestID]workforce.EmployeeRequest
	cells    map[workforce.CellKey]workforce.AttendanceRecord
	payroll  map[workforce.PayrollKey]workforce.PayrollRecord
}

func NewMemory() *Memory {
	return &Memory{
		requests: make(map[workforce.RequestID]workforce.EmployeeRequest),
		cells:    make(map[workforce.CellKey]workforce.AttendanceRecord),
		payroll:  make(map[workforce.PayrollKey]workforce.PayrollRecord),
	}
}

// -----------------------------------------------------------------------------
// RequestStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveRequest(_ context.Context, r workforce.EmployeeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id workforce.RequestID) (*workforce.EmployeeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) ListPendingRequests(_ context.Context) ([]workforce.EmployeeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workforce.EmployeeRequest
	for _, r := range m.requests {
		if r.Status == workforce.RequestPending {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) ListRequestsByEmployee(_ context.Context, id workforce.EmployeeID) ([]workforce.EmployeeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workforce.EmployeeRequest
	for _, r := range m.requests {
		if r.EmployeeID == id {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(reqs []workforce.EmployeeRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}

// -----------------------------------------------------------------------------
// AttendanceStore
// -----------------------------------------------------------------------------

func (m *Memory) UpsertCell(_ context.Context, rec workforce.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[rec.Key()] = rec
	return nil
}

func (m *Memory) GetCell(_ context.Context, id workforce.EmployeeID, year, month, day int) (*workforce.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.cells[workforce.CellKey{EmployeeID: id, Year: year, Month: month, Day: day}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) ListMonth(_ context.Context, year, month int) ([]workforce.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workforce.AttendanceRecord
	for _, rec := range m.cells {
		if rec.Year == year && rec.Month == month {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Day < out[j].Day
	})
	return out, nil
}

func (m *Memory) CountStatus(_ context.Context, id workforce.EmployeeID, year, month int, status workforce.AttendanceStatus) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, rec := range m.cells {
		if rec.EmployeeID == id && rec.Year == year && rec.Month == month && rec.Status == status {
			n++
		}
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// PayrollStore
// -----------------------------------------------------------------------------

func (m *Memory) UpsertPayroll(_ context.Context, rec workforce.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payroll[rec.Key()] = rec
	return nil
}

func (m *Memory) GetPayroll(_ context.Context, id workforce.EmployeeID, month, year int) (*workforce.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.payroll[workforce.PayrollKey{EmployeeID: id, Month: month, Year: year}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) ListPendingPayroll(_ context.Context) ([]workforce.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workforce.PayrollRecord
	for _, rec := range m.payroll {
		if rec.Status == workforce.PayrollPending {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (m *Memory) UpdateAllPendingPayroll(_ context.Context, status workforce.PayrollStatus, note string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	n := 0
	for key, rec := range m.payroll {
		if rec.Status != workforce.PayrollPending {
			continue
		}
		rec.Status = status
		rec.RejectionNote = note
		rec.UpdatedAt = now
		m.payroll[key] = rec
		n++
	}
	return n, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support, simulated with a
// snapshot + rollback on error. Units are serialized: a transaction holds
// exclusive access until it commits or rolls back, so reads inside one
// unit cannot observe state another unit is about to overwrite.
type TxMemory struct {
	*Memory
	txMu sync.Mutex
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

func (tm *TxMemory) WithTx(_ context.Context, fn func(workforce.Store) error) error {
	tm.txMu.Lock()
	defer tm.txMu.Unlock()

	snap := tm.snapshot()
	if err := fn(tm.Memory); err != nil {
		tm.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	requests map[workforce.RequestID]workforce.EmployeeRequest
	cells    map[workforce.CellKey]workforce.AttendanceRecord
	payroll  map[workforce.PayrollKey]workforce.PayrollRecord
}

func (tm *TxMemory) snapshot() memorySnapshot {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	snap := memorySnapshot{
		requests: make(map[workforce.RequestID]workforce.EmployeeRequest, len(tm.requests)),
		cells:    make(map[workforce.CellKey]workforce.AttendanceRecord, len(tm.cells)),
		payroll:  make(map[workforce.PayrollKey]workforce.PayrollRecord, len(tm.payroll)),
	}
	for k, v := range tm.requests {
		snap.requests[k] = v
	}
	for k, v := range tm.cells {
		snap.cells[k] = v
	}
	for k, v := range tm.payroll {
		snap.payroll[k] = v
	}
	return snap
}

func (tm *TxMemory) restore(snap memorySnapshot) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.requests = snap.requests
	tm.cells = snap.cells
	tm.payroll = snap.payroll
}
