/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface the workforce core consumes
  (workforce.TxStore, workforce.Roster) using SQLite. The same patterns
  apply to PostgreSQL with minor dialect differences.

KEY TABLES:
  requests:            Employee request workflow
  attendance_cells:    The calendar grid; PRIMARY KEY (employee, year, month, day)
  payroll_lines:       Payroll; UNIQUE (employee, month, year)
  employees:           Roster records
  department_profiles: Position / daily rate / birthday, keyed by the
                       department enum (one table, not one per department)

UPSERT ENFORCEMENT:
  The composite-key uniqueness invariants live in the schema: attendance
  cells and payroll lines are written exclusively with
  INSERT ... ON CONFLICT DO UPDATE, so a duplicate row for a key cannot
  exist no matter how often a write is retried.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety plus WAL mode. Each WithTx unit holds
  the write lock for its duration, which serializes the atomic units the
  core requires.

USAGE:
  store, err := sqlite.New("./data/workforce.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - workforce/store.go: Interface definitions
  - workforce/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/vicmis/workforce-core/workforce"
)

// Store implements workforce.TxStore and workforce.Roster using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection: ":memory:" databases are per-connection, and the
	// write lock serializes mutations anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Employee requests (approval workflow)
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reason TEXT NOT NULL,
		ot_date TEXT,
		ot_start TEXT,
		ot_end TEXT,
		ot_hours TEXT,
		range_start TEXT,
		range_end TEXT,
		decided_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON requests(employee_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON requests(status);

	-- Attendance cells (the calendar grid)
	-- CRITICAL: the composite primary key is the uniqueness invariant.
	-- All writes go through ON CONFLICT DO UPDATE; duplicates cannot exist.
	CREATE TABLE IF NOT EXISTS attendance_cells (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year, month, day)
	);

	CREATE INDEX IF NOT EXISTS idx_cells_period
		ON attendance_cells(year, month);
	CREATE INDEX IF NOT EXISTS idx_cells_employee_status
		ON attendance_cells(employee_id, year, month, status);

	-- Payroll lines, unique per (employee, month, year)
	CREATE TABLE IF NOT EXISTS payroll_lines (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		days_present INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		rejection_note TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_payroll_unique
		ON payroll_lines(employee_id, month, year);
	CREATE INDEX IF NOT EXISTS idx_payroll_status
		ON payroll_lines(status);

	-- Roster
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- One profile table parameterized by the department enum, replacing a
	-- per-department table family.
	CREATE TABLE IF NOT EXISTS department_profiles (
		employee_id TEXT PRIMARY KEY,
		department TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		rate_per_day TEXT NOT NULL DEFAULT '0',
		birthday TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_department
		ON department_profiles(department);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query helper can
// run inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// REQUEST STORE (workforce.RequestStore interface)
// =============================================================================

// SaveRequest upserts a request by ID. Only the fields a decision touches
// are updated on conflict.
func (s *Store) SaveRequest(ctx context.Context, r workforce.EmployeeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRequest(ctx, s.db, r)
}

func saveRequest(ctx context.Context, db dbtx, r workforce.EmployeeRequest) error {
	query := `
		INSERT INTO requests (id, employee_id, type, status, reason,
			ot_date, ot_start, ot_end, ot_hours, range_start, range_end,
			decided_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			decided_by = excluded.decided_by,
			updated_at = excluded.updated_at
	`

	var otDate, otStart, otEnd, otHours, rangeStart, rangeEnd sql.NullString
	if r.Overtime != nil {
		otDate = nullString(r.Overtime.Date.String())
		otStart = nullString(r.Overtime.Start.String())
		otEnd = nullString(r.Overtime.End.String())
		otHours = nullString(r.Overtime.Hours.String())
	}
	if r.Range != nil {
		rangeStart = nullString(r.Range.Start.String())
		rangeEnd = nullString(r.Range.End.String())
	}

	_, err := db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, r.Type, r.Status, r.Reason,
		otDate, otStart, otEnd, otHours, rangeStart, rangeEnd,
		nullString(r.DecidedBy),
		r.CreatedAt.Format(time.RFC3339Nano),
		r.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

const requestColumns = `id, employee_id, type, status, reason,
	ot_date, ot_start, ot_end, ot_hours, range_start, range_end,
	decided_by, created_at, updated_at`

// GetRequest returns (nil, nil) when the request does not exist.
func (s *Store) GetRequest(ctx context.Context, id workforce.RequestID) (*workforce.EmployeeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRequest(ctx, s.db, id)
}

func getRequest(ctx context.Context, db dbtx, id workforce.RequestID) (*workforce.EmployeeRequest, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs, err := scanRequests(rows)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

// ListPendingRequests returns pending requests, newest first.
func (s *Store) ListPendingRequests(ctx context.Context) ([]workforce.EmployeeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listPendingRequests(ctx, s.db)
}

func listPendingRequests(ctx context.Context, db dbtx) ([]workforce.EmployeeRequest, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE status = 'pending' ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// ListRequestsByEmployee returns an employee's requests, newest first.
func (s *Store) ListRequestsByEmployee(ctx context.Context, id workforce.EmployeeID) ([]workforce.EmployeeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRequestsByEmployee(ctx, s.db, id)
}

func listRequestsByEmployee(ctx context.Context, db dbtx, id workforce.EmployeeID) ([]workforce.EmployeeRequest, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE employee_id = ? ORDER BY created_at DESC", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows *sql.Rows) ([]workforce.EmployeeRequest, error) {
	var out []workforce.EmployeeRequest
	for rows.Next() {
		var (
			r                                                     workforce.EmployeeRequest
			otDate, otStart, otEnd, otHours, rangeStart, rangeEnd sql.NullString
			decidedBy                                             sql.NullString
			createdAt, updatedAt                                  string
		)
		if err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.Type, &r.Status, &r.Reason,
			&otDate, &otStart, &otEnd, &otHours, &rangeStart, &rangeEnd,
			&decidedBy, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}

		if otDate.Valid {
			d, err := workforce.ParseDay(otDate.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt overtime date %q: %w", otDate.String, err)
			}
			start, err := workforce.ParseTimeOfDay(otStart.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt overtime start %q: %w", otStart.String, err)
			}
			end, err := workforce.ParseTimeOfDay(otEnd.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt overtime end %q: %w", otEnd.String, err)
			}
			hours, err := decimal.NewFromString(otHours.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt overtime hours %q: %w", otHours.String, err)
			}
			r.Overtime = &workforce.OvertimeSpan{Date: d, Start: start, End: end, Hours: hours}
		}
		if rangeStart.Valid {
			start, err := workforce.ParseDay(rangeStart.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt range start %q: %w", rangeStart.String, err)
			}
			end, err := workforce.ParseDay(rangeEnd.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt range end %q: %w", rangeEnd.String, err)
			}
			r.Range = &workforce.DateRange{Start: start, End: end}
		}
		r.DecidedBy = decidedBy.String
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// ATTENDANCE STORE (workforce.AttendanceStore interface)
// =============================================================================

// UpsertCell creates or overwrites the cell at its composite key.
func (s *Store) UpsertCell(ctx context.Context, rec workforce.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertCell(ctx, s.db, rec)
}

func upsertCell(ctx context.Context, db dbtx, rec workforce.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_cells (employee_id, year, month, day, date, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year, month, day) DO UPDATE SET
			date = excluded.date,
			status = excluded.status,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		rec.EmployeeID, rec.Year, rec.Month, rec.Day,
		rec.Date.String(), rec.Status,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance cell: %w", err)
	}
	return nil
}

// GetCell returns (nil, nil) when the cell has never been written.
func (s *Store) GetCell(ctx context.Context, id workforce.EmployeeID, year, month, day int) (*workforce.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCell(ctx, s.db, id, year, month, day)
}

func getCell(ctx context.Context, db dbtx, id workforce.EmployeeID, year, month, day int) (*workforce.AttendanceRecord, error) {
	var rec workforce.AttendanceRecord
	var date string
	err := db.QueryRowContext(ctx,
		`SELECT employee_id, year, month, day, date, status
		 FROM attendance_cells
		 WHERE employee_id = ? AND year = ? AND month = ? AND day = ?`,
		id, year, month, day,
	).Scan(&rec.EmployeeID, &rec.Year, &rec.Month, &rec.Day, &date, &rec.Status)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Date, err = workforce.ParseDay(date)
	if err != nil {
		return nil, fmt.Errorf("corrupt cell date %q: %w", date, err)
	}
	return &rec, nil
}

// ListMonth returns every cell in (year, month) across all employees.
func (s *Store) ListMonth(ctx context.Context, year, month int) ([]workforce.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMonth(ctx, s.db, year, month)
}

func listMonth(ctx context.Context, db dbtx, year, month int) ([]workforce.AttendanceRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT employee_id, year, month, day, date, status
		 FROM attendance_cells
		 WHERE year = ? AND month = ?
		 ORDER BY employee_id, day`,
		year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workforce.AttendanceRecord
	for rows.Next() {
		var rec workforce.AttendanceRecord
		var date string
		if err := rows.Scan(&rec.EmployeeID, &rec.Year, &rec.Month, &rec.Day, &date, &rec.Status); err != nil {
			return nil, err
		}
		rec.Date, err = workforce.ParseDay(date)
		if err != nil {
			return nil, fmt.Errorf("corrupt cell date %q: %w", date, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountStatus counts an employee's cells with the given status in a month.
func (s *Store) CountStatus(ctx context.Context, id workforce.EmployeeID, year, month int, status workforce.AttendanceStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countStatus(ctx, s.db, id, year, month, status)
}

func countStatus(ctx context.Context, db dbtx, id workforce.EmployeeID, year, month int, status workforce.AttendanceStatus) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_cells
		 WHERE employee_id = ? AND year = ? AND month = ? AND status = ?`,
		id, year, month, status,
	).Scan(&count)
	return count, err
}

// =============================================================================
// PAYROLL STORE (workforce.PayrollStore interface)
// =============================================================================

// UpsertPayroll creates or overwrites the line at (employee, month, year).
func (s *Store) UpsertPayroll(ctx context.Context, rec workforce.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertPayroll(ctx, s.db, rec)
}

func upsertPayroll(ctx context.Context, db dbtx, rec workforce.PayrollRecord) error {
	query := `
		INSERT INTO payroll_lines (id, employee_id, month, year, days_present,
			total_amount, status, rejection_note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, month, year) DO UPDATE SET
			days_present = excluded.days_present,
			total_amount = excluded.total_amount,
			status = excluded.status,
			rejection_note = excluded.rejection_note,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.Month, rec.Year, rec.DaysPresent,
		rec.TotalAmount.String(), rec.Status, nullString(rec.RejectionNote),
		rec.CreatedAt.Format(time.RFC3339Nano),
		rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payroll line: %w", err)
	}
	return nil
}

const payrollColumns = `id, employee_id, month, year, days_present,
	total_amount, status, rejection_note, created_at, updated_at`

// GetPayroll returns (nil, nil) when no line exists for the key.
func (s *Store) GetPayroll(ctx context.Context, id workforce.EmployeeID, month, year int) (*workforce.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPayroll(ctx, s.db, id, month, year)
}

func getPayroll(ctx context.Context, db dbtx, id workforce.EmployeeID, month, year int) (*workforce.PayrollRecord, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+payrollColumns+" FROM payroll_lines WHERE employee_id = ? AND month = ? AND year = ?",
		id, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs, err := scanPayroll(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// ListPendingPayroll returns all pending lines.
func (s *Store) ListPendingPayroll(ctx context.Context) ([]workforce.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listPendingPayroll(ctx, s.db)
}

func listPendingPayroll(ctx context.Context, db dbtx) ([]workforce.PayrollRecord, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+payrollColumns+" FROM payroll_lines WHERE status = 'pending' ORDER BY employee_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayroll(rows)
}

// UpdateAllPendingPayroll transitions every pending line in one statement.
func (s *Store) UpdateAllPendingPayroll(ctx context.Context, status workforce.PayrollStatus, note string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAllPendingPayroll(ctx, s.db, status, note)
}

func updateAllPendingPayroll(ctx context.Context, db dbtx, status workforce.PayrollStatus, note string) (int, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE payroll_lines
		 SET status = ?, rejection_note = ?, updated_at = ?
		 WHERE status = 'pending'`,
		status, nullString(note), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to update payroll lines: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanPayroll(rows *sql.Rows) ([]workforce.PayrollRecord, error) {
	var out []workforce.PayrollRecord
	for rows.Next() {
		var (
			rec                  workforce.PayrollRecord
			total                string
			note                 sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.Month, &rec.Year, &rec.DaysPresent,
			&total, &rec.Status, &note, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll line: %w", err)
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("corrupt payroll amount %q: %w", total, err)
		}
		rec.TotalAmount = amount
		rec.RejectionNote = note.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (workforce.TxStore interface)
// =============================================================================

// WithTx executes fn within a single database transaction. The store view
// handed to fn routes every operation through the transaction, so either
// all of fn's writes commit or none do.
func (s *Store) WithTx(ctx context.Context, fn func(workforce.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore is the in-transaction view handed to WithTx callbacks.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SaveRequest(ctx context.Context, r workforce.EmployeeRequest) error {
	return saveRequest(ctx, ts.tx, r)
}

func (ts *txStore) GetRequest(ctx context.Context, id workforce.RequestID) (*workforce.EmployeeRequest, error) {
	return getRequest(ctx, ts.tx, id)
}

func (ts *txStore) ListPendingRequests(ctx context.Context) ([]workforce.EmployeeRequest, error) {
	return listPendingRequests(ctx, ts.tx)
}

func (ts *txStore) ListRequestsByEmployee(ctx context.Context, id workforce.EmployeeID) ([]workforce.EmployeeRequest, error) {
	return listRequestsByEmployee(ctx, ts.tx, id)
}

func (ts *txStore) UpsertCell(ctx context.Context, rec workforce.AttendanceRecord) error {
	return upsertCell(ctx, ts.tx, rec)
}

func (ts *txStore) GetCell(ctx context.Context, id workforce.EmployeeID, year, month, day int) (*workforce.AttendanceRecord, error) {
	return getCell(ctx, ts.tx, id, year, month, day)
}

func (ts *txStore) ListMonth(ctx context.Context, year, month int) ([]workforce.AttendanceRecord, error) {
	return listMonth(ctx, ts.tx, year, month)
}

func (ts *txStore) CountStatus(ctx context.Context, id workforce.EmployeeID, year, month int, status workforce.AttendanceStatus) (int, error) {
	return countStatus(ctx, ts.tx, id, year, month, status)
}

func (ts *txStore) UpsertPayroll(ctx context.Context, rec workforce.PayrollRecord) error {
	return upsertPayroll(ctx, ts.tx, rec)
}

func (ts *txStore) GetPayroll(ctx context.Context, id workforce.EmployeeID, month, year int) (*workforce.PayrollRecord, error) {
	return getPayroll(ctx, ts.tx, id, month, year)
}

func (ts *txStore) ListPendingPayroll(ctx context.Context) ([]workforce.PayrollRecord, error) {
	return listPendingPayroll(ctx, ts.tx)
}

func (ts *txStore) UpdateAllPendingPayroll(ctx context.Context, status workforce.PayrollStatus, note string) (int, error) {
	return updateAllPendingPayroll(ctx, ts.tx, status, note)
}

// =============================================================================
// ROSTER (workforce.Roster interface)
// =============================================================================

// SaveEmployee upserts a roster record and its department profile together.
func (s *Store) SaveEmployee(ctx context.Context, emp workforce.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, department, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			department = excluded.department,
			active = excluded.active
	`,
		emp.ID, emp.Name, nullString(emp.Email), emp.Department, emp.Active,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}

	var birthday sql.NullString
	if !emp.Birthday.IsZero() {
		birthday = nullString(emp.Birthday.String())
	}
	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO department_profiles (employee_id, department, position, rate_per_day, birthday)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			department = excluded.department,
			position = excluded.position,
			rate_per_day = excluded.rate_per_day,
			birthday = excluded.birthday
	`,
		emp.ID, emp.Department, emp.Position, emp.DailyRate.String(), birthday,
	)
	if err != nil {
		return fmt.Errorf("failed to save department profile: %w", err)
	}

	return sqlTx.Commit()
}

const employeeColumns = `e.id, e.name, e.email, e.department, e.active,
	COALESCE(p.position, ''), COALESCE(p.rate_per_day, '0'), p.birthday`

// GetEmployee returns (nil, nil) when the employee does not exist.
//
// Roster reads take no core lock: WithTx units never write the roster
// tables, and the payroll aggregator looks up the daily rate right before
// its transaction opens, while another unit may hold the write lock.
func (s *Store) GetEmployee(ctx context.Context, id workforce.EmployeeID) (*workforce.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeColumns+`
		 FROM employees e
		 LEFT JOIN department_profiles p ON p.employee_id = e.id
		 WHERE e.id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emps, err := scanEmployees(rows)
	if err != nil {
		return nil, err
	}
	if len(emps) == 0 {
		return nil, nil
	}
	return &emps[0], nil
}

// ListEmployees returns the full roster, ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]workforce.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeColumns+`
		 FROM employees e
		 LEFT JOIN department_profiles p ON p.employee_id = e.id
		 ORDER BY e.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func scanEmployees(rows *sql.Rows) ([]workforce.Employee, error) {
	var out []workforce.Employee
	for rows.Next() {
		var (
			emp      workforce.Employee
			email    sql.NullString
			rate     string
			birthday sql.NullString
		)
		if err := rows.Scan(
			&emp.ID, &emp.Name, &email, &emp.Department, &emp.Active,
			&emp.Position, &rate, &birthday,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		emp.Email = email.String
		amount, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("corrupt daily rate %q: %w", rate, err)
		}
		emp.DailyRate = amount
		if birthday.Valid {
			emp.Birthday, err = workforce.ParseDay(birthday.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt birthday %q: %w", birthday.String, err)
			}
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"requests", "attendance_cells", "payroll_lines", "department_profiles", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
