/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Persists the billing inputs (units, expenses, recurring funds,
  payments, billing rules) and implements engine.SnapshotSource by
  reading all of them inside one transaction, so the engine always
  computes over a consistent point-in-time view. Also implements
  engine.StatementCache with a JSON-serialized statement per
  (association, period).

INTERFACES IMPLEMENTED:
  engine.SnapshotSource: consistent snapshot reads
  engine.StatementCache: period-indexed statement persistence

KEY TABLES:
  units:           billable apartments/parking/storage entities
  expenses:        recorded costs per billing period
  recurring_funds: fixed monthly contributions
  payments:        payments attributed to billing periods
  billing_rules:   due day + daily penalty rate per association
  statement_cache: assembled statements, one row per period

MONEY:
  Decimal values are stored as TEXT and parsed back through
  shopspring/decimal. REAL columns would reintroduce the float money
  the engine exists to avoid.

WAL MODE:
  SQLite is opened with WAL for better read concurrency: statement
  reads (avizier, receipts) don't block expense entry.

USAGE:
  st, err := sqlite.New("./data/bloc.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  snap, err := st.Snapshot(ctx, "asoc-1")

SEE ALSO:
  - engine/store.go: interface definitions
  - engine/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/blocadmin/billing-engine/engine"
)

// Store implements the engine storage interfaces using SQLite.
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
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Units (apartments, parking spots, storage spaces)
	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		association_id TEXT NOT NULL,
		label TEXT NOT NULL,
		quota_share TEXT NOT NULL DEFAULT '0',
		occupant_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_units_association
		ON units(association_id);

	-- Expenses (recorded costs, one billing period each)
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		association_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		mode TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		category TEXT NOT NULL,
		invoice_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: period walks load expenses by association and period
	CREATE INDEX IF NOT EXISTS idx_expenses_association_period
		ON expenses(association_id, year, month);

	-- Recurring funds (fond rulment, fond reparatii, ...)
	CREATE TABLE IF NOT EXISTS recurring_funds (
		id TEXT PRIMARY KEY,
		association_id TEXT NOT NULL,
		name TEXT NOT NULL,
		monthly_amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_funds_association
		ON recurring_funds(association_id);

	-- Payments (attributed to exactly one billing period)
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		association_id TEXT NOT NULL,
		unit_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attributed_month INTEGER NOT NULL,
		attributed_year INTEGER NOT NULL,
		paid_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_association
		ON payments(association_id);
	CREATE INDEX IF NOT EXISTS idx_payments_unit
		ON payments(unit_id);

	-- Billing rules (one row per association)
	CREATE TABLE IF NOT EXISTS billing_rules (
		association_id TEXT PRIMARY KEY,
		due_day INTEGER NOT NULL,
		daily_penalty_rate TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Statement cache (assembled statements, JSON per period)
	CREATE TABLE IF NOT EXISTS statement_cache (
		association_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		statement_json TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		UNIQUE(association_id, year, month)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// UNITS
// =============================================================================

// SaveUnit inserts a unit. Returns engine.ErrDuplicateID on conflict.
func (s *Store) SaveUnit(ctx context.Context, u engine.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO units (id, association_id, label, quota_share, occupant_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.AssociationID, u.Label, u.QuotaShare.String(), u.OccupantCount,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateID
		}
		return fmt.Errorf("failed to save unit: %w", err)
	}
	return nil
}

// UpdateUnit rewrites a unit's quota share and occupant count (the two
// attributes that change after onboarding).
func (s *Store) UpdateUnit(ctx context.Context, u engine.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE units SET label = ?, quota_share = ?, occupant_count = ?
		WHERE id = ? AND association_id = ?`,
		u.Label, u.QuotaShare.String(), u.OccupantCount, u.ID, u.AssociationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &engine.NotFoundError{Kind: "unit", ID: string(u.ID)}
	}
	return nil
}

// ListUnits returns all units of an association, ordered by label.
func (s *Store) ListUnits(ctx context.Context, id engine.AssociationID) ([]engine.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUnits(ctx, s.db, id)
}

func (s *Store) listUnits(ctx context.Context, q querier, id engine.AssociationID) ([]engine.Unit, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, association_id, label, quota_share, occupant_count
		FROM units WHERE association_id = ? ORDER BY label ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []engine.Unit
	for rows.Next() {
		var u engine.Unit
		var quota string
		if err := rows.Scan(&u.ID, &u.AssociationID, &u.Label, &quota, &u.OccupantCount); err != nil {
			return nil, err
		}
		u.QuotaShare = engine.MustParseAmount(quota).Value
		units = append(units, u)
	}
	return units, rows.Err()
}

// =============================================================================
// EXPENSES
// =============================================================================

// SaveExpense inserts an expense.
func (s *Store) SaveExpense(ctx context.Context, e engine.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, association_id, amount, mode, month, year, category, invoice_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AssociationID, e.Amount.Value.String(), e.Mode,
		int(e.Period.Month), e.Period.Year, e.Category,
		e.InvoiceDate.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateID
		}
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

// ListExpenses returns all expenses of an association, oldest period first.
func (s *Store) ListExpenses(ctx context.Context, id engine.AssociationID) ([]engine.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listExpenses(ctx, s.db, id)
}

func (s *Store) listExpenses(ctx context.Context, q querier, id engine.AssociationID) ([]engine.Expense, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, association_id, amount, mode, month, year, category, invoice_date
		FROM expenses WHERE association_id = ?
		ORDER BY year ASC, month ASC, created_at ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []engine.Expense
	for rows.Next() {
		var e engine.Expense
		var amount, invoiceDate string
		var month, year int
		if err := rows.Scan(&e.ID, &e.AssociationID, &amount, &e.Mode, &month, &year, &e.Category, &invoiceDate); err != nil {
			return nil, err
		}
		e.Amount = engine.MustParseAmount(amount)
		e.Period = engine.NewBillingPeriod(year, time.Month(month))
		e.InvoiceDate, _ = time.Parse(time.RFC3339, invoiceDate)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// =============================================================================
// RECURRING FUNDS
// =============================================================================

// SaveFund inserts a recurring fund.
func (s *Store) SaveFund(ctx context.Context, f engine.RecurringFund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_funds (id, association_id, name, monthly_amount, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.AssociationID, f.Name, f.MonthlyAmount.Value.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateID
		}
		return fmt.Errorf("failed to save fund: %w", err)
	}
	return nil
}

// ListFunds returns all recurring funds of an association.
func (s *Store) ListFunds(ctx context.Context, id engine.AssociationID) ([]engine.RecurringFund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listFunds(ctx, s.db, id)
}

func (s *Store) listFunds(ctx context.Context, q querier, id engine.AssociationID) ([]engine.RecurringFund, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, association_id, name, monthly_amount
		FROM recurring_funds WHERE association_id = ? ORDER BY name ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	var funds []engine.RecurringFund
	for rows.Next() {
		var f engine.RecurringFund
		var amount string
		if err := rows.Scan(&f.ID, &f.AssociationID, &f.Name, &amount); err != nil {
			return nil, err
		}
		f.MonthlyAmount = engine.MustParseAmount(amount)
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

// =============================================================================
// PAYMENTS
// =============================================================================

// SavePayment inserts a payment.
func (s *Store) SavePayment(ctx context.Context, id engine.AssociationID, p engine.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, association_id, unit_id, amount, status, attributed_month, attributed_year, paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, id, p.UnitID, p.Amount.Value.String(), p.Status,
		int(p.Period.Month), p.Period.Year,
		p.PaidAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateID
		}
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// ConfirmPayment flips a payment to confirmed status.
func (s *Store) ConfirmPayment(ctx context.Context, id engine.AssociationID, paymentID engine.PaymentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE payments SET status = ? WHERE id = ? AND association_id = ?`,
		engine.PaymentConfirmed, paymentID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &engine.NotFoundError{Kind: "payment", ID: string(paymentID)}
	}
	return nil
}

// ListPayments returns all payments of an association, oldest first.
func (s *Store) ListPayments(ctx context.Context, id engine.AssociationID) ([]engine.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPayments(ctx, s.db, id)
}

func (s *Store) listPayments(ctx context.Context, q querier, id engine.AssociationID) ([]engine.Payment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, unit_id, amount, status, attributed_month, attributed_year, paid_at
		FROM payments WHERE association_id = ?
		ORDER BY attributed_year ASC, attributed_month ASC, created_at ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []engine.Payment
	for rows.Next() {
		var p engine.Payment
		var amount, paidAt string
		var month, year int
		if err := rows.Scan(&p.ID, &p.UnitID, &amount, &p.Status, &month, &year, &paidAt); err != nil {
			return nil, err
		}
		p.Amount = engine.MustParseAmount(amount)
		p.Period = engine.NewBillingPeriod(year, time.Month(month))
		p.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// BILLING RULES
// =============================================================================

// SaveRules upserts the association's billing rules.
func (s *Store) SaveRules(ctx context.Context, id engine.AssociationID, rules engine.BillingRules) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO billing_rules (association_id, due_day, daily_penalty_rate, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(association_id) DO UPDATE SET
			due_day = excluded.due_day,
			daily_penalty_rate = excluded.daily_penalty_rate,
			updated_at = excluded.updated_at`,
		id, rules.DueDay, rules.DailyPenaltyRatePercent.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save billing rules: %w", err)
	}
	return nil
}

// GetRules returns the association's billing rules, or the zero value
// (not configured) when none are stored.
func (s *Store) GetRules(ctx context.Context, id engine.AssociationID) (engine.BillingRules, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRules(ctx, s.db, id)
}

func (s *Store) getRules(ctx context.Context, q querier, id engine.AssociationID) (engine.BillingRules, error) {
	var rules engine.BillingRules
	var rate string
	err := q.QueryRowContext(ctx, `
		SELECT due_day, daily_penalty_rate FROM billing_rules WHERE association_id = ?`, id,
	).Scan(&rules.DueDay, &rate)
	if err == sql.ErrNoRows {
		return engine.BillingRules{}, nil
	}
	if err != nil {
		return engine.BillingRules{}, fmt.Errorf("failed to query billing rules: %w", err)
	}
	rules.DailyPenaltyRatePercent = engine.MustParseAmount(rate).Value
	return rules, nil
}

// =============================================================================
// SNAPSHOT SOURCE (engine.SnapshotSource interface)
// =============================================================================

// Snapshot reads all of the association's billing data inside one
// transaction, so the engine computes over a consistent view even while
// expenses and payments are being recorded concurrently.
func (s *Store) Snapshot(ctx context.Context, id engine.AssociationID) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot read: %w", err)
	}
	defer tx.Rollback()

	units, err := s.listUnits(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		// No units means the association was never onboarded.
		if known, err := s.associationKnown(ctx, tx, id); err != nil {
			return nil, err
		} else if !known {
			return nil, engine.ErrAssociationNotFound
		}
	}

	expenses, err := s.listExpenses(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	funds, err := s.listFunds(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.listPayments(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.getRules(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	return &engine.Snapshot{
		AssociationID: id,
		Units:         units,
		Expenses:      expenses,
		Funds:         funds,
		Payments:      payments,
		Rules:         rules,
	}, nil
}

func (s *Store) associationKnown(ctx context.Context, q querier, id engine.AssociationID) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM expenses WHERE association_id = ?)
		     + (SELECT COUNT(*) FROM recurring_funds WHERE association_id = ?)
		     + (SELECT COUNT(*) FROM billing_rules WHERE association_id = ?)`,
		id, id, id,
	).Scan(&count)
	return count > 0, err
}

// ListAssociations returns every association id that has any recorded
// data. Used by the statement cache warmer.
func (s *Store) ListAssociations(ctx context.Context) ([]engine.AssociationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT association_id FROM units
		UNION SELECT DISTINCT association_id FROM expenses
		ORDER BY association_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query associations: %w", err)
	}
	defer rows.Close()

	var ids []engine.AssociationID
	for rows.Next() {
		var id engine.AssociationID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =============================================================================
// STATEMENT CACHE (engine.StatementCache interface)
// =============================================================================

// SaveStatement upserts the cached statement for its period.
func (s *Store) SaveStatement(ctx context.Context, st engine.BillingStatement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to serialize statement: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO statement_cache (association_id, month, year, statement_json, computed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(association_id, year, month) DO UPDATE SET
			statement_json = excluded.statement_json,
			computed_at = excluded.computed_at`,
		st.AssociationID, int(st.Period.Month), st.Period.Year,
		string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to cache statement: %w", err)
	}
	return nil
}

// GetStatement returns the cached statement for a period, or
// engine.ErrStatementNotCached.
func (s *Store) GetStatement(ctx context.Context, id engine.AssociationID, period engine.BillingPeriod) (*engine.BillingStatement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT statement_json FROM statement_cache
		WHERE association_id = ? AND year = ? AND month = ?`,
		id, period.Year, int(period.Month),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, engine.ErrStatementNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query statement cache: %w", err)
	}

	var st engine.BillingStatement
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return nil, fmt.Errorf("failed to deserialize statement: %w", err)
	}
	return &st, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// querier lets the same read helpers run against the DB or a snapshot
// transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
