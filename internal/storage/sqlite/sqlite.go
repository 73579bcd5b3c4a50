// Package sqlite is the durable storage engine, backed by a single database
// file. It implements the same contract as the memory engine and additionally
// tracks an export state per transaction for the sheet sync worker.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kharcha/internal/core"

	_ "modernc.org/sqlite"
)

// Export states for a transaction row. New rows start pending; the worker
// moves them to synced or error after attempting the sheet append.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs migrations,
// which also install the default seed on a fresh file.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Categories

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, description, icon, color FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, description, icon, color FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NotFound("category", id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, n core.NewCategory) (core.Category, error) {
	if err := n.Validate(); err != nil {
		return core.Category{}, err
	}
	icon := n.Icon
	if icon == "" {
		icon = core.DefaultIcon
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, description, icon, color) VALUES (?, ?, ?, ?, ?)`,
		n.Name, n.Type, n.Description, icon, n.Color)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return core.Category{ID: id, Name: n.Name, Type: n.Type, Description: n.Description, Icon: icon, Color: n.Color}, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, p core.CategoryPatch) (core.Category, error) {
	if err := p.Validate(); err != nil {
		return core.Category{}, err
	}
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	c = c.Apply(p)

	_, err = s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, description = ?, icon = ?, color = ? WHERE id = ?`,
		c.Name, c.Type, c.Description, c.Icon, c.Color, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes the category row only; transaction rows keep their
// category_id.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return checkDeleted(res, "category", id)
}

// Transactions

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, amount, description, category_id, date FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, amount, description, category_id, date FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFound("transaction", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *Store) CreateTransaction(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.categoryExists(ctx, n.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	date := n.Date
	if date.IsZero() {
		date = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (type, amount, description, category_id, date, sync_status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.Type, n.Amount, n.Description, n.CategoryID, date.UTC().Format(time.RFC3339Nano), SyncPending)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	return core.Transaction{ID: id, Type: n.Type, Amount: n.Amount, Description: n.Description, CategoryID: n.CategoryID, Date: date}, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t, err := s.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if p.CategoryID != nil {
		if err := s.categoryExists(ctx, *p.CategoryID); err != nil {
			return core.Transaction{}, err
		}
	}
	t = t.Apply(p)

	// Any edit re-queues the row for export.
	_, err = s.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, description = ?, category_id = ?, date = ?, sync_status = ?
		 WHERE id = ?`,
		t.Type, t.Amount, t.Description, t.CategoryID, t.Date.UTC().Format(time.RFC3339Nano), SyncPending, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return checkDeleted(res, "transaction", id)
}

// Settings

func (s *Store) GetSettings(ctx context.Context) (core.Settings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, currency, dark_mode, fingerprint_enabled, pin, reminder_enabled, reminder_time
		 FROM settings WHERE id = ?`, core.SettingsID)
	var st core.Settings
	err := row.Scan(&st.ID, &st.Currency, &st.DarkMode, &st.FingerprintEnabled, &st.PIN, &st.ReminderEnabled, &st.ReminderTime)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, core.NotFound("settings", core.SettingsID)
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

func (s *Store) UpdateSettings(ctx context.Context, p core.SettingsPatch) (core.Settings, error) {
	if err := p.Validate(); err != nil {
		return core.Settings{}, err
	}
	st, err := s.GetSettings(ctx)
	if err != nil {
		return core.Settings{}, err
	}
	st = st.Apply(p)

	_, err = s.db.ExecContext(ctx,
		`UPDATE settings SET currency = ?, dark_mode = ?, fingerprint_enabled = ?, pin = ?, reminder_enabled = ?, reminder_time = ?
		 WHERE id = ?`,
		st.Currency, st.DarkMode, st.FingerprintEnabled, st.PIN, st.ReminderEnabled, st.ReminderTime, core.SettingsID)
	if err != nil {
		return core.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return st, nil
}

// Reminders

func (s *Store) ListReminders(ctx context.Context) ([]core.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, message, time, is_active, last_triggered FROM reminders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var out []core.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetReminder(ctx context.Context, id int64) (core.Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, message, time, is_active, last_triggered FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Reminder{}, core.NotFound("reminder", id)
	}
	if err != nil {
		return core.Reminder{}, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

func (s *Store) CreateReminder(ctx context.Context, n core.NewReminder) (core.Reminder, error) {
	if err := n.Validate(); err != nil {
		return core.Reminder{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (title, message, time, is_active) VALUES (?, ?, ?, ?)`,
		n.Title, n.Message, n.Time, n.IsActive)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Reminder{}, fmt.Errorf("reminder insert id: %w", err)
	}
	return core.Reminder{ID: id, Title: n.Title, Message: n.Message, Time: n.Time, IsActive: n.IsActive}, nil
}

func (s *Store) UpdateReminder(ctx context.Context, id int64, p core.ReminderPatch) (core.Reminder, error) {
	if err := p.Validate(); err != nil {
		return core.Reminder{}, err
	}
	r, err := s.GetReminder(ctx, id)
	if err != nil {
		return core.Reminder{}, err
	}
	r = r.Apply(p)

	var last *string
	if r.LastTriggered != nil {
		v := r.LastTriggered.UTC().Format(time.RFC3339Nano)
		last = &v
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE reminders SET title = ?, message = ?, time = ?, is_active = ?, last_triggered = ? WHERE id = ?`,
		r.Title, r.Message, r.Time, r.IsActive, last, id)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("update reminder: %w", err)
	}
	return r, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return checkDeleted(res, "reminder", id)
}

// Export queue

// PendingTransactions returns up to limit transactions awaiting export,
// oldest first.
func (s *Store) PendingTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, amount, description, category_id, date FROM transactions
		 WHERE sync_status = ? ORDER BY id LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("pending transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkSynced records a successful export of the transaction.
func (s *Store) MarkSynced(ctx context.Context, id int64) error {
	return s.setSyncStatus(ctx, id, SyncSynced)
}

// MarkExportError records a failed export; the row stays out of the pending
// scan until the next edit re-queues it.
func (s *Store) MarkExportError(ctx context.Context, id int64) error {
	return s.setSyncStatus(ctx, id, SyncError)
}

func (s *Store) setSyncStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set sync status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sync status rows affected: %w", err)
	}
	if n == 0 {
		return core.NotFound("transaction", id)
	}
	return nil
}

// helpers

func (s *Store) categoryExists(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &core.ConsistencyError{Reason: "invalid category id"}
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

func checkDeleted(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.NotFound(entity, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Description, &c.Icon, &c.Color)
	return c, err
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var t core.Transaction
	var date string
	if err := row.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.CategoryID, &date); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t.Date = parsed
	return t, nil
}

func scanReminder(row scanner) (core.Reminder, error) {
	var r core.Reminder
	var last *string
	if err := row.Scan(&r.ID, &r.Title, &r.Message, &r.Time, &r.IsActive, &last); err != nil {
		return core.Reminder{}, err
	}
	if last != nil {
		parsed, err := time.Parse(time.RFC3339Nano, *last)
		if err != nil {
			return core.Reminder{}, fmt.Errorf("parse last_triggered %q: %w", *last, err)
		}
		r.LastTriggered = &parsed
	}
	return r, nil
}
