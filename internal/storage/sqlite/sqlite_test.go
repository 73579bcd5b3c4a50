package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"kharcha/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "kharcha.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsSeedDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 5 {
		t.Fatalf("seeded categories = %d, want 5", len(cats))
	}
	if cats[0].Name != "Groceries" || cats[0].ID != 1 {
		t.Errorf("first seed: %+v", cats[0])
	}

	st, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if st.Currency != "PKR" || st.ReminderTime != "20:00" {
		t.Errorf("settings seed: %+v", st)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	date := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	created, err := s.CreateTransaction(ctx, core.NewTransaction{
		Type: core.Expense, Amount: 250.5, Description: "Bus pass", CategoryID: 2, Date: date,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount != 250.5 || !got.Date.Equal(date) {
		t.Errorf("round trip: %+v", got)
	}

	desc := "Monthly bus pass"
	upd, err := s.UpdateTransaction(ctx, created.ID, core.TransactionPatch{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Description != desc || upd.Amount != 250.5 {
		t.Errorf("merge: %+v", upd)
	}

	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, created.ID); !core.IsNotFound(err) {
		t.Errorf("get after delete: %v", err)
	}
}

func TestTransactionRejectsMissingCategory(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTransaction(context.Background(), core.NewTransaction{
		Type: core.Expense, Amount: 10, Description: "x", CategoryID: 404,
	})
	if !core.IsConsistency(err) {
		t.Fatalf("got %v, want consistency error", err)
	}
}

func TestCategoryDeleteDoesNotCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, core.NewCategory{Name: "Gadgets", Type: core.Expense})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	tx, err := s.CreateTransaction(ctx, core.NewTransaction{
		Type: core.Expense, Amount: 99, Description: "cable", CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := s.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	got, err := s.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("transaction gone: %v", err)
	}
	if got.CategoryID != cat.ID {
		t.Errorf("categoryId rewritten: %d", got.CategoryID)
	}
}

func TestExportQueue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.CreateTransaction(ctx, core.NewTransaction{
		Type: core.Expense, Amount: 10, Description: "x", CategoryID: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := s.PendingTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tx.ID {
		t.Fatalf("pending = %+v", pending)
	}

	if err := s.MarkSynced(ctx, tx.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = s.PendingTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending after sync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("still pending: %+v", pending)
	}

	// An edit re-queues the row.
	amount := 20.0
	if _, err := s.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err = s.PendingTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending after edit: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("edit did not re-queue: %+v", pending)
	}

	if err := s.MarkExportError(ctx, tx.ID); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	pending, err = s.PendingTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending after error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("errored row still pending: %+v", pending)
	}

	if err := s.MarkSynced(ctx, 404); !core.IsNotFound(err) {
		t.Fatalf("mark missing: %v", err)
	}
}
