package services

import (
	"context"
	"testing"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/storage/memory"
)

func newImporter() (*Importer, *memory.Store) {
	store := memory.New()
	svc := NewTransactionService(store, nil)
	return NewImporter(store, svc), store
}

func TestImportMatchesExistingCategoryCaseInsensitively(t *testing.T) {
	imp, store := newImporter()
	ctx := context.Background()

	res, err := imp.Import(ctx, []ImportRow{
		{Type: core.Expense, Amount: 100, Description: "Weekly shop", Category: "groceries", Date: time.Now()},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 0 {
		t.Fatalf("result = %+v", res)
	}

	// No duplicate of the seeded "Groceries" category.
	cats, _ := store.ListCategories(ctx)
	if len(cats) != 5 {
		t.Errorf("categories = %d, want 5", len(cats))
	}
	txs, _ := store.ListTransactions(ctx)
	if len(txs) != 1 || txs[0].CategoryID != 1 {
		t.Errorf("transactions = %+v", txs)
	}
}

func TestImportCreatesUnknownCategory(t *testing.T) {
	imp, store := newImporter()
	ctx := context.Background()

	res, err := imp.Import(ctx, []ImportRow{
		{Type: core.Expense, Amount: 60, Description: "Gym", Category: "Fitness", Date: time.Now()},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("result = %+v", res)
	}

	cats, _ := store.ListCategories(ctx)
	if len(cats) != 6 || cats[5].Name != "Fitness" || cats[5].Icon != core.DefaultIcon {
		t.Errorf("created category: %+v", cats)
	}
}

func TestImportRowsCommitIndependently(t *testing.T) {
	imp, store := newImporter()
	ctx := context.Background()

	res, err := imp.Import(ctx, []ImportRow{
		{Type: core.Expense, Amount: 10, Description: "ok", Category: "Groceries", Date: time.Now()},
		{Type: core.Expense, Amount: -5, Description: "bad amount", Category: "Groceries", Date: time.Now()},
		{Type: core.Income, Amount: 500, Description: "ok too", Category: "Salary", Date: time.Now()},
		{Type: core.Expense, Amount: 10, Description: "no category", Category: "   ", Date: time.Now()},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 2 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Errors) != 2 || res.Errors[0].Row != 1 || res.Errors[1].Row != 3 {
		t.Fatalf("errors = %+v", res.Errors)
	}

	txs, _ := store.ListTransactions(ctx)
	if len(txs) != 2 {
		t.Errorf("stored = %d, want 2", len(txs))
	}
}

func TestImportSameNameDifferentTypes(t *testing.T) {
	imp, store := newImporter()
	ctx := context.Background()

	res, err := imp.Import(ctx, []ImportRow{
		{Type: core.Expense, Amount: 30, Description: "course fee", Category: "Teaching", Date: time.Now()},
		{Type: core.Income, Amount: 200, Description: "tutoring", Category: "Teaching", Date: time.Now()},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 {
		t.Fatalf("result = %+v", res)
	}

	cats, _ := store.ListCategories(ctx)
	var teaching int
	for _, c := range cats {
		if c.Name == "Teaching" {
			teaching++
		}
	}
	if teaching != 2 {
		t.Errorf("Teaching categories = %d, want one per type", teaching)
	}
}
