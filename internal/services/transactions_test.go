package services

import (
	"context"
	"errors"
	"testing"

	"kharcha/internal/core"
	"kharcha/internal/storage/memory"
)

type fakePublisher struct {
	published []int64
	fail      bool
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, id int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.published = append(f.published, id)
	return nil
}

func newService() (*TransactionService, *memory.Store, *fakePublisher) {
	store := memory.New()
	pub := &fakePublisher{}
	return NewTransactionService(store, pub), store, pub
}

func TestCreatePublishesEvent(t *testing.T) {
	svc, _, pub := newService()
	ctx := context.Background()

	tx, err := svc.Create(ctx, core.NewTransaction{
		Type: core.Expense, Amount: 100, Description: "Milk", CategoryID: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0] != tx.ID {
		t.Errorf("published = %v", pub.published)
	}
}

func TestCreateRejectsTypeMismatch(t *testing.T) {
	svc, _, pub := newService()
	// Category 4 is Salary (income).
	_, err := svc.Create(context.Background(), core.NewTransaction{
		Type: core.Expense, Amount: 100, Description: "x", CategoryID: 4,
	})
	if !core.IsConsistency(err) {
		t.Fatalf("got %v, want consistency error", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("event published for rejected write")
	}
}

func TestCreateRejectsMissingCategory(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.Create(context.Background(), core.NewTransaction{
		Type: core.Expense, Amount: 100, Description: "x", CategoryID: 404,
	})
	if !core.IsConsistency(err) {
		t.Fatalf("got %v, want consistency error", err)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, &fakePublisher{fail: true})
	ctx := context.Background()

	tx, err := svc.Create(ctx, core.NewTransaction{
		Type: core.Expense, Amount: 100, Description: "Milk", CategoryID: 1,
	})
	if err != nil {
		t.Fatalf("create failed on publish error: %v", err)
	}
	if _, err := store.GetTransaction(ctx, tx.ID); err != nil {
		t.Errorf("transaction not stored: %v", err)
	}
}

func TestUpdateChecksMergedRecord(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	tx, err := svc.Create(ctx, core.NewTransaction{
		Type: core.Expense, Amount: 100, Description: "Milk", CategoryID: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Flipping only the type leaves it against an expense category.
	income := core.Income
	if _, err := svc.Update(ctx, tx.ID, core.TransactionPatch{Type: &income}); !core.IsConsistency(err) {
		t.Fatalf("type flip: got %v, want consistency error", err)
	}

	// Moving to an income category at the same time is fine.
	salary := int64(4)
	upd, err := svc.Update(ctx, tx.ID, core.TransactionPatch{Type: &income, CategoryID: &salary})
	if err != nil {
		t.Fatalf("type+category update: %v", err)
	}
	if upd.Type != core.Income || upd.CategoryID != 4 {
		t.Errorf("merged record: %+v", upd)
	}
}

func TestUpdateDanglingRecordStaysEditable(t *testing.T) {
	svc, store, _ := newService()
	ctx := context.Background()

	cat, _ := store.CreateCategory(ctx, core.NewCategory{Name: "Gadgets", Type: core.Expense})
	tx, err := svc.Create(ctx, core.NewTransaction{
		Type: core.Expense, Amount: 50, Description: "cable", CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	// Amount edits on a dangling record go through.
	amount := 75.0
	if _, err := svc.Update(ctx, tx.ID, core.TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("amount edit: %v", err)
	}

	// Repointing to a missing category does not.
	missing := int64(404)
	if _, err := svc.Update(ctx, tx.ID, core.TransactionPatch{CategoryID: &missing}); !core.IsConsistency(err) {
		t.Fatalf("repoint: got %v, want consistency error", err)
	}
}

func TestDeleteMissingTransaction(t *testing.T) {
	svc, _, _ := newService()
	if err := svc.Delete(context.Background(), 404); !core.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}
