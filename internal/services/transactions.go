// Package services orchestrates writes that span storage and the export
// queue.
package services

import (
	"context"
	"log/slog"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// EventPublisher announces transaction writes to the export worker.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, id int64) error
}

// TransactionService applies the transaction/category consistency rule and
// publishes an export event after every successful write. A publish failure
// never fails the request: the row is already saved and the worker's pending
// scan will pick it up.
type TransactionService struct {
	store     storage.Store
	publisher EventPublisher
}

func NewTransactionService(store storage.Store, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// Create validates the type against the referenced category and stores the
// transaction.
func (s *TransactionService) Create(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkTypeMatch(ctx, n.Type, n.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	t, err := s.store.CreateTransaction(ctx, n)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, t.ID)
	return t, nil
}

// Update applies the patch and re-checks consistency on the merged record, so
// changing only the type against a mismatched category is caught the same way
// as changing the category.
func (s *TransactionService) Update(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	current, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	merged := current.Apply(p)

	if p.CategoryID != nil || p.Type != nil {
		cat, err := s.store.GetCategory(ctx, merged.CategoryID)
		switch {
		case core.IsNotFound(err):
			if p.CategoryID != nil {
				return core.Transaction{}, &core.ConsistencyError{Reason: "invalid category id"}
			}
			// A record already dangling (its category was deleted) stays
			// editable; there is nothing left to match the type against.
		case err != nil:
			return core.Transaction{}, err
		case cat.Type != merged.Type:
			return core.Transaction{}, &core.ConsistencyError{Reason: "transaction type does not match category type"}
		}
	}

	t, err := s.store.UpdateTransaction(ctx, id, p)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, t.ID)
	return t, nil
}

// Delete removes the transaction.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	return nil
}

// checkTypeMatch verifies the category exists and carries the same type as
// the transaction.
func (s *TransactionService) checkTypeMatch(ctx context.Context, typ core.TxType, categoryID int64) error {
	cat, err := s.store.GetCategory(ctx, categoryID)
	if core.IsNotFound(err) {
		return &core.ConsistencyError{Reason: "invalid category id"}
	}
	if err != nil {
		return err
	}
	if cat.Type != typ {
		return &core.ConsistencyError{Reason: "transaction type does not match category type"}
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event", "id", id, "error", err)
	}
}
