// Package storage defines the persistence port for the expense tracker.
//
// Implementations live in the memory and sqlite subpackages and are selected
// by the backend factory at process start; handlers receive a Store handle,
// never a package-level global.
package storage

import (
	"context"

	"kharcha/internal/core"
)

// Store is CRUD over the four entity collections. Get, Update and Delete
// report a missing id with a core.NotFoundError. Create assigns the next id
// from a per-collection counter that never reuses ids, applies field
// defaults, and returns the stored record. Update is a shallow merge of the
// patch into the existing record.
//
// Referential integrity: transaction writes referencing a nonexistent
// category fail with a core.ConsistencyError. Category deletion does NOT
// cascade; transactions keep their dangling categoryId. The
// transaction/category type-match rule is not enforced here; that check
// belongs to the service boundary.
type Store interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	CreateCategory(ctx context.Context, n core.NewCategory) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, p core.CategoryPatch) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	CreateTransaction(ctx context.Context, n core.NewTransaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	// Settings is a singleton (id core.SettingsID), created by the seed and
	// never deleted.
	GetSettings(ctx context.Context) (core.Settings, error)
	UpdateSettings(ctx context.Context, p core.SettingsPatch) (core.Settings, error)

	ListReminders(ctx context.Context) ([]core.Reminder, error)
	GetReminder(ctx context.Context, id int64) (core.Reminder, error)
	CreateReminder(ctx context.Context, n core.NewReminder) (core.Reminder, error)
	UpdateReminder(ctx context.Context, id int64, p core.ReminderPatch) (core.Reminder, error)
	DeleteReminder(ctx context.Context, id int64) error
}
