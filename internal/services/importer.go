package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// ImportRow is one transaction from a bulk upload. The category travels by
// name; unknown names get a category created on the fly.
type ImportRow struct {
	Type        core.TxType `json:"type"`
	Amount      float64     `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Date        time.Time   `json:"date"`
}

// RowError reports why a single row was skipped.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes a bulk upload. Rows commit independently, so a
// partial import is a success with per-row errors attached.
type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Importer loads transaction rows in bulk, resolving category names against
// the existing set case-insensitively.
type Importer struct {
	store   storage.Store
	service *TransactionService
}

func NewImporter(store storage.Store, service *TransactionService) *Importer {
	return &Importer{store: store, service: service}
}

// Import processes rows in order. Each row finds or creates its category and
// goes through the normal transaction write path, so consistency rules and
// export events apply to imported rows too.
func (i *Importer) Import(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	result := ImportResult{}

	for idx, row := range rows {
		if err := i.importRow(ctx, row); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Row: idx, Error: err.Error()})
			continue
		}
		result.Imported++
	}

	slog.InfoContext(ctx, "Import finished",
		"total", len(rows),
		"imported", result.Imported,
		"skipped", result.Skipped)

	return result, nil
}

func (i *Importer) importRow(ctx context.Context, row ImportRow) error {
	name := strings.TrimSpace(row.Category)
	if name == "" {
		return &core.ValidationError{Fields: []string{"category"}}
	}

	cat, err := i.findOrCreateCategory(ctx, name, row.Type)
	if err != nil {
		return err
	}

	_, err = i.service.Create(ctx, core.NewTransaction{
		Type:        row.Type,
		Amount:      row.Amount,
		Description: row.Description,
		CategoryID:  cat.ID,
		Date:        row.Date,
	})
	return err
}

// findOrCreateCategory matches by name (case-insensitive) and type; a name
// used for both an expense and an income category is resolved by type.
func (i *Importer) findOrCreateCategory(ctx context.Context, name string, typ core.TxType) (core.Category, error) {
	cats, err := i.store.ListCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) && c.Type == typ {
			return c, nil
		}
	}
	return i.store.CreateCategory(ctx, core.NewCategory{Name: name, Type: typ})
}
