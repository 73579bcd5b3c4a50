// Package sheets defines the outbound port for exporting transactions to a
// spreadsheet.
package sheets

import (
	"context"
	"time"

	"kharcha/internal/core"
)

// Row is one exported transaction, flattened for a spreadsheet: the category
// travels by name since the sheet has no notion of our ids.
type Row struct {
	Date        time.Time
	Type        core.TxType
	Amount      float64
	Description string
	Category    string
}

// RowAppender appends a row and returns an implementation-specific reference
// to where it landed.
type RowAppender interface {
	AppendRow(ctx context.Context, row Row) (rowRef string, err error)
}
