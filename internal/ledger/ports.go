// Package ledger defines the outbound port for mirroring household records
// to a shared ledger spreadsheet.
package ledger

import (
	"context"

	"messbook/internal/core"
)

// Writer appends records to the household ledger. Implementations return a
// reference to the written row for logging.
type Writer interface {
	AppendExpense(ctx context.Context, owner core.Profile, e core.Expense) (rowRef string, err error)
	AppendContribution(ctx context.Context, owner core.Profile, c core.Contribution) (rowRef string, err error)
}
