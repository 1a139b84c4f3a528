package ofx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/zerobudget/internal/model"
)

// DefaultBatchSize is the number of transactions written per ledger batch.
const DefaultBatchSize = 100

// TransactionWriter is the part of the ledger an import writes to.
type TransactionWriter interface {
	AddTransactions(ctx context.Context, transactions ...model.Transaction) ([]int64, error)
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	Imported   int
	NewPayees  int
	Duplicates int
	Rejected   int
}

// Importer writes parsed statements to the ledger in batches.
type Importer struct {
	writer    TransactionWriter
	progress  func(done int)
	batchSize int
}

// NewImporter creates an Importer writing to writer.
func NewImporter(writer TransactionWriter) *Importer {
	return &Importer{writer: writer, batchSize: DefaultBatchSize}
}

// WithBatchSize sets how many transactions go into one atomic write.
func (i *Importer) WithBatchSize(n int) *Importer {
	if n > 0 {
		i.batchSize = n
	}
	return i
}

// WithProgress registers a callback receiving the number of transactions
// written after every batch.
func (i *Importer) WithProgress(fn func(done int)) *Importer {
	i.progress = fn
	return i
}

// Import adds every entry of stmt to the ledger. Each batch is atomic; when a
// batch fails the result reports what earlier batches wrote.
func (i *Importer) Import(ctx context.Context, stmt *Statement) (ImportResult, error) {
	result := ImportResult{Duplicates: stmt.Duplicates, Rejected: stmt.Rejected}
	transactions := stmt.Transactions()

	for start := 0; start < len(transactions); start += i.batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := min(start+i.batchSize, len(transactions))

		payees, err := i.writer.AddTransactions(ctx, transactions[start:end]...)
		if err != nil {
			return result, fmt.Errorf("failed to import transactions %d-%d: %w", start+1, end, err)
		}
		result.Imported += end - start
		result.NewPayees += len(payees)
		if i.progress != nil {
			i.progress(result.Imported)
		}
	}

	slog.Info("Imported OFX transactions",
		"imported", result.Imported,
		"new_payees", result.NewPayees,
		"duplicates", result.Duplicates)
	return result, nil
}
