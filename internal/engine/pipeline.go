package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/zerobudget/internal/model"
)

// Result is the computed budget of one month.
type Result struct {
	Groups       []GroupView
	Month        model.Month
	ToBeBudgeted model.Amount
	// Version is the store version the result was computed after; zero for one-off evaluations.
	Version uint64
}

// Compute derives the budget of month from snap. It is pure: the same snapshot
// always yields the same result. ok is false while the snapshot is still
// settling and the result must not be shown.
func Compute(month model.Month, snap Snapshot) (Result, bool) {
	available, ok := ComputeAvailable(month, snap.Categories,
		IndexBudgets(snap.BudgetsOfCategory), IndexTransactions(snap.TransactionsOfCategory))
	if !ok {
		return Result{}, false
	}

	view, ok := AssembleView(month, snap.Groups, snap.BudgetsWithCategory, available)
	if !ok {
		return Result{}, false
	}

	return Result{
		Month:        month,
		Groups:       view,
		ToBeBudgeted: ComputeToBeBudgeted(month, snap.Transactions, snap.Budgets),
	}, true
}

// Pipeline recomputes the budget whenever the ledger or the selected month changes:
//
//	change event / month ─▶ completion ─▶ snapshot ─▶ available, to-be-budgeted ─▶ view
//
// All work runs on the goroutine that calls Run, one evaluation at a time.
type Pipeline struct {
	store     PipelineStore
	loader    *Loader
	completer *Completer
}

// NewPipeline creates a Pipeline over store.
func NewPipeline(store PipelineStore) *Pipeline {
	return &Pipeline{
		store:     store,
		loader:    NewLoader(store),
		completer: NewCompleter(store),
	}
}

// Evaluate completes month and computes its budget once.
// A failed completion is logged and skipped; the next evaluation retries it.
func (p *Pipeline) Evaluate(ctx context.Context, month model.Month) (Result, bool, error) {
	if _, err := p.completer.CompleteMonth(ctx, month); err != nil {
		slog.Warn("Month completion skipped", "month", month.String(), "error", err)
	}

	snap, err := p.loader.Load(ctx)
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}
	ReportOrphans(snap.Categories, snap.Budgets, snap.Transactions)

	result, ok := Compute(month, snap)
	return result, ok, nil
}

// Run evaluates the month most recently received from months every time it
// changes or the store reports a write, until ctx is done. Results are sent on
// the returned channel, which holds at most one: an unread result is replaced
// by a newer one. The channel is closed when Run stops.
func (p *Pipeline) Run(ctx context.Context, months <-chan model.Month) <-chan Result {
	out := make(chan Result, 1)
	events, cancel := p.store.Subscribe()

	go func() {
		defer close(out)
		defer cancel()

		var (
			current  model.Month
			selected bool
			version  uint64
		)

		for {
			select {
			case <-ctx.Done():
				return

			case m, ok := <-months:
				if !ok {
					months = nil
					continue
				}
				if selected && m == current {
					continue
				}
				current, selected = m, true

			case event, ok := <-events:
				if !ok {
					return
				}
				version = event.Version
				if !selected {
					continue
				}
			}

			result, ok, err := p.Evaluate(ctx, current)
			if err != nil {
				slog.Warn("Budget evaluation failed", "month", current.String(), "error", err)
				continue
			}
			if !ok {
				slog.Debug("Budget withheld until the ledger settles", "month", current.String())
				continue
			}
			result.Version = version
			publish(out, result)
		}
	}()

	return out
}

// publish replaces any unread result with r.
func publish(out chan Result, r Result) {
	select {
	case <-out:
	default:
	}
	out <- r
}
