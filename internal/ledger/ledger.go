// Package ledger computes running balances over the transaction ledger and
// enforces user-declared target balances through synthetic correction
// entries. The ledger itself is owned by the storage collaborator; this
// package only reads it and emits at most one new record per reconciliation.
package ledger

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulvm/dashbrain/internal/record"
)

// CorrectionSource labels synthetic correction transactions in the ledger.
const CorrectionSource = "Balance Correction"

// DefaultTolerance is the difference below which no correction is emitted.
// One currency unit; appropriate for INR, configurable for anything else.
var DefaultTolerance = decimal.NewFromInt(1)

// Balance returns sum(income) - sum(expense) over the ledger.
func Balance(txs []*record.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == record.TypeIncome {
			total = total.Add(tx.Amount)
		} else {
			total = total.Sub(tx.Amount)
		}
	}
	return total
}

// Reconciler synthesizes correction transactions so the ledger's computed
// balance matches a declared target.
type Reconciler struct {
	tolerance decimal.Decimal
	now       func() civil.Date
}

// NewReconciler creates a Reconciler. A zero or negative tolerance falls back
// to DefaultTolerance.
func NewReconciler(tolerance decimal.Decimal) *Reconciler {
	if tolerance.LessThanOrEqual(decimal.Zero) {
		tolerance = DefaultTolerance
	}
	return &Reconciler{
		tolerance: tolerance,
		now:       func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

// Reconcile compares the ledger's current balance against target and returns
// the correction transaction needed to close the gap, or nil when the
// difference is within tolerance. Existing records are never mutated.
//
// Re-running against a ledger that already includes the correction yields nil:
// the post-correction balance equals the target.
func (r *Reconciler) Reconcile(txs []*record.Transaction, target decimal.Decimal) *record.Transaction {
	difference := target.Sub(Balance(txs))
	if difference.Abs().LessThan(r.tolerance) {
		return nil
	}

	typ := record.TypeExpense
	if difference.IsPositive() {
		typ = record.TypeIncome
	}

	today := r.now()
	return &record.Transaction{
		ID:     uuid.NewString(),
		Source: CorrectionSource,
		Amount: difference.Abs(),
		Type:   typ,
		Tags:   []string{"Other"},
		Date:   today,
		Month:  record.MonthName(today),
	}
}

// CommitWithForcedBalance prepends tx to the ledger and reconciles against
// the post-commit balance using tx's forced target. It returns the updated
// ledger (most-recent-first, correction ahead of tx when one was needed) and
// the correction, if any. The ForcedBalance marker is consumed: it does not
// survive into the stored record.
func (r *Reconciler) CommitWithForcedBalance(txs []*record.Transaction, tx *record.Transaction) ([]*record.Transaction, *record.Transaction) {
	committed := *tx
	forced := committed.ForcedBalance
	committed.ForcedBalance = nil

	updated := append([]*record.Transaction{&committed}, txs...)
	if forced == nil {
		return updated, nil
	}

	correction := r.Reconcile(updated, *forced)
	if correction == nil {
		return updated, nil
	}
	return append([]*record.Transaction{correction}, updated...), correction
}
