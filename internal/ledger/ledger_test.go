package ledger

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulvm/dashbrain/internal/record"
)

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func income(amount int64) *record.Transaction {
	return &record.Transaction{Source: "x", Amount: d(amount), Type: record.TypeIncome}
}

func expense(amount int64) *record.Transaction {
	return &record.Transaction{Source: "x", Amount: d(amount), Type: record.TypeExpense}
}

func newTestReconciler() *Reconciler {
	r := NewReconciler(decimal.Zero)
	r.now = func() civil.Date { return civil.Date{Year: 2024, Month: 6, Day: 15} }
	return r
}

func TestBalance(t *testing.T) {
	txs := []*record.Transaction{income(50000), expense(12000), expense(3000), income(500)}
	assert.True(t, Balance(txs).Equal(d(35500)), "balance = %s", Balance(txs))

	assert.True(t, Balance(nil).IsZero())
}

func TestReconcile_WithinToleranceNoCorrection(t *testing.T) {
	r := newTestReconciler()
	txs := []*record.Transaction{income(1000)}

	assert.Nil(t, r.Reconcile(txs, d(1000)))

	// Sub-unit differences are negligible by design.
	target, _ := decimal.NewFromString("1000.75")
	assert.Nil(t, r.Reconcile(txs, target))
}

func TestReconcile_EmitsCorrection(t *testing.T) {
	r := newTestReconciler()

	t.Run("shortfall becomes income", func(t *testing.T) {
		txs := []*record.Transaction{income(17000)}
		c := r.Reconcile(txs, d(23000))
		require.NotNil(t, c)
		assert.Equal(t, CorrectionSource, c.Source)
		assert.True(t, c.Amount.Equal(d(6000)), "amount = %s", c.Amount)
		assert.Equal(t, record.TypeIncome, c.Type)
		assert.Equal(t, []string{"Other"}, c.Tags)
		assert.Equal(t, "2024-06-15", c.Date.String())
		assert.Equal(t, "June", c.Month)
		assert.NotEmpty(t, c.ID)
	})

	t.Run("excess becomes expense", func(t *testing.T) {
		txs := []*record.Transaction{income(30000)}
		c := r.Reconcile(txs, d(25000))
		require.NotNil(t, c)
		assert.True(t, c.Amount.Equal(d(5000)))
		assert.Equal(t, record.TypeExpense, c.Type)
	})

	t.Run("exactly one unit off still corrects", func(t *testing.T) {
		txs := []*record.Transaction{income(100)}
		c := r.Reconcile(txs, d(101))
		require.NotNil(t, c)
		assert.True(t, c.Amount.Equal(d(1)))
	})
}

func TestReconcile_Idempotent(t *testing.T) {
	r := newTestReconciler()
	txs := []*record.Transaction{income(17000)}
	target := d(23000)

	first := r.Reconcile(txs, target)
	require.NotNil(t, first)

	// Apply the correction, reconcile again: no second correction.
	txs = append([]*record.Transaction{first}, txs...)
	assert.Nil(t, r.Reconcile(txs, target))
}

func TestCommitWithForcedBalance(t *testing.T) {
	r := newTestReconciler()

	// "Salary is 17k arrived, balance is now 23k" against an empty ledger:
	// the salary is committed first, then a 6000 income correction lands
	// ahead of it.
	forced := d(23000)
	salary := income(17000)
	salary.Source = "Salary (Balance: 23k)"
	salary.ForcedBalance = &forced

	updated, correction := r.CommitWithForcedBalance(nil, salary)
	require.NotNil(t, correction)
	require.Len(t, updated, 2)

	assert.Equal(t, CorrectionSource, updated[0].Source)
	assert.True(t, updated[0].Amount.Equal(d(6000)))
	assert.Equal(t, record.TypeIncome, updated[0].Type)

	assert.Equal(t, "Salary (Balance: 23k)", updated[1].Source)
	assert.Nil(t, updated[1].ForcedBalance, "forced balance must not be persisted")

	assert.True(t, Balance(updated).Equal(forced))
}

func TestCommitWithForcedBalance_NoForcedTarget(t *testing.T) {
	r := newTestReconciler()

	updated, correction := r.CommitWithForcedBalance([]*record.Transaction{income(100)}, expense(40))
	assert.Nil(t, correction)
	require.Len(t, updated, 2)
	assert.Equal(t, record.TypeExpense, updated[0].Type)
}

func TestCommitWithForcedBalance_TargetAlreadyMet(t *testing.T) {
	r := newTestReconciler()

	forced := d(150)
	tx := income(50)
	tx.ForcedBalance = &forced

	updated, correction := r.CommitWithForcedBalance([]*record.Transaction{income(100)}, tx)
	assert.Nil(t, correction)
	assert.Len(t, updated, 2)
}

func TestReconcile_DoesNotMutateExistingRecords(t *testing.T) {
	r := newTestReconciler()
	tx := income(1000)
	before := *tx

	r.Reconcile([]*record.Transaction{tx}, d(5000))
	assert.Equal(t, before, *tx)
}
