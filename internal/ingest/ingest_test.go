package ingest

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulvm/dashbrain/internal/extract"
	"github.com/rahulvm/dashbrain/internal/ledger"
	"github.com/rahulvm/dashbrain/internal/parser"
	"github.com/rahulvm/dashbrain/internal/record"
	"github.com/rahulvm/dashbrain/internal/storage"
)

// fixedGateway returns a single canned reply and records its calls.
type fixedGateway struct {
	reply string
	err   error
	calls int
}

func (g *fixedGateway) Generate(ctx context.Context, system, text, image string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func newTestOrchestrator(gw *fixedGateway, store storage.Store) *Orchestrator {
	o := New(gw, store, ledger.NewReconciler(decimal.Zero), extract.New(gw, extract.WithPageDelay(0)), zerolog.Nop())
	o.today = func() civil.Date { return civil.Date{Year: 2024, Month: 6, Day: 15} }
	return o
}

func TestClassify_InvalidInput(t *testing.T) {
	gw := &fixedGateway{}
	o := newTestOrchestrator(gw, storage.NewMemory())

	_, err := o.Classify(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, gw.calls, "no model call may be made for empty input")
}

func TestClassify_EachKind(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		kind  record.Kind
	}{
		{
			name:  "transaction",
			reply: `{"dataType":"transaction","data":{"source":"Groceries","amount":2500,"type":"expense","tags":["Food"]},"message":"ok"}`,
			kind:  record.KindTransaction,
		},
		{
			name:  "movie",
			reply: `{"dataType":"movie","data":{"title":"Inception","status":"to-watch","genre":"Sci-Fi"},"message":"ok"}`,
			kind:  record.KindMovie,
		},
		{
			name:  "note",
			reply: `{"dataType":"note","data":{"title":"Call mom","content":"This weekend","category":"Personal"},"message":"ok"}`,
			kind:  record.KindNote,
		},
		{
			name:  "password",
			reply: `{"dataType":"password","data":{"site":"Netflix","username":"user@email.com","password":"pass123","category":"Social"},"message":"ok"}`,
			kind:  record.KindPassword,
		},
		{
			name:  "investment",
			reply: `{"dataType":"investment","data":{"type":"STOCK","symbol":"AAPL","name":"Apple","quantity":10,"buyPrice":150},"message":"ok"}`,
			kind:  record.KindInvestment,
		},
		{
			name:  "balance update",
			reply: `{"dataType":"balance_update","data":{"balance":50000},"message":"ok"}`,
			kind:  record.KindBalanceUpdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(&fixedGateway{reply: tt.reply}, storage.NewMemory())

			res, err := o.Classify(context.Background(), "some input", "")
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Record.Kind)
			assert.NotNil(t, res.Record.Data())
		})
	}
}

func TestClassify_SalaryWithForcedBalance(t *testing.T) {
	// "Salary is 17k arrived, balance is now 23k" with an empty ledger:
	// primary income of 17000 plus a 6000 income correction.
	gw := &fixedGateway{reply: `{
		"dataType": "transaction",
		"data": {"source": "Salary (Balance: 23k)", "amount": 17000, "type": "income", "tags": ["Salary"], "forcedBalance": 23000},
		"message": "Added salary"
	}`}
	store := storage.NewMemory()
	o := newTestOrchestrator(gw, store)

	res, err := o.Classify(context.Background(), "Salary is 17k arrived, balance is now 23k", "")
	require.NoError(t, err)

	tx := res.Record.Transaction
	require.NotNil(t, tx)
	assert.Contains(t, tx.Source, "Salary")
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(17000)))
	assert.Equal(t, record.TypeIncome, tx.Type)

	require.NotNil(t, res.Correction)
	assert.Equal(t, ledger.CorrectionSource, res.Correction.Source)
	assert.True(t, res.Correction.Amount.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, record.TypeIncome, res.Correction.Type)

	// Both records landed in the ledger, correction first.
	txs, err := storage.Transactions(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, ledger.CorrectionSource, txs[0].Source)
	assert.True(t, ledger.Balance(txs).Equal(decimal.NewFromInt(23000)))
}

func TestClassify_BalanceUpdateAgainstExistingLedger(t *testing.T) {
	store := storage.NewMemory()
	seed := []*record.Transaction{
		{ID: "1", Source: "Salary", Amount: decimal.NewFromInt(30000), Type: record.TypeIncome, Tags: []string{"Salary"}},
	}
	require.NoError(t, storage.SaveTransactions(context.Background(), store, seed))

	gw := &fixedGateway{reply: `{"dataType":"balance_update","data":{"balance":25000},"message":"ok"}`}
	o := newTestOrchestrator(gw, store)

	res, err := o.Classify(context.Background(), "my balance is 25000", "")
	require.NoError(t, err)

	require.NotNil(t, res.Correction)
	assert.Equal(t, record.TypeExpense, res.Correction.Type)
	assert.True(t, res.Correction.Amount.Equal(decimal.NewFromInt(5000)))

	txs, err := storage.Transactions(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, ledger.Balance(txs).Equal(decimal.NewFromInt(25000)))
}

func TestClassify_BalanceUpdateWithinTolerance(t *testing.T) {
	store := storage.NewMemory()
	seed := []*record.Transaction{
		{ID: "1", Source: "Salary", Amount: decimal.NewFromInt(25000), Type: record.TypeIncome, Tags: []string{"Salary"}},
	}
	require.NoError(t, storage.SaveTransactions(context.Background(), store, seed))

	gw := &fixedGateway{reply: `{"dataType":"balance_update","data":{"balance":25000},"message":"ok"}`}
	o := newTestOrchestrator(gw, store)

	res, err := o.Classify(context.Background(), "balance is 25000", "")
	require.NoError(t, err)
	assert.Nil(t, res.Correction)

	txs, err := storage.Transactions(context.Background(), store)
	require.NoError(t, err)
	assert.Len(t, txs, 1, "no correction may be written when within tolerance")
}

func TestClassify_OtherKindsAreNotPersisted(t *testing.T) {
	// Movies, notes, passwords and investments are the caller's to persist.
	store := storage.NewMemory()
	gw := &fixedGateway{reply: `{"dataType":"movie","data":{"title":"Inception"},"message":"ok"}`}
	o := newTestOrchestrator(gw, store)

	_, err := o.Classify(context.Background(), "watch Inception", "")
	require.NoError(t, err)

	_, ok, err := store.Get(context.Background(), storage.KeyMovies)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClassify_ModelErrorEnvelope(t *testing.T) {
	gw := &fixedGateway{reply: `{"error": true, "message": "Could not understand"}`}
	o := newTestOrchestrator(gw, storage.NewMemory())

	_, err := o.Classify(context.Background(), "gibberish", "")
	var cerr *parser.ClassificationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Could not understand", cerr.Message)
}

func TestClassify_MalformedReply(t *testing.T) {
	gw := &fixedGateway{reply: "not json at all"}
	o := newTestOrchestrator(gw, storage.NewMemory())

	_, err := o.Classify(context.Background(), "hello", "")
	var perr *parser.ParseError
	assert.ErrorAs(t, err, &perr)
}
