// Package record defines the closed set of domain record shapes the AI
// assistant can produce, along with their vocabularies and validation rules.
package record

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Kind discriminates the supported record shapes.
type Kind string

const (
	KindTransaction   Kind = "transaction"
	KindMovie         Kind = "movie"
	KindNote          Kind = "note"
	KindPassword      Kind = "password"
	KindInvestment    Kind = "investment"
	KindBalanceUpdate Kind = "balance_update"
)

// Kinds lists every supported kind. The set is closed: anything else coming
// back from the model is a validation failure, not a new record type.
var Kinds = []Kind{
	KindTransaction,
	KindMovie,
	KindNote,
	KindPassword,
	KindInvestment,
	KindBalanceUpdate,
}

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Record is a tagged union: exactly one variant pointer is non-nil, matching
// the Kind discriminator. Parsing never produces a partially-filled record;
// an input that cannot be classified yields an error instead.
type Record struct {
	Kind          Kind           `json:"dataType"`
	Transaction   *Transaction   `json:"transaction,omitempty"`
	Movie         *Movie         `json:"movie,omitempty"`
	Note          *Note          `json:"note,omitempty"`
	Password      *Password      `json:"password,omitempty"`
	Investment    *Investment    `json:"investment,omitempty"`
	BalanceUpdate *BalanceUpdate `json:"balanceUpdate,omitempty"`
}

// Data returns the active variant as an untyped value, useful for building
// the response envelope facing the UI.
func (r *Record) Data() interface{} {
	switch r.Kind {
	case KindTransaction:
		return r.Transaction
	case KindMovie:
		return r.Movie
	case KindNote:
		return r.Note
	case KindPassword:
		return r.Password
	case KindInvestment:
		return r.Investment
	case KindBalanceUpdate:
		return r.BalanceUpdate
	}
	return nil
}

// Transaction is one income or expense entry in the ledger.
type Transaction struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
	Tags   []string        `json:"tags"`
	Date   civil.Date      `json:"date"`
	Month  string          `json:"month"`
	Type   TransactionType `json:"type"`

	// ForcedBalance carries the user-declared target balance when the input
	// stated both a transaction and a resulting balance ("Salary 17k, balance
	// is now 23k"). The reconciler consumes it; it is not persisted.
	ForcedBalance *decimal.Decimal `json:"forcedBalance,omitempty"`
}

// MonthName returns the full month name for a date, e.g. "January".
func MonthName(d civil.Date) string {
	return d.Month.String()
}

// Movie is one watchlist entry.
type Movie struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"` // to-watch | watching | watched
	Genre     string `json:"genre,omitempty"`
	Rating    *int   `json:"rating,omitempty"` // 1..5
	Notes     string `json:"notes,omitempty"`
	AddedDate string `json:"addedDate"`
}

// Note is one quick note.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	CreatedAt string `json:"createdAt"`
}

// Password is one vault entry.
type Password struct {
	ID        string `json:"id"`
	Site      string `json:"site"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Category  string `json:"category"`
	CreatedAt string `json:"createdAt"`
}

// InvestmentType is the instrument class of an investment.
type InvestmentType string

const (
	InvestmentStock InvestmentType = "STOCK"
	InvestmentMF    InvestmentType = "MF"
	InvestmentSIP   InvestmentType = "SIP"
	InvestmentEPF   InvestmentType = "EPF"
)

// Investment is one portfolio holding, extracted from text or a portfolio
// screenshot. When the model cannot find explicit units, quantity falls back
// to 1 and buy/current price carry the invested/current values instead.
type Investment struct {
	ID            string           `json:"id"`
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Type          InvestmentType   `json:"type"`
	Quantity      decimal.Decimal  `json:"quantity"`
	BuyPrice      decimal.Decimal  `json:"buyPrice"`
	CurrentPrice  decimal.Decimal  `json:"currentPrice"`
	TotalInvested *decimal.Decimal `json:"totalInvested,omitempty"`
	SIPAmount     *decimal.Decimal `json:"sipAmount,omitempty"`
	SIPDate       *int             `json:"sipDate,omitempty"` // day of month, 1..31
}

// BalanceUpdate is an explicit balance declaration ("my balance is 50k").
type BalanceUpdate struct {
	TargetBalance decimal.Decimal `json:"balance"`
}

// ExtractedTransaction is the intermediate shape produced during multi-page
// statement extraction, one per table row found on a page. The caller reviews
// the merged list before committing rows as permanent transactions.
type ExtractedTransaction struct {
	ID     string          `json:"id"`
	Date   civil.Date      `json:"date"`
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"` // absolute value
	Type   TransactionType `json:"type"`
	Tags   []string        `json:"tags"`
}
