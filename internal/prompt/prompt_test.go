package prompt

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/rahulvm/dashbrain/internal/record"
)

var today = civil.Date{Year: 2024, Month: 6, Day: 15}

// The classification prompt is validated by inspection: every kind, every
// schema field and every vocabulary entry must have a corresponding line,
// and each kind at least one worked example.
func TestClassification_CoversSchema(t *testing.T) {
	p := New(today).Classification()

	for _, kind := range record.Kinds {
		if !strings.Contains(p, `"`+string(kind)+`"`) {
			t.Errorf("prompt is missing kind %q", kind)
		}
	}

	fields := []string{
		// transaction
		"type", "source", "amount", "tags", "date", "forcedBalance",
		// movie
		"title", "status", "genre", "rating", "notes",
		// note
		"content", "category",
		// password
		"site", "username", "password",
		// investment
		"symbol", "name", "quantity", "buyPrice", "currentPrice",
		"totalInvested", "sipAmount", "sipDate",
		// balance_update
		"balance",
	}
	for _, f := range fields {
		if !strings.Contains(p, f) {
			t.Errorf("prompt is missing field %q", f)
		}
	}

	vocab := append([]string{}, record.TransactionTags()...)
	vocab = append(vocab, record.MovieGenres...)
	vocab = append(vocab, record.NoteCategories...)
	vocab = append(vocab, record.PasswordCategories...)
	vocab = append(vocab, record.MovieStatuses...)
	for _, v := range vocab {
		if !strings.Contains(p, `"`+v+`"`) {
			t.Errorf("prompt is missing vocabulary entry %q", v)
		}
	}

	examples := []string{
		"50000 salary today",              // transaction income
		"Spent 2500 on groceries",         // transaction expense
		"balance is now 23k",              // balance-forcing case
		"Inception",                       // movie
		"call mom",                        // note
		"Netflix",                         // password
		"10 shares of Apple",              // stock
		"SIP of 5000",                     // SIP
		"Current wallet balance 50k",      // balance_update
		"Image of portfolio summary",      // investment screenshot
	}
	for _, e := range examples {
		if !strings.Contains(p, e) {
			t.Errorf("prompt is missing worked example containing %q", e)
		}
	}
}

func TestClassification_EmbedsToday(t *testing.T) {
	p := New(today).Classification()
	if !strings.Contains(p, "2024-06-15") {
		t.Error("prompt does not embed today's date as the fallback")
	}
}

func TestClassification_Deterministic(t *testing.T) {
	b := New(today)
	if b.Classification() != b.Classification() {
		t.Error("Classification output is not deterministic")
	}
}

func TestStatementPage(t *testing.T) {
	p := New(today).StatementPage()

	for _, want := range []string{"debug_summary", "transactions", "date", "source", "amount", "type", "tags"} {
		if !strings.Contains(p, `"`+want+`"`) {
			t.Errorf("statement prompt is missing %q", want)
		}
	}
	if !strings.Contains(p, "empty array") {
		t.Error("statement prompt must allow pages without transactions")
	}
}
