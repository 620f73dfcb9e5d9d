package record

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var testToday = civil.Date{Year: 2024, Month: 6, Day: 15}

func TestValidateTransaction(t *testing.T) {
	data := map[string]interface{}{
		"source": "Salary",
		"amount": float64(50000),
		"type":   "income",
		"tags":   []interface{}{"Salary"},
		"date":   "2024-06-01",
	}

	rec, err := Validate(KindTransaction, data, testToday)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if rec.Kind != KindTransaction || rec.Transaction == nil {
		t.Fatalf("expected transaction variant, got %+v", rec)
	}

	tx := rec.Transaction
	if tx.Source != "Salary" {
		t.Errorf("source = %q, want Salary", tx.Source)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("amount = %s, want 50000", tx.Amount)
	}
	if tx.Type != TypeIncome {
		t.Errorf("type = %q, want income", tx.Type)
	}
	if tx.Date.String() != "2024-06-01" {
		t.Errorf("date = %s, want 2024-06-01", tx.Date)
	}
	if tx.Month != "June" {
		t.Errorf("month = %q, want June", tx.Month)
	}
	if tx.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestValidateTransaction_Normalization(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
		want func(t *testing.T, tx *Transaction)
	}{
		{
			name: "numeric string amount",
			data: map[string]interface{}{"source": "Rent", "amount": "12,500", "type": "expense"},
			want: func(t *testing.T, tx *Transaction) {
				if !tx.Amount.Equal(decimal.NewFromInt(12500)) {
					t.Errorf("amount = %s, want 12500", tx.Amount)
				}
			},
		},
		{
			name: "negative amount clamped to absolute",
			data: map[string]interface{}{"source": "Refund", "amount": float64(-300), "type": "income"},
			want: func(t *testing.T, tx *Transaction) {
				if !tx.Amount.Equal(decimal.NewFromInt(300)) {
					t.Errorf("amount = %s, want 300", tx.Amount)
				}
			},
		},
		{
			name: "missing date falls back to today",
			data: map[string]interface{}{"source": "Food", "amount": float64(200), "type": "expense"},
			want: func(t *testing.T, tx *Transaction) {
				if tx.Date != testToday {
					t.Errorf("date = %s, want %s", tx.Date, testToday)
				}
			},
		},
		{
			name: "unknown tag normalized to Other",
			data: map[string]interface{}{
				"source": "Misc", "amount": float64(10), "type": "expense",
				"tags": []interface{}{"Gadgets"},
			},
			want: func(t *testing.T, tx *Transaction) {
				if len(tx.Tags) != 1 || tx.Tags[0] != "Other" {
					t.Errorf("tags = %v, want [Other]", tx.Tags)
				}
			},
		},
		{
			name: "forced balance attached",
			data: map[string]interface{}{
				"source": "Salary", "amount": float64(17000), "type": "income",
				"forcedBalance": float64(23000),
			},
			want: func(t *testing.T, tx *Transaction) {
				if tx.ForcedBalance == nil || !tx.ForcedBalance.Equal(decimal.NewFromInt(23000)) {
					t.Errorf("forcedBalance = %v, want 23000", tx.ForcedBalance)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Validate(KindTransaction, tt.data, testToday)
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			tt.want(t, rec.Transaction)
		})
	}
}

func TestValidateTransaction_Errors(t *testing.T) {
	tests := []struct {
		name  string
		data  map[string]interface{}
		field string
	}{
		{"missing source", map[string]interface{}{"amount": float64(1), "type": "income"}, "source"},
		{"missing amount", map[string]interface{}{"source": "x", "type": "income"}, "amount"},
		{"bad type", map[string]interface{}{"source": "x", "amount": float64(1), "type": "transfer"}, "type"},
		{"bad date", map[string]interface{}{"source": "x", "amount": float64(1), "type": "income", "date": "junk"}, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(KindTransaction, tt.data, testToday)
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestValidateMovie(t *testing.T) {
	data := map[string]interface{}{
		"title":  "Inception",
		"status": "TO-WATCH",
		"genre":  "sci-fi",
		"rating": float64(5),
	}

	rec, err := Validate(KindMovie, data, testToday)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	m := rec.Movie
	if m.Status != "to-watch" {
		t.Errorf("status = %q, want to-watch", m.Status)
	}
	if m.Genre != "Sci-Fi" {
		t.Errorf("genre = %q, want Sci-Fi", m.Genre)
	}
	if m.Rating == nil || *m.Rating != 5 {
		t.Errorf("rating = %v, want 5", m.Rating)
	}
}

func TestValidateMovie_UnknownGenreAndMissingStatus(t *testing.T) {
	rec, err := Validate(KindMovie, map[string]interface{}{
		"title": "Some Film",
		"genre": "Mockumentary",
	}, testToday)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if rec.Movie.Genre != "Other" {
		t.Errorf("genre = %q, want Other", rec.Movie.Genre)
	}
	if rec.Movie.Status != "to-watch" {
		t.Errorf("status = %q, want to-watch", rec.Movie.Status)
	}
}

func TestValidateInvestment_ScreenshotFallback(t *testing.T) {
	// Portfolio screenshot without explicit units: quantity defaults to 1 and
	// buyPrice carries the invested value.
	rec, err := Validate(KindInvestment, map[string]interface{}{
		"symbol":        "HDFC Flexi Cap",
		"name":          "HDFC Flexi Cap Direct Plan Growth",
		"type":          "MF",
		"totalInvested": float64(100000),
		"currentPrice":  float64(112000),
	}, testToday)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	inv := rec.Investment
	if !inv.Quantity.Equal(decimal.NewFromInt(1)) {
		t.Errorf("quantity = %s, want 1", inv.Quantity)
	}
	if !inv.BuyPrice.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("buyPrice = %s, want 100000 (invested value)", inv.BuyPrice)
	}
	if !inv.CurrentPrice.Equal(decimal.NewFromInt(112000)) {
		t.Errorf("currentPrice = %s, want 112000", inv.CurrentPrice)
	}
}

func TestValidateInvestment_Defaults(t *testing.T) {
	rec, err := Validate(KindInvestment, map[string]interface{}{
		"type":      "SIP",
		"symbol":    "HDFC Flexi Cap",
		"sipAmount": float64(5000),
	}, testToday)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	inv := rec.Investment
	if inv.Type != InvestmentSIP {
		t.Errorf("type = %q, want SIP", inv.Type)
	}
	if inv.SIPDate == nil || *inv.SIPDate != 5 {
		t.Errorf("sipDate = %v, want default 5", inv.SIPDate)
	}
	if inv.Name != "HDFC Flexi Cap" {
		t.Errorf("name = %q, want symbol fallback", inv.Name)
	}
}

func TestValidateBalanceUpdate(t *testing.T) {
	rec, err := Validate(KindBalanceUpdate, map[string]interface{}{"balance": float64(50000)}, testToday)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !rec.BalanceUpdate.TargetBalance.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("targetBalance = %s, want 50000", rec.BalanceUpdate.TargetBalance)
	}

	if _, err := Validate(KindBalanceUpdate, map[string]interface{}{}, testToday); err == nil {
		t.Error("expected error for missing balance")
	}
}

func TestValidate_UnsupportedKind(t *testing.T) {
	if _, err := Validate(Kind("recipe"), map[string]interface{}{}, testToday); err == nil {
		t.Error("expected error for unsupported kind")
	}
}

func TestValidateExtractedTransaction(t *testing.T) {
	row, err := ValidateExtractedTransaction(map[string]interface{}{
		"date":   "2024-01-20",
		"source": "UPI/AMAZON",
		"amount": float64(-1499),
		"type":   "expense",
		"tags":   []interface{}{"shopping"},
	}, testToday)
	if err != nil {
		t.Fatalf("ValidateExtractedTransaction failed: %v", err)
	}
	if !row.Amount.Equal(decimal.NewFromInt(1499)) {
		t.Errorf("amount = %s, want absolute 1499", row.Amount)
	}
	if row.Type != TypeExpense {
		t.Errorf("type = %q, want expense", row.Type)
	}

	// Garbage rows degrade to defaults instead of failing.
	row, err = ValidateExtractedTransaction(map[string]interface{}{}, testToday)
	if err != nil {
		t.Fatalf("ValidateExtractedTransaction failed: %v", err)
	}
	if row.Source != "Unknown" || row.Date != testToday || !row.Amount.IsZero() {
		t.Errorf("unexpected defaults: %+v", row)
	}
}

func TestNormalizeEnum(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Action", "Action"},
		{"action", "Action"},
		{"  aCtIoN  ", "Action"},
		{"Western", "Other"},
		{"", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeEnum(tt.input, MovieGenres, "Other")
			if got != tt.want {
				t.Errorf("normalizeEnum(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
