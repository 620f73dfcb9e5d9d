package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationError reports the first offending field of a record that failed
// schema validation.
type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record: field %q: %s", e.Kind, e.Field, e.Reason)
}

func invalid(kind Kind, field, reason string) error {
	return &ValidationError{Kind: kind, Field: field, Reason: reason}
}

// Validate converts an untyped JSON-like value into a well-typed Record using
// kind as the discriminator. today is the fallback for missing dates.
//
// Validation is deliberately tolerant: numeric strings become numbers,
// negative monetary values are clamped to their absolute value, unknown enum
// values fall back to "Other"/defaults. Only missing required fields and
// unparseable values are errors.
func Validate(kind Kind, data map[string]interface{}, today civil.Date) (*Record, error) {
	switch kind {
	case KindTransaction:
		tx, err := validateTransaction(data, today)
		if err != nil {
			return nil, err
		}
		return &Record{Kind: kind, Transaction: tx}, nil
	case KindMovie:
		m, err := validateMovie(data)
		if err != nil {
			return nil, err
		}
		return &Record{Kind: kind, Movie: m}, nil
	case KindNote:
		n, err := validateNote(data)
		if err != nil {
			return nil, err
		}
		return &Record{Kind: kind, Note: n}, nil
	case KindPassword:
		p, err := validatePassword(data)
		if err != nil {
			return nil, err
		}
		return &Record{Kind: kind, Password: p}, nil
	case KindInvestment:
		inv, err := validateInvestment(data)
		if err != nil {
			return nil, err
		}
		return &Record{Kind: kind, Investment: inv}, nil
	case KindBalanceUpdate:
		b, err := validateBalanceUpdate(data)
		if err != nil {
			return nil, err
		}
		return &Record{Kind: kind, BalanceUpdate: b}, nil
	default:
		return nil, invalid(kind, "dataType", fmt.Sprintf("unsupported kind %q", kind))
	}
}

func validateTransaction(data map[string]interface{}, today civil.Date) (*Transaction, error) {
	source, err := getString(data, "source", true)
	if err != nil {
		return nil, invalid(KindTransaction, "source", err.Error())
	}

	amount, ok, err := getDecimal(data, "amount")
	if err != nil {
		return nil, invalid(KindTransaction, "amount", err.Error())
	}
	if !ok {
		return nil, invalid(KindTransaction, "amount", "missing required field")
	}
	amount = amount.Abs()

	typStr, err := getString(data, "type", true)
	if err != nil {
		return nil, invalid(KindTransaction, "type", err.Error())
	}
	var typ TransactionType
	switch strings.ToLower(strings.TrimSpace(typStr)) {
	case "income":
		typ = TypeIncome
	case "expense":
		typ = TypeExpense
	default:
		return nil, invalid(KindTransaction, "type", fmt.Sprintf("want income or expense, got %q", typStr))
	}

	date, err := getDate(data, "date", today)
	if err != nil {
		return nil, invalid(KindTransaction, "date", err.Error())
	}

	allowed := ExpenseTags
	if typ == TypeIncome {
		allowed = IncomeTags
	}
	tags := normalizeTags(getStringSlice(data, "tags"), allowed)

	tx := &Transaction{
		ID:     uuid.NewString(),
		Source: source,
		Amount: amount,
		Tags:   tags,
		Date:   date,
		Month:  MonthName(date),
		Type:   typ,
	}

	if forced, ok, err := getDecimal(data, "forcedBalance"); err != nil {
		return nil, invalid(KindTransaction, "forcedBalance", err.Error())
	} else if ok {
		tx.ForcedBalance = &forced
	}

	return tx, nil
}

func validateMovie(data map[string]interface{}) (*Movie, error) {
	title, err := getString(data, "title", true)
	if err != nil {
		return nil, invalid(KindMovie, "title", err.Error())
	}

	status, _ := getString(data, "status", false)
	status = normalizeEnum(status, MovieStatuses, "to-watch")

	genre, _ := getString(data, "genre", false)
	if genre != "" {
		genre = normalizeEnum(genre, MovieGenres, "Other")
	}

	m := &Movie{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    status,
		Genre:     genre,
		AddedDate: time.Now().Format(time.RFC3339),
	}

	if notes, _ := getString(data, "notes", false); notes != "" {
		m.Notes = notes
	}

	if rating, ok, err := getDecimal(data, "rating"); err == nil && ok {
		r := int(rating.IntPart())
		if r >= 1 && r <= 5 {
			m.Rating = &r
		}
	}

	return m, nil
}

func validateNote(data map[string]interface{}) (*Note, error) {
	title, err := getString(data, "title", true)
	if err != nil {
		return nil, invalid(KindNote, "title", err.Error())
	}
	content, err := getString(data, "content", true)
	if err != nil {
		return nil, invalid(KindNote, "content", err.Error())
	}

	category, _ := getString(data, "category", false)
	category = normalizeEnum(category, NoteCategories, "Other")

	return &Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Category:  category,
		CreatedAt: time.Now().Format(time.RFC3339),
	}, nil
}

func validatePassword(data map[string]interface{}) (*Password, error) {
	site, err := getString(data, "site", true)
	if err != nil {
		return nil, invalid(KindPassword, "site", err.Error())
	}
	username, err := getString(data, "username", true)
	if err != nil {
		return nil, invalid(KindPassword, "username", err.Error())
	}
	password, err := getString(data, "password", true)
	if err != nil {
		return nil, invalid(KindPassword, "password", err.Error())
	}

	category, _ := getString(data, "category", false)
	category = normalizeEnum(category, PasswordCategories, "Other")

	return &Password{
		ID:        uuid.NewString(),
		Site:      site,
		Username:  username,
		Password:  password,
		Category:  category,
		CreatedAt: time.Now().Format(time.RFC3339),
	}, nil
}

func validateInvestment(data map[string]interface{}) (*Investment, error) {
	symbol, _ := getString(data, "symbol", false)
	if symbol == "" {
		symbol = "UNKNOWN"
	}
	name, _ := getString(data, "name", false)
	if name == "" {
		name = symbol
	}

	typStr, _ := getString(data, "type", false)
	typ := InvestmentMF // screenshots are most often mutual fund summaries
	for _, t := range InvestmentTypes {
		if strings.EqualFold(strings.TrimSpace(typStr), string(t)) {
			typ = t
			break
		}
	}

	quantity, _, err := getDecimal(data, "quantity")
	if err != nil {
		return nil, invalid(KindInvestment, "quantity", err.Error())
	}
	buyPrice, _, err := getDecimal(data, "buyPrice")
	if err != nil {
		return nil, invalid(KindInvestment, "buyPrice", err.Error())
	}
	currentPrice, _, err := getDecimal(data, "currentPrice")
	if err != nil {
		return nil, invalid(KindInvestment, "currentPrice", err.Error())
	}

	inv := &Investment{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Name:         name,
		Type:         typ,
		Quantity:     quantity.Abs(),
		BuyPrice:     buyPrice.Abs(),
		CurrentPrice: currentPrice.Abs(),
	}

	if total, ok, err := getDecimal(data, "totalInvested"); err != nil {
		return nil, invalid(KindInvestment, "totalInvested", err.Error())
	} else if ok {
		total = total.Abs()
		inv.TotalInvested = &total
	}
	if sip, ok, err := getDecimal(data, "sipAmount"); err != nil {
		return nil, invalid(KindInvestment, "sipAmount", err.Error())
	} else if ok {
		sip = sip.Abs()
		inv.SIPAmount = &sip
	}
	if sipDate, ok, err := getDecimal(data, "sipDate"); err == nil && ok {
		d := int(sipDate.IntPart())
		if d >= 1 && d <= 31 {
			inv.SIPDate = &d
		}
	}
	if typ == InvestmentSIP && inv.SIPDate == nil {
		d := 5 // most Indian SIP mandates run early in the month
		inv.SIPDate = &d
	}

	// Screenshot fallback: no explicit units means the model saw only
	// invested/current values, so treat the holding as a single unit.
	if inv.Quantity.IsZero() {
		inv.Quantity = decimal.NewFromInt(1)
		if inv.TotalInvested != nil && inv.BuyPrice.IsZero() {
			inv.BuyPrice = *inv.TotalInvested
		}
	}
	if inv.CurrentPrice.IsZero() {
		inv.CurrentPrice = inv.BuyPrice
	}

	return inv, nil
}

func validateBalanceUpdate(data map[string]interface{}) (*BalanceUpdate, error) {
	target, ok, err := getDecimal(data, "balance")
	if err != nil {
		return nil, invalid(KindBalanceUpdate, "balance", err.Error())
	}
	if !ok {
		// Some replies name the field after the prompt wording.
		target, ok, err = getDecimal(data, "targetBalance")
		if err != nil || !ok {
			return nil, invalid(KindBalanceUpdate, "balance", "missing required field")
		}
	}
	return &BalanceUpdate{TargetBalance: target}, nil
}

// ValidateExtractedTransaction converts one raw statement-page row into an
// ExtractedTransaction. Rows keep free-form keyword tags: the page prompt asks
// for 1-2 keywords, not the closed transaction vocabulary.
func ValidateExtractedTransaction(data map[string]interface{}, today civil.Date) (*ExtractedTransaction, error) {
	source, _ := getString(data, "source", false)
	if source == "" {
		source = "Unknown"
	}

	amount, ok, err := getDecimal(data, "amount")
	if err != nil || !ok {
		amount = decimal.Zero
	}

	date, err := getDate(data, "date", today)
	if err != nil {
		date = today
	}

	typStr, _ := getString(data, "type", false)
	typ := TypeIncome
	if strings.EqualFold(strings.TrimSpace(typStr), string(TypeExpense)) {
		typ = TypeExpense
	}

	tags := getStringSlice(data, "tags")
	if tags == nil {
		tags = []string{}
	}

	return &ExtractedTransaction{
		ID:     uuid.NewString(),
		Date:   date,
		Source: source,
		Amount: amount.Abs(),
		Type:   typ,
		Tags:   tags,
	}, nil
}

//
// Field access helpers. The model output arrives as map[string]interface{}
// from encoding/json, so values are float64, string, bool, []interface{}.
//

func getString(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return s, nil
}

// getDecimal reads a monetary/numeric field, accepting JSON numbers as well
// as numeric strings ("1,700" included, since models format amounts freely).
func getDecimal(m map[string]interface{}, key string) (decimal.Decimal, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Zero, false, nil
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), true, nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("field %q: %v", key, err)
		}
		return d, true, nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if s == "" {
			return decimal.Zero, false, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("field %q is not a number: %q", key, val)
		}
		return d, true, nil
	case int:
		return decimal.NewFromInt(int64(val)), true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

// getDate reads a YYYY-MM-DD field, falling back to today when absent.
func getDate(m map[string]interface{}, key string, today civil.Date) (civil.Date, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return today, nil
	}
	s, ok := v.(string)
	if !ok {
		return civil.Date{}, fmt.Errorf("field %q has type %T, want string", key, v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return today, nil
	}
	// Some models append a time component; keep the date part only.
	if idx := strings.IndexAny(s, "T "); idx > 0 {
		s = s[:idx]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: %v", s, err)
	}
	return civil.DateOf(t), nil
}

func getStringSlice(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		// A single bare string is accepted as a one-element list.
		if s, ok := v.(string); ok && s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
