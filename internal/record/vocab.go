package record

import "strings"

// Closed vocabularies. The model is instructed to pick from these lists; when
// it returns something else anyway, validation normalizes to the fallback
// value instead of rejecting the record.

var IncomeTags = []string{"Salary", "Freelance", "Investment", "Gift", "Other"}

var ExpenseTags = []string{
	"Rent/Mortgage", "Utilities", "Family", "Retail", "loan",
	"Education", "Food", "Transport", "Entertainment", "Healthcare", "Other",
}

var MovieGenres = []string{
	"Action", "Comedy", "Drama", "Horror", "Sci-Fi", "Romance",
	"Documentary", "Thriller", "Animation", "Other",
}

var MovieStatuses = []string{"to-watch", "watching", "watched"}

var NoteCategories = []string{"Personal", "Work", "Ideas", "Tasks", "Other"}

var PasswordCategories = []string{"Social", "Banking", "Email", "Shopping", "Work", "Other"}

var InvestmentTypes = []InvestmentType{
	InvestmentStock, InvestmentMF, InvestmentSIP, InvestmentEPF,
}

// TransactionTags is the union of income and expense tags used in the
// classification prompt.
func TransactionTags() []string {
	seen := make(map[string]bool, len(IncomeTags)+len(ExpenseTags))
	var out []string
	for _, t := range append(append([]string{}, IncomeTags...), ExpenseTags...) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// normalizeEnum matches value against allowed case-insensitively and returns
// the canonical spelling, or fallback when the value is not in the vocabulary.
func normalizeEnum(value string, allowed []string, fallback string) string {
	v := strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	return fallback
}

// normalizeTags maps each tag to its canonical spelling; tags outside the
// vocabulary become "Other". Missing tags stay an empty (non-nil) sequence.
func normalizeTags(tags []string, allowed []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		canonical := normalizeEnum(t, allowed, "Other")
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return out
}
