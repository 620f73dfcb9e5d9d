// Package prompt builds the instructions sent to the language model: the
// six-kind classification prompt and the statement-page extraction prompt.
// Both are pure functions of the current date and the record vocabularies.
package prompt

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/rahulvm/dashbrain/internal/record"
)

// Builder constructs prompts anchored to a fixed calendar date. The date is
// embedded verbatim so the model has a concrete fallback for "today".
type Builder struct {
	Today civil.Date
}

// New returns a Builder anchored to today.
func New(today civil.Date) *Builder {
	return &Builder{Today: today}
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Classification returns the system instruction for the six-way record
// classifier. Every schema field has a corresponding instruction line and
// every kind at least one worked example, including the balance-forcing case.
func (b *Builder) Classification() string {
	var s strings.Builder

	s.WriteString("You are a helpful assistant that parses natural language input (and images) into structured data for a personal dashboard.\n\n")
	s.WriteString("The user will describe transactions, movies, notes, passwords, or investments they want to add. Parse their input and return a JSON response.\n\n")
	s.WriteString("Supported data types:\n")

	s.WriteString("1. \"transaction\" - Income or expense entries\n")
	s.WriteString("   - type: \"income\" or \"expense\"\n")
	s.WriteString("   - source: description of the transaction (append balance info here if relevant, e.g. \"Salary (Balance: 23k)\")\n")
	s.WriteString("   - amount: number (extract the transaction amount, not the total balance. e.g. \"Salary 17k, balance 23k\" -> amount = 17000)\n")
	s.WriteString("   - tags: array of relevant tags from: " + quotedList(record.TransactionTags()) + "\n")
	s.WriteString("   - date: ISO date string \"YYYY-MM-DD\" (use today's date if not specified: " + b.Today.String() + ")\n\n")

	s.WriteString("2. \"movie\" - Movie watchlist entry\n")
	s.WriteString("   - title: movie name\n")
	s.WriteString("   - status: one of " + quotedList(record.MovieStatuses) + "\n")
	s.WriteString("   - genre: one of " + quotedList(record.MovieGenres) + "\n")
	s.WriteString("   - rating: 1-5 (only if mentioned)\n")
	s.WriteString("   - notes: any additional notes\n\n")

	s.WriteString("3. \"note\" - Quick note\n")
	s.WriteString("   - title: brief title\n")
	s.WriteString("   - content: note content\n")
	s.WriteString("   - category: one of " + quotedList(record.NoteCategories) + "\n\n")

	s.WriteString("4. \"password\" - Password entry\n")
	s.WriteString("   - site: website/app name\n")
	s.WriteString("   - username: username or email\n")
	s.WriteString("   - password: the password\n")
	s.WriteString("   - category: one of " + quotedList(record.PasswordCategories) + "\n\n")

	s.WriteString("5. \"investment\" - Stock, mutual fund, SIP or EPF holding (from text or portfolio screenshots)\n")
	s.WriteString("   - type: \"STOCK\", \"MF\", \"SIP\" or \"EPF\" (default to MF if it looks like a mutual fund)\n")
	s.WriteString("   - symbol: ticker symbol or fund name (e.g. \"AAPL\", \"HDFC Flexi Cap Direct Plan Growth\")\n")
	s.WriteString("   - name: full company/fund name\n")
	s.WriteString("   - quantity: number (total units held). If explicit units are not shown but you see \"Invested Value\" and \"Current Value\", set quantity = 1.\n")
	s.WriteString("   - buyPrice: number (average buy price or NAV). If quantity is 1 (estimated), set this to the \"Invested Value\".\n")
	s.WriteString("   - currentPrice: number (current market price or NAV). If quantity is 1 (estimated), set this to the \"Current Value\".\n")
	s.WriteString("   - totalInvested: number (total amount invested). VERY IMPORTANT.\n")
	s.WriteString("   - sipAmount: number (if it's a SIP, extract the monthly amount)\n")
	s.WriteString("   - sipDate: number (day of month for the SIP, e.g. 5)\n\n")

	s.WriteString("6. \"balance_update\" - Explicit balance declaration\n")
	s.WriteString("   - balance: number (the target balance the user wants to set)\n\n")

	s.WriteString("General rule for balance:\n")
	s.WriteString("- If the user provides a transaction AND a resulting balance (e.g. \"Salary 17k, now balance is 23k\"), categorize as \"transaction\" but include a \"forcedBalance\" field in the data object with the target value.\n\n")

	s.WriteString("Return a JSON object with:\n")
	s.WriteString("{\n")
	s.WriteString("  \"dataType\": \"transaction\" | \"movie\" | \"note\" | \"password\" | \"investment\" | \"balance_update\",\n")
	s.WriteString("  \"data\": { ... parsed fields ..., \"forcedBalance\": number  // optional, only if explicit balance mentioned },\n")
	s.WriteString("  \"message\": \"Brief confirmation message\"\n")
	s.WriteString("}\n\n")

	s.WriteString("If you can't understand the input, return:\n")
	s.WriteString("{ \"error\": true, \"message\": \"Explanation of what was unclear\" }\n\n")

	s.WriteString("Examples:\n")
	s.WriteString("- \"I received 50000 salary today\" -> transaction (income, Salary tag)\n")
	s.WriteString("- \"Salary is 17k arrived, balance is now 23k\" -> transaction (income, amount 17000, forcedBalance 23000, source \"Salary (Balance: 23k)\")\n")
	s.WriteString("- \"Spent 2500 on groceries\" -> transaction (expense, Food tag)\n")
	s.WriteString("- [Image of receipt] -> transaction: extract total amount, merchant as source, date, and categorize\n")
	s.WriteString("- \"Add Inception to my watchlist\" or \"watch Inception\" -> movie\n")
	s.WriteString("- \"Remind me to call mom\" or \"Idea: build a new app\" -> note\n")
	s.WriteString("- \"Save password for Netflix: user@email.com / pass123\" -> password\n")
	s.WriteString("- \"Bought 10 shares of Apple at 150\" -> investment (STOCK, AAPL, quantity 10, buyPrice 150)\n")
	s.WriteString("- \"Started SIP of 5000 in HDFC Flexi Cap\" -> investment (SIP, HDFC Flexi Cap, sipAmount 5000)\n")
	s.WriteString("- [Image of portfolio summary] -> investment (MF, fund name, quantity=1, buyPrice=Invested Value, currentPrice=Current Value, totalInvested=Invested Value)\n")
	s.WriteString("- \"My balance is 50000\" or \"Current wallet balance 50k\" -> balance_update (balance: 50000)\n\n")

	s.WriteString("Always respond with valid JSON only, no markdown or explanations outside the JSON.\n")

	return s.String()
}

// StatementPage returns the extraction instruction for one statement page
// image. Unlike Classification it requests a {debug_summary, transactions}
// object, and a page with no transaction rows is a valid answer.
func (b *Builder) StatementPage() string {
	var s strings.Builder

	s.WriteString("Analyze this bank statement image.\n")
	s.WriteString("Return a JSON object with:\n")
	s.WriteString("1. \"debug_summary\": a string describing exactly what you see on the page (e.g. \"A header with the bank logo, a summary table, but no list of individual transactions\" or \"A blank page\").\n")
	s.WriteString("2. \"transactions\": an array of extracted transactions.\n\n")
	s.WriteString("The columns in the image are likely: DATE | TRANSACTION DETAILS | CHEQUE/REF | DEBIT | CREDIT | BALANCE.\n\n")
	s.WriteString("For each row in the transaction table, extract:\n")
	s.WriteString("- \"date\" (YYYY-MM-DD; assume today is " + b.Today.String() + " when the year is missing)\n")
	s.WriteString("- \"source\" (clean description)\n")
	s.WriteString("- \"amount\" (number)\n")
	s.WriteString("- \"type\" (\"income\" or \"expense\")\n")
	s.WriteString("- \"tags\" (1-2 keywords)\n\n")
	s.WriteString("If there are NO transactions on this page (only summary/header), return an empty array for transactions, but explain why in \"debug_summary\".\n")
	s.WriteString("Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n")

	return s.String()
}
