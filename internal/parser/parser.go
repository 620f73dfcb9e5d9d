// Package parser converts raw model replies into typed records. Models
// routinely ignore "no markdown" instructions, so parsing first strips code
// fences and, failing that, extracts the outermost JSON object from the text.
package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/rahulvm/dashbrain/internal/record"
)

// ParseError means the reply is not valid structured data even after fence
// stripping and brace extraction.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "malformed model output: " + e.Reason
}

// ClassificationError means the model explicitly reported it could not
// understand the input, with its own explanation.
type ClassificationError struct {
	Message string
}

func (e *ClassificationError) Error() string {
	return e.Message
}

// envelope is the expected classification reply shape.
type envelope struct {
	DataType string                 `json:"dataType"`
	Data     map[string]interface{} `json:"data"`
	Message  string                 `json:"message"`
	Error    bool                   `json:"error"`
}

// CleanModelJSON strips markdown code fences around a JSON body and, as a
// last resort, keeps only the outermost {...} span when prose surrounds it.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Already-valid JSON is returned untouched. A literal ``` inside a JSON
	// string must not trigger fence stripping.
	if json.Valid([]byte(s)) {
		return s
	}

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If direct parsing would still see junk around the JSON object, keep only
	// from the first '{' to the last '}'.
	if !json.Valid([]byte(s)) {
		if start := strings.Index(s, "{"); start != -1 {
			if end := strings.LastIndex(s, "}"); end > start {
				s = strings.TrimSpace(s[start : end+1])
			}
		}
	}

	return s
}

// ParseClassification converts a raw classification reply into a Record plus
// the model's confirmation message. today is the record-date fallback.
func ParseClassification(raw string, today civil.Date) (*record.Record, string, error) {
	clean := CleanModelJSON(raw)

	var env envelope
	if err := json.Unmarshal([]byte(clean), &env); err != nil {
		return nil, "", &ParseError{Reason: err.Error()}
	}

	if env.Error {
		msg := env.Message
		if msg == "" {
			msg = "The input could not be understood."
		}
		return nil, "", &ClassificationError{Message: msg}
	}

	if env.DataType == "" {
		return nil, "", &ParseError{Reason: "reply has no dataType"}
	}
	if env.Data == nil {
		return nil, "", &ParseError{Reason: "reply has no data object"}
	}

	rec, err := record.Validate(record.Kind(env.DataType), env.Data, today)
	if err != nil {
		return nil, "", err
	}
	return rec, env.Message, nil
}

// PageResult is one statement page's extraction outcome. An empty Transactions
// list is not an error; DebugSummary explains what the model saw instead.
type PageResult struct {
	DebugSummary string
	Transactions []*record.ExtractedTransaction
}

// pageEnvelope is the expected statement-page reply shape.
type pageEnvelope struct {
	DebugSummary string                   `json:"debug_summary"`
	Transactions []map[string]interface{} `json:"transactions"`
}

// ParseStatementPage converts a raw statement-page reply into a PageResult.
// Rows that cannot be normalized are dropped, never fatal.
func ParseStatementPage(raw string, today civil.Date) (*PageResult, error) {
	clean := CleanModelJSON(raw)

	var env pageEnvelope
	if err := json.Unmarshal([]byte(clean), &env); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	result := &PageResult{
		DebugSummary: env.DebugSummary,
		Transactions: make([]*record.ExtractedTransaction, 0, len(env.Transactions)),
	}
	for i, row := range env.Transactions {
		tx, err := record.ValidateExtractedTransaction(row, today)
		if err != nil {
			// ValidateExtractedTransaction degrades instead of failing, so
			// this branch is a safety net only.
			return nil, fmt.Errorf("ParseStatementPage: row %d: %w", i, err)
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}
