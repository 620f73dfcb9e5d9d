// Package storage is the local key-value collaborator standing in for the
// dashboard's browser localStorage. Values are raw JSON text; readers and
// writers go through typed helpers for the well-known keys.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahulvm/dashbrain/internal/record"
)

// Well-known keys. The core only ever touches these; unrelated keys are
// never rewritten.
const (
	KeyTransactions = "transactions"
	KeyMovies       = "movies"
	KeyNotes        = "notes"
	KeyPasswords    = "passwords"
	KeyStocks       = "stocks"
)

// Store is the key-value persistence boundary. Implementations must be safe
// for concurrent use; the core treats the store as a synchronously
// read-and-written resource.
type Store interface {
	// Get returns the JSON text stored under key, or ok=false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores JSON text under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Transactions reads the ledger. An absent key is an empty ledger.
func Transactions(ctx context.Context, s Store) ([]*record.Transaction, error) {
	raw, ok, err := s.Get(ctx, KeyTransactions)
	if err != nil {
		return nil, fmt.Errorf("Transactions: %w", err)
	}
	if !ok {
		return []*record.Transaction{}, nil
	}

	var txs []*record.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		return nil, fmt.Errorf("Transactions: decode ledger: %w", err)
	}
	return txs, nil
}

// SaveTransactions replaces the ledger.
func SaveTransactions(ctx context.Context, s Store, txs []*record.Transaction) error {
	raw, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("SaveTransactions: encode ledger: %w", err)
	}
	if err := s.Set(ctx, KeyTransactions, string(raw)); err != nil {
		return fmt.Errorf("SaveTransactions: %w", err)
	}
	return nil
}

// Prepend inserts item at the head of the JSON array stored under key,
// preserving the dashboard's most-recent-first ordering.
func Prepend(ctx context.Context, s Store, key string, item interface{}) error {
	var items []json.RawMessage

	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("Prepend: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return fmt.Errorf("Prepend: decode %q: %w", key, err)
		}
	}

	head, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("Prepend: encode item: %w", err)
	}

	items = append([]json.RawMessage{head}, items...)
	out, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("Prepend: encode %q: %w", key, err)
	}
	if err := s.Set(ctx, key, string(out)); err != nil {
		return fmt.Errorf("Prepend: %w", err)
	}
	return nil
}

// KeyForKind maps a record kind to its storage key. Balance updates have no
// key of their own: they only ever produce ledger corrections.
func KeyForKind(kind record.Kind) (string, bool) {
	switch kind {
	case record.KindTransaction:
		return KeyTransactions, true
	case record.KindMovie:
		return KeyMovies, true
	case record.KindNote:
		return KeyNotes, true
	case record.KindPassword:
		return KeyPasswords, true
	case record.KindInvestment:
		return KeyStocks, true
	default:
		return "", false
	}
}
