// Package backup implements the PIN-keyed cloud backup: the whole dashboard
// state as one opaque blob per PIN. The PIN is a convenience key, not a
// security boundary; users are told as much in the settings screen.
package backup

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahulvm/dashbrain/internal/storage"
)

// MinPINLength is the minimum accepted PIN length.
const MinPINLength = 4

// ErrInvalidPIN means the PIN is shorter than MinPINLength.
var ErrInvalidPIN = errors.New("PIN must be at least 4 characters")

// Service stores and retrieves backup blobs through a key-value store.
type Service struct {
	store storage.Store
}

// New creates a backup Service.
func New(store storage.Store) *Service {
	return &Service{store: store}
}

func key(pin string) string {
	return "user_data_" + pin
}

// Save stores blob (opaque JSON text) under the PIN, replacing any previous
// backup for that PIN.
func (s *Service) Save(ctx context.Context, pin, blob string) error {
	if len(pin) < MinPINLength {
		return ErrInvalidPIN
	}
	if blob == "" {
		return errors.New("no data provided")
	}
	if err := s.store.Set(ctx, key(pin), blob); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// Load returns the blob stored under the PIN, or ok=false when no backup
// exists for it.
func (s *Service) Load(ctx context.Context, pin string) (blob string, ok bool, err error) {
	if len(pin) < MinPINLength {
		return "", false, ErrInvalidPIN
	}
	blob, ok, err = s.store.Get(ctx, key(pin))
	if err != nil {
		return "", false, fmt.Errorf("Load: %w", err)
	}
	return blob, ok, nil
}
