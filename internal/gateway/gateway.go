// Package gateway is the external language-model boundary. The core calls
// through it but does not implement the provider; Gemini is the concrete
// backend, and tests substitute their own.
package gateway

import (
	"context"
	"fmt"
)

// Gateway sends a system instruction plus optional user text and image to a
// language model and returns the raw text reply. At least one of text or
// imageDataURI is expected; the orchestrator enforces that before calling.
type Gateway interface {
	Generate(ctx context.Context, system, text, imageDataURI string) (string, error)
}

// ProviderError wraps a network or auth failure reaching the model. It is
// surfaced to the caller verbatim, never retried automatically.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ProviderQuotaError indicates the provider rejected the call for rate or
// quota reasons. The document extractor's fixed pacing is the only defense;
// there is no automatic retry.
type ProviderQuotaError struct {
	Err error
}

func (e *ProviderQuotaError) Error() string {
	return fmt.Sprintf("model provider quota exceeded: %v", e.Err)
}

func (e *ProviderQuotaError) Unwrap() error { return e.Err }
