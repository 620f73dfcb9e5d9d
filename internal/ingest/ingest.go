// Package ingest is the top-level façade over the ingestion pipeline:
// classification of free-form input into typed records, balance
// reconciliation, and multi-page document extraction.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/rahulvm/dashbrain/internal/extract"
	"github.com/rahulvm/dashbrain/internal/gateway"
	"github.com/rahulvm/dashbrain/internal/ledger"
	"github.com/rahulvm/dashbrain/internal/parser"
	"github.com/rahulvm/dashbrain/internal/prompt"
	"github.com/rahulvm/dashbrain/internal/record"
	"github.com/rahulvm/dashbrain/internal/storage"
)

// ErrInvalidInput means neither text nor image was supplied. No model call
// is made in that case.
var ErrInvalidInput = errors.New("please provide some text or an image")

// Orchestrator wires the gateway, parser, reconciler, extractor and storage
// together. It is stateless across calls; all durable state lives in the
// store.
type Orchestrator struct {
	gw        gateway.Gateway
	store     storage.Store
	rec       *ledger.Reconciler
	extractor *extract.Extractor
	log       zerolog.Logger

	// today is swapped out in tests for deterministic dates.
	today func() civil.Date
}

// New creates an Orchestrator.
func New(gw gateway.Gateway, store storage.Store, rec *ledger.Reconciler, extractor *extract.Extractor, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		gw:        gw,
		store:     store,
		rec:       rec,
		extractor: extractor,
		log:       log,
		today:     func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

// ClassifyResult is the outcome of one classification call. When the input
// carried a balance target, Correction holds the synthetic ledger entry that
// was generated (already persisted alongside the primary record).
type ClassifyResult struct {
	Record     *record.Record
	Correction *record.Transaction
	Message    string
}

// Classify parses free-form text and/or an image into a typed record.
// Transactions and balance updates are committed to the ledger here,
// including any correction the reconciler emits; records of other kinds are
// returned for the caller to persist.
//
// Error taxonomy: ErrInvalidInput (no input, no model call),
// *gateway.ProviderError / *gateway.ProviderQuotaError (surfaced verbatim),
// *parser.ParseError, *parser.ClassificationError, *record.ValidationError.
func (o *Orchestrator) Classify(ctx context.Context, text, imageDataURI string) (*ClassifyResult, error) {
	if text == "" && imageDataURI == "" {
		return nil, ErrInvalidInput
	}

	today := o.today()
	system := prompt.New(today).Classification()

	raw, err := o.gw.Generate(ctx, system, text, imageDataURI)
	if err != nil {
		return nil, err
	}

	rec, message, err := parser.ParseClassification(raw, today)
	if err != nil {
		return nil, err
	}

	result := &ClassifyResult{Record: rec, Message: message}

	switch rec.Kind {
	case record.KindTransaction:
		if err := o.commitTransaction(ctx, rec.Transaction, result); err != nil {
			return nil, err
		}
	case record.KindBalanceUpdate:
		if err := o.applyBalanceUpdate(ctx, rec.BalanceUpdate, result); err != nil {
			return nil, err
		}
	}

	o.log.Info().
		Str("kind", string(rec.Kind)).
		Bool("correction", result.Correction != nil).
		Msg("Input classified")

	return result, nil
}

// commitTransaction writes a new transaction to the ledger, reconciling
// against its forced balance when one is attached.
func (o *Orchestrator) commitTransaction(ctx context.Context, tx *record.Transaction, result *ClassifyResult) error {
	txs, err := storage.Transactions(ctx, o.store)
	if err != nil {
		return fmt.Errorf("commitTransaction: %w", err)
	}

	updated, correction := o.rec.CommitWithForcedBalance(txs, tx)
	if err := storage.SaveTransactions(ctx, o.store, updated); err != nil {
		return fmt.Errorf("commitTransaction: %w", err)
	}

	result.Correction = correction
	return nil
}

// applyBalanceUpdate reconciles the ledger against an explicit target. When
// the difference is within tolerance nothing is written.
func (o *Orchestrator) applyBalanceUpdate(ctx context.Context, b *record.BalanceUpdate, result *ClassifyResult) error {
	txs, err := storage.Transactions(ctx, o.store)
	if err != nil {
		return fmt.Errorf("applyBalanceUpdate: %w", err)
	}

	correction := o.rec.Reconcile(txs, b.TargetBalance)
	if correction == nil {
		return nil
	}

	updated := append([]*record.Transaction{correction}, txs...)
	if err := storage.SaveTransactions(ctx, o.store, updated); err != nil {
		return fmt.Errorf("applyBalanceUpdate: %w", err)
	}

	result.Correction = correction
	return nil
}

// ExtractDocument runs multi-page statement extraction. See extract.Extractor
// for pacing and failure semantics; the extracted rows are returned for
// review, not persisted.
func (o *Orchestrator) ExtractDocument(ctx context.Context, pages []string) ([]*record.ExtractedTransaction, error) {
	return o.extractor.ExtractDocument(ctx, pages)
}
