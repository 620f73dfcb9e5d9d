// Package extract runs multi-page statement extraction: one model call per
// page image, paced to respect the provider's rate limit, merged into a
// single transaction list for review.
package extract

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/rahulvm/dashbrain/internal/gateway"
	"github.com/rahulvm/dashbrain/internal/parser"
	"github.com/rahulvm/dashbrain/internal/prompt"
	"github.com/rahulvm/dashbrain/internal/record"
)

// DefaultPageDelay is the pause before every model call after the first.
// The throttling is a correctness requirement against the provider's rate
// limit, not an optimization; pages are never extracted concurrently.
const DefaultPageDelay = 3 * time.Second

// Extractor extracts transactions from statement pages sequentially.
type Extractor struct {
	gw    gateway.Gateway
	delay time.Duration
	log   zerolog.Logger

	// sleep is swapped out in tests to observe pacing without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPageDelay overrides the inter-page delay.
func WithPageDelay(d time.Duration) Option {
	return func(e *Extractor) { e.delay = d }
}

// WithLogger sets the extractor's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Extractor) { e.log = log }
}

// New creates an Extractor on top of a model gateway.
func New(gw gateway.Gateway, opts ...Option) *Extractor {
	e := &Extractor{
		gw:    gw,
		delay: DefaultPageDelay,
		log:   zerolog.Nop(),
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExtractDocument processes page images (base64 data URIs) strictly in order,
// pausing before every call after the first, and returns the merged
// transaction list sorted by date descending (stable within a date).
//
// A page whose reply fails to parse contributes zero transactions; one bad
// page never aborts the batch. On context cancellation the pages extracted so
// far are merged and returned along with the context error.
func (e *Extractor) ExtractDocument(ctx context.Context, pages []string) ([]*record.ExtractedTransaction, error) {
	today := civil.DateOf(time.Now())
	pageInstruction := prompt.New(today).StatementPage()

	var all []*record.ExtractedTransaction

	for i, page := range pages {
		if i > 0 {
			e.log.Debug().Dur("delay", e.delay).Int("page", i+1).Msg("Pausing before next page to respect rate limits")
			if err := e.sleep(ctx, e.delay); err != nil {
				return merge(all), err
			}
		}

		raw, err := e.gw.Generate(ctx, "", pageInstruction, page)
		if err != nil {
			if ctx.Err() != nil {
				return merge(all), ctx.Err()
			}
			e.log.Warn().Err(err).Int("page", i+1).Msg("Page extraction call failed, continuing with remaining pages")
			continue
		}

		result, err := parser.ParseStatementPage(raw, today)
		if err != nil {
			e.log.Warn().Err(err).Int("page", i+1).Msg("Page reply did not parse, treating as empty")
			continue
		}

		e.log.Info().
			Int("page", i+1).
			Int("transactions", len(result.Transactions)).
			Str("summary", result.DebugSummary).
			Msg("Page extracted")

		all = append(all, result.Transactions...)
	}

	return merge(all), nil
}

// merge sorts the combined rows by date descending, keeping the original
// order for rows sharing a date.
func merge(txs []*record.ExtractedTransaction) []*record.ExtractedTransaction {
	if txs == nil {
		txs = []*record.ExtractedTransaction{}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
	return txs
}
