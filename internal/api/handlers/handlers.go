// Package handlers contains the HTTP handlers for the dashboard API: the AI
// classification endpoint, async statement extraction, encrypted sync, and
// the thin market-data proxies.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rahulvm/dashbrain/internal/api/middleware"
	"github.com/rahulvm/dashbrain/internal/backup"
	"github.com/rahulvm/dashbrain/internal/gateway"
	"github.com/rahulvm/dashbrain/internal/ingest"
	"github.com/rahulvm/dashbrain/internal/jobs"
	"github.com/rahulvm/dashbrain/internal/parser"
	"github.com/rahulvm/dashbrain/internal/quotes"
	"github.com/rahulvm/dashbrain/internal/record"
	"github.com/rahulvm/dashbrain/internal/storage"
)

// AIHandler handles the assistant ingestion endpoints.
type AIHandler struct {
	orch  *ingest.Orchestrator
	store storage.Store
	log   zerolog.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(orch *ingest.Orchestrator, store storage.Store, log zerolog.Logger) *AIHandler {
	return &AIHandler{orch: orch, store: store, log: log}
}

// classifyResponse mirrors the envelope the dashboard frontend consumes.
type classifyResponse struct {
	DataType   string              `json:"dataType,omitempty"`
	Data       interface{}         `json:"data,omitempty"`
	Message    string              `json:"message,omitempty"`
	Correction *record.Transaction `json:"correction,omitempty"`
	Error      bool                `json:"error,omitempty"`
}

// Classify handles POST /api/ai. The body carries free-form text and/or a
// base64 image; the response is the typed record the model produced.
//
// Unusable model output is a 200 with an error envelope rather than a 5xx:
// the frontend shows the message inline and lets the user rephrase.
func (h *AIHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input string `json:"input"`
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	result, err := h.orch.Classify(ctx, req.Input, req.Image)
	if err != nil {
		h.writeClassifyError(w, err)
		return
	}

	// Kinds the orchestrator does not commit itself are persisted here,
	// newest first, under the kind's collection key.
	if key, ok := storage.KeyForKind(result.Record.Kind); ok && result.Record.Kind != record.KindTransaction {
		if err := storage.Prepend(ctx, h.store, key, result.Record.Data()); err != nil {
			h.log.Error().Err(err).Str("kind", string(result.Record.Kind)).Msg("Failed to persist record")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to save record")
			return
		}
	}

	middleware.WriteJSON(w, http.StatusOK, classifyResponse{
		DataType:   string(result.Record.Kind),
		Data:       result.Record.Data(),
		Message:    result.Message,
		Correction: result.Correction,
	})
}

func (h *AIHandler) writeClassifyError(w http.ResponseWriter, err error) {
	var (
		parseErr      *parser.ParseError
		classifyErr   *parser.ClassificationError
		validationErr *record.ValidationError
		quotaErr      *gateway.ProviderQuotaError
		providerErr   *gateway.ProviderError
	)

	switch {
	case errors.Is(err, ingest.ErrInvalidInput):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &classifyErr):
		middleware.WriteJSON(w, http.StatusOK, classifyResponse{Error: true, Message: classifyErr.Message})
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		middleware.WriteJSON(w, http.StatusOK, classifyResponse{
			Error:   true,
			Message: "Sorry, I couldn't understand that. Please try rephrasing.",
		})
	case errors.As(err, &quotaErr):
		h.log.Warn().Err(err).Msg("Model quota exhausted")
		middleware.WriteError(w, http.StatusTooManyRequests, "The AI service is over its quota. Please try again later.")
	case errors.As(err, &providerErr):
		h.log.Error().Err(err).Msg("Model call failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process request. Please try again.")
	default:
		h.log.Error().Err(err).Msg("Classification failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process request. Please try again.")
	}
}

// ExtractHandler enqueues multi-page statement extraction jobs.
type ExtractHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewExtractHandler creates a new extraction handler.
func NewExtractHandler(publisher jobs.Publisher, log zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{publisher: publisher, log: log}
}

// Enqueue handles POST /api/finance/extract. Pages are base64 data URIs in
// document order; the response carries a job ID to poll.
func (h *ExtractHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pages []string `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Pages) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "At least one page is required")
		return
	}

	job := &jobs.ExtractStatementJob{Pages: req.Pages}
	if err := h.publisher.PublishExtractStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Int("pages", len(req.Pages)).Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// JobsHandler exposes job status for polling.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		filter.Offset = offset
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// SyncHandler handles PIN-keyed backup save and load.
type SyncHandler struct {
	svc *backup.Service
	log zerolog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(svc *backup.Service, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{svc: svc, log: log}
}

// Save handles POST /api/sync/save. Data arrives already encrypted; the
// server stores the opaque blob under the PIN's slot.
func (h *SyncHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN  string `json:"pin"`
		Data string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.Save(r.Context(), req.PIN, req.Data); err != nil {
		if errors.Is(err, backup.ErrInvalidPIN) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to save backup")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save backup")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Load handles POST /api/sync/load.
func (h *SyncHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	blob, ok, err := h.svc.Load(r.Context(), req.PIN)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidPIN) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to load backup")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load backup")
		return
	}
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "No backup found for this PIN")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"data": blob})
}

// MarketHandler proxies stock quote and mutual fund lookups so the frontend
// never talks to the providers directly.
type MarketHandler struct {
	stocks *quotes.YahooClient
	funds  *quotes.MFAPIClient
	log    zerolog.Logger
}

// NewMarketHandler creates a new market data handler.
func NewMarketHandler(stocks *quotes.YahooClient, funds *quotes.MFAPIClient, log zerolog.Logger) *MarketHandler {
	return &MarketHandler{stocks: stocks, funds: funds, log: log}
}

// Quote handles GET /api/finance/quote?symbol=AAPL.
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		middleware.WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	quote, err := h.stocks.Quote(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Quote lookup failed")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch quote")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, quote)
}

// MutualFund handles GET /api/finance/mf?q=hdfc for search and
// GET /api/finance/mf?code=100001 for the latest NAV.
func (h *MarketHandler) MutualFund(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if code := query.Get("code"); code != "" {
		nav, err := h.funds.LatestNAV(r.Context(), code)
		if err != nil {
			h.log.Error().Err(err).Str("code", code).Msg("NAV lookup failed")
			middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch NAV")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, nav)
		return
	}

	q := query.Get("q")
	if q == "" {
		middleware.WriteError(w, http.StatusBadRequest, "q or code is required")
		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	schemes, err := h.funds.Search(r.Context(), q, limit)
	if err != nil {
		h.log.Error().Err(err).Str("query", q).Msg("Fund search failed")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to search funds")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"schemes": schemes,
		"count":   len(schemes),
	})
}

// MoviesHandler proxies movie metadata lookups.
type MoviesHandler struct {
	client *quotes.OMDbClient
	log    zerolog.Logger
}

// NewMoviesHandler creates a new movies handler.
func NewMoviesHandler(client *quotes.OMDbClient, log zerolog.Logger) *MoviesHandler {
	return &MoviesHandler{client: client, log: log}
}

// Search handles GET /api/movies/search?q=inception for title search and
// GET /api/movies/search?id=tt1375666 for full details.
func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if id := query.Get("id"); id != "" {
		movie, err := h.client.Detail(r.Context(), id)
		if err != nil {
			h.log.Error().Err(err).Str("imdb_id", id).Msg("Movie detail lookup failed")
			middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch movie details")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, movie)
		return
	}

	q := query.Get("q")
	if q == "" {
		middleware.WriteError(w, http.StatusBadRequest, "q or id is required")
		return
	}

	results, err := h.client.Search(r.Context(), q)
	if err != nil {
		h.log.Error().Err(err).Str("query", q).Msg("Movie search failed")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to search movies")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
