package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rahulvm/dashbrain/internal/api/handlers"
	"github.com/rahulvm/dashbrain/internal/api/middleware"
	"github.com/rahulvm/dashbrain/internal/backup"
	"github.com/rahulvm/dashbrain/internal/extract"
	"github.com/rahulvm/dashbrain/internal/gateway"
	"github.com/rahulvm/dashbrain/internal/ingest"
	"github.com/rahulvm/dashbrain/internal/jobs"
	"github.com/rahulvm/dashbrain/internal/jobs/inmemory"
	"github.com/rahulvm/dashbrain/internal/ledger"
	"github.com/rahulvm/dashbrain/internal/logger"
	"github.com/rahulvm/dashbrain/internal/quotes"
	"github.com/rahulvm/dashbrain/internal/record"
	"github.com/rahulvm/dashbrain/internal/storage"
)

func main() {
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		dataPath  = flag.String("data", os.Getenv("DATA_PATH"), "path to the JSON data file (empty for in-memory)")
		model     = flag.String("model", os.Getenv("GEMINI_MODEL"), "Gemini model name")
		pageDelay = flag.Duration("page-delay", extract.DefaultPageDelay, "pause between statement page calls")
		tolerance = flag.String("tolerance", "", "balance correction threshold (default 1)")
	)
	flag.Parse()

	log := logger.New()

	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		log.Warn().Msg("No GEMINI_API_KEY configured - AI endpoints will fail")
	}

	ctx := context.Background()

	gw, err := gateway.NewGemini(ctx, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model gateway")
	}

	var store storage.Store
	if *dataPath != "" {
		fileStore, err := storage.OpenFile(*dataPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *dataPath).Msg("Failed to open data file")
		}
		store = fileStore
		log.Info().Str("path", *dataPath).Msg("Using file-backed store")
	} else {
		store = storage.NewMemory()
		log.Warn().Msg("No data path configured - records are lost on restart")
	}

	var tol decimal.Decimal
	if *tolerance != "" {
		tol, err = decimal.NewFromString(*tolerance)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid tolerance")
		}
	}

	reconciler := ledger.NewReconciler(tol)
	extractor := extract.New(gw,
		extract.WithPageDelay(*pageDelay),
		extract.WithLogger(logger.ForComponent(log, "extract")),
	)
	orchestrator := ingest.New(gw, store, reconciler, extractor, logger.ForComponent(log, "ingest"))

	// Job infrastructure for async statement extraction.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		extractJob, ok := job.(*jobs.ExtractStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", extractJob.JobID).
			Int("pages", len(extractJob.Pages)).
			Msg("Processing extraction job")

		txs, err := orchestrator.ExtractDocument(ctx, extractJob.Pages)
		if err != nil {
			log.Error().Err(err).Str("job_id", extractJob.JobID).Msg("Extraction failed")
			return err
		}

		result := make([]record.ExtractedTransaction, 0, len(txs))
		for _, tx := range txs {
			result = append(result, *tx)
		}
		extractJob.Result = result

		log.Info().
			Str("job_id", extractJob.JobID).
			Int("transactions", len(result)).
			Msg("Extraction completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	aiHandler := handlers.NewAIHandler(orchestrator, store, log)
	extractHandler := handlers.NewExtractHandler(jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	syncHandler := handlers.NewSyncHandler(backup.New(store), log)
	marketHandler := handlers.NewMarketHandler(quotes.NewYahooClient(), quotes.NewMFAPIClient(), log)
	moviesHandler := handlers.NewMoviesHandler(quotes.NewOMDbClient(os.Getenv("OMDB_API_KEY")), log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/ai", requireMethod(http.MethodPost, aiHandler.Classify))
	mux.HandleFunc("/api/finance/extract", requireMethod(http.MethodPost, extractHandler.Enqueue))

	mux.HandleFunc("/api/jobs", requireMethod(http.MethodGet, jobsHandler.ListJobs))
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/api/sync/save", requireMethod(http.MethodPost, syncHandler.Save))
	mux.HandleFunc("/api/sync/load", requireMethod(http.MethodPost, syncHandler.Load))

	mux.HandleFunc("/api/finance/quote", requireMethod(http.MethodGet, marketHandler.Quote))
	mux.HandleFunc("/api/finance/mf", requireMethod(http.MethodGet, marketHandler.MutualFund))
	mux.HandleFunc("/api/movies/search", requireMethod(http.MethodGet, moviesHandler.Search))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // extraction polling endpoints are fast, but quota retries are not
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// requireMethod rejects requests with the wrong HTTP method.
func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}
