// Command classify runs the AI ingestion pipeline from the terminal: free
// text or an image in, a typed dashboard record out. With -extract it treats
// the image arguments as statement pages and runs multi-page extraction.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rahulvm/dashbrain/internal/extract"
	"github.com/rahulvm/dashbrain/internal/gateway"
	"github.com/rahulvm/dashbrain/internal/ingest"
	"github.com/rahulvm/dashbrain/internal/ledger"
	"github.com/rahulvm/dashbrain/internal/logger"
	"github.com/rahulvm/dashbrain/internal/storage"
)

func main() {
	var (
		text        = flag.String("text", "", "free-form text to classify")
		model       = flag.String("model", os.Getenv("GEMINI_MODEL"), "Gemini model name")
		dataPath    = flag.String("data", os.Getenv("DATA_PATH"), "path to the JSON data file (empty for in-memory)")
		tolerance   = flag.String("tolerance", "", "balance correction threshold (default 1)")
		extractMode = flag.Bool("extract", false, "treat image arguments as statement pages")
	)
	flag.Parse()

	log := logger.New()

	images := make([]string, 0, flag.NArg())
	for _, path := range flag.Args() {
		uri, err := readImage(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to read image")
		}
		images = append(images, uri)
	}

	if *text == "" && len(images) == 0 {
		fmt.Fprintln(os.Stderr, "usage: classify [-extract] [-text \"...\"] [image.jpg ...]")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

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
	} else {
		store = storage.NewMemory()
	}

	var tol decimal.Decimal
	if *tolerance != "" {
		tol, err = decimal.NewFromString(*tolerance)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid tolerance")
		}
	}

	extractor := extract.New(gw, extract.WithLogger(logger.ForComponent(log, "extract")))
	orch := ingest.New(gw, store, ledger.NewReconciler(tol), extractor, log)

	if *extractMode {
		runExtract(ctx, orch, images)
		return
	}

	image := ""
	if len(images) > 0 {
		image = images[0]
	}

	result, err := orch.Classify(ctx, *text, image)
	if err != nil {
		log.Fatal().Err(err).Msg("Classification failed")
	}

	out := map[string]interface{}{
		"dataType": result.Record.Kind,
		"data":     result.Record.Data(),
	}
	if result.Message != "" {
		out["message"] = result.Message
	}
	if result.Correction != nil {
		out["correction"] = result.Correction
	}
	printJSON(out)
}

func runExtract(ctx context.Context, orch *ingest.Orchestrator, pages []string) {
	if len(pages) == 0 {
		fmt.Fprintln(os.Stderr, "extract mode needs at least one page image")
		os.Exit(1)
	}

	txs, err := orch.ExtractDocument(ctx, pages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extraction failed: %v\n", err)
		os.Exit(1)
	}
	printJSON(map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// readImage loads a file and wraps it as a base64 data URI for the model.
func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("readImage: %w", err)
	}
	mime := "image/jpeg"
	if len(data) > 4 && string(data[1:4]) == "PNG" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
}
