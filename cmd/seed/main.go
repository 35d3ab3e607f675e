// Command seed loads crop condition data into the knowledge base from a CSV
// file and stores a current weather document for every state it encounters.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cropweather-ai/cropweather/internal/config"
	"github.com/cropweather-ai/cropweather/internal/database"
	"github.com/cropweather-ai/cropweather/internal/knowledge"
	"github.com/cropweather-ai/cropweather/internal/weather"
)

func main() {
	csvPath := flag.String("csv", "", "path to the crop conditions CSV")
	skipWeather := flag.Bool("skip-weather", false, "do not fetch weather documents")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -csv <file> [-skip-weather]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	store := knowledge.NewPostgresStore(pool, knowledge.NewHTTPEmbedder(cfg.Embedding))

	docs, states, err := loadCropDocuments(*csvPath)
	if err != nil {
		slog.Error("reading crop data", "csv", *csvPath, "error", err)
		os.Exit(1)
	}

	if err := store.Add(ctx, docs); err != nil {
		slog.Error("indexing crop documents", "error", err)
		os.Exit(1)
	}
	slog.Info("crop documents indexed", "count", len(docs))

	if *skipWeather {
		return
	}

	weatherClient := weather.NewClient(cfg.Weather)
	indexed := 0
	for state := range states {
		reading, err := weatherClient.Current(ctx, state)
		if err != nil {
			slog.Warn("skipping weather document", "location", state, "error", err)
			continue
		}
		doc := knowledge.Document{
			ID:       "weather_" + state,
			Content:  weather.Summary(reading),
			Metadata: weather.Metadata(reading),
		}
		if err := store.Add(ctx, []knowledge.Document{doc}); err != nil {
			slog.Warn("indexing weather document", "location", state, "error", err)
			continue
		}
		indexed++
	}
	slog.Info("weather documents indexed", "count", indexed)
}

// loadCropDocuments turns each CSV row into one searchable document. The
// header row names the columns; a "state" column feeds the weather pass.
func loadCropDocuments(path string) ([]knowledge.Document, map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	var docs []knowledge.Document
	states := map[string]bool{}
	for i, row := range rows[1:] {
		fields := make([]string, 0, len(row))
		metadata := make(map[string]string, len(row))
		for j, val := range row {
			if j >= len(header) {
				break
			}
			val = strings.TrimSpace(val)
			if val == "" {
				val = "NA"
			}
			fields = append(fields, fmt.Sprintf("%s: %s", header[j], val))
			metadata[header[j]] = val
			if header[j] == "state" && val != "NA" {
				states[val] = true
			}
		}
		docs = append(docs, knowledge.Document{
			ID:       fmt.Sprintf("%s_row%d", strings.TrimSuffix(filepath.Base(path), ".csv"), i+1),
			Content:  strings.Join(fields, " | "),
			Metadata: metadata,
		})
	}
	return docs, states, nil
}
