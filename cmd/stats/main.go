package main

import (
	"encoding/json"
	"flag"
	"os"

	"podcast-rag/pkg/config"
	"podcast-rag/pkg/logger"
	"podcast-rag/pkg/stats"
	"podcast-rag/pkg/store"
)

func main() {
	var (
		exportJSON = flag.String("export", "", "Write the report as JSON to this path")
		exportXLSX = flag.String("xlsx", "", "Write the report as a spreadsheet to this path")
	)
	flag.Parse()

	log := logger.New()
	cfg := config.Load()

	records := store.New(cfg.TranscriptsPath, log).Load()
	if len(records) == 0 {
		log.WithField("path", cfg.TranscriptsPath).Info("no episodes found")
		return
	}

	report := stats.Compute(records)
	report.Render(os.Stdout)

	if *exportJSON != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		if err := os.WriteFile(*exportJSON, data, 0o644); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.WithField("path", *exportJSON).Info("report exported")
	}

	if *exportXLSX != "" {
		if err := report.ExportXLSX(*exportXLSX); err != nil {
			log.Fatalf("Failed to write spreadsheet: %v", err)
		}
		log.WithField("path", *exportXLSX).Info("spreadsheet exported")
	}
}
