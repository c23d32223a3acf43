package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gnss-base/internal/config"
	"gnss-base/internal/geodesy"
)

func main() {
	var configPath string
	var summaryPath string
	var recordSummaryPath string
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.StringVar(&summaryPath, "summary", "", "Print a summary of a solution log and exit")
	flag.StringVar(&recordSummaryPath, "record-summary", "", "Print a summary of a recorded pose database and exit")
	flag.Parse()

	if summaryPath != "" {
		if err := printSolutionSummary(os.Stdout, summaryPath); err != nil {
			log.Fatalf("summary failed: %v", err)
		}
		return
	}
	if recordSummaryPath != "" {
		if err := printRecordSummary(context.Background(), os.Stdout, recordSummaryPath); err != nil {
			log.Fatalf("record summary failed: %v", err)
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("gnss-utm starting")
	if err := run(ctx, cfg, geodesy.Factory{}, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("gnss-utm failed: %v", err)
	}
	log.Printf("gnss-utm stopping")
}
