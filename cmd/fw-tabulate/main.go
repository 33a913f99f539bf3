package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pennlinc/fw-tabulate/internal/export"
)

func main() {
	var (
		project   string
		outputDir string
		date      string
		tabConfig string
		rps       float64
	)

	flag.StringVar(&project, "p", "", "project label on Flywheel (required)")
	flag.StringVar(&project, "project", "", "project label on Flywheel (required)")
	flag.StringVar(&outputDir, "o", ".", "directory to write the CSV into")
	flag.StringVar(&outputDir, "output", ".", "directory to write the CSV into")
	flag.StringVar(&date, "t", "", "only include scans created on or after this date (YYYY-MM-DD)")
	flag.StringVar(&date, "date", "", "only include scans created on or after this date (YYYY-MM-DD)")
	flag.StringVar(&tabConfig, "tabconfig", "", "path to YAML tabulation config (file types, extra info columns)")
	flag.Float64Var(&rps, "rps", 0, "max Flywheel API requests per second (0 = default)")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	if project == "" {
		flag.Usage()
		os.Exit(2)
	}

	var minDate time.Time
	if date != "" {
		var err error
		minDate, err = time.Parse("2006-01-02", date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid date %q: expected YYYY-MM-DD\n", date)
			os.Exit(2)
		}
	}

	cfg := export.Config{
		Project:       project,
		OutputDir:     outputDir,
		MinDate:       minDate,
		TabConfigPath: tabConfig,
		RPS:           rps,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := export.Run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(1)
		}
		log.Fatal(err)
	}
}
