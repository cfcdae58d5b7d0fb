// Command report_check derives one report against a live indexer and prints
// the rows, for eyeballing pool data without running the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pool-reporter/internal/config"
	"github.com/pool-reporter/internal/indexer"
	"github.com/pool-reporter/internal/report"
	"github.com/pool-reporter/internal/types"
)

func main() {
	typeFlag := flag.String("type", "balanceSheet", "Report type to derive")
	fromFlag := flag.String("from", "", "Range start (YYYY-MM-DD, optional)")
	toFlag := flag.String("to", "", "Range end (YYYY-MM-DD, optional)")
	groupByFlag := flag.String("groupBy", "day", "Bucket granularity: day, month, quarter, year")
	timeoutFlag := flag.Duration("timeout", 60*time.Second, "Overall deadline")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	filter := report.Filter{GroupBy: types.GroupBy(*groupByFlag)}
	if filter.From, err = parseDate(*fromFlag); err != nil {
		fmt.Printf("Error parsing -from: %v\n", err)
		os.Exit(1)
	}
	if filter.To, err = parseDate(*toFlag); err != nil {
		fmt.Printf("Error parsing -to: %v\n", err)
		os.Exit(1)
	}

	client := indexer.NewClient(cfg.Indexer)
	reports := report.NewReports(cfg.Pool.ID, client)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	fmt.Printf("Deriving %s for pool %s via %s\n\n", *typeFlag, cfg.Pool.ID, cfg.Indexer.URL)

	start := time.Now()
	rows, err := reports.Generate(ctx, types.ReportType(*typeFlag), filter)
	if err != nil {
		fmt.Printf("Error deriving report: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		fmt.Printf("Error rendering rows: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(out))
	fmt.Printf("\nDone in %v\n", time.Since(start).Round(time.Millisecond))
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
