// Command parsejob extracts a single posting and prints it as JSON.
//
//	parsejob -url https://example.com/jobs/42
//	parsejob -file saved.html -source https://www.linkedin.com/jobs/view/1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/baxromumarov/job-tracker/internal/config"
	"github.com/baxromumarov/job-tracker/internal/httpx"
	"github.com/baxromumarov/job-tracker/internal/scraper"
)

func main() {
	rawURL := flag.String("url", "", "Posting URL to fetch")
	file := flag.String("file", "", "Read HTML from a local file instead of fetching")
	source := flag.String("source", "", "Source URL to assume when reading from -file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var posting scraper.Posting
	switch {
	case *file != "":
		b, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		posting, err = scraper.Extract(string(b), *source)
		if err != nil {
			log.Fatalf("Failed to parse page: %v", err)
		}
	case *rawURL != "":
		parser := scraper.NewParser(httpx.NewCollyFetcher(cfg.FetcherOptions()))
		posting, err = parser.Parse(context.Background(), *rawURL)
		if err != nil {
			log.Fatalf("Failed to parse %s: %v", *rawURL, err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posting); err != nil {
		log.Fatalf("Failed to encode posting: %v", err)
	}
}
