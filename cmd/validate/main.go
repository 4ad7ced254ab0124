// Command validate checks a FloodGuard dataset against the data-model
// invariants: district membership, base-risk range, coordinate jitter,
// seven days of history per panchayat and reading bounds. The dataset is read
// either from a database or from a genfixture JSON file.
//
// Usage:
//
//	go run ./cmd/validate -driver sqlite -dsn floodguard.db
//	go run ./cmd/validate -fixture data/fixtures/floodguard_seed42.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/floodguard/internal/adapter/gormstore"
	"github.com/couchcryptid/floodguard/internal/domain"
)

type dataset struct {
	Panchayats []domain.Panchayat `json:"panchayats"`
	Readings   []domain.Reading   `json:"readings"`
}

func main() {
	driver := flag.String("driver", "sqlite", "database driver (sqlite or mysql)")
	dsn := flag.String("dsn", "", "database DSN")
	fixturePath := flag.String("fixture", "", "path to a genfixture JSON file")
	flag.Parse()

	if (*dsn == "") == (*fixturePath == "") {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "exactly one of -dsn or -fixture is required")
		os.Exit(1)
	}

	var (
		data dataset
		err  error
	)
	if *fixturePath != "" {
		data, err = loadFixture(*fixturePath)
	} else {
		data, err = loadDatabase(context.Background(), *driver, *dsn)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(os.Stdout, data); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, data dataset) int {
	fmt.Fprintln(w, "=== FloodGuard Data Integrity Validation ===")
	fmt.Fprintln(w)

	phases := validateAll(data)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d panchayats, %d readings\n", len(data.Panchayats), len(data.Readings))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func loadFixture(path string) (dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dataset{}, fmt.Errorf("read fixture: %w", err)
	}
	var data dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return dataset{}, fmt.Errorf("decode fixture: %w", err)
	}
	return data, nil
}

func loadDatabase(ctx context.Context, driver, dsn string) (dataset, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store, err := gormstore.Open(ctx, driver, dsn, logger)
	if err != nil {
		return dataset{}, err
	}
	defer store.Close()

	panchayats, err := store.ListPanchayats(ctx)
	if err != nil {
		return dataset{}, err
	}
	readings, err := store.ListReadings(ctx)
	if err != nil {
		return dataset{}, err
	}
	return dataset{Panchayats: panchayats, Readings: readings}, nil
}
