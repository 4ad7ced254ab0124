// Command genfixture writes a deterministic FloodGuard dataset (panchayats and
// their reading history) as JSON. It uses the same generator as the service's
// seeder, so fixtures match what a fresh database would contain for a seed.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -seed 42 \
//	  -date 2026-10-19 \
//	  -out data/fixtures/floodguard_seed42.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/seed"
)

// fixture is the file layout consumed by API and UI tests.
type fixture struct {
	Seed       uint64             `json:"seed"`
	Date       string             `json:"date"`
	Panchayats []domain.Panchayat `json:"panchayats"`
	Readings   []domain.Reading   `json:"readings"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	seedValue := flag.Uint64("seed", 0, "random seed (must be non-zero for reproducible output)")
	dateStr := flag.String("date", "", "last history date, YYYY-MM-DD (default: today UTC)")
	catalogPath := flag.String("catalog", "", "optional panchayat catalog CSV (default: built-in)")
	out := flag.String("out", "", "output path for the JSON fixture")
	flag.Parse()

	if *seedValue == 0 || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -seed, -out")
	}

	clock := clockwork.NewRealClock()
	if *dateStr != "" {
		day, err := time.Parse(domain.DateLayout, *dateStr)
		if err != nil {
			return fmt.Errorf("parse -date: %w", err)
		}
		clock = clockwork.NewFakeClockAt(day)
	}

	catalog, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}

	rng := seed.NewRand(*seedValue)
	panchayats, skipped := seed.BuildPanchayats(catalog, rng)
	for i := range panchayats {
		panchayats[i].ID = int64(i + 1)
	}
	for _, e := range skipped {
		log.Printf("skipped catalog row %s (%s): unknown district", e.Code, e.Name)
	}

	today := clock.Now().UTC()
	readings := seed.BuildReadings(panchayats, today, seed.HistoryDays, rng)
	for i := range readings {
		readings[i].ID = int64(i + 1)
	}

	log.Printf("panchayats: %d, skipped: %d, readings: %d", len(panchayats), len(skipped), len(readings))

	f := fixture{
		Seed:       *seedValue,
		Date:       today.Format(domain.DateLayout),
		Panchayats: panchayats,
		Readings:   readings,
	}
	if err := writeJSON(*out, f); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(f)
	return nil
}

func loadCatalog(path string) ([]domain.CatalogEntry, error) {
	if path == "" {
		return domain.Catalog(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return domain.ParseCatalog(file)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type districtCount struct {
	district string
	count    int
}

// printStats reports latest-date risk levels, the numbers test assertions depend on.
func printStats(f fixture) {
	byID := make(map[int64]domain.Panchayat, len(f.Panchayats))
	for _, p := range f.Panchayats {
		byID[p.ID] = p
	}

	levels := map[domain.RiskLevel]int{}
	high := map[string]int{}
	for _, r := range f.Readings {
		if r.Date != f.Date {
			continue
		}
		level := domain.ClassifyRisk(r.RainfallMM, r.RiverDischarge)
		levels[level]++
		if level == domain.RiskHigh {
			high[byID[r.PanchayatID].District]++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Latest date: %s\n", f.Date)
	fmt.Printf("By level: high=%d, medium=%d, low=%d\n",
		levels[domain.RiskHigh], levels[domain.RiskMedium], levels[domain.RiskLow])

	counts := make([]districtCount, 0, len(high))
	for d, c := range high {
		counts = append(counts, districtCount{d, c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].district < counts[j].district
	})
	fmt.Println("High-risk panchayats by district:")
	for _, c := range counts {
		fmt.Printf("  %-20s %d\n", c.district, c.count)
	}
}
