package seed

import (
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/floodguard/internal/domain"
)

// Generation bounds. Coordinates are jittered by up to JitterDegrees around
// the district center; discharge is rainfall times a factor in
// [MinDischargeFactor, MaxDischargeFactor).
const (
	HistoryDays = 7

	JitterDegrees      = 0.2
	MinBaseRisk        = 0.2
	MaxBaseRisk        = 1.0
	MaxRainfallMM      = 180.0
	MinDischargeFactor = 1.1
	MaxDischargeFactor = 1.7
)

// NewRand returns a PCG source seeded with seed, or with random state when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// BuildPanchayats places each catalog entry around its district center and
// draws a base risk. Entries with unknown district codes or blank names are
// returned in skipped.
func BuildPanchayats(entries []domain.CatalogEntry, rng *rand.Rand) (panchayats []domain.Panchayat, skipped []domain.CatalogEntry) {
	panchayats = make([]domain.Panchayat, 0, len(entries))
	for _, e := range entries {
		district, ok := domain.DistrictByCode(e.DistrictCode())
		if !ok || e.Name == "" {
			skipped = append(skipped, e)
			continue
		}
		panchayats = append(panchayats, domain.Panchayat{
			Name:     e.Name,
			District: district.Name,
			Lat:      district.Lat + uniform(rng, -JitterDegrees, JitterDegrees),
			Lng:      district.Lng + uniform(rng, -JitterDegrees, JitterDegrees),
			BaseRisk: uniform(rng, MinBaseRisk, MaxBaseRisk),
		})
	}
	return panchayats, skipped
}

// BuildReadings generates one reading per panchayat per day for the days
// ending on today (UTC), newest day first.
func BuildReadings(panchayats []domain.Panchayat, today time.Time, days int, rng *rand.Rand) []domain.Reading {
	readings := make([]domain.Reading, 0, len(panchayats)*days)
	today = today.UTC()
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -i).Format(domain.DateLayout)
		for _, p := range panchayats {
			rainfall := uniform(rng, 0, MaxRainfallMM) * p.BaseRisk
			readings = append(readings, domain.Reading{
				PanchayatID:    p.ID,
				Date:           date,
				RainfallMM:     rainfall,
				RiverDischarge: rainfall * uniform(rng, MinDischargeFactor, MaxDischargeFactor),
			})
		}
	}
	return readings
}
