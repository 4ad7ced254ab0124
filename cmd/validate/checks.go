package main

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/seed"
)

// Float slack applied to the seeder's generation bounds.
const eps = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func validateAll(data dataset) []*phase {
	return []*phase{
		validatePanchayats(data.Panchayats),
		validateHistory(data.Panchayats, data.Readings),
		validateReadings(data.Panchayats, data.Readings),
	}
}

// validatePanchayats checks district membership, base risk and coordinate jitter.
func validatePanchayats(panchayats []domain.Panchayat) *phase {
	p := &phase{name: "Panchayats: district, base risk, jitter"}
	if len(panchayats) == 0 {
		p.errorf("no panchayats")
	}
	for _, n := range panchayats {
		d, ok := domain.DistrictByName(n.District)
		if !ok {
			p.errorf("panchayat %d (%s): unknown district %q", n.ID, n.Name, n.District)
			continue
		}
		if n.Name == "" {
			p.errorf("panchayat %d: empty name", n.ID)
		}
		if n.BaseRisk < seed.MinBaseRisk-eps || n.BaseRisk > seed.MaxBaseRisk+eps {
			p.errorf("panchayat %d (%s): base risk %.4f outside [%.1f, %.1f)", n.ID, n.Name, n.BaseRisk, seed.MinBaseRisk, seed.MaxBaseRisk)
		}
		if math.Abs(n.Lat-d.Lat) > seed.JitterDegrees+eps || math.Abs(n.Lng-d.Lng) > seed.JitterDegrees+eps {
			p.errorf("panchayat %d (%s): (%.4f, %.4f) more than %.1f deg from %s center",
				n.ID, n.Name, n.Lat, n.Lng, seed.JitterDegrees, d.Name)
		}
	}
	return p
}

// validateHistory checks that every panchayat has one reading per day for
// the same consecutive run of days.
func validateHistory(panchayats []domain.Panchayat, readings []domain.Reading) *phase {
	p := &phase{name: "History: 7 consecutive days per panchayat"}

	dates := map[int64][]string{}
	for _, r := range readings {
		dates[r.PanchayatID] = append(dates[r.PanchayatID], r.Date)
	}

	var want []string
	for _, n := range panchayats {
		got := dates[n.ID]
		sort.Strings(got)
		if len(got) != seed.HistoryDays {
			p.errorf("panchayat %d (%s): %d readings, want %d", n.ID, n.Name, len(got), seed.HistoryDays)
			continue
		}
		if err := checkConsecutive(got); err != nil {
			p.errorf("panchayat %d (%s): %v", n.ID, n.Name, err)
			continue
		}
		if want == nil {
			want = got
		} else if got[0] != want[0] || got[len(got)-1] != want[len(want)-1] {
			p.errorf("panchayat %d (%s): history %s..%s differs from %s..%s",
				n.ID, n.Name, got[0], got[len(got)-1], want[0], want[len(want)-1])
		}
	}
	return p
}

func checkConsecutive(dates []string) error {
	var prev time.Time
	for i, s := range dates {
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid date %q", s)
		}
		if i > 0 && !d.Equal(prev.AddDate(0, 0, 1)) {
			return fmt.Errorf("gap or duplicate between %s and %s", prev.Format(domain.DateLayout), s)
		}
		prev = d
	}
	return nil
}

// validateReadings checks references, rainfall bounds and the discharge factor.
func validateReadings(panchayats []domain.Panchayat, readings []domain.Reading) *phase {
	p := &phase{name: "Readings: references, rainfall, discharge factor"}

	byID := make(map[int64]domain.Panchayat, len(panchayats))
	for _, n := range panchayats {
		byID[n.ID] = n
	}

	for _, r := range readings {
		n, ok := byID[r.PanchayatID]
		if !ok {
			p.errorf("reading %d: unknown panchayat %d", r.ID, r.PanchayatID)
			continue
		}
		if r.RainfallMM < 0 || r.RainfallMM > seed.MaxRainfallMM*n.BaseRisk+eps {
			p.errorf("reading %d: rainfall %.3f outside [0, %.3f]", r.ID, r.RainfallMM, seed.MaxRainfallMM*n.BaseRisk)
		}
		if r.RiverDischarge < 0 {
			p.errorf("reading %d: negative discharge %.3f", r.ID, r.RiverDischarge)
			continue
		}
		if r.RainfallMM == 0 {
			if r.RiverDischarge != 0 {
				p.errorf("reading %d: discharge %.3f with zero rainfall", r.ID, r.RiverDischarge)
			}
			continue
		}
		factor := r.RiverDischarge / r.RainfallMM
		if factor < seed.MinDischargeFactor-eps || factor > seed.MaxDischargeFactor+eps {
			p.errorf("reading %d: discharge factor %.4f outside [%.1f, %.1f)", r.ID, factor, seed.MinDischargeFactor, seed.MaxDischargeFactor)
		}
	}
	return p
}
