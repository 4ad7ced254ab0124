package domain

import "time"

// DateLayout is the calendar-date format used for readings (ISO 8601).
const DateLayout = "2006-01-02"

// Panchayat is a local-government node with a synthetic position and a base
// risk coefficient fixed at creation.
type Panchayat struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	District string  `json:"district"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	BaseRisk float64 `json:"base_risk"`
}

// Reading is one day's rainfall and river-discharge observation for a panchayat.
type Reading struct {
	ID             int64   `json:"id"`
	PanchayatID    int64   `json:"panchayat_id"`
	Date           string  `json:"date"`
	RainfallMM     float64 `json:"rainfall_mm"`
	RiverDischarge float64 `json:"river_discharge"`
}

// PanchayatStatus is a panchayat joined to its reading on the globally latest date.
type PanchayatStatus struct {
	Panchayat
	LatestRainfall  float64   `json:"latest_rainfall"`
	LatestDischarge float64   `json:"latest_discharge"`
	RiskLevel       RiskLevel `json:"risk_level"`
	RiskColor       string    `json:"risk_color"`
}

// Classify fills RiskLevel and RiskColor from the latest reading.
func (s *PanchayatStatus) Classify() {
	s.RiskLevel = ClassifyRisk(s.LatestRainfall, s.LatestDischarge)
	s.RiskColor = s.RiskLevel.Color()
}

// DistrictSummary aggregates a district's panchayats on the globally latest date.
type DistrictSummary struct {
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	AvgRainfall  float64 `json:"avg_rainfall"`
	AvgDischarge float64 `json:"avg_discharge"`
}

// DefaultRiskThreshold is applied to subscriptions that omit a threshold.
const DefaultRiskThreshold = "High"

// Subscription is an append-only email alert registration for a panchayat.
type Subscription struct {
	ID            int64     `json:"id"`
	PanchayatID   int64     `json:"panchayat_id"`
	Email         string    `json:"email"`
	RiskThreshold string    `json:"risk_threshold"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusFilter narrows latest-by-panchayat queries. Zero value means no filter.
type StatusFilter struct {
	District string
	Query    string // case-insensitive substring of the panchayat name
}

// RiskStats counts panchayats per risk level on the latest date.
type RiskStats struct {
	Total      int    `json:"total"`
	High       int    `json:"high"`
	Medium     int    `json:"medium"`
	Low        int    `json:"low"`
	LatestDate string `json:"latest_date"`
}
