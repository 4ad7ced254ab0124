package domain

// RiskLevel is the flood-risk category derived from rainfall and discharge.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Score thresholds; comparisons are strict so boundaries fall to the lower level.
const (
	highRiskScore   = 0.7
	mediumRiskScore = 0.4
)

// RiskScore weights rainfall (60%, normalized by 150 mm) and discharge
// (40%, normalized by 200). Folded to (2r + d) / 500 to keep boundary inputs exact.
func RiskScore(rainfallMM, riverDischarge float64) float64 {
	return (2*rainfallMM + riverDischarge) / 500
}

// ClassifyRisk maps a reading to a risk level. It is total: any input,
// including zero or negative values, yields a level.
func ClassifyRisk(rainfallMM, riverDischarge float64) RiskLevel {
	score := RiskScore(rainfallMM, riverDischarge)
	switch {
	case score > highRiskScore:
		return RiskHigh
	case score > mediumRiskScore:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Color returns the marker color used by the dashboard for the level.
func (l RiskLevel) Color() string {
	switch l {
	case RiskHigh:
		return "#ef4444"
	case RiskMedium:
		return "#f59e0b"
	default:
		return "#10b981"
	}
}

// Valid reports whether l is one of the three known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}
