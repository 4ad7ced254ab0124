package gormstore

import "time"

type panchayatRow struct {
	ID       int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string  `gorm:"column:name;type:varchar(255);not null"`
	District string  `gorm:"column:district;type:varchar(64);not null;index"`
	Lat      float64 `gorm:"column:lat;not null"`
	Lng      float64 `gorm:"column:lng;not null"`
	BaseRisk float64 `gorm:"column:base_risk;not null"`
}

func (panchayatRow) TableName() string {
	return "panchayats"
}

type readingRow struct {
	ID             int64         `gorm:"column:id;primaryKey;autoIncrement"`
	PanchayatID    int64         `gorm:"column:panchayat_id;not null;uniqueIndex:idx_rainfall_panchayat_date,priority:1"`
	Date           string        `gorm:"column:date;type:varchar(10);not null;index;uniqueIndex:idx_rainfall_panchayat_date,priority:2"`
	RainfallMM     float64       `gorm:"column:rainfall_mm;not null"`
	RiverDischarge float64       `gorm:"column:river_discharge;not null"`
	Panchayat      *panchayatRow `gorm:"foreignKey:PanchayatID;constraint:OnDelete:CASCADE"`
}

func (readingRow) TableName() string {
	return "rainfall_data"
}

type subscriptionRow struct {
	ID            int64         `gorm:"column:id;primaryKey;autoIncrement"`
	PanchayatID   int64         `gorm:"column:panchayat_id;not null;index"`
	Email         string        `gorm:"column:email;type:varchar(320);not null"`
	RiskThreshold string        `gorm:"column:risk_threshold;type:varchar(16);not null;default:'High'"`
	CreatedAt     time.Time     `gorm:"column:created_at;not null;autoCreateTime"`
	Panchayat     *panchayatRow `gorm:"foreignKey:PanchayatID;constraint:OnDelete:CASCADE"`
}

func (subscriptionRow) TableName() string {
	return "alert_subscriptions"
}

// statusRow is the scan target for latest-by-panchayat joins.
type statusRow struct {
	ID              int64
	Name            string
	District        string
	Lat             float64
	Lng             float64
	BaseRisk        float64
	LatestRainfall  float64
	LatestDischarge float64
}

type summaryRow struct {
	Name         string
	Lat          float64
	Lng          float64
	AvgRainfall  float64
	AvgDischarge float64
}
