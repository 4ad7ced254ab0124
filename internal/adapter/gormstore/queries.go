package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/couchcryptid/floodguard/internal/domain"
)

const insertBatchSize = 200

// CountPanchayats returns the number of stored panchayats.
func (s *Store) CountPanchayats(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&panchayatRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count panchayats: %w", err)
	}
	return n, nil
}

// CreatePanchayats inserts panchayats and returns them with assigned IDs.
func (s *Store) CreatePanchayats(ctx context.Context, items []domain.Panchayat) ([]domain.Panchayat, error) {
	if len(items) == 0 {
		return nil, nil
	}
	rows := make([]panchayatRow, len(items))
	for i, p := range items {
		rows[i] = panchayatRow{Name: p.Name, District: p.District, Lat: p.Lat, Lng: p.Lng, BaseRisk: p.BaseRisk}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, insertBatchSize).Error; err != nil {
		return nil, fmt.Errorf("insert panchayats: %w", err)
	}

	out := make([]domain.Panchayat, len(rows))
	for i, r := range rows {
		out[i] = mapPanchayat(r)
	}
	return out, nil
}

// ListPanchayats returns every panchayat ordered by ID.
func (s *Store) ListPanchayats(ctx context.Context) ([]domain.Panchayat, error) {
	var rows []panchayatRow
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query panchayats: %w", err)
	}
	out := make([]domain.Panchayat, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapPanchayat(r))
	}
	return out, nil
}

// CountReadings returns the number of stored rainfall readings.
func (s *Store) CountReadings(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&readingRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

// CreateReadings inserts rainfall readings.
func (s *Store) CreateReadings(ctx context.Context, items []domain.Reading) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]readingRow, len(items))
	for i, r := range items {
		rows[i] = readingRow{
			PanchayatID:    r.PanchayatID,
			Date:           r.Date,
			RainfallMM:     r.RainfallMM,
			RiverDischarge: r.RiverDischarge,
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, insertBatchSize).Error; err != nil {
		return fmt.Errorf("insert readings: %w", err)
	}
	return nil
}

// LatestDate returns the most recent reading date across all panchayats,
// or "" when no readings exist.
func (s *Store) LatestDate(ctx context.Context) (string, error) {
	var latest sql.NullString
	if err := s.db.WithContext(ctx).Model(&readingRow{}).Select("MAX(date)").Row().Scan(&latest); err != nil {
		return "", fmt.Errorf("query latest date: %w", err)
	}
	return latest.String, nil
}

// LatestByPanchayat joins each panchayat to its reading on the single global
// latest date. Panchayats without a reading on that date are excluded.
// With a district filter rows are ordered by name, otherwise by district then name.
func (s *Store) LatestByPanchayat(ctx context.Context, filter domain.StatusFilter) ([]domain.PanchayatStatus, error) {
	db := s.db.WithContext(ctx)

	query := db.Table("panchayats AS p").
		Select("p.id, p.name, p.district, p.lat, p.lng, p.base_risk, " +
			"r.rainfall_mm AS latest_rainfall, r.river_discharge AS latest_discharge").
		Joins("JOIN rainfall_data r ON r.panchayat_id = p.id").
		Where("r.date = (?)", latestDateSubquery(db))

	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where("LOWER(p.name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if filter.District != "" {
		query = query.Where("p.district = ?", filter.District).Order("p.name")
	} else {
		query = query.Order("p.district").Order("p.name")
	}

	var rows []statusRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query latest readings: %w", err)
	}

	out := make([]domain.PanchayatStatus, 0, len(rows))
	for _, r := range rows {
		status := domain.PanchayatStatus{
			Panchayat: domain.Panchayat{
				ID:       r.ID,
				Name:     r.Name,
				District: r.District,
				Lat:      r.Lat,
				Lng:      r.Lng,
				BaseRisk: r.BaseRisk,
			},
			LatestRainfall:  r.LatestRainfall,
			LatestDischarge: r.LatestDischarge,
		}
		status.Classify()
		out = append(out, status)
	}
	return out, nil
}

// DistrictSummaries averages position and the latest-date readings per district.
func (s *Store) DistrictSummaries(ctx context.Context) ([]domain.DistrictSummary, error) {
	db := s.db.WithContext(ctx)

	var rows []summaryRow
	err := db.Table("panchayats AS p").
		Select("p.district AS name, AVG(p.lat) AS lat, AVG(p.lng) AS lng, " +
			"AVG(r.rainfall_mm) AS avg_rainfall, AVG(r.river_discharge) AS avg_discharge").
		Joins("JOIN rainfall_data r ON r.panchayat_id = p.id").
		Where("r.date = (?)", latestDateSubquery(db)).
		Group("p.district").
		Order("p.district").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query district summaries: %w", err)
	}

	out := make([]domain.DistrictSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.DistrictSummary(r))
	}
	return out, nil
}

// DistrictNames returns the distinct district names present among panchayats.
func (s *Store) DistrictNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := s.db.WithContext(ctx).Model(&panchayatRow{}).
		Distinct("district").
		Order("district asc").
		Pluck("district", &names).Error; err != nil {
		return nil, fmt.Errorf("query district names: %w", err)
	}
	return names, nil
}

// History returns a panchayat's readings, earliest date first.
func (s *Store) History(ctx context.Context, panchayatID int64) ([]domain.Reading, error) {
	var rows []readingRow
	if err := s.db.WithContext(ctx).
		Where("panchayat_id = ?", panchayatID).
		Order("date asc").
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	out := make([]domain.Reading, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapReading(r))
	}
	return out, nil
}

// CreateSubscription appends an alert subscription. The referenced panchayat
// must exist; otherwise the error wraps domain.ErrNotFound.
func (s *Store) CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	row := subscriptionRow{
		PanchayatID:   sub.PanchayatID,
		Email:         sub.Email,
		RiskThreshold: sub.RiskThreshold,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p panchayatRow
		if err := tx.Select("id").Take(&p, "id = ?", sub.PanchayatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("panchayat %d: %w", sub.PanchayatID, domain.ErrNotFound)
			}
			return fmt.Errorf("query panchayat: %w", err)
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Subscription{}, err
	}

	return domain.Subscription{
		ID:            row.ID,
		PanchayatID:   row.PanchayatID,
		Email:         row.Email,
		RiskThreshold: row.RiskThreshold,
		CreatedAt:     row.CreatedAt,
	}, nil
}

// ListSubscriptions returns subscriptions ordered by ID.
func (s *Store) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	var rows []subscriptionRow
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	out := make([]domain.Subscription, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Subscription{
			ID:            r.ID,
			PanchayatID:   r.PanchayatID,
			Email:         r.Email,
			RiskThreshold: r.RiskThreshold,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}

// ListReadings returns every reading ordered by panchayat then date.
func (s *Store) ListReadings(ctx context.Context) ([]domain.Reading, error) {
	var rows []readingRow
	if err := s.db.WithContext(ctx).Order("panchayat_id asc").Order("date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	out := make([]domain.Reading, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapReading(r))
	}
	return out, nil
}

func latestDateSubquery(db *gorm.DB) *gorm.DB {
	return db.Model(&readingRow{}).Select("MAX(date)")
}

func mapPanchayat(r panchayatRow) domain.Panchayat {
	return domain.Panchayat{
		ID:       r.ID,
		Name:     r.Name,
		District: r.District,
		Lat:      r.Lat,
		Lng:      r.Lng,
		BaseRisk: r.BaseRisk,
	}
}

func mapReading(r readingRow) domain.Reading {
	return domain.Reading{
		ID:             r.ID,
		PanchayatID:    r.PanchayatID,
		Date:           r.Date,
		RainfallMM:     r.RainfallMM,
		RiverDischarge: r.RiverDischarge,
	}
}
