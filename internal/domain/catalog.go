package domain

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"
)

//go:embed data/panchayats.csv
var panchayatCatalog string

// CatalogEntry is one row of the static panchayat catalog.
type CatalogEntry struct {
	Code string
	Name string
}

// DistrictCode returns the two-digit district code embedded in the panchayat
// code ("D04001001" -> "04"), or "" when the code is too short.
func (e CatalogEntry) DistrictCode() string {
	if len(e.Code) < 3 {
		return ""
	}
	return e.Code[1:3]
}

// Catalog returns the built-in panchayat catalog.
func Catalog() []CatalogEntry {
	entries, err := ParseCatalog(strings.NewReader(panchayatCatalog))
	if err != nil {
		// The embedded file is read from memory; a failure here is a build defect.
		panic(fmt.Sprintf("parse embedded panchayat catalog: %v", err))
	}
	return entries
}

// ParseCatalog reads "<code>,<name>," lines. Blank lines and lines with fewer
// than two fields are ignored. Codes and names are trimmed.
func ParseCatalog(r io.Reader) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		entries = append(entries, CatalogEntry{
			Code: strings.TrimSpace(parts[0]),
			Name: strings.TrimSpace(parts[1]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	return entries, nil
}
