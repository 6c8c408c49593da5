package service

import (
	"strings"

	"github.com/brgyhealth/bhc_api/internal/models"
)

// Place-name matching: normalize both sides (uppercase, strip known noise
// tokens, trim), then try exact match first and substring containment in
// either direction second. Each administrative level strips its own noise
// tokens before comparison.

// ncrMarkers are texts that force the National Capital Region path when they
// appear in an extracted city or region string.
var ncrMarkers = []string{
	"NCR",
	"NATIONAL CAPITAL REGION",
	"METRO MANILA",
}

// IsNCRMarker reports whether the extracted text names the capital region.
func IsNCRMarker(text string) bool {
	up := strings.ToUpper(strings.TrimSpace(text))
	if up == "" {
		return false
	}
	for _, marker := range ncrMarkers {
		if strings.Contains(up, marker) {
			return true
		}
	}
	return false
}

// NormalizeProvinceName uppercases and strips "PROVINCE OF" noise.
func NormalizeProvinceName(name string) string {
	up := strings.ToUpper(strings.TrimSpace(name))
	up = strings.ReplaceAll(up, "PROVINCE OF ", "")
	up = strings.ReplaceAll(up, " PROVINCE", "")
	return strings.TrimSpace(up)
}

// NormalizeCityName uppercases and strips "CITY OF"/"CITY"/"MUNICIPALITY OF"
// noise so "Caloocan City" and "City of Caloocan" compare equal.
func NormalizeCityName(name string) string {
	up := strings.ToUpper(strings.TrimSpace(name))
	up = strings.ReplaceAll(up, "CITY OF ", "")
	up = strings.ReplaceAll(up, "MUNICIPALITY OF ", "")
	up = strings.ReplaceAll(up, " CITY", "")
	up = strings.ReplaceAll(up, "CITY ", "")
	return strings.TrimSpace(up)
}

// NormalizeBarangayName uppercases and strips "BARANGAY"/"BRGY" labels plus
// punctuation and inner whitespace. Numeric barangay names ("174") survive
// unchanged.
func NormalizeBarangayName(name string) string {
	up := strings.ToUpper(strings.TrimSpace(name))
	up = strings.ReplaceAll(up, "BARANGAY", "")
	up = strings.ReplaceAll(up, "BRGY.", "")
	up = strings.ReplaceAll(up, "BRGY", "")
	var b strings.Builder
	for _, r := range up {
		switch r {
		case ' ', '\t', '.', ',', '-', '#', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matchOption finds the option whose normalized name matches the normalized
// query: exact first, then containment either direction. Returns nil when the
// query is empty or nothing matches.
func matchOption(options []models.GeoOption, query string, normalize func(string) string) *models.GeoOption {
	q := normalize(query)
	if q == "" {
		return nil
	}

	for i := range options {
		if normalize(options[i].Name) == q {
			return &options[i]
		}
	}
	for i := range options {
		n := normalize(options[i].Name)
		if n == "" {
			continue
		}
		if strings.Contains(n, q) || strings.Contains(q, n) {
			return &options[i]
		}
	}
	return nil
}

// MatchProvince fuzzy-matches an extracted province string against options.
func MatchProvince(options []models.GeoOption, query string) *models.GeoOption {
	return matchOption(options, query, NormalizeProvinceName)
}

// MatchCity fuzzy-matches an extracted city string against options.
func MatchCity(options []models.GeoOption, query string) *models.GeoOption {
	return matchOption(options, query, NormalizeCityName)
}

// MatchBarangay fuzzy-matches an extracted barangay string against options.
func MatchBarangay(options []models.GeoOption, query string) *models.GeoOption {
	return matchOption(options, query, NormalizeBarangayName)
}
