package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brgyhealth/bhc_api/internal/models"
)

func TestIsNCRMarker(t *testing.T) {
	assert.True(t, IsNCRMarker("NCR"))
	assert.True(t, IsNCRMarker("National Capital Region"))
	assert.True(t, IsNCRMarker("Metro Manila"))
	assert.True(t, IsNCRMarker("Caloocan, Metro Manila"))
	assert.False(t, IsNCRMarker("Cebu"))
	assert.False(t, IsNCRMarker(""))
}

func TestNormalizeCityName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Caloocan City", "CALOOCAN"},
		{"City of Caloocan", "CALOOCAN"},
		{"MUNICIPALITY OF PATEROS", "PATEROS"},
		{"Quezon City", "QUEZON"},
		{"  Makati  ", "MAKATI"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeCityName(tt.input), tt.input)
	}
}

func TestNormalizeBarangayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Barangay 174", "174"},
		{"Brgy. 174", "174"},
		{"BRGY 174", "174"},
		{"Barangay San Isidro", "SANISIDRO"},
		{"174", "174"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeBarangayName(tt.input), tt.input)
	}
}

func TestMatchProvince(t *testing.T) {
	options := []models.GeoOption{
		{Code: "0700000001", Name: "Cebu"},
		{Code: "0300000002", Name: "Bulacan"},
		{Code: "0400000003", Name: "Laguna"},
	}

	match := MatchProvince(options, "Province of Cebu")
	require.NotNil(t, match)
	assert.Equal(t, "0700000001", match.Code)

	match = MatchProvince(options, "BULACAN")
	require.NotNil(t, match)
	assert.Equal(t, "0300000002", match.Code)

	assert.Nil(t, MatchProvince(options, "Zamboanga"))
	assert.Nil(t, MatchProvince(options, ""))
}

func TestMatchCityExactBeforeContainment(t *testing.T) {
	options := []models.GeoOption{
		{Code: "1", Name: "San Juan City"},
		{Code: "2", Name: "San Juan del Monte"},
	}

	// Exact-after-normalize wins over the containment candidate.
	match := MatchCity(options, "San Juan")
	require.NotNil(t, match)
	assert.Equal(t, "1", match.Code)
}

func TestMatchBarangayContainment(t *testing.T) {
	options := []models.GeoOption{
		{Code: "b1", Name: "Barangay 173"},
		{Code: "b2", Name: "Barangay 174"},
		{Code: "b3", Name: "Camarin"},
	}

	match := MatchBarangay(options, "174")
	require.NotNil(t, match)
	assert.Equal(t, "b2", match.Code)

	match = MatchBarangay(options, "Brgy. Camarin")
	require.NotNil(t, match)
	assert.Equal(t, "b3", match.Code)

	assert.Nil(t, MatchBarangay(options, "999"))
}
