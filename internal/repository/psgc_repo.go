package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/brgyhealth/bhc_api/internal/models"
)

// PSGCRepository handles database operations for the local PSGC mirror.
// Codes are 10-digit PSGC codes; parent codes link each level to the one
// above it (barangays carry the city code, cities carry region and
// province codes since NCR cities have no province).
type PSGCRepository struct {
	db *sqlx.DB
}

// NewPSGCRepository creates a new PSGCRepository
func NewPSGCRepository(db *sqlx.DB) *PSGCRepository {
	return &PSGCRepository{db: db}
}

// GetRegions returns all regions
func (r *PSGCRepository) GetRegions(ctx context.Context) ([]models.GeoOption, error) {
	query := `SELECT code, name FROM psgc_regions ORDER BY code`
	return r.queryOptions(ctx, query)
}

// GetProvincesByRegion returns all provinces under a region code
func (r *PSGCRepository) GetProvincesByRegion(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	query := `SELECT code, name FROM psgc_provinces WHERE region_code = $1 ORDER BY name`
	return r.queryOptions(ctx, query, regionCode)
}

// GetAllProvinces returns every province regardless of region
func (r *PSGCRepository) GetAllProvinces(ctx context.Context) ([]models.GeoOption, error) {
	query := `SELECT code, name FROM psgc_provinces ORDER BY name`
	return r.queryOptions(ctx, query)
}

// GetCitiesByRegion returns all cities directly under a region.
// Used for NCR, whose cities have no province parent.
func (r *PSGCRepository) GetCitiesByRegion(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	query := `SELECT code, name, COALESCE(zip_code, '') AS zip_code
	          FROM psgc_cities WHERE region_code = $1 ORDER BY name`
	return r.queryOptionsWithZip(ctx, query, regionCode)
}

// GetCitiesByProvince returns all cities under a province code
func (r *PSGCRepository) GetCitiesByProvince(ctx context.Context, provinceCode string) ([]models.GeoOption, error) {
	query := `SELECT code, name, COALESCE(zip_code, '') AS zip_code
	          FROM psgc_cities WHERE province_code = $1 ORDER BY name`
	return r.queryOptionsWithZip(ctx, query, provinceCode)
}

// GetBarangaysByCity returns all barangays under a city code
func (r *PSGCRepository) GetBarangaysByCity(ctx context.Context, cityCode string) ([]models.GeoOption, error) {
	query := `SELECT code, name, COALESCE(zip_code, '') AS zip_code
	          FROM psgc_barangays WHERE city_code = $1 ORDER BY name`
	return r.queryOptionsWithZip(ctx, query, cityCode)
}

// CountRegions returns the total count of mirrored regions
func (r *PSGCRepository) CountRegions(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM psgc_regions`).Scan(&count)
	return count, err
}

// ReplaceRegions replaces the full region table within a transaction.
func (r *PSGCRepository) ReplaceRegions(ctx context.Context, regions []models.GeoOption) error {
	return r.replaceLevel(ctx, "psgc_regions", func(tx *sqlx.Tx) error {
		for _, reg := range regions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO psgc_regions (code, name) VALUES ($1, $2)`,
				reg.Code, reg.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceProvinces replaces the full province table within a transaction.
// Region codes are derived from the province code prefix.
func (r *PSGCRepository) ReplaceProvinces(ctx context.Context, provinces []models.GeoOption) error {
	return r.replaceLevel(ctx, "psgc_provinces", func(tx *sqlx.Tx) error {
		for _, p := range provinces {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO psgc_provinces (code, region_code, name) VALUES ($1, $2, $3)`,
				p.Code, models.RegionCodeForProvince(p.Code), p.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

// CityRow is a mirror row for a city with both possible parents.
type CityRow struct {
	Code         string `db:"code"`
	RegionCode   string `db:"region_code"`
	ProvinceCode string `db:"province_code"`
	Name         string `db:"name"`
	ZipCode      string `db:"zip_code"`
}

// ReplaceCities replaces the full city table within a transaction.
func (r *PSGCRepository) ReplaceCities(ctx context.Context, cities []CityRow) error {
	return r.replaceLevel(ctx, "psgc_cities", func(tx *sqlx.Tx) error {
		for _, c := range cities {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO psgc_cities (code, region_code, province_code, name, zip_code)
				 VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''))`,
				c.Code, c.RegionCode, c.ProvinceCode, c.Name, c.ZipCode); err != nil {
				return err
			}
		}
		return nil
	})
}

// BarangayRow is a mirror row for a barangay.
type BarangayRow struct {
	Code     string `db:"code"`
	CityCode string `db:"city_code"`
	Name     string `db:"name"`
	ZipCode  string `db:"zip_code"`
}

// ReplaceBarangaysForCity replaces the barangays of a single city within a
// transaction. Barangay sync runs city by city to keep transactions small.
func (r *PSGCRepository) ReplaceBarangaysForCity(ctx context.Context, cityCode string, barangays []BarangayRow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin barangay replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM psgc_barangays WHERE city_code = $1`, cityCode); err != nil {
		return err
	}
	for _, b := range barangays {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO psgc_barangays (code, city_code, name, zip_code)
			 VALUES ($1, $2, $3, NULLIF($4, ''))`,
			b.Code, cityCode, b.Name, b.ZipCode); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// replaceLevel truncates a mirror table and refills it inside one transaction.
func (r *PSGCRepository) replaceLevel(ctx context.Context, table string, fill func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s replace: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return err
	}
	if err := fill(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PSGCRepository) queryOptions(ctx context.Context, query string, args ...interface{}) ([]models.GeoOption, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.GeoOption
	for rows.Next() {
		var o models.GeoOption
		if err := rows.Scan(&o.Code, &o.Name); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

func (r *PSGCRepository) queryOptionsWithZip(ctx context.Context, query string, args ...interface{}) ([]models.GeoOption, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.GeoOption
	for rows.Next() {
		var o models.GeoOption
		if err := rows.Scan(&o.Code, &o.Name, &o.ZipCode); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
