package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/repository"
	"github.com/brgyhealth/bhc_api/pkg/psgc"
)

// GeoSyncService refreshes the local PSGC mirror from the reference service.
// Only runs when the mirror is the configured geo source.
type GeoSyncService struct {
	psgc *psgc.Client
	repo *repository.PSGCRepository
}

// NewGeoSyncService constructs a GeoSyncService.
func NewGeoSyncService(psgcClient *psgc.Client, repo *repository.PSGCRepository) *GeoSyncService {
	return &GeoSyncService{psgc: psgcClient, repo: repo}
}

// Sync pulls the full hierarchy level by level: regions, provinces, cities
// (per region, since NCR cities have no province), then barangays city by
// city. A failed city leaves its previous barangays in place; everything
// else is replaced wholesale per level.
func (s *GeoSyncService) Sync(ctx context.Context) error {
	rawRegions, err := s.psgc.Regions(ctx)
	if err != nil {
		return err
	}
	regions := toGeoOptions(rawRegions)
	if err := s.repo.ReplaceRegions(ctx, regions); err != nil {
		return err
	}
	log.Debug().Int("count", len(regions)).Msg("regions synced")

	rawProvinces, err := s.psgc.AllProvinces(ctx)
	if err != nil {
		return err
	}
	provinces := toGeoOptions(rawProvinces)
	if err := s.repo.ReplaceProvinces(ctx, provinces); err != nil {
		return err
	}
	log.Debug().Int("count", len(provinces)).Msg("provinces synced")

	cities, err := s.fetchCities(ctx, regions, provinces)
	if err != nil {
		return err
	}
	if err := s.repo.ReplaceCities(ctx, cities); err != nil {
		return err
	}
	log.Debug().Int("count", len(cities)).Msg("cities synced")

	s.syncBarangays(ctx, cities)
	return nil
}

// fetchCities collects every city with its parents. NCR cities come from the
// region endpoint; all others from their province.
func (s *GeoSyncService) fetchCities(ctx context.Context, regions, provinces []models.GeoOption) ([]repository.CityRow, error) {
	var rows []repository.CityRow

	for _, region := range regions {
		if !models.IsNCR(region.Code) {
			continue
		}
		cities, err := s.psgc.CitiesByRegion(ctx, region.Code)
		if err != nil {
			return nil, err
		}
		for _, c := range cities {
			rows = append(rows, repository.CityRow{
				Code:       c.Code,
				RegionCode: region.Code,
				Name:       c.Name,
				ZipCode:    c.ZipCode,
			})
		}
	}

	for _, province := range provinces {
		cities, err := s.psgc.CitiesByProvince(ctx, province.Code)
		if err != nil {
			log.Warn().Err(err).Str("province", province.Code).Msg("city sync failed for province")
			continue
		}
		regionCode := models.RegionCodeForProvince(province.Code)
		for _, c := range cities {
			rows = append(rows, repository.CityRow{
				Code:         c.Code,
				RegionCode:   regionCode,
				ProvinceCode: province.Code,
				Name:         c.Name,
				ZipCode:      c.ZipCode,
			})
		}
	}
	return rows, nil
}

// syncBarangays refreshes barangays one city at a time. Per-city failures
// are logged and skipped so one bad fetch does not abort the whole sync.
func (s *GeoSyncService) syncBarangays(ctx context.Context, cities []repository.CityRow) {
	synced := 0
	for _, city := range cities {
		if ctx.Err() != nil {
			log.Info().Int("synced", synced).Msg("barangay sync interrupted")
			return
		}
		barangays, err := s.psgc.Barangays(ctx, city.Code)
		if err != nil {
			log.Warn().Err(err).Str("city", city.Code).Msg("barangay sync failed for city")
			continue
		}
		rows := make([]repository.BarangayRow, 0, len(barangays))
		for _, b := range barangays {
			rows = append(rows, repository.BarangayRow{
				Code:     b.Code,
				CityCode: city.Code,
				Name:     b.Name,
				ZipCode:  b.ZipCode,
			})
		}
		if err := s.repo.ReplaceBarangaysForCity(ctx, city.Code, rows); err != nil {
			log.Warn().Err(err).Str("city", city.Code).Msg("barangay replace failed")
			continue
		}
		synced++
	}
	log.Debug().Int("cities", synced).Msg("barangays synced")
}
