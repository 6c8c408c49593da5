package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brgyhealth/bhc_api/internal/cache"
	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/repository"
	"github.com/brgyhealth/bhc_api/pkg/psgc"
)

// GeoDirectory serves PSGC option lists level by level. The remote PSGC
// client and the local mirror both satisfy it; the resolver does not care
// which is behind it.
type GeoDirectory interface {
	Regions(ctx context.Context) ([]models.GeoOption, error)
	Provinces(ctx context.Context, regionCode string) ([]models.GeoOption, error)
	AllProvinces(ctx context.Context) ([]models.GeoOption, error)
	CitiesByRegion(ctx context.Context, regionCode string) ([]models.GeoOption, error)
	CitiesByProvince(ctx context.Context, provinceCode string) ([]models.GeoOption, error)
	Barangays(ctx context.Context, cityCode string) ([]models.GeoOption, error)
}

// RemoteDirectory serves the directory straight from the PSGC reference
// service.
type RemoteDirectory struct {
	client *psgc.Client
}

// NewRemoteDirectory creates a directory backed by the remote PSGC API.
func NewRemoteDirectory(client *psgc.Client) *RemoteDirectory {
	return &RemoteDirectory{client: client}
}

func (d *RemoteDirectory) Regions(ctx context.Context) ([]models.GeoOption, error) {
	options, err := d.client.Regions(ctx)
	return toGeoOptions(options), err
}

func (d *RemoteDirectory) Provinces(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	options, err := d.client.Provinces(ctx, regionCode)
	return toGeoOptions(options), err
}

func (d *RemoteDirectory) AllProvinces(ctx context.Context) ([]models.GeoOption, error) {
	options, err := d.client.AllProvinces(ctx)
	return toGeoOptions(options), err
}

func (d *RemoteDirectory) CitiesByRegion(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	options, err := d.client.CitiesByRegion(ctx, regionCode)
	return toGeoOptions(options), err
}

func (d *RemoteDirectory) CitiesByProvince(ctx context.Context, provinceCode string) ([]models.GeoOption, error) {
	options, err := d.client.CitiesByProvince(ctx, provinceCode)
	return toGeoOptions(options), err
}

func (d *RemoteDirectory) Barangays(ctx context.Context, cityCode string) ([]models.GeoOption, error) {
	options, err := d.client.Barangays(ctx, cityCode)
	return toGeoOptions(options), err
}

// toGeoOptions converts reference-client options to the domain type.
func toGeoOptions(options []psgc.Option) []models.GeoOption {
	if options == nil {
		return nil
	}
	out := make([]models.GeoOption, len(options))
	for i, o := range options {
		out[i] = models.GeoOption{Code: o.Code, Name: o.Name, ZipCode: o.ZipCode}
	}
	return out
}

// MirrorDirectory serves the directory from the local Postgres mirror.
type MirrorDirectory struct {
	repo *repository.PSGCRepository
}

// NewMirrorDirectory creates a directory backed by the PSGC mirror.
func NewMirrorDirectory(repo *repository.PSGCRepository) *MirrorDirectory {
	return &MirrorDirectory{repo: repo}
}

func (d *MirrorDirectory) Regions(ctx context.Context) ([]models.GeoOption, error) {
	return d.repo.GetRegions(ctx)
}

func (d *MirrorDirectory) Provinces(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	return d.repo.GetProvincesByRegion(ctx, regionCode)
}

func (d *MirrorDirectory) AllProvinces(ctx context.Context) ([]models.GeoOption, error) {
	return d.repo.GetAllProvinces(ctx)
}

func (d *MirrorDirectory) CitiesByRegion(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	return d.repo.GetCitiesByRegion(ctx, regionCode)
}

func (d *MirrorDirectory) CitiesByProvince(ctx context.Context, provinceCode string) ([]models.GeoOption, error) {
	return d.repo.GetCitiesByProvince(ctx, provinceCode)
}

func (d *MirrorDirectory) Barangays(ctx context.Context, cityCode string) ([]models.GeoOption, error) {
	return d.repo.GetBarangaysByCity(ctx, cityCode)
}

// CachedDirectory wraps a GeoDirectory with a Redis option cache. Cache
// failures fall through to the inner directory; a failed Set only logs.
type CachedDirectory struct {
	inner GeoDirectory
	cache *cache.GeoCache
}

// NewCachedDirectory wraps inner with the geo option cache.
func NewCachedDirectory(inner GeoDirectory, geoCache *cache.GeoCache) *CachedDirectory {
	return &CachedDirectory{inner: inner, cache: geoCache}
}

func (d *CachedDirectory) Regions(ctx context.Context) ([]models.GeoOption, error) {
	return d.cached(ctx, cache.LevelRegions, "", d.inner.Regions)
}

func (d *CachedDirectory) Provinces(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	return d.cached(ctx, cache.LevelProvinces, regionCode, func(ctx context.Context) ([]models.GeoOption, error) {
		return d.inner.Provinces(ctx, regionCode)
	})
}

func (d *CachedDirectory) AllProvinces(ctx context.Context) ([]models.GeoOption, error) {
	return d.cached(ctx, cache.LevelProvinces, "", d.inner.AllProvinces)
}

func (d *CachedDirectory) CitiesByRegion(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	return d.cached(ctx, cache.LevelCitiesByRegion, regionCode, func(ctx context.Context) ([]models.GeoOption, error) {
		return d.inner.CitiesByRegion(ctx, regionCode)
	})
}

func (d *CachedDirectory) CitiesByProvince(ctx context.Context, provinceCode string) ([]models.GeoOption, error) {
	return d.cached(ctx, cache.LevelCitiesByProvince, provinceCode, func(ctx context.Context) ([]models.GeoOption, error) {
		return d.inner.CitiesByProvince(ctx, provinceCode)
	})
}

func (d *CachedDirectory) Barangays(ctx context.Context, cityCode string) ([]models.GeoOption, error) {
	return d.cached(ctx, cache.LevelBarangays, cityCode, func(ctx context.Context) ([]models.GeoOption, error) {
		return d.inner.Barangays(ctx, cityCode)
	})
}

func (d *CachedDirectory) cached(ctx context.Context, level, parent string, fetch func(context.Context) ([]models.GeoOption, error)) ([]models.GeoOption, error) {
	if options, ok := d.cache.Get(ctx, level, parent); ok {
		return options, nil
	}
	options, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.cache.Set(ctx, level, parent, options); err != nil {
		log.Warn().Err(err).Str("level", level).Str("parent", parent).Msg("geo cache set failed")
	}
	return options, nil
}
