package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brgyhealth/bhc_api/internal/service"
	"github.com/brgyhealth/bhc_api/internal/utils"
)

// AddressHandler exposes the PSGC reference hierarchy level by level.
type AddressHandler struct {
	resolver *service.ResolverService
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(resolver *service.ResolverService) *AddressHandler {
	return &AddressHandler{resolver: resolver}
}

// GetRegions returns all regions.
// GET /v1/address/regions
func (h *AddressHandler) GetRegions(c *gin.Context) {
	options, err := h.resolver.Regions(c.Request.Context())
	if err != nil {
		utils.Error(c, http.StatusBadGateway, "GEO_UNAVAILABLE", "Failed to retrieve regions")
		return
	}
	utils.Success(c, http.StatusOK, "Regions retrieved", options)
}

// GetProvinces returns the provinces of a region.
// GET /v1/address/regions/:code/provinces
func (h *AddressHandler) GetProvinces(c *gin.Context) {
	options, err := h.resolver.Provinces(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.Error(c, http.StatusBadGateway, "GEO_UNAVAILABLE", "Failed to retrieve provinces")
		return
	}
	utils.Success(c, http.StatusOK, "Provinces retrieved", options)
}

// GetCitiesByRegion returns the cities directly under a region (NCR path).
// GET /v1/address/regions/:code/cities
func (h *AddressHandler) GetCitiesByRegion(c *gin.Context) {
	options, err := h.resolver.CitiesByRegion(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.Error(c, http.StatusBadGateway, "GEO_UNAVAILABLE", "Failed to retrieve cities")
		return
	}
	utils.Success(c, http.StatusOK, "Cities retrieved", options)
}

// GetCitiesByProvince returns the cities of a province.
// GET /v1/address/provinces/:code/cities
func (h *AddressHandler) GetCitiesByProvince(c *gin.Context) {
	options, err := h.resolver.CitiesByProvince(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.Error(c, http.StatusBadGateway, "GEO_UNAVAILABLE", "Failed to retrieve cities")
		return
	}
	utils.Success(c, http.StatusOK, "Cities retrieved", options)
}

// GetBarangays returns the barangays of a city.
// GET /v1/address/cities/:code/barangays
func (h *AddressHandler) GetBarangays(c *gin.Context) {
	options, err := h.resolver.Barangays(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.Error(c, http.StatusBadGateway, "GEO_UNAVAILABLE", "Failed to retrieve barangays")
		return
	}
	utils.Success(c, http.StatusOK, "Barangays retrieved", options)
}
