package api

import (
	"net/http"

	"medslot/internal/infra/catalog"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog *catalog.Static
}

func NewCatalogHandler(cat *catalog.Static) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

type providerResponse struct {
	Name  string   `json:"name"`
	Units []string `json:"units"`
}

// @Summary List hospitals
// @Tags catalog
// @Produce json
// @Success 200 {array} providerResponse
// @Router /catalog/hospitals [get]
func (h *CatalogHandler) ListHospitals(c *gin.Context) {
	c.JSON(http.StatusOK, toProviderResponses(h.catalog.Hospitals()))
}

// @Summary List pathology labs
// @Tags catalog
// @Produce json
// @Success 200 {array} providerResponse
// @Router /catalog/labs [get]
func (h *CatalogHandler) ListLabs(c *gin.Context) {
	c.JSON(http.StatusOK, toProviderResponses(h.catalog.Labs()))
}

// @Summary List named time slots
// @Tags catalog
// @Produce json
// @Success 200 {array} string
// @Router /catalog/slots [get]
func (h *CatalogHandler) ListSlots(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Slots())
}

func toProviderResponses(providers []catalog.ProviderView) []providerResponse {
	out := make([]providerResponse, len(providers))
	for i, p := range providers {
		out[i] = providerResponse{Name: p.Name, Units: p.Units}
	}
	return out
}
