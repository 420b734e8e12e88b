// internal/handlers/product.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unique-collection/catalog/internal/i18n"
	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/repositories"
	"github.com/unique-collection/catalog/internal/services"
	"github.com/unique-collection/catalog/internal/utils"
)

type ProductHandler struct {
	catalog         *services.CatalogService
	defaultPageSize int
	logger          *logrus.Logger
}

func NewProductHandler(catalog *services.CatalogService, defaultPageSize int, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:         catalog,
		defaultPageSize: defaultPageSize,
		logger:          logger,
	}
}

// GET /api/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	query := repositories.ProductQuery{
		PaginationParams: utils.GetPaginationParams(c, h.defaultPageSize),
		Category:         models.Category(strings.TrimSpace(c.Query("category"))),
		Size:             models.Size(strings.ToUpper(strings.TrimSpace(c.Query("size")))),
		MinPrice:         parsePriceBound(c.Query("minPrice")),
		MaxPrice:         parsePriceBound(c.Query("maxPrice")),
		Search:           strings.TrimSpace(c.Query("search")),
		ExcludeIDs:       repositories.ParseExcludeIDs(c.QueryArray("exclude")),
		Sort:             repositories.ParseSortOrder(c.Query("sort")),
	}

	page, err := h.catalog.ListProducts(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		utils.InternalErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(page.Items, page.Total, utils.PaginationParams{
		Page:  page.Page,
		Limit: page.Limit,
	})
	utils.PaginatedResponse(c, result, len(page.Items))
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	utils.DeletedResponse(c)
}

func (h *ProductHandler) respondError(c *gin.Context, err error) {
	if services.IsNotFound(err) {
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
		return
	}

	h.logger.WithError(err).WithField("product_id", c.Param("id")).Error("Product request failed")
	utils.InternalErrorResponse(c, err)
}

// parseProductID answers 404 for ids that are not well formed; such an id
// can never name a stored product.
func parseProductID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// parsePriceBound returns nil for a missing or unparsable bound so the
// filter is skipped.
func parsePriceBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
