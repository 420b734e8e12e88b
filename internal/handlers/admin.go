// internal/handlers/admin.go
package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unique-collection/catalog/internal/i18n"
	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/services"
	"github.com/unique-collection/catalog/internal/utils"
)

const dashboardPath = "/admin/dashboard"

type AdminHandler struct {
	catalog *services.CatalogService
	logger  *logrus.Logger
}

func NewAdminHandler(catalog *services.CatalogService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ProductFormView is the state of the add and edit pages.
type ProductFormView struct {
	Success    bool                  `json:"success"`
	Mode       string                `json:"mode"`
	ProductID  string                `json:"productId,omitempty"`
	Product    ProductForm           `json:"product"`
	Images     models.AssetRefs      `json:"images,omitempty"`
	Categories []models.Category     `json:"categories"`
	Sizes      []models.Size         `json:"sizes"`
	Error      string                `json:"error,omitempty"`
	Errors     []services.FieldError `json:"errors,omitempty"`
}

type DashboardView struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Count    int              `json:"count"`
	Products []models.Product `json:"products"`
}

// GET /admin
func (h *AdminHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, dashboardPath)
}

// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	products, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dashboard")
		utils.InternalErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardView{
		Success:  true,
		Message:  c.Query("success"),
		Count:    len(products),
		Products: products,
	})
}

// GET /admin/add-product
func (h *AdminHandler) AddProductForm(c *gin.Context) {
	c.JSON(http.StatusOK, newFormView("add", ProductForm{}))
}

// POST /admin/add-product
func (h *AdminHandler) AddProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	form, images, err := ParseProductForm(c, h.catalog.UploadOptions())
	if err != nil {
		h.respondFormError(c, "add", "", form, nil, err, i18n.KeyProductCreateError)
		return
	}

	input, err := form.Input()
	if err != nil {
		h.respondFormError(c, "add", "", form, nil, err, i18n.KeyProductCreateError)
		return
	}

	if _, err := h.catalog.CreateProduct(c.Request.Context(), input, images); err != nil {
		h.respondFormError(c, "add", "", form, nil, err, i18n.KeyProductCreateError)
		return
	}

	redirectToDashboard(c, i18n.T(lang, i18n.KeyProductCreated))
}

// GET /admin/edit-product/:id
func (h *AdminHandler) EditProductForm(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.catalog.GetProductForEdit(c.Request.Context(), id)
	if err != nil {
		if services.IsNotFound(err) {
			utils.NotFoundResponse(c, i18n.KeyProductNotFound)
			return
		}
		h.logger.WithError(err).WithField("product_id", id.String()).Error("Failed to load product for edit")
		utils.InternalErrorResponse(c, err)
		return
	}

	view := newFormView("edit", FormFromProduct(product))
	view.ProductID = id.String()
	view.Images = product.Gallery
	c.JSON(http.StatusOK, view)
}

// POST /admin/edit-product/:id
func (h *AdminHandler) EditProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseProductID(c)
	if !ok {
		return
	}

	form, images, err := ParseProductForm(c, h.catalog.UploadOptions())
	if err != nil {
		h.respondFormError(c, "edit", id.String(), form, h.currentImages(c, id), err, i18n.KeyProductUpdateError)
		return
	}

	input, err := form.Input()
	if err != nil {
		h.respondFormError(c, "edit", id.String(), form, h.currentImages(c, id), err, i18n.KeyProductUpdateError)
		return
	}

	if _, err := h.catalog.UpdateProduct(c.Request.Context(), id, input, images); err != nil {
		h.respondFormError(c, "edit", id.String(), form, h.currentImages(c, id), err, i18n.KeyProductUpdateError)
		return
	}

	redirectToDashboard(c, i18n.T(lang, i18n.KeyProductUpdated))
}

// respondFormError maps a failed submission to a response. Boundary file
// errors get the plain error envelope; everything else re-renders the form
// with what was submitted.
func (h *AdminHandler) respondFormError(c *gin.Context, mode, productID string, form ProductForm, images models.AssetRefs, err error, genericKey string) {
	lang := utils.GetLangFromContext(c)

	var fileErr *FileError
	if errors.As(err, &fileErr) {
		utils.BadRequestResponse(c, fileErr.Message)
		return
	}

	if services.IsNotFound(err) {
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
		return
	}

	view := newFormView(mode, form)
	view.Success = false
	view.ProductID = productID
	view.Images = images

	var validationErr *services.ValidationError
	var uploadErr *services.UploadError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		view.Error = validationErr.Message
		view.Errors = validationErr.Fields
	case errors.As(err, &uploadErr):
		status = http.StatusBadRequest
		view.Error = i18n.T(lang, i18n.KeyFileUploadFailed)
		if errors.Is(err, services.ErrStorageNotConfigured) {
			view.Error = i18n.T(lang, i18n.KeyStorageUnavailable)
		}
	default:
		view.Error = i18n.T(lang, genericKey)
	}

	h.logger.WithError(err).WithFields(logrus.Fields{
		"mode":       mode,
		"product_id": productID,
		"status":     status,
	}).Warn("Product submission rejected")

	c.JSON(status, view)
}

// currentImages is best effort; the form is still rendered without them.
func (h *AdminHandler) currentImages(c *gin.Context, id uuid.UUID) models.AssetRefs {
	product, err := h.catalog.GetProductForEdit(c.Request.Context(), id)
	if err != nil {
		return nil
	}
	return product.Gallery
}

func newFormView(mode string, form ProductForm) ProductFormView {
	if form.Sizes == nil {
		form.Sizes = []string{}
	}
	return ProductFormView{
		Success:    true,
		Mode:       mode,
		Product:    form,
		Categories: models.Categories,
		Sizes:      models.Sizes,
	}
}

func redirectToDashboard(c *gin.Context, message string) {
	query := url.Values{}
	query.Set("success", message)
	c.Redirect(http.StatusSeeOther, dashboardPath+"?"+query.Encode())
}
