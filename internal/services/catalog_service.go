// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unique-collection/catalog/internal/config"
	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/repositories"
	"github.com/unique-collection/catalog/internal/utils"
)

const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEventPublisher receives product lifecycle notifications after a
// write has been stored.
type ProductEventPublisher interface {
	PublishProductEvent(ctx context.Context, eventType string, productID uuid.UUID, product *models.Product) error
}

// ProductInput carries the non-image fields of a product submission.
type ProductInput struct {
	Title              string          `json:"title" validate:"required,max=255"`
	Description        string          `json:"description" validate:"required"`
	Category           models.Category `json:"category" validate:"required,product_category"`
	Price              float64         `json:"price" validate:"gte=0,lt=100000000"`
	Sizes              []models.Size   `json:"sizes" validate:"required,min=1,dive,product_size"`
	DiscountAmount     float64         `json:"discountAmount" validate:"gte=0,lt=100000000"`
	DiscountPercentage float64         `json:"discountPercentage" validate:"gte=0,lte=100"`
}

func (in ProductInput) applyTo(p *models.Product) {
	p.Title = in.Title
	p.Description = in.Description
	p.Category = in.Category
	p.Price = in.Price
	p.Sizes = models.NewSizeSet(in.Sizes)
	p.Discount = models.Discount{
		Amount:     in.DiscountAmount,
		Percentage: in.DiscountPercentage,
	}
}

type CatalogService struct {
	repo       repositories.ProductRepository
	store      ImageStore
	reconciler *ImageReconciler
	publisher  ProductEventPublisher
	options    UploadOptions
	catalog    config.CatalogConfig
	logger     *logrus.Logger
}

func NewCatalogService(
	repo repositories.ProductRepository,
	store ImageStore,
	publisher ProductEventPublisher,
	cfg *config.Config,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		repo:       repo,
		store:      store,
		reconciler: NewImageReconciler(repo, store, logger),
		publisher:  publisher,
		options:    GetProductUploadOptions(cfg.Storage),
		catalog:    cfg.Catalog,
		logger:     logger,
	}
}

func (s *CatalogService) UploadOptions() UploadOptions {
	return s.options
}

// CreateProduct validates the submission, uploads its images in submission
// order and stores the product. Nothing is uploaded unless the fields and
// the image set are valid.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput, images []ImageUpload) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, NewValidationError("Please upload at least one product image")
	}
	if err := s.validateImages(images); err != nil {
		return nil, err
	}

	uploads, err := s.uploadAll(ctx, images)
	if err != nil {
		return nil, err
	}

	product := &models.Product{}
	input.applyTo(product)

	if err := s.reconciler.Create(ctx, product, uploads); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID.String(),
		"images":     len(product.Gallery),
	}).Info("Product created")
	s.publish(ctx, EventProductCreated, product.ID, product)

	return product, nil
}

// UpdateProduct replaces the non-image fields of product id. New images, if
// any, become the front of the gallery and the first one the primary image.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput, images []ImageUpload) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.validateImages(images); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, &NotFoundError{ID: id.String()}
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	uploads, err := s.uploadAll(ctx, images)
	if err != nil {
		return nil, err
	}

	product, err := s.reconciler.Update(ctx, id, input.applyTo, uploads)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": id.String(),
		"new_images": len(uploads),
	}).Info("Product updated")
	s.publish(ctx, EventProductUpdated, id, product)

	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.reconciler.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("product_id", id.String()).Info("Product deleted")
	s.publish(ctx, EventProductDeleted, id, nil)

	return nil
}

// GetProduct returns product id for display. Image URLs are projected
// through the image store when detail transformation is enabled.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.GetProductForEdit(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.catalog.TransformOnDetail {
		product = s.projectImages(product, DetailPrimaryTransform, DetailGalleryTransform)
	}

	return product, nil
}

// GetProductForEdit returns product id exactly as stored.
func (s *CatalogService) GetProductForEdit(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, &NotFoundError{ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, query repositories.ProductQuery) (*repositories.ProductPage, error) {
	if query.Limit < 1 {
		query.Limit = s.catalog.DefaultPageSize
	}

	page, err := s.repo.Find(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.catalog.TransformOnList {
		for i := range page.Items {
			page.Items[i] = *s.projectImages(&page.Items[i], ListTransform, ListTransform)
		}
	}

	return page, nil
}

// ListAll returns every product, newest first, for the admin dashboard.
func (s *CatalogService) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindAll(ctx)
}

// projectImages returns a copy of product whose image URLs are display URLs.
// Stored data is not modified.
func (s *CatalogService) projectImages(product *models.Product, primary, gallery TransformOptions) *models.Product {
	out := *product
	out.PrimaryImage = s.displayRef(product.PrimaryImage, primary)
	out.Gallery = make(models.AssetRefs, len(product.Gallery))
	for i, ref := range product.Gallery {
		out.Gallery[i] = s.displayRef(ref, gallery)
	}
	return &out
}

func (s *CatalogService) displayRef(ref models.AssetRef, opts TransformOptions) models.AssetRef {
	if ref.IsZero() {
		return ref
	}
	if u := s.store.TransformURL(ref, opts); u != "" {
		ref.URL = u
	}
	return ref
}

func (s *CatalogService) validateImages(images []ImageUpload) error {
	if s.options.MaxFiles > 0 && len(images) > s.options.MaxFiles {
		return NewValidationError(fmt.Sprintf("At most %d images can be uploaded at once", s.options.MaxFiles))
	}
	for _, image := range images {
		if err := ValidateImage(image, s.options); err != nil {
			return err
		}
	}
	return nil
}

// uploadAll uploads images one after another, keeping submission order. If
// one fails the images already uploaded by this call are deleted.
func (s *CatalogService) uploadAll(ctx context.Context, images []ImageUpload) (models.AssetRefs, error) {
	uploads := make(models.AssetRefs, 0, len(images))
	for _, image := range images {
		ref, err := s.store.Upload(ctx, image)
		if err != nil {
			s.reconciler.Compensate(ctx, "upload", uploads)
			return nil, &UploadError{Filename: image.Filename, Err: err}
		}
		uploads = append(uploads, ref)
	}
	return uploads, nil
}

func (s *CatalogService) publish(ctx context.Context, eventType string, id uuid.UUID, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(ctx, eventType, id, product); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":      eventType,
			"product_id": id.String(),
		}).Warn("Failed to publish product event")
	}
}

func validateInput(input ProductInput) error {
	if err := utils.ValidateStruct(&input); err != nil {
		fieldErrors := utils.GetValidationErrors(err)
		if len(fieldErrors) == 0 {
			return fmt.Errorf("validation failed: %w", err)
		}
		verr := NewValidationError("Please fill in all required fields and select at least one size")
		for _, fe := range fieldErrors {
			verr.Fields = append(verr.Fields, FieldError{Field: fe.Field, Message: fe.Message})
		}
		return verr
	}
	return nil
}
