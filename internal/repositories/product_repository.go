// internal/repositories/product_repository.go
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/utils"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository is the durable store of products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Find(ctx context.Context, query ProductQuery) (*ProductPage, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	UpdateDetails(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *GORMProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

func (r *GORMProductRepository) Find(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	query = query.normalized()
	scope := query.apply(r.db.WithContext(ctx).Model(&models.Product{})).Session(&gorm.Session{})

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := utils.ApplyPagination(scope.Order(sortClauses[query.Sort]), query.PaginationParams).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	return &ProductPage{
		Items: products,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
		Pages: utils.TotalPages(total, query.Limit),
	}, nil
}

func (r *GORMProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Update replaces every stored column of product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.save(ctx, product, "id", "created_at")
}

// UpdateDetails replaces every stored column of product except its images,
// which stay as another writer may have left them.
func (r *GORMProductRepository) UpdateDetails(ctx context.Context, product *models.Product) error {
	return r.save(ctx, product, "id", "created_at", "primary_image", "gallery")
}

func (r *GORMProductRepository) save(ctx context.Context, product *models.Product, omit ...string) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit(omit...).Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GORMProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
