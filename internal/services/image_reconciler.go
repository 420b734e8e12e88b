// internal/services/image_reconciler.go
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/repositories"
)

// CleanupResult is the outcome of one best-effort asset deletion.
type CleanupResult struct {
	Asset models.AssetRef
	Err   error
}

func (r CleanupResult) Failed() bool {
	return r.Err != nil
}

// ImageReconciler keeps a product's image fields and the remote image store
// consistent. When the two disagree after a failure it leaves orphaned
// objects in the store rather than references to missing objects.
type ImageReconciler struct {
	repo   repositories.ProductRepository
	store  ImageStore
	logger *logrus.Logger
}

func NewImageReconciler(repo repositories.ProductRepository, store ImageStore, logger *logrus.Logger) *ImageReconciler {
	return &ImageReconciler{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// Create persists product with uploads as its images. The first upload
// becomes the primary image. If persisting fails every upload is deleted
// before the error is returned.
func (r *ImageReconciler) Create(ctx context.Context, product *models.Product, uploads models.AssetRefs) error {
	if len(uploads) == 0 {
		return NewValidationError("Please upload at least one product image")
	}

	product.Gallery = uploads.Unique()
	product.PrimaryImage = product.Gallery[0]

	if err := r.repo.Create(ctx, product); err != nil {
		r.Compensate(ctx, "create", uploads)
		return &PersistenceError{Op: "create", Err: err}
	}

	return nil
}

// Update loads product id, applies the non-image field changes through
// apply and, when uploads is non-empty, puts the uploads in front of the
// gallery in place of the previous primary image. Images that drop out of
// the gallery are deleted once the update is stored. Without uploads the
// stored image columns are left untouched.
func (r *ImageReconciler) Update(ctx context.Context, id uuid.UUID, apply func(*models.Product), uploads models.AssetRefs) (*models.Product, error) {
	product, err := r.repo.GetByID(ctx, id)
	if err != nil {
		r.Compensate(ctx, "update", uploads)
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, &NotFoundError{ID: id.String()}
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	previousPrimary := product.PrimaryImage
	previousGallery := append(models.AssetRefs(nil), product.Gallery...)

	if apply != nil {
		apply(product)
	}

	if len(uploads) > 0 {
		product.Gallery = MergeGallery(previousGallery, previousPrimary, uploads)
		product.PrimaryImage = product.Gallery[0]
	}

	save := r.repo.Update
	if len(uploads) == 0 {
		save = r.repo.UpdateDetails
	}
	if err := save(ctx, product); err != nil {
		r.Compensate(ctx, "update", uploads)
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, &NotFoundError{ID: id.String()}
		}
		return nil, &PersistenceError{Op: "update", Err: err}
	}

	if len(uploads) > 0 {
		previous := append(previousGallery, previousPrimary)
		orphaned := previous.Unique().Difference(product.Gallery)
		r.logCleanup(id, "update", r.DeleteAssets(ctx, orphaned))
	}

	return product, nil
}

// Delete removes product id and then every asset its gallery references.
// The record is removed first so a failed record delete never leaves the
// product pointing at deleted images; asset failures only leave orphans.
func (r *ImageReconciler) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return &NotFoundError{ID: id.String()}
		}
		return &PersistenceError{Op: "load", Err: err}
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return &NotFoundError{ID: id.String()}
		}
		return &PersistenceError{Op: "delete", Err: err}
	}

	assets := product.Gallery
	if !product.PrimaryImage.IsZero() {
		assets = append(assets, product.PrimaryImage)
	}
	r.logCleanup(id, "delete", r.DeleteAssets(ctx, assets.Unique()))

	return nil
}

// Compensate deletes the uploads of a request whose write failed.
func (r *ImageReconciler) Compensate(ctx context.Context, op string, uploads models.AssetRefs) {
	if len(uploads) == 0 {
		return
	}

	r.logger.WithFields(logrus.Fields{
		"operation": op,
		"assets":    len(uploads),
	}).Info("Removing images uploaded by failed request")

	r.logCleanup(uuid.Nil, op, r.DeleteAssets(ctx, uploads))
}

// DeleteAssets issues one deletion per asset concurrently and waits for all
// of them. A failure never cancels the others. Results keep the input order.
func (r *ImageReconciler) DeleteAssets(ctx context.Context, assets models.AssetRefs) []CleanupResult {
	results := make([]CleanupResult, len(assets))
	if len(assets) == 0 {
		return results
	}

	// The enclosing request may already be finished or cancelled.
	ctx = context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset models.AssetRef) {
			defer wg.Done()
			results[i] = CleanupResult{Asset: asset}
			if err := r.store.Delete(ctx, asset); err != nil {
				results[i].Err = &CleanupError{Asset: asset, Err: err}
			}
		}(i, asset)
	}
	wg.Wait()

	return results
}

func (r *ImageReconciler) logCleanup(productID uuid.UUID, op string, results []CleanupResult) {
	for _, res := range results {
		entry := r.logger.WithFields(logrus.Fields{
			"operation": op,
			"key":       res.Asset.Key,
		})
		if productID != uuid.Nil {
			entry = entry.WithField("product_id", productID.String())
		}
		if res.Failed() {
			entry.WithError(res.Err).Warn("Image cleanup failed; asset left orphaned")
			continue
		}
		entry.Debug("Deleted image from storage")
	}
}

// MergeGallery puts newImages in front of the previous gallery and drops the
// previous primary image. Other previous images keep their order.
func MergeGallery(previousGallery models.AssetRefs, previousPrimary models.AssetRef, newImages models.AssetRefs) models.AssetRefs {
	merged := make(models.AssetRefs, 0, len(newImages)+len(previousGallery))
	merged = append(merged, newImages...)
	merged = append(merged, previousGallery.Without(previousPrimary)...)
	return merged.Unique()
}
