package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/repositories"
	"github.com/unique-collection/catalog/internal/services"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Find(ctx context.Context, query repositories.ProductQuery) (*repositories.ProductPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.ProductPage), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateDetails(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingImageStore records every call and fails on demand.
type recordingImageStore struct {
	mu           sync.Mutex
	uploaded     []models.AssetRef
	deleted      []string
	failUploadOn string
	failDelete   map[string]error
}

func newRecordingImageStore() *recordingImageStore {
	return &recordingImageStore{failDelete: make(map[string]error)}
}

func (s *recordingImageStore) Upload(_ context.Context, image services.ImageUpload) (models.AssetRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if image.Filename == s.failUploadOn {
		return models.AssetRef{}, errors.New("remote store unavailable")
	}
	ref := asset(image.Filename)
	s.uploaded = append(s.uploaded, ref)
	return ref, nil
}

func (s *recordingImageStore) Delete(_ context.Context, ref models.AssetRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, ref.Key)
	if err, ok := s.failDelete[ref.Key]; ok {
		return err
	}
	return nil
}

func (s *recordingImageStore) TransformURL(ref models.AssetRef, opts services.TransformOptions) string {
	return fmt.Sprintf("%s?w=%d", ref.URL, opts.Width)
}

func (s *recordingImageStore) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func asset(name string) models.AssetRef {
	return models.AssetRef{
		Key: "clothing-store/" + name,
		URL: "https://cdn.example.com/clothing-store/" + name,
	}
}

func assets(names ...string) models.AssetRefs {
	refs := make(models.AssetRefs, 0, len(names))
	for _, n := range names {
		refs = append(refs, asset(n))
	}
	return refs
}

func keys(refs models.AssetRefs) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Key)
	}
	return out
}

// pngBytes is the smallest content the image sniffer accepts as PNG.
func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
}

func pngUpload(name string) services.ImageUpload {
	return services.ImageUpload{Filename: name, ContentType: "image/png", Data: pngBytes()}
}

func existingProduct(id uuid.UUID, primary string, gallery ...string) *models.Product {
	p := &models.Product{
		Title:        "Linen Shirt",
		Description:  "Relaxed fit",
		Category:     models.CategoryShirts,
		Price:        45,
		Sizes:        models.SizeSet{"M", "L"},
		PrimaryImage: asset(primary),
		Gallery:      assets(gallery...),
	}
	p.ID = id
	return p
}
