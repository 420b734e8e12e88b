package services_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unique-collection/catalog/internal/config"
	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/repositories"
	"github.com/unique-collection/catalog/internal/services"
)

type publishedEvent struct {
	Type      string
	ProductID uuid.UUID
	Product   *models.Product
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishProductEvent(_ context.Context, eventType string, id uuid.UUID, product *models.Product) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, ProductID: id, Product: product})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Storage: config.StorageConfig{
			UploadFolder: "clothing-store",
			Timeout:      10 * time.Second,
			MaxFileSize:  5 * 1024 * 1024,
			MaxFiles:     5,
		},
		Catalog: config.CatalogConfig{
			TransformOnDetail: true,
			TransformOnList:   false,
			DefaultPageSize:   12,
		},
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return db
}

type CatalogServiceTestSuite struct {
	suite.Suite
	repo      *repositories.GORMProductRepository
	store     *recordingImageStore
	publisher *recordingPublisher
	service   *services.CatalogService
	ctx       context.Context
}

func (suite *CatalogServiceTestSuite) SetupTest() {
	log, _ := logtest.NewNullLogger()

	suite.repo = repositories.NewGORMProductRepository(openTestDB(suite.T()))
	suite.store = newRecordingImageStore()
	suite.publisher = &recordingPublisher{}
	suite.service = services.NewCatalogService(suite.repo, suite.store, suite.publisher, testConfig(), log)
	suite.ctx = context.Background()
}

func validInput() services.ProductInput {
	return services.ProductInput{
		Title:       "Oversized Hoodie",
		Description: "Brushed fleece",
		Category:    models.CategoryHoodie,
		Price:       60,
		Sizes:       []models.Size{models.SizeM, models.SizeL},
	}
}

func (suite *CatalogServiceTestSuite) TestCreateProductRoundTrip() {
	product, err := suite.service.CreateProduct(suite.ctx, validInput(),
		[]services.ImageUpload{pngUpload("a.png"), pngUpload("b.png"), pngUpload("c.png")})
	suite.Require().NoError(err)

	stored, err := suite.service.GetProductForEdit(suite.ctx, product.ID)
	suite.Require().NoError(err)

	suite.Equal(keys(assets("a.png", "b.png", "c.png")), keys(stored.Gallery))
	suite.Equal(asset("a.png").Key, stored.PrimaryImage.Key)
	suite.True(stored.HasConsistentImages())
	suite.Equal(models.SizeSet{"M", "L"}, stored.Sizes)
	suite.Equal([]string{services.EventProductCreated}, suite.publisher.types())
}

func (suite *CatalogServiceTestSuite) TestCreateProductRejectsBeforeUpload() {
	input := validInput()
	input.Sizes = nil

	_, err := suite.service.CreateProduct(suite.ctx, input, []services.ImageUpload{pngUpload("a.png")})

	var validationErr *services.ValidationError
	suite.Require().ErrorAs(err, &validationErr)
	suite.Equal("Please fill in all required fields and select at least one size", validationErr.Message)
	suite.Empty(suite.store.uploaded)
}

func (suite *CatalogServiceTestSuite) TestCreateProductRejectsUnstorableAmounts() {
	tests := []struct {
		name  string
		apply func(*services.ProductInput)
		field string
	}{
		{"infinite price", func(in *services.ProductInput) { in.Price = math.Inf(1) }, "price"},
		{"not a number price", func(in *services.ProductInput) { in.Price = math.NaN() }, "price"},
		{"price beyond column", func(in *services.ProductInput) { in.Price = 1e300 }, "price"},
		{"infinite discount", func(in *services.ProductInput) { in.DiscountAmount = math.Inf(1) }, "discountAmount"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			input := validInput()
			tt.apply(&input)

			_, err := suite.service.CreateProduct(suite.ctx, input, []services.ImageUpload{pngUpload("a.png")})

			var validationErr *services.ValidationError
			suite.Require().ErrorAs(err, &validationErr)
			var invalid []string
			for _, fe := range validationErr.Fields {
				invalid = append(invalid, fe.Field)
			}
			suite.Contains(invalid, tt.field)
			suite.Empty(suite.store.uploaded)
		})
	}

	all, err := suite.service.ListAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(all)
}

func (suite *CatalogServiceTestSuite) TestCreateProductRequiresImage() {
	_, err := suite.service.CreateProduct(suite.ctx, validInput(), nil)

	var validationErr *services.ValidationError
	suite.Require().ErrorAs(err, &validationErr)
	suite.Equal("Please upload at least one product image", validationErr.Message)
}

func (suite *CatalogServiceTestSuite) TestCreateProductRejectsNonImage() {
	upload := services.ImageUpload{Filename: "notes.png", ContentType: "image/png", Data: []byte("plain text")}

	_, err := suite.service.CreateProduct(suite.ctx, validInput(), []services.ImageUpload{upload})

	suite.True(services.IsValidation(err))
	suite.Empty(suite.store.uploaded)
}

func (suite *CatalogServiceTestSuite) TestCreateProductUploadFailureCompensates() {
	suite.store.failUploadOn = "c.png"

	_, err := suite.service.CreateProduct(suite.ctx, validInput(),
		[]services.ImageUpload{pngUpload("a.png"), pngUpload("b.png"), pngUpload("c.png")})

	suite.True(services.IsUpload(err))
	suite.ElementsMatch(keys(assets("a.png", "b.png")), suite.store.deletedKeys())

	all, err := suite.service.ListAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(all)
}

func (suite *CatalogServiceTestSuite) TestUpdateProductReplacesPrimary() {
	created, err := suite.service.CreateProduct(suite.ctx, validInput(),
		[]services.ImageUpload{pngUpload("a.png"), pngUpload("b.png")})
	suite.Require().NoError(err)

	input := validInput()
	input.Price = 75
	updated, err := suite.service.UpdateProduct(suite.ctx, created.ID, input,
		[]services.ImageUpload{pngUpload("c.png"), pngUpload("d.png")})
	suite.Require().NoError(err)

	suite.Equal(keys(assets("c.png", "d.png", "b.png")), keys(updated.Gallery))
	suite.Equal([]string{asset("a.png").Key}, suite.store.deletedKeys())

	stored, err := suite.service.GetProductForEdit(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal(75.0, stored.Price)
	suite.Equal(asset("c.png").Key, stored.PrimaryImage.Key)
	suite.True(stored.HasConsistentImages())
}

func (suite *CatalogServiceTestSuite) TestUpdateProductNotFoundUploadsNothing() {
	_, err := suite.service.UpdateProduct(suite.ctx, uuid.New(), validInput(),
		[]services.ImageUpload{pngUpload("c.png")})

	suite.True(services.IsNotFound(err))
	suite.Empty(suite.store.uploaded)
}

func (suite *CatalogServiceTestSuite) TestDeleteProductTwice() {
	created, err := suite.service.CreateProduct(suite.ctx, validInput(),
		[]services.ImageUpload{pngUpload("a.png"), pngUpload("b.png")})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.DeleteProduct(suite.ctx, created.ID))
	suite.ElementsMatch(keys(assets("a.png", "b.png")), suite.store.deletedKeys())

	err = suite.service.DeleteProduct(suite.ctx, created.ID)
	suite.True(services.IsNotFound(err))
	suite.Equal([]string{services.EventProductCreated, services.EventProductDeleted}, suite.publisher.types())
}

func (suite *CatalogServiceTestSuite) TestGetProductProjectsDetailURLs() {
	created, err := suite.service.CreateProduct(suite.ctx, validInput(),
		[]services.ImageUpload{pngUpload("a.png"), pngUpload("b.png")})
	suite.Require().NoError(err)

	product, err := suite.service.GetProduct(suite.ctx, created.ID)
	suite.Require().NoError(err)

	suite.Equal(asset("a.png").URL+"?w=800", product.PrimaryImage.URL)
	suite.Equal(asset("b.png").URL+"?w=400", product.Gallery[1].URL)

	stored, err := suite.service.GetProductForEdit(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal(asset("a.png").URL, stored.PrimaryImage.URL)
}

func (suite *CatalogServiceTestSuite) TestListProductsLeavesURLsWhenListTransformOff() {
	_, err := suite.service.CreateProduct(suite.ctx, validInput(), []services.ImageUpload{pngUpload("a.png")})
	suite.Require().NoError(err)

	page, err := suite.service.ListProducts(suite.ctx, repositories.ProductQuery{})
	suite.Require().NoError(err)

	suite.Require().Len(page.Items, 1)
	suite.Equal(asset("a.png").URL, page.Items[0].PrimaryImage.URL)
	suite.Equal(12, page.Limit)
}

func (suite *CatalogServiceTestSuite) TestPublishFailureDoesNotFailWrite() {
	suite.publisher.err = errors.New("broker down")

	product, err := suite.service.CreateProduct(suite.ctx, validInput(), []services.ImageUpload{pngUpload("a.png")})

	suite.NoError(err)
	suite.NotNil(product)
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}

func TestCatalogService_TooManyImages(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	store := newRecordingImageStore()
	service := services.NewCatalogService(new(MockProductRepository), store, nil, testConfig(), log)

	images := make([]services.ImageUpload, 6)
	for i := range images {
		images[i] = pngUpload("img.png")
	}

	_, err := service.CreateProduct(context.Background(), validInput(), images)

	assert.True(t, services.IsValidation(err))
	assert.Empty(t, store.uploaded)
}
