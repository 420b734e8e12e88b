package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/repositories"
	"github.com/unique-collection/catalog/internal/utils"
)

type ProductRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo *repositories.GORMProductRepository
	ctx  context.Context
}

func (suite *ProductRepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(&models.Product{}))

	suite.db = db
	suite.repo = repositories.NewGORMProductRepository(db)
	suite.ctx = context.Background()
}

func (suite *ProductRepositoryTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (suite *ProductRepositoryTestSuite) seed(title string, category models.Category, price float64, sizes ...string) *models.Product {
	key := fmt.Sprintf("clothing-store/%s.png", uuid.NewString())
	ref := models.AssetRef{Key: key, URL: "https://cdn.example.com/" + key}
	p := &models.Product{
		Title:        title,
		Description:  title + " description",
		Category:     category,
		Price:        price,
		Sizes:        models.SizeSet(sizes),
		PrimaryImage: ref,
		Gallery:      models.AssetRefs{ref},
	}
	suite.Require().NoError(suite.repo.Create(suite.ctx, p))
	// Distinct creation times keep newest-first ordering deterministic.
	time.Sleep(2 * time.Millisecond)
	return p
}

func (suite *ProductRepositoryTestSuite) TestCreateAndGetByID() {
	created := suite.seed("Denim Jacket", models.CategoryJeans, 89.5, "M", "L")

	got, err := suite.repo.GetByID(suite.ctx, created.ID)
	suite.Require().NoError(err)

	suite.Equal("Denim Jacket", got.Title)
	suite.Equal(models.SizeSet{"M", "L"}, got.Sizes)
	suite.Equal(created.PrimaryImage, got.PrimaryImage)
	suite.Equal(created.Gallery, got.Gallery)
	suite.True(got.HasConsistentImages())
}

func (suite *ProductRepositoryTestSuite) TestGetByIDNotFound() {
	_, err := suite.repo.GetByID(suite.ctx, uuid.New())
	suite.ErrorIs(err, repositories.ErrProductNotFound)
}

func (suite *ProductRepositoryTestSuite) TestPaginationPageTwo() {
	for i := 0; i < 25; i++ {
		suite.seed(fmt.Sprintf("Tee %02d", i), models.CategoryTShirts, 20, "S")
	}

	page, err := suite.repo.Find(suite.ctx, repositories.ProductQuery{
		PaginationParams: utils.PaginationParams{Page: 2, Limit: 12},
	})
	suite.Require().NoError(err)

	suite.Len(page.Items, 12)
	suite.Equal(int64(25), page.Total)
	suite.Equal(3, page.Pages)
	suite.Equal(2, page.Page)

	last, err := suite.repo.Find(suite.ctx, repositories.ProductQuery{
		PaginationParams: utils.PaginationParams{Page: 3, Limit: 12},
	})
	suite.Require().NoError(err)
	suite.Len(last.Items, 1)
}

func (suite *ProductRepositoryTestSuite) TestPriceRangeFilter() {
	suite.seed("Cheap", models.CategoryShorts, 10)
	suite.seed("Mid", models.CategoryShorts, 50)
	suite.seed("Edge", models.CategoryShorts, 100)
	suite.seed("Pricey", models.CategoryShorts, 150)

	minPrice, maxPrice := 50.0, 100.0
	page, err := suite.repo.Find(suite.ctx, repositories.ProductQuery{
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Sort:     repositories.SortPriceAsc,
	})
	suite.Require().NoError(err)

	suite.Require().Len(page.Items, 2)
	for _, p := range page.Items {
		suite.GreaterOrEqual(p.Price, 50.0)
		suite.LessOrEqual(p.Price, 100.0)
	}
	suite.Equal("Mid", page.Items[0].Title)
	suite.Equal("Edge", page.Items[1].Title)
}

func (suite *ProductRepositoryTestSuite) TestFilters() {
	hoodie := suite.seed("Zip Hoodie", models.CategoryHoodie, 70, "XS", "M")
	suite.seed("Cargo Shorts", models.CategoryShorts, 35, "S", "XXL")
	suite.seed("Graphic Tee", models.CategoryTShirts, 25, "XL")

	tests := []struct {
		name  string
		query repositories.ProductQuery
		want  []string
	}{
		{"category", repositories.ProductQuery{Category: models.CategoryShorts}, []string{"Cargo Shorts"}},
		{"size does not match longer size", repositories.ProductQuery{Size: models.SizeS}, []string{"Cargo Shorts"}},
		{"size", repositories.ProductQuery{Size: models.SizeXL}, []string{"Graphic Tee"}},
		{"search title", repositories.ProductQuery{Search: "HOODIE"}, []string{"Zip Hoodie"}},
		{"search description", repositories.ProductQuery{Search: "tee description"}, []string{"Graphic Tee"}},
		{"exclude", repositories.ProductQuery{ExcludeIDs: []uuid.UUID{hoodie.ID}, Sort: repositories.SortPriceAsc},
			[]string{"Graphic Tee", "Cargo Shorts"}},
		{"price desc", repositories.ProductQuery{Sort: repositories.SortPriceDesc},
			[]string{"Zip Hoodie", "Cargo Shorts", "Graphic Tee"}},
		{"newest", repositories.ProductQuery{}, []string{"Graphic Tee", "Cargo Shorts", "Zip Hoodie"}},
		{"oldest", repositories.ProductQuery{Sort: repositories.SortOldest},
			[]string{"Zip Hoodie", "Cargo Shorts", "Graphic Tee"}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			page, err := suite.repo.Find(suite.ctx, tt.query)
			suite.Require().NoError(err)

			var titles []string
			for _, p := range page.Items {
				titles = append(titles, p.Title)
			}
			suite.Equal(tt.want, titles)
			suite.Equal(int64(len(tt.want)), page.Total)
		})
	}
}

func (suite *ProductRepositoryTestSuite) TestUpdateReplacesFields() {
	p := suite.seed("Chinos", models.CategoryJeans, 55, "M")

	next := models.AssetRef{Key: "clothing-store/new.png", URL: "https://cdn.example.com/clothing-store/new.png"}
	p.Title = "Slim Chinos"
	p.Sizes = models.SizeSet{"S", "M"}
	p.PrimaryImage = next
	p.Gallery = models.AssetRefs{next}
	p.Discount = models.Discount{Amount: 5, Percentage: 10}
	suite.Require().NoError(suite.repo.Update(suite.ctx, p))

	got, err := suite.repo.GetByID(suite.ctx, p.ID)
	suite.Require().NoError(err)
	suite.Equal("Slim Chinos", got.Title)
	suite.Equal(models.SizeSet{"S", "M"}, got.Sizes)
	suite.Equal(next, got.PrimaryImage)
	suite.Equal(10.0, got.Discount.Percentage)
}

func (suite *ProductRepositoryTestSuite) TestUpdateDetailsKeepsStoredImages() {
	p := suite.seed("Cargo Shorts", models.CategoryShorts, 35, "M")

	// Another writer replaces the images after this snapshot was loaded.
	stale, err := suite.repo.GetByID(suite.ctx, p.ID)
	suite.Require().NoError(err)
	next := models.AssetRef{Key: "clothing-store/other.png", URL: "https://cdn.example.com/clothing-store/other.png"}
	p.PrimaryImage = next
	p.Gallery = models.AssetRefs{next}
	suite.Require().NoError(suite.repo.Update(suite.ctx, p))

	stale.Title = "Cargo Shorts II"
	stale.Price = 40
	suite.Require().NoError(suite.repo.UpdateDetails(suite.ctx, stale))

	got, err := suite.repo.GetByID(suite.ctx, p.ID)
	suite.Require().NoError(err)
	suite.Equal("Cargo Shorts II", got.Title)
	suite.Equal(40.0, got.Price)
	suite.Equal(next, got.PrimaryImage)
	suite.Equal(models.AssetRefs{next}, got.Gallery)
}

func (suite *ProductRepositoryTestSuite) TestUpdateDetailsMissingProduct() {
	p := &models.Product{Title: "Ghost"}
	p.ID = uuid.New()

	suite.ErrorIs(suite.repo.UpdateDetails(suite.ctx, p), repositories.ErrProductNotFound)
}

func (suite *ProductRepositoryTestSuite) TestUpdateMissingProduct() {
	p := &models.Product{Title: "Ghost"}
	p.ID = uuid.New()

	err := suite.repo.Update(suite.ctx, p)
	suite.ErrorIs(err, repositories.ErrProductNotFound)
}

func (suite *ProductRepositoryTestSuite) TestDeleteTwice() {
	p := suite.seed("Polo", models.CategoryShirts, 30, "L")

	suite.Require().NoError(suite.repo.Delete(suite.ctx, p.ID))
	suite.ErrorIs(suite.repo.Delete(suite.ctx, p.ID), repositories.ErrProductNotFound)
}

func (suite *ProductRepositoryTestSuite) TestFindAllNewestFirst() {
	suite.seed("First", models.CategoryShirts, 30)
	suite.seed("Second", models.CategoryShirts, 30)

	all, err := suite.repo.FindAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	suite.Equal("Second", all[0].Title)
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}

func TestParseExcludeIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids := repositories.ParseExcludeIDs([]string{a.String() + ", not-an-id", b.String(), ""})

	assert.Equal(t, []uuid.UUID{a, b}, ids)
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, repositories.SortPriceAsc, repositories.ParseSortOrder("price-asc"))
	assert.Equal(t, repositories.SortOldest, repositories.ParseSortOrder("oldest"))
	assert.Equal(t, repositories.SortNewest, repositories.ParseSortOrder(""))
	assert.Equal(t, repositories.SortNewest, repositories.ParseSortOrder("rating"))
	assert.Equal(t, repositories.SortPriceDesc, repositories.ParseSortOrder("price-desc"))
}
