package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Public: List / Detail
// =====================

func TestProductUsecase_ListPublicProducts_InvalidPage(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertErrContains(t, err, "invalid page")
}

func TestProductUsecase_ListPublicProducts_InvalidLimit(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 101})
	assertErrContains(t, err, "invalid limit")
}

func TestProductUsecase_ListPublicProducts_PriceRangeCheck(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock))

	min := int64(500)
	max := int64(100)
	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Page: 1, Limit: 20, MinPrice: &min, MaxPrice: &max,
	})
	assertErrContains(t, err, "min_price must be <= max_price")
}

func TestProductUsecase_ListPublicProducts_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	in := usecase.ListProductsInput{Page: 1, Limit: 20, Q: "coffee", Sort: "new"}
	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "coffee", Sort: "new"}

	items := []model.Product{
		{ID: 1, Name: "A", IsActive: true},
	}
	pRepo.On("ListPublic", mock.Anything, q).Return(items, int64(1), nil)

	out, err := uc.ListPublicProducts(ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 20, out.Limit)
	assert.Equal(t, 1, len(out.Items))

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_GetProductDetail_NotFound_WhenInactive(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: false}, nil)

	_, err := uc.GetProductDetail(ctx, 1)
	assertErrContains(t, err, "not found")
}

func TestProductUsecase_GetProductDetail_NotFound_WhenRepoNotFound(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.GetProductDetail(ctx, 99)
	assertErrContains(t, err, "not found")
}

func TestProductUsecase_GetProductDetail_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: true}, nil)

	p, err := uc.GetProductDetail(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	pRepo.AssertExpectations(t)
}

// =====================
// Admin: Product CRUD
// =====================

func TestProductUsecase_AdminCreateProduct_Unauthorized(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock))

	_, err := uc.AdminCreateProduct(context.Background(), 0, usecase.AdminSaveProductInput{Name: "x", Price: 1})
	assertErrContains(t, err, "unauthorized")
}

func TestProductUsecase_AdminCreateProduct_NameRequired(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock))

	_, err := uc.AdminCreateProduct(context.Background(), 1, usecase.AdminSaveProductInput{Name: " ", Price: 1})
	assertErrContains(t, err, "name required")
}

func TestProductUsecase_AdminCreateProduct_DuplicateVariantID(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock))

	_, err := uc.AdminCreateProduct(context.Background(), 1, usecase.AdminSaveProductInput{
		Name:  "Coffee",
		Price: 100,
		Variants: []usecase.VariantInput{
			{ID: "size-m", Name: "M", Stock: 5},
			{ID: "size-m", Name: "M again", Stock: 3},
		},
	})
	assertErrContains(t, err, "duplicate variant id")
}

func TestProductUsecase_AdminCreateProduct_NegativeVariantStock(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock))

	_, err := uc.AdminCreateProduct(context.Background(), 1, usecase.AdminSaveProductInput{
		Name:  "Coffee",
		Price: 100,
		Variants: []usecase.VariantInput{
			{ID: "size-m", Name: "M", Stock: -1},
		},
	})
	assertErrContains(t, err, "variant stock must be >= 0")
}

func TestProductUsecase_AdminCreateProduct_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Coffee" && p.Price == 100 &&
			len(p.Variants) == 1 && p.Variants[0].ID == "size-m" && p.Variants[0].Stock == 10
	})).Return(model.Product{ID: 123}, nil)

	id, err := uc.AdminCreateProduct(ctx, 1, usecase.AdminSaveProductInput{
		Name:  " Coffee ",
		Price: 100,
		Variants: []usecase.VariantInput{
			{ID: "size-m", Name: "M", Stock: 10},
		},
		IsActive: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(123), id)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("Update", mock.Anything, mock.AnythingOfType("model.Product")).Return(repo.ErrNotFound)

	err := uc.AdminUpdateProduct(ctx, 1, 999, usecase.AdminSaveProductInput{
		Name:  "X",
		Price: 1,
	})
	assertErrContains(t, err, "not found")
}

func TestProductUsecase_AdminDeleteProduct_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("SoftDelete", mock.Anything, int64(1)).Return(nil)

	err := uc.AdminDeleteProduct(ctx, 1, 1)
	assert.NoError(t, err)

	pRepo.AssertExpectations(t)
}

// =====================
// Admin: variant在庫更新
// =====================

func TestProductUsecase_AdminSetVariantStock_NegativeStock(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock))

	err := uc.AdminSetVariantStock(context.Background(), 1, 1, "size-m", -1)
	assertErrContains(t, err, "stock must be >= 0")
}

func TestProductUsecase_AdminSetVariantStock_UnknownVariant(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID:       10,
		Variants: model.VariantList{{ID: "size-m", Name: "M", Stock: 5}},
	}, nil)

	err := uc.AdminSetVariantStock(ctx, 1, 10, "size-xl", 3)
	assertErrContains(t, err, "not found")

	pRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductUsecase_AdminSetVariantStock_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10,
		Variants: model.VariantList{
			{ID: "size-m", Name: "M", Stock: 5},
			{ID: "size-l", Name: "L", Stock: 2},
		},
	}, nil)

	pRepo.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		// 対象variantだけ更新され、他は触らない
		return p.ID == 10 && p.Variants[0].Stock == 12 && p.Variants[1].Stock == 2
	})).Return(nil)

	err := uc.AdminSetVariantStock(ctx, 1, 10, "size-m", 12)
	assert.NoError(t, err)

	pRepo.AssertExpectations(t)
}
