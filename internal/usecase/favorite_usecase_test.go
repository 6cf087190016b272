package usecase

import (
	"context"
	"net/http"
	"testing"

	"shopifly/internal/domain/model"
	repo "shopifly/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Test: 一覧は削除済み商品をスキップし、割引後価格を返す
func TestFavoriteUsecase_List(t *testing.T) {
	fRepo := new(FavoriteRepoMock)
	pRepo := new(ProductRepoMock)
	uc := NewFavoriteUsecase(fRepo, pRepo)

	userID := uuid.NewString()
	keep := uuid.NewString()
	gone := uuid.NewString()

	fRepo.On("ListByUserID", mock.Anything, userID).Return([]model.Favorite{
		{UserID: userID, ProductID: keep},
		{UserID: userID, ProductID: gone},
	}, nil)
	pRepo.On("FindByID", mock.Anything, keep).Return(model.Product{
		ID:           keep,
		Name:         "Coffee",
		Price:        decimal.RequireFromString("100"),
		DiscountRate: 10,
		IsActive:     true,
	}, nil)
	pRepo.On("FindByID", mock.Anything, gone).Return(model.Product{}, repo.ErrNotFound)

	out, err := uc.List(context.Background(), userID)
	require.NoError(t, err)

	require.Equal(t, 1, len(out.Items))
	assert.Equal(t, keep, out.Items[0].ProductID)
	assert.True(t, out.Items[0].Price.Equal(decimal.RequireFromString("90")))
}

// Test: 登録は冪等（既にあってもエラーにしない）
func TestFavoriteUsecase_Add_Idempotent(t *testing.T) {
	fRepo := new(FavoriteRepoMock)
	pRepo := new(ProductRepoMock)
	uc := NewFavoriteUsecase(fRepo, pRepo)

	userID := uuid.NewString()
	productID := uuid.NewString()

	pRepo.On("FindByID", mock.Anything, productID).
		Return(model.Product{ID: productID, IsActive: true}, nil)
	fRepo.On("Add", mock.Anything, userID, productID).Return(nil)

	require.NoError(t, uc.Add(context.Background(), userID, productID))
	require.NoError(t, uc.Add(context.Background(), userID, productID))

	fRepo.AssertNumberOfCalls(t, "Add", 2)
}

// Test: 非公開商品は登録できない
func TestFavoriteUsecase_Add_InactiveRejected(t *testing.T) {
	fRepo := new(FavoriteRepoMock)
	pRepo := new(ProductRepoMock)
	uc := NewFavoriteUsecase(fRepo, pRepo)

	productID := uuid.NewString()
	pRepo.On("FindByID", mock.Anything, productID).
		Return(model.Product{ID: productID, IsActive: false}, nil)

	err := uc.Add(context.Background(), uuid.NewString(), productID)
	assertHTTPError(t, err, http.StatusBadRequest, "invalid")

	fRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

// Test: 未登録の解除は404
func TestFavoriteUsecase_Remove_NotFound(t *testing.T) {
	fRepo := new(FavoriteRepoMock)
	uc := NewFavoriteUsecase(fRepo, new(ProductRepoMock))

	userID := uuid.NewString()
	productID := uuid.NewString()

	fRepo.On("Remove", mock.Anything, userID, productID).Return(repo.ErrNotFound)

	err := uc.Remove(context.Background(), userID, productID)
	assertHTTPError(t, err, http.StatusNotFound, "not found")
}

func TestFavoriteUsecase_Remove_Success(t *testing.T) {
	fRepo := new(FavoriteRepoMock)
	uc := NewFavoriteUsecase(fRepo, new(ProductRepoMock))

	userID := uuid.NewString()
	productID := uuid.NewString()

	fRepo.On("Remove", mock.Anything, userID, productID).Return(nil)

	require.NoError(t, uc.Remove(context.Background(), userID, productID))
	fRepo.AssertExpectations(t)
}
