package usecase

import (
	"context"
	"net/http"

	repo "shopifly/internal/repository"

	"github.com/shopspring/decimal"
)

// FavoriteUsecase は /favorites の業務ロジック。
type FavoriteUsecase struct {
	favoriteRepo repo.FavoriteRepository
	productRepo  repo.ProductRepository
}

func NewFavoriteUsecase(favoriteRepo repo.FavoriteRepository, productRepo repo.ProductRepository) *FavoriteUsecase {
	return &FavoriteUsecase{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

// 一覧は商品情報も付けて返す（表示用）
type FavoriteItemOutput struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"is_active"`
}

type FavoriteListOutput struct {
	Items []FavoriteItemOutput `json:"items"`
}

func (u *FavoriteUsecase) List(ctx context.Context, userID string) (FavoriteListOutput, error) {
	if userID == "" {
		return FavoriteListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	favs, err := u.favoriteRepo.ListByUserID(ctx, userID)
	if err != nil {
		return FavoriteListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]FavoriteItemOutput, 0, len(favs))
	for _, f := range favs {
		p, err := u.productRepo.FindByID(ctx, f.ProductID)
		if err == repo.ErrNotFound {
			//削除済み商品はスキップ
			continue
		}
		if err != nil {
			return FavoriteListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items = append(items, FavoriteItemOutput{
			ProductID: p.ID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			Price:     p.DiscountedPrice(),
			IsActive:  p.IsActive,
		})
	}

	return FavoriteListOutput{Items: items}, nil
}

// Add はお気に入り登録。既にあっても200（冪等）。
func (u *FavoriteUsecase) Add(ctx context.Context, userID string, productID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return NewHTTPError(http.StatusBadRequest, "invalid")
	}

	if err := u.favoriteRepo.Add(ctx, userID, productID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// Remove はお気に入り解除。無ければ404。
func (u *FavoriteUsecase) Remove(ctx context.Context, userID string, productID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	err := u.favoriteRepo.Remove(ctx, userID, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
