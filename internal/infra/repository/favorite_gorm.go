package repository

import (
	"context"

	"shopifly/internal/domain/model"
	repo "shopifly/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type favoriteGormRepository struct {
	db *gorm.DB
}

func NewFavoriteGormRepository(db *gorm.DB) repo.FavoriteRepository {
	return &favoriteGormRepository{db: db}
}

// ユーザーのお気に入り一覧（新しい順）
func (r *favoriteGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Favorite, error) {
	var favs []model.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&favs).Error
	if err != nil {
		return []model.Favorite{}, err
	}
	return favs, nil
}

// 追加。同じ（user, product）が既にあれば何もしない
func (r *favoriteGormRepository) Add(ctx context.Context, userID string, productID string) error {
	fav := model.Favorite{
		UserID:    userID,
		ProductID: productID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&fav).Error
}

// 削除。無ければErrNotFound
func (r *favoriteGormRepository) Remove(ctx context.Context, userID string, productID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.Favorite{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *favoriteGormRepository) Exists(ctx context.Context, userID string, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
