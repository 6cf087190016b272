package repository

import (
	"context"

	"shopifly/internal/domain/model"
)

// お気に入りを保存・取得する窓口
type FavoriteRepository interface {
	//ユーザーのお気に入り一覧（作成の新しい順）
	ListByUserID(ctx context.Context, userID string) ([]model.Favorite, error)

	//追加。既にあれば何もしない（冪等）
	Add(ctx context.Context, userID string, productID string) error

	//削除。無ければErrNotFound
	Remove(ctx context.Context, userID string, productID string) error

	//登録済みかどうか
	Exists(ctx context.Context, userID string, productID string) (bool, error)
}
