package auth

import (
	"context"
	"errors"

	"shopifly/internal/repository"
)

// LogoutUsecaseはログアウト。
// リフレッシュトークンを無効化し、token_versionを上げて
// 発行済みアクセストークンも全部失効させる。
type LogoutUsecase struct {
	userRepo repository.UserRepository
	rtRepo   repository.RefreshTokenRepository
	clock    Clock
}

func NewLogoutUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	clock Clock,
) *LogoutUsecase {
	return &LogoutUsecase{
		userRepo: userRepo,
		rtRepo:   rtRepo,
		clock:    clock,
	}
}

func (u *LogoutUsecase) Execute(ctx context.Context, userID string, plainRefresh string) error {
	if userID == "" {
		return ErrRefreshTokenInvalid
	}

	//リフレッシュトークンを無効化（cookieが無くても処理は続ける）
	if plainRefresh != "" {
		token, err := u.rtRepo.FindByTokenHash(ctx, hashToken(plainRefresh))
		if err == nil && token.UserID == userID {
			if err := u.rtRepo.Revoke(ctx, token.ID, u.clock.Now()); err != nil &&
				!errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return err
			}
		} else if err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return err
		}
	}

	//全アクセストークン失効
	if err := u.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrRefreshTokenInvalid
		}
		return err
	}

	return nil
}
