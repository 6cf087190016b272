package auth

import (
	"context"
	"errors"
	"time"

	"shopifly/internal/domain/model"
	"shopifly/internal/repository"
)

// 期限切れ・使用済み・取り消し済みなど
var ErrRefreshTokenInvalid = errors.New("refresh token invalid")

type RefreshResult struct {
	Token             JwtAccessToken
	PlainRefreshToken string //ローテーション後の新トークン
}

// RefreshUsecaseはリフレッシュトークンのローテーション。
// 古いトークンは使用済みにして、新しいトークンとアクセストークンを返す。
type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

func (u *RefreshUsecase) Execute(ctx context.Context, plainRefresh string, userAgent string) (RefreshResult, error) {
	var out RefreshResult

	if plainRefresh == "" {
		return out, ErrRefreshTokenInvalid
	}

	token, err := u.rtRepo.FindByTokenHash(ctx, hashToken(plainRefresh))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, ErrRefreshTokenInvalid
		}
		return out, err
	}

	now := u.clock.Now()

	//使用済み・無効・期限切れは拒否
	if token.UsedAt != nil || token.RevokedAt != nil || now.After(token.ExpiresAt) {
		return out, ErrRefreshTokenInvalid
	}

	user, err := u.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrRefreshTokenInvalid
		}
		return out, err
	}
	if !user.IsActive {
		return out, ErrUserInactive
	}

	//古いトークンを使用済みにする（ローテーション）
	if err := u.rtRepo.MarkUsed(ctx, token.ID, now); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			//並行リクエストに先を越された
			return out, ErrRefreshTokenInvalid
		}
		return out, err
	}

	//新しいリフレッシュトークン
	newPlain, err := generateSecureToken(32)
	if err != nil {
		return out, err
	}

	newToken := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashToken(newPlain),
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.refreshTTL),
	}
	if err := u.rtRepo.Create(ctx, newToken); err != nil {
		return out, err
	}

	//新しいアクセストークン
	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, err
	}

	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	out.PlainRefreshToken = newPlain
	return out, nil
}
