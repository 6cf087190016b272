package auth

import (
	"context"
	"testing"
	"time"

	"shopifly/internal/domain/model"
	"shopifly/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLoginUsecase(userRepo *UserRepoMock, rtRepo *RefreshTokenRepoMock) *LoginUsecase {
	return NewLoginUsecase(
		userRepo,
		rtRepo,
		&stubVerifier{correct: "correct-password"},
		&stubIssuer{token: "access-token"},
		&seqIDGen{ids: []string{"rt-1"}},
		&fixedClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)},
		14*24*time.Hour,
	)
}

func activeUser() *model.User {
	return &model.User{
		ID:           "user-1",
		Email:        "user@example.com",
		PasswordHash: "stored-hash",
		Role:         model.RoleUser,
		TokenVersion: 3,
		IsActive:     true,
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newLoginUsecase(userRepo, new(RefreshTokenRepoMock))

	userRepo.On("FindByEmail", mock.Anything, "nobody@example.com").
		Return(nil, repository.ErrUserNotFound)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// Test: パスワード不一致ではリフレッシュトークンを作らない
func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := newLoginUsecase(userRepo, rtRepo)

	userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(activeUser(), nil)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_InactiveUser(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newLoginUsecase(userRepo, new(RefreshTokenRepoMock))

	u := activeUser()
	u.IsActive = false
	userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(u, nil)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "correct-password",
	})
	assert.ErrorIs(t, err, ErrUserInactive)
}

// Test: 成功時はアクセストークン＋リフレッシュトークン（cookie用の平文はSideEffectで返す）
func TestLogin_Success(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := newLoginUsecase(userRepo, rtRepo)

	userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(activeUser(), nil)
	rtRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		//平文ではなくハッシュを保存している
		return rt.ID == "rt-1" && rt.UserID == "user-1" && len(rt.TokenHash) == 64
	})).Return(nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.LastLoginAt != nil
	})).Return(nil)

	out, side, err := uc.Execute(context.Background(), LoginInput{
		Email:     "user@example.com",
		Password:  "correct-password",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)

	assert.Equal(t, "access-token", out.Token.AccessToken)
	assert.Equal(t, 3, out.Token.TokenVersion)
	assert.Equal(t, 15*60, out.Token.ExpiresIn)
	assert.Empty(t, out.User.PasswordHash)
	assert.NotEmpty(t, side.PlainRefreshToken)

	//保存されたハッシュは平文のsha256
	assert.Equal(t, hashToken(side.PlainRefreshToken),
		rtRepo.Calls[0].Arguments.Get(1).(*model.RefreshToken).TokenHash)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
}
