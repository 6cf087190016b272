package auth

import (
	"context"
	"testing"
	"time"

	"shopifly/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLogoutUsecase(userRepo *UserRepoMock, rtRepo *RefreshTokenRepoMock) *LogoutUsecase {
	return NewLogoutUsecase(userRepo, rtRepo,
		&fixedClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)})
}

func TestLogout_RevokesTokenAndBumpsVersion(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := newLogoutUsecase(userRepo, rtRepo)

	rtRepo.On("FindByTokenHash", mock.Anything, hashToken("old-refresh")).
		Return(storedToken(), nil)
	rtRepo.On("Revoke", mock.Anything, "rt-1", mock.Anything).Return(nil)
	userRepo.On("IncrementTokenVersion", mock.Anything, "user-1").Return(nil)

	err := uc.Execute(context.Background(), "user-1", "old-refresh")
	require.NoError(t, err)

	rtRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

// Test: cookieが無くてもtoken_versionは上げる
func TestLogout_WithoutRefreshCookie(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := newLogoutUsecase(userRepo, rtRepo)

	userRepo.On("IncrementTokenVersion", mock.Anything, "user-1").Return(nil)

	err := uc.Execute(context.Background(), "user-1", "")
	require.NoError(t, err)

	rtRepo.AssertNotCalled(t, "FindByTokenHash", mock.Anything, mock.Anything)
	rtRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

// Test: 他人のトークンは取り消さない
func TestLogout_ForeignTokenNotRevoked(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := newLogoutUsecase(userRepo, rtRepo)

	token := storedToken()
	token.UserID = "someone-else"
	rtRepo.On("FindByTokenHash", mock.Anything, mock.Anything).Return(token, nil)
	userRepo.On("IncrementTokenVersion", mock.Anything, "user-1").Return(nil)

	err := uc.Execute(context.Background(), "user-1", "old-refresh")
	require.NoError(t, err)

	rtRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogout_TokenAlreadyGone(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := newLogoutUsecase(userRepo, rtRepo)

	rtRepo.On("FindByTokenHash", mock.Anything, mock.Anything).
		Return(nil, repository.ErrRefreshTokenNotFound)
	userRepo.On("IncrementTokenVersion", mock.Anything, "user-1").Return(nil)

	err := uc.Execute(context.Background(), "user-1", "old-refresh")
	assert.NoError(t, err)
}

func TestLogout_UnknownUser(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newLogoutUsecase(userRepo, new(RefreshTokenRepoMock))

	userRepo.On("IncrementTokenVersion", mock.Anything, "ghost").
		Return(repository.ErrUserNotFound)

	err := uc.Execute(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestLogout_EmptyUserID(t *testing.T) {
	uc := newLogoutUsecase(new(UserRepoMock), new(RefreshTokenRepoMock))

	err := uc.Execute(context.Background(), "", "old-refresh")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}
