package unit

import (
	"context"
	"testing"

	"log/slog"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
	"github.com/nezqt3/MiniAppShopTgBot/internal/repository"
	"github.com/nezqt3/MiniAppShopTgBot/internal/services"
	"github.com/nezqt3/MiniAppShopTgBot/internal/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReferralService_FirstRegistrationCreditsBothParties(t *testing.T) {
	// Arrange
	ctx := context.Background()
	users := new(mocks.UserRepositoryMock)
	ledger := new(mocks.PointsLedgerMock)
	referrerID := int64(42)
	newUserID := int64(312311)

	users.On("GetUserByID", ctx, newUserID).
		Return(models.User{}, repository.ErrUserNotFound).Once()
	users.On("SaveUser", ctx, mock.MatchedBy(func(u models.User) bool {
		return u.ID == newUserID && u.ReferredBy != nil && *u.ReferredBy == referrerID
	})).Return(models.User{ID: newUserID, Username: "nezqt3", ReferredBy: &referrerID}, nil).Once()

	ledger.On("Credit", ctx, referrerID, 150, "Пригласил 312311", mock.MatchedBy(func(ref *int64) bool {
		return ref != nil && *ref == newUserID
	})).Return(nil).Once()
	ledger.On("Credit", ctx, newUserID, 150, "Регистрация по ссылке 42", mock.MatchedBy(func(ref *int64) bool {
		return ref != nil && *ref == referrerID
	})).Return(nil).Once()

	service := services.NewReferralService(slog.Default(), users, ledger)

	// Act
	user, err := service.RegisterOrLookup(ctx, newUserID, "nezqt3", &referrerID, "")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, user.ReferredBy)
	assert.Equal(t, referrerID, *user.ReferredBy)
	users.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestReferralService_SelfReferralIsIgnored(t *testing.T) {
	// Arrange
	ctx := context.Background()
	users := new(mocks.UserRepositoryMock)
	ledger := new(mocks.PointsLedgerMock)
	userID := int64(312311)

	users.On("GetUserByID", ctx, userID).
		Return(models.User{}, repository.ErrUserNotFound).Once()
	users.On("SaveUser", ctx, mock.MatchedBy(func(u models.User) bool {
		return u.ID == userID && u.ReferredBy == nil
	})).Return(models.User{ID: userID, Username: "nezqt3"}, nil).Once()

	// приветственный бонус с тегом-заглушкой, бонуса "пригласившему" нет
	ledger.On("Credit", ctx, userID, 150, "Регистрация по ссылке none", (*int64)(nil)).
		Return(nil).Once()

	service := services.NewReferralService(slog.Default(), users, ledger)

	// Act
	user, err := service.RegisterOrLookup(ctx, userID, "nezqt3", &userID, "")

	// Assert
	require.NoError(t, err)
	assert.Nil(t, user.ReferredBy)
	ledger.AssertExpectations(t)
}

func TestReferralService_SecondRegistrationIsNoOp(t *testing.T) {
	// Arrange
	ctx := context.Background()
	users := new(mocks.UserRepositoryMock)
	ledger := new(mocks.PointsLedgerMock)
	referrerID := int64(42)

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311, Username: "nezqt3", ReferredBy: &referrerID}, nil).Once()

	service := services.NewReferralService(slog.Default(), users, ledger)

	// Act
	user, err := service.RegisterOrLookup(ctx, 312311, "nezqt3", &referrerID, "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(312311), user.ID)
	users.AssertNotCalled(t, "SaveUser", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReferralService_LookupRefreshesChangedUsername(t *testing.T) {
	// Arrange
	ctx := context.Background()
	users := new(mocks.UserRepositoryMock)
	ledger := new(mocks.PointsLedgerMock)

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311, Username: "old_name"}, nil).Once()
	users.On("UpdateUser", ctx, int64(312311), map[string]any{"username": "new_name"}).
		Return(models.User{ID: 312311, Username: "new_name"}, nil).Once()

	service := services.NewReferralService(slog.Default(), users, ledger)

	// Act
	user, err := service.RegisterOrLookup(ctx, 312311, "new_name", nil, "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "new_name", user.Username)
	users.AssertExpectations(t)
}

func TestReferralService_SetReferralLink_ReturnsNotFoundForUnknownUser(t *testing.T) {
	// Arrange
	ctx := context.Background()
	users := new(mocks.UserRepositoryMock)
	ledger := new(mocks.PointsLedgerMock)

	users.On("UpdateUser", ctx, int64(999), map[string]any{"referral_link": "https://t.me/referalApi_bot?start=999"}).
		Return(models.User{}, repository.ErrUserNotFound).Once()

	service := services.NewReferralService(slog.Default(), users, ledger)

	// Act
	_, err := service.SetReferralLink(ctx, 999, "https://t.me/referalApi_bot?start=999")

	// Assert
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestReferralService_ConcurrentRegistrationReturnsExistingWithoutBonuses(t *testing.T) {
	// Arrange
	ctx := context.Background()
	users := new(mocks.UserRepositoryMock)
	ledger := new(mocks.PointsLedgerMock)

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{}, repository.ErrUserNotFound).Once()
	users.On("SaveUser", ctx, mock.Anything).
		Return(models.User{}, repository.ErrUserAlreadyExists).Once()
	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311, Username: "nezqt3"}, nil).Once()

	service := services.NewReferralService(slog.Default(), users, ledger)

	// Act
	user, err := service.RegisterOrLookup(ctx, 312311, "nezqt3", nil, "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(312311), user.ID)
	ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
