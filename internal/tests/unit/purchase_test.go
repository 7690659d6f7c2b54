package unit

import (
	"context"
	"errors"
	"testing"

	"log/slog"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/dto"
	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
	"github.com/nezqt3/MiniAppShopTgBot/internal/services"
	"github.com/nezqt3/MiniAppShopTgBot/internal/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPurchaseService(ledger *mocks.PointsLedgerMock, users *mocks.UserRepositoryMock,
	purchases *mocks.PurchaseRepositoryMock, rate float64, minRedeem int) *services.PurchaseService {
	return services.NewPurchaseService(slog.Default(), ledger, users, purchases, rate, minRedeem)
}

func purchaseRequest() dto.PurchaseRequest {
	return dto.PurchaseRequest{
		UserID: 312311,
		Cost:   1000,
		Count:  1,
		Name:   "hoodie",
		Size:   "L",
	}
}

func TestPurchaseService_Earn_CreditsBuyerThreePercent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ledger := new(mocks.PointsLedgerMock)
	users := new(mocks.UserRepositoryMock)
	purchases := new(mocks.PurchaseRepositoryMock)

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311, Username: "nezqt3"}, nil).Once()
	ledger.On("Credit", ctx, int64(312311), 30, "Покупка на сумму 1000", (*int64)(nil)).
		Return(nil).Once()
	purchases.On("SavePurchase", ctx, mock.MatchedBy(func(p models.Purchase) bool {
		return p.UserID == 312311 && p.OriginalCost == 1000 && p.PaidCost == 1000 &&
			p.PointsUsed == 0 && p.DiscountAmount == 0
	})).Return(models.Purchase{ID: 1, UserID: 312311, OriginalCost: 1000, PaidCost: 1000}, nil).Once()

	service := newPurchaseService(ledger, users, purchases, 1.0, 0)

	// Act
	purchase, err := service.ApplyPurchase(ctx, purchaseRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, float64(1000), purchase.PaidCost)
	ledger.AssertExpectations(t)
	purchases.AssertExpectations(t)
}

func TestPurchaseService_Earn_AlsoCreditsReferrerOnePercent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ledger := new(mocks.PointsLedgerMock)
	users := new(mocks.UserRepositoryMock)
	purchases := new(mocks.PurchaseRepositoryMock)
	referrerID := int64(42)

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311, ReferredBy: &referrerID}, nil).Once()
	ledger.On("Credit", ctx, int64(312311), 30, "Покупка на сумму 1000", (*int64)(nil)).
		Return(nil).Once()
	ledger.On("Credit", ctx, int64(42), 10, "Покупка реферала 312311", mock.MatchedBy(func(ref *int64) bool {
		return ref != nil && *ref == 312311
	})).Return(nil).Once()
	purchases.On("SavePurchase", ctx, mock.Anything).
		Return(models.Purchase{ID: 2}, nil).Once()

	service := newPurchaseService(ledger, users, purchases, 1.0, 0)

	// Act
	_, err := service.ApplyPurchase(ctx, purchaseRequest())

	// Assert
	require.NoError(t, err)
	ledger.AssertExpectations(t)
}

func TestPurchaseService_Redeem_ClampsDiscountToCost(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ledger := new(mocks.PointsLedgerMock)
	users := new(mocks.UserRepositoryMock)
	purchases := new(mocks.PurchaseRepositoryMock)

	req := purchaseRequest()
	req.Cost = 100
	req.UsePoints = true
	req.PointsToUse = 150

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311}, nil).Once()
	ledger.On("GetBalance", ctx, int64(312311)).Return(150, nil).Once()
	ledger.On("Debit", ctx, int64(312311), 100, "Оплата баллами заказа на сумму 100").
		Return(nil).Once()
	purchases.On("SavePurchase", ctx, mock.MatchedBy(func(p models.Purchase) bool {
		return p.PaidCost == 0 && p.PointsUsed == 100 && p.DiscountAmount == 100
	})).Return(models.Purchase{ID: 3, PaidCost: 0, PointsUsed: 100, DiscountAmount: 100}, nil).Once()

	service := newPurchaseService(ledger, users, purchases, 1.0, 0)

	// Act
	purchase, err := service.ApplyPurchase(ctx, req)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, purchase.PaidCost)
	assert.Equal(t, 100, purchase.PointsUsed)
	ledger.AssertExpectations(t)
	// начисления при списании не бывает
	ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseService_Redeem_FailsBelowFloorWithoutWrites(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ledger := new(mocks.PointsLedgerMock)
	users := new(mocks.UserRepositoryMock)
	purchases := new(mocks.PurchaseRepositoryMock)

	req := purchaseRequest()
	req.UsePoints = true
	req.PointsToUse = 50

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311}, nil).Once()

	service := newPurchaseService(ledger, users, purchases, 1.0, 100)

	// Act
	_, err := service.ApplyPurchase(ctx, req)

	// Assert
	assert.ErrorIs(t, err, services.ErrBelowRedemptionFloor)
	ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	purchases.AssertNotCalled(t, "SavePurchase", mock.Anything, mock.Anything)
}

func TestPurchaseService_Redeem_FailsWithoutWritesWhenBalanceTooLow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ledger := new(mocks.PointsLedgerMock)
	users := new(mocks.UserRepositoryMock)
	purchases := new(mocks.PurchaseRepositoryMock)

	req := purchaseRequest()
	req.UsePoints = true
	req.PointsToUse = 50

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311}, nil).Once()
	ledger.On("GetBalance", ctx, int64(312311)).Return(10, nil).Once()

	service := newPurchaseService(ledger, users, purchases, 1.0, 0)

	// Act
	_, err := service.ApplyPurchase(ctx, req)

	// Assert
	assert.ErrorIs(t, err, services.ErrInsufficientBalance)
	ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	purchases.AssertNotCalled(t, "SavePurchase", mock.Anything, mock.Anything)
}

func TestPurchaseService_RejectsNonPositiveCostBeforeAnyLookup(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ledger := new(mocks.PointsLedgerMock)
	users := new(mocks.UserRepositoryMock)
	purchases := new(mocks.PurchaseRepositoryMock)

	req := purchaseRequest()
	req.Cost = 0

	service := newPurchaseService(ledger, users, purchases, 1.0, 0)

	// Act
	_, err := service.ApplyPurchase(ctx, req)

	// Assert
	assert.ErrorIs(t, err, services.ErrInvalidPurchase)
	users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
}

func TestPurchaseService_SurfacesPartialWriteWhenPurchaseInsertFailsAfterDebit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ledger := new(mocks.PointsLedgerMock)
	users := new(mocks.UserRepositoryMock)
	purchases := new(mocks.PurchaseRepositoryMock)

	req := purchaseRequest()
	req.Cost = 100
	req.UsePoints = true
	req.PointsToUse = 100

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311}, nil).Once()
	ledger.On("GetBalance", ctx, int64(312311)).Return(200, nil).Once()
	ledger.On("Debit", ctx, int64(312311), 100, "Оплата баллами заказа на сумму 100").
		Return(nil).Once()
	purchases.On("SavePurchase", ctx, mock.Anything).
		Return(models.Purchase{}, errors.New("connection reset")).Once()

	service := newPurchaseService(ledger, users, purchases, 1.0, 0)

	// Act
	_, err := service.ApplyPurchase(ctx, req)

	// Assert
	assert.ErrorIs(t, err, services.ErrPartialWrite)
}

func TestPurchaseService_SmallPurchaseEarnsNothing(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ledger := new(mocks.PointsLedgerMock)
	users := new(mocks.UserRepositoryMock)
	purchases := new(mocks.PurchaseRepositoryMock)

	req := purchaseRequest()
	req.Cost = 10 // round(10 * 0.03) = 0

	users.On("GetUserByID", ctx, int64(312311)).
		Return(models.User{ID: 312311}, nil).Once()
	purchases.On("SavePurchase", ctx, mock.Anything).
		Return(models.Purchase{ID: 4}, nil).Once()

	service := newPurchaseService(ledger, users, purchases, 1.0, 0)

	// Act
	_, err := service.ApplyPurchase(ctx, req)

	// Assert
	require.NoError(t, err)
	ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
