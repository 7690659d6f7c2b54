package mocks

import (
	"context"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) UpdateUser(ctx context.Context, userID int64, patch map[string]any) (models.User, error) {
	args := m.Called(ctx, userID, patch)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetLastUsers(ctx context.Context, limit int) ([]models.User, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

type PurchaseRepositoryMock struct {
	mock.Mock
}

func (m *PurchaseRepositoryMock) SavePurchase(ctx context.Context, purchase models.Purchase) (models.Purchase, error) {
	args := m.Called(ctx, purchase)
	return args.Get(0).(models.Purchase), args.Error(1)
}
