package mocks

import (
	"context"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type LedgerRepositoryMock struct {
	mock.Mock
}

func (m *LedgerRepositoryMock) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *LedgerRepositoryMock) GetEntries(ctx context.Context, userID int64) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func (m *LedgerRepositoryMock) GetBalance(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type DebitLockerMock struct {
	mock.Mock
}

func (m *DebitLockerMock) LockUser(ctx context.Context, userID int64) (func(), error) {
	args := m.Called(ctx, userID)
	unlock, _ := args.Get(0).(func())
	if unlock == nil {
		unlock = func() {}
	}
	return unlock, args.Error(1)
}

// PointsLedgerMock закрывает интерфейсы сервисов, которым журнал нужен как
// зависимость (покупки, рефералка, история).
type PointsLedgerMock struct {
	mock.Mock
}

func (m *PointsLedgerMock) GetBalance(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *PointsLedgerMock) Credit(ctx context.Context, userID int64, amount int, reason string, referencedUserID *int64) error {
	args := m.Called(ctx, userID, amount, reason, referencedUserID)
	return args.Error(0)
}

func (m *PointsLedgerMock) Debit(ctx context.Context, userID int64, amount int, reason string) error {
	args := m.Called(ctx, userID, amount, reason)
	return args.Error(0)
}

func (m *PointsLedgerMock) History(ctx context.Context, userID int64) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}
