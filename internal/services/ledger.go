package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
)

// LedgerService ведёт журнал баллов. Баланс всегда считается суммой проводок
// пользователя, отдельного счётчика нет и быть не должно.

type LedgerService struct {
	log              *slog.Logger
	ledgerRepository LedgerRepository
	locks            DebitLocker
}

type LedgerRepository interface {
	SaveEntry(ctx context.Context, entry models.LedgerEntry) error
	GetEntries(ctx context.Context, userID int64) ([]models.LedgerEntry, error)
	GetBalance(ctx context.Context, userID int64) (int, error)
}

// DebitLocker сериализует списания по user_id: между чтением баланса и
// записью отрицательной проводки никто другой списывать не должен.
type DebitLocker interface {
	LockUser(ctx context.Context, userID int64) (func(), error)
}

func NewLedgerService(log *slog.Logger, ledgerRepository LedgerRepository, locks DebitLocker) *LedgerService {
	return &LedgerService{
		log:              log,
		ledgerRepository: ledgerRepository,
		locks:            locks,
	}
}

// GetBalance возвращает 0 для пользователя без проводок, это не ошибка.
func (s *LedgerService) GetBalance(ctx context.Context, userID int64) (int, error) {
	const op = "services.LedgerService.GetBalance"

	balance, err := s.ledgerRepository.GetBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return balance, nil
}

func (s *LedgerService) Credit(ctx context.Context, userID int64, amount int, reason string, referencedUserID *int64) error {
	const op = "services.LedgerService.Credit"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("user_id", userID),
		slog.Int("amount", amount),
	)

	if amount <= 0 {
		return fmt.Errorf("%s: %w: credit amount must be positive", op, ErrInvalidInput)
	}

	entry := models.LedgerEntry{
		UserID:           userID,
		Count:            amount,
		ForThis:          reason,
		ReferencedUserID: referencedUserID,
		Date:             time.Now(),
	}

	if err := s.ledgerRepository.SaveEntry(ctx, entry); err != nil {
		log.Error("failed to save credit entry", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("points credited", slog.String("for_this", reason))

	return nil
}

func (s *LedgerService) Debit(ctx context.Context, userID int64, amount int, reason string) error {
	const op = "services.LedgerService.Debit"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("user_id", userID),
		slog.Int("amount", amount),
	)

	if amount <= 0 {
		return fmt.Errorf("%s: %w: debit amount must be positive", op, ErrInvalidInput)
	}

	unlock, err := s.locks.LockUser(ctx, userID)
	if err != nil {
		log.Error("failed to lock user for debit", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	balance, err := s.ledgerRepository.GetBalance(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if amount > balance {
		log.Info("debit rejected", slog.Int("balance", balance))
		return fmt.Errorf("%s: %w", op, ErrInsufficientBalance)
	}

	entry := models.LedgerEntry{
		UserID:  userID,
		Count:   -amount,
		ForThis: reason,
		Date:    time.Now(),
	}

	if err := s.ledgerRepository.SaveEntry(ctx, entry); err != nil {
		log.Error("failed to save debit entry", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("points debited", slog.String("for_this", reason))

	return nil
}

// History отдаёт проводки в порядке записи, без какой-либо обработки.
func (s *LedgerService) History(ctx context.Context, userID int64) ([]models.LedgerEntry, error) {
	const op = "services.LedgerService.History"

	entries, err := s.ledgerRepository.GetEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}
