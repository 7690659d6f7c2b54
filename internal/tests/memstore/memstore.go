// Package memstore — хранилище в памяти с контрактом postgres-репозитория и
// redis-замка, чтобы гонять сервисы в тестах без внешней инфраструктуры.
package memstore

import (
	"context"
	"sync"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
	"github.com/nezqt3/MiniAppShopTgBot/internal/repository"
)

type Storage struct {
	mu             sync.Mutex
	users          map[int64]*models.User
	order          []int64
	entries        []models.LedgerEntry
	purchases      []models.Purchase
	nextEntryID    int64
	nextPurchaseID int64
}

func New() *Storage {
	return &Storage{users: make(map[int64]*models.User)}
}

func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[int64]*models.User)
	s.order = nil
	s.entries = nil
	s.purchases = nil
	s.nextEntryID = 0
	s.nextPurchaseID = 0
}

func (s *Storage) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return models.User{}, repository.ErrUserAlreadyExists
	}

	stored := user
	s.users[user.ID] = &stored
	s.order = append(s.order, user.ID)
	return stored, nil
}

func (s *Storage) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return *user, nil
}

func (s *Storage) UpdateUser(ctx context.Context, userID int64, patch map[string]any) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}

	for column, value := range patch {
		switch column {
		case "username":
			user.Username = value.(string)
		case "photo_url":
			user.PhotoURL = value.(string)
		case "referral_link":
			user.ReferralLink = value.(string)
		}
	}

	return *user, nil
}

func (s *Storage) GetLastUsers(ctx context.Context, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	for i := len(s.order) - 1; i >= 0 && len(users) < limit; i-- {
		users = append(users, *s.users[s.order[i]])
	}
	return users, nil
}

func (s *Storage) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEntryID++
	entry.ID = s.nextEntryID
	s.entries = append(s.entries, entry)
	return nil
}

func (s *Storage) GetEntries(ctx context.Context, userID int64) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.LedgerEntry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *Storage) GetBalance(ctx context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := 0
	for _, entry := range s.entries {
		if entry.UserID == userID {
			balance += entry.Count
		}
	}
	return balance, nil
}

func (s *Storage) SavePurchase(ctx context.Context, purchase models.Purchase) (models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPurchaseID++
	purchase.ID = s.nextPurchaseID
	s.purchases = append(s.purchases, purchase)
	return purchase, nil
}

// Purchases возвращает копию записанных покупок для проверок в тестах.
func (s *Storage) Purchases() []models.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchases := make([]models.Purchase, len(s.purchases))
	copy(purchases, s.purchases)
	return purchases
}

func (s *Storage) Close() error { return nil }

// Locks — замок списаний на одном инстансе; в проде то же самое делает Redis.
type Locks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[int64]*sync.Mutex)}
}

func (l *Locks) LockUser(ctx context.Context, userID int64) (func(), error) {
	l.mu.Lock()
	userLock, ok := l.locks[userID]
	if !ok {
		userLock = &sync.Mutex{}
		l.locks[userID] = userLock
	}
	l.mu.Unlock()

	userLock.Lock()
	return userLock.Unlock, nil
}
