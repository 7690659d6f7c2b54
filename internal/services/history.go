package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/dto"
	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
)

// HistoryService дополняет проводки профилями пользователей, на которых они
// ссылаются. Обогащение best-effort: неудачный lookup или нераспознанный тег
// дают null-поля, сам список истории из-за этого не падает.

type HistoryService struct {
	log            *slog.Logger
	ledger         EntryProvider
	userRepository ProfileProvider
}

type EntryProvider interface {
	History(ctx context.Context, userID int64) ([]models.LedgerEntry, error)
}

type ProfileProvider interface {
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
}

func NewHistoryService(log *slog.Logger, ledger EntryProvider, userRepository ProfileProvider) *HistoryService {
	return &HistoryService{
		log:            log,
		ledger:         ledger,
		userRepository: userRepository,
	}
}

func (s *HistoryService) GetHistory(ctx context.Context, userID int64) ([]dto.EnrichedEntry, error) {
	const op = "services.HistoryService.GetHistory"

	entries, err := s.ledger.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// мемо профилей на один вызов, чтобы не ходить в базу за одним и тем же id
	profiles := make(map[int64]*models.User)

	enriched := make([]dto.EnrichedEntry, 0, len(entries))
	for _, entry := range entries {
		item := dto.EnrichedEntry{
			UserID:  entry.UserID,
			Count:   entry.Count,
			ForThis: entry.ForThis,
			Date:    entry.Date,
		}

		if refID, ok := s.referencedUser(entry); ok {
			item.ReferencedID = &refID
			if profile := s.lookupProfile(ctx, profiles, refID); profile != nil {
				if profile.Username != "" {
					username := profile.Username
					item.Username = &username
				}
				if profile.PhotoURL != "" {
					photoURL := profile.PhotoURL
					item.PhotoURL = &photoURL
				}
			}
		}

		enriched = append(enriched, item)
	}

	return enriched, nil
}

// referencedUser предпочитает структурное поле; парсинг тега остаётся только
// ради старых строк, записанных до его появления.
func (s *HistoryService) referencedUser(entry models.LedgerEntry) (int64, bool) {
	if entry.ReferencedUserID != nil {
		return *entry.ReferencedUserID, true
	}
	return parseReferencedUser(entry.ForThis)
}

func (s *HistoryService) lookupProfile(ctx context.Context, memo map[int64]*models.User, userID int64) *models.User {
	if profile, seen := memo[userID]; seen {
		return profile
	}

	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		// профиля может законно не быть: на голый id начислять можно
		s.log.Debug("enrichment lookup failed",
			slog.Int64("referenced_id", userID),
			slog.String("error", err.Error()),
		)
		memo[userID] = nil
		return nil
	}

	memo[userID] = &user
	return &user
}
