package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
	"github.com/nezqt3/MiniAppShopTgBot/internal/repository"
)

// ReferralService регистрирует пользователя при первом контакте и раздаёт
// реферальные бонусы. Повторная регистрация того же id ничего не создаёт и
// ничего не начисляет.

type ReferralService struct {
	log            *slog.Logger
	userRepository UserRepository
	ledger         BonusLedger
}

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	UpdateUser(ctx context.Context, userID int64, patch map[string]any) (models.User, error)
	GetLastUsers(ctx context.Context, limit int) ([]models.User, error)
}

type BonusLedger interface {
	Credit(ctx context.Context, userID int64, amount int, reason string, referencedUserID *int64) error
}

func NewReferralService(log *slog.Logger, userRepository UserRepository, ledger BonusLedger) *ReferralService {
	return &ReferralService{
		log:            log,
		userRepository: userRepository,
		ledger:         ledger,
	}
}

// RegisterOrLookup возвращает профиль, создавая его при первом обращении.
// referrerID принимается только если это чужой положительный id; существования
// профиля пригласившего не требуем — журнал позволяет начислять на голый id.
func (s *ReferralService) RegisterOrLookup(ctx context.Context, userID int64, username string,
	referrerID *int64, photoURL string) (models.User, error) {
	const op = "services.ReferralService.RegisterOrLookup"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("user_id", userID),
	)

	if userID <= 0 {
		return models.User{}, fmt.Errorf("%s: %w: user id must be positive", op, ErrInvalidInput)
	}

	existing, err := s.userRepository.GetUserByID(ctx, userID)
	if err == nil {
		return s.refreshProfile(ctx, existing, username, photoURL)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	newUser := models.User{
		ID:        userID,
		Username:  username,
		PhotoURL:  photoURL,
		CreatedAt: time.Now(),
	}
	if referrerID != nil && *referrerID != userID && *referrerID > 0 {
		newUser.ReferredBy = referrerID
	}

	saved, err := s.userRepository.SaveUser(ctx, newUser)
	if err != nil {
		// параллельная регистрация того же id: строка уже есть, бонусы уже чьи-то
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			log.Info("user registered concurrently, returning existing profile")
			existing, lookupErr := s.userRepository.GetUserByID(ctx, userID)
			if lookupErr != nil {
				return models.User{}, fmt.Errorf("%s: %w", op, lookupErr)
			}
			return existing, nil
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Any("referred_by", saved.ReferredBy))

	// два независимых начисления; упавшее второе оставляет первое в журнале
	if saved.ReferredBy != nil {
		if err := s.ledger.Credit(ctx, *saved.ReferredBy, referralBonus, invitedTag(userID), &userID); err != nil {
			log.Error("failed to credit referrer", slog.String("error", err.Error()))
			return models.User{}, fmt.Errorf("%s: %w: %v", op, ErrPartialWrite, err)
		}
	}

	if err := s.ledger.Credit(ctx, userID, referralBonus, registeredViaTag(saved.ReferredBy), saved.ReferredBy); err != nil {
		log.Error("failed to credit new user", slog.String("error", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w: %v", op, ErrPartialWrite, err)
	}

	return saved, nil
}

// refreshProfile подтягивает изменившиеся имя и аватар; referred_by при этом
// не трогается никогда.
func (s *ReferralService) refreshProfile(ctx context.Context, user models.User,
	username, photoURL string) (models.User, error) {
	const op = "services.ReferralService.refreshProfile"

	patch := make(map[string]any)
	if username != "" && username != user.Username {
		patch["username"] = username
	}
	if photoURL != "" && photoURL != user.PhotoURL {
		patch["photo_url"] = photoURL
	}
	if len(patch) == 0 {
		return user, nil
	}

	updated, err := s.userRepository.UpdateUser(ctx, user.ID, patch)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (s *ReferralService) SetReferralLink(ctx context.Context, userID int64, link string) (models.User, error) {
	const op = "services.ReferralService.SetReferralLink"

	if link == "" {
		return models.User{}, fmt.Errorf("%s: %w: link must not be empty", op, ErrInvalidInput)
	}

	user, err := s.userRepository.UpdateUser(ctx, userID, map[string]any{"referral_link": link})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *ReferralService) GetLastUsers(ctx context.Context, limit int) ([]models.User, error) {
	const op = "services.ReferralService.GetLastUsers"

	if limit <= 0 {
		limit = 1
	}

	users, err := s.userRepository.GetLastUsers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}
