package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/dto"
	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
)

// PurchaseService применяет покупку: либо начисляет кэшбэк (и процент
// пригласившему), либо списывает баллы в счёт скидки. Начисление и списание
// в рамках одной покупки взаимоисключающие.

type PurchaseService struct {
	log                *slog.Logger
	ledger             PointsLedger
	userRepository     UserProvider
	purchaseRepository PurchaseRepository
	pointRate          float64
	minPointsToRedeem  int
}

type PointsLedger interface {
	GetBalance(ctx context.Context, userID int64) (int, error)
	Credit(ctx context.Context, userID int64, amount int, reason string, referencedUserID *int64) error
	Debit(ctx context.Context, userID int64, amount int, reason string) error
}

type UserProvider interface {
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
}

type PurchaseRepository interface {
	SavePurchase(ctx context.Context, purchase models.Purchase) (models.Purchase, error)
}

func NewPurchaseService(log *slog.Logger, ledger PointsLedger, userRepository UserProvider,
	purchaseRepository PurchaseRepository, pointRate float64, minPointsToRedeem int) *PurchaseService {
	return &PurchaseService{
		log:                log,
		ledger:             ledger,
		userRepository:     userRepository,
		purchaseRepository: purchaseRepository,
		pointRate:          pointRate,
		minPointsToRedeem:  minPointsToRedeem,
	}
}

func (s *PurchaseService) ApplyPurchase(ctx context.Context, req dto.PurchaseRequest) (models.Purchase, error) {
	const op = "services.PurchaseService.ApplyPurchase"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("user_id", req.UserID),
		slog.Float64("cost", req.Cost),
		slog.Bool("use_points", req.UsePoints),
	)

	// вся валидация до первой записи: при отказе в базе не остаётся ничего
	if req.Cost <= 0 {
		return models.Purchase{}, fmt.Errorf("%s: %w: cost must be positive", op, ErrInvalidPurchase)
	}
	if req.Count <= 0 {
		return models.Purchase{}, fmt.Errorf("%s: %w: count must be positive", op, ErrInvalidPurchase)
	}

	user, err := s.userRepository.GetUserByID(ctx, req.UserID)
	if err != nil {
		return models.Purchase{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		paidCost    = req.Cost
		discount    float64
		pointsUsed  int
		wroteLedger bool
	)

	if req.UsePoints {
		discount, pointsUsed, err = s.redeem(ctx, req)
		if err != nil {
			return models.Purchase{}, fmt.Errorf("%s: %w", op, err)
		}
		paidCost = req.Cost - discount
		wroteLedger = pointsUsed > 0
	} else {
		wroteLedger, err = s.earn(ctx, user, req.Cost)
		if err != nil {
			return models.Purchase{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	purchase := models.Purchase{
		UserID:         req.UserID,
		Name:           req.Name,
		Count:          req.Count,
		Address:        req.Address,
		Size:           req.Size,
		OriginalCost:   req.Cost,
		PaidCost:       paidCost,
		PointsUsed:     pointsUsed,
		DiscountAmount: discount,
		Date:           time.Now(),
	}

	saved, err := s.purchaseRepository.SavePurchase(ctx, purchase)
	if err != nil {
		if wroteLedger {
			// проводки уже в журнале, а покупка не записалась — компенсации нет
			log.Error("purchase write failed after ledger write", slog.String("error", err.Error()))
			return models.Purchase{}, fmt.Errorf("%s: %w: %v", op, ErrPartialWrite, err)
		}
		return models.Purchase{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("purchase applied",
		slog.Float64("paid_cost", saved.PaidCost),
		slog.Int("points_used", saved.PointsUsed),
	)

	return saved, nil
}

// redeem проверяет заявку на списание и проводит его. Скидка не может
// превысить стоимость покупки: при переборе она обрезается до стоимости,
// а списываемые баллы пересчитываются под обрезанную скидку.
func (s *PurchaseService) redeem(ctx context.Context, req dto.PurchaseRequest) (discount float64, pointsUsed int, err error) {
	if req.PointsToUse < 0 {
		return 0, 0, fmt.Errorf("%w: points to use must not be negative", ErrInvalidInput)
	}
	if req.PointsToUse < s.minPointsToRedeem {
		return 0, 0, ErrBelowRedemptionFloor
	}

	balance, err := s.ledger.GetBalance(ctx, req.UserID)
	if err != nil {
		return 0, 0, err
	}
	if req.PointsToUse > balance {
		return 0, 0, ErrInsufficientBalance
	}

	discount = float64(req.PointsToUse) * s.pointRate
	pointsUsed = req.PointsToUse
	if discount > req.Cost {
		discount = req.Cost
		pointsUsed = int(math.Round(discount / s.pointRate))
	}

	if pointsUsed > 0 {
		if err := s.ledger.Debit(ctx, req.UserID, pointsUsed, redemptionTag(req.Cost)); err != nil {
			return 0, 0, err
		}
	}

	return discount, pointsUsed, nil
}

// earn начисляет кэшбэк покупателю и процент пригласившему. Тег бонуса
// пригласившего несёт id покупателя, чтобы было видно, за кого начислено.
func (s *PurchaseService) earn(ctx context.Context, user models.User, cost float64) (wrote bool, err error) {
	earned := int(math.Round(cost * purchaseEarnRate))
	if earned > 0 {
		if err := s.ledger.Credit(ctx, user.ID, earned, purchaseEarnTag(cost), nil); err != nil {
			return false, err
		}
		wrote = true
	}

	if user.ReferredBy != nil {
		bonus := int(math.Round(cost * referralEarnRate))
		if bonus > 0 {
			buyerID := user.ID
			if err := s.ledger.Credit(ctx, *user.ReferredBy, bonus, referralPurchaseTag(buyerID), &buyerID); err != nil {
				if wrote {
					return true, fmt.Errorf("%w: %v", ErrPartialWrite, err)
				}
				return false, err
			}
			wrote = true
		}
	}

	return wrote, nil
}
