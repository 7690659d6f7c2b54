package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/dto"
	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
	"github.com/nezqt3/MiniAppShopTgBot/internal/middlewares"
	"github.com/nezqt3/MiniAppShopTgBot/internal/repository"
	"github.com/nezqt3/MiniAppShopTgBot/internal/services"

	"github.com/gin-gonic/gin"
	"log/slog"
)

type UserService interface {
	RegisterOrLookup(ctx context.Context, userID int64, username string, referrerID *int64, photoURL string) (models.User, error)
	SetReferralLink(ctx context.Context, userID int64, link string) (models.User, error)
	GetLastUsers(ctx context.Context, limit int) ([]models.User, error)
}

type BalanceService interface {
	GetBalance(ctx context.Context, userID int64) (int, error)
}

type HistoryService interface {
	GetHistory(ctx context.Context, userID int64) ([]dto.EnrichedEntry, error)
}

type UserHandler struct {
	log            *slog.Logger
	userService    UserService
	balanceService BalanceService
	historyService HistoryService
}

func NewUserHandler(log *slog.Logger, userService UserService, balanceService BalanceService,
	historyService HistoryService) *UserHandler {
	return &UserHandler{
		log:            log,
		userService:    userService,
		balanceService: balanceService,
		historyService: historyService,
	}
}

// Register
// @Summary Зарегистрировать пользователя или вернуть существующий профиль
// @Description При первом обращении создаёт профиль, начисляет приветственный бонус и бонус пригласившему. Повторный вызов просто возвращает профиль.
// @Tags user
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Данные пользователя"
// @Success 200 {object} models.User "Профиль пользователя"
// @Failure 400 {object} dto.ErrorResponse "Неверный запрос"
// @Failure 503 {object} dto.ErrorResponse "Хранилище недоступно"
// @Router /api/user [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input dto.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := middlewares.CheckRegisterInput(input.UserID, input.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.RegisterOrLookup(c.Request.Context(), input.UserID, input.Username,
		input.ReferrerID, input.PhotoURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetBalance
// @Summary Баланс баллов пользователя
// @Description Сумма всех проводок пользователя; 0 для пользователя без проводок.
// @Tags user
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} dto.BalanceResponse "Баланс"
// @Failure 400 {object} dto.ErrorResponse "Неверный запрос"
// @Failure 503 {object} dto.ErrorResponse "Хранилище недоступно"
// @Router /api/balance/{id} [get]
func (h *UserHandler) GetBalance(c *gin.Context) {
	userID, err := parseUserID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: userID, Balance: balance})
}

// GetHistory
// @Summary История баллов с обогащением
// @Description Проводки в порядке записи; проводки со ссылкой на другого пользователя дополнены его именем и аватаром, если профиль нашёлся.
// @Tags user
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} dto.HistoryResponse "История"
// @Failure 400 {object} dto.ErrorResponse "Неверный запрос"
// @Failure 503 {object} dto.ErrorResponse "Хранилище недоступно"
// @Router /api/history/{id} [get]
func (h *UserHandler) GetHistory(c *gin.Context) {
	userID, err := parseUserID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	entries, err := h.historyService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{UserID: userID, Balance: balance, Entries: entries})
}

// SetReferralLink
// @Summary Сохранить реферальную ссылку пользователя
// @Tags user
// @Accept json
// @Produce json
// @Param link body dto.SetLinkRequest true "Ссылка"
// @Success 200 {object} models.User "Обновлённый профиль"
// @Failure 400 {object} dto.ErrorResponse "Неверный запрос"
// @Failure 404 {object} dto.ErrorResponse "Пользователь не найден"
// @Router /api/referralLink [post]
func (h *UserHandler) SetReferralLink(c *gin.Context) {
	var input dto.SetLinkRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.SetReferralLink(c.Request.Context(), input.UserID, input.Link)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetLastUsers
// @Summary Последние зарегистрированные пользователи
// @Tags user
// @Produce json
// @Param limit query int false "Сколько вернуть (по умолчанию 1)"
// @Success 200 {array} models.User "Пользователи"
// @Failure 503 {object} dto.ErrorResponse "Хранилище недоступно"
// @Router /api/lastUsers [get]
func (h *UserHandler) GetLastUsers(c *gin.Context) {
	limit := 1
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	users, err := h.userService.GetLastUsers(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func parseUserID(raw string) (int64, error) {
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.New("invalid user id")
	}
	return userID, nil
}

// respondError переводит ошибки ядра в статусы. Временные ошибки хранилища
// отдаются как 503: клиенту можно повторить запрос.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidPurchase),
		errors.Is(err, services.ErrBelowRedemptionFloor),
		errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, repository.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage temporarily unavailable, retry later"})
	case errors.Is(err, services.ErrPartialWrite):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
