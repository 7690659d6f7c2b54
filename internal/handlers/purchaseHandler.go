package handlers

import (
	"context"
	"net/http"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/dto"
	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
	"github.com/nezqt3/MiniAppShopTgBot/internal/middlewares"

	"github.com/gin-gonic/gin"
	"log/slog"
)

type PurchaseService interface {
	ApplyPurchase(ctx context.Context, req dto.PurchaseRequest) (models.Purchase, error)
}

type PurchaseHandler struct {
	log             *slog.Logger
	purchaseService PurchaseService
}

func NewPurchaseHandler(log *slog.Logger, purchaseService PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		log:             log,
		purchaseService: purchaseService,
	}
}

// ApplyPurchase
// @Summary Провести покупку
// @Description Без списания начисляет кэшбэк покупателю и процент пригласившему. Со списанием конвертирует баллы в скидку (не глубже нуля) и проводит списание. Начисление и списание в одной покупке взаимоисключающие.
// @Tags purchase
// @Accept json
// @Produce json
// @Param purchase body dto.PurchaseRequest true "Данные покупки"
// @Success 200 {object} models.Purchase "Проведённая покупка"
// @Failure 400 {object} dto.ErrorResponse "Неверный запрос / недостаточно баллов"
// @Failure 404 {object} dto.ErrorResponse "Пользователь не найден"
// @Failure 503 {object} dto.ErrorResponse "Хранилище недоступно"
// @Router /api/purchase [post]
func (h *PurchaseHandler) ApplyPurchase(c *gin.Context) {
	var input dto.PurchaseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := middlewares.CheckPurchaseInput(input.UserID, input.Cost, input.Count,
		input.UsePoints, input.PointsToUse); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, err := h.purchaseService.ApplyPurchase(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}
