package services

import (
	"fmt"
	"strconv"
	"strings"
)

// Правила начислений: приветственный бонус за регистрацию, кэшбэк с покупки
// и процент пригласившему с покупок реферала.
const (
	referralBonus    = 150
	purchaseEarnRate = 0.03
	referralEarnRate = 0.01
)

// Теги проводок. У старых строк ссылка на пользователя закодирована только
// хвостом тега, новые дополнительно несут referenced_user_id.
const (
	tagInvited       = "Пригласил"
	tagRegisteredVia = "Регистрация по ссылке"
	noReferrerToken  = "none"
)

func invitedTag(invitedID int64) string {
	return fmt.Sprintf("%s %d", tagInvited, invitedID)
}

func registeredViaTag(referrerID *int64) string {
	if referrerID == nil {
		return fmt.Sprintf("%s %s", tagRegisteredVia, noReferrerToken)
	}
	return fmt.Sprintf("%s %d", tagRegisteredVia, *referrerID)
}

func purchaseEarnTag(cost float64) string {
	return "Покупка на сумму " + formatCost(cost)
}

func referralPurchaseTag(buyerID int64) string {
	return fmt.Sprintf("Покупка реферала %d", buyerID)
}

func redemptionTag(cost float64) string {
	return "Оплата баллами заказа на сумму " + formatCost(cost)
}

func formatCost(cost float64) string {
	return strconv.FormatFloat(cost, 'f', -1, 64)
}

// parseReferencedUser вытаскивает id пользователя из хвоста известных тегов.
// Нераспознанный тег или мусор в хвосте — это не ошибка, просто нет ссылки.
func parseReferencedUser(forThis string) (int64, bool) {
	for _, prefix := range []string{tagInvited, tagRegisteredVia} {
		if !strings.HasPrefix(forThis, prefix+" ") {
			continue
		}

		token := forThis[strings.LastIndexByte(forThis, ' ')+1:]
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}

	return 0, false
}
