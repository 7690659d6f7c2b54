package middlewares

import (
	"fmt"
)

const maxUsernameLen = 255

// CheckRegisterInput валидирует заявку на регистрацию до любых записей.
func CheckRegisterInput(userID int64, username string) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}

	if username == "" {
		return fmt.Errorf("%w: username is required", ErrEmptyField)
	}

	if len(username) > maxUsernameLen {
		return ErrUsernameTooLong
	}

	return nil
}

// CheckPurchaseInput валидирует заявку на покупку до любых записей.
func CheckPurchaseInput(userID int64, cost float64, count int, usePoints bool, pointsToUse int) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}

	if cost <= 0 {
		return ErrInvalidCost
	}

	if count <= 0 {
		return ErrInvalidCount
	}

	if usePoints && pointsToUse < 0 {
		return ErrNegativePoints
	}

	return nil
}
