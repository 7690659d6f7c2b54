package services

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidPurchase      = errors.New("invalid purchase")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrBelowRedemptionFloor = errors.New("points below redemption floor")

	// ErrPartialWrite: составная операция упала после того, как часть записей
	// уже легла в базу. Отката нет, поэтому об этом честно сообщаем наверх.
	ErrPartialWrite = errors.New("partial write")
)
