package repository

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrStoreUnavailable помечает временные ошибки хранилища (таймаут,
	// обрыв соединения). Вызывающая сторона может повторить запрос,
	// само ядро повторов не делает.
	ErrStoreUnavailable = errors.New("store unavailable")
)
