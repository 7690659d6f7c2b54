package models

import (
	"time"
)

// LedgerEntry — одна неизменяемая проводка баллов. Баланс пользователя нигде
// не хранится отдельным счётчиком, только как сумма count по его проводкам.
// referenced_user_id заполняется при записи, если проводка ссылается на
// другого пользователя (реферальные начисления); в старых строках id может
// быть закодирован только хвостом for_this.

type LedgerEntry struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	Count            int       `json:"count" db:"count"` // плюс = начисление, минус = списание
	ForThis          string    `json:"for_this" db:"for_this"`
	ReferencedUserID *int64    `json:"referenced_user_id,omitempty" db:"referenced_user_id"`
	Date             time.Time `json:"date" db:"date"`
}
