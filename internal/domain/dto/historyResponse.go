package dto

import "time"

// EnrichedEntry — проводка, дополненная профилем пользователя, на которого
// она ссылается. Поля обогащения опциональные: если профиль не нашёлся или
// ссылка не распарсилась, они остаются null, сама проводка отдаётся как есть.

// swagger:model
type EnrichedEntry struct {
	UserID       int64     `json:"user_id" example:"312311"`
	Count        int       `json:"count" example:"150"`
	ForThis      string    `json:"for_this" example:"Пригласил 42"`
	Date         time.Time `json:"date"`
	ReferencedID *int64    `json:"referenced_id,omitempty" example:"42"`
	Username     *string   `json:"username,omitempty" example:"ivan"`
	PhotoURL     *string   `json:"photo_url,omitempty"`
}

// swagger:model
type HistoryResponse struct {
	UserID  int64           `json:"user_id" example:"312311"`
	Balance int             `json:"balance" example:"150"`
	Entries []EnrichedEntry `json:"entries"`
}
