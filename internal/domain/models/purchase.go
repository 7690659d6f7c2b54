package models

import (
	"time"
)

type Purchase struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Name           string    `json:"name" db:"name"`
	Count          int       `json:"count" db:"count"`
	Address        string    `json:"address" db:"address"`
	Size           string    `json:"size" db:"size"`
	OriginalCost   float64   `json:"original_cost" db:"original_cost"`
	PaidCost       float64   `json:"paid_cost" db:"paid_cost"`
	PointsUsed     int       `json:"points_used" db:"points_used"`
	DiscountAmount float64   `json:"discount_amount" db:"discount_amount"`
	Date           time.Time `json:"date" db:"date"`
}
