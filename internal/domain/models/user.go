package models

import (
	"time"
)

// User id приходит снаружи (телеграмный id), поэтому он не генерится базой.
// referred_by выставляется один раз при первой регистрации и дальше не меняется.

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	ReferredBy   *int64    `json:"referred_by,omitempty" db:"referred_by"`
	PhotoURL     string    `json:"photo_url" db:"photo_url"`
	ReferralLink string    `json:"referral_link" db:"referral_link"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
