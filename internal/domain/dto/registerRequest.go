package dto

// swagger:model
type RegisterRequest struct {
	UserID     int64  `json:"user_id" example:"312311"`
	Username   string `json:"username" example:"nezqt3"`
	ReferrerID *int64 `json:"referrer_id,omitempty" example:"42"`
	PhotoURL   string `json:"photo_url" example:"https://t.me/i/userpic/320/nezqt3.jpg"`
}
