package dto

// swagger:model
type SetLinkRequest struct {
	UserID int64  `json:"user_id" example:"312311"`
	Link   string `json:"link" example:"https://t.me/referalApi_bot?start=312311"`
}
