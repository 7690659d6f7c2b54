package dto

// swagger:model
type BalanceResponse struct {
	UserID  int64 `json:"user_id" example:"312311"`
	Balance int   `json:"balance" example:"150"`
}

// swagger:model
type ErrorResponse struct {
	Error string `json:"error" example:"insufficient balance"`
}
