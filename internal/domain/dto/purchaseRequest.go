package dto

// swagger:model
type PurchaseRequest struct {
	UserID      int64   `json:"user_id" example:"312311"`
	Cost        float64 `json:"cost" example:"1000"`
	Count       int     `json:"count" example:"1"`
	Name        string  `json:"name" example:"hoodie"`
	Address     string  `json:"address" example:"Москва, ул. Ленина 1"`
	Size        string  `json:"size" example:"L"`
	UsePoints   bool    `json:"use_points" example:"false"`
	PointsToUse int     `json:"points_to_use" example:"0"`
}
