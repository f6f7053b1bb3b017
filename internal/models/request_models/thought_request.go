package request_models

type CreateThoughtRequest struct {
	Content string `json:"content" binding:"required"`
}
