package response_models

type ThoughtResponse struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	HasEmbedding bool   `json:"has_embedding"`
	CreatedAt    int64  `json:"created_at"`
}
