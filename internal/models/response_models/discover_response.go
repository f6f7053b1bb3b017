package response_models

// RecommendedUser is a computed projection for one ranking pass; it is never
// persisted. Similarity is the raw signal (cosine similarity on the vector
// path, normalized tag overlap on the fallback path) and Score is the
// blended value the page is ordered by.
type RecommendedUser struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Nickname     string   `json:"nickname,omitempty"`
	ProfileImage string   `json:"profile_image,omitempty"`
	Tags         []string `json:"tags"`
	Similarity   float64  `json:"similarity"`
	Proximity    *float64 `json:"proximity,omitempty"`
	Score        float64  `json:"score"`
	Reason       *string  `json:"reason,omitempty"`
}

type DiscoverPage struct {
	Users       []RecommendedUser `json:"users"`
	HasMore     bool              `json:"has_more"`
	NextPage    *int              `json:"next_page"`
	TotalCount  *int64            `json:"total_count,omitempty"`
	CurrentPage int               `json:"current_page"`
}
