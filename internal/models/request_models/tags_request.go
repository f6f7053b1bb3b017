package request_models

// ReplaceTagsRequest replaces the caller's full tag set.
type ReplaceTagsRequest struct {
	TagIDs []string `json:"tag_ids" binding:"required"`
}
