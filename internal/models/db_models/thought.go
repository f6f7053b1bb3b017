package db_models

import "github.com/google/uuid"

// Thought is an append-only free-text post. Embedding holds the vector the
// embedding model produced, serialized as a JSON array of numbers; rows whose
// embedding text does not parse to a non-empty numeric array are treated as
// having no embedding at all.
type Thought struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	Content   string
	Embedding string `gorm:"type:text"`
}
