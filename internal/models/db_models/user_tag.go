package db_models

import "github.com/google/uuid"

// UserTag is the join row behind the many2many relation. Declared explicitly
// so the batched candidate-tag query can select from it directly.
type UserTag struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID  uuid.UUID `gorm:"type:uuid;primaryKey"`
}
