package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// DiscoverVector is one row per user in the nearest-neighbour index: the
// user's newest valid thought embedding plus the metadata payload returned
// with every similarity hit. Proximity is optional and owned by whatever
// offline job computes geo distances; this service never fills it.
type DiscoverVector struct {
	UserID    uuid.UUID       `gorm:"type:uuid;primaryKey;column:user_id"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"`
	Tags      pq.StringArray  `gorm:"type:text[]"`
	Proximity *float64
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
