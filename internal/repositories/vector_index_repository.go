package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kindred/internal/models/db_models"
)

// VectorMatch is one nearest-neighbour hit with the metadata payload that
// was stored at index time. Tags defaults to an empty slice and Proximity is
// nil when the indexing job never filled it; this is the only place raw
// index metadata is converted, nothing downstream re-parses it.
type VectorMatch struct {
	UserID    uuid.UUID
	Score     float64
	Tags      []string
	Proximity *float64
}

type VectorIndexRepositoryInterface interface {
	QueryTopK(ctx context.Context, vector []float32, excludeUserID uuid.UUID, k int) ([]VectorMatch, error)
	Upsert(ctx context.Context, entry db_models.DiscoverVector) error
	Remove(ctx context.Context, userID uuid.UUID) error
}

func NewVectorIndexRepository(db *gorm.DB) VectorIndexRepositoryInterface {
	return &VectorIndexRepository{db: db}
}

type VectorIndexRepository struct {
	db *gorm.DB
}

// QueryTopK runs a cosine-similarity nearest-neighbour query, always
// excluding the querying user. Read-only; callers own the fallback when it
// fails or returns nothing.
func (v *VectorIndexRepository) QueryTopK(ctx context.Context, vector []float32, excludeUserID uuid.UUID, k int) ([]VectorMatch, error) {
	vecStr := pgvector.NewVector(vector).String()

	query := `
        SELECT user_id, (1 - (embedding <=> ?)) AS score, tags, proximity
        FROM discover_vectors
        WHERE user_id <> ?
        ORDER BY embedding <=> ?
        LIMIT ?
    `

	var rows []struct {
		UserID    uuid.UUID
		Score     float64
		Tags      pq.StringArray `gorm:"type:text[]"`
		Proximity *float64
	}
	err := v.db.WithContext(ctx).Raw(query, vecStr, excludeUserID, vecStr, k).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	matches := make([]VectorMatch, 0, len(rows))
	for _, row := range rows {
		tags := []string(row.Tags)
		if tags == nil {
			tags = []string{}
		}
		matches = append(matches, VectorMatch{
			UserID:    row.UserID,
			Score:     row.Score,
			Tags:      tags,
			Proximity: row.Proximity,
		})
	}
	return matches, nil
}

func (v *VectorIndexRepository) Upsert(ctx context.Context, entry db_models.DiscoverVector) error {
	return v.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&entry).Error
}

func (v *VectorIndexRepository) Remove(ctx context.Context, userID uuid.UUID) error {
	return v.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&db_models.DiscoverVector{}).Error
}
