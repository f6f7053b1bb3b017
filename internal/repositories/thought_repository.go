package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kindred/internal/models/db_models"
)

// ThoughtEmbeddings holds every valid embedded thought for one user as three
// parallel slices, newest first.
type ThoughtEmbeddings struct {
	IDs     []uuid.UUID
	Texts   []string
	Vectors [][]float32
}

type ThoughtRepositoryInterface interface {
	MostRecentEmbedding(ctx context.Context, userID uuid.UUID) ([]float32, error)
	AllEmbeddings(ctx context.Context, userID uuid.UUID) (ThoughtEmbeddings, error)
	Insert(ctx context.Context, thought *db_models.Thought) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Thought, error)
	Delete(ctx context.Context, userID, thoughtID uuid.UUID) error
}

func NewThoughtRepository(db *gorm.DB) ThoughtRepositoryInterface {
	return &ThoughtRepository{db: db}
}

type ThoughtRepository struct {
	db *gorm.DB
}

// parseEmbedding deserializes a stored embedding. Only a JSON array where
// every element is a number and the array is non-empty counts as valid;
// anything else returns nil so the row is treated as having no embedding.
// Absence is a normal state here (new users, pending embedding jobs), so bad
// data is logged and discarded rather than raised.
func parseEmbedding(raw string) []float32 {
	if raw == "" {
		return nil
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		log.Printf("Discarding unparseable embedding: %v", err)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return vec
}

// MostRecentEmbedding returns the parsed vector of the user's newest thought
// that carries an embedding, or an empty result when there is none or the
// stored value is corrupt.
func (t *ThoughtRepository) MostRecentEmbedding(ctx context.Context, userID uuid.UUID) ([]float32, error) {
	var thought db_models.Thought
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND embedding IS NOT NULL AND embedding <> ''", userID).
		Order("created_at DESC").
		First(&thought).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseEmbedding(thought.Embedding), nil
}

func (t *ThoughtRepository) AllEmbeddings(ctx context.Context, userID uuid.UUID) (ThoughtEmbeddings, error) {
	var thoughts []db_models.Thought
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND content IS NOT NULL AND embedding IS NOT NULL AND embedding <> ''", userID).
		Order("created_at DESC").
		Find(&thoughts).Error
	if err != nil {
		return ThoughtEmbeddings{}, err
	}

	var result ThoughtEmbeddings
	for _, thought := range thoughts {
		vec := parseEmbedding(thought.Embedding)
		if vec == nil {
			continue
		}
		result.IDs = append(result.IDs, thought.ID)
		result.Texts = append(result.Texts, thought.Content)
		result.Vectors = append(result.Vectors, vec)
	}
	return result, nil
}

func (t *ThoughtRepository) Insert(ctx context.Context, thought *db_models.Thought) error {
	return t.db.WithContext(ctx).Create(thought).Error
}

func (t *ThoughtRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Thought, error) {
	var thoughts []db_models.Thought
	err := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&thoughts).Error
	if err != nil {
		return nil, err
	}
	return thoughts, nil
}

func (t *ThoughtRepository) Delete(ctx context.Context, userID, thoughtID uuid.UUID) error {
	res := t.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", thoughtID, userID).
		Delete(&db_models.Thought{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
