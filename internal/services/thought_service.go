package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"kindred/internal/models/db_models"
	"kindred/internal/models/response_models"
	"kindred/internal/repositories"
	"kindred/pkg/utils"
)

type ThoughtServiceInterface interface {
	CreateThought(ctx context.Context, userID uuid.UUID, content string) (*response_models.ThoughtResponse, error)
	ListThoughts(ctx context.Context, userID uuid.UUID) ([]response_models.ThoughtResponse, error)
	DeleteThought(ctx context.Context, userID, thoughtID uuid.UUID) error
}

type ThoughtService struct {
	thoughtRepo repositories.ThoughtRepositoryInterface
	tagRepo     repositories.TagRepositoryInterface
	vectorRepo  repositories.VectorIndexRepositoryInterface
	aiClient    utils.AIClientInterface // nil when no credential is configured
}

func NewThoughtService(
	thoughtRepo repositories.ThoughtRepositoryInterface,
	tagRepo repositories.TagRepositoryInterface,
	vectorRepo repositories.VectorIndexRepositoryInterface,
	aiClient utils.AIClientInterface,
) ThoughtServiceInterface {
	return &ThoughtService{
		thoughtRepo: thoughtRepo,
		tagRepo:     tagRepo,
		vectorRepo:  vectorRepo,
		aiClient:    aiClient,
	}
}

// CreateThought stores the thought and, when an embedding could be produced,
// refreshes the user's entry in the discover index. Embedding and indexing
// failures degrade to a thought without a vector; they never block the post.
func (t *ThoughtService) CreateThought(ctx context.Context, userID uuid.UUID, content string) (*response_models.ThoughtResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, utils.ErrInvalidInput
	}

	var embedded string
	if t.aiClient != nil {
		vec, err := t.aiClient.GetEmbedding(ctx, content)
		if err != nil {
			log.Printf("Embedding generation failed, storing thought without vector: %v", err)
		} else if raw, err := json.Marshal(vec.Slice()); err == nil {
			embedded = string(raw)
		}
	}

	thought := &db_models.Thought{
		UserID:    userID,
		Content:   content,
		Embedding: embedded,
	}
	if err := t.thoughtRepo.Insert(ctx, thought); err != nil {
		log.Printf("Error inserting thought: %v", err)
		return nil, utils.ErrDatabaseError
	}

	if embedded != "" {
		t.reindexUser(ctx, userID)
	}

	return &response_models.ThoughtResponse{
		ID:           thought.ID.String(),
		Content:      thought.Content,
		HasEmbedding: embedded != "",
		CreatedAt:    thought.CreatedAt,
	}, nil
}

func (t *ThoughtService) ListThoughts(ctx context.Context, userID uuid.UUID) ([]response_models.ThoughtResponse, error) {
	thoughts, err := t.thoughtRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("Error listing thoughts: %v", err)
		return nil, utils.ErrDatabaseError
	}

	responses := make([]response_models.ThoughtResponse, 0, len(thoughts))
	for _, thought := range thoughts {
		responses = append(responses, response_models.ThoughtResponse{
			ID:           thought.ID.String(),
			Content:      thought.Content,
			HasEmbedding: thought.Embedding != "",
			CreatedAt:    thought.CreatedAt,
		})
	}
	return responses, nil
}

// DeleteThought removes the thought, then re-points the discover index at
// the next-newest embedding so the index never serves a deleted vector.
func (t *ThoughtService) DeleteThought(ctx context.Context, userID, thoughtID uuid.UUID) error {
	if err := t.thoughtRepo.Delete(ctx, userID, thoughtID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrThoughtNotFound
		}
		log.Printf("Error deleting thought: %v", err)
		return utils.ErrDatabaseError
	}

	t.reindexUser(ctx, userID)
	return nil
}

// reindexUser upserts the user's newest valid embedding plus current tag
// names into the discover index, or removes the row when no embedded
// thoughts remain. Index trouble is logged and swallowed; the feed degrades
// to the tag/demographic path for this user until the next reindex.
func (t *ThoughtService) reindexUser(ctx context.Context, userID uuid.UUID) {
	vec, err := t.thoughtRepo.MostRecentEmbedding(ctx, userID)
	if err != nil {
		log.Printf("Error loading embedding for reindex: %v", err)
		return
	}

	if len(vec) == 0 {
		if err := t.vectorRepo.Remove(ctx, userID); err != nil {
			log.Printf("Error removing discover vector: %v", err)
		}
		return
	}

	tags, err := t.tagRepo.GetTagsForUser(ctx, userID)
	if err != nil {
		log.Printf("Error loading tags for reindex: %v", err)
		tags = nil
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}

	entry := db_models.DiscoverVector{
		UserID:    userID,
		Embedding: pgvector.NewVector(vec),
		Tags:      pq.StringArray(names),
	}
	if err := t.vectorRepo.Upsert(ctx, entry); err != nil {
		log.Printf("Error upserting discover vector: %v", err)
	}
}
