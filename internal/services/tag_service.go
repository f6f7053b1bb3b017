package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"kindred/internal/models/response_models"
	"kindred/internal/repositories"
	"kindred/pkg/utils"
)

type TagServiceInterface interface {
	ListTags(ctx context.Context) ([]response_models.TagResponse, error)
	GetUserTags(ctx context.Context, userID uuid.UUID) ([]response_models.TagResponse, error)
	ReplaceUserTags(ctx context.Context, userID uuid.UUID, tagIDs []uuid.UUID) error
}

type TagService struct {
	tagRepo repositories.TagRepositoryInterface
}

func NewTagService(tagRepo repositories.TagRepositoryInterface) TagServiceInterface {
	return &TagService{tagRepo: tagRepo}
}

func (t *TagService) ListTags(ctx context.Context) ([]response_models.TagResponse, error) {
	tags, err := t.tagRepo.GetAllTags(ctx)
	if err != nil {
		log.Printf("Error listing tags: %v", err)
		return nil, utils.ErrDatabaseError
	}

	responses := make([]response_models.TagResponse, 0, len(tags))
	for _, tag := range tags {
		responses = append(responses, response_models.TagResponse{
			ID:       tag.ID.String(),
			Name:     tag.Name,
			Category: tag.Category,
		})
	}
	return responses, nil
}

func (t *TagService) GetUserTags(ctx context.Context, userID uuid.UUID) ([]response_models.TagResponse, error) {
	tags, err := t.tagRepo.GetTagsForUser(ctx, userID)
	if err != nil {
		log.Printf("Error loading user tags: %v", err)
		return nil, utils.ErrDatabaseError
	}

	responses := make([]response_models.TagResponse, 0, len(tags))
	for _, tag := range tags {
		responses = append(responses, response_models.TagResponse{
			ID:       tag.ID.String(),
			Name:     tag.Name,
			Category: tag.Category,
		})
	}
	return responses, nil
}

// ReplaceUserTags swaps the user's whole tag set. Every id must reference an
// existing tag.
func (t *TagService) ReplaceUserTags(ctx context.Context, userID uuid.UUID, tagIDs []uuid.UUID) error {
	unique := uniqueIDs(tagIDs)
	existing, err := t.tagRepo.GetTagsByIDs(ctx, unique)
	if err != nil {
		log.Printf("Error validating tag ids: %v", err)
		return utils.ErrDatabaseError
	}
	if len(existing) != len(unique) {
		return utils.ErrTagNotFound
	}

	if err := t.tagRepo.ReplaceUserTags(ctx, userID, unique); err != nil {
		log.Printf("Error replacing user tags: %v", err)
		return utils.ErrDatabaseError
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
