package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kindred/internal/models/db_models"
)

type TagRepositoryInterface interface {
	GetAllTags(ctx context.Context) ([]db_models.Tag, error)
	GetTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Tag, error)
	GetTagsForUser(ctx context.Context, userID uuid.UUID) ([]db_models.Tag, error)
	GetTagsForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]db_models.Tag, error)
	ReplaceUserTags(ctx context.Context, userID uuid.UUID, tagIDs []uuid.UUID) error
}

func NewTagRepository(db *gorm.DB) TagRepositoryInterface {
	return &TagRepository{db: db}
}

type TagRepository struct {
	db *gorm.DB
}

func (t *TagRepository) GetAllTags(ctx context.Context) ([]db_models.Tag, error) {
	var tags []db_models.Tag
	if err := t.db.WithContext(ctx).Order("category, name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (t *TagRepository) GetTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Tag, error) {
	if len(ids) == 0 {
		return []db_models.Tag{}, nil
	}
	var tags []db_models.Tag
	if err := t.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (t *TagRepository) GetTagsForUser(ctx context.Context, userID uuid.UUID) ([]db_models.Tag, error) {
	var tags []db_models.Tag
	err := t.db.WithContext(ctx).
		Joins("JOIN user_tags ON user_tags.tag_id = tags.id").
		Where("user_tags.user_id = ?", userID).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTagsForUsers loads tags for a whole candidate set in one joined query,
// keyed by user id. Candidates without tags are absent from the map.
func (t *TagRepository) GetTagsForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]db_models.Tag, error) {
	result := make(map[uuid.UUID][]db_models.Tag)
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		db_models.Tag
		UserID uuid.UUID
	}
	err := t.db.WithContext(ctx).
		Model(&db_models.Tag{}).
		Select("tags.*, user_tags.user_id AS user_id").
		Joins("JOIN user_tags ON user_tags.tag_id = tags.id").
		Where("user_tags.user_id IN ?", userIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.UserID] = append(result[row.UserID], row.Tag)
	}
	return result, nil
}

func (t *TagRepository) ReplaceUserTags(ctx context.Context, userID uuid.UUID, tagIDs []uuid.UUID) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&db_models.UserTag{}).Error; err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}
		rows := make([]db_models.UserTag, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			rows = append(rows, db_models.UserTag{UserID: userID, TagID: tagID})
		}
		return tx.Create(&rows).Error
	})
}
