package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kindred/internal/models/db_models"
)

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.User, error)
	FindByEmail(ctx context.Context, email string) (*db_models.User, error)
	FindByUsername(ctx context.Context, username string) (*db_models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.User, error)
	Insert(ctx context.Context, user *db_models.User) error
	Update(ctx context.Context, user *db_models.User) error
	FindDiscoverCandidates(ctx context.Context, requester *db_models.User, offset, limit int) ([]db_models.User, error)
	CountDiscoverCandidates(ctx context.Context, requester *db_models.User) (int64, error)
}

func NewUserRepository(db *gorm.DB) UserRepositoryInterface {
	return &UserRepository{db: db}
}

type UserRepository struct {
	db *gorm.DB
}

func (u *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.User, error) {
	var user db_models.User
	err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserRepository) FindByEmail(ctx context.Context, email string) (*db_models.User, error) {
	var user db_models.User
	err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserRepository) FindByUsername(ctx context.Context, username string) (*db_models.User, error) {
	var user db_models.User
	err := u.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDs batch-loads users for hydrating vector-index hits with display
// fields. Result order is not guaranteed; callers index by id.
func (u *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.User, error) {
	if len(ids) == 0 {
		return []db_models.User{}, nil
	}
	var users []db_models.User
	if err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (u *UserRepository) Insert(ctx context.Context, user *db_models.User) error {
	return u.db.WithContext(ctx).Create(user).Error
}

func (u *UserRepository) Update(ctx context.Context, user *db_models.User) error {
	return u.db.WithContext(ctx).Save(user).Error
}

// discoverScope builds the demographic predicate for fallback candidates:
// never the requester, declared gender per preference, birth year inside the
// preferred age window, and same metro area when the requester wants local
// matches. Age is birth-year arithmetic, so candidates near a birthday can be
// off by up to a year.
func discoverScope(requester *db_models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("id <> ?", requester.ID)

		switch requester.GenderPreference {
		case db_models.PreferenceMen:
			db = db.Where("gender = ?", db_models.GenderMan)
		case db_models.PreferenceWomen:
			db = db.Where("gender = ?", db_models.GenderWoman)
		}

		year := time.Now().Year()
		db = db.Where("EXTRACT(YEAR FROM date_of_birth) BETWEEN ? AND ?",
			year-requester.PreferredAgeMax, year-requester.PreferredAgeMin)

		if requester.Proximity == db_models.ProximityLocal && requester.MetroArea != "" {
			db = db.Where("metro_area = ?", requester.MetroArea)
		}

		return db
	}
}

func (u *UserRepository) FindDiscoverCandidates(ctx context.Context, requester *db_models.User, offset, limit int) ([]db_models.User, error) {
	var users []db_models.User
	err := u.db.WithContext(ctx).
		Scopes(discoverScope(requester)).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (u *UserRepository) CountDiscoverCandidates(ctx context.Context, requester *db_models.User) (int64, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Scopes(discoverScope(requester)).
		Count(&count).Error
	return count, err
}
