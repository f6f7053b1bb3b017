package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"kindred/internal/models/db_models"
	"kindred/internal/models/request_models"
	"kindred/internal/models/response_models"
	"kindred/internal/repositories"
	"kindred/pkg/utils"
)

type AccountServiceInterface interface {
	SignUp(ctx context.Context, request request_models.SignUpRequest) error
	Login(ctx context.Context, request request_models.LoginRequest) (string, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*response_models.ProfileResponse, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, request request_models.UpdateSettingsRequest) error
}

type AccountService struct {
	userRepo repositories.UserRepositoryInterface
}

func NewAccountService(userRepo repositories.UserRepositoryInterface) AccountServiceInterface {
	return &AccountService{userRepo: userRepo}
}

func (a *AccountService) SignUp(ctx context.Context, request request_models.SignUpRequest) error {
	existing, err := a.userRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existing != nil {
		return utils.ErrEmailAlreadyExists
	}

	existing, err = a.userRepo.FindByUsername(ctx, request.Username)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existing != nil {
		return utils.ErrUsernameTaken
	}

	dob, err := time.Parse("2006-01-02", request.DateOfBirth)
	if err != nil {
		return utils.ErrInvalidInput
	}
	if request.Gender != db_models.GenderMan && request.Gender != db_models.GenderWoman {
		return utils.ErrInvalidInput
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return utils.ErrDatabaseError
	}

	newUser := &db_models.User{
		Email:        request.Email,
		PasswordHash: hashedPassword,
		Username:     request.Username,
		DateOfBirth:  dob,
		Gender:       request.Gender,
		// Matching defaults until the user opens settings.
		GenderPreference: db_models.PreferenceNoPreference,
		PreferredAgeMin:  18,
		PreferredAgeMax:  99,
		Proximity:        db_models.ProximityAnywhere,
	}

	if err := a.userRepo.Insert(ctx, newUser); err != nil {
		log.Printf("Error creating user: %v", err)
		return utils.ErrDatabaseError
	}
	return nil
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (string, error) {
	user, err := a.userRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return "", utils.ErrDatabaseError
	}
	if user == nil {
		return "", utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(user.PasswordHash, request.Password); err != nil {
		return "", utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(user.ID)
	if err != nil {
		log.Printf("Error creating token: %v", err)
		return "", utils.ErrInvalidCredentials
	}
	return token, nil
}

func (a *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*response_models.ProfileResponse, error) {
	user, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}

	return &response_models.ProfileResponse{
		ID:               user.ID.String(),
		Email:            user.Email,
		Username:         user.Username,
		Nickname:         user.Nickname,
		ProfileImage:     user.ProfileImage,
		DateOfBirth:      user.DateOfBirth.Format("2006-01-02"),
		Gender:           user.Gender,
		GenderPreference: user.GenderPreference,
		PreferredAgeMin:  user.PreferredAgeMin,
		PreferredAgeMax:  user.PreferredAgeMax,
		Proximity:        user.Proximity,
		MetroArea:        user.MetroArea,
		Latitude:         user.Latitude,
		Longitude:        user.Longitude,
	}, nil
}

// UpdateSettings applies the optional fields of the request to the stored
// profile. The demographic fields mutated here are exactly what the discover
// candidate query filters on.
func (a *AccountService) UpdateSettings(ctx context.Context, userID uuid.UUID, request request_models.UpdateSettingsRequest) error {
	user, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if user == nil {
		return utils.ErrUserNotFound
	}

	if request.Nickname != nil {
		user.Nickname = *request.Nickname
	}
	if request.ProfileImage != nil {
		user.ProfileImage = *request.ProfileImage
	}
	if request.GenderPreference != nil {
		if !db_models.ValidGenderPreference(*request.GenderPreference) {
			return utils.ErrInvalidInput
		}
		user.GenderPreference = *request.GenderPreference
	}
	if request.PreferredAgeMin != nil {
		user.PreferredAgeMin = *request.PreferredAgeMin
	}
	if request.PreferredAgeMax != nil {
		user.PreferredAgeMax = *request.PreferredAgeMax
	}
	if user.PreferredAgeMin < 18 || user.PreferredAgeMin > user.PreferredAgeMax {
		return utils.ErrInvalidInput
	}
	if request.Proximity != nil {
		if !db_models.ValidProximity(*request.Proximity) {
			return utils.ErrInvalidInput
		}
		user.Proximity = *request.Proximity
	}
	if request.MetroArea != nil {
		user.MetroArea = *request.MetroArea
	}
	if request.Latitude != nil {
		user.Latitude = *request.Latitude
	}
	if request.Longitude != nil {
		user.Longitude = *request.Longitude
	}

	if err := a.userRepo.Update(ctx, user); err != nil {
		log.Printf("Error updating user settings: %v", err)
		return utils.ErrDatabaseError
	}
	return nil
}
