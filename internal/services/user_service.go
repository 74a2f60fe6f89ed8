package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Business-Integration-Technologies/EventNest/internal/helpers"
	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo    models.UserRepo
	tokenSecret string
}

func NewUserService(userRepo models.UserRepo, tokenSecret string) *UserService {
	return &UserService{
		userRepo:    userRepo,
		tokenSecret: tokenSecret,
	}
}

// AuthResult is returned on registration and login: the signed bearer token
// plus the user record with the password hash stripped.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (us *UserService) Register(ctx context.Context, user *models.User) (*AuthResult, error) {
	if err := models.Validate.Struct(user); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	if !helpers.IsPasswordStrong(user.Password) {
		return nil, fmt.Errorf("%w: password is not strong enough", models.ErrValidation)
	}

	// Registration with a known email is a conflict, not an idempotent success.
	if _, err := us.userRepo.GetUserByEmail(ctx, user.Email); err == nil {
		return nil, fmt.Errorf("user already registered, please login instead: %w", models.ErrDuplicate)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}
	user.Password = string(hashed)

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := us.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := helpers.SignToken(us.tokenSecret, created.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %v", err)
	}

	return &AuthResult{Token: token, User: created}, nil
}

func (us *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email format", models.ErrValidation)
	}

	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("user is not registered: %w", models.ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("incorrect password: %w", models.ErrForbidden)
	}

	token, err := helpers.SignToken(us.tokenSecret, user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %v", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// GetProfile returns the full profile, visible to its owner only.
func (us *UserService) GetProfile(ctx context.Context, requester, id primitive.ObjectID) (*models.User, error) {
	if requester != id {
		return nil, fmt.Errorf("cannot view another user's profile: %w", models.ErrForbidden)
	}
	return us.userRepo.GetUserByID(ctx, id)
}

// GetOrganizer returns the public subset of any user's profile.
func (us *UserService) GetOrganizer(ctx context.Context, id primitive.ObjectID) (*models.OrganizerProfile, error) {
	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.OrganizerProfile{Username: user.Username, Email: user.Email}, nil
}

// ProfileUpdate carries the optional profile fields; nil means "leave as is".
type ProfileUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email" validate:"omitempty,email"`
	CNIC     *string `json:"cnic"`
	Number   *string `json:"number"`
	Gender   *string `json:"gender"`
	Address  *string `json:"address"`
}

func (us *UserService) UpdateProfile(ctx context.Context, requester, id primitive.ObjectID, update *ProfileUpdate) (*models.User, error) {
	if requester != id {
		return nil, fmt.Errorf("cannot update another user's profile: %w", models.ErrForbidden)
	}

	if err := models.Validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	fields := bson.M{}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.CNIC != nil {
		fields["cnic"] = *update.CNIC
	}
	if update.Number != nil {
		fields["number"] = *update.Number
	}
	if update.Gender != nil {
		fields["gender"] = *update.Gender
	}
	if update.Address != nil {
		fields["address"] = *update.Address
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	return us.userRepo.UpdateUser(ctx, id, fields)
}
