package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"linguamentor/backend/internal/models"
	"linguamentor/backend/internal/repositories"
)

const (
	DefaultPageLimit int64 = 100
	MaxPageLimit     int64 = 1000
)

var (
	ErrEmailTaken    = errors.New("User with this email already exists")
	ErrUsernameTaken = errors.New("Username already taken")
	ErrInvalidID     = errors.New("invalid id")
	ErrUserNotFound  = errors.New("User not found")
)

// ValidationError carries a client-facing message for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type UserService interface {
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, skip, limit int64) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	userRepo repositories.UserRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	return &userService{
		userRepo: userRepo,
		validate: validate,
		now:      time.Now,
	}
}

// Create implements UserService. Uniqueness is checked up front for the
// friendly error and enforced by the unique indexes for concurrent inserts.
func (s *userService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	prefs := make([]models.LanguagePreference, 0, len(req.LanguagePreferences))
	for _, p := range req.LanguagePreferences {
		prefs = append(prefs, p.WithDefaults())
	}

	now := s.now().UTC()
	user := &models.User{
		Email:               req.Email,
		Username:            req.Username,
		FullName:            req.FullName,
		HashedPassword:      hashed,
		LanguagePreferences: prefs,
		IsActive:            true,
		IsVerified:          false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		var dup *repositories.DuplicateKeyError
		if errors.As(err, &dup) {
			if dup.Field == "username" {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	user, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, skip, limit int64) ([]models.User, error) {
	if err := ValidatePage(skip, limit); err != nil {
		return nil, err
	}
	return s.userRepo.FindAll(ctx, skip, limit)
}

func (s *userService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	if err := s.userRepo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// ValidatePage checks list pagination bounds.
func ValidatePage(skip, limit int64) error {
	if skip < 0 {
		return &ValidationError{Message: "skip must be greater than or equal to 0"}
	}
	if limit < 1 || limit > MaxPageLimit {
		return &ValidationError{Message: fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit)}
	}
	return nil
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: err.Error()}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ValidationError{Message: strings.Join(msgs, "; ")}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
