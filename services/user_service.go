package services

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hangouts-server/models"
	"hangouts-server/store"
	"hangouts-server/utils/errors"
)

const minPasswordLength = 6

var (
	ErrDuplicateUser      = errors.NewAPIError("DUPLICATE_USER", "Email or username already registered", http.StatusBadRequest)
	ErrInvalidCredentials = errors.NewAPIError("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized)
)

type UserService struct {
	users UserStore
	clock Clock
}

func NewUserService(users UserStore, clock Clock) *UserService {
	return &UserService{users: users, clock: clock}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new user with a bcrypt password hash.
func (s *UserService) Signup(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return models.User{}, errors.Invalid("username, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return models.User{}, errors.Invalid("invalid email address")
	}
	if len(password) < minPasswordLength {
		return models.User{}, errors.Invalid("password must be at least 6 characters")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "HASH_ERROR", "failed to hash password", http.StatusInternalServerError)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    s.clock.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if stderrors.Is(err, store.ErrDuplicate) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, errors.StoreFailure(err)
	}

	log.Printf("Registered user %s (%s)", user.Username, user.ID)
	return user, nil
}

// Authenticate checks an email and password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, errors.Invalid("email and password are required")
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, errors.StoreFailure(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return models.User{}, errors.NotFound("User not found")
		}
		return models.User{}, errors.StoreFailure(err)
	}
	return user, nil
}

// SetPushToken records the device token used to reach the user with push
// notifications.
func (s *UserService) SetPushToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return errors.Invalid("user_id and token are required")
	}
	if err := s.users.SetPushToken(ctx, userID, token); err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return errors.NotFound("User not found")
		}
		return errors.StoreFailure(err)
	}
	return nil
}
