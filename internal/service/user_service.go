package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"instaclone/internal/domain"
	"instaclone/internal/media"
	"instaclone/internal/repository"
)

const (
	suggestionLimit = 10
	bcryptCost      = 10
)

// UserService coordina reglas de negocio para usuarios.
type UserService struct {
	logger         *zap.Logger
	users          repository.UserRepository
	posts          repository.PostRepository
	uploader       media.Uploader
	loginLimiter   LoginRateLimiter
	maxUploadBytes int64
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	posts repository.PostRepository,
	uploader media.Uploader,
	loginLimiter LoginRateLimiter,
	maxUploadBytes int64,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if uploader == nil {
		uploader = media.NewDisabledUploader("image uploads not configured")
	}
	if loginLimiter == nil {
		loginLimiter = NewMemoryLoginLimiter(15*time.Minute, 10)
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &UserService{
		logger:         logger,
		users:          users,
		posts:          posts,
		uploader:       uploader,
		loginLimiter:   loginLimiter,
		maxUploadBytes: maxUploadBytes,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s == nil || s.users == nil {
		return domain.User{}, domain.ErrServiceNotConfigured
	}

	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return domain.User{}, domain.ErrMissingField
	}
	if !isValidEmail(email) {
		return domain.User{}, domain.ErrInvalidEmail
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Followers:    []string{},
		Following:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// el indice unico de email resuelve registros concurrentes con el mismo email.
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate valida credenciales y devuelve el perfil completo del usuario.
// Email inexistente y password incorrecta producen el mismo error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.ProfileView, error) {
	if s == nil || s.users == nil {
		return domain.ProfileView{}, domain.ErrServiceNotConfigured
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.ProfileView{}, domain.ErrMissingCredentials
	}
	if !s.loginLimiter.Allow(email) {
		return domain.ProfileView{}, domain.ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProfileView{}, domain.ErrInvalidCredentials
		}
		return domain.ProfileView{}, err
	}
	if user.PasswordHash == "" {
		return domain.ProfileView{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.ProfileView{}, domain.ErrInvalidCredentials
	}
	s.loginLimiter.Reset(email)

	return s.loadProfile(ctx, user)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.ProfileView, error) {
	if s == nil || s.users == nil {
		return domain.ProfileView{}, domain.ErrServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ProfileView{}, domain.ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProfileView{}, domain.ErrUserNotFound
		}
		return domain.ProfileView{}, err
	}
	return s.loadProfile(ctx, user)
}

// loadProfile completa posts y bookmarks y descarta el hash de password.
func (s *UserService) loadProfile(ctx context.Context, user domain.User) (domain.ProfileView, error) {
	user.PasswordHash = ""
	if s.posts != nil {
		posts, err := s.posts.ListByAuthor(ctx, user.ID)
		if err != nil {
			return domain.ProfileView{}, fmt.Errorf("load posts: %w", err)
		}
		bookmarks, err := s.posts.ListBookmarked(ctx, user.ID)
		if err != nil {
			return domain.ProfileView{}, fmt.Errorf("load bookmarks: %w", err)
		}
		user.Posts = posts
		user.Bookmarks = bookmarks
	}
	return domain.NewProfileView(user), nil
}

// GetSuggestions devuelve hasta 10 usuarios distintos de excludeID.
func (s *UserService) GetSuggestions(ctx context.Context, excludeID string) ([]domain.User, error) {
	if s == nil || s.users == nil {
		return nil, domain.ErrServiceNotConfigured
	}
	users, err := s.users.ListSuggested(ctx, excludeID, suggestionLimit)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

type EditProfileInput struct {
	Bio     string
	Gender  string
	Picture *media.Image
}

// EditProfile actualiza solo los campos enviados. La imagen se sube antes de
// tocar la base, asi un fallo de subida no deja cambios parciales.
func (s *UserService) EditProfile(ctx context.Context, userID string, input EditProfileInput) (domain.ProfileView, error) {
	if s == nil || s.users == nil {
		return domain.ProfileView{}, domain.ErrServiceNotConfigured
	}

	var update domain.ProfileUpdate
	if bio := strings.TrimSpace(input.Bio); bio != "" {
		update.Bio = &bio
	}
	if gender := strings.ToLower(strings.TrimSpace(input.Gender)); gender != "" {
		if gender != domain.GenderMale && gender != domain.GenderFemale {
			return domain.ProfileView{}, domain.ErrInvalidGender
		}
		update.Gender = &gender
	}
	if input.Picture != nil {
		if err := media.Validate(*input.Picture, s.maxUploadBytes); err != nil {
			return domain.ProfileView{}, err
		}
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProfileView{}, domain.ErrUserNotFound
		}
		return domain.ProfileView{}, err
	}

	if input.Picture != nil {
		url, err := s.uploader.Upload(ctx, media.AvatarKey(userID, input.Picture.Filename), *input.Picture)
		if err != nil {
			s.logger.Warn("profile picture upload failed", zap.String("user_id", userID), zap.Error(err))
			return domain.ProfileView{}, domain.ErrImageUploadFailed
		}
		update.ProfilePicture = &url
	}

	var user domain.User
	var err error
	if update.IsEmpty() {
		user, err = s.users.GetByID(ctx, userID)
	} else {
		user, err = s.users.UpdateProfile(ctx, userID, update)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProfileView{}, domain.ErrUserNotFound
		}
		return domain.ProfileView{}, err
	}
	return s.loadProfile(ctx, user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
