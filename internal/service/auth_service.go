package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/pkg/apperror"
	"anoa.com/homeboard/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string `form:"username" binding:"required,min=3,max=50"`
	Password string `form:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AvatarFile is an optional uploaded avatar image.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        *model.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput, avatar *AvatarFile) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	// DeleteAccount removes the user, everything they own and their
	// uploaded files.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	imageStorage storage.ImageStorage
	secret       string
	tokenTTL     time.Duration
}

func NewAuthService(userRepo repository.UserRepository, postRepo repository.PostRepository, imageStorage storage.ImageStorage, secret string, tokenTTL time.Duration) AuthService {
	if secret == "" {
		secret = "change-me"
	}
	if tokenTTL == 0 {
		tokenTTL = 24 * time.Hour
	}

	return &authService{
		userRepo:     userRepo,
		postRepo:     postRepo,
		imageStorage: imageStorage,
		secret:       secret,
		tokenTTL:     tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput, avatar *AvatarFile) (*AuthResponse, error) {
	count, err := s.userRepo.CountByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.New(http.StatusConflict, "username already taken", apperror.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var avatarURL *string
	if avatar != nil && avatar.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		avatarURL = &url
	}

	user := &model.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
		AvatarURL:    avatarURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusUnauthorized, "invalid username or password", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "invalid username or password", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	// Collect file paths before the rows disappear.
	var files []string
	if user.AvatarURL != nil {
		files = append(files, *user.AvatarURL)
	}
	posts, err := s.postRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, post := range posts {
		if post.UserID != userID {
			continue
		}
		files = append(files, decodePhotos(post.Photos)...)
	}

	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		return err
	}

	// Best effort: orphaned files are not worth failing the deletion over.
	if s.imageStorage != nil {
		for _, f := range files {
			_ = s.imageStorage.DeleteImage(ctx, f)
		}
	}
	return nil
}

func (s *authService) buildAuthResponse(user *model.User) (*AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        user,
	}, nil
}

func decodePhotos(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var photos []string
	if err := json.Unmarshal(raw, &photos); err != nil {
		return nil
	}
	return photos
}
