package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"anoa.com/homeboard/internal/dto"
	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/pkg/apperror"
	"anoa.com/homeboard/pkg/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PhotoUpload is one photo attached to a new post.
type PhotoUpload struct {
	Reader   io.Reader
	FileName string
}

type FeedService interface {
	ListPosts(ctx context.Context, viewerID uuid.UUID) ([]*dto.PostResponse, error)
	CreatePost(ctx context.Context, userID uuid.UUID, req dto.CreatePostRequest, photos []*PhotoUpload) (*model.Post, error)
	UpdatePost(ctx context.Context, userID, postID uuid.UUID, content string) error
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error
	ToggleLike(ctx context.Context, userID, postID uuid.UUID) error
	AddComment(ctx context.Context, userID, postID uuid.UUID, content string) error
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
}

type feedService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	likeRepo      repository.LikeRepository
	imageStorage  storage.ImageStorage
	searchService SearchService
	redisClient   *redis.Client
	postCooldown  time.Duration
	sanitizer     *bluemonday.Policy
}

func NewFeedService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, likeRepo repository.LikeRepository, imageStorage storage.ImageStorage, searchService SearchService, redisClient *redis.Client, postCooldown time.Duration) FeedService {
	return &feedService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		likeRepo:      likeRepo,
		imageStorage:  imageStorage,
		searchService: searchService,
		redisClient:   redisClient,
		postCooldown:  postCooldown,
		sanitizer:     bluemonday.StrictPolicy(),
	}
}

func (s *feedService) ListPosts(ctx context.Context, viewerID uuid.UUID) ([]*dto.PostResponse, error) {
	posts, err := s.postRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PostResponse, 0, len(posts))
	for _, post := range posts {
		comments, err := s.commentRepo.FindByPostID(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		likes, err := s.likeRepo.UserIDsByPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}

		commentResponses := make([]dto.CommentResponse, 0, len(comments))
		for _, comment := range comments {
			commentResponses = append(commentResponses, dto.CommentResponse{
				ID:             comment.ID,
				Content:        comment.Content,
				AuthorUsername: comment.User.Username,
				CreatedAt:      comment.CreatedAt,
			})
		}

		photos := decodePhotos(post.Photos)
		if photos == nil {
			photos = []string{}
		}

		responses = append(responses, &dto.PostResponse{
			ID:             post.ID,
			UserID:         post.UserID,
			Content:        post.Content,
			Photos:         photos,
			AuthorUsername: post.User.Username,
			AuthorAvatar:   post.User.AvatarURL,
			IsAuthor:       post.UserID == viewerID,
			Comments:       commentResponses,
			Likes:          likes,
			CreatedAt:      post.CreatedAt,
		})
	}
	return responses, nil
}

func (s *feedService) CreatePost(ctx context.Context, userID uuid.UUID, req dto.CreatePostRequest, photos []*PhotoUpload) (*model.Post, error) {
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, userID, "post", s.postCooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, s.redisClient, userID, "post")
		msg := fmt.Sprintf("you are posting too fast, please wait %.0f seconds", ttl.Seconds())
		return nil, apperror.New(http.StatusTooManyRequests, msg, nil)
	}

	// Paths of photos that were uploaded earlier (e.g. when editing drafts);
	// malformed JSON degrades to an empty list like the legacy app did.
	var photoPaths []string
	if req.ExistingPhotos != "" {
		if err := json.Unmarshal([]byte(req.ExistingPhotos), &photoPaths); err != nil {
			photoPaths = nil
		}
	}

	for _, photo := range photos {
		if photo == nil || photo.Reader == nil || s.imageStorage == nil {
			continue
		}
		path, err := s.imageStorage.UploadImage(ctx, photo.Reader, "posts", photo.FileName)
		if err != nil {
			return nil, err
		}
		photoPaths = append(photoPaths, path)
	}

	encoded, err := json.Marshal(photoPaths)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:  userID,
		Content: s.sanitizer.Sanitize(req.Content),
		Photos:  datatypes.JSON(encoded),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.searchService != nil {
		created, err := s.postRepo.FindByID(ctx, post.ID)
		if err == nil {
			if err := s.searchService.IndexPost(created); err != nil {
				// Search is an index, not the source of truth.
				log.Printf("failed to index post %s: %v", post.ID, err)
			}
		}
	}
	return post, nil
}

func (s *feedService) UpdatePost(ctx context.Context, userID, postID uuid.UUID, content string) error {
	post, err := s.findOwnPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	post.Content = s.sanitizer.Sanitize(content)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return err
	}

	if s.searchService != nil {
		_ = s.searchService.IndexPost(post)
	}
	return nil
}

func (s *feedService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.findOwnPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	photos := decodePhotos(post.Photos)
	if err := s.postRepo.DeleteCascade(ctx, postID); err != nil {
		return err
	}

	if s.imageStorage != nil {
		for _, photo := range photos {
			_ = s.imageStorage.DeleteImage(ctx, photo)
		}
	}
	if s.searchService != nil {
		_ = s.searchService.DeletePost(postID.String())
	}
	return nil
}

func (s *feedService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) error {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	liked, err := s.likeRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return err
	}
	if liked {
		return s.likeRepo.Unlike(ctx, userID, postID)
	}
	return s.likeRepo.Like(ctx, userID, postID)
}

func (s *feedService) AddComment(ctx context.Context, userID, postID uuid.UUID, content string) error {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: s.sanitizer.Sanitize(content),
	}
	return s.commentRepo.Create(ctx, comment)
}

func (s *feedService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	if comment.UserID != userID {
		return apperror.ErrForbidden
	}
	return s.commentRepo.Delete(ctx, commentID)
}

func (s *feedService) findOwnPost(ctx context.Context, userID, postID uuid.UUID) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	return post, nil
}
