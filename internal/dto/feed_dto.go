package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Content        string `form:"content" binding:"required"`
	ExistingPhotos string `form:"existing_photos"` // JSON array of already-uploaded paths
}

type UpdatePostRequest struct {
	Content string `json:"content" binding:"required"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID             uuid.UUID `json:"id"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"timestamp"`
}

type PostResponse struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	Content        string            `json:"content"`
	Photos         []string          `json:"photos"`
	AuthorUsername string            `json:"author_username"`
	AuthorAvatar   *string           `json:"author_avatar"`
	IsAuthor       bool              `json:"is_author"`
	Comments       []CommentResponse `json:"comments"`
	Likes          []uuid.UUID       `json:"likes"`
	CreatedAt      time.Time         `json:"timestamp"`
}

type CreatePersonRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
