package storage

import (
	"context"
	"io"
)

// ImageStorage is the contract for uploaded images (avatars, feed photos).
type ImageStorage interface {
	// UploadImage stores the image and returns its public URL or path.
	// folder is a logical folder such as "avatars" or "posts".
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage removes a previously uploaded image by its URL/path.
	// Deleting an image that no longer exists is not an error.
	DeleteImage(ctx context.Context, fileURL string) error
}
