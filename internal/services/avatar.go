package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ObjectStorage is the slice of the storage API the avatar flow needs.
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// AvatarService uploads profile images to object storage under a
// deterministic per-user key, so re-uploads replace the prior object.
type AvatarService struct {
	storage ObjectStorage
	log     *zap.Logger
}

func NewAvatarService(storage ObjectStorage, log *zap.Logger) *AvatarService {
	return &AvatarService{storage: storage, log: log}
}

// AvatarKey derives the storage key for a user's avatar from the uploaded
// filename's extension: "{userID}-profile.{ext}".
func AvatarKey(userID, filename string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "", errors.New("file extension is required")
	}
	return userID + "-profile." + ext, nil
}

// Upload stores the avatar bytes and returns the object's public URL. The
// detailed fault is logged here; callers surface a generic message.
func (s *AvatarService) Upload(ctx context.Context, userID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key, err := AvatarKey(userID, filename)
	if err != nil {
		return "", err
	}

	if err := s.storage.Put(ctx, key, r, size, contentType); err != nil {
		s.log.Error("avatar upload failed",
			zap.String("user_id", userID),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", err
	}

	return s.storage.PublicURL(key), nil
}
