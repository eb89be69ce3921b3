package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/calonsog/taskapi/internal/domain"
)

const (
	maxAvatarBytes = 1000000
	avatarEdge     = 250
)

// AvatarService validates uploaded avatar images, normalizes them to a
// fixed-size PNG, and stores the bytes on the user record.
type AvatarService struct {
	users domain.UserRepository
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService(users domain.UserRepository) *AvatarService {
	return &AvatarService{users: users}
}

// Upload checks the filename extension and byte size, then resizes the
// image to a 250x250 PNG before storing it.
func (s *AvatarService) Upload(ctx context.Context, userID int64, filename string, data []byte) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return fmt.Errorf("%w: please provide an image in JPG, JPEG, or PNG format", domain.ErrInvalidInput)
	}

	if len(data) > maxAvatarBytes {
		return fmt.Errorf("%w: image exceeds the %d byte limit", domain.ErrInvalidInput, maxAvatarBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: unable to decode image", domain.ErrInvalidInput)
	}

	// Cover-crop so the result is always exactly square.
	normalized := imaging.Fill(img, avatarEdge, avatarEdge, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, normalized, imaging.PNG); err != nil {
		return fmt.Errorf("encode avatar png: %w", err)
	}

	if err := s.users.SaveAvatar(ctx, userID, buf.Bytes()); err != nil {
		return fmt.Errorf("save avatar: %w", err)
	}
	return nil
}

// Delete clears the stored avatar.
func (s *AvatarService) Delete(ctx context.Context, userID int64) error {
	return s.users.ClearAvatar(ctx, userID)
}

// Get returns the stored PNG bytes for any user. Missing user and missing
// avatar are both ErrNotFound.
func (s *AvatarService) Get(ctx context.Context, userID int64) ([]byte, error) {
	return s.users.GetAvatar(ctx, userID)
}
