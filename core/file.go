package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/disintegration/imaging"
)

const (
	BucketAvatars   = "avatars"
	BucketDocuments = "documents"

	avatarSize        = 300
	avatarJPEGQuality = 90
)

// FileConfig bounds what uploads are accepted. Files are buffered fully in
// memory before processing, so MaxFileSize is enforced before any work.
type FileConfig struct {
	MaxFileSize  int64
	AllowedTypes []string
}

func DefaultFileConfig() FileConfig {
	return FileConfig{
		MaxFileSize:  5 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	}
}

// FileService handles avatar and document blobs in object storage.
type FileService struct {
	store  ObjectStorage
	users  UserStorage
	config FileConfig
	now    func() time.Time
}

func NewFileService(store ObjectStorage, users UserStorage, config FileConfig) *FileService {
	if config.MaxFileSize == 0 {
		config = DefaultFileConfig()
	}
	return &FileService{
		store:  store,
		users:  users,
		config: config,
		now:    time.Now,
	}
}

// EnsureBuckets creates the avatar and document buckets if they are missing.
func (s *FileService) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{BucketAvatars, BucketDocuments} {
		if err := s.store.EnsureBucket(ctx, bucket); err != nil {
			return fmt.Errorf("failed to ensure bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// UploadAvatar validates, resizes, and stores the user's avatar, then records
// the public URL on the user record. The image is normalized to a 300x300
// cover-cropped JPEG regardless of the uploaded format.
func (s *FileService) UploadAvatar(ctx context.Context, userID string, file []byte, mimetype string) (string, error) {
	if !s.isAllowedImage(mimetype) {
		return "", ErrNotAnImage
	}
	if int64(len(file)) > s.config.MaxFileSize {
		return "", ErrFileTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(file))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	resized := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, imaging.JPEG, imaging.JPEGQuality(avatarJPEGQuality)); err != nil {
		return "", fmt.Errorf("failed to encode avatar: %w", err)
	}

	name := fmt.Sprintf("%s-%d.jpg", userID, s.now().UnixMilli())

	if err := s.store.Put(ctx, BucketAvatars, name, out.Bytes(), "image/jpeg"); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	avatarURL := "/api/files/avatars/" + name
	if err := s.users.SetAvatarURL(ctx, userID, avatarURL); err != nil {
		return "", fmt.Errorf("failed to update avatar url: %w", err)
	}

	return avatarURL, nil
}

// Fetch streams a stored blob back to the caller along with its content type.
func (s *FileService) Fetch(ctx context.Context, bucket, name string) (io.ReadCloser, *ObjectInfo, error) {
	body, info, err := s.store.Get(ctx, bucket, name)
	if err != nil {
		return nil, nil, ErrFileNotFound
	}
	return body, info, nil
}

// Delete removes a stored blob. Missing objects are not an error.
func (s *FileService) Delete(ctx context.Context, bucket, name string) bool {
	return s.store.Delete(ctx, bucket, name) == nil
}

func (s *FileService) isAllowedImage(mimetype string) bool {
	for _, t := range s.config.AllowedTypes {
		if t == mimetype {
			return true
		}
	}
	return false
}
