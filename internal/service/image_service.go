package service

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/hostelhub/mess-api/pkg/errors"
	"github.com/hostelhub/mess-api/pkg/storage"
)

type imageStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// StoredImage describes a persisted upload.
type StoredImage struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ImageService stores menu and issue photos on local disk and hands out
// HMAC-signed download URLs so the uploads directory is never served
// directly.
type ImageService struct {
	storage   imageStorage
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	apiPrefix string
	maxBytes  int64
}

// NewImageService constructs an ImageService.
func NewImageService(store imageStorage, signer *storage.SignedURLSigner, apiPrefix string, maxBytes int64, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	prefix := strings.TrimRight(apiPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ImageService{storage: store, signer: signer, logger: logger, apiPrefix: prefix, maxBytes: maxBytes}
}

// Upload validates and stores an image under the given category
// ("menus", "issues" or "notices") and returns a signed URL for it.
func (s *ImageService) Upload(category, originalName string, data []byte) (*StoredImage, error) {
	switch category {
	case "menus", "issues", "notices":
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown image category")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}
	ext := strings.ToLower(path.Ext(originalName))
	contentType, ok := allowedImageExtensions[ext]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported image type")
	}

	imageID := uuid.NewString()
	relPath, err := s.storage.Save(path.Join(category, imageID+ext), data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}

	token, expiresAt, err := s.signer.Generate(imageID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign image url")
	}

	return &StoredImage{
		ID:          imageID,
		Path:        relPath,
		URL:         fmt.Sprintf("%s/images/%s", s.apiPrefix, token),
		ContentType: contentType,
		ExpiresAt:   expiresAt,
	}, nil
}

// SignedURL re-signs an existing stored path, e.g. when rendering a menu
// whose image was uploaded earlier.
func (s *ImageService) SignedURL(relPath string) (string, error) {
	token, _, err := s.signer.Generate(path.Base(relPath), relPath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/images/%s", s.apiPrefix, token), nil
}

// Resolve validates a download token and opens the backing file.
func (s *ImageService) Resolve(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired image token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "image not found")
	}
	contentType := allowedImageExtensions[strings.ToLower(path.Ext(relPath))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return file, contentType, nil
}

// Delete removes a stored image.
func (s *ImageService) Delete(relPath string) error {
	if err := s.storage.Delete(relPath); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete image")
	}
	return nil
}
