package service

import (
	"context"
	"errors"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/storage"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// Upload entities select the key folder.
const (
	UploadEntityFile  = "file"
	UploadEntityImage = "image"
)

var imageContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// UploadInput is one received multipart file.
type UploadInput struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Download is an object ready to be sent as an attachment.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// UploadService stores files in the object bucket.
type UploadService struct {
	store  storage.ObjectStorage
	keys   storage.KeyBuilder
	logger *zap.Logger
}

func NewUploadService(store storage.ObjectStorage, keys storage.KeyBuilder, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{store: store, keys: keys, logger: logger}
}

// UploadPublic stores a publicly readable file and returns its URL.
func (s *UploadService) UploadPublic(ctx context.Context, entity string, file *UploadInput) (string, error) {
	if file == nil {
		return "", apperrors.NewBadRequest("File not uploaded", "")
	}
	if entity == UploadEntityImage && !imageContentTypes[strings.ToLower(file.ContentType)] {
		return "", apperrors.NewBadRequest("File format should be PNG,JPG,JPEG,WEBP", "")
	}

	key := s.keys.Build(entity, file.Filename)
	url, err := s.store.PutObject(ctx, key, file.Body, file.ContentType, storage.VisibilityPublic)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	s.logger.Info("object uploaded", zap.String("key", key), zap.Int("size", len(file.Body)))
	return url, nil
}

// Download fetches the object stored under key.
func (s *UploadService) Download(ctx context.Context, key string) (*Download, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.NewBadRequest("No url defined in the body request", "")
	}
	object, err := s.store.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperrors.NewEntityNotFound("Object", key)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &Download{Filename: path.Base(key), ContentType: object.ContentType, Body: object.Body}, nil
}

// List returns objects below prefix, scoped to the configured key prefix.
func (s *UploadService) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	objects, err := s.store.ListObjects(ctx, s.keys.Scoped(prefix))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return objects, nil
}
