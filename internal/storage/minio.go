package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/visitordesk/visitor-service/internal/config"
)

// MinioStorage talks to S3 compatible endpoints such as DigitalOcean Spaces.
type MinioStorage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewMinioStorage builds a client from config. It does not contact the endpoint.
func NewMinioStorage(cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &MinioStorage{client: client, bucket: cfg.Bucket, publicBaseURL: base}, nil
}

func (s *MinioStorage) PutObject(ctx context.Context, key string, body []byte, contentType string, visibility Visibility) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if visibility == VisibilityPublic {
		opts.UserMetadata = map[string]string{"x-amz-acl": string(VisibilityPublic)}
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), opts); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.url(key), nil
}

func (s *MinioStorage) GetObject(ctx context.Context, key string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, translate(err)
	}
	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, translate(err)
	}
	return &Object{Key: key, ContentType: info.ContentType, Body: body}, nil
}

func (s *MinioStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	result := []ObjectInfo{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		result = append(result, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          s.url(obj.Key),
		})
	}
	return result, nil
}

func (s *MinioStorage) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func (s *MinioStorage) url(key string) string {
	return s.publicBaseURL + "/" + key
}

func translate(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return ErrObjectNotFound
	}
	return err
}
