package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Visibility controls the ACL applied to an uploaded object.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public-read"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

// Object is a downloaded object body.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
}

// ObjectInfo describes a listed object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url"`
}

// ObjectStorage is the bucket the upload endpoints write to.
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, visibility Visibility) (string, error)
	GetObject(ctx context.Context, key string) (*Object, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Ping(ctx context.Context) error
}

// KeyBuilder produces object keys of the form
// <prefix>/uploads/<entity>/<unixmillis>-<uuid>-<name>.
type KeyBuilder struct {
	Prefix string
	Now    func() time.Time
	NewID  func() string
}

func NewKeyBuilder(prefix string) KeyBuilder {
	return KeyBuilder{Prefix: prefix, Now: time.Now, NewID: uuid.NewString}
}

// Build returns a unique key for an upload of name under entity.
func (b KeyBuilder) Build(entity, name string) string {
	now := b.Now
	if now == nil {
		now = time.Now
	}
	newID := b.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	file := fmt.Sprintf("%d-%s-%s", now().UnixMilli(), newID(), sanitizeName(name))
	return path.Join(strings.Trim(b.Prefix, "/"), "uploads", sanitizeSegment(entity), file)
}

// Scoped prepends the configured prefix to a caller supplied listing prefix.
func (b KeyBuilder) Scoped(prefix string) string {
	base := strings.Trim(b.Prefix, "/")
	prefix = strings.TrimLeft(prefix, "/")
	switch {
	case base == "":
		return prefix
	case prefix == "":
		return base + "/"
	case strings.HasPrefix(prefix, base+"/"):
		return prefix
	}
	return base + "/" + prefix
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

func sanitizeSegment(entity string) string {
	entity = strings.Trim(strings.ReplaceAll(entity, "/", "-"), ". ")
	if entity == "" {
		return "general"
	}
	return strings.ToLower(entity)
}
