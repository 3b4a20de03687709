package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage keeps objects in process memory for development and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
}

type memoryObject struct {
	Object
	visibility Visibility
	modified   time.Time
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

func (m *MemoryStorage) PutObject(_ context.Context, key string, body []byte, contentType string, visibility Visibility) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := append([]byte(nil), body...)
	m.objects[key] = memoryObject{
		Object:     Object{Key: key, ContentType: contentType, Body: copied},
		visibility: visibility,
		modified:   time.Now().UTC(),
	}
	return m.baseURL + "/" + key, nil
}

func (m *MemoryStorage) GetObject(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	out := obj.Object
	return &out, nil
}

func (m *MemoryStorage) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []ObjectInfo{}
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		result = append(result, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.Body)),
			LastModified: obj.modified,
			URL:          m.baseURL + "/" + key,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }

// VisibilityOf reports the ACL an object was stored with.
func (m *MemoryStorage) VisibilityOf(key string) (Visibility, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.visibility, ok
}
