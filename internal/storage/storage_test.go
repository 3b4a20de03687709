package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitordesk/visitor-service/internal/config"
)

func fixedBuilder(prefix string) KeyBuilder {
	return KeyBuilder{
		Prefix: prefix,
		Now:    func() time.Time { return time.UnixMilli(1700000000123) },
		NewID:  func() string { return "0f8fad5b-d9cb-469f-a165-70867728950e" },
	}
}

func TestKeyBuilderFormat(t *testing.T) {
	key := fixedBuilder("visitor").Build("Visitors", "id card.png")
	assert.Equal(t, "visitor/uploads/visitors/1700000000123-0f8fad5b-d9cb-469f-a165-70867728950e-id_card.png", key)
}

func TestKeyBuilderStripsTraversal(t *testing.T) {
	b := fixedBuilder("/visitor/")
	key := b.Build("../../etc", "../../passwd")
	assert.Equal(t, "visitor/uploads/-..-etc/1700000000123-0f8fad5b-d9cb-469f-a165-70867728950e-passwd", key)
	assert.Contains(t, b.Build("", ""), "/uploads/general/")
	assert.True(t, len(b.Build("x", "")) > 0)
}

func TestKeyBuilderScoped(t *testing.T) {
	b := fixedBuilder("visitor")
	assert.Equal(t, "visitor/", b.Scoped(""))
	assert.Equal(t, "visitor/uploads/general", b.Scoped("uploads/general"))
	assert.Equal(t, "visitor/uploads", b.Scoped("visitor/uploads"))
	assert.Equal(t, "uploads", fixedBuilder("").Scoped("/uploads"))
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage("https://cdn.example.com/")

	url, err := store.PutObject(ctx, "visitor/uploads/general/a.txt", []byte("hello"), "text/plain", VisibilityPublic)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/visitor/uploads/general/a.txt", url)

	obj, err := store.GetObject(ctx, "visitor/uploads/general/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(obj.Body))
	assert.Equal(t, "text/plain", obj.ContentType)

	vis, ok := store.VisibilityOf("visitor/uploads/general/a.txt")
	require.True(t, ok)
	assert.Equal(t, VisibilityPublic, vis)

	_, err = store.GetObject(ctx, "missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	list, err := store.ListObjects(ctx, "visitor/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(5), list[0].Size)
}

func TestNewMinioStoragePublicURL(t *testing.T) {
	s, err := NewMinioStorage(config.StorageConfig{
		Endpoint: "nyc3.digitaloceanspaces.com",
		Bucket:   "visitors",
		UseSSL:   true,
		Region:   "us-east-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://nyc3.digitaloceanspaces.com/visitors/k", s.url("k"))

	s, err = NewMinioStorage(config.StorageConfig{
		Endpoint:      "localhost:9000",
		Bucket:        "b",
		PublicBaseURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k", s.url("k"))
}
