package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://storage.googleapis.com/shop-media/"

func TestParseRef(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
	}{
		{"", KindEmpty},
		{"   ", KindEmpty},
		{"products/main/sub.jpg", KindLocal},
		{"/media/categories/amps.png", KindLocal},
		{base + "products/main/sub_abc.jpg", KindRemote},
		{"https://storage.googleapis.com/other-bucket/x.jpg", KindExternal},
		{"https://cdn.example.com/products/main/sub.jpg", KindExternal},
		{"//cdn.example.com/x.jpg", KindExternal},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.kind, ParseRef(tt.raw, base).Kind)
		})
	}
}

func TestParseRef_NoRemoteBase(t *testing.T) {
	assert.Equal(t, KindExternal, ParseRef(base+"x.jpg", "").Kind)
}

func TestLocalPath(t *testing.T) {
	root := filepath.Join("var", "media")

	p, err := ParseRef("products/main/sub.jpg", base).LocalPath(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "products", "main", "sub.jpg"), p)

	p, err = ParseRef("/media/categories/amps.png", base).LocalPath(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "categories", "amps.png"), p)

	_, err = ParseRef("../../etc/passwd", base).LocalPath(root)
	require.ErrorIs(t, err, ErrOutsideRoot)
}

func TestPublicID_StableForSameContent(t *testing.T) {
	id1, f1 := PublicID("products/main", "Sub Woofer.JPG", []byte("abc"))
	id2, f2 := PublicID("/products/main/", "Sub Woofer.JPG", []byte("abc"))
	id3, _ := PublicID("products/main", "Sub Woofer.JPG", []byte("abd"))

	assert.Equal(t, id1, id2)
	assert.Equal(t, "jpg", f1)
	assert.Equal(t, f1, f2)
	assert.NotEqual(t, id1, id3)
	assert.True(t, strings.HasPrefix(id1, "products/main/Sub_Woofer_"), id1)
}

func TestPublicID_Fallbacks(t *testing.T) {
	id, format := PublicID("", "!!!", nil)
	assert.True(t, strings.HasPrefix(id, "file_"), id)
	assert.Equal(t, "bin", format)
}

func TestCanonicalURL_IsRemote(t *testing.T) {
	u := CanonicalURL(RemoteBase("https://storage.googleapis.com/", "shop-media"), "categories/amp_0a1b", "png")
	assert.Equal(t, base+"categories/amp_0a1b.png", u)
	assert.Equal(t, KindRemote, ParseRef(u, base).Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "local", KindLocal.String())
	assert.Equal(t, "empty", KindEmpty.String())
}

func TestGCSStore_Unconfigured(t *testing.T) {
	s := NewGCSStore(nil, "", "https://storage.googleapis.com")
	require.Error(t, s.Check(context.Background()))
	_, err := s.Put(context.Background(), strings.NewReader("x"), "f", "a.jpg")
	require.Error(t, err)
}

// Runs against a real bucket or fake-gcs-server when GCS_TEST_BUCKET is set.
func TestGCSStore_Upload(t *testing.T) {
	bucket := os.Getenv("GCS_TEST_BUCKET")
	if bucket == "" {
		t.Skip("GCS_TEST_BUCKET not set")
	}
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	require.NoError(t, err)
	defer client.Close()

	s := NewGCSStore(client, bucket, "https://storage.googleapis.com")
	require.NoError(t, s.Check(ctx))

	dir := t.TempDir()
	p := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	up, err := s.Upload(ctx, p, "storefront-test")
	require.NoError(t, err)
	n, err := s.Count(ctx, "storefront-test")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
	assert.Equal(t, "txt", up.Format)
	assert.Equal(t, KindRemote, ParseRef(up.SecureURL, s.RemoteBase()).Kind)
	require.NoError(t, s.Delete(ctx, up.SecureURL))
}
