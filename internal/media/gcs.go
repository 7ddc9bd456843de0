package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/Skotchmaster/storefront/internal/domain"
)

// MaxObjectSize bounds a single upload.
const MaxObjectSize = 20 << 20

type Uploaded struct {
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	SecureURL string `json:"secure_url"`
}

// GCSStore puts media objects in a Cloud Storage bucket and serves them
// from PublicBaseURL/<bucket>/<public_id>.<format>.
type GCSStore struct {
	Client        *storage.Client
	Bucket        string
	PublicBaseURL string
}

func NewGCSStore(client *storage.Client, bucket, publicBaseURL string) *GCSStore {
	return &GCSStore{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// RemoteBase is the prefix of every URL this store hands out.
func (s *GCSStore) RemoteBase() string {
	return RemoteBase(s.PublicBaseURL, s.Bucket)
}

func RemoteBase(publicBaseURL, bucket string) string {
	return strings.TrimRight(publicBaseURL, "/") + "/" + bucket + "/"
}

// Check fails when the bucket cannot be reached with the current credentials.
func (s *GCSStore) Check(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("gcs: nil storage client")
	}
	if s.Bucket == "" {
		return errors.New("gcs: bucket is empty")
	}
	if _, err := s.Client.Bucket(s.Bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("gcs: bucket %q: %w", s.Bucket, err)
	}
	return nil
}

// Upload copies the file at localPath into folder.
func (s *GCSStore) Upload(ctx context.Context, localPath, folder string) (Uploaded, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Uploaded{}, fmt.Errorf("%w: %v", domain.ErrMediaUpload, err)
	}
	defer f.Close()
	return s.Put(ctx, f, folder, filepath.Base(localPath))
}

// Put stores r under folder. The public id is derived from the name and
// the content hash, so uploading the same bytes twice yields the same object.
func (s *GCSStore) Put(ctx context.Context, r io.Reader, folder, name string) (Uploaded, error) {
	if s.Client == nil || s.Bucket == "" {
		return Uploaded{}, fmt.Errorf("%w: store not configured", domain.ErrMediaUpload)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxObjectSize+1))
	if err != nil {
		return Uploaded{}, fmt.Errorf("%w: read: %v", domain.ErrMediaUpload, err)
	}
	if len(data) > MaxObjectSize {
		return Uploaded{}, fmt.Errorf("%w: object larger than %d bytes", domain.ErrMediaUpload, MaxObjectSize)
	}

	publicID, format := PublicID(folder, name, data)
	object := ObjectName(publicID, format)

	w := s.Client.Bucket(s.Bucket).Object(object).NewWriter(ctx)
	if ct := mime.TypeByExtension("." + format); ct != "" {
		w.ContentType = ct
	}
	w.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return Uploaded{}, fmt.Errorf("%w: write %s: %v", domain.ErrMediaUpload, object, err)
	}
	if err := w.Close(); err != nil {
		return Uploaded{}, fmt.Errorf("%w: close %s: %v", domain.ErrMediaUpload, object, err)
	}

	return Uploaded{
		PublicID:  publicID,
		Format:    format,
		SecureURL: CanonicalURL(s.RemoteBase(), publicID, format),
	}, nil
}

// Delete removes the object behind a URL previously returned by Put.
// Missing objects and foreign URLs are ignored.
func (s *GCSStore) Delete(ctx context.Context, url string) error {
	base := s.RemoteBase()
	if !strings.HasPrefix(url, base) {
		return nil
	}
	err := s.Client.Bucket(s.Bucket).Object(strings.TrimPrefix(url, base)).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// Count returns how many objects live under folder.
func (s *GCSStore) Count(ctx context.Context, folder string) (int, error) {
	prefix := strings.Trim(folder, "/")
	if prefix != "" {
		prefix += "/"
	}
	it := s.Client.Bucket(s.Bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	n := 0
	for {
		_, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func PublicID(folder, name string, data []byte) (publicID, format string) {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(path.Base(filepath.ToSlash(name)), ext)
	stem = sanitize(stem)
	if stem == "" {
		stem = "file"
	}
	format = strings.ToLower(strings.TrimPrefix(ext, "."))
	if format == "" {
		format = "bin"
	}

	sum := sha256.Sum256(data)
	id := stem + "_" + hex.EncodeToString(sum[:6])

	folder = strings.Trim(folder, "/")
	if folder != "" {
		id = folder + "/" + id
	}
	return id, format
}

func ObjectName(publicID, format string) string {
	return publicID + "." + format
}

func CanonicalURL(remoteBase, publicID, format string) string {
	return remoteBase + ObjectName(publicID, format)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('_')
		}
	}
	return b.String()
}
