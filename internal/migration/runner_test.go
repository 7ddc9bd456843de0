package migration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/media"
)

const remoteBase = "https://storage.googleapis.com/shop-media/"

type memStore struct {
	rows      map[string]map[uint]string
	updateErr map[uint]error
	listErr   error
	updates   int
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]map[uint]string{}, updateErr: map[uint]error{}}
}

func (s *memStore) put(collection string, id uint, v string) {
	if s.rows[collection] == nil {
		s.rows[collection] = map[uint]string{}
	}
	s.rows[collection][id] = v
}

func (s *memStore) List(_ context.Context, collection, _ string) ([]Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []Record
	for id, v := range s.rows[collection] {
		if v != "" {
			out = append(out, Record{ID: id, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdateField(_ context.Context, collection string, id uint, _, value string) error {
	if err := s.updateErr[id]; err != nil {
		return err
	}
	s.updates++
	s.rows[collection][id] = value
	return nil
}

type fakeMedia struct {
	uploads  []string
	failFor  map[string]bool
	checkErr error
}

func (f *fakeMedia) Check(context.Context) error { return f.checkErr }

func (f *fakeMedia) Upload(_ context.Context, localPath, folder string) (media.Uploaded, error) {
	if f.failFor[filepath.Base(localPath)] {
		return media.Uploaded{}, errors.New("remote said 503")
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return media.Uploaded{}, err
	}
	f.uploads = append(f.uploads, localPath)
	id, format := media.PublicID(folder, filepath.Base(localPath), data)
	return media.Uploaded{PublicID: id, Format: format, SecureURL: media.CanonicalURL(remoteBase, id, format)}, nil
}

func writeFile(t *testing.T, root, rel string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("img:"+rel), 0o644))
	return p
}

var productMapping = []Mapping{{Collection: "products", Field: "main_image", Folder: "products/main"}}

func newRunner(store RecordStore, m MediaStore, root string) *Runner {
	return &Runner{Store: store, Media: m, MediaRoot: root, RemoteBase: remoteBase}
}

func TestRun_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	local := writeFile(t, root, "products/main/sub.jpg")

	store := newMemStore()
	store.put("products", 1, "products/main/sub.jpg")
	fm := &fakeMedia{}
	r := newRunner(store, fm, root)

	res, err := r.Run(context.Background(), productMapping)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Migrated)
	assert.Equal(t, 1, res.Deleted)
	assert.Empty(t, res.Failures)

	migrated := store.rows["products"][1]
	assert.Equal(t, media.KindRemote, media.ParseRef(migrated, remoteBase).Kind)
	_, statErr := os.Stat(local)
	assert.True(t, os.IsNotExist(statErr))

	res, err = r.Run(context.Background(), productMapping)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Migrated)
	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, fm.uploads, 1)
	assert.Equal(t, migrated, store.rows["products"][1])
}

func TestRun_PartialFailureIsolated(t *testing.T) {
	root := t.TempDir()
	store := newMemStore()
	for i := uint(1); i <= 3; i++ {
		rel := fmt.Sprintf("products/main/p%d.jpg", i)
		writeFile(t, root, rel)
		store.put("products", i, rel)
	}
	fm := &fakeMedia{failFor: map[string]bool{"p2.jpg": true}}

	res, err := newRunner(store, fm, root).Run(context.Background(), productMapping)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Migrated)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, uint(2), res.Failures[0].EntityID)
	assert.Equal(t, "products", res.Failures[0].Collection)
	assert.ErrorIs(t, res.Failures[0].Err, domain.ErrMediaUpload)

	assert.Equal(t, "products/main/p2.jpg", store.rows["products"][2])
	assert.FileExists(t, filepath.Join(root, "products", "main", "p2.jpg"))
	assert.Equal(t, media.KindRemote, media.ParseRef(store.rows["products"][3], remoteBase).Kind)
}

func TestRun_SkipsMissingEmptyAndExternal(t *testing.T) {
	root := t.TempDir()
	store := newMemStore()
	store.put("products", 1, "products/main/gone.jpg")
	store.put("products", 2, "")
	store.put("products", 3, "https://cdn.example.com/x.jpg")
	fm := &fakeMedia{}

	res, err := newRunner(store, fm, root).Run(context.Background(), productMapping)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, res.Migrated)
	assert.Empty(t, res.Failures)
	assert.Empty(t, fm.uploads)
	assert.Equal(t, "https://cdn.example.com/x.jpg", store.rows["products"][3])
}

func TestRun_RewriteFailureKeepsLocal(t *testing.T) {
	root := t.TempDir()
	local := writeFile(t, root, "categories/amps.png")
	store := newMemStore()
	store.put("categories", 7, "categories/amps.png")
	store.updateErr[7] = fmt.Errorf("%w: db gone", domain.ErrPersistence)

	res, err := newRunner(store, &fakeMedia{}, root).Run(context.Background(),
		[]Mapping{{Collection: "categories", Field: "image", Folder: "categories"}})
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, domain.ErrPersistence)
	assert.Zero(t, res.Migrated)
	assert.FileExists(t, local)
}

func TestRun_LocalDeleteFailureIsNonFatal(t *testing.T) {
	root := t.TempDir()
	local := writeFile(t, root, "testimonials/jane.png")
	store := newMemStore()
	store.put("testimonials", 1, "testimonials/jane.png")

	r := newRunner(store, &fakeMedia{}, root)
	r.Remove = func(string) error { return errors.New("read-only filesystem") }

	res, err := r.Run(context.Background(), []Mapping{{Collection: "testimonials", Field: "avatar", Folder: "testimonials"}})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Migrated)
	assert.Zero(t, res.Deleted)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []string{local}, res.Orphaned)
	assert.Equal(t, media.KindRemote, media.ParseRef(store.rows["testimonials"][1], remoteBase).Kind)
	assert.Contains(t, res.Summary(), "orphaned=1")
}

func TestRun_KeepLocal(t *testing.T) {
	root := t.TempDir()
	local := writeFile(t, root, "products/gallery/a.jpg")
	store := newMemStore()
	store.put("product_images", 1, "products/gallery/a.jpg")

	r := newRunner(store, &fakeMedia{}, root)
	r.KeepLocal = true

	res, err := r.Run(context.Background(), []Mapping{{Collection: "product_images", Field: "image", Folder: "products/gallery"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Migrated)
	assert.Zero(t, res.Deleted)
	assert.FileExists(t, local)
}

func TestRun_PathOutsideRootFails(t *testing.T) {
	root := t.TempDir()
	store := newMemStore()
	store.put("products", 1, "../../etc/passwd")
	fm := &fakeMedia{}

	res, err := newRunner(store, fm, root).Run(context.Background(), productMapping)
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, media.ErrOutsideRoot)
	assert.Empty(t, fm.uploads)
}

func TestRun_UnreachableMediaStoreIsFatal(t *testing.T) {
	store := newMemStore()
	store.put("products", 1, "products/main/sub.jpg")
	fm := &fakeMedia{checkErr: errors.New("403 forbidden")}

	_, err := newRunner(store, fm, t.TempDir()).Run(context.Background(), productMapping)
	require.Error(t, err)
	assert.Empty(t, fm.uploads)
}

func TestRun_ListFailureContained(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("relation does not exist")

	res, err := newRunner(store, &fakeMedia{}, t.TempDir()).Run(context.Background(), DefaultMappings())
	require.NoError(t, err)
	assert.Len(t, res.Failures, len(DefaultMappings()))
}

func TestRun_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "products/main/sub.jpg")
	store := newMemStore()
	store.put("products", 1, "products/main/sub.jpg")
	fm := &fakeMedia{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(store, fm, root).Run(ctx, productMapping)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fm.uploads)
}
