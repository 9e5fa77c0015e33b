package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/store"
)

// newTestStore creates a FileStore backed by a temp directory.
func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs := New(store.Config{DataDir: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, fs.Open(context.Background()))
	return fs
}

func TestFileStore_Open_CreatesDataDir(t *testing.T) {
	fs := newTestStore(t)
	info, err := os.Stat(fs.DataDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStore_SaveWritesFlatFile(t *testing.T) {
	ctx := context.Background()
	fs := newTestStore(t)

	rs, err := mapping.FromFlat(mapping.EntityContact, mapping.FlatMapping{
		{Source: "last_name", Target: "properties.lastname"},
		{Source: "id", Target: "hubspot_id"},
	})
	require.NoError(t, err)
	require.NoError(t, fs.Save(ctx, rs))

	data, err := os.ReadFile(filepath.Join(fs.DataDir(), "contact_mapping.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"last_name\": \"properties.lastname\",\n  \"id\": \"hubspot_id\"\n}\n", string(data))

	leftovers, err := filepath.Glob(filepath.Join(fs.DataDir(), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp file should be renamed away")
}

func TestFileStore_RoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := New(store.Config{DataDir: dir})
	require.NoError(t, first.Save(ctx, mapping.DefaultsFor(mapping.EntityProject)))

	second := New(store.Config{DataDir: dir})
	got, err := second.Load(ctx, mapping.EntityProject)
	require.NoError(t, err)
	assert.Equal(t, mapping.DefaultsFor(mapping.EntityProject).Flat(), got.Flat())
	assert.Equal(t, mapping.EntityProject, got.Entity)
}

func TestFileStore_LoadMissing(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.Load(context.Background(), mapping.EntityDeal)
	assert.ErrorIs(t, err, store.ErrNotFound)

	var nf *store.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, mapping.EntityDeal, nf.Entity)
}

func TestFileStore_LoadLegacyDuplicateTargets(t *testing.T) {
	fs := newTestStore(t)
	legacy := `{"first_name": "properties.name", "last_name": "properties.name"}`
	require.NoError(t, os.WriteFile(filepath.Join(fs.DataDir(), "contact_mapping.json"), []byte(legacy), 0600))

	rs, err := fs.Load(context.Background(), mapping.EntityContact)
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	require.Len(t, mapping.Validate(rs, nil), 1)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(fs.DataDir(), "deal_mapping.json"), []byte(`{"name": 5}`), 0600))

	_, err := fs.Load(context.Background(), mapping.EntityDeal)
	assert.ErrorIs(t, err, store.ErrStorage)
	assert.ErrorIs(t, err, mapping.ErrMalformedInput)
}

func TestFileStore_RejectsUnsafeEntityNames(t *testing.T) {
	ctx := context.Background()
	fs := newTestStore(t)

	for _, name := range []string{"", "../etc", "a/b", ".hidden"} {
		_, err := fs.Load(ctx, mapping.EntityType(name))
		assert.ErrorIs(t, err, store.ErrStorage, name)
	}
}

func TestFileStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	fs := newTestStore(t)

	entities, err := fs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entities)

	require.NoError(t, fs.Save(ctx, mapping.DefaultsFor(mapping.EntityDeal)))
	require.NoError(t, fs.Save(ctx, mapping.DefaultsFor(mapping.EntityContact)))
	require.NoError(t, os.WriteFile(filepath.Join(fs.DataDir(), "notes.txt"), []byte("x"), 0600))

	entities, err = fs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mapping.EntityType{mapping.EntityContact, mapping.EntityDeal}, entities)

	require.NoError(t, fs.Delete(ctx, mapping.EntityDeal))
	assert.ErrorIs(t, fs.Delete(ctx, mapping.EntityDeal), store.ErrNotFound)

	entities, err = fs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mapping.EntityType{mapping.EntityContact}, entities)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	fs := New(store.Config{DataDir: filepath.Join(t.TempDir(), "nope")})
	entities, err := fs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestFileStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := New(store.Config{DataDir: dir, ReadOnly: true})
	require.NoError(t, fs.Open(ctx))

	err := fs.Save(ctx, mapping.DefaultsFor(mapping.EntityContact))
	assert.ErrorIs(t, err, store.ErrReadOnly)
	assert.ErrorIs(t, err, store.ErrStorage)
	assert.ErrorIs(t, fs.Delete(ctx, mapping.EntityContact), store.ErrReadOnly)
}

func TestFileStore_ChangeListener(t *testing.T) {
	ctx := context.Background()
	fs := newTestStore(t)

	var events []store.ChangeEvent
	fs.AddChangeListener(func(e store.ChangeEvent) { events = append(events, e) })

	require.NoError(t, fs.Save(ctx, mapping.DefaultsFor(mapping.EntityDeal)))
	require.NoError(t, fs.Delete(ctx, mapping.EntityDeal))

	require.Len(t, events, 2)
	assert.Equal(t, store.ChangeEvent{Operation: "save", Entity: mapping.EntityDeal, Rules: 3}, events[0])
	assert.Equal(t, "delete", events[1].Operation)
}

func TestFileStore_ConcurrentSavesLastWins(t *testing.T) {
	ctx := context.Background()
	fs := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, fs.Save(ctx, mapping.DefaultsFor(mapping.EntityContract)))
		}()
	}
	wg.Wait()

	got, err := fs.Load(ctx, mapping.EntityContract)
	require.NoError(t, err)
	assert.Equal(t, mapping.DefaultsFor(mapping.EntityContract).Flat(), got.Flat())
}

func tmpFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	return matches
}

func TestWriteAtomic_RemovesTempFileWhenWriteFails(t *testing.T) {
	orig := writeFile
	t.Cleanup(func() { writeFile = orig })
	writeFile = func(name string, data []byte, perm os.FileMode) error {
		if err := os.WriteFile(name, data[:1], perm); err != nil {
			return err
		}
		return errors.New("no space left on device")
	}

	dir := t.TempDir()
	err := writeAtomic(filepath.Join(dir, "contact_mapping.json"), []byte(`{"id":"hubspot_id"}`))
	require.Error(t, err)
	assert.Empty(t, tmpFiles(t, dir))
	assert.NoFileExists(t, filepath.Join(dir, "contact_mapping.json"))
}

func TestWriteAtomic_RemovesTempFileWhenRenameFails(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "contact_mapping.json")
	// a non-empty directory at the destination makes the rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "keep"), 0700))

	err := writeAtomic(dest, []byte(`{}`))
	require.Error(t, err)
	assert.Empty(t, tmpFiles(t, dir))
}
