package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"portal/internal/models"
	"portal/internal/persistence/interfaces"
	"portal/internal/testutil"
	"portal/internal/treestore"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ interfaces.CompressorInterface = (*testutil.MockCompressor)(nil)

func seededStore(t *testing.T) *treestore.MemoryStore {
	t.Helper()
	store := treestore.NewMemoryStore()
	require.NoError(t, store.AtomicUpdate(context.Background(), map[string]models.Node{
		"residents/r1/name":          models.String("Ana"),
		"archives/staff/s1/entity":   models.String("staff"),
		"archives/staff/s1/archived": models.Int(1700000000000),
	}))
	return store
}

func TestFileManager_SaveToFile_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.dat")
	fm := NewFileManager(&testutil.MockCompressor{}, seededStore(t), &testutil.MockLogger{})

	require.NoError(t, fm.SaveToFile(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_RoundTripWithZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.dat")
	comp, err := NewZstdCompressor()
	require.NoError(t, err)

	src := seededStore(t)
	require.NoError(t, NewFileManager(comp, src, &testutil.MockLogger{}).SaveToFile(path))

	dst := treestore.NewMemoryStore()
	fm := NewFileManager(comp, dst, &testutil.MockLogger{})
	defer fm.Close()
	require.NoError(t, fm.LoadFromFile(path))

	assert.True(t, src.Snapshot().Equal(dst.Snapshot()))
}

func TestFileManager_SaveToFile_CompressError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.dat")
	comp := &testutil.MockCompressor{
		CompressFn: func([]byte) ([]byte, error) { return nil, errors.New("compress failed") },
	}
	fm := NewFileManager(comp, seededStore(t), &testutil.MockLogger{})

	assert.Error(t, fm.SaveToFile(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_SaveToFile_BadDirectory(t *testing.T) {
	fm := NewFileManager(&testutil.MockCompressor{}, seededStore(t), &testutil.MockLogger{})
	assert.Error(t, fm.SaveToFile("/nonexistent/dir/tree.dat"))
}

func TestFileManager_LoadFromFile_Missing(t *testing.T) {
	store := seededStore(t)
	before := store.Snapshot()
	fm := NewFileManager(&testutil.MockCompressor{}, store, &testutil.MockLogger{})

	require.NoError(t, fm.LoadFromFile(filepath.Join(t.TempDir(), "absent.dat")))
	assert.True(t, before.Equal(store.Snapshot()))
}

func TestFileManager_LoadFromFile_PlainLegacyTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"residents":{"r1":{"name":"Ana"}}}`), 0644))

	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	logger := &testutil.MockLogger{}
	store := treestore.NewMemoryStore()
	fm := NewFileManager(comp, store, logger)
	defer fm.Close()

	require.NoError(t, fm.LoadFromFile(path))

	name, _ := models.GetAt(store.Snapshot(), []string{"residents", "r1", "name"}).AsString()
	assert.Equal(t, "Ana", name)
	assert.Equal(t, 2, logger.Count("warn"))
}

func TestFileManager_LoadFromFile_EmptyTreeSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dat")
	empty := treestore.NewMemoryStore()
	require.NoError(t, NewFileManager(&testutil.MockCompressor{}, empty, &testutil.MockLogger{}).SaveToFile(path))

	store := seededStore(t)
	require.NoError(t, NewFileManager(&testutil.MockCompressor{}, store, &testutil.MockLogger{}).LoadFromFile(path))
	assert.False(t, store.Snapshot().IsDefined())
}

func TestFileManager_LoadFromFile_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":       "not json",
		"scalar root":    `"just a string"`,
		"future version": `{"version":99,"root":{}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.dat")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			fm := NewFileManager(&testutil.MockCompressor{}, treestore.NewMemoryStore(), &testutil.MockLogger{})
			assert.Error(t, fm.LoadFromFile(path))
		})
	}
}
