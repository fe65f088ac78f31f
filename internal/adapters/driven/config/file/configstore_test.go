package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, FileName), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("source.query", "insulin receptor"))
	require.NoError(t, store.Set("source.max_results", 40))
	require.NoError(t, store.Set("retrieval.diversity_lambda", 0.7))
	require.NoError(t, store.Set("schedule.enabled", true))
	require.NoError(t, store.Set("events.brokers", []string{"a:9092", "b:9092"}))

	assert.Equal(t, "insulin receptor", store.GetString("source.query"))
	assert.Equal(t, 40, store.GetInt("source.max_results"))
	assert.Equal(t, 0.7, store.GetFloat("retrieval.diversity_lambda"))
	assert.Equal(t, 40.0, store.GetFloat("source.max_results"))
	assert.True(t, store.GetBool("schedule.enabled"))
	assert.Equal(t, []string{"a:9092", "b:9092"}, store.GetStringSlice("events.brokers"))

	// Wrong types and missing keys yield zero values.
	assert.Equal(t, "", store.GetString("source.max_results"))
	assert.Equal(t, 0, store.GetInt("source.query"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("index.backend", "qdrant"))
	require.NoError(t, store.Set("index.qdrant.url", "http://q:6333"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var decoded struct {
		Index struct {
			Backend string `toml:"backend"`
			Qdrant  struct {
				URL string `toml:"url"`
			} `toml:"qdrant"`
		} `toml:"index"`
	}
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Equal(t, "qdrant", decoded.Index.Backend)
	assert.Equal(t, "http://q:6333", decoded.Index.Qdrant.URL)
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("state.backend", "sqlite"))
	require.NoError(t, store.Set("chunker.max_size", 256))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", reloaded.GetString("state.backend"))
	assert.Equal(t, 256, reloaded.GetInt("chunker.max_size"))
	assert.Equal(t, []string{"chunker.max_size", "state.backend"}, reloaded.Keys())
}

func TestConfigStore_Unset(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("lock.redis_addr", "localhost:6379"))
	require.NoError(t, store.Unset("lock.redis_addr"))
	require.NoError(t, store.Unset("never.set"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	_, ok := reloaded.Get("lock.redis_addr")
	assert.False(t, ok)
}

func TestConfigStore_RejectsBadKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("", "x"))
	assert.Error(t, store.Set(".a", "x"))
	assert.Error(t, store.Set("a.", "x"))

	require.NoError(t, store.Set("index.backend", "memory"))
	assert.Error(t, store.Set("index", "milvus"))
	assert.Error(t, store.Set("index.backend.kind", "x"))
}

func TestConfigStore_SetUnmarshallableRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("channel", make(chan int))
	assert.Error(t, err)
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
	assert.Equal(t, "", store.GetString("another"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("http.jwt_secret", "s3cret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set("source.query", "q")
			_ = store.GetString("source.query")
		}()
	}
	wg.Wait()
	assert.Equal(t, "q", store.GetString("source.query"))
}

func TestFlattenUnflatten(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}
	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "e": true}, flat)
	assert.Equal(t, nested, unflattenMap(flat))
}
