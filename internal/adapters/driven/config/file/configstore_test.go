package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore_EmptyDirectory(t *testing.T) {
	store, dir := newStore(t)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Equal(t, "", store.GetString("storage.postgres_dsn"))

	_, ok := store.Get("embedding.provider")
	assert.False(t, ok)
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".recall")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSetAndGet(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("embedding.batch_size", 25))
	require.NoError(t, store.Set("index.domain", "work"))

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 25, store.GetInt("embedding.batch_size"))
	assert.Equal(t, "work", store.GetString("index.domain"))
}

func TestSet_PersistsAcrossReopen(t *testing.T) {
	store, dir := newStore(t)

	require.NoError(t, store.Set("storage.postgres_dsn", "postgres://localhost/recall"))
	require.NoError(t, store.Set("llm.provider", "anthropic"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/recall", reopened.GetString("storage.postgres_dsn"))
	assert.Equal(t, "anthropic", reopened.GetString("llm.provider"))
}

func TestSet_WritesSectionedTOML(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("embedding.model", "text-embedding-3-small"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[embedding]")
	assert.Contains(t, string(data), `provider = 'openai'`)
}

func TestNewConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[storage]
postgres_dsn = "postgres://localhost/recall"

[embedding]
provider = "ollama"
dimensions = 768
batches_per_second = 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/recall", store.GetString("storage.postgres_dsn"))
	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 768, store.GetInt("embedding.dimensions"))
	assert.Equal(t, 2, store.GetInt("embedding.batches_per_second"))
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid"), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestGet_TypeMismatches(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Set("embedding.batch_size", 25))
	require.NoError(t, store.Set("embedding.provider", "ollama"))

	assert.Equal(t, "", store.GetString("embedding.batch_size"))
	assert.Equal(t, 0, store.GetInt("embedding.provider"))
}

func TestGet_KeyThroughNonTable(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Set("llm.provider", "ollama"))

	_, ok := store.Get("llm.provider.nested")
	assert.False(t, ok)
}

func TestSet_OverwritesValue(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("llm.provider", "openai"))

	assert.Equal(t, "openai", store.GetString("llm.provider"))
}
