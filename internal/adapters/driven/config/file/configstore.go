package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore reads and writes configuration as nested TOML tables.
// Dotted keys map onto table sections, so the file stays
// hand-editable:
//
//	[embedding]
//	provider = "ollama"
//	model = "nomic-embed-text"
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	tree map[string]any
}

// NewConfigStore opens the config file under configDir, creating the
// directory when needed. An empty configDir defaults to ~/.recall.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".recall")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		path: filepath.Join(configDir, "config.toml"),
		tree: map[string]any{},
	}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		// First run, start empty.
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, &s.tree); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", s.path, err)
		}
	}
	return s, nil
}

// Get resolves a dotted key against the TOML tree.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := s.tree
	parts := strings.Split(key, ".")
	for i, part := range parts {
		val, ok := node[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return val, true
		}
		node, ok = val.(map[string]any)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

// GetString returns the value at key, or "" when absent or not a
// string.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := val.(string)
	return str
}

// GetInt returns the value at key, or 0 when absent or not an integer.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int64:
		// toml decodes integers as int64.
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// Set writes the value at the dotted key and persists the file.
// Intermediate tables are created as needed.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(key, ".")
	node := s.tree
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value

	data, err := toml.Marshal(s.tree)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.path
}
