package preferences

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// YAMLPreferenceStore keeps string settings in a single YAML map file.
// Every Set rewrites the file atomically (temp file + rename), so a crash
// leaves either the old or the new contents on disk.
type YAMLPreferenceStore struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

// OpenYAMLPreferenceStore loads path if it exists. A missing file is an
// empty store; it is created on the first Set.
//
// Only scalar values are loaded; other shapes read as absent. A file that
// cannot be read or parsed opens as an empty store and is replaced on the
// next Set.
func OpenYAMLPreferenceStore(path string, logger zerolog.Logger) (*YAMLPreferenceStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("open preference store: path must not be empty")
	}

	s := &YAMLPreferenceStore{path: path, values: map[string]string{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("preferences unreadable, starting empty")
		return s, nil
	}

	values, err := decodeScalars(data)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("preferences malformed, starting empty")
		return s, nil
	}
	s.values = values

	return s, nil
}

// decodeScalars reads a top-level mapping and keeps the scalar entries.
func decodeScalars(data []byte) (map[string]string, error) {
	values := map[string]string{}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		return values, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.New("parse yaml: expected a single document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse yaml: top level is not a mapping (line %d)", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode || v.ShortTag() == "!!null" {
			continue
		}
		values[k.Value] = v.Value
	}

	return values, nil
}

func (s *YAMLPreferenceStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *YAMLPreferenceStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("set preference: key must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = value

	if err := s.write(next); err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	s.values = next
	return nil
}

func (s *YAMLPreferenceStore) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %q: %w", s.path, err)
	}
	return nil
}
