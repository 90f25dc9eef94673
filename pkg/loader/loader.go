// Package loader reads FormDefinitions from JSON or YAML documents.
package loader

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Store holds the definitions found by LoadFS, keyed by form id.
type Store struct {
	forms   map[string]model.FormDefinition
	sources map[string]string
}

// NewStore builds a store from in-memory definitions. Duplicate or empty ids
// are rejected.
func NewStore(defs ...model.FormDefinition) (*Store, error) {
	store := newStore()
	for _, def := range defs {
		if err := store.add(def, "memory"); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func newStore() *Store {
	return &Store{
		forms:   make(map[string]model.FormDefinition),
		sources: make(map[string]string),
	}
}

// LoadFS walks the provided filesystem and parses every .json, .yaml and .yml
// file as one FormDefinition. When fsys is nil the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := newStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("loader: read %s: %w", path, err)
		}
		def, err := Parse(path, data)
		if err != nil {
			return err
		}
		return store.add(def, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) add(def model.FormDefinition, source string) error {
	id := strings.TrimSpace(def.ID)
	if id == "" {
		return fmt.Errorf("loader: file %s defines an empty form id", source)
	}
	if prev, exists := s.sources[id]; exists {
		return fmt.Errorf("loader: duplicate form %q (file %s, first defined in %s)", id, source, prev)
	}
	s.forms[id] = def.Clone()
	s.sources[id] = source
	return nil
}

// Parse decodes a single definition. JSON is attempted first, then YAML.
func Parse(source string, data []byte) (model.FormDefinition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.FormDefinition{}, fmt.Errorf("loader: file %s is empty", source)
	}

	var def model.FormDefinition
	jsonErr := json.Unmarshal(data, &def)
	if jsonErr == nil {
		return def, nil
	}

	def = model.FormDefinition{}
	yamlErr := yaml.Unmarshal(data, &def)
	if yamlErr == nil {
		return def, nil
	}
	if looksLikeJSON(data) {
		return model.FormDefinition{}, fmt.Errorf("loader: parse %s: %w", source, jsonErr)
	}
	return model.FormDefinition{}, fmt.Errorf("loader: parse %s: %w", source, yamlErr)
}

// Form returns the definition for the supplied form id.
func (s *Store) Form(id string) (model.FormDefinition, bool) {
	if s == nil {
		return model.FormDefinition{}, false
	}
	def, ok := s.forms[id]
	if !ok {
		return model.FormDefinition{}, false
	}
	return def.Clone(), true
}

// Source reports the file a form was loaded from.
func (s *Store) Source(id string) string {
	if s == nil {
		return ""
	}
	return s.sources[id]
}

// IDs lists the loaded form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func looksLikeJSON(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
