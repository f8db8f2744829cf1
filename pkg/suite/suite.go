package suite

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// File is the on-disk structure of a check file.
type File struct {
	Version  string         `json:"version" yaml:"version"`
	Name     string         `json:"name" yaml:"name"`
	Checks   []Definition   `json:"checks" yaml:"checks"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Suite holds check definitions loaded from files. It is safe for
// concurrent use.
type Suite struct {
	mu          sync.RWMutex
	definitions map[ID]*Definition
	sources     []string
}

// New creates an empty Suite.
func New() *Suite {
	return &Suite{definitions: make(map[ID]*Definition)}
}

// ParseFile decodes a check file. The format follows the
// extension: .json is JSON, .yaml and .yml are YAML.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read check file %s: %w", path, err)
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("unsupported check file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse check file %s: %w", path, err)
	}
	return &file, nil
}

// LoadFile loads and validates the checks of a file. Nothing is
// added when the file has validation errors.
func (s *Suite) LoadFile(path string) error {
	file, err := ParseFile(path)
	if err != nil {
		return err
	}
	if verrs := Validate(file); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return fmt.Errorf("invalid check file %s: %w", path, errors.Join(errs...))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range file.Checks {
		if _, exists := s.definitions[file.Checks[i].ID]; exists {
			return fmt.Errorf("check %s in %s is already loaded", file.Checks[i].ID, path)
		}
	}
	for i := range file.Checks {
		def := file.Checks[i]
		s.definitions[def.ID] = &def
	}
	s.sources = append(s.sources, path)
	return nil
}

// LoadDir loads every .json, .yaml and .yml file of dir. It does
// not recurse into subdirectories.
func (s *Suite) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read check directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		if err := s.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Add registers a single definition.
func (s *Suite) Add(def Definition) error {
	if def.ID == "" {
		return errors.New("check ID is required")
	}
	if _, err := def.compile(); err != nil {
		return fmt.Errorf("check %s: %w", def.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.definitions[def.ID]; exists {
		return fmt.Errorf("check %s is already loaded", def.ID)
	}
	s.definitions[def.ID] = &def
	return nil
}

// Get returns the definition with the given ID.
func (s *Suite) Get(id ID) (*Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.definitions[id]
	return def, ok
}

// List returns all definitions sorted by ID.
func (s *Suite) List() []*Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs := make([]*Definition, 0, len(s.definitions))
	for _, d := range s.definitions {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].ID < defs[j].ID
	})
	return defs
}

// Count returns the number of loaded definitions.
func (s *Suite) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.definitions)
}

// Sources returns the files loaded so far.
func (s *Suite) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.sources...)
}

// Order returns the definitions in dependency order. It fails on
// unknown dependencies and cycles.
func (s *Suite) Order() ([]*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, d := range s.definitions {
		for _, dep := range d.Dependencies {
			if _, ok := s.definitions[dep]; !ok {
				return nil, fmt.Errorf("check %s depends on unknown check %s", id, dep)
			}
		}
	}
	return topologicalSort(s.definitions)
}
