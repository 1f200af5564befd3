package config

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileStore is a YAML-backed reference implementation of Store, grounded
// on the flat section/key layout an on-disk config file for this kind of
// service typically uses.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	sections map[string]map[string]string
	handlers map[string][]func(string)
}

// NewFileStore creates an empty, in-memory-only store (no path).
func NewFileStore() *FileStore {
	return &FileStore{
		sections: make(map[string]map[string]string),
		handlers: make(map[string][]func(string)),
	}
}

// LoadFileStore reads a YAML document of the form:
//
//	vehicle:
//	  units.distance: "M"
//	  12v.alert: "1.6"
//	auto:
//	  vehicle.type: "TSLA"
//	password:
//	  pin: "1234"
func LoadFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	var doc map[string]map[string]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}

	fs := NewFileStore()
	fs.path = path
	fs.sections = doc
	if fs.sections == nil {
		fs.sections = make(map[string]map[string]string)
	}
	return fs, nil
}

func handlerKey(section, key string) string { return section + "." + key }

func (s *FileStore) Get(section, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, ok := s.sections[section]
	if !ok {
		return "", false
	}
	v, ok := sec[key]
	return v, ok
}

func (s *FileStore) GetDefault(section, key, def string) string {
	if v, ok := s.Get(section, key); ok {
		return v
	}
	return def
}

func (s *FileStore) Set(section, key, value string) {
	s.mu.Lock()
	sec, ok := s.sections[section]
	if !ok {
		sec = make(map[string]string)
		s.sections[section] = sec
	}
	sec[key] = value
	handlers := append([]func(string){}, s.handlers[handlerKey(section, key)]...)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(value)
	}
}

func (s *FileStore) OnChange(section, key string, fn func(value string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hk := handlerKey(section, key)
	s.handlers[hk] = append(s.handlers[hk], fn)
}

var _ Store = (*FileStore)(nil)
