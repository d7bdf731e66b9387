package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"scenedebug/internal/engine"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for settings files with an unrecognised
// extension.
var ErrUnknownFormat = errors.New("config: unknown settings format")

// Store owns the single Settings value. Every change is written back to
// disk and announced through OnChange. Overrides (environment, flags) are
// layered on top when reading and never saved.
type Store struct {
	path      string
	persisted Settings
	overrides []func(*Settings)
	effective Settings

	OnChange engine.EventWithArg[Settings]
}

// Open loads path (defaults when it does not exist) and applies
// environment overrides. An empty path keeps the settings in memory only.
func Open(path string) (*Store, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	check := s
	if err := check.ApplyEnv(); err != nil {
		return nil, err
	}
	s.Normalize()
	st := &Store{path: path, persisted: s}
	st.Override(func(s *Settings) { _ = s.ApplyEnv() })
	return st, nil
}

// NewStore wraps settings that did not come from a file.
func NewStore(s Settings) *Store {
	s.Normalize()
	return &Store{persisted: s, effective: s}
}

// Get returns a copy of the current settings, overrides included.
func (st *Store) Get() Settings {
	return st.effective
}

func (st *Store) recompute() {
	s := st.persisted
	for _, fn := range st.overrides {
		fn(&s)
	}
	s.Normalize()
	st.effective = s
}

func (st *Store) Path() string {
	return st.path
}

// Update applies fn to the persisted settings, saves and notifies
// listeners. If saving fails the change is kept in memory and the error
// returned.
func (st *Store) Update(fn func(*Settings)) error {
	next := st.persisted
	fn(&next)
	next.Normalize()
	st.persisted = next
	st.recompute()
	err := st.save()
	st.OnChange.Invoke(st.effective)
	return err
}

// Override layers fn over the persisted settings for the rest of the run.
// Nothing is saved and listeners are not told.
func (st *Store) Override(fn func(*Settings)) {
	st.overrides = append(st.overrides, fn)
	st.recompute()
}

// Set changes one named setting.
func (st *Store) Set(name, value string) error {
	next := st.persisted
	if err := next.SetField(name, value); err != nil {
		return err
	}
	return st.Update(func(s *Settings) { *s = next })
}

func (st *Store) save() error {
	if st.path == "" {
		return nil
	}
	if err := Save(st.path, st.persisted); err != nil {
		log.WithError(err).WithField("path", st.path).Error("Failed to save settings")
		return err
	}
	return nil
}

// Load reads settings from path, choosing the codec by file extension.
// A missing file yields Defaults.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	switch ext(path) {
	case ".xml":
		err = xml.Unmarshal(data, &s)
	case ".json":
		err = json.Unmarshal(data, &s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		return s, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return Defaults(), fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// Save writes s to path in the format implied by its extension.
func Save(path string, s Settings) error {
	var (
		data []byte
		err  error
	)
	switch ext(path) {
	case ".xml":
		data, err = xml.MarshalIndent(s, "", "  ")
		if err == nil {
			data = append([]byte(xml.Header), data...)
		}
	case ".json":
		data, err = json.MarshalIndent(s, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
