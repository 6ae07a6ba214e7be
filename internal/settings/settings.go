// Package settings persists client-local preferences: who is using this
// client, how the list is filtered and sorted, and display choices. None of
// it is shared with other clients.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/view"
)

type Settings struct {
	CurrentUser     string        `yaml:"current_user"`
	Theme           string        `yaml:"theme"`
	Notifications   bool          `yaml:"notifications"`
	Filters         view.Filter   `yaml:"filters"`
	SortOrder       view.SortMode `yaml:"sort_order"`
	GroupByCategory bool          `yaml:"group_by_category"`
	DefaultStore    model.Store   `yaml:"default_store"`
}

func Default() Settings {
	return Settings{
		CurrentUser:  model.Users[0].ID,
		Theme:        "light",
		SortOrder:    view.SortManual,
		DefaultStore: model.StoreEdeka,
	}
}

// Load reads the settings at path. A missing file yields the defaults.
// Filters written by older versions, recognisable by a "purchased" key or an
// "all" value, are reset and the file is rewritten.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}
	if len(doc.Content) == 0 {
		return s, nil
	}

	root := doc.Content[0]
	migrated := dropOutdatedFilters(root)
	if err := root.Decode(&s); err != nil {
		return Default(), fmt.Errorf("decode settings: %w", err)
	}
	s.normalize()

	if migrated {
		if err := Save(path, s); err != nil {
			return s, err
		}
	}
	return s, nil
}

// dropOutdatedFilters removes the filters entry from a settings mapping if it
// is in an old format, and reports whether it did.
func dropOutdatedFilters(root *yaml.Node) bool {
	if root.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "filters" {
			continue
		}
		if !outdated(root.Content[i+1]) {
			return false
		}
		root.Content = slices.Delete(root.Content, i, i+2)
		return true
	}
	return false
}

func outdated(filters *yaml.Node) bool {
	if filters.Kind != yaml.MappingNode {
		return true
	}
	for i := 0; i+1 < len(filters.Content); i += 2 {
		key, val := filters.Content[i], filters.Content[i+1]
		if key.Value == "purchased" || (val.Kind == yaml.ScalarNode && val.Value == "all") {
			return true
		}
	}
	return false
}

// normalize replaces values that no longer mean anything with defaults.
func (s *Settings) normalize() {
	d := Default()
	if !model.KnownUser(s.CurrentUser) {
		s.CurrentUser = d.CurrentUser
	}
	if _, err := view.ParseSortMode(string(s.SortOrder)); err != nil {
		s.SortOrder = d.SortOrder
	}
	if s.Theme != "light" && s.Theme != "dark" {
		s.Theme = d.Theme
	}
	if !s.DefaultStore.Valid() {
		s.DefaultStore = d.DefaultStore
	}
}

// Save writes s to path, creating the directory if needed. The file is
// replaced atomically.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
