/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package datasources keeps the named tables a server can partition. CSV
// sources are registered eagerly and imported on first use.
package datasources

import (
	"path/filepath"
	"slices"
	"sync"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/google/subframes/core/config"
	"github.com/google/subframes/core/csvimport"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/logging"
	"github.com/google/subframes/core/tables"
)

// Source is a CSV file registered under a name.
type Source struct {
	Name    string
	Path    string
	Options csvimport.ImportOptions
}

// Manager handles loading and caching of data sources.
type Manager struct {
	mu sync.RWMutex

	// Source metadata indexed by name
	sources map[string]*Source

	// Cached tables indexed by source name, populated lazily
	tables map[string]*tables.Table

	// Programmatically registered tables
	registeredTables map[string]*tables.Table

	// Base directory for resolving relative paths
	baseDir string
}

// NewManager creates a new data source manager.
func NewManager() *Manager {
	return &Manager{
		sources:          make(map[string]*Source),
		tables:           make(map[string]*tables.Table),
		registeredTables: make(map[string]*tables.Table),
	}
}

// SetBaseDir sets the base directory for resolving relative source paths.
func (m *Manager) SetBaseDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseDir = dir
}

// LoadConfig registers the sources of a job file.
func (m *Manager) LoadConfig(cfg *config.Config) error {
	for _, s := range cfg.Sources {
		options, err := s.ImportOptions()
		if err != nil {
			return errors.Wrapf(err, "source %q", s.Name)
		}
		if err := m.AddSource(Source{Name: s.Name, Path: s.Path, Options: options}); err != nil {
			return err
		}
	}
	return nil
}

// AddSource registers a CSV source. Names are shared with registered
// tables and must be unique.
func (m *Manager) AddSource(source Source) error {
	if source.Name == "" || source.Path == "" {
		return errs.InvalidArgument("source needs a name and a path: %+v", source)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exists(source.Name) {
		return errs.InvalidArgument("duplicate source %q", source.Name)
	}
	m.sources[source.Name] = &source
	return nil
}

// Register adds a table that is already in memory.
func (m *Manager) Register(name string, t *tables.Table) error {
	if name == "" || t == nil {
		return errs.InvalidArgument("cannot register table %q", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exists(name) {
		return errs.InvalidArgument("duplicate source %q", name)
	}
	m.registeredTables[name] = t
	return nil
}

func (m *Manager) exists(name string) bool {
	_, isSource := m.sources[name]
	_, isTable := m.registeredTables[name]
	return isSource || isTable
}

// Names returns the names of all sources and registered tables, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sources)+len(m.registeredTables))
	for name := range m.sources {
		names = append(names, name)
	}
	for name := range m.registeredTables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadData returns the named table, importing a CSV source on first use.
func (m *Manager) LoadData(name string) (*tables.Table, error) {
	m.mu.RLock()
	if t, ok := m.registeredTables[name]; ok {
		m.mu.RUnlock()
		return t, nil
	}
	if t, ok := m.tables[name]; ok {
		m.mu.RUnlock()
		return t, nil
	}
	source, ok := m.sources[name]
	baseDir := m.baseDir
	m.mu.RUnlock()
	if !ok {
		return nil, errs.InvalidArgument("source %q not found", name)
	}

	path := source.Path
	if baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	t, err := csvimport.ImportFromFile(path, source.Options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load source %q", name)
	}
	level.Debug(logging.Logger).Log("msg", "loaded source", "source", name, "path", path, "shape", t.Shape())

	m.mu.Lock()
	defer m.mu.Unlock()
	// a concurrent load may have won; keep the first table
	if cached, ok := m.tables[name]; ok {
		return cached, nil
	}
	m.tables[name] = t
	return t, nil
}

// IsLoaded reports whether the table of a source is cached.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tables[name]
	return ok
}

// InvalidateCache removes a source from the cache, forcing a reload on the
// next access.
func (m *Manager) InvalidateCache(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, name)
}
