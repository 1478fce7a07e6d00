/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package table

import (
	"runtime"
	"strings"

	"github.com/inconshreveable/log15"
)

// State is where a Store's table currently lives.
type State int

const (
	// Absent tables have never been populated.
	Absent State = iota

	// InMemory tables can be retrieved with Get().
	InMemory

	// OnDisk tables have been dumped and must be restored before use.
	OnDisk
)

func (s State) String() string {
	switch s {
	case InMemory:
		return "in memory"
	case OnDisk:
		return "on disk"
	default:
		return "absent"
	}
}

const dumpSubdir = "dump"

type entry struct {
	state State
	table *Table
	path  string
}

// Store owns the tables of one component (a library or selection), keyed by
// entity kind. Tables can be dumped to disk to release memory, and later
// restored.
type Store struct {
	owner   string
	base    string
	log     log15.Logger
	entries map[string]*entry
	keys    []string
}

// NewStore returns a Store for the named owner that writes its files beneath
// the given base directory. logger may be nil.
func NewStore(owner, base string, logger log15.Logger) *Store {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Store{
		owner:   owner,
		base:    base,
		log:     logger.New("name", owner),
		entries: make(map[string]*entry),
	}
}

// Owner returns the name of the component that owns the store.
func (s *Store) Owner() string { return s.owner }

// Base returns the base output directory.
func (s *Store) Base() string { return s.base }

func (s *Store) entry(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
		s.keys = append(s.keys, key)
	}

	return e
}

// Put stores the table in memory under the given key, superseding any dumped
// copy.
func (s *Store) Put(key string, t *Table) {
	e := s.entry(key)
	e.table = t
	e.state = InMemory
}

// Get returns the in-memory table for the key. It returns false if the table
// is absent or currently dumped.
func (s *Store) Get(key string) (*Table, bool) {
	e, ok := s.entries[key]
	if !ok || e.state != InMemory {
		return nil, false
	}

	return e.table, true
}

// State returns the state of the table for the key.
func (s *Store) State(key string) State {
	e, ok := s.entries[key]
	if !ok {
		return Absent
	}

	return e.state
}

// Keys returns the keys of all tables that aren't Absent, in the order they
// were first stored.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.keys))

	for _, k := range s.keys {
		if s.entries[k].state != Absent {
			keys = append(keys, k)
		}
	}

	return keys
}

func (s *Store) keysIn(state State, keys []string) []string {
	if len(keys) == 0 {
		keys = s.keys
	}

	selected := make([]string, 0, len(keys))

	for _, k := range keys {
		if s.State(k) == state {
			selected = append(selected, k)
		}
	}

	return selected
}

// Dump writes the in-memory tables for the given keys (default all) to disk
// and releases them from memory. Keys that aren't in memory are ignored.
func (s *Store) Dump(keys ...string) error {
	keys = s.keysIn(InMemory, keys)
	if len(keys) == 0 {
		return nil
	}

	s.logMemoryUsage()
	s.log.Info("dumping tables", "keys", strings.Join(keys, ", "))

	for _, k := range keys {
		e := s.entries[k]
		path := Path(s.base, dumpSubdir, s.owner, k)

		if err := e.table.WriteFile(path, true); err != nil {
			return err
		}

		e.path = path
		e.table = nil
		e.state = OnDisk
	}

	s.logMemoryUsage()

	return nil
}

// Restore reloads previously dumped tables for the given keys (default all).
// Keys that were never dumped are ignored.
func (s *Store) Restore(keys ...string) error {
	keys = s.keysIn(OnDisk, keys)
	if len(keys) == 0 {
		return nil
	}

	s.log.Info("restoring tables", "keys", strings.Join(keys, ", "))

	for _, k := range keys {
		e := s.entries[k]

		t, err := ReadFile(e.path, k)
		if err != nil {
			return err
		}

		e.table = t
		e.state = InMemory
	}

	s.logMemoryUsage()

	return nil
}

// Write writes the in-memory tables for the given keys (default all) to
// base/subdir/owner/key.tsv (subdir may be blank) at output precision, and
// returns the paths written keyed on table key. Tables stay in memory.
func (s *Store) Write(subdir string, keys ...string) (map[string]string, error) {
	keys = s.keysIn(InMemory, keys)
	paths := make(map[string]string, len(keys))

	for _, k := range keys {
		path := Path(s.base, subdir, s.owner, k)

		if err := s.entries[k].table.WriteFile(path, false); err != nil {
			return nil, err
		}

		paths[k] = path
	}

	if len(keys) > 0 {
		s.log.Info("wrote tables", "keys", strings.Join(keys, ", "), "subdir", subdir)
	}

	return paths, nil
}

func (s *Store) logMemoryUsage() {
	var ms runtime.MemStats

	runtime.ReadMemStats(&ms)

	s.log.Debug("current memory usage", "heap_in_use", ms.HeapInuse)
}
