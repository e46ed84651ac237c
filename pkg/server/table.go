/*
 * Copyright (C) 2022 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/netobserv/unitrie/pkg/sink"
	"github.com/netobserv/unitrie/pkg/utrie"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const compressedExt = sink.DefaultExtension + ".sz"

// TrieInfo describes a loaded trie.
type TrieInfo struct {
	Name         string `json:"name"`
	Width        string `json:"width"`
	InitialValue uint32 `json:"initialValue"`
	ErrorValue   uint32 `json:"errorValue"`
	HighStart    string `json:"highStart"`
	HighValue    uint32 `json:"highValue"`
	IndexLength  int    `json:"indexLength"`
	DataLength   int    `json:"dataLength"`
	Bytes        int    `json:"bytes"`
}

// RangeEntry is one enumerated range.
type RangeEntry struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	Value         uint32 `json:"value"`
	LeadSurrogate bool   `json:"leadSurrogate,omitempty"`
}

// TextEntry is the value of one code point of a looked up string.
type TextEntry struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Value  uint32 `json:"value"`
}

// Table is a read-only trie of either value width.
type Table interface {
	Info() TrieInfo
	Lookup(c rune) uint32
	LookupText(s []byte) []TextEntry
	Ranges() []RangeEntry
}

type typedTable[T utrie.Value] struct {
	name string
	size int
	trie *utrie.Trie[T]
}

func (t *typedTable[T]) Info() TrieInfo {
	return TrieInfo{
		Name:         t.name,
		Width:        t.trie.ValueWidth().String(),
		InitialValue: uint32(t.trie.InitialValue()),
		ErrorValue:   uint32(t.trie.ErrorValue()),
		HighStart:    formatCodePoint(t.trie.HighStart()),
		HighValue:    uint32(t.trie.HighValue()),
		IndexLength:  t.trie.IndexLength(),
		DataLength:   t.trie.DataLength(),
		Bytes:        t.size,
	}
}

func (t *typedTable[T]) Lookup(c rune) uint32 {
	return uint32(t.trie.Get(c))
}

func (t *typedTable[T]) LookupText(s []byte) []TextEntry {
	var out []TextEntry
	for i := 0; i < len(s); {
		v, n := t.trie.GetFromUTF8(s[i:])
		out = append(out, TextEntry{Offset: i, Length: n, Value: uint32(v)})
		i += n
	}
	return out
}

func (t *typedTable[T]) Ranges() []RangeEntry {
	var out []RangeEntry
	for r := range t.trie.Ranges() {
		out = append(out, RangeEntry{
			Start:         formatCodePoint(r.Start),
			End:           formatCodePoint(r.End),
			Value:         uint32(r.Value),
			LeadSurrogate: r.LeadSurrogate,
		})
	}
	return out
}

func formatCodePoint(c rune) string {
	return fmt.Sprintf("U+%04X", c)
}

// NewTable reads a serialized trie of either width.
func NewTable(name string, data []byte) (Table, error) {
	header, _, err := utrie.ReadHeader(data)
	if err != nil {
		return nil, err
	}
	switch header.ValueWidth() {
	case utrie.Bits16:
		return newTypedTable[uint16](name, data)
	default:
		return newTypedTable[uint32](name, data)
	}
}

func newTypedTable[T utrie.Value](name string, data []byte) (Table, error) {
	trie, n, err := utrie.CreateFromSerialized[T](data)
	if err != nil {
		return nil, err
	}
	return &typedTable[T]{name: name, size: n, trie: trie}, nil
}

// Registry holds the tables served, keyed by name.
type Registry struct {
	mutex  sync.RWMutex
	tables map[string]Table
}

func NewRegistry() *Registry {
	return &Registry{tables: map[string]Table{}}
}

func (r *Registry) Get(name string) (Table, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.tables)
}

// Infos returns the description of every table, sorted by name.
func (r *Registry) Infos() []TrieInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]TrieInfo, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Replace swaps the whole set of tables.
func (r *Registry) Replace(tables map[string]Table) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.tables = tables
	triesLoaded.Set(float64(len(tables)))
}

// LoadFolder reads every .trie and .trie.sz file of a folder into the
// registry. Files that fail to load are logged and skipped.
func (r *Registry) LoadFolder(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "reading %s", dir)
	}
	tables := map[string]Table{}
	for _, entry := range entries {
		fileName := entry.Name()
		var name string
		switch {
		case entry.IsDir():
			continue
		case strings.HasSuffix(fileName, compressedExt):
			name = strings.TrimSuffix(fileName, compressedExt)
		case strings.HasSuffix(fileName, sink.DefaultExtension):
			name = strings.TrimSuffix(fileName, sink.DefaultExtension)
		default:
			continue
		}
		t, err := loadFile(filepath.Join(dir, fileName), name)
		if err != nil {
			log.Errorf("skipping %s: %v", fileName, err)
			loadErrors.Inc()
			continue
		}
		tables[name] = t
	}
	log.Infof("loaded %d tries from %s", len(tables), dir)
	r.Replace(tables)
	return nil
}

func loadFile(path, name string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := sink.Decode(filepath.Base(path), raw)
	if err != nil {
		return nil, err
	}
	return NewTable(name, data)
}
