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

package triegen

import (
	"unicode"

	"github.com/netobserv/unitrie/pkg/api"
	"github.com/netobserv/unitrie/pkg/utrie"
	"github.com/pkg/errors"
)

func sourceTable(src api.SourceDef) (*unicode.RangeTable, error) {
	var tables map[string]*unicode.RangeTable
	switch src.Type {
	case api.SourceTypeName("Category"):
		tables = unicode.Categories
	case api.SourceTypeName("Script"):
		tables = unicode.Scripts
	case api.SourceTypeName("Property"):
		tables = unicode.Properties
	default:
		return nil, errors.Errorf("unknown source type %q", src.Type)
	}
	table, ok := tables[src.Name]
	if !ok {
		return nil, errors.Errorf("unknown %s table %q", src.Type, src.Name)
	}
	return table, nil
}

// applyTable sets value on every code point of table.
func applyTable(w *utrie.Writable, table *unicode.RangeTable, value uint32, overwrite bool) error {
	apply := func(lo, hi, stride rune) error {
		if stride == 1 {
			return w.SetRange(lo, hi, value, overwrite)
		}
		for c := lo; c <= hi; c += stride {
			if err := w.SetRange(c, c, value, overwrite); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range table.R16 {
		if err := apply(rune(r.Lo), rune(r.Hi), rune(r.Stride)); err != nil {
			return err
		}
	}
	for _, r := range table.R32 {
		if err := apply(rune(r.Lo), rune(r.Hi), rune(r.Stride)); err != nil {
			return err
		}
	}
	return nil
}
