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

package utrie

import (
	"fmt"

	"github.com/pkg/errors"
)

// Value is the set of value types a frozen trie can store.
type Value interface {
	uint16 | uint32
}

// ValueWidth selects the width of stored values; the numbers match the
// options field of the serialized header.
type ValueWidth uint16

const (
	Bits16 ValueWidth = 0
	Bits32 ValueWidth = 1
)

func (w ValueWidth) String() string {
	switch w {
	case Bits16:
		return "16"
	case Bits32:
		return "32"
	}
	return fmt.Sprintf("ValueWidth(%d)", uint16(w))
}

// ParseValueWidth accepts "16" or "32".
func ParseValueWidth(s string) (ValueWidth, error) {
	switch s {
	case "16":
		return Bits16, nil
	case "32", "":
		return Bits32, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "unknown value width %q", s)
}

func widthOf[T Value]() ValueWidth {
	var zero T
	if _, ok := any(zero).(uint16); ok {
		return Bits16
	}
	return Bits32
}

// Range is a maximal run of code points, or of lead surrogate code units
// when LeadSurrogate is set, mapping to one value.
type Range[T Value] struct {
	Start, End    rune
	Value         T
	LeadSurrogate bool
}

func (r Range[T]) String() string {
	if r.LeadSurrogate {
		return fmt.Sprintf("lead %04X..%04X=%X", r.Start, r.End, r.Value)
	}
	return fmt.Sprintf("%04X..%04X=%X", r.Start, r.End, r.Value)
}

// ValueMapper transforms values during enumeration. Adjacent ranges with
// equal mapped values are merged.
type ValueMapper[T Value] func(T) T
