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
	"iter"
)

// Trie is a frozen, read-only trie mapping code points to T. It is
// created by Freeze or CreateFromSerialized and is safe for concurrent
// readers.
//
// For 16-bit tries the data follows the index in one array, so data
// aliases index and data offsets include the index length. For 32-bit
// tries data is a separate array.
type Trie[T Value] struct {
	index []uint16
	data  []T

	indexLength int
	dataLength  int
	// dataMove is the offset of data entry 0 in the data slice
	dataMove int

	index2NullOffset uint16
	dataNullOffset   uint16
	highStart        rune
	highValueIndex   int

	initialValue T
	errorValue   T
}

// Get returns the value for c, or the error value outside 0..0x10FFFF.
// Lead surrogate code points return their code point value.
func (t *Trie[T]) Get(c rune) T {
	switch {
	case c < 0 || c > maxCodePoint:
		return t.errorValue
	case c < 0xd800 || (c > 0xdbff && c <= 0xffff):
		return t.data[t.bmpIndex(index2Offset, c)]
	case c <= 0xffff:
		return t.data[t.bmpIndex(lscpIndex2Offset-(0xd800>>shift2), c)]
	case c >= t.highStart:
		return t.data[t.highValueIndex]
	default:
		return t.data[t.suppIndex(c)]
	}
}

// GetFromU16SingleLead returns the value for a UTF-16 code unit. Lead
// surrogates return the code unit value, which differs from Get when
// SetForLeadSurrogateCodeUnit was used.
func (t *Trie[T]) GetFromU16SingleLead(cu uint16) T {
	return t.data[t.bmpIndex(index2Offset, rune(cu))]
}

func (t *Trie[T]) bmpIndex(offset int, c rune) int {
	return int(t.index[offset+int(c>>shift2)])<<indexShift + int(c&dataMask)
}

func (t *Trie[T]) suppIndex(c rune) int {
	i1 := int(t.index[index1Offset-omittedBMPIndex1Length+int(c>>shift1)])
	return int(t.index[i1+int((c>>shift2)&index2Mask)])<<indexShift + int(c&dataMask)
}

// ValueWidth returns the width of stored values.
func (t *Trie[T]) ValueWidth() ValueWidth { return widthOf[T]() }

// InitialValue returns the value of code points never set.
func (t *Trie[T]) InitialValue() T { return t.initialValue }

// ErrorValue returns the value for out-of-range lookups and ill-formed
// UTF-8.
func (t *Trie[T]) ErrorValue() T { return t.errorValue }

// HighStart returns the first code point of the trailing range that maps
// to one value; lookups at or above it skip the index.
func (t *Trie[T]) HighStart() rune { return t.highStart }

// HighValue returns the value of code points at or above HighStart.
func (t *Trie[T]) HighValue() T { return t.data[t.highValueIndex] }

// IndexLength returns the number of 16-bit index entries.
func (t *Trie[T]) IndexLength() int { return t.indexLength }

// DataLength returns the number of data entries.
func (t *Trie[T]) DataLength() int { return t.dataLength }

// Ranges yields the maximal code point ranges of equal values in
// ascending order, covering 0..0x10FFFF, followed by the ranges of lead
// surrogate code unit values over U+D800..U+DBFF with LeadSurrogate set.
func (t *Trie[T]) Ranges() iter.Seq[Range[T]] {
	return t.RangesMapped(nil)
}

// RangesMapped is Ranges with every value passed through mapper before
// ranges are merged. A nil mapper is the identity.
func (t *Trie[T]) RangesMapped(mapper ValueMapper[T]) iter.Seq[Range[T]] {
	return func(yield func(Range[T]) bool) {
		if enumerate[T](t, mapper, yield) {
			enumerateLeadUnits[T](t, mapper, yield)
		}
	}
}

// Equal reports whether both tries have the same error value and
// enumerate the same ranges. Value width and layout are not compared.
func (t *Trie[T]) Equal(other *Trie[T]) bool {
	if other == nil || t.errorValue != other.errorValue {
		return false
	}
	next, stop := iter.Pull(other.Ranges())
	defer stop()
	for r := range t.Ranges() {
		o, ok := next()
		if !ok || o != r {
			return false
		}
	}
	_, more := next()
	return !more
}

func (t *Trie[T]) supplementaryIndex2Block(c rune) int {
	return int(t.index[index1Offset-omittedBMPIndex1Length+int(c>>shift1)])
}

func (t *Trie[T]) dataBlockAt(i2 int) int { return int(t.index[i2]) << indexShift }
func (t *Trie[T]) valueAt(i int) T        { return t.data[i] }

func (t *Trie[T]) layout() layout[T] {
	return layout[T]{
		index2NullOffset: int(t.index2NullOffset),
		dataNullOffset:   int(t.dataNullOffset),
		highStart:        t.highStart,
		highValue:        t.data[t.highValueIndex],
		initialValue:     t.initialValue,
	}
}
