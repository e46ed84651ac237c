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

// blockSource is the index walk shared by the frozen and the writable
// forms. Offsets returned by dataBlockAt are data offsets, already
// shifted.
type blockSource[T Value] interface {
	supplementaryIndex2Block(c rune) int
	dataBlockAt(i2 int) int
	valueAt(i int) T
	layout() layout[T]
}

type layout[T Value] struct {
	index2NullOffset int
	dataNullOffset   int
	highStart        rune
	highValue        T
	initialValue     T
}

func (w *Writable) supplementaryIndex2Block(c rune) int { return int(w.index1[c>>shift1]) }
func (w *Writable) dataBlockAt(i2 int) int               { return int(w.index2[i2]) }
func (w *Writable) valueAt(i int) uint32                 { return w.data[i] }

func (w *Writable) layout() layout[uint32] {
	l := layout[uint32]{
		index2NullOffset: int(w.index2NullOffset),
		dataNullOffset:   int(w.dataNullOffset),
		highStart:        w.highStart,
		initialValue:     w.initialValue,
	}
	if w.state == stateCompacted {
		l.highValue = w.data[w.dataLength-dataGranularity]
	}
	return l
}

// enumerate walks all code points and yields maximal ranges of equal
// mapped values. Whole null index-2 and data blocks are skipped, as are
// blocks repeating the previous one. It returns false if yield stopped
// the walk.
//
// The BMP is always walked through the index, so lead surrogate code
// points keep their values even when highStart is below U+DC00.
func enumerate[T Value](src blockSource[T], mapper ValueMapper[T], yield func(Range[T]) bool) bool {
	l := src.layout()
	if mapper == nil {
		mapper = identity[T]
	}
	initialValue := mapper(l.initialValue)

	var (
		c, prev     rune
		prevValue   T
		prevI2Block = -1
		prevBlock   = -1
	)
	emit := func(end rune) bool {
		return yield(Range[T]{Start: prev, End: end, Value: prevValue})
	}

	for c < codePointLimit && (c < l.highStart || c <= 0xffff) {
		limit := c + cpPerIndex1Entry
		var i2Block int
		switch {
		case c > 0xffff:
			i2Block = src.supplementaryIndex2Block(c)
			if i2Block == prevI2Block && c-prev >= cpPerIndex1Entry {
				// same index-2 block as before, filled with prevValue
				c += cpPerIndex1Entry
				continue
			}
		case c < 0xd800 || c >= 0xe000:
			i2Block = int(c >> shift2)
		case c < 0xdc00:
			// code points, not code units: the separate half-size block
			i2Block = lscpIndex2Offset
			limit = 0xdc00
		default:
			// second half of the surrogates block
			i2Block = 0xd800 >> shift2
			limit = 0xe000
		}
		prevI2Block = i2Block

		if i2Block == l.index2NullOffset {
			if prevValue != initialValue {
				if prev < c && !emit(c-1) {
					return false
				}
				prevBlock = l.dataNullOffset
				prev = c
				prevValue = initialValue
			}
			c = limit
			continue
		}

		i2 := int(c>>shift2) & index2Mask
		i2Limit := index2BlockLength
		if c>>shift1 == limit>>shift1 {
			i2Limit = int(limit>>shift2) & index2Mask
		}
		for ; i2 < i2Limit; i2++ {
			block := src.dataBlockAt(i2Block + i2)
			if block == prevBlock && c-prev >= dataBlockLength {
				// same data block as before, filled with prevValue
				c += dataBlockLength
				continue
			}
			prevBlock = block
			if block == l.dataNullOffset {
				if prevValue != initialValue {
					if prev < c && !emit(c-1) {
						return false
					}
					prev = c
					prevValue = initialValue
				}
				c += dataBlockLength
				continue
			}
			for j := range dataBlockLength {
				v := mapper(src.valueAt(block + j))
				if v != prevValue {
					if prev < c && !emit(c-1) {
						return false
					}
					prev = c
					prevValue = v
				}
				c++
			}
		}
	}

	if c < codePointLimit {
		// c == highStart, everything above maps to the high value
		v := mapper(l.highValue)
		if v != prevValue {
			if prev < c && !emit(c-1) {
				return false
			}
			prev = c
			prevValue = v
		}
	}
	return emit(maxCodePoint)
}

// enumerateLeadUnits yields the ranges of lead surrogate code unit
// values, U+D800..U+DBFF read through the linear BMP index.
func enumerateLeadUnits[T Value](src blockSource[T], mapper ValueMapper[T], yield func(Range[T]) bool) bool {
	l := src.layout()
	if mapper == nil {
		mapper = identity[T]
	}
	initialValue := mapper(l.initialValue)

	c, prev := rune(0xd800), rune(0xd800)
	var prevValue T
	prevBlock := -1
	emit := func(end rune) bool {
		return yield(Range[T]{Start: prev, End: end, Value: prevValue, LeadSurrogate: true})
	}

	for i2 := 0xd800 >> shift2; i2 < 0xdc00>>shift2; i2++ {
		block := src.dataBlockAt(i2)
		if block == prevBlock && c-prev >= dataBlockLength {
			c += dataBlockLength
			continue
		}
		prevBlock = block
		if block == l.dataNullOffset {
			if prevValue != initialValue {
				if prev < c && !emit(c-1) {
					return false
				}
				prev = c
				prevValue = initialValue
			}
			c += dataBlockLength
			continue
		}
		for j := range dataBlockLength {
			v := mapper(src.valueAt(block + j))
			if v != prevValue {
				if prev < c && !emit(c-1) {
					return false
				}
				prev = c
				prevValue = v
			}
			c++
		}
	}
	return emit(0xdbff)
}

func identity[T Value](v T) T { return v }
