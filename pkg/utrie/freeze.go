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
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Freeze16 compacts w if needed and builds a frozen trie with 16-bit
// values. Values wider than 16 bits are truncated.
func Freeze16(w *Writable) (*Trie[uint16], error) {
	return Freeze[uint16](w)
}

// Freeze32 compacts w if needed and builds a frozen trie with 32-bit
// values.
func Freeze32(w *Writable) (*Trie[uint32], error) {
	return Freeze[uint32](w)
}

// Freeze compacts w if needed and builds a frozen trie with values of
// type T. w is left compacted and remains usable. ErrTooLarge is returned
// when the compacted index or data cannot be addressed by the 16-bit
// index entries of the serialized form.
func Freeze[T Value](w *Writable) (*Trie[T], error) {
	w.Compact()

	width := widthOf[T]()
	allIndexesLength := index1Offset
	if w.highStart > 0x10000 {
		allIndexesLength = w.index2Length
	}
	dataMove := 0
	if width == Bits16 {
		dataMove = allIndexesLength
	}

	switch {
	case allIndexesLength > maxIndexLength:
		return nil, errors.Wrapf(ErrTooLarge, "index length %d exceeds %d", allIndexesLength, maxIndexLength)
	case dataMove+int(w.dataNullOffset) > 0xffff,
		dataMove+data0800Offset > 0xffff,
		dataMove+w.dataLength > maxDataLength:
		return nil, errors.Wrapf(ErrTooLarge, "data length %d with %d index entries exceeds %d",
			w.dataLength, dataMove, maxDataLength)
	}

	indexLength := allIndexesLength
	if width == Bits16 {
		indexLength += w.dataLength
	}
	t := &Trie[T]{
		index:          make([]uint16, indexLength),
		indexLength:    allIndexesLength,
		dataLength:     w.dataLength,
		dataMove:       dataMove,
		dataNullOffset: uint16(dataMove + int(w.dataNullOffset)),
		highStart:      w.highStart,
		highValueIndex: dataMove + w.dataLength - dataGranularity,
		initialValue:   T(w.initialValue),
		errorValue:     T(w.errorValue),
	}
	if w.highStart <= 0x10000 {
		t.index2NullOffset = 0xffff
	} else {
		t.index2NullOffset = uint16(index2Offset + w.index2NullOffset)
	}

	// BMP index-2, with the lead surrogate code point block
	dest := t.index
	for i := range index2BMPLength {
		dest[i] = uint16((int(w.index2[i]) + dataMove) >> indexShift)
	}
	dest = dest[index2BMPLength:]

	// 2-byte UTF-8 index, unshifted: C0 and C1 are never well-formed
	dest[0] = uint16(dataMove + badUTF8DataOffset)
	dest[1] = uint16(dataMove + badUTF8DataOffset)
	for i := 2; i < utf82BIndex2Length; i++ {
		dest[i] = uint16(dataMove + int(w.index2[i<<(6-shift2)]))
	}
	dest = dest[utf82BIndex2Length:]

	if w.highStart > 0x10000 {
		index1Len := int(w.highStart-0x10000) >> shift1
		suppIndex2Start := index2BMPLength + utf82BIndex2Length + index1Len

		for i := range index1Len {
			dest[i] = uint16(index2Offset + w.index1[i+omittedBMPIndex1Length])
		}
		dest = dest[index1Len:]

		for i := range w.index2Length - suppIndex2Start {
			dest[i] = uint16((dataMove + int(w.index2[suppIndex2Start+i])) >> indexShift)
		}
		dest = dest[w.index2Length-suppIndex2Start:]
	}

	switch width {
	case Bits16:
		for i, v := range w.data[:w.dataLength] {
			dest[i] = uint16(v)
		}
		t.data = any(t.index).([]T)
	default:
		data := make([]uint32, w.dataLength)
		copy(data, w.data[:w.dataLength])
		t.data = any(data).([]T)
	}

	log.Debugf("froze %s-bit trie: index %d, data %d, highStart %#x",
		width, t.indexLength, t.dataLength, t.highStart)
	return t, nil
}
