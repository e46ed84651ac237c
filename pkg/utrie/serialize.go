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
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Header is the fixed 16-byte header of a serialized trie.
type Header struct {
	Signature         uint32
	Options           uint16
	IndexLength       uint16
	ShiftedDataLength uint16
	Index2NullOffset  uint16
	DataNullOffset    uint16
	ShiftedHighStart  uint16
}

// ValueWidth returns the width encoded in the options field.
func (h Header) ValueWidth() ValueWidth {
	return ValueWidth(h.Options & optionsValueBitsMsk)
}

// DataLength returns the number of data entries.
func (h Header) DataLength() int { return int(h.ShiftedDataLength) << indexShift }

// HighStart returns the first code point of the trailing uniform range.
func (h Header) HighStart() rune { return rune(h.ShiftedHighStart) << shift1 }

// SerializedLength returns the total size in bytes of the trie it
// describes, header included.
func (h Header) SerializedLength() int {
	n := headerLength + int(h.IndexLength)*2
	if h.ValueWidth() == Bits16 {
		return n + h.DataLength()*2
	}
	return n + h.DataLength()*4
}

func (h Header) put(b []byte, order binary.ByteOrder) {
	order.PutUint32(b[0:], h.Signature)
	order.PutUint16(b[4:], h.Options)
	order.PutUint16(b[6:], h.IndexLength)
	order.PutUint16(b[8:], h.ShiftedDataLength)
	order.PutUint16(b[10:], h.Index2NullOffset)
	order.PutUint16(b[12:], h.DataNullOffset)
	order.PutUint16(b[14:], h.ShiftedHighStart)
}

// ReadHeader parses and checks a serialized header. The byte order is
// detected from the signature and returned.
func ReadHeader(b []byte) (Header, binary.ByteOrder, error) {
	var h Header
	if len(b) < headerLength {
		return h, nil, errors.Wrapf(ErrMalformed, "%d bytes is shorter than the header", len(b))
	}
	var order binary.ByteOrder
	switch binary.LittleEndian.Uint32(b) {
	case signature:
		order = binary.LittleEndian
	case signatureSwapped:
		order = binary.BigEndian
	default:
		return h, nil, errors.Wrapf(ErrMalformed, "bad signature %#08x", binary.LittleEndian.Uint32(b))
	}
	h = Header{
		Signature:         order.Uint32(b[0:]),
		Options:           order.Uint16(b[4:]),
		IndexLength:       order.Uint16(b[6:]),
		ShiftedDataLength: order.Uint16(b[8:]),
		Index2NullOffset:  order.Uint16(b[10:]),
		DataNullOffset:    order.Uint16(b[12:]),
		ShiftedHighStart:  order.Uint16(b[14:]),
	}
	switch {
	case h.ValueWidth() > Bits32:
		return h, nil, errors.Wrapf(ErrMalformed, "unknown value width %d", h.Options&optionsValueBitsMsk)
	case int(h.IndexLength) < index1Offset:
		return h, nil, errors.Wrapf(ErrMalformed, "index length %d is below the minimum %d", h.IndexLength, index1Offset)
	case h.DataLength() < dataStartOffset:
		return h, nil, errors.Wrapf(ErrMalformed, "data length %d is below the minimum %d", h.DataLength(), dataStartOffset)
	case h.HighStart() > codePointLimit:
		return h, nil, errors.Wrapf(ErrMalformed, "high start %#x is past the code space", h.HighStart())
	}
	return h, order, nil
}

// Header returns the header describing t.
func (t *Trie[T]) Header() Header {
	return Header{
		Signature:         signature,
		Options:           uint16(t.ValueWidth()),
		IndexLength:       uint16(t.indexLength),
		ShiftedDataLength: uint16(t.dataLength >> indexShift),
		Index2NullOffset:  t.index2NullOffset,
		DataNullOffset:    t.dataNullOffset,
		ShiftedHighStart:  uint16(t.highStart >> shift1),
	}
}

// SerializedLength returns the size of the serialized form in bytes.
func (t *Trie[T]) SerializedLength() int { return t.Header().SerializedLength() }

// Serialize returns the little-endian serialized form.
func (t *Trie[T]) Serialize() []byte {
	return t.SerializeOrder(binary.LittleEndian)
}

// SerializeOrder returns the serialized form in the given byte order.
func (t *Trie[T]) SerializeOrder(order binary.ByteOrder) []byte {
	h := t.Header()
	b := make([]byte, h.SerializedLength())
	h.put(b, order)
	p := b[headerLength:]
	// for 16-bit tries the index slice carries the data too
	for _, v := range t.index {
		order.PutUint16(p, v)
		p = p[2:]
	}
	if t.ValueWidth() == Bits32 {
		for _, v := range t.data[:t.dataLength] {
			order.PutUint32(p, uint32(v))
			p = p[4:]
		}
	}
	return b
}

// WriteTo writes the little-endian serialized form to out.
func (t *Trie[T]) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(t.Serialize())
	if err != nil {
		return int64(n), errors.Wrap(err, "writing serialized trie")
	}
	return int64(n), nil
}

// CreateFromSerialized parses a serialized trie of either byte order and
// returns it with the number of bytes consumed; trailing bytes are
// ignored. ErrWidthMismatch is returned when the stored width is not
// the one of T.
func CreateFromSerialized[T Value](b []byte) (*Trie[T], int, error) {
	h, order, err := ReadHeader(b)
	if err != nil {
		return nil, 0, err
	}
	if h.ValueWidth() != widthOf[T]() {
		return nil, 0, errors.Wrapf(ErrWidthMismatch, "stored %s-bit, requested %s-bit", h.ValueWidth(), widthOf[T]())
	}
	size := h.SerializedLength()
	if len(b) < size {
		return nil, 0, errors.Wrapf(ErrMalformed, "need %d bytes, have %d", size, len(b))
	}

	indexLength := int(h.IndexLength)
	dataLength := h.DataLength()
	t := &Trie[T]{
		indexLength:      indexLength,
		dataLength:       dataLength,
		index2NullOffset: h.Index2NullOffset,
		dataNullOffset:   h.DataNullOffset,
		highStart:        h.HighStart(),
	}

	p := b[headerLength:]
	switch h.ValueWidth() {
	case Bits16:
		t.index = make([]uint16, indexLength+dataLength)
		for i := range t.index {
			t.index[i] = order.Uint16(p[2*i:])
		}
		t.data = any(t.index).([]T)
		t.dataMove = indexLength
	default:
		t.index = make([]uint16, indexLength)
		for i := range t.index {
			t.index[i] = order.Uint16(p[2*i:])
		}
		p = p[2*indexLength:]
		data := make([]uint32, dataLength)
		for i := range data {
			data[i] = order.Uint32(p[4*i:])
		}
		t.data = any(data).([]T)
	}
	t.highValueIndex = t.dataMove + dataLength - dataGranularity

	if err := t.validate(); err != nil {
		return nil, 0, err
	}
	t.initialValue = t.data[t.dataNullOffset]
	t.errorValue = t.data[t.dataMove+badUTF8DataOffset]
	return t, size, nil
}

// validate checks that every offset reachable from the index stays within
// the arrays, so lookups on a parsed trie cannot go out of bounds.
func (t *Trie[T]) validate() error {
	dataLimit := t.dataMove + t.dataLength
	dataBlockOK := func(block int, length int) bool {
		return block >= t.dataMove && block+length <= dataLimit
	}

	if !dataBlockOK(int(t.dataNullOffset), dataBlockLength) {
		return errors.Wrapf(ErrMalformed, "data null offset %d out of range", t.dataNullOffset)
	}
	for i := range index2BMPLength {
		if block := int(t.index[i]) << indexShift; !dataBlockOK(block, dataBlockLength) {
			return errors.Wrapf(ErrMalformed, "BMP index-2 entry %d points to %d", i, block)
		}
	}
	for i := range utf82BIndex2Length {
		if block := int(t.index[utf82BIndex2Offset+i]); !dataBlockOK(block, utf82BBlockLength) {
			return errors.Wrapf(ErrMalformed, "UTF-8 index entry %d points to %d", i, block)
		}
	}
	if t.highStart <= 0x10000 {
		return nil
	}

	index1Len := int(t.highStart-0x10000) >> shift1
	if index1Offset+index1Len > t.indexLength {
		return errors.Wrapf(ErrMalformed, "index-1 table for high start %#x does not fit %d entries", t.highStart, t.indexLength)
	}
	for i := range index1Len {
		i2Block := int(t.index[index1Offset+i])
		if i2Block+index2BlockLength > t.indexLength {
			return errors.Wrapf(ErrMalformed, "index-1 entry %d points to %d", i, i2Block)
		}
		for j := range index2BlockLength {
			if block := int(t.index[i2Block+j]) << indexShift; !dataBlockOK(block, dataBlockLength) {
				return errors.Wrapf(ErrMalformed, "index-2 entry %d points to %d", i2Block+j, block)
			}
		}
	}
	return nil
}
