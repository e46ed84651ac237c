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

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type state int

const (
	stateOpen state = iota
	stateCompacted
)

// Writable is the mutable form of a trie, used while generating data.
//
// Data blocks live in one arena addressed by offset. Each block has a
// reference count; a block is written in place only when it is referenced
// exactly once, otherwise it is copied first. Released blocks go on a
// free-list stack and are reused before the arena grows.
//
// A Writable is not safe for concurrent use.
type Writable struct {
	index1 [index1Length]int32
	index2 []int32
	data   []uint32

	refCount []int32
	free     []int32

	index2Length     int
	dataLength       int
	index2NullOffset int32
	dataNullOffset   int32

	initialValue uint32
	errorValue   uint32
	highStart    rune

	state state
}

// New opens a writable trie where every code point maps to initialValue.
// errorValue is returned for lookups outside 0..0x10FFFF.
func New(initialValue, errorValue uint32) *Writable {
	w := &Writable{}
	w.init(initialValue, errorValue)
	return w
}

// NewFromTrie opens a writable trie holding the contents of a frozen one.
func NewFromTrie[T Value](t *Trie[T]) *Writable {
	w := New(uint32(t.initialValue), uint32(t.errorValue))
	for r := range t.Ranges() {
		w.setRangeFrom(Range[uint32]{Start: r.Start, End: r.End, Value: uint32(r.Value), LeadSurrogate: r.LeadSurrogate}, true)
	}
	return w
}

func (w *Writable) init(initialValue, errorValue uint32) {
	w.initialValue = initialValue
	w.errorValue = errorValue
	w.highStart = codePointLimit
	w.state = stateOpen

	w.data = make([]uint32, initialDataLength)
	w.index2 = make([]int32, maxBuildIndex2Length)
	w.refCount = make([]int32, maxBuildDataLength>>shift2)
	w.free = nil

	// ASCII, the bad-UTF-8 block and the null block
	i := 0
	for ; i < 0x80; i++ {
		w.data[i] = initialValue
	}
	for ; i < 0xc0; i++ {
		w.data[i] = errorValue
	}
	for i = dataNullOffsetBuild; i < dataStartOffsetBuild; i++ {
		w.data[i] = initialValue
	}
	w.dataNullOffset = dataNullOffsetBuild
	w.dataLength = dataStartOffsetBuild

	// linear ASCII blocks
	j := 0
	for i = 0; j < 0x80; i, j = i+1, j+dataBlockLength {
		w.index2[i] = int32(j)
		w.refCount[i] = 1
	}
	for ; j < 0xc0; i, j = i+1, j+dataBlockLength {
		w.refCount[i] = 0
	}

	// The null block is referenced by every block except ASCII, plus the
	// lead surrogate code points, plus one so that compaction keeps it.
	w.refCount[i] = (codePointLimit >> shift2) - (0x80 >> shift2) + 1 + lscpIndex2Length
	i++
	j += dataBlockLength
	for ; j < dataStartOffsetBuild; i, j = i+1, j+dataBlockLength {
		w.refCount[i] = 0
	}

	for i = 0x80 >> shift2; i < index2BMPLength; i++ {
		w.index2[i] = dataNullOffsetBuild
	}
	// Impossible values in the gap keep compaction from overlapping it.
	for i = 0; i < indexGapLength; i++ {
		w.index2[indexGapOffset+i] = -1
	}
	for i = 0; i < index2BlockLength; i++ {
		w.index2[index2NullOffsetBuild+i] = dataNullOffsetBuild
	}
	w.index2NullOffset = index2NullOffsetBuild
	w.index2Length = index2StartOffset

	j = 0
	for i = 0; i < omittedBMPIndex1Length; i, j = i+1, j+index2BlockLength {
		w.index1[i] = int32(j)
	}
	for ; i < index1Length; i++ {
		w.index1[i] = index2NullOffsetBuild
	}

	// U+0080..U+07FF get their own blocks, compacted in 64-value steps
	// for the 2-byte UTF-8 index.
	for c := rune(0x80); c < 0x800; c += dataBlockLength {
		w.set(c, true, initialValue)
	}
}

// InitialValue returns the value of code points never set.
func (w *Writable) InitialValue() uint32 { return w.initialValue }

// ErrorValue returns the value for out-of-range lookups.
func (w *Writable) ErrorValue() uint32 { return w.errorValue }

// Compacted reports whether the trie is in its compacted state.
func (w *Writable) Compacted() bool { return w.state == stateCompacted }

// Clone returns an independent copy.
func (w *Writable) Clone() *Writable {
	c := *w
	c.index2 = append([]int32(nil), w.index2...)
	c.data = append([]uint32(nil), w.data...)
	c.refCount = append([]int32(nil), w.refCount...)
	c.free = append([]int32(nil), w.free...)
	return &c
}

// Get returns the value for a code point. Lead surrogate code points
// return their code point value, not the code unit value.
func (w *Writable) Get(c rune) uint32 {
	if c < 0 || c > maxCodePoint {
		return w.errorValue
	}
	return w.get(c, true)
}

// GetFromU16SingleLead returns the value stored for a UTF-16 code unit.
// For lead surrogates this is the code unit value set with
// SetForLeadSurrogateCodeUnit.
func (w *Writable) GetFromU16SingleLead(cu uint16) uint32 {
	return w.get(rune(cu), false)
}

func (w *Writable) get(c rune, fromLSCP bool) uint32 {
	if c >= w.highStart && c > 0xffff {
		return w.data[w.dataLength-dataGranularity]
	}
	var i2 int32
	if fromLSCP && isLeadSurrogate(c) {
		i2 = lscpIndex2Offset - (0xd800 >> shift2) + int32(c>>shift2)
	} else {
		i2 = w.index1[c>>shift1] + int32((c>>shift2)&index2Mask)
	}
	return w.data[w.index2[i2]+int32(c&dataMask)]
}

// Set assigns a value to one code point.
func (w *Writable) Set(c rune, value uint32) error {
	if c < 0 || c > maxCodePoint {
		return errors.Wrapf(ErrInvalidArgument, "code point %#x", c)
	}
	w.reopen()
	w.set(c, true, value)
	return nil
}

// SetForLeadSurrogateCodeUnit assigns the value returned for a lone lead
// surrogate code unit. The code point value of the same surrogate is not
// affected.
func (w *Writable) SetForLeadSurrogateCodeUnit(cu uint16, value uint32) error {
	if !isLeadSurrogate(rune(cu)) {
		return errors.Wrapf(ErrInvalidArgument, "%#04x is not a lead surrogate", cu)
	}
	w.reopen()
	w.set(rune(cu), false, value)
	return nil
}

// SetRange assigns value to every code point in [start, end]. Without
// overwrite, only code points still holding the initial value change.
func (w *Writable) SetRange(start, end rune, value uint32, overwrite bool) error {
	if start < 0 || start > maxCodePoint || end < 0 || end > maxCodePoint || start > end {
		return errors.Wrapf(ErrInvalidArgument, "code point range %#x..%#x", start, end)
	}
	if !overwrite && value == w.initialValue {
		return nil
	}
	w.reopen()
	w.setRange(start, end, value, overwrite)
	return nil
}

// SetRangeFrom replays one enumerated range, code unit by code unit for
// lead surrogate ranges.
func (w *Writable) SetRangeFrom(r Range[uint32], overwrite bool) error {
	if r.LeadSurrogate {
		if !isLeadSurrogate(r.Start) || !isLeadSurrogate(r.End) || r.Start > r.End {
			return errors.Wrapf(ErrInvalidArgument, "lead surrogate range %#x..%#x", r.Start, r.End)
		}
		w.reopen()
		w.setRangeFrom(r, overwrite)
		return nil
	}
	return w.SetRange(r.Start, r.End, r.Value, overwrite)
}

func (w *Writable) setRangeFrom(r Range[uint32], overwrite bool) {
	if !r.LeadSurrogate {
		if overwrite || r.Value != w.initialValue {
			w.setRange(r.Start, r.End, r.Value, overwrite)
		}
		return
	}
	for c := r.Start; c <= r.End; c++ {
		if overwrite || w.get(c, false) == w.initialValue {
			w.set(c, false, r.Value)
		}
	}
}

// Ranges enumerates the current contents, see Trie.Ranges.
func (w *Writable) Ranges() iter.Seq[Range[uint32]] {
	return func(yield func(Range[uint32]) bool) {
		if enumerate[uint32](w, nil, yield) {
			enumerateLeadUnits[uint32](w, nil, yield)
		}
	}
}

// reopen moves a compacted trie back to the open state by rebuilding it
// from its own ranges.
func (w *Writable) reopen() {
	if w.state != stateCompacted {
		return
	}
	log.Debugf("uncompacting trie: highStart=%#x dataLength=%d", w.highStart, w.dataLength)
	fresh := New(w.initialValue, w.errorValue)
	for r := range w.Ranges() {
		fresh.setRangeFrom(r, true)
	}
	*w = *fresh
}

func (w *Writable) set(c rune, forLSCP bool, value uint32) {
	block := w.getDataBlock(c, forLSCP)
	w.data[block+int32(c&dataMask)] = value
}

func (w *Writable) setRange(start, end rune, value uint32, overwrite bool) {
	limit := end + 1
	if start&dataMask != 0 {
		// partial block at [start..following block boundary[
		block := w.getDataBlock(start, true)
		nextStart := (start + dataBlockLength) &^ dataMask
		if nextStart <= limit {
			w.fillBlock(block, start&dataMask, dataBlockLength, value, overwrite)
			start = nextStart
		} else {
			w.fillBlock(block, start&dataMask, limit&dataMask, value, overwrite)
			return
		}
	}

	rest := limit & dataMask
	limit &^= dataMask

	repeatBlock := int32(-1)
	if value == w.initialValue {
		repeatBlock = w.dataNullOffset
	}

	for ; start < limit; start += dataBlockLength {
		if value == w.initialValue && w.isInNullBlock(start, true) {
			continue
		}

		i2 := w.getIndex2Block(start, true) + int32((start>>shift2)&index2Mask)
		block := w.index2[i2]
		setRepeatBlock := false
		if w.isWritableBlock(block) {
			if overwrite && block >= data0800Offset {
				// unprotected block, all values replaced
				setRepeatBlock = true
			} else {
				w.fillBlock(block, 0, dataBlockLength, value, overwrite)
			}
		} else {
			// shared blocks are uniform
			old := w.data[block+int32(start&dataMask)]
			if old != value && (overwrite || old == w.initialValue) {
				setRepeatBlock = true
			}
		}
		if setRepeatBlock {
			if repeatBlock >= 0 {
				w.setIndex2Entry(i2, repeatBlock)
			} else {
				repeatBlock = w.getDataBlock(start, true)
				w.writeBlock(repeatBlock, value)
			}
		}
	}

	if rest > 0 {
		// partial block at [last block boundary..limit[
		block := w.getDataBlock(start, true)
		w.fillBlock(block, 0, rest, value, overwrite)
	}
}

func (w *Writable) isInNullBlock(c rune, forLSCP bool) bool {
	var i2 int32
	if forLSCP && isLeadSurrogate(c) {
		i2 = lscpIndex2Offset - (0xd800 >> shift2) + int32(c>>shift2)
	} else {
		i2 = w.index1[c>>shift1] + int32((c>>shift2)&index2Mask)
	}
	return w.index2[i2] == w.dataNullOffset
}

func (w *Writable) getIndex2Block(c rune, forLSCP bool) int32 {
	if forLSCP && isLeadSurrogate(c) {
		return lscpIndex2Offset
	}
	i1 := c >> shift1
	i2 := w.index1[i1]
	if i2 == w.index2NullOffset {
		i2 = w.allocIndex2Block()
		w.index1[i1] = i2
	}
	return i2
}

func (w *Writable) allocIndex2Block() int32 {
	newBlock := w.index2Length
	newTop := newBlock + index2BlockLength
	if newTop > len(w.index2) {
		// the index-2 array is sized for every supplementary block
		panic("utrie: index-2 array overflow")
	}
	w.index2Length = newTop
	copy(w.index2[newBlock:newTop], w.index2[w.index2NullOffset:int(w.index2NullOffset)+index2BlockLength])
	return int32(newBlock)
}

func (w *Writable) getDataBlock(c rune, forLSCP bool) int32 {
	i2 := w.getIndex2Block(c, forLSCP) + int32((c>>shift2)&index2Mask)
	oldBlock := w.index2[i2]
	if w.isWritableBlock(oldBlock) {
		return oldBlock
	}
	newBlock := w.allocDataBlock(oldBlock)
	w.setIndex2Entry(i2, newBlock)
	return newBlock
}

func (w *Writable) isWritableBlock(block int32) bool {
	return block != w.dataNullOffset && w.refCount[block>>shift2] == 1
}

func (w *Writable) allocDataBlock(copyBlock int32) int32 {
	var newBlock int32
	if n := len(w.free); n > 0 {
		newBlock = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		newBlock = int32(w.dataLength)
		newTop := w.dataLength + dataBlockLength
		if newTop > len(w.data) {
			var capacity int
			switch {
			case len(w.data) < mediumDataLength:
				capacity = mediumDataLength
			case len(w.data) < maxBuildDataLength:
				capacity = maxBuildDataLength
			default:
				// the arena is sized for one block per code point block
				panic("utrie: data array overflow")
			}
			data := make([]uint32, capacity)
			copy(data, w.data[:w.dataLength])
			w.data = data
		}
		w.dataLength = newTop
	}
	copy(w.data[newBlock:newBlock+dataBlockLength], w.data[copyBlock:copyBlock+dataBlockLength])
	w.refCount[newBlock>>shift2] = 0
	return newBlock
}

func (w *Writable) releaseDataBlock(block int32) {
	w.free = append(w.free, block)
}

func (w *Writable) setIndex2Entry(i2, block int32) {
	// increment first, block may equal the old one
	w.refCount[block>>shift2]++
	oldBlock := w.index2[i2]
	w.refCount[oldBlock>>shift2]--
	if w.refCount[oldBlock>>shift2] == 0 {
		w.releaseDataBlock(oldBlock)
	}
	w.index2[i2] = block
}

func (w *Writable) fillBlock(block int32, start, limit rune, value uint32, overwrite bool) {
	p := w.data[block+int32(start) : block+int32(limit)]
	if overwrite {
		for i := range p {
			p[i] = value
		}
		return
	}
	for i := range p {
		if p[i] == w.initialValue {
			p[i] = value
		}
	}
}

func (w *Writable) writeBlock(block int32, value uint32) {
	p := w.data[block : block+dataBlockLength]
	for i := range p {
		p[i] = value
	}
}
