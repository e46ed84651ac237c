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
	log "github.com/sirupsen/logrus"
)

// Compact deduplicates and overlaps data and index blocks and trims the
// range of code points that share the value of U+10FFFF. The trie stays
// usable; the next mutation reopens it. Compacting twice is a no-op.
func (w *Writable) Compact() {
	if w.state == stateCompacted {
		return
	}
	before := w.dataLength

	// the high value is the one at the end of the code space
	highValue := w.Get(maxCodePoint)
	highStart := w.findHighStart(highValue)
	highStart = (highStart + cpPerIndex1Entry - 1) &^ (cpPerIndex1Entry - 1)
	if highStart == codePointLimit {
		highValue = w.errorValue
	}

	// Blank the supplementary part above highStart so that compaction
	// does not keep data nothing can reach.
	w.highStart = highStart
	if highStart < codePointLimit {
		w.setRange(max(highStart, 0x10000), maxCodePoint, w.initialValue, true)
	}

	w.compactData()
	if highStart > 0x10000 {
		w.compactIndex2()
	}

	// Store the high value at the end, padded to the granularity.
	if w.dataLength+dataGranularity > len(w.data) {
		data := make([]uint32, w.dataLength+dataGranularity)
		copy(data, w.data[:w.dataLength])
		w.data = data
	}
	w.data[w.dataLength] = highValue
	w.dataLength++
	for w.dataLength&(dataGranularity-1) != 0 {
		w.data[w.dataLength] = w.initialValue
		w.dataLength++
	}

	w.state = stateCompacted
	log.Debugf("compacted trie: highStart=%#x data %d -> %d, index-2 %d",
		w.highStart, before, w.dataLength, w.index2Length)
}

// findHighStart returns the start of the last run of code points mapping
// to highValue, up to U+10FFFF. Lead surrogate code points are not part
// of this index walk.
func (w *Writable) findHighStart(highValue uint32) rune {
	var prevI2Block, prevBlock int32
	if highValue == w.initialValue {
		prevI2Block = w.index2NullOffset
		prevBlock = w.dataNullOffset
	} else {
		prevI2Block = -1
		prevBlock = -1
	}
	prev := rune(codePointLimit)

	i1 := index1Length
	c := prev
	for c > 0 {
		i1--
		i2Block := w.index1[i1]
		if i2Block == prevI2Block {
			// same index-2 block as before
			c -= cpPerIndex1Entry
			continue
		}
		prevI2Block = i2Block
		if i2Block == w.index2NullOffset {
			if highValue != w.initialValue {
				return c
			}
			c -= cpPerIndex1Entry
			continue
		}
		for i2 := index2BlockLength; i2 > 0; {
			i2--
			block := w.index2[i2Block+int32(i2)]
			if block == prevBlock {
				c -= dataBlockLength
				continue
			}
			prevBlock = block
			if block == w.dataNullOffset {
				if highValue != w.initialValue {
					return c
				}
				c -= dataBlockLength
				continue
			}
			for j := dataBlockLength; j > 0; {
				j--
				if w.data[block+int32(j)] != highValue {
					return c
				}
				c--
			}
		}
	}
	// all code points map to highValue
	return 0
}

// findSameDataBlock returns the offset of an earlier copy of otherBlock
// below dataLength, or -1.
func (w *Writable) findSameDataBlock(dataLength, otherBlock, blockLength int) int {
	// ensure that we do not even partially get past dataLength
	dataLength -= blockLength
	for block := 0; block <= dataLength; block += dataGranularity {
		if equalBlocks(w.data[block:], w.data[otherBlock:], blockLength) {
			return block
		}
	}
	return -1
}

func (w *Writable) findSameIndex2Block(index2Length, otherBlock int) int {
	index2Length -= index2BlockLength
	for block := 0; block <= index2Length; block++ {
		if equalBlocks(w.index2[block:], w.index2[otherBlock:], index2BlockLength) {
			return block
		}
	}
	return -1
}

func equalBlocks[E int32 | uint32](s, t []E, length int) bool {
	for i := range length {
		if s[i] != t[i] {
			return false
		}
	}
	return true
}

// compactData moves each used data block down to the end of the already
// compacted part, reusing an identical earlier block or overlapping with
// the tail of the previous one where possible.
//
// The blocks for U+0080..U+07FF are handled in pairs so that the 2-byte
// UTF-8 index can address 64 contiguous values per lead byte.
func (w *Writable) compactData() {
	remap := make([]int32, w.dataLength>>shift2)

	// ASCII data and the bad-UTF-8 block stay in place
	newStart := dataStartOffset
	for start, i := 0, 0; start < newStart; start, i = start+dataBlockLength, i+1 {
		remap[i] = int32(start)
	}

	blockLength := utf82BBlockLength
	blockCount := blockLength >> shift2
	for start := newStart; start < w.dataLength; {
		if start == data0800Offset {
			blockLength = dataBlockLength
			blockCount = 1
		}

		// skip unused blocks
		if w.refCount[start>>shift2] <= 0 {
			start += blockLength
			continue
		}

		if moved := w.findSameDataBlock(newStart, start, blockLength); moved >= 0 {
			for i, mi := blockCount, start>>shift2; i > 0; i, mi = i-1, mi+1 {
				remap[mi] = int32(moved)
				moved += dataBlockLength
			}
			start += blockLength
			continue
		}

		// the new block may overlap the end of the previous one
		overlap := blockLength - dataGranularity
		for overlap > 0 && !equalBlocks(w.data[newStart-overlap:], w.data[start:], overlap) {
			overlap -= dataGranularity
		}

		if overlap > 0 || newStart < start {
			moved := newStart - overlap
			for i, mi := blockCount, start>>shift2; i > 0; i, mi = i-1, mi+1 {
				remap[mi] = int32(moved)
				moved += dataBlockLength
			}
			start += overlap
			for i := blockLength - overlap; i > 0; i-- {
				w.data[newStart] = w.data[start]
				newStart++
				start++
			}
		} else {
			// already in place
			for i, mi := blockCount, start>>shift2; i > 0; i, mi = i-1, mi+1 {
				remap[mi] = int32(start)
				start += dataBlockLength
			}
			newStart = start
		}
	}

	for i := 0; i < w.index2Length; i++ {
		if i == indexGapOffset {
			i += indexGapLength
		}
		w.index2[i] = remap[w.index2[i]>>shift2]
	}
	w.dataNullOffset = remap[w.dataNullOffset>>shift2]

	for newStart&(dataGranularity-1) != 0 {
		w.data[newStart] = w.initialValue
		newStart++
	}
	w.dataLength = newStart
}

// compactIndex2 does the same for the supplementary index-2 blocks. The
// BMP part of index-2 is linear and never moves.
func (w *Writable) compactIndex2() {
	remap := make([]int32, (w.index2Length>>shift1min2)+1)

	newStart := index2BMPLength
	for start, i := 0, 0; start < newStart; start, i = start+index2BlockLength, i+1 {
		remap[i] = int32(start)
	}

	// reserve room for the UTF-8 index and the runtime index-1 table
	newStart += utf82BIndex2Length + int((w.highStart-0x10000)>>shift1)

	for start := index2NullOffsetBuild; start < w.index2Length; {
		if moved := w.findSameIndex2Block(newStart, start); moved >= 0 {
			remap[start>>shift1min2] = int32(moved)
			start += index2BlockLength
			continue
		}

		overlap := index2BlockLength - 1
		for overlap > 0 && !equalBlocks(w.index2[newStart-overlap:], w.index2[start:], overlap) {
			overlap--
		}

		if overlap > 0 || newStart < start {
			remap[start>>shift1min2] = int32(newStart - overlap)
			start += overlap
			for i := index2BlockLength - overlap; i > 0; i-- {
				w.index2[newStart] = w.index2[start]
				newStart++
				start++
			}
		} else {
			remap[start>>shift1min2] = int32(start)
			start += index2BlockLength
			newStart = start
		}
	}

	for i := range w.index1 {
		w.index1[i] = remap[w.index1[i]>>shift1min2]
	}
	w.index2NullOffset = remap[w.index2NullOffset>>shift1min2]

	// Pad so that the data that follows a 16-bit index is aligned; the
	// padding value cannot match any real entry.
	for newStart&((dataGranularity-1)|1) != 0 {
		w.index2[newStart] = 0xffff << indexShift
		newStart++
	}
	w.index2Length = newStart
}
