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

// Geometry shared by the builder, the compactor and the frozen reader.
// All of it is fixed by the serialized "Tri2" format.
const (
	// shift1 is the shift for getting the index-1 table offset.
	shift1 = 6 + 5

	// shift2 is the shift for getting the index-2 table offset.
	shift2 = 5

	// shift1min2 is the difference between the two shifts, for getting an
	// index-1 offset from an index-2 offset.
	shift1min2 = shift1 - shift2

	// omittedBMPIndex1Length is the number of index-1 entries for the BMP.
	// This part of the index-1 table is omitted from the serialized form.
	omittedBMPIndex1Length = 0x10000 >> shift1

	// cpPerIndex1Entry is the number of code points per index-1 entry (2048).
	cpPerIndex1Entry = 1 << shift1

	// index2BlockLength is the number of entries in an index-2 block (64).
	index2BlockLength = 1 << shift1min2
	index2Mask        = index2BlockLength - 1

	// dataBlockLength is the number of entries in a data block (32).
	dataBlockLength = 1 << shift2
	dataMask        = dataBlockLength - 1

	// indexShift is the shift applied to index-2 values. Data blocks must
	// be aligned to dataGranularity.
	indexShift      = 2
	dataGranularity = 1 << indexShift
)

// Fixed layout of the first part of the index array.
const (
	index2Offset = 0

	// The part of the index-2 table for U+D800..U+DBFF stores values for
	// lead surrogate code units. Values for lead surrogate code points are
	// indexed with this separate block.
	lscpIndex2Offset = 0x10000 >> shift2
	lscpIndex2Length = 0x400 >> shift2

	index2BMPLength = lscpIndex2Offset + lscpIndex2Length

	// The 2-byte UTF-8 index-2 table follows, one entry per lead byte C0..DF.
	utf82BIndex2Offset = index2BMPLength
	utf82BIndex2Length = 0x800 >> 6

	// The index-1 table, only used for supplementary code points.
	index1Offset    = utf82BIndex2Offset + utf82BIndex2Length
	maxIndex1Length = 0x100000 >> shift1
)

// Fixed layout of the first part of the data array.
const (
	// badUTF8DataOffset is the block holding the error value, right after
	// the linear ASCII data.
	badUTF8DataOffset = 0x80
	dataStartOffset   = 0xc0
)

// Limits of the serialized form.
const (
	maxIndexLength = 0xffff
	maxDataLength  = 0xffff << indexShift
)

// Build-time layout of the writable trie.
const (
	// index1Length covers the whole code space, including the BMP.
	index1Length = 0x110000 >> shift1

	// The index gap is reserved for the UTF-8 index and the runtime
	// index-1 table and holds impossible values while building.
	indexGapOffset = index2BMPLength
	indexGapLength = ((utf82BIndex2Length + maxIndex1Length) + index2Mask) &^ index2Mask

	maxBuildIndex2Length = (0x110000 >> shift2) + lscpIndex2Length + indexGapLength + index2BlockLength

	index2NullOffsetBuild = indexGapOffset + indexGapLength
	index2StartOffset     = index2NullOffsetBuild + index2BlockLength

	// dataNullOffsetBuild is the null data block, right after the
	// bad-UTF-8 block.
	dataNullOffsetBuild  = dataStartOffset
	dataStartOffsetBuild = dataNullOffsetBuild + 0x40

	// data0800Offset is where the blocks for U+0800 and above start. The
	// blocks for U+0080..U+07FF are preallocated and compacted in 64-value
	// steps for the 2-byte UTF-8 index.
	data0800Offset = dataStartOffsetBuild + 0x780

	initialDataLength   = 1 << 14
	mediumDataLength    = 1 << 17
	maxBuildDataLength  = 0x110000 + 0x40 + 0x40 + 0x400
	utf82BBlockLength   = 64
	maxCodePoint        = 0x10ffff
	codePointLimit      = 0x110000
	signature           = 0x54726932 // "Tri2"
	signatureSwapped    = 0x32697254
	optionsValueBitsMsk = 0xf
	headerLength        = 16
)

func isLeadSurrogate(c rune) bool {
	return c&^0x3ff == 0xd800
}
