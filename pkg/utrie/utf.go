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
	"unicode/utf16"
	"unicode/utf8"
)

// GetFromUTF8 decodes the code point at the start of s and returns its
// value and the number of bytes consumed. ASCII, 2-byte and 3-byte
// sequences are looked up straight from the index. Ill-formed input
// yields the error value and consumes one byte. An empty s yields the
// error value and 0.
func (t *Trie[T]) GetFromUTF8(s []byte) (T, int) {
	if len(s) == 0 {
		return t.errorValue, 0
	}
	lead := s[0]
	switch {
	case lead < utf8.RuneSelf:
		return t.data[t.dataMove+int(lead)], 1

	case lead >= 0xc2 && lead < 0xe0 && len(s) >= 2:
		if t1 := s[1] ^ 0x80; t1 <= 0x3f {
			block := int(t.index[utf82BIndex2Offset-0xc0+int(lead)])
			return t.data[block+int(t1)], 2
		}

	case lead >= 0xe0 && lead < 0xf0 && len(s) >= 3:
		t1, t2 := s[1]^0x80, s[2]^0x80
		if t1 <= 0x3f && t2 <= 0x3f && validLead3T1(lead, s[1]) {
			c := rune(lead&0xf)<<12 | rune(t1)<<6 | rune(t2)
			// no surrogates here, so the linear BMP index applies
			return t.data[t.bmpIndex(index2Offset, c)], 3
		}

	case lead >= 0xf0:
		if c, n := utf8.DecodeRune(s); c != utf8.RuneError || n > 1 {
			return t.Get(c), n
		}
	}
	return t.data[t.dataMove+badUTF8DataOffset], 1
}

// validLead3T1 rejects overlong forms and surrogates in 3-byte sequences.
func validLead3T1(lead, t1 byte) bool {
	switch lead {
	case 0xe0:
		return t1 >= 0xa0
	case 0xed:
		return t1 < 0xa0
	}
	return true
}

// U16Next decodes the code point at s[i] and returns it with its value
// and the index after it. A surrogate pair is looked up as a
// supplementary code point. An unpaired surrogate yields the value for
// its code unit.
func (t *Trie[T]) U16Next(s []uint16, i int) (rune, T, int) {
	c := rune(s[i])
	i++
	if !utf16.IsSurrogate(c) {
		return c, t.data[t.bmpIndex(index2Offset, c)], i
	}
	if isLeadSurrogate(c) && i < len(s) {
		if c2 := rune(s[i]); c2&^0x3ff == 0xdc00 {
			c = utf16.DecodeRune(c, c2)
			return c, t.Get(c), i + 1
		}
	}
	return c, t.data[t.bmpIndex(index2Offset, c)], i
}
