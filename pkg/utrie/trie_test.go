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
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestFreeze_Scenario(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetRange(0x41, 0x5a, 1, true))
	require.NoError(t, w.Set(0x130, 2))

	t32, err := Freeze32(w)
	require.NoError(t, err)
	t16, err := Freeze16(w)
	require.NoError(t, err)

	require.Equal(t, Bits32, t32.ValueWidth())
	require.Equal(t, Bits16, t16.ValueWidth())
	require.Equal(t, rune(0x800), t32.HighStart())
	require.Equal(t, uint32(0), t32.HighValue())

	for _, c := range []rune{0, 0x40, 0x41, 0x5a, 0x5b, 0x12f, 0x130, 0x131, 0xd800, 0xffff, 0x10000, 0x10ffff} {
		require.Equal(t, w.Get(c), t32.Get(c), "code point %#x", c)
		require.Equal(t, uint16(w.Get(c)), t16.Get(c), "code point %#x", c)
	}
	require.Equal(t, uint32(testErrorValue), t32.Get(0x110000))
	require.Equal(t, uint16(testErrorValue), t16.Get(-5))
	require.Equal(t, uint32(0), t32.InitialValue())
	require.Equal(t, uint32(testErrorValue), t32.ErrorValue())

	expected := []Range[uint32]{
		{Start: 0, End: 0x40, Value: 0},
		{Start: 0x41, End: 0x5a, Value: 1},
		{Start: 0x5b, End: 0x12f, Value: 0},
		{Start: 0x130, End: 0x130, Value: 2},
		{Start: 0x131, End: 0x10ffff, Value: 0},
		{Start: 0xd800, End: 0xdbff, Value: 0, LeadSurrogate: true},
	}
	require.Equal(t, expected, collect(t, t32.Ranges()))
	require.Len(t, collect(t, t16.Ranges()), len(expected))

	// the writable stays usable after freezing
	require.NoError(t, w.Set(0x131, 3))
	require.Equal(t, uint32(3), w.Get(0x131))
	require.Equal(t, uint32(0), t32.Get(0x131))
}

func TestFreeze_LeadSurrogates(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetForLeadSurrogateCodeUnit(0xd800, 9))
	tr, err := Freeze16(w)
	require.NoError(t, err)
	require.Equal(t, uint16(9), tr.GetFromU16SingleLead(0xd800))
	require.Equal(t, uint16(0), tr.Get(0xd800))
}

func TestFreeze_LeadSurrogateCodePointsBelowHighStart(t *testing.T) {
	// Everything but the lead surrogate code points is initial, so the
	// high start drops to 0.
	w := New(0, testErrorValue)
	require.NoError(t, w.SetRange(0xd800, 0xdbff, 7, true))
	tr, err := Freeze32(w)
	require.NoError(t, err)
	require.Equal(t, rune(0), tr.HighStart())

	require.Equal(t, uint32(7), tr.Get(0xd800))
	require.Equal(t, uint32(7), tr.Get(0xdbff))
	require.Equal(t, uint32(0), tr.GetFromU16SingleLead(0xd800))
	require.Equal(t, []Range[uint32]{
		{Start: 0, End: 0xd7ff, Value: 0},
		{Start: 0xd800, End: 0xdbff, Value: 7},
		{Start: 0xdc00, End: 0x10ffff, Value: 0},
		{Start: 0xd800, End: 0xdbff, Value: 0, LeadSurrogate: true},
	}, collect(t, tr.Ranges()))

	rebuilt := NewFromTrie(tr)
	require.Equal(t, uint32(7), rebuilt.Get(0xda00))
}

func TestFreeze_Supplementary(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetRange(0x20000, 0x2a6df, 5, true))
	require.NoError(t, w.SetRange(0x2a700, 0x2b73f, 5, true))
	require.NoError(t, w.Set(0xe0001, 6))
	for c := rune(0x1d400); c < 0x1d800; c += 3 {
		require.NoError(t, w.Set(c, uint32(c&0xff)))
	}

	tr, err := Freeze32(w)
	require.NoError(t, err)
	require.Equal(t, rune(0xe0800), tr.HighStart())
	require.Equal(t, uint32(5), tr.Get(0x20000))
	require.Equal(t, uint32(5), tr.Get(0x2a6df))
	require.Equal(t, uint32(0), tr.Get(0x2a6e0))
	require.Equal(t, uint32(6), tr.Get(0xe0001))
	require.Equal(t, uint32(0), tr.Get(0xe0002))
	require.Equal(t, uint32(0), tr.Get(0x10ffff))
	require.Equal(t, uint32(0x03), tr.Get(0x1d403))
	require.Equal(t, uint32(0), tr.Get(0x1d404))

	t16, err := Freeze16(w)
	require.NoError(t, err)
	require.Equal(t, uint16(6), t16.Get(0xe0001))
	require.Greater(t, t16.IndexLength(), index1Offset)
}

func TestFreeze_HighValueAtEnd(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetRange(0xf0000, 0x10ffff, 4, true))
	tr, err := Freeze32(w)
	require.NoError(t, err)
	require.Equal(t, rune(0xf0000), tr.HighStart())
	require.Equal(t, uint32(4), tr.HighValue())
	require.Equal(t, uint32(4), tr.Get(0x10ffff))
	require.Equal(t, uint32(0), tr.Get(0xeffff))

	w = New(0, testErrorValue)
	require.NoError(t, w.Set(0x10ffff, 4))
	tr, err = Freeze32(w)
	require.NoError(t, err)
	require.Equal(t, rune(codePointLimit), tr.HighStart())
	require.Equal(t, uint32(4), tr.Get(0x10ffff))
	require.Equal(t, uint32(0), tr.Get(0x10fffe))
}

func TestFreeze_TooLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a large trie")
	}
	w := New(0, testErrorValue)
	for c := rune(0x10000); c < 0x52000; c++ {
		require.NoError(t, w.Set(c, uint32(c)))
	}
	_, err := Freeze32(w)
	require.True(t, errors.Is(err, ErrTooLarge), "got %v", err)
}

func TestFreeze_RandomAgainstModel(t *testing.T) {
	w, m := buildRandom(t, 11, 120, 0x1000)
	t32, err := Freeze32(w)
	require.NoError(t, err)
	t16, err := Freeze16(w)
	require.NoError(t, err)

	requireMatches(t, t32.Get, m)
	requireMatches(t, func(c rune) uint32 { return uint32(t16.Get(c)) }, m)
	for cu := range 0x400 {
		require.Equal(t, m.units[cu], t32.GetFromU16SingleLead(uint16(0xd800+cu)))
	}
	require.Equal(t, m.ranges(), collect(t, t32.Ranges()))
	require.Equal(t, collect(t, w.Ranges()), collect(t, t32.Ranges()))
}

func TestRangesMapped(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetRange(0x100, 0x1ff, 2, true))
	require.NoError(t, w.SetRange(0x200, 0x2ff, 3, true))
	tr, err := Freeze32(w)
	require.NoError(t, err)

	ranges := collect(t, tr.RangesMapped(func(v uint32) uint32 { return v >> 1 }))
	require.Equal(t, []Range[uint32]{
		{Start: 0, End: 0xff, Value: 0},
		{Start: 0x100, End: 0x2ff, Value: 1},
		{Start: 0x300, End: 0x10ffff, Value: 0},
		{Start: 0xd800, End: 0xdbff, Value: 0, LeadSurrogate: true},
	}, ranges)

	// stopping early
	n := 0
	for range tr.Ranges() {
		n++
		if n == 2 {
			break
		}
	}
	require.Equal(t, 2, n)
}

func TestEqual(t *testing.T) {
	build := func(v uint32) *Trie[uint32] {
		w := New(0, testErrorValue)
		require.NoError(t, w.SetRange(0x3000, 0x30ff, v, true))
		tr, err := Freeze32(w)
		require.NoError(t, err)
		return tr
	}
	require.True(t, build(1).Equal(build(1)))
	require.False(t, build(1).Equal(build(2)))
	require.False(t, build(1).Equal(nil))

	other := New(0, testErrorValue+1)
	require.NoError(t, other.SetRange(0x3000, 0x30ff, 1, true))
	tr, err := Freeze32(other)
	require.NoError(t, err)
	require.False(t, build(1).Equal(tr))
}

func TestGetFromUTF8(t *testing.T) {
	w := New(1, testErrorValue)
	values := map[rune]uint32{'A': 2, 0xe9: 3, 0x7ff: 4, 0x800: 5, 0x4e00: 6, 0xffff: 7, 0x1f600: 8, 0x10ffff: 9}
	for c, v := range values {
		require.NoError(t, w.Set(c, v))
	}
	tr, err := Freeze16(w)
	require.NoError(t, err)

	for c, v := range values {
		b := utf8.AppendRune(nil, c)
		got, n := tr.GetFromUTF8(append(b, 'x'))
		require.Equal(t, uint16(v), got, "code point %#x", c)
		require.Equal(t, len(b), n)
	}
	got, n := tr.GetFromUTF8([]byte("z"))
	require.Equal(t, uint16(1), got)
	require.Equal(t, 1, n)

	for _, bad := range [][]byte{
		{0xff}, {0x80}, {0xc0, 0xaf}, {0xc3}, {0xe0, 0x80, 0x80}, {0xed, 0xa0, 0x80}, {0xf4, 0x90, 0x80, 0x80}, {0xe4, 0xb8},
	} {
		got, n := tr.GetFromUTF8(bad)
		require.Equal(t, uint16(testErrorValue), got, "% x", bad)
		require.Equal(t, 1, n, "% x", bad)
	}

	got, n = tr.GetFromUTF8(nil)
	require.Equal(t, uint16(testErrorValue), got)
	require.Zero(t, n)
}

func TestU16Next(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.Set('a', 1))
	require.NoError(t, w.Set(0x1f600, 2))
	require.NoError(t, w.Set(0xd83d, 3))
	require.NoError(t, w.SetForLeadSurrogateCodeUnit(0xd83d, 4))
	require.NoError(t, w.Set(0xdc00, 5))
	tr, err := Freeze32(w)
	require.NoError(t, err)

	s := []uint16{'a', 0xd83d, 0xde00, 0xd83d, 'a', 0xdc00, 0xd83d}
	type step struct {
		c rune
		v uint32
	}
	var steps []step
	for i := 0; i < len(s); {
		var c rune
		var v uint32
		c, v, i = tr.U16Next(s, i)
		steps = append(steps, step{c, v})
	}
	require.Equal(t, []step{
		{'a', 1}, {0x1f600, 2}, {0xd83d, 4}, {'a', 1}, {0xdc00, 5}, {0xd83d, 4},
	}, steps)
}
