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
	"iter"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

const testErrorValue = 0xbad

func collect[T Value](t *testing.T, seq iter.Seq[Range[T]]) []Range[T] {
	t.Helper()
	var out []Range[T]
	for r := range seq {
		out = append(out, r)
	}
	return out
}

func TestNew_AllInitial(t *testing.T) {
	w := New(7, testErrorValue)
	for _, c := range []rune{0, 0x41, 0x7f, 0x80, 0x7ff, 0x800, 0xd800, 0xdbff, 0xdc00, 0xffff, 0x10000, 0x10ffff} {
		require.Equal(t, uint32(7), w.Get(c), "code point %#x", c)
	}
	require.Equal(t, uint32(7), w.GetFromU16SingleLead(0xd800))
	require.Equal(t, uint32(testErrorValue), w.Get(-1))
	require.Equal(t, uint32(testErrorValue), w.Get(0x110000))

	ranges := collect(t, w.Ranges())
	require.Equal(t, []Range[uint32]{
		{Start: 0, End: 0x10ffff, Value: 7},
		{Start: 0xd800, End: 0xdbff, Value: 7, LeadSurrogate: true},
	}, ranges)
}

func TestSetRange_Scenario(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetRange(0x41, 0x5a, 1, true))
	require.NoError(t, w.Set(0x130, 2))

	require.Equal(t, uint32(0), w.Get(0x40))
	require.Equal(t, uint32(1), w.Get(0x41))
	require.Equal(t, uint32(1), w.Get(0x5a))
	require.Equal(t, uint32(0), w.Get(0x5b))
	require.Equal(t, uint32(2), w.Get(0x130))
	require.Equal(t, uint32(testErrorValue), w.Get(0x110000))

	expected := []Range[uint32]{
		{Start: 0, End: 0x40, Value: 0},
		{Start: 0x41, End: 0x5a, Value: 1},
		{Start: 0x5b, End: 0x12f, Value: 0},
		{Start: 0x130, End: 0x130, Value: 2},
		{Start: 0x131, End: 0x10ffff, Value: 0},
		{Start: 0xd800, End: 0xdbff, Value: 0, LeadSurrogate: true},
	}
	require.Equal(t, expected, collect(t, w.Ranges()))

	w.Compact()
	require.True(t, w.Compacted())
	require.Equal(t, expected, collect(t, w.Ranges()))
	require.Equal(t, uint32(2), w.Get(0x130))
}

func TestSetRange_NoOverwrite(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetRange(0x1000, 0x1fff, 3, true))
	require.NoError(t, w.SetRange(0x800, 0x27ff, 4, false))

	require.Equal(t, uint32(4), w.Get(0x800))
	require.Equal(t, uint32(4), w.Get(0xfff))
	require.Equal(t, uint32(3), w.Get(0x1000))
	require.Equal(t, uint32(3), w.Get(0x1fff))
	require.Equal(t, uint32(4), w.Get(0x2000))
	require.Equal(t, uint32(4), w.Get(0x27ff))
	require.Equal(t, uint32(0), w.Get(0x2800))

	// initial value without overwrite changes nothing
	require.NoError(t, w.SetRange(0, 0x10ffff, 0, false))
	require.Equal(t, uint32(3), w.Get(0x1000))
}

func TestSetRange_OverwriteWithInitial(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetRange(0x10000, 0x3ffff, 9, true))
	require.NoError(t, w.SetRange(0x10010, 0x3ffef, 0, true))
	require.Equal(t, []Range[uint32]{
		{Start: 0, End: 0xffff, Value: 0},
		{Start: 0x10000, End: 0x1000f, Value: 9},
		{Start: 0x10010, End: 0x3ffef, Value: 0},
		{Start: 0x3fff0, End: 0x3ffff, Value: 9},
		{Start: 0x40000, End: 0x10ffff, Value: 0},
		{Start: 0xd800, End: 0xdbff, Value: 0, LeadSurrogate: true},
	}, collect(t, w.Ranges()))
}

func TestInvalidArguments(t *testing.T) {
	w := New(0, testErrorValue)
	require.True(t, errors.Is(w.Set(0x110000, 1), ErrInvalidArgument))
	require.True(t, errors.Is(w.Set(-1, 1), ErrInvalidArgument))
	require.True(t, errors.Is(w.SetRange(0x20, 0x10, 1, true), ErrInvalidArgument))
	require.True(t, errors.Is(w.SetRange(0, 0x110000, 1, true), ErrInvalidArgument))
	require.True(t, errors.Is(w.SetForLeadSurrogateCodeUnit(0xdc00, 1), ErrInvalidArgument))
	require.True(t, errors.Is(w.SetForLeadSurrogateCodeUnit(0x41, 1), ErrInvalidArgument))
	require.True(t, errors.Is(w.SetRangeFrom(Range[uint32]{Start: 0xd800, End: 0xdc00, LeadSurrogate: true}, true), ErrInvalidArgument))

	// nothing changed
	require.Equal(t, uint32(0), w.Get(0x10))
}

func TestSetForLeadSurrogateCodeUnit(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.SetForLeadSurrogateCodeUnit(0xd800, 9))
	require.Equal(t, uint32(9), w.GetFromU16SingleLead(0xd800))
	require.Equal(t, uint32(0), w.Get(0xd800))

	require.NoError(t, w.Set(0xd801, 5))
	require.Equal(t, uint32(5), w.Get(0xd801))
	require.Equal(t, uint32(0), w.GetFromU16SingleLead(0xd801))

	require.Equal(t, []Range[uint32]{
		{Start: 0, End: 0xd800, Value: 0},
		{Start: 0xd801, End: 0xd801, Value: 5},
		{Start: 0xd802, End: 0x10ffff, Value: 0},
		{Start: 0xd800, End: 0xd800, Value: 9, LeadSurrogate: true},
		{Start: 0xd801, End: 0xdbff, Value: 0, LeadSurrogate: true},
	}, collect(t, w.Ranges()))
}

func TestCompact_Reopen(t *testing.T) {
	w := New(1, testErrorValue)
	require.NoError(t, w.SetRange(0x3400, 0x4dbf, 2, true))
	require.NoError(t, w.SetRange(0x20000, 0x2a6df, 2, true))
	require.NoError(t, w.SetForLeadSurrogateCodeUnit(0xdbff, 3))
	w.Compact()
	w.Compact()
	before := collect(t, w.Ranges())

	require.NoError(t, w.Set(0x41, 4))
	require.False(t, w.Compacted())
	require.Equal(t, uint32(4), w.Get(0x41))
	require.Equal(t, uint32(2), w.Get(0x20000))
	require.Equal(t, uint32(2), w.Get(0x2a6df))
	require.Equal(t, uint32(1), w.Get(0x2a6e0))
	require.Equal(t, uint32(3), w.GetFromU16SingleLead(0xdbff))

	require.NoError(t, w.Set(0x41, 1))
	require.Equal(t, before, collect(t, w.Ranges()))
}

func TestClone_Independent(t *testing.T) {
	w := New(0, testErrorValue)
	require.NoError(t, w.Set(0x100, 1))
	c := w.Clone()
	require.NoError(t, c.Set(0x100, 2))
	require.NoError(t, w.Set(0x20000, 3))

	require.Equal(t, uint32(1), w.Get(0x100))
	require.Equal(t, uint32(2), c.Get(0x100))
	require.Equal(t, uint32(0), c.Get(0x20000))
}

// model keeps the expected contents of a trie as plain arrays.
type model struct {
	initial uint32
	cps     []uint32
	units   []uint32
}

func newModel(initial uint32) *model {
	m := &model{initial: initial, cps: make([]uint32, codePointLimit), units: make([]uint32, 0x400)}
	for i := range m.cps {
		m.cps[i] = initial
	}
	for i := range m.units {
		m.units[i] = initial
	}
	return m
}

func (m *model) setRange(start, end rune, v uint32, overwrite bool) {
	for c := start; c <= end; c++ {
		if overwrite || m.cps[c] == m.initial {
			m.cps[c] = v
		}
	}
}

func (m *model) ranges() []Range[uint32] {
	var out []Range[uint32]
	add := func(vals []uint32, base rune, lead bool) {
		start := 0
		for i := 1; i <= len(vals); i++ {
			if i == len(vals) || vals[i] != vals[start] {
				out = append(out, Range[uint32]{Start: base + rune(start), End: base + rune(i-1), Value: vals[start], LeadSurrogate: lead})
				start = i
			}
		}
	}
	add(m.cps, 0, false)
	add(m.units, 0xd800, true)
	return out
}

func randomRange(rnd *rand.Rand) (rune, rune) {
	var start rune
	switch rnd.IntN(5) {
	case 0:
		start = rune(rnd.IntN(0x800))
	case 1:
		start = 0xd000 + rune(rnd.IntN(0x1400))
	case 2:
		start = rune(rnd.IntN(0x10000))
	case 3:
		start = 0x10000 + rune(rnd.IntN(0x30000))
	default:
		start = rune(rnd.IntN(codePointLimit))
	}
	end := start + rune(rnd.IntN(0x3000))
	if rnd.IntN(8) == 0 {
		end = start
	}
	return start, min(end, maxCodePoint)
}

func buildRandom(t *testing.T, seed uint64, ops int, maxValue uint32) (*Writable, *model) {
	t.Helper()
	rnd := rand.New(rand.NewPCG(seed, 0x5eed))
	w := New(0, testErrorValue)
	m := newModel(0)
	for i := range ops {
		switch rnd.IntN(10) {
		case 0:
			cu := 0xd800 + rnd.IntN(0x400)
			v := rnd.Uint32N(maxValue)
			require.NoError(t, w.SetForLeadSurrogateCodeUnit(uint16(cu), v))
			m.units[cu-0xd800] = v
		case 1:
			c := rune(rnd.IntN(codePointLimit))
			v := rnd.Uint32N(maxValue)
			require.NoError(t, w.Set(c, v))
			m.cps[c] = v
		default:
			start, end := randomRange(rnd)
			v := rnd.Uint32N(maxValue)
			overwrite := rnd.IntN(3) != 0
			require.NoError(t, w.SetRange(start, end, v, overwrite))
			m.setRange(start, end, v, overwrite)
		}
		if i%37 == 36 {
			w.Compact()
		}
	}
	return w, m
}

func requireMatches(t *testing.T, get func(rune) uint32, m *model) {
	t.Helper()
	for c := rune(0); c < codePointLimit; c++ {
		if get(c) != m.cps[c] {
			require.Equal(t, m.cps[c], get(c), "code point %#x", c)
		}
	}
}

func TestWritable_RandomAgainstModel(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3} {
		w, m := buildRandom(t, seed, 150, 8)
		requireMatches(t, w.Get, m)
		for cu := range 0x400 {
			require.Equal(t, m.units[cu], w.GetFromU16SingleLead(uint16(0xd800+cu)))
		}
		require.Equal(t, m.ranges(), collect(t, w.Ranges()))

		w.Compact()
		requireMatches(t, w.Get, m)
		require.Equal(t, m.ranges(), collect(t, w.Ranges()))
	}
}

func TestNewFromTrie_RoundTrip(t *testing.T) {
	w, m := buildRandom(t, 4, 80, 5)
	frozen, err := Freeze32(w)
	require.NoError(t, err)

	rebuilt := NewFromTrie(frozen)
	requireMatches(t, rebuilt.Get, m)
	require.Equal(t, m.ranges(), collect(t, rebuilt.Ranges()))

	again, err := Freeze32(rebuilt)
	require.NoError(t, err)
	require.True(t, frozen.Equal(again))
}
