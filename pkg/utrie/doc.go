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

// Package utrie builds and reads compact two-stage lookup tables mapping
// Unicode code points to 16- or 32-bit values, in the "Tri2" format.
//
// A Writable is filled with Set, SetRange and SetForLeadSurrogateCodeUnit,
// then frozen into an immutable Trie with Freeze16 or Freeze32. Frozen
// tries serialize to a byte buffer that CreateFromSerialized maps back
// without rebuilding.
//
// Lookups split a code point into an index-1 part (supplementary code
// points only), an index-2 part and a data offset:
//
//	BMP:           data[index[c>>5]<<2 + c&31]
//	supplementary: data[index[index[2112+(c>>11)-32] + (c>>5)&63]<<2 + c&31]
//
// Code points at or above HighStart all map to the high value and skip
// the index. Lead surrogates U+D800..U+DBFF have two values: one for the
// code point, used by Get, and one for the code unit, used by
// GetFromU16SingleLead and UTF-16 iteration over unpaired surrogates.
package utrie
