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

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned by mutators for code points outside
	// 0..0x10FFFF, reversed ranges and non-lead code units.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTooLarge is returned when the compacted data does not fit the
	// fixed-width length fields of the serialized form.
	ErrTooLarge = errors.New("trie data is too large")

	// ErrMalformed is returned when serialized input cannot be parsed.
	ErrMalformed = errors.New("malformed serialized trie")

	// ErrWidthMismatch is returned when serialized input holds values of
	// another width than the requested one.
	ErrWidthMismatch = errors.New("serialized trie has a different value width")
)
