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

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_main(_ *testing.T) {
	main()
}

func Test_documentation(t *testing.T) {
	doc := documentation()
	for _, name := range []string{"unitrie_tries_built_total", "unitrie_lookups_total", "unitrie_sink_bytes_written_total"} {
		require.True(t, strings.Contains(doc, name), name)
	}
}
