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

package api

const TagYaml = "yaml"
const TagDoc = "doc"
const TagEnum = "enum"

// Note: items beginning with doc: "## title" are top level items that get divided into sections inside api.md.

type API struct {
	TrieDefinition TrieDefinition `yaml:"trie" doc:"## Trie definition API\nFollowing is the supported format of a trie definition file:\n"`
	RangeDef       RangeDef       `yaml:"range" doc:"## Range API\nFollowing is the supported format of a range entry (a compact \"0041..005A=1\" string is accepted too):\n"`
	SourceDef      SourceDef      `yaml:"source" doc:"## Source API\nFollowing is the supported format of a Unicode table source:\n"`
	Sink           Sink           `yaml:"sink" doc:"## Sink API\nFollowing is the supported format of an output sink:\n"`
}
