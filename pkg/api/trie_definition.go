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

type TrieDefinition struct {
	Description    string           `yaml:"description" json:"description" doc:"free text describing the trie"`
	Labels         []string         `yaml:"labels,omitempty" json:"labels,omitempty" doc:"labels used to skip definitions"`
	Width          string           `yaml:"width,omitempty" json:"width,omitempty" enum:"ValueWidthEnum" doc:"width of stored values (default: 32):"`
	InitialValue   string           `yaml:"initialValue,omitempty" json:"initialValue,omitempty" doc:"value of code points not covered by any range (number or expression, default 0)"`
	ErrorValue     string           `yaml:"errorValue,omitempty" json:"errorValue,omitempty" doc:"value returned for out-of-range lookups (number or expression, default 0)"`
	Constants      map[string]int64 `yaml:"constants,omitempty" json:"constants,omitempty" doc:"named numbers usable in value expressions"`
	Sources        []SourceDef      `yaml:"sources,omitempty" json:"sources,omitempty" doc:"Unicode tables applied first, in order"`
	Ranges         []RangeDef       `yaml:"ranges,omitempty" json:"ranges,omitempty" doc:"code point ranges applied after sources, in order"`
	LeadSurrogates []RangeDef       `yaml:"leadSurrogates,omitempty" json:"leadSurrogates,omitempty" doc:"values for lone lead surrogate code units D800..DBFF"`
}

type RangeDef struct {
	Range     string `yaml:"range" json:"range" mapstructure:"range" doc:"hex code point or range, e.g. 0041 or 0041..005A"`
	Value     string `yaml:"value" json:"value" mapstructure:"value" doc:"number or expression over constants, e.g. LETTER | UPPER"`
	Overwrite *bool  `yaml:"overwrite,omitempty" json:"overwrite,omitempty" mapstructure:"overwrite" doc:"replace values set earlier (default: true)"`
}

// OverwriteOrDefault returns Overwrite, true when unset.
func (r *RangeDef) OverwriteOrDefault() bool {
	return r.Overwrite == nil || *r.Overwrite
}

type SourceDef struct {
	Type      string `yaml:"type" json:"type" mapstructure:"type" enum:"SourceTypeEnum" doc:"one of the following:"`
	Name      string `yaml:"name" json:"name" mapstructure:"name" doc:"table name, e.g. Lu, Greek or White_Space"`
	Value     string `yaml:"value" json:"value" mapstructure:"value" doc:"number or expression over constants"`
	Overwrite *bool  `yaml:"overwrite,omitempty" json:"overwrite,omitempty" mapstructure:"overwrite" doc:"replace values set earlier (default: true)"`
}

// OverwriteOrDefault returns Overwrite, true when unset.
func (s *SourceDef) OverwriteOrDefault() bool {
	return s.Overwrite == nil || *s.Overwrite
}

type ValueWidthEnum struct {
	Bits16 string `yaml:"16" json:"16" doc:"16-bit values, data shares the index array"`
	Bits32 string `yaml:"32" json:"32" doc:"32-bit values in a separate data array"`
}

func ValueWidthName(width string) string {
	return GetEnumName(ValueWidthEnum{}, width)
}

type SourceTypeEnum struct {
	Category string `yaml:"category" json:"category" doc:"general category table, e.g. Lu or L"`
	Script   string `yaml:"script" json:"script" doc:"script table, e.g. Latin"`
	Property string `yaml:"property" json:"property" doc:"property table, e.g. White_Space"`
}

func SourceTypeName(operation string) string {
	return GetEnumName(SourceTypeEnum{}, operation)
}
