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

package triegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/netobserv/unitrie/pkg/api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var (
	definitionExt    = ".yaml"
	definitionHeader = "#unitrie_def"

	errSkipped = errors.New("definition skipped")
)

// Definition is a parsed definition file.
type Definition struct {
	FileName string
	Name     string
	api.TrieDefinition
}

type Definitions []Definition

// DefFile is the raw yaml layout of a definition file. Entries of the
// range lists are either compact strings or maps.
type DefFile struct {
	Description    string           `yaml:"description"`
	Labels         []string         `yaml:"labels"`
	Width          string           `yaml:"width"`
	InitialValue   interface{}      `yaml:"initialValue"`
	ErrorValue     interface{}      `yaml:"errorValue"`
	Constants      map[string]int64 `yaml:"constants"`
	Sources        []interface{}    `yaml:"sources"`
	Ranges         []interface{}    `yaml:"ranges"`
	LeadSurrogates []interface{}    `yaml:"leadSurrogates"`
}

func checkHeader(b []byte) error {
	if len(b) < len(definitionHeader) || string(b[:len(definitionHeader)]) != definitionHeader {
		return errors.Errorf("wrong header, expected %s", definitionHeader)
	}
	return nil
}

func getDefinitionFiles(rootPath string) []string {
	var files []string

	_ = filepath.Walk(rootPath, func(path string, f os.FileInfo, err error) error {
		if f == nil {
			log.Debugf("filepath.Walk err: %v ", err)
			return nil
		}
		if f.Mode().IsRegular() && filepath.Ext(f.Name()) == definitionExt {
			files = append(files, path)
		}
		return nil
	})

	return files
}

// ParseDefinition parses the content of a definition file. name becomes the
// name of the generated trie.
func (tg *TrieGen) ParseDefinition(name string, content []byte) (*Definition, error) {
	if err := checkHeader(content); err != nil {
		return nil, err
	}

	var defFile DefFile
	if err := yaml.Unmarshal(content, &defFile); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", name)
	}

	for _, skipLabel := range tg.opts.SkipWithLabels {
		for _, label := range defFile.Labels {
			if skipLabel == label {
				log.Infof("skipping definition %s due to skip label %s", name, label)
				return nil, errSkipped
			}
		}
	}

	def := &Definition{
		Name: name,
		TrieDefinition: api.TrieDefinition{
			Description:  defFile.Description,
			Labels:       defFile.Labels,
			Width:        defFile.Width,
			InitialValue: scalarString(defFile.InitialValue),
			ErrorValue:   scalarString(defFile.ErrorValue),
			Constants:    defFile.Constants,
		},
	}
	if def.Width != "" && !api.IsValidEnumName(api.ValueWidthEnum{}, def.Width) {
		return nil, errors.Errorf("%s: unknown width %q", name, def.Width)
	}

	var err error
	for i, entry := range defFile.Sources {
		var src api.SourceDef
		if err = decodeEntry(entry, &src); err != nil {
			return nil, errors.Wrapf(err, "%s: source %d", name, i)
		}
		def.Sources = append(def.Sources, src)
	}
	if def.Ranges, err = parseRanges(defFile.Ranges); err != nil {
		return nil, errors.Wrapf(err, "%s: ranges", name)
	}
	if def.LeadSurrogates, err = parseRanges(defFile.LeadSurrogates); err != nil {
		return nil, errors.Wrapf(err, "%s: leadSurrogates", name)
	}
	return def, nil
}

func parseRanges(entries []interface{}) ([]api.RangeDef, error) {
	var out []api.RangeDef
	for i, entry := range entries {
		var rd api.RangeDef
		switch e := entry.(type) {
		case string:
			r, v, found := strings.Cut(e, "=")
			if !found {
				return nil, errors.Errorf("entry %d: %q is not of the form range=value", i, e)
			}
			rd.Range = strings.TrimSpace(r)
			rd.Value = strings.TrimSpace(v)
		case map[interface{}]interface{}:
			// yaml reads unquoted 0041 as an octal number
			if _, ok := e["range"].(string); !ok {
				return nil, errors.Errorf("entry %d: range must be a quoted string", i)
			}
			if err := decodeEntry(e, &rd); err != nil {
				return nil, errors.Wrapf(err, "entry %d", i)
			}
		default:
			return nil, errors.Errorf("entry %d: unexpected %T", i, entry)
		}
		out = append(out, rd)
	}
	return out, nil
}

func decodeEntry(entry interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(entry)
}

func scalarString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// parseCodePointRange reads "0041", "U+0041" or "0041..005A".
func parseCodePointRange(s string) (rune, rune, error) {
	lo, hi, isRange := strings.Cut(s, "..")
	start, err := parseCodePoint(lo)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return start, start, nil
	}
	end, err := parseCodePoint(hi)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseCodePoint(s string) (rune, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "U+"), "u+")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errors.Errorf("invalid code point %q", s)
	}
	return rune(v), nil
}
