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

package config

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/unitrie/pkg/api"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// Options are the settings of the lookup server.
type Options struct {
	TrieFolder string
	Server     Server
	Health     Health
	Profile    Profile
	Metrics    Metrics
}

type Server struct {
	Address string
	Port    int
}

type Health struct {
	Address string
	Port    string
}

type Profile struct {
	Port int
}

type Metrics struct {
	// TextfilePath, when set, receives a metrics snapshot at shutdown.
	TextfilePath string
}

// JsonUnmarshalStrict is json.Unmarshal rejecting unknown fields.
func JsonUnmarshalStrict(data []byte, v interface{}) error {
	return strictJSON.Unmarshal(data, v)
}

// ParseSinks creates the sink list from its json form, as given on the
// command line or flattened from the config file.
func ParseSinks(in string) ([]api.Sink, error) {
	logrus.Debugf("sinks = %v ", in)
	if in == "" {
		return nil, nil
	}
	var sinks []api.Sink
	if err := JsonUnmarshalStrict([]byte(in), &sinks); err != nil {
		return nil, errors.Wrap(err, "parsing sinks")
	}
	for i := range sinks {
		s := &sinks[i]
		if !api.IsValidEnumName(api.SinkTypeEnum{}, s.Type) {
			return nil, errors.Errorf("sink %d: unknown type %q", i, s.Type)
		}
		if s.Compression != "" && !api.IsValidEnumName(api.CompressionEnum{}, s.Compression) {
			return nil, errors.Errorf("sink %d: unknown compression %q", i, s.Compression)
		}
	}
	return sinks, nil
}
