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
	"testing"

	"github.com/netobserv/unitrie/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestJsonUnmarshalStrict(t *testing.T) {
	type Message struct {
		Foo int    `json:"F"`
		Bar string `json:"B"`
	}
	msg := `{"F":1, "B":"bbb"}`
	var actualMsg Message
	expectedMsg := Message{Foo: 1, Bar: "bbb"}
	err := JsonUnmarshalStrict([]byte(msg), &actualMsg)
	require.NoError(t, err)
	require.Equal(t, expectedMsg, actualMsg)

	msg = `{"F":1, "B":"bbb", "NewField":0}`
	err = JsonUnmarshalStrict([]byte(msg), &actualMsg)
	require.Error(t, err)
}

func TestParseSinks(t *testing.T) {
	sinks, err := ParseSinks(`[{"type":"file","file":{"directory":"/tmp/tries"}},{"type":"s3","compression":"snappy","s3":{"endpoint":"1.2.3.4:9000","bucket":"tries"}}]`)
	require.NoError(t, err)
	require.Equal(t, []api.Sink{
		{Type: "file", File: &api.SinkFile{Directory: "/tmp/tries"}},
		{Type: "s3", Compression: "snappy", S3: &api.SinkS3{Endpoint: "1.2.3.4:9000", Bucket: "tries"}},
	}, sinks)

	sinks, err = ParseSinks("")
	require.NoError(t, err)
	require.Empty(t, sinks)

	_, err = ParseSinks(`[{"type":"kafka"}]`)
	require.ErrorContains(t, err, "unknown type")

	_, err = ParseSinks(`[{"type":"file","compression":"gzip"}]`)
	require.ErrorContains(t, err, "unknown compression")

	_, err = ParseSinks(`[{"type":"file","unknown":1}]`)
	require.Error(t, err)
}
