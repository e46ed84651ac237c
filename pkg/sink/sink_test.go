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

package sink

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/golang/snappy"
	"github.com/netobserv/unitrie/pkg/api"
	"github.com/netobserv/unitrie/pkg/utrie"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func testBlob() *Blob {
	return &Blob{Name: "letters", Width: utrie.Bits16, Data: []byte("2irT some trie bytes, repeated repeated repeated")}
}

func TestNewSink_UnknownType(t *testing.T) {
	_, err := NewSink(api.Sink{Type: "kafka"})
	require.ErrorContains(t, err, "unknown sink type")

	_, err = NewSink(api.Sink{Type: "file"})
	require.ErrorContains(t, err, "directory not specified")

	_, err = NewSink(api.Sink{Type: "s3", S3: &api.SinkS3{Endpoint: "1.2.3.4:9000"}})
	require.ErrorContains(t, err, "bucket")

	_, err = NewSink(api.Sink{Type: "stdout", Stdout: &api.SinkStdout{Format: "yaml"}})
	require.ErrorContains(t, err, "unknown format")
}

func TestSinkFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewSink(api.Sink{Type: "file", File: &api.SinkFile{Directory: dir}})
	require.NoError(t, err)

	before := testutil.ToFloat64(bytesWritten.WithLabelValues("file"))
	blob := testBlob()
	require.NoError(t, s.Write(context.Background(), blob))

	content, err := os.ReadFile(filepath.Join(dir, "letters.trie"))
	require.NoError(t, err)
	require.Equal(t, blob.Data, content)
	require.Equal(t, before+float64(len(blob.Data)), testutil.ToFloat64(bytesWritten.WithLabelValues("file")))
}

func TestSinkFile_Snappy(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSink(api.Sink{Type: "file", Compression: "snappy", File: &api.SinkFile{Directory: dir, Extension: ".bin"}})
	require.NoError(t, err)

	blob := testBlob()
	require.NoError(t, s.Write(context.Background(), blob))
	require.False(t, blob.Compressed)

	name := "letters.bin.sz"
	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	decoded, err := snappy.Decode(nil, content)
	require.NoError(t, err)
	require.Equal(t, blob.Data, decoded)

	decoded, err = Decode(name, content)
	require.NoError(t, err)
	require.Equal(t, blob.Data, decoded)

	raw, err := Decode("letters.trie", blob.Data)
	require.NoError(t, err)
	require.Equal(t, blob.Data, raw)

	_, err = Decode(name, []byte("not snappy"))
	require.Error(t, err)
}

func TestSinkStdout(t *testing.T) {
	var out bytes.Buffer
	s, err := NewSinkStdout(nil, &out)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), testBlob()))
	require.Contains(t, out.String(), "letters.trie 16-bit, 48 bytes")

	out.Reset()
	s, err = NewSinkStdout(&api.SinkStdout{Format: "hex"}, &out)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), testBlob()))
	require.Contains(t, out.String(), "letters.trie (16-bit, 48 bytes):")
	require.Contains(t, out.String(), "00000000  32 69 72 54")
}

type fakeS3Writer struct {
	mutex       sync.Mutex
	objects     [][]byte
	objectNames []string
	bucketNames []string
	metadata    []map[string]string
}

func (f *fakeS3Writer) putObject(_ context.Context, bucket string, objectName string, data []byte, metadata map[string]string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.objects = append(f.objects, data)
	f.objectNames = append(f.objectNames, objectName)
	f.bucketNames = append(f.bucketNames, bucket)
	f.metadata = append(f.metadata, metadata)
	return nil
}

func TestSinkS3(t *testing.T) {
	s, err := NewSinkS3(&api.SinkS3{
		Endpoint:               "1.2.3.4:9000",
		Bucket:                 "bucket1",
		AccessKeyID:            "accessKey1",
		SecretAccessKey:        "secretAccessKey1",
		Prefix:                 "unicode/15.0",
		ObjectHeaderParameters: map[string]string{"key1": "val1"},
	})
	require.NoError(t, err)
	sinkS3 := s.(*sinkS3)
	require.Equal(t, "1.2.3.4:9000", sinkS3.s3Params.Endpoint)
	f := &fakeS3Writer{}
	sinkS3.s3Writer = f

	blob := testBlob()
	require.NoError(t, s.Write(context.Background(), blob))

	require.Equal(t, []string{"bucket1"}, f.bucketNames)
	require.Equal(t, []string{"unicode/15.0/letters.trie"}, f.objectNames)
	require.Equal(t, blob.Data, f.objects[0])
	require.Equal(t, map[string]string{"key1": "val1", "version": "1.0", "width": "16"}, f.metadata[0])
}
