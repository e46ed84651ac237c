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
	"context"
	"os"

	"github.com/golang/snappy"
	"github.com/netobserv/unitrie/pkg/api"
	"github.com/netobserv/unitrie/pkg/operational"
	"github.com/netobserv/unitrie/pkg/utrie"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const snappySuffix = ".sz"

var bytesWritten = operational.NewCounterVec(prometheus.CounterOpts{
	Name: operational.MetricsPrefix + "sink_bytes_written_total",
	Help: "Bytes of serialized tries written, by sink type",
}, []string{"sink"})

// Blob is one serialized trie on its way to a sink.
type Blob struct {
	Name       string
	Width      utrie.ValueWidth
	Data       []byte
	Compressed bool
}

// FileName returns the name under which the blob is stored.
func (b *Blob) FileName(ext string) string {
	name := b.Name + ext
	if b.Compressed {
		name += snappySuffix
	}
	return name
}

// Sink stores serialized tries.
type Sink interface {
	Write(ctx context.Context, blob *Blob) error
}

// NewSink creates the sink described by params, wrapped with compression
// when requested.
func NewSink(params api.Sink) (Sink, error) {
	log.Debugf("NewSink, config = %+v", params)
	var (
		s   Sink
		err error
	)
	switch params.Type {
	case api.SinkTypeName("File"):
		s, err = NewSinkFile(params.File)
	case api.SinkTypeName("Stdout"):
		s, err = NewSinkStdout(params.Stdout, os.Stdout)
	case api.SinkTypeName("S3"):
		s, err = NewSinkS3(params.S3)
	default:
		return nil, errors.Errorf("unknown sink type %q", params.Type)
	}
	if err != nil {
		return nil, err
	}
	s = &meteredSink{kind: params.Type, next: s}
	if params.Compression == api.CompressionName("Snappy") {
		s = &snappySink{next: s}
	}
	return s, nil
}

type meteredSink struct {
	kind string
	next Sink
}

func (m *meteredSink) Write(ctx context.Context, blob *Blob) error {
	if err := m.next.Write(ctx, blob); err != nil {
		return err
	}
	bytesWritten.WithLabelValues(m.kind).Add(float64(len(blob.Data)))
	return nil
}

type snappySink struct {
	next Sink
}

func (s *snappySink) Write(ctx context.Context, blob *Blob) error {
	compressed := *blob
	compressed.Data = snappy.Encode(nil, blob.Data)
	compressed.Compressed = true
	log.Debugf("snappy: %s %d -> %d bytes", blob.Name, len(blob.Data), len(compressed.Data))
	return s.next.Write(ctx, &compressed)
}

// Decode returns the serialized trie of a stored blob, uncompressing it
// when its name carries the snappy suffix.
func Decode(fileName string, data []byte) ([]byte, error) {
	if len(fileName) <= len(snappySuffix) || fileName[len(fileName)-len(snappySuffix):] != snappySuffix {
		return data, nil
	}
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding snappy blob %s", fileName)
	}
	return out, nil
}
