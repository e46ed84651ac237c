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
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/netobserv/unitrie/pkg/api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type sinkStdout struct {
	format string
	out    io.Writer
}

// Write prints a trie before it is stored
func (s *sinkStdout) Write(_ context.Context, blob *Blob) error {
	log.Debugf("entering sinkStdout Write")
	var err error
	if s.format == api.StdoutFormatName("Hex") {
		_, err = fmt.Fprintf(s.out, "%s (%s-bit, %d bytes):\n%s", blob.FileName(DefaultExtension), blob.Width, len(blob.Data), hex.Dump(blob.Data))
	} else {
		_, err = fmt.Fprintf(s.out, "%s: %s %s-bit, %d bytes\n", time.Now().Format(time.StampMilli), blob.FileName(DefaultExtension), blob.Width, len(blob.Data))
	}
	return errors.Wrap(err, "writing to stdout")
}

// NewSinkStdout creates a sink printing to out
func NewSinkStdout(params *api.SinkStdout, out io.Writer) (Sink, error) {
	log.Debugf("entering NewSinkStdout")
	format := api.StdoutFormatName("Summary")
	if params != nil && params.Format != "" {
		if !api.IsValidEnumName(api.StdoutFormatEnum{}, params.Format) {
			return nil, errors.Errorf("stdout sink: unknown format %q", params.Format)
		}
		format = params.Format
	}
	return &sinkStdout{format: format, out: out}, nil
}
