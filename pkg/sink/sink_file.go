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
	"path/filepath"

	"github.com/netobserv/unitrie/pkg/api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultExtension is the file name extension of serialized tries.
const DefaultExtension = ".trie"

type sinkFile struct {
	directory string
	extension string
}

func (s *sinkFile) Write(_ context.Context, blob *Blob) error {
	path := filepath.Join(s.directory, blob.FileName(s.extension))
	log.Debugf("sinkFile: writing %d bytes to %s", len(blob.Data), path)
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// NewSinkFile creates a sink writing one file per trie into a directory,
// creating the directory if needed.
func NewSinkFile(params *api.SinkFile) (Sink, error) {
	if params == nil || params.Directory == "" {
		return nil, errors.New("file sink: directory not specified")
	}
	if err := os.MkdirAll(params.Directory, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", params.Directory)
	}
	ext := params.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return &sinkFile{directory: params.Directory, extension: ext}, nil
}
