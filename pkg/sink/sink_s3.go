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
	"path"
	"sync"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/netobserv/unitrie/pkg/api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const sinkS3Version = "1.0"

type s3Writer interface {
	putObject(ctx context.Context, bucket string, objectName string, data []byte, metadata map[string]string) error
}

type minioWriter struct {
	client     *minio.Client
	bucketOnce sync.Once
}

func (m *minioWriter) putObject(ctx context.Context, bucket string, objectName string, data []byte, metadata map[string]string) error {
	m.bucketOnce.Do(func() {
		found, err := m.client.BucketExists(ctx, bucket)
		if err != nil {
			log.Errorf("Error accessing S3 bucket: %v", err)
			return
		}
		if found {
			log.Infof("Bucket %s found", bucket)
		}
	})
	uploadInfo, err := m.client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream", UserMetadata: metadata})
	log.Debugf("uploadInfo = %v", uploadInfo)
	return err
}

type sinkS3 struct {
	s3Params api.SinkS3
	s3Writer s3Writer
}

// Write uploads one serialized trie as an object named prefix/name.trie
func (s *sinkS3) Write(ctx context.Context, blob *Blob) error {
	objectName := path.Join(s.s3Params.Prefix, blob.FileName(DefaultExtension))
	metadata := make(map[string]string, len(s.s3Params.ObjectHeaderParameters)+2)
	// copy user defined keys from config to object metadata
	for key, value := range s.s3Params.ObjectHeaderParameters {
		metadata[key] = value
	}
	metadata["version"] = sinkS3Version
	metadata["width"] = blob.Width.String()
	log.Debugf("S3 Write: objectName = %s", objectName)
	if err := s.s3Writer.putObject(ctx, s.s3Params.Bucket, objectName, blob.Data, metadata); err != nil {
		return errors.Wrapf(err, "writing %s to object store", objectName)
	}
	return nil
}

// NewSinkS3 creates a sink uploading to an s3 bucket
func NewSinkS3(params *api.SinkS3) (Sink, error) {
	if params == nil || params.Endpoint == "" || params.Bucket == "" {
		return nil, errors.New("s3 sink: endpoint and bucket must be specified")
	}
	log.Debugf("NewSinkS3, endpoint = %s bucket = %s", params.Endpoint, params.Bucket)
	client, err := minio.New(params.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(params.AccessKeyID, params.SecretAccessKey, ""),
		Secure: params.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating S3 client")
	}
	return &sinkS3{
		s3Params: *params,
		s3Writer: &minioWriter{client: client},
	}, nil
}
