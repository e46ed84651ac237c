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

type Sink struct {
	Type        string      `yaml:"type" json:"type" enum:"SinkTypeEnum" doc:"one of the following:"`
	Compression string      `yaml:"compression,omitempty" json:"compression,omitempty" enum:"CompressionEnum" doc:"blob compression, one of the following:"`
	File        *SinkFile   `yaml:"file,omitempty" json:"file,omitempty" doc:"file sink parameters"`
	Stdout      *SinkStdout `yaml:"stdout,omitempty" json:"stdout,omitempty" doc:"stdout sink parameters"`
	S3          *SinkS3     `yaml:"s3,omitempty" json:"s3,omitempty" doc:"s3 sink parameters"`
}

type SinkFile struct {
	Directory string `yaml:"directory" json:"directory" doc:"directory into which serialized tries are written"`
	Extension string `yaml:"extension,omitempty" json:"extension,omitempty" doc:"file name extension (default: .trie)"`
}

type SinkStdout struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty" enum:"StdoutFormatEnum" doc:"one of the following:"`
}

type SinkS3 struct {
	Endpoint               string            `yaml:"endpoint" json:"endpoint" doc:"address of s3 server"`
	AccessKeyID            string            `yaml:"accessKeyId" json:"accessKeyId" doc:"username to connect to server"`
	SecretAccessKey        string            `yaml:"secretAccessKey" json:"secretAccessKey" doc:"password to connect to server"`
	Bucket                 string            `yaml:"bucket" json:"bucket" doc:"bucket into which to store objects"`
	Prefix                 string            `yaml:"prefix,omitempty" json:"prefix,omitempty" doc:"object name prefix"`
	Secure                 bool              `yaml:"secure,omitempty" json:"secure,omitempty" doc:"use https"`
	ObjectHeaderParameters map[string]string `yaml:"objectHeaderParameters,omitempty" json:"objectHeaderParameters,omitempty" doc:"user metadata added to each object (key/value pairs)"`
}

type SinkTypeEnum struct {
	File   string `yaml:"file" json:"file" doc:"write each trie to a file in a directory"`
	Stdout string `yaml:"stdout" json:"stdout" doc:"print each trie to standard output"`
	S3     string `yaml:"s3" json:"s3" doc:"upload each trie to an s3 bucket"`
}

func SinkTypeName(operation string) string {
	return GetEnumName(SinkTypeEnum{}, operation)
}

type CompressionEnum struct {
	None   string `yaml:"none" json:"none" doc:"raw serialized bytes"`
	Snappy string `yaml:"snappy" json:"snappy" doc:"snappy block encoding, name suffixed with .sz"`
}

func CompressionName(operation string) string {
	return GetEnumName(CompressionEnum{}, operation)
}

type StdoutFormatEnum struct {
	Summary string `yaml:"summary" json:"summary" doc:"one line per trie with name and size"`
	Hex     string `yaml:"hex" json:"hex" doc:"hex dump of the serialized bytes"`
}

func StdoutFormatName(operation string) string {
	return GetEnumName(StdoutFormatEnum{}, operation)
}
