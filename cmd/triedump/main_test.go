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

package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/unitrie/pkg/utrie"
	"github.com/stretchr/testify/require"
)

func TestTheMain(t *testing.T) {
	if os.Getenv("BE_CRASHER") == "1" {
		main()
		return
	}
	cmd := exec.Command(os.Args[0], "-test.run=TestTheMain")
	cmd.Env = append(os.Environ(), "BE_CRASHER=1")
	err := cmd.Run()
	var castErr *exec.ExitError
	if errors.As(err, &castErr) && !castErr.Success() {
		return
	}
	t.Fatalf("process ran with err %v, want exit status 1", err)
}

func writeTrie(t *testing.T) string {
	w := utrie.New(0, 0xbad)
	require.NoError(t, w.SetRange('0', '9', 1, true))
	require.NoError(t, w.SetForLeadSurrogateCodeUnit(0xd800, 2))
	trie, err := utrie.Freeze16(w)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "digits.trie")
	require.NoError(t, os.WriteFile(path, trie.Serialize(), 0644))
	return path
}

func Test_dumpText(t *testing.T) {
	path := writeTrie(t)
	out := new(bytes.Buffer)
	require.NoError(t, dump(out, path, "text", nil))
	require.Contains(t, out.String(), "digits: 16-bit")
	require.Contains(t, out.String(), "initial 0x0, error 0xbad")
	require.Contains(t, out.String(), "U+0030..U+0039 0x1\n")
	require.Contains(t, out.String(), "U+D800..U+D800 0x2 (lead surrogate code units)\n")

	out.Reset()
	require.NoError(t, dump(out, path, "text", []string{"U+0035", "65"}))
	require.Contains(t, out.String(), "U+0035 0x1\n")
	require.Contains(t, out.String(), "U+0041 0x0\n")
	require.NotContains(t, out.String(), "U+0030..")
}

func Test_dumpJSON(t *testing.T) {
	path := writeTrie(t)
	out := new(bytes.Buffer)
	require.NoError(t, dump(out, path, "json", []string{"0x39"}))
	var res jsonDump
	require.NoError(t, jsoniter.Unmarshal(out.Bytes(), &res))
	require.Equal(t, "digits", res.Info.Name)
	require.Len(t, res.Lookups, 1)
	require.Equal(t, uint32(1), res.Lookups[0].Value)
	require.Empty(t, res.Ranges)
}

func Test_dumpErrors(t *testing.T) {
	path := writeTrie(t)
	require.Error(t, dump(new(bytes.Buffer), path, "yaml", nil))
	require.Error(t, dump(new(bytes.Buffer), path, "text", []string{"nope"}))
	require.Error(t, dump(new(bytes.Buffer), filepath.Join(t.TempDir(), "missing.trie"), "text", nil))
}
