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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/unitrie/pkg/server"
	"github.com/netobserv/unitrie/pkg/sink"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	format    string
	codePoint []string
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:   "triedump <file>",
	Short: "Print the header, ranges and lookups of a serialized trie",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return dump(os.Stdout, args[0], format, codePoint)
	},
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true})
}

func initFlags() {
	cobra.OnInitialize(initLogger)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "output format: text or json")
	rootCmd.PersistentFlags().StringSliceVar(&codePoint, "lookup", nil, "code points to look up (U+0041, 0x41 or 65); ranges are printed when empty")
}

type jsonDump struct {
	Info    server.TrieInfo       `json:"info"`
	Ranges  []server.RangeEntry   `json:"ranges,omitempty"`
	Lookups []server.LookupResult `json:"lookups,omitempty"`
}

func load(path string) (server.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := sink.Decode(filepath.Base(path), raw)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".sz"), sink.DefaultExtension)
	return server.NewTable(name, data)
}

func dump(out io.Writer, path, format string, codePoints []string) error {
	table, err := load(path)
	if err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}
	res := jsonDump{Info: table.Info()}
	for _, s := range codePoints {
		c, err := server.ParseCodePoint(s)
		if err != nil {
			return err
		}
		res.Lookups = append(res.Lookups, server.LookupResult{Trie: res.Info.Name, CodePoint: fmt.Sprintf("U+%04X", c), Value: table.Lookup(c)})
	}
	if len(codePoints) == 0 {
		res.Ranges = table.Ranges()
	}

	switch format {
	case "json":
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", b)
		return err
	case "text":
		info := res.Info
		fmt.Fprintf(out, "%s: %s-bit, %d bytes, index %d, data %d\n", info.Name, info.Width, info.Bytes, info.IndexLength, info.DataLength)
		fmt.Fprintf(out, "initial %#x, error %#x, high start %s, high value %#x\n", info.InitialValue, info.ErrorValue, info.HighStart, info.HighValue)
		for _, r := range res.Ranges {
			lead := ""
			if r.LeadSurrogate {
				lead = " (lead surrogate code units)"
			}
			fmt.Fprintf(out, "%s..%s %#x%s\n", r.Start, r.End, r.Value, lead)
		}
		for _, l := range res.Lookups {
			fmt.Fprintf(out, "%s %#x\n", l.CodePoint, l.Value)
		}
		return nil
	}
	return errors.Errorf("unknown format %q", format)
}

func main() {
	// Initialize flags (command line parameters)
	initFlags()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
