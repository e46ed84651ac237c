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

package triegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/unitrie/pkg/api"
	"github.com/netobserv/unitrie/pkg/operational"
	"github.com/netobserv/unitrie/pkg/sink"
	"github.com/netobserv/unitrie/pkg/utrie"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	maxCodePoint = 0x10ffff
	leadMin      = 0xd800
	leadMax      = 0xdbff
)

var (
	triesBuilt = operational.NewCounterVec(prometheus.CounterOpts{
		Name: operational.MetricsPrefix + "tries_built_total",
		Help: "Number of tries generated, by value width",
	}, []string{"width"})
	buildErrors = operational.NewCounterVec(prometheus.CounterOpts{
		Name: operational.MetricsPrefix + "build_errors_total",
		Help: "Number of definitions that failed, by stage",
	}, []string{"stage"})
	buildDuration = operational.NewHistogramVec(prometheus.HistogramOpts{
		Name:    operational.MetricsPrefix + "build_duration_seconds",
		Help:    "Time spent building, freezing and verifying one trie",
		Buckets: []float64{.001, .01, .1, .5, 1, 5, 10},
	}, []string{"width"})
	trieSize = operational.NewGaugeVec(prometheus.GaugeOpts{
		Name: operational.MetricsPrefix + "trie_serialized_bytes",
		Help: "Serialized size of the last generated trie, by trie name",
	}, []string{"trie"})
)

// Result is a generated trie.
type Result struct {
	Name       string
	Width      utrie.ValueWidth
	Serialized []byte
	Ranges     []utrie.Range[uint32]
}

// TrieGen builds serialized tries from definition files.
type TrieGen struct {
	opts  *Options
	clock clock.Clock
	sinks []sink.Sink
}

func NewTrieGen(opts *Options, clk clock.Clock, sinks []sink.Sink) *TrieGen {
	return &TrieGen{opts: opts, clock: clk, sinks: sinks}
}

// Run generates one trie per definition file found under the source folder.
// Failing definitions are logged and counted; Run returns an error when any
// of them failed.
func (tg *TrieGen) Run(ctx context.Context) error {
	files := getDefinitionFiles(tg.opts.SrcFolder)
	if len(files) == 0 {
		return errors.Errorf("no %s definition files found in %s", definitionExt, tg.opts.SrcFolder)
	}

	failed := 0
	for _, fileName := range files {
		if err := tg.generateFile(ctx, fileName); err != nil {
			if errors.Is(err, errSkipped) {
				continue
			}
			log.Errorf("%s: %v", fileName, err)
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d definitions failed", failed, len(files))
	}
	return nil
}

func (tg *TrieGen) generateFile(ctx context.Context, fileName string) error {
	content, err := os.ReadFile(fileName)
	if err != nil {
		buildErrors.WithLabelValues("parse").Inc()
		return err
	}
	name := strings.TrimSuffix(filepath.Base(fileName), definitionExt)
	def, err := tg.ParseDefinition(name, content)
	if err != nil {
		if !errors.Is(err, errSkipped) {
			buildErrors.WithLabelValues("parse").Inc()
		}
		return err
	}
	def.FileName = fileName

	result, err := tg.Generate(def)
	if err != nil {
		return err
	}

	if tg.opts.DumpRanges != "" {
		if err := dumpRanges(tg.opts.DumpRanges, result); err != nil {
			buildErrors.WithLabelValues("dump").Inc()
			return err
		}
	}

	blob := &sink.Blob{Name: result.Name, Width: result.Width, Data: result.Serialized}
	for _, s := range tg.sinks {
		if err := s.Write(ctx, blob); err != nil {
			buildErrors.WithLabelValues("sink").Inc()
			return err
		}
	}
	return nil
}

// Generate builds, freezes and serializes the trie of one definition.
func (tg *TrieGen) Generate(def *Definition) (*Result, error) {
	start := tg.clock.Now()

	widthName := def.Width
	if tg.opts.Width != "" {
		widthName = tg.opts.Width
	}
	width, err := utrie.ParseValueWidth(widthName)
	if err != nil {
		buildErrors.WithLabelValues("build").Inc()
		return nil, err
	}

	w, err := Build(def)
	if err != nil {
		buildErrors.WithLabelValues("build").Inc()
		return nil, errors.Wrapf(err, "building %s", def.Name)
	}

	result := &Result{Name: def.Name, Width: width}
	switch width {
	case utrie.Bits16:
		err = checkFits16(w)
		if err == nil {
			result.Serialized, result.Ranges, err = freeze[uint16](w, tg.opts.Verify)
		}
	default:
		result.Serialized, result.Ranges, err = freeze[uint32](w, tg.opts.Verify)
	}
	if err != nil {
		buildErrors.WithLabelValues("freeze").Inc()
		return nil, errors.Wrapf(err, "freezing %s", def.Name)
	}

	buildDuration.WithLabelValues(width.String()).Observe(tg.clock.Since(start).Seconds())
	triesBuilt.WithLabelValues(width.String()).Inc()
	trieSize.WithLabelValues(def.Name).Set(float64(len(result.Serialized)))
	log.Infof("generated %s: %s-bit, %d ranges, %d bytes", def.Name, width, len(result.Ranges), len(result.Serialized))
	return result, nil
}

// Build fills a writable trie from a definition: sources first, then ranges
// in file order, then lead surrogate code units.
func Build(def *Definition) (*utrie.Writable, error) {
	ev := newEvaluator(def.Constants)
	initialValue, err := ev.valueOr(def.InitialValue, 0)
	if err != nil {
		return nil, errors.Wrap(err, "initialValue")
	}
	errorValue, err := ev.valueOr(def.ErrorValue, 0)
	if err != nil {
		return nil, errors.Wrap(err, "errorValue")
	}
	w := utrie.New(initialValue, errorValue)

	for _, src := range def.Sources {
		table, err := sourceTable(src)
		if err != nil {
			return nil, err
		}
		value, err := ev.value(src.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "source %s", src.Name)
		}
		if err := applyTable(w, table, value, src.OverwriteOrDefault()); err != nil {
			return nil, errors.Wrapf(err, "source %s", src.Name)
		}
	}

	for _, rd := range def.Ranges {
		start, end, value, err := resolveRange(ev, rd)
		if err != nil {
			return nil, err
		}
		if err := w.SetRange(start, end, value, rd.OverwriteOrDefault()); err != nil {
			return nil, errors.Wrapf(err, "range %s", rd.Range)
		}
	}

	for _, rd := range def.LeadSurrogates {
		start, end, value, err := resolveRange(ev, rd)
		if err != nil {
			return nil, err
		}
		r := utrie.Range[uint32]{Start: start, End: end, Value: value, LeadSurrogate: true}
		if err := w.SetRangeFrom(r, rd.OverwriteOrDefault()); err != nil {
			return nil, errors.Wrapf(err, "lead surrogates %s", rd.Range)
		}
	}
	return w, nil
}

func resolveRange(ev *evaluator, rd api.RangeDef) (rune, rune, uint32, error) {
	start, end, err := parseCodePointRange(rd.Range)
	if err != nil {
		return 0, 0, 0, err
	}
	value, err := ev.value(rd.Value)
	if err != nil {
		return 0, 0, 0, errors.Wrapf(err, "range %s", rd.Range)
	}
	return start, end, value, nil
}

func checkFits16(w *utrie.Writable) error {
	if w.InitialValue() > 0xffff || w.ErrorValue() > 0xffff {
		return errors.Errorf("initial or error value does not fit in 16 bits")
	}
	for r := range w.Ranges() {
		if r.Value > 0xffff {
			return errors.Errorf("value %d of %s does not fit in 16 bits", r.Value, r)
		}
	}
	return nil
}

func freeze[T utrie.Value](w *utrie.Writable, verify bool) ([]byte, []utrie.Range[uint32], error) {
	t, err := utrie.Freeze[T](w)
	if err != nil {
		return nil, nil, err
	}
	serialized := t.Serialize()
	if verify {
		if err := verifyTrie(w, t, serialized); err != nil {
			return nil, nil, err
		}
	}
	var ranges []utrie.Range[uint32]
	for r := range t.Ranges() {
		ranges = append(ranges, utrie.Range[uint32]{Start: r.Start, End: r.End, Value: uint32(r.Value), LeadSurrogate: r.LeadSurrogate})
	}
	return serialized, ranges, nil
}

// verifyTrie checks every code point and lead surrogate code unit of the
// frozen trie against the writable one, and the serialized form against
// the frozen trie.
func verifyTrie[T utrie.Value](w *utrie.Writable, t *utrie.Trie[T], serialized []byte) error {
	for c := rune(0); c <= maxCodePoint; c++ {
		if got, want := t.Get(c), T(w.Get(c)); got != want {
			return errors.Errorf("U+%04X: frozen value %d, expected %d", c, got, want)
		}
	}
	for cu := uint16(leadMin); cu <= leadMax; cu++ {
		if got, want := t.GetFromU16SingleLead(cu), T(w.GetFromU16SingleLead(cu)); got != want {
			return errors.Errorf("lead surrogate %04X: frozen value %d, expected %d", cu, got, want)
		}
	}
	back, _, err := utrie.CreateFromSerialized[T](serialized)
	if err != nil {
		return errors.Wrap(err, "reading back serialized trie")
	}
	if !back.Equal(t) {
		return errors.New("serialized trie differs from frozen trie")
	}
	return nil
}

type rangeJSON struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	Value         uint32 `json:"value"`
	LeadSurrogate bool   `json:"leadSurrogate,omitempty"`
}

func dumpRanges(folder string, result *Result) error {
	out := make([]rangeJSON, 0, len(result.Ranges))
	for _, r := range result.Ranges {
		out = append(out, rangeJSON{
			Start:         formatCodePoint(r.Start),
			End:           formatCodePoint(r.End),
			Value:         r.Value,
			LeadSurrogate: r.LeadSurrogate,
		})
	}
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", folder)
	}
	path := filepath.Join(folder, result.Name+".ranges.json")
	return errors.Wrapf(os.WriteFile(path, b, 0o644), "writing %s", path)
}

func formatCodePoint(c rune) string {
	return fmt.Sprintf("U+%04X", c)
}
