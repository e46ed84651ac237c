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

package operational

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// MetricsPrefix is shared by every metric of the unitrie tools.
const MetricsPrefix = "unitrie_"

type metricDefinition struct {
	Name   string
	Help   string
	Type   string
	Labels []string
}

var metricsOpts []metricDefinition

func addDefinition(name, help, kind string, labels []string) {
	metricsOpts = append(metricsOpts, metricDefinition{
		Name:   name,
		Help:   help,
		Type:   kind,
		Labels: labels,
	})
}

func NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	addDefinition(opts.Name, opts.Help, "counter", nil)
	return promauto.NewCounter(opts)
}

func NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	addDefinition(opts.Name, opts.Help, "counter", labelNames)
	return promauto.NewCounterVec(opts, labelNames)
}

func NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	addDefinition(opts.Name, opts.Help, "gauge", nil)
	return promauto.NewGauge(opts)
}

func NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	addDefinition(opts.Name, opts.Help, "gauge", labelNames)
	return promauto.NewGaugeVec(opts, labelNames)
}

func NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	addDefinition(opts.Name, opts.Help, "histogram", labelNames)
	return promauto.NewHistogramVec(opts, labelNames)
}

func GetDocumentation() string {
	doc := ""
	for _, opts := range metricsOpts {
		labels := strings.Join(opts.Labels, ", ")
		if labels == "" {
			labels = "none"
		}
		doc += fmt.Sprintf(
			`
### %s
| **Name** | %s | 
|:---|:---|
| **Description** | %s | 
| **Type** | %s | 
| **Labels** | %s | 

`,
			opts.Name,
			opts.Name,
			opts.Help,
			opts.Type,
			labels,
		)
	}

	return doc
}

// WriteTextfile writes all registered metrics in the text exposition
// format, for the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}

// Gather returns the registered metric families whose name starts with
// namePrefix, sorted by name.
func Gather(namePrefix string) ([]*dto.MetricFamily, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "gathering metrics")
	}
	var out []*dto.MetricFamily
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), namePrefix) {
			out = append(out, mf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out, nil
}

// Dump writes the metric families starting with namePrefix in the text
// exposition format.
func Dump(w io.Writer, namePrefix string) error {
	families, err := Gather(namePrefix)
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "encoding %s", mf.GetName())
		}
	}
	return nil
}
