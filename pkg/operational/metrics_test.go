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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var (
	testCounter = NewCounterVec(prometheus.CounterOpts{
		Name: MetricsPrefix + "test_events_total",
		Help: "Events seen by the tests",
	}, []string{"kind"})
	testGauge = NewGauge(prometheus.GaugeOpts{
		Name: MetricsPrefix + "test_level",
		Help: "Level set by the tests",
	})
)

func TestGetDocumentation(t *testing.T) {
	doc := GetDocumentation()
	require.Contains(t, doc, "### unitrie_test_events_total")
	require.Contains(t, doc, "| **Type** | counter |")
	require.Contains(t, doc, "| **Labels** | kind |")
	require.Contains(t, doc, "| **Labels** | none |")
}

func TestDump(t *testing.T) {
	testCounter.WithLabelValues("a").Add(3)
	testGauge.Set(7)
	require.Equal(t, float64(3), testutil.ToFloat64(testCounter.WithLabelValues("a")))

	families, err := Gather(MetricsPrefix + "test_")
	require.NoError(t, err)
	require.Len(t, families, 2)
	require.Equal(t, MetricsPrefix+"test_events_total", families[0].GetName())

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, MetricsPrefix+"test_"))
	require.Contains(t, buf.String(), `unitrie_test_events_total{kind="a"} 3`)
	require.Contains(t, buf.String(), "unitrie_test_level 7")
	require.NotContains(t, buf.String(), "go_gc_duration_seconds")
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unitrie.prom")
	testGauge.Set(1)
	require.NoError(t, WriteTextfile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "unitrie_test_level 1")
}
