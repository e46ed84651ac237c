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

package server

import (
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/unitrie/pkg/operational"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	lookups = operational.NewCounterVec(prometheus.CounterOpts{
		Name: operational.MetricsPrefix + "lookups_total",
		Help: "Number of lookup requests, by trie",
	}, []string{"trie"})
	requestErrors = operational.NewCounterVec(prometheus.CounterOpts{
		Name: operational.MetricsPrefix + "request_errors_total",
		Help: "Number of failed requests, by HTTP status code",
	}, []string{"code"})
	triesLoaded = operational.NewGauge(prometheus.GaugeOpts{
		Name: operational.MetricsPrefix + "tries_loaded",
		Help: "Number of tries currently served",
	})
	loadErrors = operational.NewCounter(prometheus.CounterOpts{
		Name: operational.MetricsPrefix + "load_errors_total",
		Help: "Number of serialized tries that could not be loaded",
	})
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LookupResult is the response of a single code point lookup.
type LookupResult struct {
	Trie      string `json:"trie"`
	CodePoint string `json:"codePoint"`
	Value     uint32 `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server answers lookups over the tries of a registry.
type Server struct {
	registry *Registry
	mux      *http.ServeMux
}

func NewServer(registry *Registry) *Server {
	s := &Server{registry: registry, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /tries", s.handleTries)
	s.mux.HandleFunc("GET /tries/{name}", s.handleInfo)
	s.mux.HandleFunc("GET /lookup/{name}/{cp}", s.handleLookup)
	s.mux.HandleFunc("GET /text/{name}", s.handleText)
	s.mux.HandleFunc("GET /ranges/{name}", s.handleRanges)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// IsAlive always succeeds once the server is built.
func (s *Server) IsAlive() error {
	return nil
}

// IsReady succeeds once at least one trie is loaded.
func (s *Server) IsReady() error {
	if s.registry.Len() == 0 {
		return errors.New("no trie loaded")
	}
	return nil
}

func (s *Server) handleTries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Infos())
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t.Info())
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	c, err := ParseCodePoint(r.PathValue("cp"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lookups.WithLabelValues(r.PathValue("name")).Inc()
	writeJSON(w, http.StatusOK, LookupResult{
		Trie:      r.PathValue("name"),
		CodePoint: formatCodePoint(c),
		Value:     t.Lookup(c),
	})
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	lookups.WithLabelValues(r.PathValue("name")).Inc()
	entries := t.LookupText([]byte(r.URL.Query().Get("q")))
	if entries == nil {
		entries = []TextEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRanges(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t.Ranges())
}

func (s *Server) table(w http.ResponseWriter, r *http.Request) (Table, bool) {
	name := r.PathValue("name")
	t, ok := s.registry.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("unknown trie %q", name))
	}
	return t, ok
}

// ParseCodePoint reads "U+0041" or "0x41" as hexadecimal and anything else
// as decimal. Values above U+10FFFF are accepted and look up the error value.
func ParseCodePoint(s string) (rune, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "U+"), strings.HasPrefix(s, "u+"):
		s, base = s[2:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 31)
	if err != nil {
		return 0, errors.Errorf("invalid code point %q", s)
	}
	return rune(v), nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshalling response: %v", err)
		code = http.StatusInternalServerError
		b = []byte(`{"error":"internal error"}`)
	}
	if code >= http.StatusBadRequest {
		requestErrors.WithLabelValues(strconv.Itoa(code)).Inc()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}
