/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package server serves sub-frame pages for the tables of a data source
// manager.
package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/logging"
	"github.com/google/subframes/core/query"
	"github.com/google/subframes/core/rendering"
	"github.com/google/subframes/core/views"
	"github.com/google/subframes/datasources"
)

// SubFramesPath is where sub-frame pages are served.
const SubFramesPath = "/subframes"

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "subframes_request_duration_seconds",
	Help:    "Time spent building and rendering pages.",
	Buckets: prometheus.DefBuckets,
}, []string{"handler", "code"})

// Server represents the application server with all its dependencies
type Server struct {
	title    string
	manager  *datasources.Manager
	renderer *rendering.Renderer
}

// NewServer creates a new server for the tables of manager
func NewServer(title string, manager *datasources.Manager) (*Server, error) {
	renderer, err := rendering.NewRenderer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create renderer")
	}
	return &Server{
		title:    title,
		manager:  manager,
		renderer: renderer,
	}, nil
}

// HandlerResult describes a request that could not be answered with a page.
type HandlerResult struct {
	StatusCode int
	Message    string
}

// TimingCollector collects timing measurements for the steps of a request
type TimingCollector struct {
	keyvals []interface{}
	start   time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.keyvals = append(tc.keyvals, operation, duration)
}

// Log writes all entries and the total as one debug record
func (tc *TimingCollector) Log(msg string) {
	keyvals := append([]interface{}{"msg", msg}, tc.keyvals...)
	keyvals = append(keyvals, "total", time.Since(tc.start))
	level.Debug(logging.Logger).Log(keyvals...)
}

// HandleSubFramesRequest renders the sub-frames page described by
// requestURL. It returns nil once the page is written.
func (s *Server) HandleSubFramesRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *HandlerResult {
	timing := NewTimingCollector()

	q := query.NewQuery(requestURL)
	if q.Table == "" {
		return &HandlerResult{StatusCode: http.StatusBadRequest, Message: "Table parameter is required"}
	}

	loadStart := time.Now()
	table, err := s.manager.LoadData(q.Table)
	timing.Record("load", time.Since(loadStart))
	if err != nil {
		if errs.IsInvalidArgument(err) {
			return &HandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Table '%s' not found", q.Table)}
		}
		level.Error(logging.Logger).Log("msg", "failed to load table", "table", q.Table, "err", err)
		return &HandlerResult{StatusCode: http.StatusInternalServerError, Message: "Failed to load table"}
	}

	buildStart := time.Now()
	vm := views.BuildPageViewModel(q.Table, table, q)
	timing.Record("build", time.Since(buildStart))

	setHeader("Content-Type", "text/html; charset=utf-8")
	renderStart := time.Now()
	if err := s.renderer.RenderSubFrames(w, vm); err != nil {
		// the response may already be partially written
		level.Error(logging.Logger).Log("msg", "template rendering error", "err", err)
	}
	timing.Record("render", time.Since(renderStart))
	timing.Log("sub-frames request")
	return nil
}

// HandleIndexRequest renders the list of tables.
func (s *Server) HandleIndexRequest(w io.Writer, setHeader func(key, value string)) {
	setHeader("Content-Type", "text/html; charset=utf-8")
	vm := views.BuildIndexViewModel(s.title, SubFramesPath, s.manager.Names())
	if err := s.renderer.RenderIndex(w, vm); err != nil {
		level.Error(logging.Logger).Log("msg", "template rendering error", "err", err)
	}
}

// Handler routes the pages and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc(SubFramesPath, instrument("subframes", func(w http.ResponseWriter, r *http.Request) int {
		if result := s.HandleSubFramesRequest(w, r.URL, w.Header().Set); result != nil {
			http.Error(w, result.Message, result.StatusCode)
			return result.StatusCode
		}
		return http.StatusOK
	}))
	mux.HandleFunc("/{$}", instrument("index", func(w http.ResponseWriter, r *http.Request) int {
		s.HandleIndexRequest(w, w.Header().Set)
		return http.StatusOK
	}))
	return mux
}

func instrument(name string, h func(http.ResponseWriter, *http.Request) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		code := h(w, r)
		requestDuration.WithLabelValues(name, strconv.Itoa(code)).Observe(time.Since(start).Seconds())
	}
}
