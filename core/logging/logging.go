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

// Package logging holds the process-wide logger used by the engine packages.
package logging

import (
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/google/subframes/core/errs"
)

// Logger is used by every engine package. It discards everything until the
// binary installs a real logger with Init.
var Logger = log.NewNopLogger()

// New returns a logfmt logger writing to w that drops records below lvl.
// Accepted levels are debug, info, warn and error.
func New(w io.Writer, lvl string) (log.Logger, error) {
	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info", "":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, errs.InvalidArgument("unknown log level %q", lvl)
	}

	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = level.NewFilter(l, opt)
	return log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

// Init replaces Logger with a logger built by New.
func Init(w io.Writer, lvl string) error {
	l, err := New(w, lvl)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}
