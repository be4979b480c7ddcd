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

// Package query holds the state of a sub-frames view as encoded in its URL.
package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/safehtml"

	"github.com/google/subframes/core/subframes"
)

// Query represents the parsed state of a sub-frames view URL
type Query struct {
	// Base path (e.g., "/subframes")
	Path string

	Table          string   // The table being viewed
	GroupedColumns []string // Ordered list of columns to group by
	Agg            string   // Aggregation expression, see ParseAggregation
	Limit          int      // Number of sub-frames to render
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL) *Query {
	state := &Query{
		Path:  u.Path,
		Limit: subframes.DefaultLimit,
	}

	q := u.Query()
	state.Table = q.Get("table")
	state.Agg = strings.TrimSpace(q.Get("agg"))

	if groupedStr := q.Get("grouped"); groupedStr != "" {
		for _, col := range strings.Split(groupedStr, ",") {
			if col = strings.TrimSpace(col); col != "" {
				state.GroupedColumns = append(state.GroupedColumns, col)
			}
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 {
			state.Limit = limit
		}
	}
	return state
}

// Clone creates a deep copy of the Query
func (s *Query) Clone() *Query {
	clone := *s
	clone.GroupedColumns = slices.Clone(s.GroupedColumns)
	return &clone
}

// Aggregation parses the aggregation expression. It returns nil when the
// query has none.
func (s *Query) Aggregation() (subframes.Aggregation, error) {
	if s.Agg == "" {
		return nil, nil
	}
	return ParseAggregation(s.Agg)
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{Path: s.Path}
	q := u.Query()
	if s.Table != "" {
		q.Set("table", s.Table)
	}
	if len(s.GroupedColumns) > 0 {
		q.Set("grouped", strings.Join(s.GroupedColumns, ","))
	}
	if s.Agg != "" {
		q.Set("agg", s.Agg)
	}
	// always included
	q.Set("limit", strconv.Itoa(s.Limit))
	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}

// WithLimit returns a URL with a different frame limit
func (s *Query) WithLimit(limit int) safehtml.URL {
	newState := s.Clone()
	newState.Limit = limit
	return newState.ToSafeURL()
}

// WithAggregation returns a URL with another aggregation expression
func (s *Query) WithAggregation(expr string) safehtml.URL {
	newState := s.Clone()
	newState.Agg = expr
	return newState.ToSafeURL()
}

// WithGroupedColumnToggled returns a URL with the grouped column toggled.
// A grouped column is removed, any other column is appended to the grouping.
func (s *Query) WithGroupedColumnToggled(column string) safehtml.URL {
	newState := s.Clone()
	if i := slices.Index(newState.GroupedColumns, column); i >= 0 {
		newState.GroupedColumns = slices.Delete(newState.GroupedColumns, i, i+1)
	} else {
		newState.GroupedColumns = append(newState.GroupedColumns, column)
	}
	return newState.ToSafeURL()
}

// IsColumnGrouped checks if a column is in the grouped columns list
func (s *Query) IsColumnGrouped(column string) bool {
	return slices.Contains(s.GroupedColumns, column)
}
