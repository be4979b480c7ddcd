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

package query

import (
	"strings"

	"github.com/google/subframes/core/aggregates"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/subframes"
)

// ParseAggregation parses an aggregation expression. Two forms are accepted:
//
//	x=sum,y=mean          one output per column=function pair
//	[x,y]*[count,sum]     every function applied to every column
//
// Unknown function names are rejected here; whether a function applies to a
// column's type is checked later, by Aggregate.
func ParseAggregation(expr string) (subframes.Aggregation, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errs.InvalidArgument("empty aggregation")
	}
	if strings.HasPrefix(expr, "[") {
		return parseCrossProduct(expr)
	}
	return parseMapping(expr)
}

func parseMapping(expr string) (subframes.Mapping, error) {
	parts := strings.Split(expr, ",")
	m := make(subframes.Mapping, 0, len(parts))
	for _, part := range parts {
		column, fn, ok := strings.Cut(part, "=")
		column, fn = strings.TrimSpace(column), strings.TrimSpace(fn)
		if !ok || column == "" || fn == "" {
			return nil, errs.InvalidArgument("invalid aggregation %q: expected column=function", part)
		}
		if !aggregates.IsAggregate(fn) {
			return nil, unknownFunction(fn)
		}
		m = append(m, subframes.Pair{Column: column, Function: fn})
	}
	return m, nil
}

func parseCrossProduct(expr string) (subframes.CrossProduct, error) {
	left, right, ok := strings.Cut(expr, "*")
	if !ok {
		return subframes.CrossProduct{}, errs.InvalidArgument("invalid aggregation %q: expected [columns]*[functions]", expr)
	}
	cols, err := parseList(left)
	if err != nil {
		return subframes.CrossProduct{}, err
	}
	fns, err := parseList(right)
	if err != nil {
		return subframes.CrossProduct{}, err
	}
	for _, fn := range fns {
		if !aggregates.IsAggregate(fn) {
			return subframes.CrossProduct{}, unknownFunction(fn)
		}
	}
	return subframes.CrossProduct{Columns: cols, Functions: fns}, nil
}

func unknownFunction(name string) error {
	return errs.InvalidArgument("unknown aggregate function %q, expected one of %s", name, FunctionNames())
}

// FunctionNames lists the aggregate function names, comma separated.
func FunctionNames() string {
	fns := aggregates.Functions()
	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.String()
	}
	return strings.Join(names, ",")
}

// parseList parses "[a, b]" into its non-empty items.
func parseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errs.InvalidArgument("invalid list %q: expected [a,b,...]", s)
	}
	var items []string
	for _, item := range strings.Split(s[1:len(s)-1], ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, errs.InvalidArgument("invalid list %q: no items", s)
	}
	return items, nil
}

// FormatAggregation renders agg in the form ParseAggregation reads.
func FormatAggregation(agg subframes.Aggregation) string {
	switch a := agg.(type) {
	case subframes.Mapping:
		return a.String()
	case subframes.CrossProduct:
		return a.String()
	}
	return ""
}
