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

package subframes

import (
	"github.com/pkg/errors"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/tables"
)

// Map replaces every sub-frame with fn's result and returns the new
// collection. An error from fn aborts the whole map.
func (sf *SubFrames) Map(fn func(*tables.Table) (*tables.Table, error)) (*SubFrames, error) {
	if fn == nil {
		return nil, errs.InvalidArgument("map: transformation is nil")
	}
	return sf.FilterMap(func(t *tables.Table) (*tables.Table, bool, error) {
		out, err := fn(t)
		if err == nil && out == nil {
			err = errs.InvalidArgument("map: not a Table: nil")
		}
		return out, true, err
	})
}

// Select keeps the sub-frames fn returns true for, in order.
func (sf *SubFrames) Select(fn func(*tables.Table) bool) (*SubFrames, error) {
	if fn == nil {
		return nil, errs.InvalidArgument("select: predicate is nil")
	}
	return sf.FilterMap(func(t *tables.Table) (*tables.Table, bool, error) {
		return t, fn(t), nil
	})
}

// Reject drops the sub-frames fn returns true for.
func (sf *SubFrames) Reject(fn func(*tables.Table) bool) (*SubFrames, error) {
	if fn == nil {
		return nil, errs.InvalidArgument("reject: predicate is nil")
	}
	return sf.FilterMap(func(t *tables.Table) (*tables.Table, bool, error) {
		return t, !fn(t), nil
	})
}

// FilterMap replaces every sub-frame with fn's result, dropping those for
// which fn reports false or returns no table. When every kept sub-frame is
// passed through unchanged the result keeps the base table of sf.
func (sf *SubFrames) FilterMap(fn func(*tables.Table) (*tables.Table, bool, error)) (*SubFrames, error) {
	if fn == nil {
		return nil, errs.InvalidArgument("filter_map: transformation is nil")
	}
	out := make([]*tables.Table, 0, sf.Size())
	unchanged := true
	for i, t := range sf.All() {
		next, keep, err := fn(t)
		if err != nil {
			return nil, errors.Wrapf(err, "sub-frame %d", i)
		}
		if keep && next != nil {
			out = append(out, next)
			unchanged = unchanged && next == t
		}
	}
	if unchanged {
		return byTables(sf.base, out...)
	}
	return ByTables(out...)
}

// Assign adds or replaces the columns fn computes in every sub-frame.
func (sf *SubFrames) Assign(fn func(*tables.Table) ([]*columns.Column, error)) (*SubFrames, error) {
	if fn == nil {
		return nil, errs.InvalidArgument("assign: transformation is nil")
	}
	return sf.Map(func(t *tables.Table) (*tables.Table, error) {
		cols, err := fn(t)
		if err != nil {
			return nil, err
		}
		return t.Assign(cols...)
	})
}
