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
	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/tables"
)

// Selector specifies the rows of one sub-frame. It is one of IndexList,
// RowMask or a ready-made table (only built internally, see ByTables).
type Selector interface {
	isSelector()
}

// IndexList selects rows by position. Negative positions count from the
// end; repeats and any order are allowed.
type IndexList []int

// RowMask selects the rows where it is true. It must have one entry per row.
type RowMask []bool

// frameSelector is a sub-frame that is already materialized.
type frameSelector struct {
	frame *tables.Table
}

func (IndexList) isSelector()     {}
func (RowMask) isSelector()       {}
func (frameSelector) isSelector() {}

// SelectorOf converts an index-like or mask-like value into a Selector.
// Integer slices and integer columns become an IndexList, boolean slices
// and boolean columns a RowMask.
func SelectorOf(v any) (Selector, error) {
	switch v := v.(type) {
	case Selector:
		return v, nil
	case []int:
		return IndexList(v), nil
	case []int64:
		return toIndexList(v), nil
	case []int32:
		return toIndexList(v), nil
	case []uint32:
		return toIndexList(v), nil
	case []bool:
		return RowMask(v), nil
	case *columns.Column:
		if v == nil {
			break
		}
		switch {
		case v.IsInteger():
			idx, err := v.Ints()
			if err != nil {
				return nil, err
			}
			return IndexList(idx), nil
		case v.IsBoolean():
			mask, err := v.Bools()
			if err != nil {
				return nil, err
			}
			return RowMask(mask), nil
		}
		return nil, errs.InvalidArgument("illegal type: column %q of type %s", v.Name(), columns.TypeName(v.DataType()))
	}
	return nil, errs.InvalidArgument("illegal type: %T", v)
}

// Selectors converts every value with SelectorOf.
func Selectors(values ...any) ([]Selector, error) {
	out := make([]Selector, len(values))
	for i, v := range values {
		s, err := SelectorOf(v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func toIndexList[T int64 | int32 | uint32](v []T) IndexList {
	out := make(IndexList, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}

// resolved is a selector validated against the base table. Exactly one
// field is set.
type resolved struct {
	indices []int // normalized to [0, rows)
	mask    []bool
	frame   *tables.Table
}

func resolve(base *tables.Table, s Selector) (resolved, error) {
	n := base.NumRows()
	switch s := s.(type) {
	case IndexList:
		indices := make([]int, len(s))
		for k, i := range s {
			if i < -n || i >= n {
				return resolved{}, errs.OutOfRange("index %d out of range for %d rows", i, n)
			}
			if i < 0 {
				i += n
			}
			indices[k] = i
		}
		return resolved{indices: indices}, nil
	case RowMask:
		if len(s) != n {
			return resolved{}, errs.InvalidArgument("mask has %d entries for %d rows", len(s), n)
		}
		return resolved{mask: append([]bool(nil), s...)}, nil
	case frameSelector:
		if s.frame == nil {
			return resolved{}, errs.InvalidArgument("not a Table: nil")
		}
		return resolved{frame: s.frame}, nil
	}
	return resolved{}, errs.InvalidArgument("illegal type: %T", s)
}

// materialize builds the sub-frame. Resolution already checked every
// position and mask, so the table operations cannot fail.
func (r resolved) materialize(base *tables.Table) *tables.Table {
	var (
		t   *tables.Table
		err error
	)
	switch {
	case r.frame != nil:
		return r.frame
	case r.mask != nil:
		t, err = base.Filter(r.mask)
	default:
		t, err = base.Take(r.indices)
	}
	if err != nil {
		panic("subframes: resolved selector rejected by table: " + err.Error())
	}
	return t
}
