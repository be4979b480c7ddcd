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

package columns

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/google/subframes/core/errs"
)

type valueArray[T any] interface {
	arrow.Array
	Value(int) T
}

type valueBuilder[T any] interface {
	array.Builder
	Append(T)
}

// gather copies src[indices] into b. There is no take kernel in the arrow
// packages we use, so rows are copied through the typed builders.
func gather[T any](src valueArray[T], b valueBuilder[T], indices []int) arrow.Array {
	defer b.Release()
	b.Reserve(len(indices))
	for _, i := range indices {
		if src.IsNull(i) {
			b.AppendNull()
			continue
		}
		b.Append(src.Value(i))
	}
	return b.NewArray()
}

// Take returns the rows at the given positions, in order. Positions must
// already be normalized to [0, Len()); repeats are allowed.
func (c *Column) Take(indices []int) (*Column, error) {
	n := c.Len()
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, errs.OutOfRange("index %d out of bounds (length: %d)", i, n)
		}
	}

	var out arrow.Array
	switch src := c.arr.(type) {
	case *array.Int8:
		out = gather[int8](src, array.NewInt8Builder(mem), indices)
	case *array.Int16:
		out = gather[int16](src, array.NewInt16Builder(mem), indices)
	case *array.Int32:
		out = gather[int32](src, array.NewInt32Builder(mem), indices)
	case *array.Int64:
		out = gather[int64](src, array.NewInt64Builder(mem), indices)
	case *array.Uint8:
		out = gather[uint8](src, array.NewUint8Builder(mem), indices)
	case *array.Uint16:
		out = gather[uint16](src, array.NewUint16Builder(mem), indices)
	case *array.Uint32:
		out = gather[uint32](src, array.NewUint32Builder(mem), indices)
	case *array.Uint64:
		out = gather[uint64](src, array.NewUint64Builder(mem), indices)
	case *array.Float32:
		out = gather[float32](src, array.NewFloat32Builder(mem), indices)
	case *array.Float64:
		out = gather[float64](src, array.NewFloat64Builder(mem), indices)
	case *array.String:
		out = gather[string](src, array.NewStringBuilder(mem), indices)
	case *array.Boolean:
		out = gather[bool](src, array.NewBooleanBuilder(mem), indices)
	case *array.Null:
		out = array.NewNull(len(indices))
	default:
		return nil, errs.InvalidArgument("unsupported column type %s in column %q", c.DataType(), c.name)
	}
	return New(c.name, out), nil
}

// Slice returns rows [from, to) without copying.
func (c *Column) Slice(from, to int) (*Column, error) {
	if from < 0 || to > c.Len() || from > to {
		return nil, errs.OutOfRange("slice [%d:%d] out of bounds (length: %d)", from, to, c.Len())
	}
	return New(c.name, array.NewSlice(c.arr, int64(from), int64(to))), nil
}

// Concatenate appends the rows of others to c. All columns must share the
// same data type; the result keeps c's name.
func (c *Column) Concatenate(others ...*Column) (*Column, error) {
	if len(others) == 0 {
		return c, nil
	}
	arrs := make([]arrow.Array, 0, len(others)+1)
	arrs = append(arrs, c.arr)
	for _, o := range others {
		if !arrow.TypeEqual(c.DataType(), o.DataType()) {
			return nil, errs.InvalidArgument("cannot concatenate column %q of type %s with %s", c.name, c.DataType(), o.DataType())
		}
		arrs = append(arrs, o.arr)
	}
	merged, err := array.Concatenate(arrs, mem)
	if err != nil {
		return nil, err
	}
	return New(c.name, merged), nil
}
