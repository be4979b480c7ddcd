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
	"github.com/pkg/errors"

	"github.com/google/subframes/core/errs"
)

// Build creates a column of type dt from boxed values as returned by Value.
// nil appends a null. Supported types are int64, float64, string and bool.
func Build(name string, dt arrow.DataType, values []any) (*Column, error) {
	switch dt.ID() {
	case arrow.INT64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i, v := range values {
			switch v := v.(type) {
			case nil:
				b.AppendNull()
			case int64:
				b.Append(v)
			case int:
				b.Append(int64(v))
			default:
				return nil, errs.InvalidArgument("value %v (%T) at row %d is not an int64", v, v, i)
			}
		}
		return New(name, b.NewArray()), nil

	case arrow.FLOAT64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i, v := range values {
			switch v := v.(type) {
			case nil:
				b.AppendNull()
			case float64:
				b.Append(v)
			case int64:
				b.Append(float64(v))
			case int:
				b.Append(float64(v))
			default:
				return nil, errs.InvalidArgument("value %v (%T) at row %d is not a float64", v, v, i)
			}
		}
		return New(name, b.NewArray()), nil

	case arrow.STRING:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i, v := range values {
			switch v := v.(type) {
			case nil:
				b.AppendNull()
			case string:
				b.Append(v)
			default:
				return nil, errs.InvalidArgument("value %v (%T) at row %d is not a string", v, v, i)
			}
		}
		return New(name, b.NewArray()), nil

	case arrow.BOOL:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i, v := range values {
			switch v := v.(type) {
			case nil:
				b.AppendNull()
			case bool:
				b.Append(v)
			default:
				return nil, errs.InvalidArgument("value %v (%T) at row %d is not a bool", v, v, i)
			}
		}
		return New(name, b.NewArray()), nil

	case arrow.NULL:
		for i, v := range values {
			if v != nil {
				return nil, errs.InvalidArgument("value %v (%T) at row %d in a null column", v, v, i)
			}
		}
		return New(name, array.NewNull(len(values))), nil
	}
	return nil, errs.InvalidArgument("unsupported column type %s for column %q", dt, name)
}

// FromValues creates a column from a Go slice. Accepted inputs are []int,
// []int64, []float64, []string, []bool and []any. For []any, nil is a null
// and the type is inferred from the non-nil values; ints mixed with floats
// become float64. A []any holding only nils yields a null-typed column.
func FromValues(name string, values any) (*Column, error) {
	switch v := values.(type) {
	case []int:
		conv := make([]int64, len(v))
		for i, x := range v {
			conv[i] = int64(x)
		}
		return NewInt64(name, conv, nil), nil
	case []int64:
		return NewInt64(name, v, nil), nil
	case []float64:
		return NewFloat64(name, v, nil), nil
	case []string:
		return NewString(name, v, nil), nil
	case []bool:
		return NewBool(name, v, nil), nil
	case []any:
		dt, err := inferType(v)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", name)
		}
		return Build(name, dt, v)
	case *Column:
		return v.Rename(name), nil
	}
	return nil, errs.InvalidArgument("cannot build column %q from %T", name, values)
}

// MustFromValues is like FromValues but panics on error. It is intended for
// literals in tests and sample data.
func MustFromValues(name string, values any) *Column {
	c, err := FromValues(name, values)
	if err != nil {
		panic(err)
	}
	return c
}

func inferType(values []any) (arrow.DataType, error) {
	var dt arrow.DataType = arrow.Null
	for _, v := range values {
		var next arrow.DataType
		switch v.(type) {
		case nil:
			continue
		case int, int64:
			next = arrow.PrimitiveTypes.Int64
		case float64:
			next = arrow.PrimitiveTypes.Float64
		case string:
			next = arrow.BinaryTypes.String
		case bool:
			next = arrow.FixedWidthTypes.Boolean
		default:
			return nil, errs.InvalidArgument("unsupported value type %T", v)
		}
		switch {
		case dt.ID() == arrow.NULL, arrow.TypeEqual(dt, next):
			dt = next
		case IsNumericType(dt) && IsNumericType(next):
			dt = arrow.PrimitiveTypes.Float64
		default:
			return nil, errs.InvalidArgument("mixed value types %s and %s", dt, next)
		}
	}
	return dt, nil
}
