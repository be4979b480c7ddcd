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

package aggregates

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/google/subframes/core/columns"
)

// ResultBuilder collects one scalar per sub-frame into an output column.
type ResultBuilder struct {
	name   string
	fn     Function
	input  arrow.DataType
	output arrow.DataType
	values []any
}

// NewResultBuilder returns a builder for the column name holding fn applied
// to columns of type input.
func NewResultBuilder(name string, fn Function, input arrow.DataType) (*ResultBuilder, error) {
	output, err := ResultType(fn, input)
	if err != nil {
		return nil, err
	}
	return &ResultBuilder{name: name, fn: fn, input: input, output: output}, nil
}

// Append evaluates the builder's function over c and appends the result.
func (b *ResultBuilder) Append(c *columns.Column) error {
	v, err := Evaluate(b.fn, c)
	if err != nil {
		return err
	}
	b.values = append(b.values, v)
	return nil
}

func (b *ResultBuilder) Len() int {
	return len(b.values)
}

// Column returns the collected values as a column.
func (b *ResultBuilder) Column() (*columns.Column, error) {
	return columns.Build(b.name, b.output, b.values)
}
