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

// Package aggregates provides the fixed set of aggregate functions applied to
// the columns of each sub-frame, and the accumulator states behind them.
package aggregates

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
)

// Function is an aggregate function folding one column into one scalar.
type Function int

const (
	Count Function = iota
	Sum
	Product
	Mean
	Min
	Max
	StdDev
	Variance
)

var functionNames = [...]string{
	Count:    "count",
	Sum:      "sum",
	Product:  "product",
	Mean:     "mean",
	Min:      "min",
	Max:      "max",
	StdDev:   "stddev",
	Variance: "variance",
}

func (f Function) String() string {
	if f < 0 || int(f) >= len(functionNames) {
		return "unknown"
	}
	return functionNames[f]
}

// Parse returns the function with the given name.
func Parse(name string) (Function, error) {
	for f, n := range functionNames {
		if n == name {
			return Function(f), nil
		}
	}
	return 0, errs.InvalidArgument("unknown aggregate function %q, expected one of %v", name, functionNames)
}

// IsAggregate reports whether name is a known aggregate function.
func IsAggregate(name string) bool {
	_, err := Parse(name)
	return err == nil
}

// Functions returns every aggregate function in declaration order.
func Functions() []Function {
	out := make([]Function, len(functionNames))
	for i := range out {
		out[i] = Function(i)
	}
	return out
}

// ResultType returns the type of the scalar fn produces over a column of
// type input.
func ResultType(fn Function, input arrow.DataType) (arrow.DataType, error) {
	if fn == Count {
		return arrow.PrimitiveTypes.Int64, nil
	}
	if input.ID() == arrow.NULL {
		return arrow.Null, nil
	}
	switch fn {
	case Sum, Product:
		if columns.IsIntegerType(input) {
			return arrow.PrimitiveTypes.Int64, nil
		}
		if columns.IsNumericType(input) {
			return arrow.PrimitiveTypes.Float64, nil
		}
	case Min, Max:
		switch {
		case columns.IsIntegerType(input):
			return arrow.PrimitiveTypes.Int64, nil
		case columns.IsNumericType(input):
			return arrow.PrimitiveTypes.Float64, nil
		case input.ID() == arrow.STRING:
			return arrow.BinaryTypes.String, nil
		case input.ID() == arrow.BOOL:
			return arrow.FixedWidthTypes.Boolean, nil
		}
	case Mean, StdDev, Variance:
		if columns.IsNumericType(input) {
			return arrow.PrimitiveTypes.Float64, nil
		}
	default:
		return nil, errs.InvalidArgument("unknown aggregate function %d", int(fn))
	}
	return nil, errs.InvalidArgument("%s is not defined for %s columns", fn, columns.TypeName(input))
}

// Evaluate folds the column with fn. Nulls are skipped; a nil result is a
// null, returned when no valid value was seen (count returns 0 instead).
func Evaluate(fn Function, c *columns.Column) (any, error) {
	dt, err := ResultType(fn, c.DataType())
	if err != nil {
		return nil, err
	}
	state := newState(fn, c.DataType())
	for i := 0; i < c.Len(); i++ {
		if v := c.Value(i); v != nil {
			state.add(v)
		}
	}
	if dt.ID() == arrow.NULL {
		return nil, nil
	}
	return state.Result(fn), nil
}

// AggregateState accumulates the non-null values of one column.
type AggregateState interface {
	// Result returns the value of fn, or nil if it is undefined.
	Result(fn Function) any

	add(v any)
}

func newState(fn Function, input arrow.DataType) AggregateState {
	switch {
	case columns.IsIntegerType(input) && fn != Mean && fn != StdDev && fn != Variance:
		return NewIntAggState()
	case columns.IsNumericType(input):
		return NewNumericAggState()
	case input.ID() == arrow.STRING:
		return NewStringAggState()
	case input.ID() == arrow.BOOL:
		return NewBoolAggState()
	}
	return &countState{}
}

// countState only counts; it serves columns no other state understands.
type countState struct{ n int64 }

func (s *countState) add(any) { s.n++ }

func (s *countState) Result(fn Function) any {
	if fn == Count {
		return s.n
	}
	return nil
}

// NumericAggState stores intermediate state for floating point aggregates.
// Integer columns use it for mean, stddev and variance.
type NumericAggState struct {
	Count   int64   // Number of values
	Sum     float64 // Sum of values
	SumSq   float64 // Sum of squared values (for stddev)
	Product float64 // Product of values
	Min     float64 // Minimum non-NaN value
	Max     float64 // Maximum non-NaN value
	Ordered int64   // Number of non-NaN values
}

// NewNumericAggState creates a new empty numeric aggregate state.
func NewNumericAggState() *NumericAggState {
	return &NumericAggState{
		Product: 1,
		Min:     math.Inf(1),
		Max:     math.Inf(-1),
	}
}

// Add adds a single value to the aggregate state.
func (s *NumericAggState) Add(value float64) {
	s.Count++
	s.Sum += value
	s.SumSq += value * value
	s.Product *= value
	if math.IsNaN(value) {
		return
	}
	s.Ordered++
	s.Min = math.Min(s.Min, value)
	s.Max = math.Max(s.Max, value)
}

func (s *NumericAggState) add(v any) {
	switch v := v.(type) {
	case float64:
		s.Add(v)
	case int64:
		s.Add(float64(v))
	}
}

// Avg returns the average (mean) of the values.
func (s *NumericAggState) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Variance returns the population variance.
func (s *NumericAggState) Variance() float64 {
	if s.Count == 0 {
		return 0
	}
	mean := s.Avg()
	// Variance = E[X²] - (E[X])²
	variance := (s.SumSq / float64(s.Count)) - (mean * mean)
	if variance < 0 {
		// Handle floating point precision issues
		variance = 0
	}
	return variance
}

// StdDev returns the population standard deviation.
func (s *NumericAggState) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *NumericAggState) Result(fn Function) any {
	if fn == Count {
		return s.Count
	}
	if s.Count == 0 {
		return nil
	}
	switch fn {
	case Sum:
		return s.Sum
	case Product:
		return s.Product
	case Mean:
		return s.Avg()
	case Variance:
		return s.Variance()
	case StdDev:
		return s.StdDev()
	case Min:
		if s.Ordered == 0 {
			return math.NaN()
		}
		return s.Min
	case Max:
		if s.Ordered == 0 {
			return math.NaN()
		}
		return s.Max
	}
	return nil
}

// IntAggState stores exact integer sums, products and bounds. Overflow wraps
// around like int64 arithmetic.
type IntAggState struct {
	Count   int64
	Sum     int64
	Product int64
	Min     int64
	Max     int64
}

// NewIntAggState creates a new empty integer aggregate state.
func NewIntAggState() *IntAggState {
	return &IntAggState{
		Product: 1,
		Min:     math.MaxInt64,
		Max:     math.MinInt64,
	}
}

// Add adds a single value to the aggregate state.
func (s *IntAggState) Add(value int64) {
	s.Count++
	s.Sum += value
	s.Product *= value
	s.Min = min(s.Min, value)
	s.Max = max(s.Max, value)
}

func (s *IntAggState) add(v any) {
	if v, ok := v.(int64); ok {
		s.Add(v)
	}
}

func (s *IntAggState) Result(fn Function) any {
	if fn == Count {
		return s.Count
	}
	if s.Count == 0 {
		return nil
	}
	switch fn {
	case Sum:
		return s.Sum
	case Product:
		return s.Product
	case Min:
		return s.Min
	case Max:
		return s.Max
	}
	return nil
}

// StringAggState stores intermediate state for string column aggregates.
// Min and max compare bytewise.
type StringAggState struct {
	Count     int64  // Total count
	Min       string // Alphabetically smallest value
	Max       string // Alphabetically largest value
	HasValues bool   // Whether Min/Max have been set
}

// NewStringAggState creates a new empty string aggregate state.
func NewStringAggState() *StringAggState {
	return &StringAggState{}
}

// Add adds a single string value to the aggregate state.
func (s *StringAggState) Add(value string) {
	if !s.HasValues {
		s.Min = value
		s.Max = value
		s.HasValues = true
	} else {
		s.Min = min(s.Min, value)
		s.Max = max(s.Max, value)
	}
	s.Count++
}

func (s *StringAggState) add(v any) {
	if v, ok := v.(string); ok {
		s.Add(v)
	}
}

func (s *StringAggState) Result(fn Function) any {
	switch {
	case fn == Count:
		return s.Count
	case !s.HasValues:
		return nil
	case fn == Min:
		return s.Min
	case fn == Max:
		return s.Max
	}
	return nil
}

// BoolAggState stores intermediate state for boolean column aggregates.
type BoolAggState struct {
	Count      int64 // Total count
	TrueCount  int64 // Count of true values
	FalseCount int64 // Count of false values
}

// NewBoolAggState creates a new empty boolean aggregate state.
func NewBoolAggState() *BoolAggState {
	return &BoolAggState{}
}

// Add adds a single boolean value to the aggregate state.
func (s *BoolAggState) Add(value bool) {
	s.Count++
	if value {
		s.TrueCount++
	} else {
		s.FalseCount++
	}
}

func (s *BoolAggState) add(v any) {
	if v, ok := v.(bool); ok {
		s.Add(v)
	}
}

func (s *BoolAggState) Result(fn Function) any {
	switch {
	case fn == Count:
		return s.Count
	case s.Count == 0:
		return nil
	case fn == Min:
		return s.FalseCount == 0
	case fn == Max:
		return s.TrueCount > 0
	}
	return nil
}
