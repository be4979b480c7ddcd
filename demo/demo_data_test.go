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

package demo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/subframes/core/grouping"
	"github.com/google/subframes/core/subframes"
	"github.com/google/subframes/datasources"
)

func TestSampleTable(t *testing.T) {
	sample := SampleTable()
	require.Equal(t, []string{"x", "y", "z"}, sample.Keys())
	require.Equal(t, []string{"int64", "string", "bool"}, sample.TypeNames())

	z, err := sample.Column("z")
	require.NoError(t, err)
	require.Equal(t, 1, z.NullCount())
	require.True(t, z.IsNull(3))

	g, err := grouping.New(sample, "y")
	require.NoError(t, err)
	sf, err := g.SubFrames()
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 1}, sf.Sizes())

	out, err := sf.Aggregate([]string{"y"}, subframes.Mapping{{Column: "x", Function: "sum"}})
	require.NoError(t, err)
	sum, err := out.Column("sum_x")
	require.NoError(t, err)
	require.Equal(t, []any{int64(3), int64(12), int64(6)}, []any{sum.Value(0), sum.Value(1), sum.Value(2)})
}

func TestOrdersTable(t *testing.T) {
	orders := OrdersTable()
	require.Equal(t, "20 rows x 6 columns", orders.Shape())
	require.Equal(t, []string{"id", "region", "status", "category", "amount", "quantity"}, orders.Keys())
	require.Equal(t, []string{"string", "string", "string", "string", "float64", "int64"}, orders.TypeNames())

	amount, err := orders.Column("amount")
	require.NoError(t, err)
	require.Equal(t, 1, amount.NullCount())
}

func TestRegister(t *testing.T) {
	m := datasources.NewManager()
	require.NoError(t, Register(m))
	require.Equal(t, []string{"orders", "sample"}, m.Names())
	require.Error(t, Register(m))
}
