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

package views

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/query"
	"github.com/google/subframes/core/subframes"
	"github.com/google/subframes/core/tables"
)

func sample() *tables.Table {
	return tables.MustNew(
		columns.MustFromValues("x", []int{1, 2, 3, 4, 5, 6}),
		columns.MustFromValues("y", []string{"A", "A", "B", "B", "B", "C"}),
		columns.MustFromValues("z", []any{false, true, false, nil, true, false}),
	)
}

func TestBuildTableViewModel(t *testing.T) {
	vm := BuildTableViewModel("sample", sample(), 2, 1)
	require.Equal(t, []string{"x", "y", "z"}, vm.Headers)
	require.Equal(t, []string{"int64", "string", "bool"}, vm.Types)
	require.Equal(t, 6, vm.TotalRows)
	require.Equal(t, 3, vm.DisplayedRows)
	require.True(t, vm.HasMoreRows)
	require.Len(t, vm.Rows, 4)
	require.Equal(t, []string{"1", "A", "false"}, vm.Rows[0].Cells)
	require.True(t, vm.Rows[2].IsElision)
	require.Equal(t, "5", vm.Rows[3].Index)

	all := BuildTableViewModel("sample", sample(), 5, 3)
	require.False(t, all.HasMoreRows)
	require.Equal(t, "(nil)", all.Rows[3].Cells[2])
}

func TestBuildSubFramesViewModel(t *testing.T) {
	sf, err := subframes.ByIndices(sample(), []int{0, 1}, []int{2, 3, 4}, []int{5})
	require.NoError(t, err)

	vm := BuildSubFramesViewModel("by y", sf, 2)
	require.Equal(t, 3, vm.FrameCount)
	require.Equal(t, "2, 3, ...", vm.Sizes)
	require.Equal(t, "6 rows x 3 columns", vm.Baseframe)
	require.Len(t, vm.Frames, 2)
	require.Equal(t, 1, vm.More)
	require.Equal(t, 3, vm.Frames[1].Table.TotalRows)
}

func TestBuildPageViewModel(t *testing.T) {
	u, err := url.Parse("/subframes?table=sample&grouped=y&agg=x%3Dsum")
	require.NoError(t, err)
	vm := BuildPageViewModel("sample", sample(), query.NewQuery(u))
	require.Empty(t, vm.Error)
	require.Equal(t, 3, vm.FrameCount)
	require.NotNil(t, vm.Summary)
	require.Equal(t, []string{"y", "sum_x"}, vm.Summary.Headers)
	require.Equal(t, []string{"C", "6"}, vm.Summary.Rows[2].Cells)

	require.Len(t, vm.Columns, 3)
	require.True(t, vm.Columns[1].IsGrouped)
	require.False(t, vm.Columns[0].IsGrouped)
}

func TestBuildPageViewModelErrors(t *testing.T) {
	u, _ := url.Parse("/subframes?grouped=nope")
	vm := BuildPageViewModel("sample", sample(), query.NewQuery(u))
	require.Contains(t, vm.Error, "nope")
	require.Len(t, vm.Columns, 3)

	u, _ = url.Parse("/subframes?grouped=y&agg=x%3Dmedian")
	vm = BuildPageViewModel("sample", sample(), query.NewQuery(u))
	require.Contains(t, vm.Error, "median")
	require.Equal(t, 3, vm.FrameCount)
	require.Nil(t, vm.Summary)

	u, _ = url.Parse("/subframes")
	vm = BuildPageViewModel("sample", sample(), query.NewQuery(u))
	require.Empty(t, vm.Error)
	require.Equal(t, 1, vm.FrameCount)
}
