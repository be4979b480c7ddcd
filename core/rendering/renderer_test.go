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

package rendering

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/query"
	"github.com/google/subframes/core/tables"
	"github.com/google/subframes/core/views"
)

func sample() *tables.Table {
	return tables.MustNew(
		columns.MustFromValues("x", []int{1, 2, 3, 4, 5, 6}),
		columns.MustFromValues("y", []string{"A", "A", "B", "B", "B", "<C>"}),
	)
}

func TestRenderSubFrames(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	u, err := url.Parse("/subframes?grouped=y&agg=x%3Dsum&limit=2")
	require.NoError(t, err)
	vm := views.BuildPageViewModel("sample", sample(), query.NewQuery(u))

	var buf bytes.Buffer
	require.NoError(t, r.RenderSubFrames(&buf, vm))
	out := buf.String()
	require.Contains(t, out, "<title>sample</title>")
	require.Contains(t, out, "3 sub-frames [2, 3, ...]")
	require.Contains(t, out, "<th>sum_x</th>")
	require.Contains(t, out, "+ 1 more frames")
	require.Contains(t, out, "&lt;C&gt;")
	require.NotContains(t, out, "<C>")
}

func TestRenderTable(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderTable(&buf, views.BuildTableViewModel("sample", sample(), 2, 2)))
	out := buf.String()
	require.Contains(t, out, "6 rows x 2 columns")
	require.Contains(t, out, "&lt;int64&gt;")
	require.Contains(t, out, `class="elision"`)
}

func TestRenderIndex(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderIndex(&buf, views.BuildIndexViewModel("Tables", "/subframes", []string{"orders"})))
	out := buf.String()
	require.Contains(t, out, `href="/subframes?limit=16`)
	require.Contains(t, out, "table=orders")
	require.Contains(t, out, ">orders</a>")
}
