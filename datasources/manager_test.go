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

package datasources

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/config"
	"github.com/google/subframes/core/csvimport"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/tables"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestManagerLoadsLazily(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "orders.csv", "region,amount\nEU,10\nUS,20\nEU,5\n")

	m := NewManager()
	m.SetBaseDir(dir)
	require.NoError(t, m.AddSource(Source{Name: "orders", Path: "orders.csv", Options: csvimport.DefaultOptions()}))
	require.False(t, m.IsLoaded("orders"))

	tbl, err := m.LoadData("orders")
	require.NoError(t, err)
	require.Equal(t, "3 rows x 2 columns", tbl.Shape())
	require.Equal(t, []string{"string", "int64"}, tbl.TypeNames())
	require.True(t, m.IsLoaded("orders"))

	again, err := m.LoadData("orders")
	require.NoError(t, err)
	require.Same(t, tbl, again)

	m.InvalidateCache("orders")
	require.False(t, m.IsLoaded("orders"))
}

func TestManagerConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "x\n1\n2\n")

	m := NewManager()
	require.NoError(t, m.AddSource(Source{Name: "a", Path: filepath.Join(dir, "a.csv"), Options: csvimport.DefaultOptions()}))

	var wg sync.WaitGroup
	got := make([]*tables.Table, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], _ = m.LoadData("a")
		}()
	}
	wg.Wait()

	final, err := m.LoadData("a")
	require.NoError(t, err)
	for _, tbl := range got {
		require.NotNil(t, tbl)
		require.True(t, final.Equal(tbl))
	}
}

func TestManagerRegister(t *testing.T) {
	m := NewManager()
	tbl := tables.MustNew(columns.MustFromValues("x", []int{1}))
	require.NoError(t, m.Register("b", tbl))
	require.NoError(t, m.AddSource(Source{Name: "a", Path: "a.csv"}))
	require.Equal(t, []string{"a", "b"}, m.Names())

	got, err := m.LoadData("b")
	require.NoError(t, err)
	require.Same(t, tbl, got)

	err = m.Register("a", tbl)
	require.True(t, errs.IsInvalidArgument(err))
	err = m.AddSource(Source{Name: "b", Path: "b.csv"})
	require.True(t, errs.IsInvalidArgument(err))
	require.Error(t, m.Register("c", nil))

	_, err = m.LoadData("missing")
	require.True(t, errs.IsInvalidArgument(err))

	_, err = m.LoadData("a")
	require.Error(t, err)
}

func TestManagerLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "semi.csv", "id;amount\n007;1.5\n")

	cfg, err := config.Parse([]byte(`
sources:
  - name: semi
    path: semi.csv
    delimiter: ";"
    columns:
      - {header: id, type: string}
`))
	require.NoError(t, err)

	m := NewManager()
	m.SetBaseDir(dir)
	require.NoError(t, m.LoadConfig(cfg))

	tbl, err := m.LoadData("semi")
	require.NoError(t, err)
	id, err := tbl.Column("id")
	require.NoError(t, err)
	require.Equal(t, "007", id.Value(0))
	require.Equal(t, []string{"string", "float64"}, tbl.TypeNames())
}
