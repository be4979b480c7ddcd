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
	"github.com/google/subframes/core/grouping"
	"github.com/google/subframes/core/query"
	"github.com/google/subframes/core/subframes"
	"github.com/google/subframes/core/tables"
)

const summaryRows = 20

// BuildPageViewModel partitions table by the grouped columns of q and
// aggregates it with the aggregation of q. Without grouped columns the whole
// table is the only sub-frame. Failures are reported in the Error field so
// the page can still offer its controls.
func BuildPageViewModel(title string, table *tables.Table, q *query.Query) SubFramesViewModel {
	fail := func(err error) SubFramesViewModel {
		return SubFramesViewModel{
			Title:       title,
			Columns:     BuildColumnToggles(q, table.Keys()),
			Aggregation: q.Agg,
			Error:       err.Error(),
			CurrentURL:  q.ToSafeURL(),
		}
	}

	sf, err := partition(table, q.GroupedColumns)
	if err != nil {
		return fail(err)
	}

	vm := BuildSubFramesViewModel(title, sf, q.Limit)
	vm.Columns = BuildColumnToggles(q, table.Keys())
	vm.Aggregation = q.Agg
	vm.CurrentURL = q.ToSafeURL()
	if vm.More > 0 {
		vm.MoreURL = q.WithLimit(max(q.Limit*2, subframes.DefaultLimit))
	}

	agg, err := q.Aggregation()
	if err != nil {
		vm.Error = err.Error()
		return vm
	}
	if agg == nil {
		return vm
	}
	summary, err := sf.Aggregate(q.GroupedColumns, agg)
	if err != nil {
		vm.Error = err.Error()
		return vm
	}
	s := BuildTableViewModel("Aggregation", summary, summaryRows, 0)
	vm.Summary = &s
	return vm
}

func partition(table *tables.Table, keys []string) (*subframes.SubFrames, error) {
	if len(keys) == 0 {
		return subframes.ByTables(table)
	}
	g, err := grouping.New(table, keys...)
	if err != nil {
		return nil, err
	}
	return g.SubFrames()
}
