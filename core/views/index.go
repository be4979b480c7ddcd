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
	"github.com/google/safehtml"

	"github.com/google/subframes/core/query"
	"github.com/google/subframes/core/subframes"
)

// IndexViewModel lists the tables a server offers.
type IndexViewModel struct {
	Title  string
	Tables []TableLink
}

// TableLink opens a table ungrouped.
type TableLink struct {
	Name string
	URL  safehtml.URL
}

// BuildIndexViewModel links every table name to its sub-frames page under
// path.
func BuildIndexViewModel(title, path string, names []string) IndexViewModel {
	vm := IndexViewModel{Title: title}
	for _, name := range names {
		q := &query.Query{Path: path, Table: name, Limit: subframes.DefaultLimit}
		vm.Tables = append(vm.Tables, TableLink{Name: name, URL: q.ToSafeURL()})
	}
	return vm
}
