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

// Package rendering renders view models to HTML.
package rendering

import (
	"embed"
	"io"

	"github.com/google/safehtml/template"

	"github.com/google/subframes/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// Renderer handles rendering of view models to HTML
type Renderer struct {
	subframesTemplate *template.Template
	tableTemplate     *template.Template
	indexTemplate     *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	// Both pages share the table partial
	subframesTemplate, err := template.New("subframes.html").ParseFS(trustedFS, "templates/subframes.html", "templates/partials.html")
	if err != nil {
		return nil, err
	}

	tableTemplate, err := template.New("table.html").ParseFS(trustedFS, "templates/table.html", "templates/partials.html")
	if err != nil {
		return nil, err
	}

	indexTemplate, err := template.New("index.html").ParseFS(trustedFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	return &Renderer{
		subframesTemplate: subframesTemplate,
		tableTemplate:     tableTemplate,
		indexTemplate:     indexTemplate,
	}, nil
}

// RenderSubFrames renders a SubFramesViewModel to the provided writer
func (r *Renderer) RenderSubFrames(w io.Writer, vm views.SubFramesViewModel) error {
	return r.subframesTemplate.Execute(w, vm)
}

// RenderTable renders a TableViewModel to the provided writer
func (r *Renderer) RenderTable(w io.Writer, vm views.TableViewModel) error {
	return r.tableTemplate.Execute(w, vm)
}

// RenderIndex renders the list of tables to the provided writer
func (r *Renderer) RenderIndex(w io.Writer, vm views.IndexViewModel) error {
	return r.indexTemplate.Execute(w, vm)
}
