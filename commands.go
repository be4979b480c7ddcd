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

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/google/subframes/core/config"
	"github.com/google/subframes/core/csvimport"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/grouping"
	"github.com/google/subframes/core/logging"
	"github.com/google/subframes/core/rendering"
	"github.com/google/subframes/core/server"
	"github.com/google/subframes/core/subframes"
	"github.com/google/subframes/core/tables"
	"github.com/google/subframes/core/views"
	"github.com/google/subframes/datasources"
	"github.com/google/subframes/demo"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the table and its sub-frames",
		Args:  cobra.NoArgs,
		RunE:  inspect}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate every sub-frame into one row",
		Args:  cobra.NoArgs,
		RunE:  aggregate}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "render",
		Short: "Write the sub-frames in the selected format",
		Args:  cobra.NoArgs,
		RunE:  render}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve sub-frame pages over HTTP",
		Args:  cobra.NoArgs,
		RunE:  serve}
	cmd.Flags().String("addr", "127.0.0.1:8097", "listen address")
	root.AddCommand(cmd)
}

func fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	os.Exit(1)
}

// loadJob reads the job file, if any, and applies the flags that were set
// on the command line over it.
func loadJob(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if flags.Changed("log.level") {
		cfg.LogLevel, _ = flags.GetString("log.level")
	}
	if flags.Changed("input") {
		cfg.Input, _ = flags.GetString("input")
	}
	if flags.Changed("group-by") {
		cfg.GroupBy, _ = flags.GetStringSlice("group-by")
	}
	if flags.Changed("agg") {
		cfg.Aggregate = config.Aggregate{}
		cfg.Aggregate.Expr, _ = flags.GetString("agg")
	}
	if flags.Changed("limit") {
		cfg.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.Init(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadTable(cmd *cobra.Command, cfg *config.Config) (*tables.Table, error) {
	if useDemo, _ := cmd.Flags().GetBool("demo"); useDemo {
		return demo.SampleTable(), nil
	}
	if cfg.Input == "" {
		return nil, errs.InvalidArgument("no input: pass --input, --demo or a config file")
	}
	options, err := cfg.ImportOptions()
	if err != nil {
		return nil, err
	}
	t, err := csvimport.ImportFromFile(cfg.Input, options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to import %s", cfg.Input)
	}
	level.Info(logging.Logger).Log("msg", "imported table", "input", cfg.Input, "shape", t.Shape())
	return t, nil
}

// partition groups t by keys. Without keys the whole table is the only
// sub-frame.
func partition(t *tables.Table, keys []string) (*subframes.SubFrames, error) {
	if len(keys) == 0 {
		return subframes.ByTables(t)
	}
	g, err := grouping.New(t, keys...)
	if err != nil {
		return nil, err
	}
	return g.SubFrames()
}

func prepare(cmd *cobra.Command) (*config.Config, *tables.Table, *subframes.SubFrames, error) {
	cfg, err := loadJob(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	t, err := loadTable(cmd, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	sf, err := partition(t, cfg.GroupBy)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, t, sf, nil
}

func inspect(cmd *cobra.Command, args []string) error {
	cfg, t, sf, err := prepare(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprint(w, t)
	if len(cfg.GroupBy) > 0 {
		g, err := grouping.New(t, cfg.GroupBy...)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, g)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, sf.Format(cfg.Limit))
	return nil
}

func aggregate(cmd *cobra.Command, args []string) error {
	cfg, _, sf, err := prepare(cmd)
	if err != nil {
		return err
	}
	agg, err := cfg.Aggregation()
	if err != nil {
		return err
	}
	if agg == nil {
		return errs.InvalidArgument("no aggregation: pass --agg or set aggregate in the config file")
	}
	out, err := sf.Aggregate(cfg.GroupBy, agg)
	if err != nil {
		return err
	}
	return writeTable(cmd.OutOrStdout(), cfg.Format, out)
}

func writeTable(w io.Writer, format string, t *tables.Table) error {
	switch format {
	case config.FormatCSV:
		return csvimport.WriteCSV(w, t)
	case config.FormatHTML:
		r, err := rendering.NewRenderer()
		if err != nil {
			return err
		}
		return r.RenderTable(w, views.BuildTableViewModel("Aggregation", t, t.NumRows(), 0))
	}
	_, err := io.WriteString(w, t.Format(t.NumRows(), 0))
	return err
}

func render(cmd *cobra.Command, args []string) error {
	cfg, _, sf, err := prepare(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch cfg.Format {
	case config.FormatCSV:
		return csvimport.WriteCSV(w, sf.Baseframe())
	case config.FormatHTML:
		r, err := rendering.NewRenderer()
		if err != nil {
			return err
		}
		return r.RenderSubFrames(w, views.BuildSubFramesViewModel(title(cfg), sf, cfg.Limit))
	}
	_, err = io.WriteString(w, sf.Format(cfg.Limit))
	return err
}

func title(cfg *config.Config) string {
	if cfg.Input == "" {
		return "sample"
	}
	return strings.TrimSuffix(filepath.Base(cfg.Input), filepath.Ext(cfg.Input))
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadJob(cmd)
	if err != nil {
		return err
	}

	m := datasources.NewManager()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		m.SetBaseDir(filepath.Dir(path))
	}
	if err := m.LoadConfig(cfg); err != nil {
		return err
	}
	if cfg.Input != "" {
		options, err := cfg.ImportOptions()
		if err != nil {
			return err
		}
		input, err := filepath.Abs(cfg.Input)
		if err != nil {
			return err
		}
		if err := m.AddSource(datasources.Source{Name: title(cfg), Path: input, Options: options}); err != nil {
			return err
		}
	}
	if useDemo, _ := cmd.Flags().GetBool("demo"); useDemo || len(m.Names()) == 0 {
		if err := demo.Register(m); err != nil {
			return err
		}
	}

	srv, err := server.NewServer("Sub-frames", m)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	level.Info(logging.Logger).Log("msg", "server starting", "addr", "http://"+addr, "tables", strings.Join(m.Names(), ","))
	return http.ListenAndServe(addr, srv.Handler())
}
