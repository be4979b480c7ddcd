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

// Command subframes partitions CSV tables into sub-frames and aggregates
// them.
package main

import (
	"github.com/spf13/cobra"

	"github.com/google/subframes/core/query"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "subframes",
		Short:         "Partition tables into sub-frames and aggregate them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("log.level", "info", "log level: debug, info, warn or error")
	flags.String("config", "", "YAML job file")
	flags.String("input", "", "CSV file to read")
	flags.Bool("demo", false, "use the built-in sample table instead of --input")
	flags.StringSlice("group-by", nil, "columns to partition by")
	flags.String("agg", "", "aggregation, e.g. x=sum,y=mean or [x,y]*[count,sum]; functions: "+query.FunctionNames())
	flags.Int("limit", 16, "number of sub-frames to show")
	flags.String("format", "ascii", "output format: ascii, csv or html")

	addCommands(root)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fatal("%v", err)
	}
}
