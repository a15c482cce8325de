// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command xfer is a CLI front end for the dispatcher: it loads a
// pipeline description from a YAML or TOML file and runs it once.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nzrymiak/xfer/arrowwriter"
	"github.com/nzrymiak/xfer/dataframewriter"
	"github.com/nzrymiak/xfer/dest"
	"github.com/nzrymiak/xfer/dispatcher"
	"github.com/nzrymiak/xfer/memwriter"
	"github.com/nzrymiak/xfer/pipelinecfg"
	"github.com/nzrymiak/xfer/source"
	"github.com/nzrymiak/xfer/sourcedrivers"
)

type runFlags struct {
	configPath string
	format     string
	shard      int
	nshards    int
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "xfer",
		Short: "Typed, partitioned data-transfer engine",
	}
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one pipeline described by a config file",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPipeline(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to a pipeline config file (required)")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Config format: yaml or toml")
	cmd.Flags().IntVar(&flags.shard, "shard", -1, "If set with --nshards, only run when this pipeline's name hashes to this shard")
	cmd.Flags().IntVar(&flags.nshards, "nshards", 0, "Total number of worker shards for --shard")
	return cmd
}

func runPipeline(flags *runFlags) error {
	if flags.configPath == "" {
		return fmt.Errorf("--config is required")
	}

	logger := log.NewLogfmtLogger(os.Stderr)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	cfg, err := loadConfig(flags.configPath, flags.format)
	if err != nil {
		return err
	}

	if flags.nshards > 0 {
		owner, err := pipelinecfg.ShardOf(flags.configPath, flags.nshards)
		if err != nil {
			return err
		}
		if owner != flags.shard {
			level.Info(logger).Log("msg", "skipping pipeline owned by another shard", "owner", owner, "shard", flags.shard)
			return nil
		}
	}

	fingerprint, err := cfg.Fingerprint()
	if err != nil {
		return err
	}
	level.Info(logger).Log("msg", "loaded pipeline config", "path", flags.configPath, "fingerprint", fingerprint)

	builder, err := newBuilder(cfg.Driver)
	if err != nil {
		return err
	}
	destination, err := newDestination(cfg.Destination, cfg.BufferMB)
	if err != nil {
		return err
	}
	schema, err := cfg.TypesysSchema()
	if err != nil {
		return err
	}

	d := dispatcher.New(builder, destination, schema,
		dispatcher.WithLogger(logger),
		dispatcher.WithRegisterer(prometheus.NewRegistry()),
	)
	if err := d.Run(cfg.Queries); err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	if df, ok := destination.(*dataframewriter.DataFrameWriter); ok {
		if err := df.Finalize(); err != nil {
			return fmt.Errorf("finalizing dataframe writer: %w", err)
		}
	}

	level.Info(logger).Log("msg", "pipeline complete", "queries", len(cfg.Queries))
	return nil
}

func loadConfig(path, format string) (*pipelinecfg.Config, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return pipelinecfg.LoadYAML(path)
	case "toml":
		return pipelinecfg.LoadTOML(path)
	default:
		return nil, fmt.Errorf("unknown config format %q (want yaml or toml)", format)
	}
}

func newBuilder(driver string) (source.Builder, error) {
	switch driver {
	case "u64":
		return sourcedrivers.U64SourceBuilder{}, nil
	case "string":
		return sourcedrivers.StringSourceBuilder{}, nil
	case "bool":
		return sourcedrivers.BoolSourceBuilder{}, nil
	case "f64":
		return sourcedrivers.F64SourceBuilder{}, nil
	case "timestamp":
		return sourcedrivers.TimestampSourceBuilder{}, nil
	case "csv":
		return sourcedrivers.NewCSVSourceBuilder(), nil
	case "tsv":
		return sourcedrivers.NewTSVSourceBuilder(), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

func newDestination(kind string, bufferMB int) (dest.Destination, error) {
	switch kind {
	case "memory":
		return memwriter.NewMemoryWriter(), nil
	case "arrow":
		return arrowwriter.NewArrowWriter(), nil
	case "dataframe":
		w := dataframewriter.NewDataFrameWriter()
		if bufferMB > 0 {
			w = w.WithBufferSize(bufferMB << 20)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown destination %q", kind)
	}
}
