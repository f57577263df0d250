// Copyright 2023 Linkall Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	// standard libraries.
	"context"
	"strings"

	// third-party libraries.
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	// this project.
	"github.com/linkall-labs/mc3ds/internal/format/compress"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/observability/log"
	"github.com/linkall-labs/mc3ds/observability/metrics"
	"github.com/linkall-labs/mc3ds/pkg/archive"
	"github.com/linkall-labs/mc3ds/pkg/world"
)

const (
	FormatJSON = "json"
)

type GlobalFlags struct {
	ConfigFile  string
	Format      string
	LogLevel    string
	MetricsFile string
	Revision    string
}

// Config is the optional yaml file given with --config.
type Config struct {
	LogLevel         string             `yaml:"log_level"`
	Revision         primitive.Revision `yaml:"revision"`
	CompressionLevel int                `yaml:"compression_level"`
	CacheSize        int                `yaml:"cache_size"`
	Concurrency      int                `yaml:"concurrency"`
	MetricsFile      string             `yaml:"metrics_file"`
}

var (
	globalFlags GlobalFlags
	cfg         Config
)

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&globalFlags.ConfigFile, "config", "", "yaml configuration file")
	cmd.PersistentFlags().StringVar(&globalFlags.Format, "format", "table", "output format, table or json")
	cmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level, overrides the config file")
	cmd.PersistentFlags().StringVar(&globalFlags.MetricsFile, "metrics-file", "",
		"write prometheus metrics to this file on exit")
	cmd.PersistentFlags().StringVar(&globalFlags.Revision, "revision", "",
		"format revision: auto, legacy or packed")
}

// InitGlobal loads the config file and applies flag overrides.
func InitGlobal(cmd *cobra.Command) {
	c, err := loadConfig(globalFlags)
	if err != nil {
		cmdFailedf(cmd, "load config failed: %s", err)
	}
	cfg = c
	if cfg.LogLevel != "" {
		log.SetLogLevel(cfg.LogLevel)
	}
	if cfg.MetricsFile != "" {
		metrics.Register()
	}
}

func loadConfig(flags GlobalFlags) (Config, error) {
	var c Config
	if flags.ConfigFile != "" {
		if err := primitive.LoadConfig(flags.ConfigFile, &c); err != nil {
			return Config{}, err
		}
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.MetricsFile != "" {
		c.MetricsFile = flags.MetricsFile
	}
	if flags.Revision != "" {
		rev, err := primitive.ParseRevision(flags.Revision)
		if err != nil {
			return Config{}, err
		}
		c.Revision = rev
	}
	return c, nil
}

func FinishGlobal(cmd *cobra.Command) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(cfg.MetricsFile, prometheus.DefaultGatherer); err != nil {
		log.Error(context.Background(), "write metrics file failed", map[string]interface{}{
			log.KeyPath:  cfg.MetricsFile,
			log.KeyError: err,
		})
	}
}

func (c Config) archiveOptions() []archive.Option {
	opts := []archive.Option{archive.WithRevision(c.Revision)}
	if c.CompressionLevel != 0 {
		opts = append(opts, archive.WithCompressor(compress.NewZlib(compress.WithLevel(c.CompressionLevel))))
	}
	return opts
}

func (c Config) worldOptions() []world.Option {
	return []world.Option{
		world.WithCacheSize(c.CacheSize),
		world.WithConcurrency(c.Concurrency),
		world.WithArchiveOptions(c.archiveOptions()...),
	}
}

func IsFormatJSON(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetString("format")
	if err != nil {
		return false
	}
	return strings.ToLower(v) == FormatJSON
}
