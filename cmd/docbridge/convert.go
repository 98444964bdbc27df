// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbridge/internal/convert"
	"github.com/pdiddy/docbridge/internal/journal"
	"github.com/pdiddy/docbridge/internal/launcher"
	"github.com/pdiddy/docbridge/internal/metrics"
	"github.com/pdiddy/docbridge/internal/procexec"
	"github.com/pdiddy/docbridge/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert documents to another format",
	Long: `Convert runs each file through the converter, one at a time, in the order
given. Output files take the source name with the target format as their
extension, written next to the source or into --out-dir.

Each finished conversion is recorded in the history database unless
--journal is set to an empty string.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("to", "", "target format, e.g. pdf, txt, odt, html (required)")
	convertCmd.Flags().String("out-dir", "", "directory for converted files (default: next to each source)")
	convertCmd.Flags().String("metrics-textfile", "", "write Prometheus metrics to this file after the run")
	_ = convertCmd.MarkFlagRequired("to")
	_ = viper.BindPFlag("metrics.textfile", convertCmd.Flags().Lookup("metrics-textfile"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("to")
	outDir, _ := cmd.Flags().GetString("out-dir")

	jobs, err := convert.PlanJobs(args, outDir, format)
	if err != nil {
		return err
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	svc, cleanup, err := newService(cfg, procexec.OS(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := convert.ConvertBatch(ctx, svc.Service, jobs, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("interrupted after %d of %d file(s): %w", result.Total(), len(jobs), err)
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}

// service bundles a conversion service with the collector feeding its
// metrics, if any.
type service struct {
	*convert.Service
	metrics *metrics.Collector
}

// newService resolves the converter and wires the launcher, journal, and
// metrics into a conversion service. The returned cleanup closes the
// journal and writes the metrics textfile.
func newService(cfg types.Config, sp procexec.Spawner, logger *slog.Logger) (*service, func(), error) {
	exe, err := procexec.Lookup(cfg.Converter.Executable)
	if err != nil {
		return nil, nil, err
	}
	convCfg := cfg.Converter
	convCfg.Executable = exe

	l, err := launcher.New(convCfg, sp, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("converter ready", "executable", exe, "mode", string(l.Mode()))

	opts := []convert.Option{convert.WithLogger(logger)}
	var closers []func()

	var collector *metrics.Collector
	if cfg.Metrics.Textfile != "" {
		collector = metrics.New(l.Mode())
		opts = append(opts, convert.WithObserver(collector))
		closers = append(closers, func() {
			if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				logger.Warn("writing metrics", "error", err)
			}
		})
	}

	if cfg.Journal.Path != "" {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, convert.WithObserver(journal.NewRecorder(store, l.Mode(), logger)))
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing journal", "error", err)
			}
		})
	}

	svc := &service{Service: convert.NewService(l, opts...), metrics: collector}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return svc, cleanup, nil
}
