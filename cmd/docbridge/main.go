// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docbridge CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbridge/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docbridge CLI.
var rootCmd = &cobra.Command{
	Use:   "docbridge",
	Short: "Convert documents through an external converter, one at a time",
	Long: `docbridge converts documents between formats by driving an external
converter (AbiWord). Requests are serialized through a single queue so only
one converter process works at a time.

On Windows each conversion runs "abiword --to=<dest> <src>". Elsewhere
docbridge talks to the AbiCommand plugin over stdin/stdout.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./docbridge.yaml or ~/.config/docbridge/docbridge.yaml)")
	pf.String("executable", "", "converter executable (default abiword)")
	pf.String("mode", "", "converter mode: auto, batch, or session (default auto)")
	pf.String("journal", "", "conversion history database (default var/docbridge.db)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default info)")
	pf.String("log-format", "", "log format: text or json (default text)")

	for key, name := range flagKeys {
		_ = viper.BindPFlag(key, pf.Lookup(name))
	}

	setDefaults(viper.GetViper())
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"converter.executable": "executable",
	"converter.mode":       "mode",
	"journal.path":         "journal",
	"log.level":            "log-level",
	"log.format":           "log-format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("converter.executable", types.DefaultExecutable)
	v.SetDefault("converter.mode", string(types.ModeAuto))
	v.SetDefault("converter.plugin", types.DefaultPlugin)
	v.SetDefault("journal.path", types.DefaultJournal)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docbridge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docbridge"))
		}
	}

	viper.SetEnvPrefix("DOCBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes and validates the merged configuration.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg.
func newLogger(cfg types.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
