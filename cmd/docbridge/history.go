// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbridge/internal/journal"
	"github.com/pdiddy/docbridge/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversions",
	Long: `History prints finished conversions from the journal database, newest
first. Use --json or --yaml for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().String("status", "", "filter by status: converted or failed")
	historyCmd.Flags().String("source", "", "filter by source path")
	historyCmd.Flags().Bool("json", false, "output entries as JSON")
	historyCmd.Flags().Bool("yaml", false, "output entries as YAML")
	historyCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return fmt.Errorf("no journal configured")
	}

	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	source, _ := cmd.Flags().GetString("source")
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")

	opts := journal.QueryOptions{
		Status: types.ConversionStatus(status),
		Source: source,
		Limit:  limit,
	}
	if err := validateStatus(opts.Status); err != nil {
		return err
	}

	store, err := journal.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch {
	case asJSON:
		return journal.WriteJSON(w, records)
	case asYAML:
		return journal.WriteYAML(w, records)
	default:
		return writeTable(w, records)
	}
}

func validateStatus(s types.ConversionStatus) error {
	switch s {
	case "", types.ConversionDone, types.ConversionFailed:
		return nil
	}
	return fmt.Errorf("invalid status %q (expected %s or %s)", s, types.ConversionDone, types.ConversionFailed)
}

func writeTable(w io.Writer, records []types.ConversionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No conversions recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tSTATUS\tMODE\tSOURCE\tDESTINATION\tDURATION\tERROR")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.FinishedAt.Local().Format(time.DateTime),
			r.Status, r.Mode, r.Source, r.Destination,
			r.Duration().Round(time.Millisecond), r.Error)
	}
	return tw.Flush()
}
