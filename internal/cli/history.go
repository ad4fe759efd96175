package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/defendercheck/internal/config"
)

var historyCmd = &cobra.Command{
	Use:   "history [host]",
	Short: "Show recorded verdicts for a host, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, _ := cmd.Flags().GetString("item")
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		host, err := hostArg(cfg, args)
		if err != nil {
			return err
		}

		d, cleanup, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		entries, err := d.History(cmd.Context(), host, item, limit)
		if err != nil {
			return fmt.Errorf("get history: %w", err)
		}

		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs found.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-20s %-28s %-8s %-10s %s\n", "EVALUATED", "ITEM", "STATE", "AGE", "SUMMARY")
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 100))
		for _, e := range entries {
			age := "-"
			if e.MetricValue != nil {
				age = formatSeconds(*e.MetricValue)
			}
			fmt.Fprintf(w, "%-20s %-28s %-8s %-10s %s\n",
				e.EvaluatedAt.Local().Format(time.DateTime), e.Item, e.State, age, e.Summary)
		}
		return nil
	},
}

var resultCmd = &cobra.Command{
	Use:   "result [host]",
	Short: "Show the latest recorded run for a host",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if !validFormat(format) {
			return fmt.Errorf("unknown format %q (want text, json or local)", format)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		host, err := hostArg(cfg, args)
		if err != nil {
			return err
		}

		d, cleanup, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := d.LatestRun(cmd.Context(), host)
		if err != nil {
			return fmt.Errorf("get latest run: %w", err)
		}
		if run == nil {
			return fmt.Errorf("no recorded runs for host %q", host)
		}

		if format == formatText {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run:       %s\n", run.ID)
			fmt.Fprintf(w, "Host:      %s\n", run.Host)
			fmt.Fprintf(w, "Evaluated: %s\n", run.EvaluatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(w, "Dates:     %s\n\n", run.DateFormat)
		}
		return render(cmd.OutOrStdout(), format, run)
	},
}

func hostArg(cfg *config.Config, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return resolveHost(cfg)
}

func init() {
	historyCmd.Flags().String("item", "", "only show this item (e.g. signature.antivirus)")
	historyCmd.Flags().Int("limit", 50, "maximum number of rows (0 for all)")

	resultCmd.Flags().StringP("format", "o", formatText, "output format: text, json or local")
}
