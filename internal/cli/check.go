package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasnoah/defendercheck/internal/checks"
	"github.com/lucasnoah/defendercheck/internal/config"
	"github.com/lucasnoah/defendercheck/internal/metrics"
	"github.com/lucasnoah/defendercheck/internal/publish"
)

// sinkTimeout bounds recording, exporting and publishing a run.
const sinkTimeout = 30 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check [report-file]",
	Short: "Evaluate a Defender status report",
	Long: `Evaluate a Defender status report read from report-file, or from stdin
when no file or "-" is given. Every verdict is reported; the exit status is
non-zero only when the report cannot be read or a sink fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if !validFormat(format) {
			return fmt.Errorf("unknown format %q (want text, json or local)", format)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyCheckFlags(cmd, cfg)

		th, err := cfg.Thresholds()
		if err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}

		text, err := readReport(cmd, args)
		if err != nil {
			return err
		}

		host, err := resolveHost(cfg)
		if err != nil {
			return err
		}

		run := checks.Check(host, text, th, now)
		for _, is := range run.Issues {
			logger.Debug("unparseable field", zap.String("field", is.Field), zap.String("value", is.Value), zap.String("error", is.Err))
		}
		if len(run.Unknown) > 0 {
			logger.Debug("unrecognized fields", zap.Strings("fields", run.Unknown))
		}

		if err := render(cmd.OutOrStdout(), format, run); err != nil {
			return err
		}

		record, _ := cmd.Flags().GetBool("record")
		sinkErr := runSinks(cmd.Context(), cfg, run, record)

		logger.Info("run evaluated",
			zap.String("run_id", run.ID),
			zap.String("host", run.Host),
			zap.Int("ok", run.Count(checks.StateOK)),
			zap.Int("warn", run.Count(checks.StateWarn)),
			zap.Int("crit", run.Count(checks.StateCrit)),
			zap.Int("unknown", run.Count(checks.StateUnknown)),
		)
		return sinkErr
	},
}

// applyCheckFlags lets command-line flags override the loaded config.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("date-format") {
		cfg.DateFormat, _ = flags.GetString("date-format")
	}
	if flags.Changed("timezone") {
		cfg.Timezone, _ = flags.GetString("timezone")
	}
	if flags.Changed("scans") {
		cfg.Scans.Enabled, _ = flags.GetBool("scans")
	}
	if flags.Changed("textfile") {
		cfg.Metrics.Textfile, _ = flags.GetString("textfile")
	}
	if flags.Changed("nats-url") {
		cfg.NATS.URL, _ = flags.GetString("nats-url")
	}
	if flags.Changed("subject-prefix") {
		cfg.NATS.SubjectPrefix, _ = flags.GetString("subject-prefix")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
}

func readReport(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read report from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return string(data), nil
}

func resolveHost(cfg *config.Config) (string, error) {
	if cfg.Host != "" {
		return cfg.Host, nil
	}
	h, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("determine host name (use --host): %w", err)
	}
	return h, nil
}

// runSinks exports, records and publishes run. Every sink is attempted; the
// failures are logged and returned together.
func runSinks(ctx context.Context, cfg *config.Config, run *checks.Run, record bool) error {
	ctx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()

	var errs []error
	fail := func(sink string, err error) {
		logger.Error("sink failed", zap.String("sink", sink), zap.String("run_id", run.ID), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", sink, err))
	}

	if path := cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path, run); err != nil {
			fail("textfile", err)
		} else {
			logger.Debug("metrics written", zap.String("path", path))
		}
	}

	if record {
		if err := recordRun(ctx, cfg, run); err != nil {
			fail("database", err)
		}
	}

	if cfg.NATS.URL != "" {
		if err := publishRun(ctx, cfg, run); err != nil {
			fail("nats", err)
		}
	}

	return errors.Join(errs...)
}

func recordRun(ctx context.Context, cfg *config.Config, run *checks.Run) error {
	d, cleanup, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return d.LogRun(ctx, run)
}

func publishRun(ctx context.Context, cfg *config.Config, run *checks.Run) error {
	p, err := publish.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
	if err != nil {
		return err
	}
	defer p.Close()
	return p.Publish(ctx, run)
}

func init() {
	checkCmd.Flags().StringP("format", "o", formatText, "output format: text, json or local")
	checkCmd.Flags().String("host", "", "host name recorded with the run (default: config host, then the local host name)")
	checkCmd.Flags().String("date-format", "", "date format of the report: eu, us or iso")
	checkCmd.Flags().String("timezone", "", "IANA zone the report's timestamps are in")
	checkCmd.Flags().Bool("scans", false, "evaluate full and quick scan age")
	checkCmd.Flags().Bool("record", false, "record the run in the database")
	checkCmd.Flags().String("textfile", "", "write Prometheus gauges to this file")
	checkCmd.Flags().String("nats-url", "", "publish the run to this NATS server")
	checkCmd.Flags().String("subject-prefix", "", "NATS subject prefix")
}
