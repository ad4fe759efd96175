package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasnoah/defendercheck/internal/config"
	"github.com/lucasnoah/defendercheck/internal/logging"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var (
	configFile string
	logLevel   string

	logger = zap.NewNop()
	// now is the evaluation clock.
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "defender",
	Short: "defender — evaluate Windows Defender status reports",
	Long: `defender turns the status report a Windows agent collects from
Get-MpComputerStatus into per-item verdicts: signature freshness, scan
freshness and the state of every protection service.

Verdicts are printed as text, JSON or monitoring local-check lines and can be
recorded to PostgreSQL, exported as Prometheus gauges and published to NATS.
Settings are read from ./defender.yaml or ~/.defender/config.yaml; a .env file
in the working directory is loaded first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		level := logLevel
		if level == "" {
			level = os.Getenv(config.EnvLogLevel)
		}
		logger = logging.New(level, cmd.ErrOrStderr())
		return nil
	},
}

func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

// loadConfig loads --config or the default locations. Without an explicit
// --log-level the configured level takes over the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if logLevel == "" {
		logger = logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	}
	logger.Debug("config loaded", zap.String("path", cfg.Path))
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to defender config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
}
