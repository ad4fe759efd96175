package config

// Config is the top-level configuration structure parsed from defender YAML.
type Config struct {
	// Host names the evaluated machine in run records, metrics and subjects.
	Host       string                    `yaml:"host,omitempty"`
	DateFormat string                    `yaml:"date_format"`
	Timezone   string                    `yaml:"timezone,omitempty"`
	ClockSkew  *Duration                 `yaml:"clock_skew"`
	LogLevel   string                    `yaml:"log_level"`
	Signatures map[string]*AgeLevels     `yaml:"signatures"`
	Scans      ScanConfig                `yaml:"scans"`
	Services   map[string]*ServiceConfig `yaml:"services"`
	Database   DatabaseConfig            `yaml:"database"`
	NATS       NATSConfig                `yaml:"nats"`
	Metrics    MetricsConfig             `yaml:"metrics"`

	// Path is the file the config was loaded from, empty for built-in defaults.
	Path string `yaml:"-"`
}

// AgeLevels are the warn/crit age limits of one signature or scan.
// A zero Warn or Crit is replaced by the built-in default.
type AgeLevels struct {
	Warn Duration `yaml:"warn"`
	Crit Duration `yaml:"crit"`
	// NoLevels reports the age as a metric without ever alerting.
	NoLevels bool `yaml:"no_levels,omitempty"`
}

// ScanConfig controls scan-age monitoring.
type ScanConfig struct {
	Enabled       bool       `yaml:"enabled"`
	NeverRunState string     `yaml:"never_run_state"`
	Full          *AgeLevels `yaml:"full"`
	Quick         *AgeLevels `yaml:"quick"`
}

// ServiceConfig is the expected state of one protection service.
type ServiceConfig struct {
	Expected      string `yaml:"expected"`
	MismatchState string `yaml:"mismatch_state"`
	Monitor       *bool  `yaml:"monitor"`
}

// DatabaseConfig locates the PostgreSQL run log.
type DatabaseConfig struct {
	URL string `yaml:"url,omitempty"`
}

// NATSConfig configures result fan-out.
type NATSConfig struct {
	URL           string `yaml:"url,omitempty"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}
