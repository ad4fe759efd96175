package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/lucasnoah/defendercheck/internal/checks"
	"github.com/lucasnoah/defendercheck/internal/report"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if _, err := report.ParseDateFormat(cfg.DateFormat); err != nil {
		errs = append(errs, ValidationError{
			Field:   "date_format",
			Message: fmt.Sprintf("unknown format %q (want eu, us or iso)", cfg.DateFormat),
		})
	}
	if _, err := location(cfg.Timezone); err != nil {
		errs = append(errs, ValidationError{Field: "timezone", Message: err.Error()})
	}
	if cfg.ClockSkew != nil && *cfg.ClockSkew < 0 {
		errs = append(errs, ValidationError{Field: "clock_skew", Message: "must not be negative"})
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", cfg.LogLevel)})
	}

	for _, key := range slices.Sorted(maps.Keys(cfg.Signatures)) {
		l := cfg.Signatures[key]
		field := "signatures." + key
		if !isSignatureKey(key) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "unknown signature (want antispyware, antivirus or nis)",
			})
			continue
		}
		errs = append(errs, validateLevels(field, l)...)
	}

	if _, err := checks.ParseState(cfg.Scans.NeverRunState); err != nil {
		errs = append(errs, ValidationError{
			Field:   "scans.never_run_state",
			Message: fmt.Sprintf("invalid state %q (want ok, warn, crit or unknown)", cfg.Scans.NeverRunState),
		})
	}
	errs = append(errs, validateLevels("scans.full", cfg.Scans.Full)...)
	errs = append(errs, validateLevels("scans.quick", cfg.Scans.Quick)...)

	for _, key := range slices.Sorted(maps.Keys(cfg.Services)) {
		sc := cfg.Services[key]
		field := "services." + key
		if _, ok := report.ServiceByKey(key); !ok {
			errs = append(errs, ValidationError{Field: field, Message: "unknown service"})
			continue
		}
		if sc == nil {
			continue
		}
		if _, err := expectedEnabled(sc.Expected); err != nil {
			errs = append(errs, ValidationError{Field: field + ".expected", Message: err.Error()})
		}
		if _, err := mismatchState(sc.MismatchState); err != nil {
			errs = append(errs, ValidationError{Field: field + ".mismatch_state", Message: err.Error()})
		}
	}

	return errs
}

func validateLevels(field string, l *AgeLevels) []ValidationError {
	if l == nil {
		return nil
	}
	var errs []ValidationError
	if l.Warn < 0 {
		errs = append(errs, ValidationError{Field: field + ".warn", Message: "must not be negative"})
	}
	if l.Crit < 0 {
		errs = append(errs, ValidationError{Field: field + ".crit", Message: "must not be negative"})
	}
	if !l.NoLevels && l.Warn > l.Crit {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("warn (%s) is greater than crit (%s)", l.Warn, l.Crit),
		})
	}
	return errs
}

func isSignatureKey(key string) bool {
	for _, kind := range report.SignatureKinds {
		if kind.Key() == key {
			return true
		}
	}
	return false
}

func expectedEnabled(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "enabled":
		return true, nil
	case "disabled":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q (want enabled or disabled)", s)
}

func mismatchState(s string) (checks.State, error) {
	st, err := checks.ParseState(s)
	if err != nil || (st != checks.StateWarn && st != checks.StateCrit) {
		return 0, fmt.Errorf("invalid state %q (want warn or crit)", s)
	}
	return st, nil
}

func location(name string) (*time.Location, error) {
	switch strings.ToLower(name) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", name)
	}
	return loc, nil
}
