package checks

import (
	"time"

	"github.com/lucasnoah/defendercheck/internal/report"
)

// Levels are inclusive upper age limits: an age equal to Warn is a warning.
type Levels struct {
	Warn time.Duration `json:"warn"`
	Crit time.Duration `json:"crit"`
}

// ServiceRule describes the expected state of one service.
type ServiceRule struct {
	Expected bool  // true = enabled
	Mismatch State // StateWarn or StateCrit
	Monitor  bool
}

// ScanThresholds configures scan-age monitoring.
type ScanThresholds struct {
	Enabled       bool
	NeverRunState State
	Levels        map[report.ScanKind]*Levels
}

// Thresholds is the per-host evaluation configuration. A nil *Levels means the
// age is reported as a metric without alerting.
type Thresholds struct {
	DateFormat report.DateFormat
	Location   *time.Location
	// ClockSkew is how far in the future a timestamp may lie before it is
	// treated as anomalous.
	ClockSkew  time.Duration
	Signatures map[report.SignatureKind]*Levels
	Scans      ScanThresholds
	Services   map[report.Service]ServiceRule
}

const day = 24 * time.Hour

// DefaultClockSkew tolerates hosts whose clock or zone is up to a day ahead.
const DefaultClockSkew = day

// DefaultThresholds returns the stock configuration: European dates, signature
// limits of 3/7, 2/7 and 5/7 days, scan monitoring off, every service expected
// enabled.
func DefaultThresholds() Thresholds {
	t := Thresholds{
		DateFormat: report.DateEuropean,
		Location:   time.Local,
		ClockSkew:  DefaultClockSkew,
		Signatures: map[report.SignatureKind]*Levels{
			report.SignatureAntispyware: {Warn: 3 * day, Crit: 7 * day},
			report.SignatureAntivirus:   {Warn: 2 * day, Crit: 7 * day},
			report.SignatureNIS:         {Warn: 5 * day, Crit: 7 * day},
		},
		Scans: ScanThresholds{
			Enabled:       false,
			NeverRunState: StateCrit,
			Levels: map[report.ScanKind]*Levels{
				report.ScanFull:  {Warn: 7 * day, Crit: 14 * day},
				report.ScanQuick: {Warn: 2 * day, Crit: 7 * day},
			},
		},
		Services: make(map[report.Service]ServiceRule),
	}
	for _, svc := range report.Services {
		t.Services[svc] = DefaultServiceRule()
	}
	return t
}

// DefaultServiceRule expects the service enabled and warns otherwise.
func DefaultServiceRule() ServiceRule {
	return ServiceRule{Expected: true, Mismatch: StateWarn, Monitor: true}
}

func (t Thresholds) serviceRule(svc report.Service) ServiceRule {
	if r, ok := t.Services[svc]; ok {
		return r
	}
	return DefaultServiceRule()
}
