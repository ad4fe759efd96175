package config

import (
	"errors"

	"github.com/lucasnoah/defendercheck/internal/checks"
	"github.com/lucasnoah/defendercheck/internal/report"
)

// Thresholds converts the configuration into evaluation thresholds. An invalid
// configuration yields the joined validation errors.
func (c *Config) Thresholds() (checks.Thresholds, error) {
	if verrs := Validate(c); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return checks.Thresholds{}, errors.Join(errs...)
	}

	th := checks.DefaultThresholds()
	th.DateFormat, _ = report.ParseDateFormat(c.DateFormat)
	th.Location, _ = location(c.Timezone)
	if c.ClockSkew != nil {
		th.ClockSkew = c.ClockSkew.D()
	}

	for _, kind := range report.SignatureKinds {
		if l, ok := c.Signatures[kind.Key()]; ok {
			th.Signatures[kind] = l.levels()
		}
	}

	th.Scans.Enabled = c.Scans.Enabled
	th.Scans.NeverRunState, _ = checks.ParseState(c.Scans.NeverRunState)
	if c.Scans.Full != nil {
		th.Scans.Levels[report.ScanFull] = c.Scans.Full.levels()
	}
	if c.Scans.Quick != nil {
		th.Scans.Levels[report.ScanQuick] = c.Scans.Quick.levels()
	}

	for _, svc := range report.Services {
		sc := c.Services[svc.Key()]
		if sc == nil {
			continue
		}
		rule := checks.DefaultServiceRule()
		if sc.Expected != "" {
			rule.Expected, _ = expectedEnabled(sc.Expected)
		}
		if sc.MismatchState != "" {
			rule.Mismatch, _ = mismatchState(sc.MismatchState)
		}
		if sc.Monitor != nil {
			rule.Monitor = *sc.Monitor
		}
		th.Services[svc] = rule
	}

	return th, nil
}

func (l *AgeLevels) levels() *checks.Levels {
	if l == nil || l.NoLevels {
		return nil
	}
	return &checks.Levels{Warn: l.Warn.D(), Crit: l.Crit.D()}
}
