package checks

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Metric is a named numeric value for graphing, in seconds.
type Metric struct {
	Name  string   `json:"name"`
	Value float64  `json:"value"`
	Warn  *float64 `json:"warn,omitempty"`
	Crit  *float64 `json:"crit,omitempty"`
}

// Result is the verdict for one monitored item.
type Result struct {
	Item    string  `json:"item"`
	Label   string  `json:"label"`
	State   State   `json:"state"`
	Summary string  `json:"summary"`
	Details string  `json:"details,omitempty"`
	Metric  *Metric `json:"metric,omitempty"`
	// Future is set when the reported timestamp lies after the evaluation instant.
	Future bool `json:"future,omitempty"`
}

// LocalLine renders the result as a monitoring-host local check line:
//
//	<state> "<service>" <metric=value;warn;crit|-> <summary>
func (r Result) LocalLine(prefix string) string {
	perf := "-"
	if r.Metric != nil {
		perf = fmt.Sprintf("%s=%s;%s;%s", r.Metric.Name, formatFloat(&r.Metric.Value),
			formatFloat(r.Metric.Warn), formatFloat(r.Metric.Crit))
	}
	name := r.Label
	if prefix != "" {
		name = prefix + " " + r.Label
	}
	summary := r.Summary
	if r.Details != "" {
		summary += `\n` + strings.ReplaceAll(r.Details, "\n", `\n`)
	}
	return fmt.Sprintf("%d %q %s %s", int(r.State), name, perf, summary)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// RenderTimespan formats a duration the way monitoring UIs show ages,
// with the two most significant units ("3 days 0 hours").
func RenderTimespan(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	secs := int64(d / time.Second)
	switch {
	case secs < 60:
		return plural(secs, "second")
	case secs < 3600:
		return plural(secs/60, "minute") + " " + plural(secs%60, "second")
	case secs < 86400:
		return plural(secs/3600, "hour") + " " + plural(secs%3600/60, "minute")
	case secs < 365*86400:
		return plural(secs/86400, "day") + " " + plural(secs%86400/3600, "hour")
	}
	return plural(secs/(365*86400), "year") + " " + plural(secs%(365*86400)/86400, "day")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
