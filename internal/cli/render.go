package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/lucasnoah/defendercheck/internal/checks"
)

// Output formats of check and result.
const (
	formatText  = "text"
	formatJSON  = "json"
	formatLocal = "local"
)

// localPrefix starts every local-check service name.
const localPrefix = "Defender"

func validFormat(f string) bool {
	switch f {
	case formatText, formatJSON, formatLocal:
		return true
	}
	return false
}

func render(w io.Writer, format string, run *checks.Run) error {
	switch format {
	case formatJSON:
		out, err := run.JSON()
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}
		fmt.Fprintln(w, out)
	case formatLocal:
		for _, res := range run.Results {
			fmt.Fprintln(w, res.LocalLine(localPrefix))
		}
	default:
		renderText(w, run)
	}
	return nil
}

func renderText(w io.Writer, run *checks.Run) {
	var details string
	for _, res := range run.Results {
		extra := ""
		if res.Metric != nil {
			extra = fmt.Sprintf(" [%s=%s]", res.Metric.Name, formatSeconds(res.Metric.Value))
		}
		fmt.Fprintf(w, "[%s] %s — %s%s\n", res.State, res.Label, res.Summary, extra)
		if details == "" {
			details = res.Details
		}
	}

	if details != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(details, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	if len(run.Issues) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Unparseable fields:")
		for _, is := range run.Issues {
			fmt.Fprintf(w, "  - %s\n", is)
		}
	}

	fmt.Fprintf(w, "\n%s: %d items, %d OK, %d WARN, %d CRIT, %d UNKNOWN\n",
		run.Host, len(run.Results),
		run.Count(checks.StateOK), run.Count(checks.StateWarn),
		run.Count(checks.StateCrit), run.Count(checks.StateUnknown))
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.0fs", v)
}
