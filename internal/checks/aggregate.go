package checks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lucasnoah/defendercheck/internal/report"
)

// Clock returns the evaluation instant. It is called once per run.
type Clock func() time.Time

// Evaluate turns a parsed status into one Result per monitored item:
// the three signatures, the two scans when scan monitoring is enabled, then
// every monitored service. All ages are measured against now.
func Evaluate(status report.ParsedStatus, th Thresholds, now time.Time) []Result {
	var results []Result
	details := statusDetails(status)

	for _, kind := range report.SignatureKinds {
		at, known := status.SignatureUpdated(kind)
		c := AgeCheck{
			Item:     "signature." + kind.Key(),
			Name:     kind.Label(),
			AgeLabel: kind.Label() + " age",
			Metric:   kind.MetricName(),
			Levels:   th.Signatures[kind],
		}
		res := c.Evaluate(at, known, now, th.ClockSkew)
		res.Details = details
		results = append(results, res)
	}

	if th.Scans.Enabled {
		for _, kind := range report.ScanKinds {
			c := AgeCheck{
				Item:     "scan." + kind.Key(),
				Name:     kind.Label(),
				AgeLabel: "Last " + kind.Label(),
				Metric:   kind.MetricName(),
				Levels:   th.Scans.Levels[kind],
			}
			if status.ScanNeverRun(kind) {
				results = append(results, c.NeverRun(th.Scans.NeverRunState))
				continue
			}
			at, known := status.ScanFinished(kind)
			results = append(results, c.Evaluate(at, known, now, th.ClockSkew))
		}
	}

	for _, svc := range report.Services {
		rule := th.serviceRule(svc)
		if !rule.Monitor {
			continue
		}
		enabled, known := status.ServiceEnabled(svc)
		results = append(results, EvaluateService(svc, rule, enabled, known))
	}

	return results
}

// statusDetails renders version and mode information attached to the signature results.
func statusDetails(s report.ParsedStatus) string {
	var versions []string
	add := func(label string, v string, ok bool) {
		if ok && v != "" {
			versions = append(versions, fmt.Sprintf("%s: %s", label, v))
		}
	}
	v, ok := s.EngineVersion()
	add("AM Engine", v, ok)
	v, ok = s.ProductVersion()
	add("AM Product", v, ok)
	v, ok = s.SignatureVersion(report.SignatureNIS)
	add("NIS Sig", v, ok)
	v, ok = s.SignatureVersion(report.SignatureAntivirus)
	add("AV Sig", v, ok)
	v, ok = s.SignatureVersion(report.SignatureAntispyware)
	add("AS Sig", v, ok)

	var info []string
	if mode, ok := s.RunningMode(); ok {
		info = append(info, "Running Mode: "+mode)
	}
	if tp, ok := s.TamperProtected(); ok {
		info = append(info, "Tamper Protected: "+yesNo(tp))
	} else if src, ok := s.TamperProtectionSource(); ok {
		info = append(info, "Tamper Protection Source: "+src)
	}
	if vm, ok := s.VirtualMachine(); ok {
		info = append(info, "Virtual Machine: "+yesNo(vm))
	}

	var lines []string
	if len(versions) > 0 {
		lines = append(lines, "Versions - "+strings.Join(versions, ", "))
	}
	if len(info) > 0 {
		lines = append(lines, strings.Join(info, " | "))
	}
	return strings.Join(lines, "\n")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Run is one evaluation of one host's report.
type Run struct {
	ID          string            `json:"id"`
	Host        string            `json:"host"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
	DateFormat  report.DateFormat `json:"date_format"`
	Results     []Result          `json:"results"`
	Issues      []report.Issue    `json:"issues,omitempty"`
	Unknown     []string          `json:"unknown_fields,omitempty"`
}

// Check decodes text, projects it under the configured date format and
// evaluates it. The clock is read exactly once.
func Check(host, text string, th Thresholds, clock Clock) *Run {
	if clock == nil {
		clock = time.Now
	}
	now := clock()

	raw := report.Decode(text)
	status := report.Project(raw, th.DateFormat, th.Location)

	return &Run{
		ID:          uuid.NewString(),
		Host:        host,
		EvaluatedAt: now,
		DateFormat:  th.DateFormat,
		Results:     Evaluate(status, th, now),
		Issues:      status.Issues(),
		Unknown:     raw.Unknown(),
	}
}

// Metrics returns the metrics of every result that carries one, in result order.
func (r *Run) Metrics() []Metric {
	var out []Metric
	for _, res := range r.Results {
		if res.Metric != nil {
			out = append(out, *res.Metric)
		}
	}
	return out
}

// Count returns how many results have the given state.
func (r *Run) Count(s State) int {
	n := 0
	for _, res := range r.Results {
		if res.State == s {
			n++
		}
	}
	return n
}

// JSON returns the run as indented JSON.
func (r *Run) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
