package checks

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasnoah/defendercheck/internal/report"
)

const fullReport = `AMEngineVersion                 : 1.1.17800.5
AMProductVersion                : 4.18.2101.9
AMRunningMode                   : EDR Block Mode
AMServiceEnabled                : True
AntispywareEnabled              : True
AntispywareSignatureLastUpdated : 09.10.2021 10:38:19
AntispywareSignatureVersion     : 1.331.1839.0
AntivirusEnabled                : True
AntivirusSignatureLastUpdated   : 07.10.2021 10:38:19
AntivirusSignatureVersion       : 1.331.1840.0
BehaviorMonitorEnabled          : False
FullScanAge                     : 4294967295
FullScanEndTime                 :
IsTamperProtected               : True
IsVirtualMachine                : False
NISEnabled                      : True
NISSignatureLastUpdated         : 01.10.2021 10:38:19
NISSignatureVersion             : 1.331.1841.0
OnAccessProtectionEnabled       : True
QuickScanEndTime                : 09.10.2021 22:38:19
RealTimeProtectionEnabled       : True
`

func utcThresholds() Thresholds {
	th := DefaultThresholds()
	th.Location = time.UTC
	return th
}

func fixedClock() Clock {
	return func() time.Time { return evalNow }
}

func byItem(results []Result) map[string]Result {
	m := make(map[string]Result, len(results))
	for _, r := range results {
		m[r.Item] = r
	}
	return m
}

func items(results []Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Item)
	}
	return out
}

func TestCheck_FullReport(t *testing.T) {
	run := Check("win-01", fullReport, utcThresholds(), fixedClock())

	assert.Equal(t, "win-01", run.Host)
	assert.Equal(t, evalNow, run.EvaluatedAt)
	assert.NotEmpty(t, run.ID)
	assert.Empty(t, run.Issues)

	assert.Equal(t, []string{
		"signature.antispyware", "signature.antivirus", "signature.nis",
		"service.am_service", "service.behavior_monitor", "service.antispyware",
		"service.antivirus", "service.nis", "service.realtime_protection",
		"service.onaccess_protection",
	}, items(run.Results))

	r := byItem(run.Results)
	assert.Equal(t, StateOK, r["signature.antispyware"].State)
	assert.Equal(t, StateWarn, r["signature.antivirus"].State)
	require.NotNil(t, r["signature.antivirus"].Metric)
	assert.Equal(t, 259200.0, r["signature.antivirus"].Metric.Value)
	assert.Equal(t, StateCrit, r["signature.nis"].State, "9 days old NIS signature")

	bm := r["service.behavior_monitor"]
	assert.Equal(t, StateWarn, bm.State)
	assert.Equal(t, `service "Behavior Monitor" is disabled (expected enabled)`, bm.Summary)
	assert.Equal(t, StateOK, r["service.nis"].State)
}

func TestCheck_SignatureDetails(t *testing.T) {
	run := Check("win-01", fullReport, utcThresholds(), fixedClock())
	details := byItem(run.Results)["signature.antivirus"].Details

	assert.Equal(t, "Versions - AM Engine: 1.1.17800.5, AM Product: 4.18.2101.9, NIS Sig: 1.331.1841.0, AV Sig: 1.331.1840.0, AS Sig: 1.331.1839.0\n"+
		"Running Mode: EDR Block Mode | Tamper Protected: Yes | Virtual Machine: No", details)

	for _, res := range run.Results {
		if strings.HasPrefix(res.Item, "service.") {
			assert.Empty(t, res.Details, res.Item)
		}
	}
}

func TestCheck_EmptyReport(t *testing.T) {
	th := utcThresholds()
	th.Scans.Enabled = true
	run := Check("win-01", "", th, fixedClock())

	require.Len(t, run.Results, 3+2+7)
	for _, res := range run.Results {
		assert.Equal(t, StateUnknown, res.State, res.Item)
		assert.Nil(t, res.Metric, res.Item)
	}
	assert.Empty(t, run.Metrics())
}

func TestCheck_CorruptReportDegradesToUnknown(t *testing.T) {
	run := Check("win-01", "AntivirusSignatureLastUpdated : 99.99.2021 99:99:99\nAMServiceEnabled : maybe\n\x00\x01garbage", utcThresholds(), fixedClock())
	r := byItem(run.Results)
	assert.Equal(t, StateUnknown, r["signature.antivirus"].State)
	assert.Equal(t, StateUnknown, r["service.am_service"].State)
	assert.Len(t, run.Issues, 2)
}

func TestCheck_ScansDisabledOmitsScanResults(t *testing.T) {
	run := Check("win-01", "AntivirusEnabled : True", utcThresholds(), fixedClock())
	for _, res := range run.Results {
		assert.False(t, strings.HasPrefix(res.Item, "scan."), "unexpected %s", res.Item)
	}
	for _, m := range run.Metrics() {
		assert.NotContains(t, []string{"full_scan_age", "quick_scan_age"}, m.Name)
	}
}

func TestCheck_ScansEnabled(t *testing.T) {
	th := utcThresholds()
	th.Scans.Enabled = true
	run := Check("win-01", fullReport, th, fixedClock())
	r := byItem(run.Results)

	full := r["scan.full"]
	assert.Equal(t, StateCrit, full.State)
	assert.Equal(t, "Full Scan has never been executed (warn/crit at 7 days 0 hours/14 days 0 hours)", full.Summary)
	require.NotNil(t, full.Metric)
	assert.Equal(t, 0.0, full.Metric.Value)

	quick := r["scan.quick"]
	assert.Equal(t, StateOK, quick.State)
	assert.Equal(t, "Last Quick Scan: 12 hours 0 minutes", quick.Summary)
	require.NotNil(t, quick.Metric)
	assert.Equal(t, "quick_scan_age", quick.Metric.Name)
	assert.Equal(t, 43200.0, quick.Metric.Value)

	assert.Equal(t, []string{
		"signature.antispyware", "signature.antivirus", "signature.nis",
		"scan.full", "scan.quick",
	}, items(run.Results)[:5])
}

func TestCheck_NeverRunStateConfigurable(t *testing.T) {
	th := utcThresholds()
	th.Scans.Enabled = true
	th.Scans.NeverRunState = StateWarn
	run := Check("win-01", fullReport, th, fixedClock())
	assert.Equal(t, StateWarn, byItem(run.Results)["scan.full"].State)
}

func TestCheck_ServiceSubsetAndOverrides(t *testing.T) {
	th := utcThresholds()
	for _, svc := range report.Services {
		rule := th.Services[svc]
		rule.Monitor = false
		th.Services[svc] = rule
	}
	th.Services[report.ServiceBehaviorMonitor] = ServiceRule{Expected: true, Mismatch: StateCrit, Monitor: true}
	th.Services[report.ServiceNIS] = ServiceRule{Expected: false, Mismatch: StateWarn, Monitor: true}

	run := Check("win-01", fullReport, th, fixedClock())
	assert.Equal(t, []string{
		"signature.antispyware", "signature.antivirus", "signature.nis",
		"service.behavior_monitor", "service.nis",
	}, items(run.Results))

	r := byItem(run.Results)
	assert.Equal(t, StateCrit, r["service.behavior_monitor"].State)
	assert.Equal(t, StateWarn, r["service.nis"].State)
	assert.Equal(t, `service "NIS" is enabled (expected disabled)`, r["service.nis"].Summary)
}

func TestCheck_ClockReadOnce(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		return evalNow.Add(time.Duration(calls) * time.Hour)
	}
	run := Check("win-01", fullReport, utcThresholds(), clock)
	assert.Equal(t, 1, calls)
	assert.Equal(t, evalNow.Add(time.Hour), run.EvaluatedAt)
}

func TestCheck_DateFormatMismatchIsUnknown(t *testing.T) {
	th := utcThresholds()
	th.DateFormat = report.DateISO
	run := Check("win-01", fullReport, th, fixedClock())
	r := byItem(run.Results)
	assert.Equal(t, StateUnknown, r["signature.antivirus"].State)
	assert.Equal(t, StateOK, r["service.am_service"].State, "services do not depend on the date format")
}

func TestRun_JSON(t *testing.T) {
	run := Check("win-01", fullReport, utcThresholds(), fixedClock())
	out, err := run.JSON()
	require.NoError(t, err)

	var decoded struct {
		Host       string `json:"host"`
		DateFormat string `json:"date_format"`
		Results    []struct {
			Item  string `json:"item"`
			State string `json:"state"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "win-01", decoded.Host)
	assert.Equal(t, "eu", decoded.DateFormat)
	require.NotEmpty(t, decoded.Results)
	assert.Equal(t, "signature.antispyware", decoded.Results[0].Item)
	assert.Equal(t, "OK", decoded.Results[0].State)
}

func TestRun_Count(t *testing.T) {
	run := Check("win-01", fullReport, utcThresholds(), fixedClock())
	assert.Equal(t, 1, run.Count(StateCrit))
	assert.Equal(t, 2, run.Count(StateWarn))
	assert.Equal(t, len(run.Results), run.Count(StateOK)+run.Count(StateWarn)+run.Count(StateCrit)+run.Count(StateUnknown))
}

func TestResult_LocalLine(t *testing.T) {
	at := time.Date(2021, 10, 7, 10, 38, 19, 0, time.UTC)
	res := avCheck().Evaluate(at, true, evalNow, DefaultClockSkew)
	assert.Equal(t,
		`1 "Defender AntiVirus signature" antivirus_sig_age=259200;172800;604800 AntiVirus signature age: 3 days 0 hours (warn/crit at 2 days 0 hours/7 days 0 hours)`,
		res.LocalLine("Defender"))

	svc := EvaluateService(report.ServiceNIS, DefaultServiceRule(), true, true)
	assert.Equal(t, `0 "NIS" - service "NIS" is enabled`, svc.LocalLine(""))
}

func TestEvaluateService(t *testing.T) {
	rule := DefaultServiceRule()

	res := EvaluateService(report.ServiceBehaviorMonitor, rule, false, true)
	assert.Equal(t, StateWarn, res.State)
	assert.Equal(t, "service.behavior_monitor", res.Item)

	res = EvaluateService(report.ServiceBehaviorMonitor, rule, true, true)
	assert.Equal(t, StateOK, res.State)

	res = EvaluateService(report.ServiceBehaviorMonitor, rule, false, false)
	assert.Equal(t, StateUnknown, res.State)
	assert.Equal(t, `service "Behavior Monitor" state is unknown`, res.Summary)

	rule.Mismatch = StateOK
	res = EvaluateService(report.ServiceAM, rule, false, true)
	assert.Equal(t, StateWarn, res.State, "invalid mismatch severity falls back to warn")
}

func TestParseState(t *testing.T) {
	for in, want := range map[string]State{"ok": StateOK, "WARN": StateWarn, "warning": StateWarn, "crit": StateCrit, "Critical": StateCrit, "unknown": StateUnknown} {
		got, err := ParseState(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseState("fatal")
	assert.Error(t, err)
}
