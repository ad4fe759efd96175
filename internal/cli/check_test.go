package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func utcConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	return writeFile(t, dir, "defender.yaml", "timezone: UTC\nhost: win-01\n"+extra)
}

func TestCheck_TextOutput(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "")
	report := writeFile(t, dir, "status.txt", sampleReport)

	stdout, _, err := executeCommandSplit("", "check", "--config", cfg, report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"[WARN] AntiVirus signature — AntiVirus signature age: 3 days 0 hours (warn/crit at 2 days 0 hours/7 days 0 hours) [antivirus_sig_age=259200s]",
		`[WARN] Behavior Monitor — service "Behavior Monitor" is disabled (expected enabled)`,
		"[OK] NIS signature",
		"Versions - AM Engine: 1.1.17800.5",
		"win-01: 10 items, 8 OK, 2 WARN, 0 CRIT, 0 UNKNOWN",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestCheck_WarnDoesNotFail(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "signatures:\n  antivirus:\n    warn: 1h\n    crit: 2h\n")
	report := writeFile(t, dir, "status.txt", sampleReport)

	stdout, _, err := executeCommandSplit("", "check", "--config", cfg, report)
	if err != nil {
		t.Fatalf("CRIT verdicts must not fail the command: %v", err)
	}
	if !strings.Contains(stdout, "[CRIT] AntiVirus signature") {
		t.Errorf("expected CRIT verdict:\n%s", stdout)
	}
}

func TestCheck_JSONFromStdin(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "")

	stdout, _, err := executeCommandSplit(sampleReport, "check", "--config", cfg, "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var run struct {
		ID      string `json:"id"`
		Host    string `json:"host"`
		Results []struct {
			Item  string `json:"item"`
			State string `json:"state"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(stdout), &run); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if run.Host != "win-01" || run.ID == "" {
		t.Errorf("run = %+v", run)
	}
	if len(run.Results) != 10 {
		t.Errorf("len(Results) = %d, want 10", len(run.Results))
	}
}

func TestCheck_LocalOutput(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "")

	stdout, _, err := executeCommandSplit(sampleReport, "check", "--config", cfg, "-o", "local", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 local lines, got %d:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[1], `1 "Defender AntiVirus signature" antivirus_sig_age=259200;172800;604800 `) {
		t.Errorf("line = %q", lines[1])
	}
}

func TestCheck_FlagOverrides(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "")

	stdout, _, err := executeCommandSplit(sampleReport, "check", "--config", cfg,
		"--date-format", "iso", "--host", "other", "--scans")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "[UNKNOWN] AntiVirus signature — Age of AntiVirus signature is unknown") {
		t.Errorf("iso date format should not read european dates:\n%s", stdout)
	}
	if !strings.Contains(stdout, "[UNKNOWN] Full Scan") {
		t.Errorf("--scans should add scan results:\n%s", stdout)
	}
	if !strings.Contains(stdout, "other: 12 items") {
		t.Errorf("--host not applied:\n%s", stdout)
	}
}

func TestCheck_UnparseableFieldsListed(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "")

	stdout, stderr, err := executeCommandSplit("AntivirusSignatureLastUpdated : 31.02.2021 10:00:00\n",
		"check", "--config", cfg, "--log-level", "debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Unparseable fields:") || !strings.Contains(stdout, "AntivirusSignatureLastUpdated") {
		t.Errorf("expected issue listing:\n%s", stdout)
	}
	if !strings.Contains(stderr, `"msg":"unparseable field"`) {
		t.Errorf("expected debug log of the issue, got %q", stderr)
	}
	if !strings.Contains(stderr, `"msg":"run evaluated"`) {
		t.Errorf("expected run summary log, got %q", stderr)
	}
}

func TestCheck_InvalidFormat(t *testing.T) {
	setupCLI(t)
	_, _, err := executeCommandSplit(sampleReport, "check", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("err = %v, want unknown format", err)
	}
}

func TestCheck_InvalidConfigRefused(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "signatures:\n  antivirus:\n    warn: 9d\n    crit: 1d\n")

	stdout, _, err := executeCommandSplit(sampleReport, "check", "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "signatures.antivirus") {
		t.Errorf("err = %v, want validation error", err)
	}
	if stdout != "" {
		t.Errorf("no verdicts expected with an invalid config, got %q", stdout)
	}
}

func TestCheck_MissingReportFile(t *testing.T) {
	dir := setupCLI(t)
	_, _, err := executeCommandSplit("", "check", "--config", utcConfig(t, dir, ""), filepath.Join(dir, "missing.txt"))
	if err == nil || !strings.Contains(err.Error(), "read report") {
		t.Errorf("err = %v, want read error", err)
	}
}

func TestCheck_Textfile(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "")
	path := filepath.Join(dir, "prom", "defender.prom")

	_, _, err := executeCommandSplit(sampleReport, "check", "--config", cfg, "--textfile", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("textfile not written: %v", err)
	}
	if !strings.Contains(string(data), `defender_age_seconds{host="win-01",metric="antivirus_sig_age"} 259200`) {
		t.Errorf("textfile content:\n%s", data)
	}
}

func TestCheck_RecordWithoutDatabaseFails(t *testing.T) {
	dir := setupCLI(t)
	cfg := utcConfig(t, dir, "")

	stdout, stderr, err := executeCommandSplit(sampleReport, "check", "--config", cfg, "--record")
	if err == nil || !strings.Contains(err.Error(), "database") {
		t.Fatalf("err = %v, want database sink error", err)
	}
	if !strings.Contains(stdout, "win-01: 10 items") {
		t.Errorf("verdicts must be printed before sinks run:\n%s", stdout)
	}
	if !strings.Contains(stderr, `"msg":"sink failed"`) {
		t.Errorf("expected sink failure log, got %q", stderr)
	}
}
