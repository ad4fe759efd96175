package report

import (
	"testing"
	"time"
)

const sampleReport = `<<<windows_defender:sep(58)>>>
AMEngineVersion                 : 1.1.17800.5
AMProductVersion                : 4.18.2101.9
AMRunningMode                   : EDR Block Mode
AMServiceEnabled                : True
AMServiceVersion                : 4.18.2101.9
AntispywareEnabled              : True
AntispywareSignatureAge         : 0
AntispywareSignatureLastUpdated : 25.02.2021 22:37:07
AntispywareSignatureVersion     : 1.331.1839.0
AntivirusEnabled                : True
AntivirusSignatureAge           : 0
AntivirusSignatureLastUpdated   : 25.02.2021 22:37:08
AntivirusSignatureVersion       : 1.331.1839.0
BehaviorMonitorEnabled          : True
ComputerID                      : xyz
ComputerState                   : 0
FullScanAge                     : 4294967295
FullScanEndTime                 :
FullScanStartTime               :
IoavProtectionEnabled           : False
IsTamperProtected               : False
IsVirtualMachine                : True
LastFullScanSource              : 0
LastQuickScanSource             : 2
NISEnabled                      : False
NISEngineVersion                : 1.1.17800.5
NISSignatureAge                 : 0
NISSignatureLastUpdated         : 25.02.2021 22:37:08
NISSignatureVersion             : 1.331.1839.0
OnAccessProtectionEnabled       : False
QuickScanAge                    : 701
QuickScanEndTime                : 28.03.2019 12:13:06
QuickScanStartTime              : 28.03.2019 12:04:24
RealTimeProtectionEnabled       : True
RealTimeScanDirection           : 0
PSComputerName                  :
`

func TestDecode_TimestampKeepsColons(t *testing.T) {
	r := Decode("AntivirusSignatureLastUpdated   : 07.10.2021 10:38:19")
	v, ok := r.Lookup(FieldAntivirusSignatureLastUpdated)
	if !ok {
		t.Fatal("expected AntivirusSignatureLastUpdated to be decoded")
	}
	if v != "07.10.2021 10:38:19" {
		t.Errorf("value = %q, want %q", v, "07.10.2021 10:38:19")
	}
}

func TestDecode_SampleReport(t *testing.T) {
	r := Decode(sampleReport)
	if r.Len() != 36 {
		t.Errorf("Len() = %d, want 36", r.Len())
	}
	if v, _ := r.Lookup(FieldAMRunningMode); v != "EDR Block Mode" {
		t.Errorf("AMRunningMode = %q", v)
	}
	if v, ok := r.Lookup(FieldFullScanEndTime); !ok || v != "" {
		t.Errorf("FullScanEndTime = %q, %v; want empty, true", v, ok)
	}
	if v, _ := r.Lookup(FieldQuickScanStartTime); v != "28.03.2019 12:04:24" {
		t.Errorf("QuickScanStartTime = %q", v)
	}
}

func TestDecode_UnknownKeysRetained(t *testing.T) {
	r := Decode("FutureAgentField : some:value\nAMEngineVersion : 1.2\nRealTimeScanDirection : 0")
	v, ok := r.Lookup("FutureAgentField")
	if !ok || v != "some:value" {
		t.Errorf("FutureAgentField = %q, %v", v, ok)
	}
	unknown := r.Unknown()
	if len(unknown) != 2 || unknown[0] != "FutureAgentField" || unknown[1] != "RealTimeScanDirection" {
		t.Errorf("Unknown() = %v", unknown)
	}
}

func TestDecode_DuplicateKeysLastWins(t *testing.T) {
	r := Decode("AMEngineVersion : 1.0\nAMEngineVersion : 2.0")
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (duplicates retained)", r.Len())
	}
	if v, _ := r.Lookup(FieldAMEngineVersion); v != "2.0" {
		t.Errorf("Lookup = %q, want last occurrence 2.0", v)
	}
	s := Project(r, DateEuropean, time.UTC)
	if v, _ := s.EngineVersion(); v != "2.0" {
		t.Errorf("EngineVersion = %q, want 2.0", v)
	}
}

func TestDecode_Garbage(t *testing.T) {
	r := Decode("no separator here\n\n   \n:::\r\n:value without key\n")
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0: %+v", r.Len(), r.Pairs)
	}
	s := Project(r, DateEuropean, time.UTC)
	if !s.Empty() {
		t.Error("expected empty status")
	}
}

func TestDecode_CRLF(t *testing.T) {
	r := Decode("AMServiceEnabled : True\r\nNISEnabled : False\r\n")
	if v, _ := r.Lookup(FieldAMServiceEnabled); v != "True" {
		t.Errorf("AMServiceEnabled = %q", v)
	}
	if v, _ := r.Lookup(FieldNISEnabled); v != "False" {
		t.Errorf("NISEnabled = %q", v)
	}
}

func TestDecode_NoSpaceAroundSeparator(t *testing.T) {
	r := Decode("QuickScanEndTime:2021-10-07 10:38:19")
	if v, _ := r.Lookup(FieldQuickScanEndTime); v != "2021-10-07 10:38:19" {
		t.Errorf("QuickScanEndTime = %q", v)
	}
}

func TestProject_SampleReport(t *testing.T) {
	s := Project(Decode(sampleReport), DateEuropean, time.UTC)

	if v, ok := s.EngineVersion(); !ok || v != "1.1.17800.5" {
		t.Errorf("EngineVersion = %q, %v", v, ok)
	}
	if v, ok := s.SignatureVersion(SignatureNIS); !ok || v != "1.331.1839.0" {
		t.Errorf("NIS SignatureVersion = %q, %v", v, ok)
	}
	if v, ok := s.ServiceEnabled(ServiceNIS); !ok || v {
		t.Errorf("NIS enabled = %v, %v; want false, true", v, ok)
	}
	if v, ok := s.ServiceEnabled(ServiceRealTimeProtection); !ok || !v {
		t.Errorf("RTP enabled = %v, %v; want true, true", v, ok)
	}
	if v, ok := s.TamperProtected(); !ok || v {
		t.Errorf("TamperProtected = %v, %v", v, ok)
	}
	if v, ok := s.VirtualMachine(); !ok || !v {
		t.Errorf("VirtualMachine = %v, %v", v, ok)
	}

	want := time.Date(2021, 2, 25, 22, 37, 8, 0, time.UTC)
	if got, ok := s.SignatureUpdated(SignatureAntivirus); !ok || !got.Equal(want) {
		t.Errorf("AV updated = %v, %v; want %v", got, ok, want)
	}

	if !s.ScanNeverRun(ScanFull) {
		t.Error("expected full scan to be marked never run")
	}
	if _, ok := s.ScanFinished(ScanFull); ok {
		t.Error("full scan should have no end time")
	}
	wantQuick := time.Date(2019, 3, 28, 12, 13, 6, 0, time.UTC)
	if got, ok := s.ScanFinished(ScanQuick); !ok || !got.Equal(wantQuick) {
		t.Errorf("quick scan = %v, %v; want %v", got, ok, wantQuick)
	}
	if len(s.Issues()) != 0 {
		t.Errorf("unexpected issues: %v", s.Issues())
	}
}

func TestProject_BooleansCaseInsensitive(t *testing.T) {
	s := Project(Decode("AMServiceEnabled : TRUE\nNISEnabled : false\nAntivirusEnabled : yes"), DateEuropean, time.UTC)
	if v, ok := s.ServiceEnabled(ServiceAM); !ok || !v {
		t.Errorf("AM = %v, %v", v, ok)
	}
	if v, ok := s.ServiceEnabled(ServiceNIS); !ok || v {
		t.Errorf("NIS = %v, %v", v, ok)
	}
	if _, ok := s.ServiceEnabled(ServiceAntivirus); ok {
		t.Error("Antivirus should be unknown for value 'yes'")
	}
	issues := s.Issues()
	if len(issues) != 1 || issues[0].Field != FieldAntivirusEnabled {
		t.Errorf("issues = %v", issues)
	}
}

func TestProject_UnparseableTimestampIsUnknown(t *testing.T) {
	s := Project(Decode("AntivirusSignatureLastUpdated : 2021-10-07 10:38:19\nNISSignatureLastUpdated : 07.10.2021 10:38:19"), DateEuropean, time.UTC)
	if _, ok := s.SignatureUpdated(SignatureAntivirus); ok {
		t.Error("ISO timestamp under eu format should be unknown")
	}
	if _, ok := s.SignatureUpdated(SignatureNIS); !ok {
		t.Error("NIS timestamp should parse")
	}
	if len(s.Issues()) != 1 {
		t.Errorf("issues = %v, want 1", s.Issues())
	}
}

func TestProject_ScanAliases(t *testing.T) {
	s := Project(Decode("LastFullScan : 2021-10-01 08:00:00\nQuickScanAge : 4294967295"), DateISO, time.UTC)
	want := time.Date(2021, 10, 1, 8, 0, 0, 0, time.UTC)
	if got, ok := s.ScanFinished(ScanFull); !ok || !got.Equal(want) {
		t.Errorf("full scan = %v, %v", got, ok)
	}
	if !s.ScanNeverRun(ScanQuick) {
		t.Error("quick scan age 4294967295 should mark never run")
	}
}

func TestProject_ZeroValue(t *testing.T) {
	var s ParsedStatus
	if !s.Empty() {
		t.Error("zero ParsedStatus should be empty")
	}
	if _, ok := s.ServiceEnabled(ServiceAM); ok {
		t.Error("zero status should not know AM state")
	}
	if s.ScanNeverRun(ScanFull) {
		t.Error("zero status should not mark scans never run")
	}
}
