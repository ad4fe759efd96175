package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// neverRunAge is the scan age (days) the agent reports for a scan that never ran.
const neverRunAge = 4294967295

// Issue records a field whose value could not be interpreted. The field is
// treated as unknown.
type Issue struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Err   string `json:"error"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s=%q: %s", i.Field, i.Value, i.Err)
}

// ParsedStatus is the typed view of a RawReport under a given date format.
// Every field is optional. The zero value is a valid status with nothing known.
// Values are only exposed through accessors and are never modified after Project.
type ParsedStatus struct {
	strings    map[string]string
	services   map[Service]bool
	signatures map[SignatureKind]time.Time
	scans      map[ScanKind]time.Time
	neverRun   map[ScanKind]bool
	tamper     *bool
	vm         *bool
	issues     []Issue
}

// Project interprets raw under date format f. Unparseable values become unknown
// fields and are listed in Issues; Project itself never fails.
func Project(raw RawReport, f DateFormat, loc *time.Location) ParsedStatus {
	s := ParsedStatus{
		strings:    make(map[string]string),
		services:   make(map[Service]bool),
		signatures: make(map[SignatureKind]time.Time),
		scans:      make(map[ScanKind]time.Time),
		neverRun:   make(map[ScanKind]bool),
	}

	for _, field := range []string{
		FieldAMEngineVersion,
		FieldAMProductVersion,
		FieldAMServiceVersion,
		FieldAMRunningMode,
		FieldNISEngineVersion,
		FieldAntispywareSignatureVersion,
		FieldAntivirusSignatureVersion,
		FieldNISSignatureVersion,
		FieldComputerState,
		FieldTamperProtectionSource,
	} {
		if v, ok := raw.Lookup(field); ok && v != "" {
			s.strings[field] = v
		}
	}

	for _, svc := range Services {
		if b, ok := s.boolField(raw, svc.Field()); ok {
			s.services[svc] = b
		}
	}

	if b, ok := s.boolField(raw, FieldIsTamperProtected); ok {
		s.tamper = &b
	}
	if b, ok := s.boolField(raw, FieldIsVirtualMachine); ok {
		s.vm = &b
	}

	for _, kind := range SignatureKinds {
		v, ok := raw.Lookup(kind.UpdatedField())
		if !ok {
			continue
		}
		if t, ok := s.timeField(kind.UpdatedField(), v, f, loc); ok {
			s.signatures[kind] = t
		}
	}

	for _, kind := range ScanKinds {
		s.projectScan(raw, kind, f, loc)
	}

	return s
}

func (s *ParsedStatus) projectScan(raw RawReport, kind ScanKind, f DateFormat, loc *time.Location) {
	if age, ok := raw.Lookup(kind.AgeField()); ok {
		if n, err := strconv.ParseUint(strings.TrimSpace(age), 10, 64); err == nil && n == neverRunAge {
			s.neverRun[kind] = true
			return
		}
	}
	for _, field := range kind.EndFields() {
		v, ok := raw.Lookup(field)
		if !ok {
			continue
		}
		if v == "" {
			s.neverRun[kind] = true
			return
		}
		if t, ok := s.timeField(field, v, f, loc); ok {
			s.scans[kind] = t
		}
		return
	}
}

func (s *ParsedStatus) boolField(raw RawReport, field string) (bool, bool) {
	v, ok := raw.Lookup(field)
	if !ok {
		return false, false
	}
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	s.issues = append(s.issues, Issue{Field: field, Value: v, Err: "not a boolean"})
	return false, false
}

func (s *ParsedStatus) timeField(field, v string, f DateFormat, loc *time.Location) (time.Time, bool) {
	t, err := ParseTime(v, f, loc)
	if err != nil {
		s.issues = append(s.issues, Issue{Field: field, Value: v, Err: err.Error()})
		return time.Time{}, false
	}
	return t, true
}

func (s ParsedStatus) str(field string) (string, bool) {
	v, ok := s.strings[field]
	return v, ok
}

// EngineVersion returns AMEngineVersion.
func (s ParsedStatus) EngineVersion() (string, bool) { return s.str(FieldAMEngineVersion) }

// ProductVersion returns AMProductVersion.
func (s ParsedStatus) ProductVersion() (string, bool) { return s.str(FieldAMProductVersion) }

// ServiceVersion returns AMServiceVersion.
func (s ParsedStatus) ServiceVersion() (string, bool) { return s.str(FieldAMServiceVersion) }

// NISEngineVersion returns NISEngineVersion.
func (s ParsedStatus) NISEngineVersion() (string, bool) { return s.str(FieldNISEngineVersion) }

// RunningMode returns AMRunningMode, e.g. "EDR Block Mode".
func (s ParsedStatus) RunningMode() (string, bool) { return s.str(FieldAMRunningMode) }

// ComputerState returns the raw ComputerState code.
func (s ParsedStatus) ComputerState() (string, bool) { return s.str(FieldComputerState) }

// TamperProtectionSource returns the reported tamper protection source.
func (s ParsedStatus) TamperProtectionSource() (string, bool) {
	return s.str(FieldTamperProtectionSource)
}

// SignatureVersion returns the version of the given signature database.
func (s ParsedStatus) SignatureVersion(k SignatureKind) (string, bool) {
	return s.str(k.VersionField())
}

// TamperProtected returns IsTamperProtected.
func (s ParsedStatus) TamperProtected() (bool, bool) {
	if s.tamper == nil {
		return false, false
	}
	return *s.tamper, true
}

// VirtualMachine returns IsVirtualMachine.
func (s ParsedStatus) VirtualMachine() (bool, bool) {
	if s.vm == nil {
		return false, false
	}
	return *s.vm, true
}

// ServiceEnabled returns the reported state of a service.
func (s ParsedStatus) ServiceEnabled(svc Service) (bool, bool) {
	v, ok := s.services[svc]
	return v, ok
}

// SignatureUpdated returns when the signature database was last updated.
func (s ParsedStatus) SignatureUpdated(k SignatureKind) (time.Time, bool) {
	t, ok := s.signatures[k]
	return t, ok
}

// ScanFinished returns when the last scan of the given kind ended.
func (s ParsedStatus) ScanFinished(k ScanKind) (time.Time, bool) {
	t, ok := s.scans[k]
	return t, ok
}

// ScanNeverRun reports whether the agent says the scan was never executed.
func (s ParsedStatus) ScanNeverRun(k ScanKind) bool {
	return s.neverRun[k]
}

// Issues returns the fields that were present but could not be interpreted.
func (s ParsedStatus) Issues() []Issue {
	out := make([]Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

// Empty reports whether no field could be interpreted.
func (s ParsedStatus) Empty() bool {
	return len(s.strings) == 0 && len(s.services) == 0 && len(s.signatures) == 0 &&
		len(s.scans) == 0 && len(s.neverRun) == 0 && s.tamper == nil && s.vm == nil
}
