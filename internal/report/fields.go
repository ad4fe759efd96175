package report

import "fmt"

// Field names emitted by the agent plugin.
const (
	FieldAMEngineVersion                 = "AMEngineVersion"
	FieldAMProductVersion                = "AMProductVersion"
	FieldAMServiceVersion                = "AMServiceVersion"
	FieldAMRunningMode                   = "AMRunningMode"
	FieldAMServiceEnabled                = "AMServiceEnabled"
	FieldAntispywareEnabled              = "AntispywareEnabled"
	FieldAntispywareSignatureAge         = "AntispywareSignatureAge"
	FieldAntispywareSignatureLastUpdated = "AntispywareSignatureLastUpdated"
	FieldAntispywareSignatureVersion     = "AntispywareSignatureVersion"
	FieldAntivirusEnabled                = "AntivirusEnabled"
	FieldAntivirusSignatureAge           = "AntivirusSignatureAge"
	FieldAntivirusSignatureLastUpdated   = "AntivirusSignatureLastUpdated"
	FieldAntivirusSignatureVersion       = "AntivirusSignatureVersion"
	FieldBehaviorMonitorEnabled          = "BehaviorMonitorEnabled"
	FieldComputerID                      = "ComputerID"
	FieldComputerState                   = "ComputerState"
	FieldFullScanAge                     = "FullScanAge"
	FieldFullScanEndTime                 = "FullScanEndTime"
	FieldFullScanStartTime               = "FullScanStartTime"
	FieldLastFullScan                    = "LastFullScan"
	FieldIsTamperProtected               = "IsTamperProtected"
	FieldTamperProtectionSource          = "TamperProtectionSource"
	FieldIsVirtualMachine                = "IsVirtualMachine"
	FieldNISEnabled                      = "NISEnabled"
	FieldNISEngineVersion                = "NISEngineVersion"
	FieldNISSignatureAge                 = "NISSignatureAge"
	FieldNISSignatureLastUpdated         = "NISSignatureLastUpdated"
	FieldNISSignatureVersion             = "NISSignatureVersion"
	FieldOnAccessProtectionEnabled       = "OnAccessProtectionEnabled"
	FieldQuickScanAge                    = "QuickScanAge"
	FieldQuickScanEndTime                = "QuickScanEndTime"
	FieldQuickScanStartTime              = "QuickScanStartTime"
	FieldLastQuickScan                   = "LastQuickScan"
	FieldRealTimeProtectionEnabled       = "RealTimeProtectionEnabled"
)

// catalog is the fixed set of field names the decoder matches line prefixes against.
var catalog = []string{
	FieldAMEngineVersion,
	FieldAMProductVersion,
	FieldAMServiceVersion,
	FieldAMRunningMode,
	FieldAMServiceEnabled,
	FieldAntispywareEnabled,
	FieldAntispywareSignatureAge,
	FieldAntispywareSignatureLastUpdated,
	FieldAntispywareSignatureVersion,
	FieldAntivirusEnabled,
	FieldAntivirusSignatureAge,
	FieldAntivirusSignatureLastUpdated,
	FieldAntivirusSignatureVersion,
	FieldBehaviorMonitorEnabled,
	FieldComputerID,
	FieldComputerState,
	FieldFullScanAge,
	FieldFullScanEndTime,
	FieldFullScanStartTime,
	FieldLastFullScan,
	FieldIsTamperProtected,
	FieldTamperProtectionSource,
	FieldIsVirtualMachine,
	FieldNISEnabled,
	FieldNISEngineVersion,
	FieldNISSignatureAge,
	FieldNISSignatureLastUpdated,
	FieldNISSignatureVersion,
	FieldOnAccessProtectionEnabled,
	FieldQuickScanAge,
	FieldQuickScanEndTime,
	FieldQuickScanStartTime,
	FieldLastQuickScan,
	FieldRealTimeProtectionEnabled,
}

// IsKnownField reports whether name is in the decoder's field catalog.
func IsKnownField(name string) bool {
	for _, f := range catalog {
		if f == name {
			return true
		}
	}
	return false
}

// Service identifies one of the on/off capabilities of the antivirus subsystem.
type Service int

const (
	ServiceAM Service = iota
	ServiceBehaviorMonitor
	ServiceAntispyware
	ServiceAntivirus
	ServiceNIS
	ServiceRealTimeProtection
	ServiceOnAccessProtection
)

// Services lists every service in reporting order.
var Services = []Service{
	ServiceAM,
	ServiceBehaviorMonitor,
	ServiceAntispyware,
	ServiceAntivirus,
	ServiceNIS,
	ServiceRealTimeProtection,
	ServiceOnAccessProtection,
}

// Field returns the report field carrying the service state.
func (s Service) Field() string {
	switch s {
	case ServiceAM:
		return FieldAMServiceEnabled
	case ServiceBehaviorMonitor:
		return FieldBehaviorMonitorEnabled
	case ServiceAntispyware:
		return FieldAntispywareEnabled
	case ServiceAntivirus:
		return FieldAntivirusEnabled
	case ServiceNIS:
		return FieldNISEnabled
	case ServiceRealTimeProtection:
		return FieldRealTimeProtectionEnabled
	case ServiceOnAccessProtection:
		return FieldOnAccessProtectionEnabled
	}
	panic(fmt.Sprintf("report: unknown service %d", int(s)))
}

// Key is the configuration identifier for the service.
func (s Service) Key() string {
	switch s {
	case ServiceAM:
		return "am_service"
	case ServiceBehaviorMonitor:
		return "behavior_monitor"
	case ServiceAntispyware:
		return "antispyware"
	case ServiceAntivirus:
		return "antivirus"
	case ServiceNIS:
		return "nis"
	case ServiceRealTimeProtection:
		return "realtime_protection"
	case ServiceOnAccessProtection:
		return "onaccess_protection"
	}
	panic(fmt.Sprintf("report: unknown service %d", int(s)))
}

// Label is the human-readable service name.
func (s Service) Label() string {
	switch s {
	case ServiceAM:
		return "AM Service"
	case ServiceBehaviorMonitor:
		return "Behavior Monitor"
	case ServiceAntispyware:
		return "Antispyware"
	case ServiceAntivirus:
		return "Antivirus"
	case ServiceNIS:
		return "NIS"
	case ServiceRealTimeProtection:
		return "RealTimeProtection"
	case ServiceOnAccessProtection:
		return "OnAccessProtection"
	}
	panic(fmt.Sprintf("report: unknown service %d", int(s)))
}

func (s Service) String() string { return s.Key() }

// ServiceByKey looks up a service by its configuration identifier.
func ServiceByKey(key string) (Service, bool) {
	for _, s := range Services {
		if s.Key() == key {
			return s, true
		}
	}
	return 0, false
}

// SignatureKind identifies one of the malware-definition databases.
type SignatureKind int

const (
	SignatureAntispyware SignatureKind = iota
	SignatureAntivirus
	SignatureNIS
)

// SignatureKinds lists every signature kind in reporting order.
var SignatureKinds = []SignatureKind{SignatureAntispyware, SignatureAntivirus, SignatureNIS}

// UpdatedField returns the field carrying the last-update timestamp.
func (k SignatureKind) UpdatedField() string {
	switch k {
	case SignatureAntispyware:
		return FieldAntispywareSignatureLastUpdated
	case SignatureAntivirus:
		return FieldAntivirusSignatureLastUpdated
	case SignatureNIS:
		return FieldNISSignatureLastUpdated
	}
	panic(fmt.Sprintf("report: unknown signature kind %d", int(k)))
}

// VersionField returns the field carrying the signature version.
func (k SignatureKind) VersionField() string {
	switch k {
	case SignatureAntispyware:
		return FieldAntispywareSignatureVersion
	case SignatureAntivirus:
		return FieldAntivirusSignatureVersion
	case SignatureNIS:
		return FieldNISSignatureVersion
	}
	panic(fmt.Sprintf("report: unknown signature kind %d", int(k)))
}

// Key is the configuration identifier for the signature kind.
func (k SignatureKind) Key() string {
	switch k {
	case SignatureAntispyware:
		return "antispyware"
	case SignatureAntivirus:
		return "antivirus"
	case SignatureNIS:
		return "nis"
	}
	panic(fmt.Sprintf("report: unknown signature kind %d", int(k)))
}

// Label is the human-readable signature name.
func (k SignatureKind) Label() string {
	switch k {
	case SignatureAntispyware:
		return "AntiSpyware signature"
	case SignatureAntivirus:
		return "AntiVirus signature"
	case SignatureNIS:
		return "NIS signature"
	}
	panic(fmt.Sprintf("report: unknown signature kind %d", int(k)))
}

// MetricName is the graphing metric for the signature age.
func (k SignatureKind) MetricName() string {
	switch k {
	case SignatureAntispyware:
		return "antispyware_sig_age"
	case SignatureAntivirus:
		return "antivirus_sig_age"
	case SignatureNIS:
		return "nis_sig_age"
	}
	panic(fmt.Sprintf("report: unknown signature kind %d", int(k)))
}

func (k SignatureKind) String() string { return k.Key() }

// ScanKind identifies a scan type.
type ScanKind int

const (
	ScanFull ScanKind = iota
	ScanQuick
)

// ScanKinds lists every scan kind in reporting order.
var ScanKinds = []ScanKind{ScanFull, ScanQuick}

// EndFields returns the fields carrying the scan end time, preferred first.
func (k ScanKind) EndFields() []string {
	switch k {
	case ScanFull:
		return []string{FieldFullScanEndTime, FieldLastFullScan}
	case ScanQuick:
		return []string{FieldQuickScanEndTime, FieldLastQuickScan}
	}
	panic(fmt.Sprintf("report: unknown scan kind %d", int(k)))
}

// AgeField returns the field carrying the scan age in days.
func (k ScanKind) AgeField() string {
	switch k {
	case ScanFull:
		return FieldFullScanAge
	case ScanQuick:
		return FieldQuickScanAge
	}
	panic(fmt.Sprintf("report: unknown scan kind %d", int(k)))
}

// Key is the configuration identifier for the scan kind.
func (k ScanKind) Key() string {
	switch k {
	case ScanFull:
		return "full"
	case ScanQuick:
		return "quick"
	}
	panic(fmt.Sprintf("report: unknown scan kind %d", int(k)))
}

// Label is the human-readable scan name.
func (k ScanKind) Label() string {
	switch k {
	case ScanFull:
		return "Full Scan"
	case ScanQuick:
		return "Quick Scan"
	}
	panic(fmt.Sprintf("report: unknown scan kind %d", int(k)))
}

// MetricName is the graphing metric for the scan age.
func (k ScanKind) MetricName() string {
	switch k {
	case ScanFull:
		return "full_scan_age"
	case ScanQuick:
		return "quick_scan_age"
	}
	panic(fmt.Sprintf("report: unknown scan kind %d", int(k)))
}

func (k ScanKind) String() string { return k.Key() }
