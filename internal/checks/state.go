package checks

import (
	"fmt"
	"strings"
)

// State is the verdict for one monitored item. The numeric values follow the
// monitoring-plugin exit code convention.
type State int

const (
	StateOK      State = 0
	StateWarn    State = 1
	StateCrit    State = 2
	StateUnknown State = 3
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarn:
		return "WARN"
	case StateCrit:
		return "CRIT"
	case StateUnknown:
		return "UNKNOWN"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState accepts ok, warn/warning, crit/critical and unknown, case-insensitively.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ok":
		return StateOK, nil
	case "warn", "warning":
		return StateWarn, nil
	case "crit", "critical":
		return StateCrit, nil
	case "unknown":
		return StateUnknown, nil
	}
	return 0, fmt.Errorf("unknown state %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
