package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the locale family the agent host renders timestamps in.
// It is configured per host; the parser never guesses it.
type DateFormat int

const (
	DateEuropean DateFormat = iota
	DateUS
	DateISO
)

// DateFormats lists every supported family.
var DateFormats = []DateFormat{DateEuropean, DateUS, DateISO}

func (f DateFormat) String() string {
	switch f {
	case DateEuropean:
		return "eu"
	case DateUS:
		return "us"
	case DateISO:
		return "iso"
	}
	return fmt.Sprintf("DateFormat(%d)", int(f))
}

// ParseDateFormat converts a configuration value ("eu", "us", "iso") to a DateFormat.
// "european" is accepted as an alias for "eu".
func ParseDateFormat(s string) (DateFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eu", "european":
		return DateEuropean, nil
	case "us":
		return DateUS, nil
	case "iso":
		return DateISO, nil
	}
	return 0, fmt.Errorf("unknown date format %q (want eu, us or iso)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f DateFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *DateFormat) UnmarshalText(b []byte) error {
	v, err := ParseDateFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Layouts per family, tried in order. Day, month and hour accept one or two
// digits; minutes, seconds and year are fixed width.
//
// Windows can print US-style 12h stamps on hosts with a European locale, so the
// european family also takes the AM/PM forms. The suffix makes them unambiguous
// against the 24h layouts.
var layouts = map[DateFormat][]string{
	DateEuropean: {
		"2.1.2006 15:04:05",
		"2.1.2006",
		"1/2/2006 3:04:05 PM",
		"2/1/2006 15:04:05",
		"2/1/2006 3:04:05 PM",
		"2/1/2006",
	},
	DateUS: {
		"1/2/2006 3:04:05 PM",
		"1/2/2006 15:04:05",
		"1/2/2006",
	},
	DateISO: {
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	},
}

// ErrUnparseable is wrapped by every ParseError.
var ErrUnparseable = errors.New("unparseable timestamp")

// ParseError reports a timestamp that does not match the declared family.
type ParseError struct {
	Value  string
	Format DateFormat
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q as %s date: %v", e.Value, e.Format, e.Err)
	}
	return fmt.Sprintf("parse %q as %s date: %v", e.Value, e.Format, ErrUnparseable)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnparseable}
	}
	return []error{ErrUnparseable, e.Err}
}

// ParseTime converts raw into an absolute instant using the layouts of family f.
// Timestamps carry no zone and are read in loc (time.Local when nil).
// Empty input, an unmatched pattern or an invalid calendar date yield a *ParseError.
func ParseTime(raw string, f DateFormat, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, &ParseError{Value: raw, Format: f}
	}

	candidates, ok := layouts[f]
	if !ok {
		return time.Time{}, &ParseError{Value: raw, Format: f, Err: fmt.Errorf("unknown date format %d", int(f))}
	}

	// Report the error of the family's primary layout.
	var firstErr error
	for _, layout := range candidates {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, &ParseError{Value: raw, Format: f, Err: firstErr}
}
