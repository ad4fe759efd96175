package report

import (
	"strings"
)

// Pair is one key/value line of a raw report.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RawReport holds the decoded lines in input order. Keys are not deduplicated;
// Lookup resolves duplicates to the last occurrence.
type RawReport struct {
	Pairs []Pair `json:"pairs"`
}

// Lookup returns the value of the last line with the given key.
func (r RawReport) Lookup(key string) (string, bool) {
	for i := len(r.Pairs) - 1; i >= 0; i-- {
		if r.Pairs[i].Key == key {
			return r.Pairs[i].Value, true
		}
	}
	return "", false
}

// Unknown returns the keys that are not part of the field catalog, in input order.
func (r RawReport) Unknown() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, p := range r.Pairs {
		if IsKnownField(p.Key) || seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		keys = append(keys, p.Key)
	}
	return keys
}

// Len returns the number of decoded lines.
func (r RawReport) Len() int { return len(r.Pairs) }

// Decode splits the agent output into key/value pairs. It never fails: lines it
// cannot split are dropped.
//
// Known field names are matched as line prefixes so the value keeps every colon
// after the separator (timestamps contain colons). Other lines are split at the
// first colon and retained for forward compatibility.
func Decode(text string) RawReport {
	var r RawReport
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isSectionHeader(line) {
			continue
		}
		if key, value, ok := splitKnown(line); ok {
			r.Pairs = append(r.Pairs, Pair{Key: key, Value: value})
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		r.Pairs = append(r.Pairs, Pair{Key: key, Value: strings.TrimSpace(value)})
	}
	return r
}

// isSectionHeader matches the agent section marker, e.g. <<<windows_defender:sep(58)>>>.
func isSectionHeader(line string) bool {
	return strings.HasPrefix(line, "<<<") && strings.HasSuffix(line, ">>>")
}

// splitKnown matches "<catalog name><spaces>:<value>".
func splitKnown(line string) (string, string, bool) {
	for _, name := range catalog {
		if !strings.HasPrefix(line, name) {
			continue
		}
		rest := strings.TrimLeft(line[len(name):], " \t")
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		return name, strings.TrimSpace(rest[1:]), true
	}
	return "", "", false
}
