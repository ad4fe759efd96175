package checks

import (
	"fmt"
	"time"
)

// AgeCheck evaluates how long ago a reported timestamp was.
type AgeCheck struct {
	Item     string
	Name     string // "AntiVirus signature", "Full Scan"
	AgeLabel string // prefix of the age summary, "AntiVirus signature age"
	Metric   string
	Levels   *Levels
}

// Evaluate classifies the age of at relative to now. known=false yields UNKNOWN
// without a metric. A timestamp after now is clamped to age 0 and flagged as
// Future; beyond skew it is UNKNOWN.
func (c AgeCheck) Evaluate(at time.Time, known bool, now time.Time, skew time.Duration) Result {
	res := Result{Item: c.Item, Label: c.Name}
	if !known {
		res.State = StateUnknown
		res.Summary = fmt.Sprintf("Age of %s is unknown", c.Name)
		return res
	}

	age := now.Sub(at)
	if age < 0 {
		res.Future = true
		ahead := -age
		age = 0
		if ahead > skew {
			res.State = StateUnknown
			res.Summary = fmt.Sprintf("%s: timestamp is %s in the future", c.AgeLabel, RenderTimespan(ahead))
			return res
		}
	}

	res.State = c.classify(age)
	res.Metric = c.metric(age)
	res.Summary = fmt.Sprintf("%s: %s", c.AgeLabel, RenderTimespan(age))
	if res.State != StateOK && c.Levels != nil {
		res.Summary += " " + c.levelsText()
	}
	if res.Future {
		res.Summary += " (reported in the future)"
	}
	return res
}

// NeverRun reports a scan that the agent says never executed.
func (c AgeCheck) NeverRun(state State) Result {
	res := Result{Item: c.Item, Label: c.Name, State: state}
	res.Summary = fmt.Sprintf("%s has never been executed", c.Name)
	if c.Levels != nil {
		res.Summary += " " + c.levelsText()
	}
	if state != StateUnknown {
		res.Metric = c.metric(0)
	}
	return res
}

func (c AgeCheck) classify(age time.Duration) State {
	if c.Levels == nil {
		return StateOK
	}
	switch {
	case age >= c.Levels.Crit:
		return StateCrit
	case age >= c.Levels.Warn:
		return StateWarn
	}
	return StateOK
}

func (c AgeCheck) metric(age time.Duration) *Metric {
	m := &Metric{Name: c.Metric, Value: age.Seconds()}
	if c.Levels != nil {
		w, cr := c.Levels.Warn.Seconds(), c.Levels.Crit.Seconds()
		m.Warn, m.Crit = &w, &cr
	}
	return m
}

func (c AgeCheck) levelsText() string {
	return fmt.Sprintf("(warn/crit at %s/%s)", RenderTimespan(c.Levels.Warn), RenderTimespan(c.Levels.Crit))
}
