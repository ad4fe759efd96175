package checks

import (
	"fmt"

	"github.com/lucasnoah/defendercheck/internal/report"
)

func stateWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// EvaluateService compares a reported service state with its rule. Each service
// is judged on its own; no service state gates another.
func EvaluateService(svc report.Service, rule ServiceRule, enabled, known bool) Result {
	res := Result{Item: "service." + svc.Key(), Label: svc.Label()}
	if !known {
		res.State = StateUnknown
		res.Summary = fmt.Sprintf("service %q state is unknown", svc.Label())
		return res
	}

	if enabled == rule.Expected {
		res.State = StateOK
		res.Summary = fmt.Sprintf("service %q is %s", svc.Label(), stateWord(enabled))
		return res
	}

	res.State = rule.Mismatch
	if res.State != StateWarn && res.State != StateCrit {
		res.State = StateWarn
	}
	res.Summary = fmt.Sprintf("service %q is %s (expected %s)", svc.Label(), stateWord(enabled), stateWord(rule.Expected))
	return res
}
