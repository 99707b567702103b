package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
)

var timestampPattern = regexp.MustCompile(`^\d{1,3}:\d{2}(\.\d{1,3})?$`)

// Parse decodes model output into a Result. The three top-level fields
// must be present with the documented JSON types; anything else is
// reported as ErrMalformedResult.
func Parse(text string) (*Result, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	for _, key := range []string{"events", "scenarios", "recommendation"} {
		raw, ok := top[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedResult, key)
		}
	}

	var res Result
	if err := json.Unmarshal(top["events"], &res.Events); err != nil {
		return nil, fmt.Errorf("%w: events: %v", ErrMalformedResult, err)
	}
	if err := json.Unmarshal(top["recommendation"], &res.Recommendation); err != nil {
		return nil, fmt.Errorf("%w: recommendation: %v", ErrMalformedResult, err)
	}

	var scenarios map[string]struct {
		Score     *float64 `json:"score"`
		Risk      Level    `json:"risk"`
		TradeOffs any      `json:"trade_offs"`
		Tradeoffs any      `json:"tradeoffs"`
		Hyphened  any      `json:"trade-offs"`
	}
	if err := json.Unmarshal(top["scenarios"], &scenarios); err != nil {
		return nil, fmt.Errorf("%w: scenarios: %v", ErrMalformedResult, err)
	}
	res.Scenarios = make(map[string]Scenario, len(scenarios))
	for name, sc := range scenarios {
		if sc.Score == nil {
			return nil, fmt.Errorf("%w: scenario %q has no score", ErrMalformedResult, name)
		}
		s := Scenario{Score: *sc.Score, Risk: sc.Risk, TradeOffs: firstNonNil(sc.TradeOffs, sc.Tradeoffs, sc.Hyphened)}
		res.Scenarios[name] = s
	}
	return &res, nil
}

func firstNonNil(vs ...any) any {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

// Warnings lists values that fall outside the documented enumerations.
// They are advisory: the prompt asks for them but nothing enforces them.
func (r *Result) Warnings() []string {
	var out []string
	for i, e := range r.Events {
		if !timestampPattern.MatchString(e.Timestamp) {
			out = append(out, fmt.Sprintf("events[%d]: unexpected timestamp %q", i, e.Timestamp))
		}
		switch e.Type {
		case EventError, EventPause, EventRepetition, EventHesitation:
		default:
			out = append(out, fmt.Sprintf("events[%d]: unknown type %q", i, e.Type))
		}
		if !e.Severity.valid() {
			out = append(out, fmt.Sprintf("events[%d]: unknown severity %q", i, e.Severity))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(r.Scenarios)) {
		s := r.Scenarios[name]
		if s.Score < 0 || s.Score > 100 {
			out = append(out, fmt.Sprintf("scenarios[%s]: score %v out of range", name, s.Score))
		}
		if !s.Risk.valid() {
			out = append(out, fmt.Sprintf("scenarios[%s]: unknown risk %q", name, s.Risk))
		}
	}
	return out
}

func (l Level) valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}
