// Package prefill merges an external payload, typically produced by the other
// evaluation tool, into an input model exactly once per session. Values the
// user already entered are never overwritten.
package prefill

import (
	"fmt"
	"strings"

	"candidate-evaluation-workers/internal/common/validation"
	"candidate-evaluation-workers/internal/engine/coerce"
	"candidate-evaluation-workers/internal/models"
)

// FullUnitCutoff separates amounts given in millions from amounts given in
// full currency units. Anything above it is divided by 1,000,000.
const FullUnitCutoff = 10_000

// Report describes what a prefill call did.
type Report struct {
	Applied   bool      `json:"applied"`
	Filled    []string  `json:"filled"`
	Discarded []Discard `json:"discarded,omitempty"`
}

type Discard struct {
	Field  string `json:"field"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Apply fills empty fields of in from payload. When applied is already true
// the input is returned untouched and the report says so.
func Apply(in models.InputModel, applied bool, payload map[string]interface{}) (models.InputModel, Report) {
	report := Report{Filled: []string{}}
	if applied {
		return in, report
	}
	report.Applied = true

	out := in
	for _, t := range stringTargets {
		applyString(&out, t, payload, &report)
	}
	for _, t := range numberTargets {
		applyNumber(&out, t, payload, &report)
	}
	for _, t := range intTargets {
		applyInt(&out, t, payload, &report)
	}
	for _, t := range listTargets {
		applyList(&out, t, payload, &report)
	}

	return out.Normalize(), report
}

func applyString(m *models.InputModel, t stringTarget, payload map[string]interface{}, report *Report) {
	dst := t.field(m)
	if *dst != "" {
		return
	}
	value, path, ok := resolve(payload, t.paths, func(raw interface{}) (interface{}, bool) {
		s, ok := coerce.String(raw)
		return s, ok && s != ""
	})
	if !ok {
		return
	}

	s := value.(string)
	if t.email && !validation.ValidateEmail(s) {
		report.Discarded = append(report.Discarded, Discard{Field: t.name, Path: path, Reason: "invalid email"})
		return
	}
	*dst = s
	report.Filled = append(report.Filled, t.name)
}

func applyNumber(m *models.InputModel, t numberTarget, payload map[string]interface{}, report *Report) {
	dst := t.field(m)
	if *dst != 0 {
		return
	}
	value, _, ok := resolve(payload, t.paths, nonZeroNumber)
	if !ok {
		value, _, ok = resolve(payload, t.complement, remainderPct)
	}
	if !ok {
		return
	}

	v := value.(float64)
	if t.millions {
		v = ToMillions(v)
	}
	*dst = v
	report.Filled = append(report.Filled, t.name)
}

func applyInt(m *models.InputModel, t intTarget, payload map[string]interface{}, report *Report) {
	dst := t.field(m)
	if *dst != 0 {
		return
	}
	value, _, ok := resolve(payload, t.paths, nonZeroNumber)
	if !ok {
		return
	}

	*dst = int(value.(float64))
	report.Filled = append(report.Filled, t.name)
}

func applyList(m *models.InputModel, t listTarget, payload map[string]interface{}, report *Report) {
	dst := t.field(m)
	if len(*dst) > 0 {
		return
	}
	value, _, ok := resolve(payload, t.paths, stringList)
	if !ok {
		return
	}

	*dst = value.([]string)
	report.Filled = append(report.Filled, t.name)
}

// ToMillions converts an amount that may be in full units to millions.
func ToMillions(v float64) float64 {
	if v > FullUnitCutoff {
		return v / 1_000_000
	}
	return v
}

// resolve tries each dot path in order and returns the first value accepted
// by convert.
func resolve(payload map[string]interface{}, paths []string, convert func(interface{}) (interface{}, bool)) (interface{}, string, bool) {
	for _, path := range paths {
		raw, ok := Lookup(payload, path)
		if !ok {
			continue
		}
		if v, ok := convert(raw); ok {
			return v, path, true
		}
	}
	return nil, "", false
}

// Lookup walks a dot separated path through nested maps.
func Lookup(payload map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = payload
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func nonZeroNumber(raw interface{}) (interface{}, bool) {
	v, ok := coerce.Number(raw)
	return v, ok && v != 0
}

// remainderPct converts a percentage in [0, 100) to 100 minus it.
func remainderPct(raw interface{}) (interface{}, bool) {
	v, ok := coerce.Number(raw)
	if !ok || v < 0 || v >= 100 {
		return nil, false
	}
	return 100 - v, true
}

func stringList(raw interface{}) (interface{}, bool) {
	var out []string
	switch v := raw.(type) {
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out, len(out) > 0
}

func (r Report) String() string {
	return fmt.Sprintf("applied=%t filled=%d discarded=%d", r.Applied, len(r.Filled), len(r.Discarded))
}
