// Package compliance records protocol-compliance violations keyed by
// protocol and violation ID, with deduplicated examples and the
// summary sort order the report assembler expects.
package compliance

import (
	"fmt"
	"sort"
	"strings"
)

// Violation is one distinct (protocol, id) violation's bookkeeping.
type Violation struct {
	ID       string
	Severity string
	Message  string
	Count    uint64
	Examples []string
}

// Recorder accumulates violations per lowercase protocol name.
type Recorder struct {
	exampleCap int
	protocols  map[string]map[string]*Violation
}

func NewRecorder(exampleCap int) *Recorder {
	return &Recorder{
		exampleCap: exampleCap,
		protocols:  make(map[string]map[string]*Violation),
	}
}

// Record adds one occurrence of a violation. example may be empty; it
// is normalized per the "source <ip>:<port> @ <ts>; <context>"
// convention before being considered for the per-violation example cap.
func (r *Recorder) Record(protocol, id, severity, message, example string) {
	protocol = strings.ToLower(protocol)
	violations, ok := r.protocols[protocol]
	if !ok {
		violations = make(map[string]*Violation)
		r.protocols[protocol] = violations
	}

	normalized := normalizeExample(example)

	v, ok := violations[id]
	if !ok {
		v = &Violation{ID: id, Severity: severity, Message: message, Count: 0}
		violations[id] = v
	}
	v.Count++
	if len(v.Examples) < r.exampleCap && !contains(v.Examples, normalized) {
		v.Examples = append(v.Examples, normalized)
	}
}

func normalizeExample(example string) string {
	if example == "" {
		return "source unknown @ unknown"
	}
	if !strings.HasPrefix(example, "source ") {
		return "source unknown @ unknown; " + example
	}
	return example
}

func contains(examples []string, s string) bool {
	for _, e := range examples {
		if e == s {
			return true
		}
	}
	return false
}

// FormatExample builds the canonical "source <ip>:<port> @ <ts>;
// <context>" example string.
func FormatExample(ip string, port uint16, ts string, context string) string {
	return fmt.Sprintf("source %s:%d @ %s; %s", ip, port, ts, context)
}

// ProtocolSummary is one protocol's finalized compliance entry.
type ProtocolSummary struct {
	Protocol             string
	CompliancePercentage float64
	Violations           []Violation
}

const severityRankOther = 2

func severityRank(s string) int {
	switch s {
	case "error":
		return 0
	case "warning":
		return 1
	default:
		return severityRankOther
	}
}

// BuildSummaries finalizes every tracked protocol's violations: sorted
// by severity rank then ID, with deduplicated examples sorted
// lexicographically, and protocols sorted by name.
// compliance_percentage is a constant 100.0 -- it is never recomputed
// from violation counts.
func (r *Recorder) BuildSummaries() []ProtocolSummary {
	out := make([]ProtocolSummary, 0, len(r.protocols))
	for protocol, violations := range r.protocols {
		list := make([]Violation, 0, len(violations))
		for _, v := range violations {
			sorted := append([]string(nil), v.Examples...)
			sort.Strings(sorted)
			list = append(list, Violation{
				ID:       v.ID,
				Severity: v.Severity,
				Message:  v.Message,
				Count:    v.Count,
				Examples: sorted,
			})
		}
		sort.Slice(list, func(i, j int) bool {
			ri, rj := severityRank(list[i].Severity), severityRank(list[j].Severity)
			if ri != rj {
				return ri < rj
			}
			return list[i].ID < list[j].ID
		})

		out = append(out, ProtocolSummary{
			Protocol:             protocol,
			CompliancePercentage: 100.0,
			Violations:           list,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Protocol < out[j].Protocol })
	return out
}
