package report

import (
	"sort"

	"github.com/gopatchy/liveshark/compliance"
	"github.com/gopatchy/liveshark/conflict"
	"github.com/gopatchy/liveshark/flowagg"
	"github.com/gopatchy/liveshark/universeagg"
)

const epochFallback = "1970-01-01T00:00:00Z"

// ToolVersion is stamped into every report's tool.version field.
const ToolVersion = "0.1.0"

// ToolName is stamped into every report's tool.name field.
const ToolName = "liveshark"

// UniverseEntry is one (universe, protocol) pair's source for the
// report assembler -- fps is measured by the caller from the DMX frame
// log (spec §4.7), not by the universe aggregator itself.
type UniverseEntry struct {
	Universe uint16
	Proto    string
	Stats    *universeagg.UniverseStats
	FPS      *float64
}

// Assemble combines every finalized aggregate into the output report.
func Assemble(inputPath string, inputBytes uint64, capture *CaptureSummary, universes []UniverseEntry, flows []flowagg.Summary, conflicts []conflict.Conflict, rec *compliance.Recorder) Report {
	r := Report{
		ReportVersion:  ReportVersion,
		Tool:           ToolInfo{Name: ToolName, Version: ToolVersion},
		GeneratedAt:    generatedAt(capture),
		Input:          InputInfo{Path: inputPath, Bytes: inputBytes},
		CaptureSummary: capture,
		Universes:      buildUniverseSummaries(universes),
		Flows:          buildFlowSummaries(flows),
		Conflicts:      buildConflictSummaries(conflicts),
		Compliance:     buildComplianceSummaries(rec),
	}
	return r
}

func generatedAt(capture *CaptureSummary) string {
	if capture == nil {
		return epochFallback
	}
	if capture.TimeEnd != nil {
		return *capture.TimeEnd
	}
	if capture.TimeStart != nil {
		return *capture.TimeStart
	}
	return epochFallback
}

func buildUniverseSummaries(entries []UniverseEntry) []UniverseSummary {
	out := make([]UniverseSummary, 0, len(entries))
	for _, e := range entries {
		metrics := universeagg.ComputeMetrics(e.Stats.PerSource)

		sources := make([]SourceSummary, 0, len(e.Stats.Sources))
		for _, identity := range e.Stats.Sources {
			s := SourceSummary{SourceIP: identity.SourceIP}
			if identity.CID != "" {
				cid := identity.CID
				s.CID = &cid
			}
			if identity.SourceName != "" {
				name := identity.SourceName
				s.SourceName = &name
			}
			sources = append(sources, s)
		}
		sort.Slice(sources, func(i, j int) bool { return sources[i].SourceIP < sources[j].SourceIP })

		out = append(out, UniverseSummary{
			Universe:    e.Universe,
			Proto:       e.Proto,
			Sources:     sources,
			FPS:         e.FPS,
			FramesCount: e.Stats.Frames,
			LossPackets: metrics.LossPackets,
			LossRate:    metrics.LossRate,
			BurstCount:  metrics.BurstCount,
			MaxBurstLen: metrics.MaxBurstLen,
			JitterMS:    metrics.JitterMS,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Universe != out[j].Universe {
			return out[i].Universe < out[j].Universe
		}
		return out[i].Proto < out[j].Proto
	})
	return out
}

func buildFlowSummaries(flows []flowagg.Summary) []FlowSummary {
	out := make([]FlowSummary, 0, len(flows))
	for _, f := range flows {
		out = append(out, FlowSummary{
			AppProto:    "udp",
			Src:         f.Src,
			Dst:         f.Dst,
			PPS:         f.PPS,
			BPS:         f.BPS,
			IATJitterMS: f.IATJitterMS,
			MaxIATMS:    f.MaxIATMS,
			PPSPeak1s:   f.PPSPeak1s,
			BPSPeak1s:   f.BPSPeak1s,
		})
	}
	return out
}

func buildConflictSummaries(conflicts []conflict.Conflict) []ConflictSummary {
	out := make([]ConflictSummary, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, ConflictSummary{
			Universe:         c.Universe,
			Sources:          c.Sources,
			OverlapDurationS: c.OverlapSeconds,
			AffectedChannels: []uint16{},
			Severity:         c.Severity,
			ConflictScore:    c.ConflictScore,
		})
	}
	return out
}

func buildComplianceSummaries(rec *compliance.Recorder) []ComplianceSummary {
	if rec == nil {
		return []ComplianceSummary{}
	}
	protocols := rec.BuildSummaries()
	out := make([]ComplianceSummary, 0, len(protocols))
	for _, p := range protocols {
		violations := make([]Violation, 0, len(p.Violations))
		for _, v := range p.Violations {
			violations = append(violations, Violation{
				ID:       v.ID,
				Severity: v.Severity,
				Message:  v.Message,
				Count:    v.Count,
				Examples: v.Examples,
			})
		}
		out = append(out, ComplianceSummary{
			Protocol:             p.Protocol,
			CompliancePercentage: p.CompliancePercentage,
			Violations:           violations,
		})
	}
	return out
}
