package analysis

import (
	"time"

	"github.com/gopatchy/liveshark/config"
	"github.com/gopatchy/liveshark/conflict"
	"github.com/gopatchy/liveshark/dmx"
	"github.com/gopatchy/liveshark/report"
	"github.com/gopatchy/liveshark/universeagg"
)

// BuildReport turns an analysis Result into the final report.Report,
// given the input file's path and byte size (Analyze itself never
// touches the filesystem).
func BuildReport(cfg *config.Config, inputPath string, inputBytes uint64, res *Result) report.Report {
	capture := &report.CaptureSummary{
		PacketsTotal: res.PacketsTotal,
		TimeStart:    tsToRFC3339Ptr(res.FirstTS),
		TimeEnd:      tsToRFC3339Ptr(res.LastTS),
	}

	universes := buildUniverseEntries(cfg, "artnet", res.ArtNetStats, res.FrameLog, dmx.ArtNet)
	universes = append(universes, buildUniverseEntries(cfg, "sacn", res.SACNStats, res.FrameLog, dmx.SACN)...)

	conflicts := conflict.Detect(res.ArtNetStats.AllStats(), cfg.ConflictOverlap.Seconds())
	conflicts = append(conflicts, conflict.Detect(res.SACNStats.AllStats(), cfg.ConflictOverlap.Seconds())...)

	return report.Assemble(inputPath, inputBytes, capture, universes, res.Flows.BuildSummaries(), conflicts, res.Compliance)
}

func buildUniverseEntries(cfg *config.Config, proto string, agg *universeagg.Aggregator, log *dmx.FrameLog, protocol dmx.Protocol) []report.UniverseEntry {
	out := make([]report.UniverseEntry, 0, len(agg.Universes()))
	for _, universe := range agg.Universes() {
		stats, ok := agg.Stats(universe)
		if !ok {
			continue
		}
		var fps *float64
		if v, ok := log.FPS(universe, protocol, cfg.FPSWindow.Seconds()); ok {
			fps = &v
		}
		out = append(out, report.UniverseEntry{Universe: universe, Proto: proto, Stats: stats, FPS: fps})
	}
	return out
}

func tsToRFC3339Ptr(ts *float64) *string {
	if ts == nil {
		return nil
	}
	s := time.Unix(0, int64(*ts*1e9)).UTC().Format(time.RFC3339)
	return &s
}
