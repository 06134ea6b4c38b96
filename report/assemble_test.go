package report

import (
	"encoding/json"
	"testing"

	"github.com/gopatchy/liveshark/compliance"
	"github.com/gopatchy/liveshark/conflict"
	"github.com/gopatchy/liveshark/flowagg"
	"github.com/gopatchy/liveshark/universeagg"
)

func TestGeneratedAtFallsBackToEpoch(t *testing.T) {
	if got := generatedAt(nil); got != epochFallback {
		t.Fatalf("generatedAt(nil) = %q, want %q", got, epochFallback)
	}
	start := "2024-01-01T00:00:00Z"
	if got := generatedAt(&CaptureSummary{TimeStart: &start}); got != start {
		t.Fatalf("generatedAt = %q, want time_start %q", got, start)
	}
	end := "2024-01-01T00:01:00Z"
	if got := generatedAt(&CaptureSummary{TimeStart: &start, TimeEnd: &end}); got != end {
		t.Fatalf("generatedAt = %q, want time_end %q", got, end)
	}
}

func TestAssembleOmitsEmptyOptionalFields(t *testing.T) {
	rec := compliance.NewRecorder(3)
	r := Assemble("capture.pcap", 1024, nil, nil, nil, nil, rec)

	blob, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, present := raw["capture_summary"]; present {
		t.Fatalf("expected capture_summary omitted, got %v", raw["capture_summary"])
	}
	if raw["report_version"].(float64) != 1 {
		t.Fatalf("report_version = %v, want 1", raw["report_version"])
	}
	if raw["generated_at"] != epochFallback {
		t.Fatalf("generated_at = %v, want %q", raw["generated_at"], epochFallback)
	}
}

func TestAssembleUniverseSortedByUniverseThenProto(t *testing.T) {
	entries := []UniverseEntry{
		{Universe: 2, Proto: "sacn", Stats: &universeagg.UniverseStats{Sources: map[string]universeagg.SourceIdentity{}, PerSource: map[string]*universeagg.SourceStats{}}},
		{Universe: 1, Proto: "sacn", Stats: &universeagg.UniverseStats{Sources: map[string]universeagg.SourceIdentity{}, PerSource: map[string]*universeagg.SourceStats{}}},
		{Universe: 1, Proto: "artnet", Stats: &universeagg.UniverseStats{Sources: map[string]universeagg.SourceIdentity{}, PerSource: map[string]*universeagg.SourceStats{}}},
	}
	out := buildUniverseSummaries(entries)
	if out[0].Universe != 1 || out[0].Proto != "artnet" {
		t.Fatalf("expected (1,artnet) first, got %+v", out[0])
	}
	if out[1].Universe != 1 || out[1].Proto != "sacn" {
		t.Fatalf("expected (1,sacn) second, got %+v", out[1])
	}
	if out[2].Universe != 2 {
		t.Fatalf("expected universe 2 last, got %+v", out[2])
	}
}

func TestConflictAffectedChannelsAlwaysEmptyArrayNotNull(t *testing.T) {
	conflicts := []conflict.Conflict{{Universe: 1, Sources: []string{"a", "b"}, OverlapSeconds: 2.0, Severity: "medium", ConflictScore: 2.0}}
	out := buildConflictSummaries(conflicts)
	blob, err := json.Marshal(out[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	arr, ok := raw["affected_channels"].([]any)
	if !ok {
		t.Fatalf("affected_channels = %v, want an empty array, not null", raw["affected_channels"])
	}
	if len(arr) != 0 {
		t.Fatalf("expected empty affected_channels, got %v", arr)
	}
}

func TestBuildFlowSummariesPreservesOrder(t *testing.T) {
	in := []flowagg.Summary{{Src: "a:1", Dst: "b:2"}, {Src: "c:1", Dst: "d:2"}}
	out := buildFlowSummaries(in)
	if len(out) != 2 || out[0].Src != "a:1" || out[1].Src != "c:1" {
		t.Fatalf("unexpected flow summaries: %+v", out)
	}
}
