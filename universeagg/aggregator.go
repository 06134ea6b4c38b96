// Package universeagg tracks per-source, per-universe DMX frame
// sequencing (loss, burst, jitter) over sliding time windows and
// assembles the final per-universe summaries.
package universeagg

import (
	"fmt"
	"sort"
)

// SourceStats is the per-(universe,source) sequence/jitter bookkeeping,
// the same fields as the reference implementation's sliding-window
// accounting: a running total alongside a pruned window for each of
// frames, jitter, loss, and burst length.
type SourceStats struct {
	Frames      uint64
	Loss        uint64
	BurstCount  uint64
	MaxBurstLen uint64
	CurrentBurst uint64
	LastSeq     *uint8
	FirstTS     *float64
	LastTS      *float64
	PrevIAT     *float64

	JitterSum     float64
	JitterSamples []floatSample
	FrameSamples  []float64

	LossSum     uint64
	LossSamples []uintSample

	BurstStartSamples  []float64
	BurstLengthSamples []uintSample
}

// SourceIdentity is the descriptive identity recorded for each source
// contributing to a universe.
type SourceIdentity struct {
	SourceIP   string
	CID        string // empty when not sACN or when the source left CID blank (all zero)
	SourceName string // empty when absent
}

// UniverseStats accumulates every source seen on one universe.
type UniverseStats struct {
	Frames    uint64
	Sources   map[string]SourceIdentity
	FirstTS   *float64
	LastTS    *float64
	PerSource map[string]*SourceStats
}

func newUniverseStats() *UniverseStats {
	return &UniverseStats{
		Sources:   make(map[string]SourceIdentity),
		PerSource: make(map[string]*SourceStats),
	}
}

// Aggregator owns the per-universe statistics for one protocol.
type Aggregator struct {
	jitterWindow float64
	byUniverse   map[uint16]*UniverseStats
}

func NewAggregator(jitterWindowSeconds float64) *Aggregator {
	return &Aggregator{
		jitterWindow: jitterWindowSeconds,
		byUniverse:   make(map[uint16]*UniverseStats),
	}
}

// ArtNetSourceID is the canonical identity string for an Art-Net source.
func ArtNetSourceID(sourceIP string, sourcePort uint16) string {
	return fmt.Sprintf("artnet:%s:%d", sourceIP, sourcePort)
}

// SACNSourceID is the canonical identity string for a sACN source: the
// CID form when the source declared one, otherwise the ip:port form.
func SACNSourceID(cid, sourceIP string, sourcePort uint16) string {
	if cid == "" {
		return fmt.Sprintf("sacn:%s:%d", sourceIP, sourcePort)
	}
	return fmt.Sprintf("sacn:cid:%s", cid)
}

// AddArtNetFrame records one Art-Net frame and returns the source's
// canonical identity.
func (a *Aggregator) AddArtNetFrame(universe uint16, sourceIP string, sourcePort uint16, sequence *uint8, ts *float64) string {
	sourceID := ArtNetSourceID(sourceIP, sourcePort)
	entry := a.entry(universe)
	entry.Frames++
	if _, ok := entry.Sources[sourceID]; !ok {
		entry.Sources[sourceID] = SourceIdentity{SourceIP: sourceIP}
	}
	a.updateSource(entry, sourceID, sequence, ts)
	updateTSBounds(&entry.FirstTS, &entry.LastTS, ts)
	return sourceID
}

// AddSACNFrame records one sACN frame and returns the source's
// canonical identity.
func (a *Aggregator) AddSACNFrame(universe uint16, sourceIP string, sourcePort uint16, cid, sourceName string, sequence *uint8, ts *float64) string {
	sourceID := SACNSourceID(cid, sourceIP, sourcePort)
	entry := a.entry(universe)
	entry.Frames++
	if _, ok := entry.Sources[sourceID]; !ok {
		entry.Sources[sourceID] = SourceIdentity{SourceIP: sourceIP, CID: cid, SourceName: sourceName}
	}
	a.updateSource(entry, sourceID, sequence, ts)
	updateTSBounds(&entry.FirstTS, &entry.LastTS, ts)
	return sourceID
}

func (a *Aggregator) entry(universe uint16) *UniverseStats {
	entry, ok := a.byUniverse[universe]
	if !ok {
		entry = newUniverseStats()
		a.byUniverse[universe] = entry
	}
	return entry
}

func (a *Aggregator) updateSource(entry *UniverseStats, sourceID string, sequence *uint8, ts *float64) {
	stats, ok := entry.PerSource[sourceID]
	if !ok {
		stats = &SourceStats{}
		entry.PerSource[sourceID] = stats
	}
	a.update(stats, sequence, ts)
}

// Universes returns every universe number currently tracked.
func (a *Aggregator) Universes() []uint16 {
	out := make([]uint16, 0, len(a.byUniverse))
	for u := range a.byUniverse {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Stats returns the raw per-universe stats, used by the conflict
// detector and by fps/report assembly.
func (a *Aggregator) Stats(universe uint16) (*UniverseStats, bool) {
	s, ok := a.byUniverse[universe]
	return s, ok
}

// AllStats returns every universe's stats, keyed by universe number.
func (a *Aggregator) AllStats() map[uint16]*UniverseStats {
	return a.byUniverse
}

func updateTSBounds(first, last **float64, ts *float64) {
	if ts == nil {
		return
	}
	if *first == nil || *ts < **first {
		v := *ts
		*first = &v
	}
	if *last == nil || *ts > **last {
		v := *ts
		*last = &v
	}
}

// Metrics is the aggregated sequence-loss/burst/jitter picture across
// every source on a universe.
type Metrics struct {
	LossPackets *uint64
	LossRate    *float64
	BurstCount  *uint64
	MaxBurstLen *uint64
	JitterMS    *float64
}

// ComputeMetrics aggregates per-source sliding-window statistics into a
// single universe-level Metrics value. Loss/burst figures are reported
// only once at least one source carries sequence numbers and the
// windowed frame count across sequenced sources exceeds one; jitter is
// reported whenever any source holds jitter samples, sequenced or not.
func ComputeMetrics(perSource map[string]*SourceStats) Metrics {
	var jitterSum float64
	var jitterCount uint64
	anySeq := false
	var totalSeqFrames, totalSeqLoss, totalSeqBursts, totalSeqMaxBurst uint64

	for _, stats := range perSource {
		if stats.LastSeq != nil {
			anySeq = true
			totalSeqFrames += framesInWindow(stats)
			totalSeqLoss += lossInWindow(stats)
			totalSeqBursts += burstCountInWindow(stats)
			if mb := maxBurstLenInWindow(stats); mb > totalSeqMaxBurst {
				totalSeqMaxBurst = mb
			}
		}
		if len(stats.JitterSamples) > 0 {
			jitterSum += stats.JitterSum / float64(len(stats.JitterSamples))
			jitterCount++
		}
	}

	var m Metrics
	if anySeq && totalSeqFrames > 1 {
		loss := totalSeqLoss
		m.LossPackets = &loss
		denom := totalSeqFrames + loss
		if denom > 0 {
			rate := float64(loss) / float64(denom)
			m.LossRate = &rate
		}
		bursts := totalSeqBursts
		m.BurstCount = &bursts
		maxBurst := totalSeqMaxBurst
		m.MaxBurstLen = &maxBurst
	}
	if jitterCount > 0 {
		ms := (jitterSum / float64(jitterCount)) * 1000.0
		m.JitterMS = &ms
	}
	return m
}

func framesInWindow(s *SourceStats) uint64 {
	if len(s.FrameSamples) == 0 {
		return s.Frames
	}
	return uint64(len(s.FrameSamples))
}

func lossInWindow(s *SourceStats) uint64 {
	if len(s.LossSamples) == 0 {
		return s.Loss
	}
	return s.LossSum
}

func burstCountInWindow(s *SourceStats) uint64 {
	if len(s.BurstStartSamples) == 0 {
		return s.BurstCount
	}
	return uint64(len(s.BurstStartSamples))
}

func maxBurstLenInWindow(s *SourceStats) uint64 {
	if len(s.BurstLengthSamples) == 0 && s.CurrentBurst == 0 {
		return s.MaxBurstLen
	}
	maxLen := s.CurrentBurst
	for _, sample := range s.BurstLengthSamples {
		if sample.value > maxLen {
			maxLen = sample.value
		}
	}
	return maxLen
}

// Summary is one universe's finalized metrics, paired with its sorted
// source list. fps and frame timing are folded in by the caller (the
// analysis package), which has access to the dmx frame log this
// aggregator does not.
type Summary struct {
	Universe uint16
	Sources  []SourceIdentity
	Metrics  Metrics
	Frames   uint64
}

// BuildSummaries finalizes every tracked universe into a sorted slice.
func (a *Aggregator) BuildSummaries() []Summary {
	out := make([]Summary, 0, len(a.byUniverse))
	for universe, stats := range a.byUniverse {
		sources := make([]SourceIdentity, 0, len(stats.Sources))
		for _, identity := range stats.Sources {
			sources = append(sources, identity)
		}
		sort.Slice(sources, func(i, j int) bool { return sources[i].SourceIP < sources[j].SourceIP })

		out = append(out, Summary{
			Universe: universe,
			Sources:  sources,
			Metrics:  ComputeMetrics(stats.PerSource),
			Frames:   stats.Frames,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Universe < out[j].Universe })
	return out
}
