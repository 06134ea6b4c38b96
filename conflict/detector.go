// Package conflict detects multi-source timespan overlaps on the same
// universe: two sources transmitting the same universe for more than
// the configured overlap threshold are flagged, at universe
// granularity -- per-channel attribution is out of scope.
package conflict

import (
	"sort"
	"strings"

	"github.com/gopatchy/liveshark/universeagg"
)

// Conflict is one detected multi-source overlap on a universe.
type Conflict struct {
	Universe       uint16
	Sources        []string
	OverlapSeconds float64
	Severity       string
	ConflictScore  float64
	AffectedChannels []uint16 // always empty: channel-level attribution is out of scope
}

// Detect finds every pairwise source overlap exceeding thresholdSeconds
// across every universe in stats, sorted by (universe, joined sources).
func Detect(stats map[uint16]*universeagg.UniverseStats, thresholdSeconds float64) []Conflict {
	var conflicts []Conflict

	for universe, uni := range stats {
		keys := make([]string, 0, len(uni.PerSource))
		for k := range uni.PerSource {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for i := 0; i < len(keys); i++ {
			for j := i + 1; j < len(keys); j++ {
				a := uni.PerSource[keys[i]]
				b := uni.PerSource[keys[j]]
				if a.FirstTS == nil || a.LastTS == nil || b.FirstTS == nil || b.LastTS == nil {
					continue
				}

				overlap := minF(*a.LastTS, *b.LastTS) - maxF(*a.FirstTS, *b.FirstTS)
				if overlap < 0 {
					overlap = 0
				}
				if overlap <= thresholdSeconds {
					continue
				}

				conflicts = append(conflicts, Conflict{
					Universe:         universe,
					Sources:          []string{keys[i], keys[j]},
					OverlapSeconds:   overlap,
					Severity:         "medium",
					ConflictScore:    overlap,
					AffectedChannels: nil,
				})
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Universe != conflicts[j].Universe {
			return conflicts[i].Universe < conflicts[j].Universe
		}
		return strings.Join(conflicts[i].Sources, ",") < strings.Join(conflicts[j].Sources, ",")
	})
	return conflicts
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
