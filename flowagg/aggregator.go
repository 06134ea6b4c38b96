// Package flowagg tracks per-4-tuple UDP flow packet/byte rates and
// inter-arrival jitter over sliding time windows.
package flowagg

import (
	"fmt"
	"net"
	"sort"
)

type flowKey struct {
	srcIP   string
	srcPort uint16
	dstIP   string
	dstPort uint16
}

type sample struct {
	ts    float64
	bytes uint64
}

type jitterSample struct {
	ts    float64
	value float64
}

// Stats is the sliding-window bookkeeping for one flow.
type Stats struct {
	Packets uint64
	Bytes   uint64

	firstTS *float64
	lastTS  *float64
	prevIAT *float64
	iatCount uint64
	maxIATMS *uint64

	jitterSum     float64
	jitterSamples []jitterSample
	jitterPeak    *float64

	windowPackets uint64
	windowBytes   uint64
	windowSamples []sample

	peakPPS           *float64
	peakBPS           *float64
	peakWindowPackets uint64
	peakWindowBytes   uint64
}

// Aggregator owns every flow's sliding-window statistics.
type Aggregator struct {
	jitterWindow float64
	rateWindow   float64
	flows        map[flowKey]*Stats
}

func NewAggregator(jitterWindowSeconds, rateWindowSeconds float64) *Aggregator {
	return &Aggregator{
		jitterWindow: jitterWindowSeconds,
		rateWindow:   rateWindowSeconds,
		flows:        make(map[flowKey]*Stats),
	}
}

// Add records one packet's worth of statistics for its 4-tuple flow.
func (a *Aggregator) Add(srcIP net.IP, srcPort uint16, dstIP net.IP, dstPort uint16, payloadLen int, ts *float64) {
	key := flowKey{srcIP: srcIP.String(), srcPort: srcPort, dstIP: dstIP.String(), dstPort: dstPort}
	stats, ok := a.flows[key]
	if !ok {
		stats = &Stats{}
		a.flows[key] = stats
	}
	stats.Packets++
	stats.Bytes += uint64(payloadLen)
	a.updateJitter(stats, ts)
	a.updateRates(stats, ts, uint64(payloadLen))
}

func (a *Aggregator) updateJitter(s *Stats, ts *float64) {
	if ts == nil {
		return
	}
	if s.firstTS == nil {
		v := *ts
		s.firstTS = &v
	}
	if s.lastTS != nil {
		iat := *ts - *s.lastTS
		if iat >= 0 {
			s.iatCount++
			ms := int64(iat*1000.0 + 0.5)
			if ms >= 0 {
				um := uint64(ms)
				if s.maxIATMS == nil || um > *s.maxIATMS {
					s.maxIATMS = &um
				}
			}
		}
		if s.prevIAT != nil {
			diff := iat - *s.prevIAT
			if diff < 0 {
				diff = -diff
			}
			s.jitterSum += diff
			s.jitterSamples = append(s.jitterSamples, jitterSample{ts: *ts, value: diff})
			i := 0
			for i < len(s.jitterSamples) && *ts-s.jitterSamples[i].ts > a.jitterWindow {
				s.jitterSum -= s.jitterSamples[i].value
				i++
			}
			s.jitterSamples = s.jitterSamples[i:]
			windowAvg := s.jitterSum / float64(len(s.jitterSamples))
			if s.jitterPeak == nil || windowAvg > *s.jitterPeak {
				v := windowAvg
				s.jitterPeak = &v
			}
		}
		v := iat
		s.prevIAT = &v
	}
	v := *ts
	s.lastTS = &v
}

func (a *Aggregator) updateRates(s *Stats, ts *float64, payloadBytes uint64) {
	if ts == nil {
		return
	}
	s.windowPackets++
	s.windowBytes += payloadBytes
	s.windowSamples = append(s.windowSamples, sample{ts: *ts, bytes: payloadBytes})

	i := 0
	for i < len(s.windowSamples) && *ts-s.windowSamples[i].ts > a.rateWindow {
		if s.windowPackets > 0 {
			s.windowPackets--
		}
		if s.windowBytes >= s.windowSamples[i].bytes {
			s.windowBytes -= s.windowSamples[i].bytes
		} else {
			s.windowBytes = 0
		}
		i++
	}
	s.windowSamples = s.windowSamples[i:]

	pps := float64(s.windowPackets) / a.rateWindow
	bps := float64(s.windowBytes) / a.rateWindow
	if s.peakPPS == nil || pps > *s.peakPPS {
		v := pps
		s.peakPPS = &v
	}
	if s.peakBPS == nil || bps > *s.peakBPS {
		v := bps
		s.peakBPS = &v
	}
	if s.windowPackets > s.peakWindowPackets {
		s.peakWindowPackets = s.windowPackets
	}
	if s.windowBytes > s.peakWindowBytes {
		s.peakWindowBytes = s.windowBytes
	}
}

// Summary is one flow's finalized, report-ready statistics.
type Summary struct {
	Src           string
	Dst           string
	PPS           *float64
	BPS           *float64
	IATJitterMS   *float64
	MaxIATMS      *uint64
	PPSPeak1s     *uint64
	BPSPeak1s     *uint64
}

// BuildSummaries finalizes every tracked flow, sorted by (src, dst).
func (a *Aggregator) BuildSummaries() []Summary {
	out := make([]Summary, 0, len(a.flows))
	for key, stats := range a.flows {
		var maxIAT *uint64
		if stats.iatCount > 0 {
			maxIAT = stats.maxIATMS
		}

		var ppsPeak, bpsPeak *uint64
		if stats.firstTS != nil && stats.lastTS != nil && *stats.lastTS-*stats.firstTS >= a.rateWindow {
			p := stats.peakWindowPackets
			b := stats.peakWindowBytes
			ppsPeak, bpsPeak = &p, &b
		}

		var iatJitterMS *float64
		if stats.jitterPeak != nil {
			v := *stats.jitterPeak * 1000.0
			iatJitterMS = &v
		}

		out = append(out, Summary{
			Src:         formatEndpoint(key.srcIP, key.srcPort),
			Dst:         formatEndpoint(key.dstIP, key.dstPort),
			PPS:         stats.peakPPS,
			BPS:         stats.peakBPS,
			IATJitterMS: iatJitterMS,
			MaxIATMS:    maxIAT,
			PPSPeak1s:   ppsPeak,
			BPSPeak1s:   bpsPeak,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Src != out[j].Src {
			return out[i].Src < out[j].Src
		}
		return out[i].Dst < out[j].Dst
	})
	return out
}

func formatEndpoint(ip string, port uint16) string {
	parsed := net.ParseIP(ip)
	if parsed != nil && parsed.To4() == nil {
		return fmt.Sprintf("[%s]:%d", ip, port)
	}
	return fmt.Sprintf("%s:%d", ip, port)
}
