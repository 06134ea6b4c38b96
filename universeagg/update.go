package universeagg

// update folds one frame's sequence number and timestamp into a
// source's sliding-window statistics: frame/jitter windows are updated
// whenever a timestamp is present; loss/burst bookkeeping only runs when a sequence number is
// present, using modulo-256 gap arithmetic so wraparound from 255 to 0
// is not mistaken for loss.
func (a *Aggregator) update(stats *SourceStats, sequence *uint8, ts *float64) {
	stats.Frames++

	if stats.FirstTS == nil && ts != nil {
		v := *ts
		stats.FirstTS = &v
	}
	if ts != nil {
		stats.FrameSamples = append(stats.FrameSamples, *ts)
		stats.FrameSamples = pruneTimestamps(stats.FrameSamples, *ts, a.jitterWindow)
	}

	if ts != nil && stats.LastTS != nil {
		iat := *ts - *stats.LastTS
		if stats.PrevIAT != nil {
			diff := iat - *stats.PrevIAT
			if diff < 0 {
				diff = -diff
			}
			stats.JitterSum += diff
			stats.JitterSamples = append(stats.JitterSamples, floatSample{ts: *ts, value: diff})
			stats.JitterSamples = pruneJitterSamples(stats.JitterSamples, *ts, a.jitterWindow, &stats.JitterSum)
		}
		v := iat
		stats.PrevIAT = &v
	}
	stats.LastTS = ts

	if sequence != nil {
		seq := *sequence
		if stats.LastSeq != nil {
			expected := *stats.LastSeq + 1 // uint8 wraparound is intentional
			gap := uint16(seq - expected)  // uint8 wraparound is intentional

			if gap > 0 && gap < 128 {
				stats.Loss += uint64(gap)
				if ts != nil {
					stats.LossSum += uint64(gap)
					stats.LossSamples = append(stats.LossSamples, uintSample{ts: *ts, value: uint64(gap)})
					stats.LossSamples = pruneUintSamples(stats.LossSamples, *ts, a.jitterWindow, &stats.LossSum)
				}
				if stats.CurrentBurst == 0 {
					stats.BurstCount++
					if ts != nil {
						stats.BurstStartSamples = append(stats.BurstStartSamples, *ts)
						stats.BurstStartSamples = pruneTimestamps(stats.BurstStartSamples, *ts, a.jitterWindow)
					}
				}
				stats.CurrentBurst += uint64(gap)
				if stats.CurrentBurst > stats.MaxBurstLen {
					stats.MaxBurstLen = stats.CurrentBurst
				}
			} else {
				if stats.CurrentBurst > 0 && ts != nil {
					stats.BurstLengthSamples = append(stats.BurstLengthSamples, uintSample{ts: *ts, value: stats.CurrentBurst})
					stats.BurstLengthSamples = pruneBurstLengthSamples(stats.BurstLengthSamples, *ts, a.jitterWindow)
				}
				stats.CurrentBurst = 0
			}
		}
		stats.LastSeq = &seq
	}
}

func pruneJitterSamples(samples []floatSample, now, window float64, sum *float64) []floatSample {
	i := 0
	for i < len(samples) && now-samples[i].ts > window {
		*sum -= samples[i].value
		i++
	}
	return samples[i:]
}
