package dmx

// Frame is one logged DMX frame, enough to measure per-universe frame
// rate without retaining the slot data itself.
type Frame struct {
	Universe  uint16
	Protocol  Protocol
	SourceID  string
	Timestamp *float64 // nil when the capture carried no timestamp
}

// FrameLog is an append-only per-universe record of decoded DMX frames.
type FrameLog struct {
	byUniverse map[uint16][]Frame
}

func NewFrameLog() *FrameLog {
	return &FrameLog{byUniverse: make(map[uint16][]Frame)}
}

func (l *FrameLog) Push(f Frame) {
	l.byUniverse[f.Universe] = append(l.byUniverse[f.Universe], f)
}

func (l *FrameLog) framesFor(universe uint16, protocol Protocol) []Frame {
	var out []Frame
	for _, f := range l.byUniverse[universe] {
		if f.Protocol == protocol {
			out = append(out, f)
		}
	}
	return out
}

// FPS measures the per-universe, per-protocol frame rate over the
// trailing window (fps.md §4.7): the window spans the lesser of the
// frame log's full duration and windowSeconds, and counts only frames
// whose timestamp falls within it. It returns false when there are no
// timestamped frames, the log spans zero duration, or the window is
// empty.
func (l *FrameLog) FPS(universe uint16, protocol Protocol, windowSeconds float64) (float64, bool) {
	frames := l.framesFor(universe, protocol)

	var earliest, last float64
	haveBounds := false
	counted := 0

	for _, f := range frames {
		if f.Timestamp == nil {
			continue
		}
		ts := *f.Timestamp
		if !haveBounds {
			earliest, last = ts, ts
			haveBounds = true
		} else {
			if ts < earliest {
				earliest = ts
			}
			if ts > last {
				last = ts
			}
		}
		counted++
	}

	if !haveBounds || counted == 0 || last <= earliest {
		return 0, false
	}

	windowStart := last - windowSeconds
	windowCount := 0
	for _, f := range frames {
		if f.Timestamp == nil {
			continue
		}
		if *f.Timestamp >= windowStart {
			windowCount++
		}
	}

	windowDuration := last - earliest
	if windowDuration > windowSeconds {
		windowDuration = windowSeconds
	}

	if windowDuration <= 0 || windowCount == 0 {
		return 0, false
	}
	return float64(windowCount) / windowDuration, true
}
