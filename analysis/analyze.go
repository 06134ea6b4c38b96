package analysis

import (
	"strings"
	"time"

	"github.com/gopatchy/liveshark/artnet"
	"github.com/gopatchy/liveshark/compliance"
	"github.com/gopatchy/liveshark/config"
	"github.com/gopatchy/liveshark/dmx"
	"github.com/gopatchy/liveshark/flowagg"
	"github.com/gopatchy/liveshark/sacn"
	"github.com/gopatchy/liveshark/udp"
	"github.com/gopatchy/liveshark/universeagg"
)

// Result is everything Analyze gathers from a packet source, before
// it's folded into a report.Report by the caller (which knows the
// input path and byte count, neither of which Analyze has access to).
type Result struct {
	PacketsTotal uint64
	FirstTS      *float64
	LastTS       *float64

	ArtNetStats *universeagg.Aggregator
	SACNStats   *universeagg.Aggregator
	Flows       *flowagg.Aggregator
	// DMX holds reconstructed per-universe slot state. Nothing in the
	// report reads it back -- the report surfaces loss/rate/conflict
	// metrics, not live channel values, matching the original analyzer.
	// It stays on Result for callers that want the reconstructed state
	// directly (e.g. a future live-view), and is covered by
	// dmx/store_test.go in isolation.
	DMX        *dmx.StateStore
	FrameLog   *dmx.FrameLog
	Compliance *compliance.Recorder
}

// Analyze drains source to completion, decoding every UDP packet as
// Art-Net and/or sACN, reconstructing DMX state, and accumulating the
// per-universe and per-flow statistics needed to assemble a report.
func Analyze(cfg *config.Config, source PacketSource) (*Result, error) {
	jitterWindow := cfg.JitterWindow.Seconds()
	rateWindow := cfg.RateWindow.Seconds()

	res := &Result{
		ArtNetStats: universeagg.NewAggregator(jitterWindow),
		SACNStats:   universeagg.NewAggregator(jitterWindow),
		Flows:       flowagg.NewAggregator(jitterWindow, rateWindow),
		DMX:         dmx.NewStateStore(),
		FrameLog:    dmx.NewFrameLog(),
		Compliance:  compliance.NewRecorder(cfg.ComplianceExampleCap),
	}

	for {
		event, err := source.NextPacket()
		if err != nil {
			return nil, err
		}
		if event == nil {
			break
		}
		res.PacketsTotal++
		updateTSBounds(&res.FirstTS, &res.LastTS, event.Ts)

		packet, err := udp.Decode(event.LinkType, event.Data)
		if err != nil {
			recordDecodeError(res.Compliance, "udp", err, "", 0, event.Ts)
			continue
		}
		if packet == nil {
			continue
		}

		dispatchArtNet(cfg, res, packet, event.Ts)
		dispatchSACN(cfg, res, packet, event.Ts)
		res.Flows.Add(packet.SrcIP, packet.SrcPort, packet.DstIP, packet.DstPort, len(packet.Payload), event.Ts)
	}

	return res, nil
}

func dispatchArtNet(cfg *config.Config, res *Result, packet *udp.Packet, ts *float64) {
	frame, err := artnet.Parse(packet.Payload)
	if err != nil {
		recordDecodeError(res.Compliance, "artnet", err, packet.SrcIP.String(), packet.SrcPort, ts)
		return
	}
	if frame == nil {
		return
	}

	if int(packet.SrcPort) != cfg.ArtNetPort && int(packet.DstPort) != cfg.ArtNetPort {
		recordDecodeError(res.Compliance, "artnet", artnet.ErrPort(), packet.SrcIP.String(), packet.SrcPort, ts)
	}

	sourceID := res.ArtNetStats.AddArtNetFrame(frame.Universe, packet.SrcIP.String(), packet.SrcPort, frame.Sequence, ts)
	res.FrameLog.Push(dmx.Frame{Universe: frame.Universe, Protocol: dmx.ArtNet, SourceID: sourceID, Timestamp: ts})
	res.DMX.ApplyPartial(frame.Universe, sourceID, dmx.ArtNet, frame.Slots)
}

func dispatchSACN(cfg *config.Config, res *Result, packet *udp.Packet, ts *float64) {
	frame, err := sacn.Parse(packet.Payload)
	if err != nil {
		recordDecodeError(res.Compliance, "sacn", err, packet.SrcIP.String(), packet.SrcPort, ts)
		return
	}
	if frame == nil {
		return
	}

	if int(packet.SrcPort) != cfg.SACNPort && int(packet.DstPort) != cfg.SACNPort {
		recordDecodeError(res.Compliance, "sacn", sacn.ErrPort(), packet.SrcIP.String(), packet.SrcPort, ts)
	}

	// An all-zero CID is a sender that left its CID blank: identify it by
	// ip:port instead.
	cid := frame.CID
	if strings.Trim(cid, "0") == "" {
		cid = ""
	}
	sourceID := res.SACNStats.AddSACNFrame(frame.Universe, packet.SrcIP.String(), packet.SrcPort, cid, frame.SourceName, frame.Sequence, ts)
	res.FrameLog.Push(dmx.Frame{Universe: frame.Universe, Protocol: dmx.SACN, SourceID: sourceID, Timestamp: ts})
	res.DMX.ApplyPartial(frame.Universe, sourceID, dmx.SACN, frame.Slots)
}

func recordDecodeError(rec *compliance.Recorder, protocol string, err error, sourceIP string, sourcePort uint16, ts *float64) {
	id, severity, message := "", "error", err.Error()

	switch e := err.(type) {
	case *udp.DecodeError:
		id = e.ID
		message = e.Message
	case *artnet.DecodeError:
		id, severity, message = e.ID, e.Severity, e.Message
	case *sacn.DecodeError:
		id, severity, message = e.ID, e.Severity, e.Message
	default:
		return
	}

	example := ""
	if sourceIP != "" {
		example = compliance.FormatExample(sourceIP, sourcePort, tsToRFC3339(ts), message)
	}
	rec.Record(protocol, id, severity, message, example)
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

func tsToRFC3339(ts *float64) string {
	if ts == nil {
		return "unknown"
	}
	return time.Unix(0, int64(*ts*1e9)).UTC().Format(time.RFC3339)
}
