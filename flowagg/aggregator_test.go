package flowagg

import (
	"net"
	"testing"
)

func f(v float64) *float64 { return &v }

var srcIP = net.ParseIP("10.0.0.1")
var dstIP = net.ParseIP("10.0.0.2")

func TestNoDurationMeansNoRates(t *testing.T) {
	agg := NewAggregator(10.0, 1.0)
	agg.Add(srcIP, 1000, dstIP, 2000, 10, nil)
	agg.Add(srcIP, 1000, dstIP, 2000, 10, nil)

	summaries := agg.BuildSummaries()
	if summaries[0].PPS != nil || summaries[0].BPS != nil {
		t.Fatalf("expected nil rates with no timestamps, got %+v", summaries[0])
	}
}

func TestPeakRatesFromWindow(t *testing.T) {
	agg := NewAggregator(10.0, 1.0)
	for _, ts := range []float64{0.0, 0.2, 0.4, 2.0} {
		agg.Add(srcIP, 1000, dstIP, 2000, 10, f(ts))
	}

	summaries := agg.BuildSummaries()
	s := summaries[0]
	if s.PPS == nil || *s.PPS != 3.0 {
		t.Fatalf("pps = %v, want 3.0", s.PPS)
	}
	if s.BPS == nil || *s.BPS != 30.0 {
		t.Fatalf("bps = %v, want 30.0", s.BPS)
	}
}

func TestJitterIsAverageOfIATDiffs(t *testing.T) {
	agg := NewAggregator(10.0, 1.0)
	for _, ts := range []float64{0.0, 1.0, 3.0} {
		agg.Add(srcIP, 1000, dstIP, 2000, 4, f(ts))
	}

	s := agg.BuildSummaries()[0]
	if s.IATJitterMS == nil {
		t.Fatal("expected jitter to be reported")
	}
	if diff := *s.IATJitterMS - 1000.0; diff > 0.1 || diff < -0.1 {
		t.Fatalf("jitter = %v, want ~1000.0", *s.IATJitterMS)
	}
}

func TestMaxIATMSIsReported(t *testing.T) {
	agg := NewAggregator(10.0, 1.0)
	for _, ts := range []float64{0.0, 0.5, 2.0} {
		agg.Add(srcIP, 1000, dstIP, 2000, 10, f(ts))
	}

	s := agg.BuildSummaries()[0]
	if s.MaxIATMS == nil || *s.MaxIATMS != 1500 {
		t.Fatalf("max_iat_ms = %v, want 1500", s.MaxIATMS)
	}
}

func TestPeak1sMetricsReported(t *testing.T) {
	agg := NewAggregator(10.0, 1.0)
	for _, ts := range []float64{0.0, 0.2, 0.4, 2.0} {
		agg.Add(srcIP, 1000, dstIP, 2000, 10, f(ts))
	}

	s := agg.BuildSummaries()[0]
	if s.PPSPeak1s == nil || *s.PPSPeak1s != 3 {
		t.Fatalf("pps_peak_1s = %v, want 3", s.PPSPeak1s)
	}
	if s.BPSPeak1s == nil || *s.BPSPeak1s != 30 {
		t.Fatalf("bps_peak_1s = %v, want 30", s.BPSPeak1s)
	}
}

func TestEndpointFormattingIPv6IsBracketed(t *testing.T) {
	v6 := net.ParseIP("::1")
	agg := NewAggregator(10.0, 1.0)
	agg.Add(v6, 1000, dstIP, 2000, 10, f(0.0))
	s := agg.BuildSummaries()[0]
	if s.Src != "[::1]:1000" {
		t.Fatalf("src = %s, want [::1]:1000", s.Src)
	}
}

func TestSummariesSortedBySrcThenDst(t *testing.T) {
	agg := NewAggregator(10.0, 1.0)
	agg.Add(net.ParseIP("10.0.0.2"), 1000, dstIP, 2000, 1, f(0))
	agg.Add(net.ParseIP("10.0.0.1"), 1000, dstIP, 2000, 1, f(0))

	summaries := agg.BuildSummaries()
	if summaries[0].Src >= summaries[1].Src {
		t.Fatalf("expected sorted src, got %v", summaries)
	}
}
