package alert

import (
	"testing"

	"PcapDigest/internal/core/model"
	"PcapDigest/internal/engine/aggregate"
	"PcapDigest/internal/engine/classify"
)

const (
	largeCaptureMsg   = "Large capture: more than 100k packets."
	highDNSMsg        = "High DNS volume relative to total traffic."
	dominantTalkerMsg = "Single host dominates traffic volume."
)

func observe(s *aggregate.State, pkt *model.DecodedPacket) {
	s.Observe(pkt, classify.Classify(pkt))
}

// fill feeds n packets, dnsCount of which carry the DNS layer.
func fill(s *aggregate.State, n, dnsCount int) {
	dns := &model.DecodedPacket{
		Length:  60,
		Layers:  model.Layers(model.LayerUDP, model.LayerDNS, model.LayerIPv4),
		IPv4Src: "10.0.0.1",
		IPv4Dst: "8.8.8.8",
	}
	plain := &model.DecodedPacket{
		Length:  60,
		Layers:  model.Layers(model.LayerTCP, model.LayerIPv4),
		IPv4Src: "10.0.0.1",
		IPv4Dst: "10.0.0.2",
	}
	for i := 0; i < dnsCount; i++ {
		observe(s, dns)
	}
	for i := 0; i < n-dnsCount; i++ {
		observe(s, plain)
	}
}

func contains(alerts []string, msg string) bool {
	for _, a := range alerts {
		if a == msg {
			return true
		}
	}
	return false
}

func TestEvaluate_EmptyState(t *testing.T) {
	alerts := Evaluate(aggregate.NewState())
	if len(alerts) != 0 {
		t.Errorf("Evaluate(empty) = %v, want no alerts", alerts)
	}
}

func TestEvaluate_LargeCaptureBoundary(t *testing.T) {
	s := aggregate.NewState()
	fill(s, 100_000, 0)
	if contains(Evaluate(s), largeCaptureMsg) {
		t.Error("large-capture alert fired at exactly 100000 packets")
	}

	fill(s, 1, 0)
	if !contains(Evaluate(s), largeCaptureMsg) {
		t.Error("large-capture alert did not fire at 100001 packets")
	}
}

func TestEvaluate_DNSVolume(t *testing.T) {
	s := aggregate.NewState()
	fill(s, 100_000, 40_000) // 40% > 35%
	if !contains(Evaluate(s), highDNSMsg) {
		t.Error("DNS volume alert did not fire at 40% DNS")
	}

	s = aggregate.NewState()
	fill(s, 100_000, 30_000) // 30% < 35%
	if contains(Evaluate(s), highDNSMsg) {
		t.Error("DNS volume alert fired at 30% DNS")
	}
}

func TestEvaluate_DominantTalker(t *testing.T) {
	s := aggregate.NewState()
	a := &model.DecodedPacket{
		Length:  700,
		Layers:  model.Layers(model.LayerTCP, model.LayerIPv4),
		IPv4Src: "10.0.0.1",
		IPv4Dst: "10.0.0.2",
	}
	b := &model.DecodedPacket{
		Length:  300,
		Layers:  model.Layers(model.LayerTCP, model.LayerIPv4),
		IPv4Src: "10.0.0.2",
		IPv4Dst: "10.0.0.1",
	}
	observe(s, a)
	observe(s, b)

	// 700/1000 > 0.6
	if !contains(Evaluate(s), dominantTalkerMsg) {
		t.Error("dominant-talker alert did not fire at 70% share")
	}

	// Even the split and it must not fire: 700/1400 = 0.5.
	observe(s, &model.DecodedPacket{
		Length:  400,
		Layers:  model.Layers(model.LayerTCP, model.LayerIPv4),
		IPv4Src: "10.0.0.2",
		IPv4Dst: "10.0.0.1",
	})
	if contains(Evaluate(s), dominantTalkerMsg) {
		t.Error("dominant-talker alert fired at 50% share")
	}
}

func TestEvaluate_NoTalkersNoDivisionByZero(t *testing.T) {
	s := aggregate.NewState()
	// Packets without network layers produce no talkers.
	observe(s, &model.DecodedPacket{Length: 64})
	observe(s, &model.DecodedPacket{Length: 64})

	if contains(Evaluate(s), dominantTalkerMsg) {
		t.Error("dominant-talker alert fired with zero talkers")
	}
}

func TestEvaluate_RuleOrder(t *testing.T) {
	s := aggregate.NewState()
	fill(s, 100_001, 50_000) // triggers all three rules

	alerts := Evaluate(s)
	want := []string{largeCaptureMsg, highDNSMsg, dominantTalkerMsg}
	if len(alerts) != len(want) {
		t.Fatalf("Evaluate = %v, want %v", alerts, want)
	}
	for i := range want {
		if alerts[i] != want[i] {
			t.Fatalf("Evaluate = %v, want declaration order %v", alerts, want)
		}
	}
}
