package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"PcapDigest/internal/core/model"
	"PcapDigest/internal/engine/aggregate"
	"PcapDigest/internal/engine/classify"
)

func TestBuild_EmptyState(t *testing.T) {
	rpt := Build(aggregate.NewState(), nil)

	if rpt.Summary.CaptureStart != nil || rpt.Summary.CaptureEnd != nil {
		t.Error("capture bounds should be nil for an empty capture")
	}
	if rpt.Summary.PacketCount != 0 || rpt.Summary.TotalBytes != 0 || rpt.Summary.UniqueHosts != 0 {
		t.Errorf("empty report has non-zero counters: %+v", rpt.Summary)
	}
	if rpt.Summary.Protocols == nil || rpt.Summary.TopTalkers == nil || rpt.Summary.Alerts == nil || rpt.Flows == nil {
		t.Error("list fields must be non-nil so they serialize as empty arrays")
	}
}

func TestBuild_JSONContract(t *testing.T) {
	s := aggregate.NewState()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pkt := &model.DecodedPacket{
		Timestamp: ts,
		Length:    100,
		Layers:    model.Layers(model.LayerTCP, model.LayerIPv4),
		IPv4Src:   "10.0.0.1",
		IPv4Dst:   "10.0.0.2",
	}
	s.Observe(pkt, classify.Classify(pkt))

	data, err := json.Marshal(Build(s, []string{"test alert"}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	body := string(data)

	for _, field := range []string{
		`"summary"`, `"capture_start"`, `"capture_end"`, `"packet_count"`,
		`"total_bytes"`, `"unique_hosts"`, `"protocols"`, `"top_talkers"`,
		`"alerts"`, `"flows"`, `"name"`, `"count"`, `"ip"`, `"bytes"`,
		`"src"`, `"dst"`, `"protocol"`, `"packets"`,
	} {
		if !strings.Contains(body, field) {
			t.Errorf("report JSON missing field %s: %s", field, body)
		}
	}

	if !strings.Contains(body, `"capture_start":"2024-05-01T12:00:00Z"`) {
		t.Errorf("capture_start not serialized as UTC RFC 3339: %s", body)
	}
}

func TestBuild_TimestamplessPackets(t *testing.T) {
	s := aggregate.NewState()
	pkt := &model.DecodedPacket{Length: 64}
	s.Observe(pkt, classify.Classify(pkt))

	rpt := Build(s, nil)
	if rpt.Summary.CaptureStart != nil {
		t.Errorf("capture_start = %q, want nil for timestampless capture", *rpt.Summary.CaptureStart)
	}
	if rpt.Summary.PacketCount != 1 {
		t.Errorf("packet_count = %d, want 1", rpt.Summary.PacketCount)
	}
}
