package report

import (
	"context"
	"time"

	"PcapDigest/internal/engine/aggregate"
)

// ProtocolCount is one entry of the protocol breakdown.
type ProtocolCount struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// Talker is one ranked traffic source.
type Talker struct {
	IP    string `json:"ip"`
	Bytes uint64 `json:"bytes"`
}

// Flow is one ranked flow entry.
type Flow struct {
	Src      string `json:"src"`
	Dst      string `json:"dst"`
	Protocol string `json:"protocol"`
	Bytes    uint64 `json:"bytes"`
	Packets  uint64 `json:"packets"`
}

// Summary holds the capture metadata, counters, breakdowns and alerts.
// Capture bounds are UTC RFC 3339 strings, null when the capture is empty.
type Summary struct {
	CaptureStart *string         `json:"capture_start"`
	CaptureEnd   *string         `json:"capture_end"`
	PacketCount  uint64          `json:"packet_count"`
	TotalBytes   uint64          `json:"total_bytes"`
	UniqueHosts  int             `json:"unique_hosts"`
	Protocols    []ProtocolCount `json:"protocols"`
	TopTalkers   []Talker        `json:"top_talkers"`
	Alerts       []string        `json:"alerts"`
}

// Report is the final immutable result of one analysis.
type Report struct {
	Summary Summary `json:"summary"`
	Flows   []Flow  `json:"flows"`
}

// CaptureMeta describes the upload a report was built from. It travels with
// the report to boundary sinks, never into the core.
type CaptureMeta struct {
	ReceivedAt time.Time
	FileName   string
}

// Sink consumes finished reports at the transport boundary, for example a
// message bus or an archive table. Sinks must not influence the response:
// the caller logs sink errors and moves on.
type Sink interface {
	Store(ctx context.Context, meta CaptureMeta, rpt *Report) error
}

// Build assembles the report from a finished aggregate and the evaluated
// alert list. Pure structural assembly; list fields are always non-nil so
// an empty capture serializes with empty arrays rather than nulls.
func Build(s *aggregate.State, alerts []string) *Report {
	protocols := make([]ProtocolCount, 0)
	for _, tc := range s.Protocols() {
		protocols = append(protocols, ProtocolCount{Name: tc.Name, Count: tc.Count})
	}

	talkers := make([]Talker, 0)
	for _, t := range s.TopTalkers() {
		talkers = append(talkers, Talker{IP: t.IP, Bytes: t.Bytes})
	}

	flows := make([]Flow, 0)
	for _, f := range s.TopFlows() {
		flows = append(flows, Flow{
			Src:      f.Key.Src,
			Dst:      f.Key.Dst,
			Protocol: f.Key.Protocol,
			Bytes:    f.Bytes,
			Packets:  f.Packets,
		})
	}

	if alerts == nil {
		alerts = make([]string, 0)
	}

	return &Report{
		Summary: Summary{
			CaptureStart: isoTime(s.CaptureStart, s.PacketCount > 0),
			CaptureEnd:   isoTime(s.CaptureEnd, s.PacketCount > 0),
			PacketCount:  s.PacketCount,
			TotalBytes:   s.TotalBytes,
			UniqueHosts:  s.UniqueHosts(),
			Protocols:    protocols,
			TopTalkers:   talkers,
			Alerts:       alerts,
		},
		Flows: flows,
	}
}

// isoTime renders a capture bound as a UTC RFC 3339 string, or nil when the
// capture held no packets or the packet carried no timestamp.
func isoTime(t time.Time, present bool) *string {
	if !present || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
