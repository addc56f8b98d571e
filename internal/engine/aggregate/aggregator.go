package aggregate

import (
	"sort"
	"time"

	"PcapDigest/internal/core/model"
	"PcapDigest/internal/engine/classify"
)

// TopN bounds the talker and flow rankings.
const TopN = 12

// UnknownHost stands in for an absent endpoint address in flow keys.
const UnknownHost = "unknown"

// FlowKey identifies one flow aggregation unit.
type FlowKey struct {
	Src      string
	Dst      string
	Protocol string
}

// FlowStats holds the exact counters accumulated for one flow.
type FlowStats struct {
	Packets uint64
	Bytes   uint64
}

// Flow pairs a key with its final counters, for ranking output.
type Flow struct {
	Key FlowKey
	FlowStats
}

// Talker is one ranked traffic source.
type Talker struct {
	IP    string
	Bytes uint64
}

// TagCount is one entry of the protocol breakdown.
type TagCount struct {
	Name  string
	Count uint64
}

// counter is an insertion-order-preserving frequency table. First-seen
// order is what makes ranking tie-breaks reproducible.
type counter struct {
	counts map[string]uint64
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]uint64)}
}

func (c *counter) add(key string, n uint64) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += n
}

// State is the aggregate of one capture pass. It is created empty, mutated
// once per packet by Observe, and read-only afterwards. All state is
// request-scoped; nothing survives the request that built it.
type State struct {
	PacketCount  uint64
	TotalBytes   uint64
	CaptureStart time.Time
	CaptureEnd   time.Time

	protocols *counter
	talkers   *counter
	hosts     map[string]struct{}

	flows     map[FlowKey]*FlowStats
	flowOrder []FlowKey
}

// NewState returns an empty aggregate ready for a single forward pass.
func NewState() *State {
	return &State{
		protocols: newCounter(),
		talkers:   newCounter(),
		hosts:     make(map[string]struct{}),
		flows:     make(map[FlowKey]*FlowStats),
	}
}

// Observe folds one classified packet into the aggregate. Packets must be
// fed in capture order: the capture bounds are the timestamps of the first
// and last packet observed, not the min/max over all packets.
func (s *State) Observe(pkt *model.DecodedPacket, c classify.Classification) {
	s.PacketCount++
	s.TotalBytes += uint64(pkt.Length)

	if s.PacketCount == 1 {
		s.CaptureStart = pkt.Timestamp
	}
	s.CaptureEnd = pkt.Timestamp

	for _, tag := range c.Tags {
		s.protocols.add(tag, 1)
	}

	if c.Src != "" {
		s.talkers.add(c.Src, uint64(pkt.Length))
		s.hosts[c.Src] = struct{}{}
	}
	if c.Dst != "" {
		s.hosts[c.Dst] = struct{}{}
	}

	key := FlowKey{
		Src:      orUnknown(c.Src),
		Dst:      orUnknown(c.Dst),
		Protocol: c.Transport,
	}
	stats, ok := s.flows[key]
	if !ok {
		stats = &FlowStats{}
		s.flows[key] = stats
		s.flowOrder = append(s.flowOrder, key)
	}
	stats.Packets++
	stats.Bytes += uint64(pkt.Length)
}

func orUnknown(addr string) string {
	if addr == "" {
		return UnknownHost
	}
	return addr
}

// UniqueHosts returns the number of distinct addresses seen as either a
// source or a destination.
func (s *State) UniqueHosts() int {
	return len(s.hosts)
}

// TagTotal returns the number of packets that carried the given tag.
func (s *State) TagTotal(tag string) uint64 {
	return s.protocols.counts[tag]
}

// Protocols returns the full protocol breakdown sorted by descending count,
// ties broken by first-seen order.
func (s *State) Protocols() []TagCount {
	out := make([]TagCount, 0, len(s.protocols.order))
	for _, name := range s.protocols.order {
		out = append(out, TagCount{Name: name, Count: s.protocols.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Talkers returns every traffic source with its cumulative bytes sent, in
// first-seen order. Used by the alert rules, which need the whole table.
func (s *State) Talkers() []Talker {
	out := make([]Talker, 0, len(s.talkers.order))
	for _, ip := range s.talkers.order {
		out = append(out, Talker{IP: ip, Bytes: s.talkers.counts[ip]})
	}
	return out
}

// TopTalkers returns the hosts ranked by descending bytes sent, ties broken
// by first-seen order, truncated to TopN.
func (s *State) TopTalkers() []Talker {
	ranked := s.Talkers()
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Bytes > ranked[j].Bytes })
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}

// TopFlows returns the flows ranked by descending byte count, ties broken
// by first-seen order, truncated to TopN.
func (s *State) TopFlows() []Flow {
	ranked := make([]Flow, 0, len(s.flowOrder))
	for _, key := range s.flowOrder {
		ranked = append(ranked, Flow{Key: key, FlowStats: *s.flows[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Bytes > ranked[j].Bytes })
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}
