package classify

import (
	"PcapDigest/internal/core/model"
)

// TagOther is the fallback protocol tag for packets carrying none of the
// recognized layers. It doubles as the fallback transport label for flow
// keying.
const TagOther = "Other"

// tagOrder fixes the order in which layer tags appear in a packet's tag set.
var tagOrder = []model.Layer{
	model.LayerTCP,
	model.LayerUDP,
	model.LayerICMP,
	model.LayerDNS,
	model.LayerIPv6,
	model.LayerIPv4,
}

// Classification carries everything downstream aggregation needs to know
// about one packet: its ordered protocol tags, its endpoint addresses and
// the transport label used for flow keying.
type Classification struct {
	// Tags is ordered and never empty.
	Tags []string
	// Src and Dst are empty when the packet has no network layer. IPv4
	// addresses win over IPv6 when a packet carries both.
	Src string
	Dst string
	// Transport is TCP, UDP or Other, by that precedence. It is derived
	// independently of Tags and may disagree with them.
	Transport string
}

// Classify derives the classification of a single decoded packet. It is a
// pure function: no side effects and no error conditions, since absent
// layers are a normal outcome.
func Classify(pkt *model.DecodedPacket) Classification {
	c := Classification{Transport: TagOther}

	for _, l := range tagOrder {
		if pkt.HasLayer(l) {
			c.Tags = append(c.Tags, l.String())
		}
	}
	if len(c.Tags) == 0 {
		c.Tags = []string{TagOther}
	}

	switch {
	case pkt.HasLayer(model.LayerIPv4):
		c.Src, c.Dst = pkt.IPv4Src, pkt.IPv4Dst
	case pkt.HasLayer(model.LayerIPv6):
		c.Src, c.Dst = pkt.IPv6Src, pkt.IPv6Dst
	}

	switch {
	case pkt.HasLayer(model.LayerTCP):
		c.Transport = model.LayerTCP.String()
	case pkt.HasLayer(model.LayerUDP):
		c.Transport = model.LayerUDP.String()
	}

	return c
}
