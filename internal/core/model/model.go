package model

import (
	"io"
	"time"
)

// Layer identifies a protocol layer that a decoded packet may carry.
type Layer uint8

const (
	LayerTCP Layer = iota
	LayerUDP
	LayerICMP
	LayerDNS
	LayerIPv6
	LayerIPv4
)

func (l Layer) String() string {
	switch l {
	case LayerTCP:
		return "TCP"
	case LayerUDP:
		return "UDP"
	case LayerICMP:
		return "ICMP"
	case LayerDNS:
		return "DNS"
	case LayerIPv6:
		return "IPv6"
	case LayerIPv4:
		return "IPv4"
	}
	return "Unknown"
}

// LayerSet is a bitmask over the recognized layers of a single packet.
type LayerSet uint8

// Layers builds a set from the given layers.
func Layers(ls ...Layer) LayerSet {
	var s LayerSet
	for _, l := range ls {
		s = s.With(l)
	}
	return s
}

// With returns the set extended with the given layer.
func (s LayerSet) With(l Layer) LayerSet {
	return s | 1<<l
}

// Has reports whether the set contains the given layer.
func (s LayerSet) Has(l Layer) bool {
	return s&(1<<l) != 0
}

// DecodedPacket is the neutral record a decoder produces for one captured
// frame. Timestamp is the zero value when the capture carried no timestamp.
// Length is the on-wire byte length of the frame. The address pairs are
// empty strings when the corresponding network layer is absent.
type DecodedPacket struct {
	Timestamp time.Time
	Length    int
	Layers    LayerSet
	IPv4Src   string
	IPv4Dst   string
	IPv6Src   string
	IPv6Dst   string
}

// HasLayer reports whether the packet carries the given layer.
func (p *DecodedPacket) HasLayer(l Layer) bool {
	return p.Layers.Has(l)
}

// Decoder turns raw capture bytes into the ordered packet sequence the
// engine consumes, preserving on-wire order. A malformed or truncated
// capture yields an error; an empty capture yields an empty slice and no
// error, so the two cases stay distinguishable at the transport boundary.
type Decoder interface {
	Decode(r io.Reader) ([]DecodedPacket, error)
}
