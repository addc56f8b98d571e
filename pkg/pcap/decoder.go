package pcap

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"PcapDigest/internal/core/model"
)

// ErrMalformedCapture marks captures that could not be read at all, as
// opposed to valid captures containing zero packets.
var ErrMalformedCapture = errors.New("malformed capture")

// ErrTooManyPackets is returned when a capture exceeds the decoder's
// configured packet cap.
var ErrTooManyPackets = errors.New("capture exceeds packet limit")

// captureSource is the common surface of pcapgo's classic and pcapng readers.
type captureSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Decoder decodes classic pcap and pcapng captures with gopacket and
// implements model.Decoder.
type Decoder struct {
	maxPackets int
}

// NewDecoder creates a decoder. maxPackets caps the number of packets read
// from a single capture; 0 means unlimited.
func NewDecoder(maxPackets int) *Decoder {
	return &Decoder{maxPackets: maxPackets}
}

// Decode reads a whole capture and returns its packets in on-wire order.
// The capture format is sniffed: classic pcap first, then pcapng.
func (d *Decoder) Decode(r io.Reader) ([]model.DecodedPacket, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading capture: %w", err)
	}

	src, err := openSource(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCapture, err)
	}

	var packets []model.DecodedPacket
	for {
		raw, ci, err := src.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A read error mid-capture means truncation or corruption;
			// surface it rather than returning a partial sequence.
			return nil, fmt.Errorf("%w: %v", ErrMalformedCapture, err)
		}
		if d.maxPackets > 0 && len(packets) >= d.maxPackets {
			return nil, fmt.Errorf("%w: more than %d packets", ErrTooManyPackets, d.maxPackets)
		}
		packets = append(packets, decodePacket(raw, ci, src.LinkType()))
	}

	return packets, nil
}

// openSource sniffs the capture format. pcapgo rejects a classic pcap
// header in a pcapng file and vice versa, so trying both in order is safe.
func openSource(data []byte) (captureSource, error) {
	if r, err := pcapgo.NewReader(bytes.NewReader(data)); err == nil {
		return r, nil
	}
	r, err := pcapgo.NewNgReader(bytes.NewReader(data), pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// decodePacket extracts layer membership and addresses from one raw frame.
// Undecodable layers simply end up absent; that is a normal outcome, not an
// error — such packets classify as Other downstream.
func decodePacket(raw []byte, ci gopacket.CaptureInfo, linkType layers.LinkType) model.DecodedPacket {
	pkt := gopacket.NewPacket(raw, linkType, gopacket.Default)

	rec := model.DecodedPacket{
		Timestamp: ci.Timestamp,
		Length:    ci.Length,
	}
	if rec.Length == 0 {
		rec.Length = len(raw)
	}

	if l := pkt.Layer(layers.LayerTypeTCP); l != nil {
		rec.Layers = rec.Layers.With(model.LayerTCP)
	}
	if l := pkt.Layer(layers.LayerTypeUDP); l != nil {
		rec.Layers = rec.Layers.With(model.LayerUDP)
	}
	if l := pkt.Layer(layers.LayerTypeICMPv4); l != nil {
		rec.Layers = rec.Layers.With(model.LayerICMP)
	}
	if l := pkt.Layer(layers.LayerTypeICMPv6); l != nil {
		rec.Layers = rec.Layers.With(model.LayerICMP)
	}
	if l := pkt.Layer(layers.LayerTypeDNS); l != nil {
		rec.Layers = rec.Layers.With(model.LayerDNS)
	}
	if l := pkt.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		rec.Layers = rec.Layers.With(model.LayerIPv4)
		rec.IPv4Src = ip.SrcIP.String()
		rec.IPv4Dst = ip.DstIP.String()
	}
	if l := pkt.Layer(layers.LayerTypeIPv6); l != nil {
		ip := l.(*layers.IPv6)
		rec.Layers = rec.Layers.With(model.LayerIPv6)
		rec.IPv6Src = ip.SrcIP.String()
		rec.IPv6Dst = ip.DstIP.String()
	}

	return rec
}
