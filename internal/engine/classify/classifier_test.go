package classify

import (
	"reflect"
	"testing"

	"PcapDigest/internal/core/model"
)

func TestClassify_TagOrder(t *testing.T) {
	// A DNS-over-TCP packet over IPv4 carries three tags, in fixed order.
	pkt := &model.DecodedPacket{
		Length:  80,
		Layers:  model.Layers(model.LayerTCP, model.LayerDNS, model.LayerIPv4),
		IPv4Src: "10.0.0.1",
		IPv4Dst: "10.0.0.2",
	}

	c := Classify(pkt)

	want := []string{"TCP", "DNS", "IPv4"}
	if !reflect.DeepEqual(c.Tags, want) {
		t.Errorf("Tags = %v, want %v", c.Tags, want)
	}
}

func TestClassify_OtherFallback(t *testing.T) {
	pkt := &model.DecodedPacket{Length: 60}

	c := Classify(pkt)

	if len(c.Tags) != 1 || c.Tags[0] != TagOther {
		t.Errorf("Tags = %v, want [%s]", c.Tags, TagOther)
	}
	if c.Src != "" || c.Dst != "" {
		t.Errorf("Endpoints = (%q, %q), want both empty", c.Src, c.Dst)
	}
	if c.Transport != TagOther {
		t.Errorf("Transport = %q, want %q", c.Transport, TagOther)
	}
}

func TestClassify_EndpointPrecedence(t *testing.T) {
	// A packet carrying both network layers must report the IPv4 pair.
	pkt := &model.DecodedPacket{
		Length:  120,
		Layers:  model.Layers(model.LayerIPv4, model.LayerIPv6),
		IPv4Src: "192.168.1.1",
		IPv4Dst: "192.168.1.2",
		IPv6Src: "2001:db8::1",
		IPv6Dst: "2001:db8::2",
	}

	c := Classify(pkt)

	if c.Src != "192.168.1.1" || c.Dst != "192.168.1.2" {
		t.Errorf("Endpoints = (%q, %q), want IPv4 pair", c.Src, c.Dst)
	}
}

func TestClassify_IPv6Endpoints(t *testing.T) {
	pkt := &model.DecodedPacket{
		Length:  120,
		Layers:  model.Layers(model.LayerIPv6),
		IPv6Src: "2001:db8::1",
		IPv6Dst: "2001:db8::2",
	}

	c := Classify(pkt)

	if c.Src != "2001:db8::1" || c.Dst != "2001:db8::2" {
		t.Errorf("Endpoints = (%q, %q), want IPv6 pair", c.Src, c.Dst)
	}
}

func TestClassify_TransportPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		layers model.LayerSet
		want   string
	}{
		{"tcp wins over udp", model.Layers(model.LayerTCP, model.LayerUDP), "TCP"},
		{"udp alone", model.Layers(model.LayerUDP), "UDP"},
		{"icmp keys as other", model.Layers(model.LayerICMP, model.LayerIPv4), "Other"},
		{"dns over tcp keys as tcp", model.Layers(model.LayerTCP, model.LayerDNS), "TCP"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(&model.DecodedPacket{Length: 64, Layers: tc.layers})
			if c.Transport != tc.want {
				t.Errorf("Transport = %q, want %q", c.Transport, tc.want)
			}
		})
	}
}
