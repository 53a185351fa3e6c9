package capture

import (
	"net"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		t.Fatalf("failed to serialize packet: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDestination_IPv4TCP(t *testing.T) {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("10.0.0.2").To4(),
		DstIP:    net.ParseIP("203.0.113.10").To4(),
	}
	tcp := &layers.TCP{SrcPort: 51000, DstPort: 15500, SYN: true}
	tcp.SetNetworkLayerForChecksum(ip)

	pkt := &Packet{}
	decodeDestination(serialize(t, ip, tcp), pkt)

	if got := pkt.DstAddr.String(); got != "203.0.113.10" {
		t.Errorf("expected destination 203.0.113.10, got %s", got)
	}
	if !pkt.HasPort || pkt.DstPort != 15500 {
		t.Errorf("expected port 15500, got %d (hasPort=%v)", pkt.DstPort, pkt.HasPort)
	}
	if pkt.Protocol != "tcp" {
		t.Errorf("expected protocol tcp, got %s", pkt.Protocol)
	}
}

func TestDecodeDestination_IPv4UDP(t *testing.T) {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.ParseIP("10.0.0.2").To4(),
		DstIP:    net.ParseIP("198.51.100.7").To4(),
	}
	udp := &layers.UDP{SrcPort: 40000, DstPort: 15999}
	udp.SetNetworkLayerForChecksum(ip)

	pkt := &Packet{}
	decodeDestination(serialize(t, ip, udp, gopacket.Payload([]byte("data"))), pkt)

	if got := pkt.DstAddr.String(); got != "198.51.100.7" {
		t.Errorf("expected destination 198.51.100.7, got %s", got)
	}
	if !pkt.HasPort || pkt.DstPort != 15999 {
		t.Errorf("expected port 15999, got %d (hasPort=%v)", pkt.DstPort, pkt.HasPort)
	}
	if pkt.Protocol != "udp" {
		t.Errorf("expected protocol udp, got %s", pkt.Protocol)
	}
}

func TestDecodeDestination_IPv6UDP(t *testing.T) {
	ip := &layers.IPv6{
		Version:    6,
		HopLimit:   64,
		NextHeader: layers.IPProtocolUDP,
		SrcIP:      net.ParseIP("2001:db8::2"),
		DstIP:      net.ParseIP("2001:db8::99"),
	}
	udp := &layers.UDP{SrcPort: 40000, DstPort: 15500}
	udp.SetNetworkLayerForChecksum(ip)

	pkt := &Packet{}
	decodeDestination(serialize(t, ip, udp, gopacket.Payload([]byte("data"))), pkt)

	if got := pkt.DstAddr.String(); got != "2001:db8::99" {
		t.Errorf("expected destination 2001:db8::99, got %s", got)
	}
	if !pkt.HasPort || pkt.DstPort != 15500 {
		t.Errorf("expected port 15500, got %d (hasPort=%v)", pkt.DstPort, pkt.HasPort)
	}
}

func TestDecodeDestination_NoTransportPort(t *testing.T) {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    net.ParseIP("10.0.0.2").To4(),
		DstIP:    net.ParseIP("203.0.113.10").To4(),
	}
	icmp := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0)}

	pkt := &Packet{}
	decodeDestination(serialize(t, ip, icmp), pkt)

	if got := pkt.DstAddr.String(); got != "203.0.113.10" {
		t.Errorf("expected destination 203.0.113.10, got %s", got)
	}
	if pkt.HasPort {
		t.Error("expected no transport port for ICMP")
	}
}

func TestDecodeDestination_Garbage(t *testing.T) {
	pkt := &Packet{}
	decodeDestination([]byte{0x00, 0x01, 0x02}, pkt)
	if pkt.DstAddr.IsValid() {
		t.Error("expected no destination for undecodable payload")
	}

	pkt = &Packet{}
	decodeDestination(nil, pkt)
	if pkt.DstAddr.IsValid() {
		t.Error("expected no destination for empty payload")
	}
}
