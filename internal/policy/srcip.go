package policy

import "github.com/DNSBelgium/qlad/internal/ident"

// SrcIP groups traffic by the packet's source address. Grounded on
// original_source's SrcIPPolicy (policies/IPPolicy.h): IPv4 and IPv6
// addresses are always valid once parsed.
type SrcIP struct{}

// Name implements Policy.
func (SrcIP) Name() string { return "Source IP Policy" }

// Parse implements Policy.
func (SrcIP) Parse(payload []byte) (ident.Identifier, bool) {
	pkt, ok := parsePacket(payload)
	if !ok {
		return ident.Identifier{}, false
	}
	if pkt.IsIPv6 {
		return ident.NewIPv6(pkt.SrcIPv6), true
	}
	return ident.NewIPv4(beUint32(pkt.SrcIPv4)), true
}

func beUint32(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
