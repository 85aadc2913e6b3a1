package policy

import "github.com/DNSBelgium/qlad/internal/ident"

// DstIP groups traffic by the packet's destination address. Grounded on
// original_source's DstIPPolicy (policies/IPPolicy.h); shares its hash
// implementation with SrcIP, same as the original shares iphash.cpp.
type DstIP struct{}

// Name implements Policy.
func (DstIP) Name() string { return "Destination IP Policy" }

// Parse implements Policy.
func (DstIP) Parse(payload []byte) (ident.Identifier, bool) {
	pkt, ok := parsePacket(payload)
	if !ok {
		return ident.Identifier{}, false
	}
	if pkt.IsIPv6 {
		return ident.NewIPv6(pkt.DstIPv6), true
	}
	return ident.NewIPv4(beUint32(pkt.DstIPv4)), true
}
