package policy

import (
	"github.com/DNSBelgium/qlad/internal/dnswire"
	"github.com/DNSBelgium/qlad/internal/ident"
)

// QName groups traffic by the SLD+TLD suffix of the first query name in
// the packet. Grounded on original_source's QueryNamePolicy, which
// delegates parsing to PacketParser and validity to a non-empty check.
type QName struct{}

// Name implements Policy.
func (QName) Name() string { return "Query Name Policy" }

// Parse implements Policy.
func (QName) Parse(payload []byte) (ident.Identifier, bool) {
	pkt, ok := parsePacket(payload)
	if !ok {
		return ident.Identifier{}, false
	}
	label := ident.NewDomainLabel(dnswire.SLD(pkt.QName))
	if !label.Valid() {
		return ident.Identifier{}, false
	}
	return label, true
}
