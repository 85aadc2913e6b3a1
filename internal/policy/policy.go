// Package policy implements the three traffic-grouping dimensions the
// analyzer can run with: by source IP, by destination IP, or by query
// name SLD (§4.4). Exactly one policy is active per run, selected by CLI
// flag.
package policy

import (
	"github.com/DNSBelgium/qlad/internal/dnswire"
	"github.com/DNSBelgium/qlad/internal/ident"
)

// Policy extracts and validates the Identifier a packet belongs to.
// Implementations are stateless and safe for concurrent use.
type Policy interface {
	// Name is the human-readable policy name. The report and the CLI's
	// logs do not include it.
	Name() string
	// Parse extracts an identifier from a raw packet payload. ok is
	// false for anything dnswire rejects or any identifier that fails
	// its own validity check.
	Parse(payload []byte) (id ident.Identifier, ok bool)
}

// parsePacket is shared by all three policies: run dnswire.Parse once and
// let the caller pick which field it needs.
func parsePacket(payload []byte) (*dnswire.Packet, bool) {
	pkt, err := dnswire.Parse(payload)
	if err != nil {
		return nil, false
	}
	return pkt, true
}
