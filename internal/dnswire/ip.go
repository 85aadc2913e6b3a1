// Package dnswire parses link-layer-stripped IPv4/IPv6 + UDP + DNS-query
// packets into the fields the policies need (addresses, query name),
// rejecting anything malformed or out of scope (fragments, non-queries,
// compressed names) the same way original_source's PacketParser does.
// Real capture I/O (pcap/BPF) is an external collaborator; this package
// only interprets bytes already handed to it.
package dnswire

import "errors"

// Reasons Parse can fail, surfaced as sentinel errors so callers can
// tell them apart (§7 kind 3) without string-matching error text.
var (
	ErrTruncated       = errors.New("dnswire: packet truncated")
	ErrUnknownIPVer    = errors.New("dnswire: unknown IP version")
	ErrFragmented      = errors.New("dnswire: fragmentation not supported")
	ErrNotUDP          = errors.New("dnswire: not a UDP packet")
	ErrNotDNSPort      = errors.New("dnswire: not a DNS packet")
	ErrNotQuery        = errors.New("dnswire: not a DNS query")
	ErrWeirdFlags      = errors.New("dnswire: weird query flags")
	ErrCompressedName  = errors.New("dnswire: query name compression/EDNS bitlabel")
	ErrNameTooLong     = errors.New("dnswire: query name too long")
)

const nameserverPort = 53

// ipv4Header is the parsed subset of an IPv4 header needed to find the UDP
// payload.
type ipv4Header struct {
	proto   byte
	src     [4]byte
	dst     [4]byte
	payload []byte
}

func parseIPv4(bp []byte) (*ipv4Header, error) {
	if len(bp) < 20 {
		return nil, ErrTruncated
	}
	ihl := int(bp[0]&0x0f) * 4
	totalLen := int(bp[2])<<8 | int(bp[3])
	if ihl < 20 || totalLen < ihl || len(bp) < totalLen {
		return nil, ErrTruncated
	}
	flagsFrag := int(bp[6])<<8 | int(bp[7])
	fragOffset := flagsFrag & 0x1fff
	moreFragments := flagsFrag&0x2000 != 0
	if fragOffset != 0 || moreFragments {
		return nil, ErrFragmented
	}
	proto := bp[9]
	if proto != 17 {
		return nil, ErrNotUDP
	}
	h := &ipv4Header{proto: proto, payload: bp[ihl:totalLen]}
	copy(h.src[:], bp[12:16])
	copy(h.dst[:], bp[16:20])
	return h, nil
}

// ipv6Header is the parsed subset of an IPv6 header (after walking any
// extension headers) needed to find the UDP payload.
type ipv6Header struct {
	src     [16]byte
	dst     [16]byte
	payload []byte
}

// Extension header type numbers original_source walks through looking for
// the UDP payload.
const (
	nextHopOpts  = 0
	nextRouting  = 43
	nextFragment = 44
	nextAH       = 51
	nextDstOpts  = 60
	nextUDP      = 17
)

func parseIPv6(bp []byte) (*ipv6Header, error) {
	if len(bp) < 40 {
		return nil, ErrTruncated
	}
	payloadLen := int(bp[4])<<8 | int(bp[5])
	total := 40 + payloadLen
	if len(bp) < total {
		return nil, ErrTruncated
	}
	h := &ipv6Header{}
	copy(h.src[:], bp[8:24])
	copy(h.dst[:], bp[24:40])

	nextHeader := bp[6]
	offset := 40
	for {
		switch nextHeader {
		case nextHopOpts, nextDstOpts, nextRouting, nextAH:
			if offset+2 > total {
				return nil, ErrTruncated
			}
			hdrExtLen := int(bp[offset+1])
			extLen := (hdrExtLen + 1) * 8
			if offset+extLen > total {
				return nil, ErrTruncated
			}
			nextHeader = bp[offset]
			offset += extLen
		case nextFragment:
			return nil, ErrFragmented
		case nextUDP:
			h.payload = bp[offset:total]
			return h, nil
		default:
			return nil, ErrNotUDP
		}
	}
}
