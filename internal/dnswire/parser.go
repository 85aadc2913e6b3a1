package dnswire

// Packet is everything a Policy needs out of one captured DNS query:
// both addresses (for src/dst IP policies) and the query name (for the
// QName policy), plus which IP family was seen.
type Packet struct {
	IsIPv6  bool
	SrcIPv4 [4]byte
	DstIPv4 [4]byte
	SrcIPv6 [16]byte
	DstIPv6 [16]byte
	QName   string
}

// Parse interprets bp as a link-layer-stripped IPv4 or IPv6 packet
// carrying a UDP DNS query, returning the extracted fields or the first
// reason it was rejected. Version is read from the top nibble of the
// first byte, exactly as original_source's PacketParser::parseIp does.
func Parse(bp []byte) (*Packet, error) {
	if len(bp) < 1 {
		return nil, ErrTruncated
	}
	version := bp[0] >> 4

	var udpPayload []byte
	pkt := &Packet{}

	switch version {
	case 4:
		h, err := parseIPv4(bp)
		if err != nil {
			return nil, err
		}
		pkt.SrcIPv4, pkt.DstIPv4 = h.src, h.dst
		udpPayload = h.payload
	case 6:
		h, err := parseIPv6(bp)
		if err != nil {
			return nil, err
		}
		pkt.IsIPv6 = true
		pkt.SrcIPv6, pkt.DstIPv6 = h.src, h.dst
		udpPayload = h.payload
	default:
		return nil, ErrUnknownIPVer
	}

	dnsPayload, err := parseUDP(udpPayload)
	if err != nil {
		return nil, err
	}

	qname, err := parseDNSQuestion(dnsPayload)
	if err != nil {
		return nil, err
	}
	pkt.QName = qname
	return pkt, nil
}
