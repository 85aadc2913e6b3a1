package dnswire

import "strings"

// MaxQueryNameLen is RFC 883's 256-octet limit on a presented DNS name,
// matching original_source's PacketParser::MAXDNAME.
const MaxQueryNameLen = 256

const (
	opcodeQuery = 0
	// compressionOrEDNS masks a label length byte's top two bits: either
	// value marks a compression pointer or an EDNS0 extended label,
	// neither of which this parser follows (original_source rejects the
	// same way rather than resolving pointers).
	compressionOrEDNS = 0xc0
)

// parseDNSQuestion validates the DNS header and extracts the first
// question's name, lowercased with every label dot-terminated (including
// the trailing root dot), e.g. "www.example.com.".
func parseDNSQuestion(bp []byte) (string, error) {
	if len(bp) < 12 {
		return "", ErrTruncated
	}
	flags := int(bp[2])<<8 | int(bp[3])
	qr := flags&0x8000 != 0
	opcode := (flags >> 11) & 0x0f
	qdcount := int(bp[4])<<8 | int(bp[5])
	if qr || opcode != opcodeQuery || qdcount == 0 {
		return "", ErrNotQuery
	}
	if flags&0x06cf != 0 {
		return "", ErrWeirdFlags
	}

	var b strings.Builder
	cp := bp[12:]
	for {
		if len(cp) < 1 {
			return "", ErrTruncated
		}
		l := int(cp[0])
		cp = cp[1:]
		if l&compressionOrEDNS != 0 {
			return "", ErrCompressedName
		}
		if len(cp) < l {
			return "", ErrTruncated
		}
		for _, c := range cp[:l] {
			b.WriteByte(toLowerASCII(c))
		}
		cp = cp[l:]
		if !(l == 0 && b.Len() > 0) {
			b.WriteByte('.')
		}
		if l == 0 {
			break
		}
	}
	if b.Len() > MaxQueryNameLen {
		return "", ErrNameTooLong
	}
	return b.String(), nil
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// SLD reproduces original_source's PacketParser::getSLD exactly: three
// rfind('.') calls narrow a working copy to find the boundary before the
// last two labels, then the result is sliced from the *original*,
// untruncated name at that position — so the trailing root dot survives.
// For "foo.bar.example.co.uk." this yields "co.uk.", the
// second-level-domain-plus-TLD the detector groups query-name traffic by.
// Names with fewer than three labels have no such boundary and are
// returned unchanged.
func SLD(name string) string {
	hostName := name
	working := hostName

	cpos := strings.LastIndex(working, ".")
	if cpos != -1 {
		working = working[:cpos]
	}

	pcpos := strings.LastIndex(working, ".")
	if pcpos != -1 {
		working = hostName[:pcpos]
	}

	ppcpos := strings.LastIndex(working, ".")
	if ppcpos == -1 {
		return hostName
	}
	return hostName[ppcpos+1:]
}
