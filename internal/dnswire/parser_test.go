package dnswire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildQuery encodes a minimal DNS query with a single question for name,
// wrapped in UDP and IPv4 headers, for use as test input.
func buildQuery(t *testing.T, name string, srcPort, dstPort uint16) []byte {
	t.Helper()

	var qname []byte
	for _, label := range splitLabels(name) {
		qname = append(qname, byte(len(label)))
		qname = append(qname, label...)
	}
	qname = append(qname, 0)

	dns := make([]byte, 12)
	dns[4], dns[5] = 0, 1 // qdcount = 1
	dns = append(dns, qname...)
	dns = append(dns, 0, 1, 0, 1) // QTYPE=A, QCLASS=IN

	udp := make([]byte, 8)
	udp[0] = byte(srcPort >> 8)
	udp[1] = byte(srcPort)
	udp[2] = byte(dstPort >> 8)
	udp[3] = byte(dstPort)
	udpLen := 8 + len(dns)
	udp[4] = byte(udpLen >> 8)
	udp[5] = byte(udpLen)
	udp = append(udp, dns...)

	totalLen := 20 + len(udp)
	ip := make([]byte, 20)
	ip[0] = 0x45 // version 4, IHL 5
	ip[2] = byte(totalLen >> 8)
	ip[3] = byte(totalLen)
	ip[9] = 17 // UDP
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})
	return append(ip, udp...)
}

func splitLabels(name string) []string {
	var labels []string
	cur := ""
	for _, c := range name {
		if c == '.' {
			labels = append(labels, cur)
			cur = ""
			continue
		}
		cur += string(c)
	}
	if cur != "" {
		labels = append(labels, cur)
	}
	return labels
}

func TestParseValidQuery(t *testing.T) {
	pkt := buildQuery(t, "WWW.Example.COM", 54321, 53)
	got, err := Parse(pkt)
	require.NoError(t, err)
	require.Equal(t, "www.example.com.", got.QName)
	require.Equal(t, [4]byte{10, 0, 0, 1}, got.SrcIPv4)
	require.Equal(t, [4]byte{10, 0, 0, 2}, got.DstIPv4)
}

func TestParseRejectsNonDNSPort(t *testing.T) {
	pkt := buildQuery(t, "example.com", 9999, 9998)
	_, err := Parse(pkt)
	require.ErrorIs(t, err, ErrNotDNSPort)
}

func TestParseRejectsFragment(t *testing.T) {
	pkt := buildQuery(t, "example.com", 1234, 53)
	pkt[6] = 0x20 // MF flag set
	_, err := Parse(pkt)
	require.ErrorIs(t, err, ErrFragmented)
}

func TestParseRejectsCompressedName(t *testing.T) {
	pkt := buildQuery(t, "example.com", 1234, 53)
	// Locate the DNS question section (after 20 IP + 8 UDP + 12 DNS
	// header bytes) and overwrite the first label length with a
	// compression pointer marker.
	pkt[20+8+12] = 0xc0
	_, err := Parse(pkt)
	require.ErrorIs(t, err, ErrCompressedName)
}

func TestSLDExtractionWorkedExample(t *testing.T) {
	require.Equal(t, "co.uk.", SLD("foo.bar.example.co.uk."))
}

func TestSLDShortNameUnchanged(t *testing.T) {
	require.Equal(t, "example.", SLD("example."))
}
