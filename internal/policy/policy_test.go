package policy

import (
	"testing"

	"github.com/DNSBelgium/qlad/internal/ident"
	"github.com/stretchr/testify/require"
)

func buildQuery(name string) []byte {
	var qname []byte
	cur := []byte{}
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			qname = append(qname, byte(len(cur)))
			qname = append(qname, cur...)
			cur = nil
			continue
		}
		cur = append(cur, name[i])
	}
	qname = append(qname, 0)

	dns := make([]byte, 12)
	dns[5] = 1
	dns = append(dns, qname...)
	dns = append(dns, 0, 1, 0, 1)

	udp := make([]byte, 8)
	udp[3] = 53
	udpLen := 8 + len(dns)
	udp[4] = byte(udpLen >> 8)
	udp[5] = byte(udpLen)
	udp = append(udp, dns...)

	totalLen := 20 + len(udp)
	ip := make([]byte, 20)
	ip[0] = 0x45
	ip[2] = byte(totalLen >> 8)
	ip[3] = byte(totalLen)
	ip[9] = 17
	copy(ip[12:16], []byte{192, 168, 1, 1})
	copy(ip[16:20], []byte{192, 168, 1, 2})
	return append(ip, udp...)
}

func TestSrcIPPolicy(t *testing.T) {
	pkt := buildQuery("example.com")
	id, ok := SrcIP{}.Parse(pkt)
	require.True(t, ok)
	require.Equal(t, ident.IPv4, id.Kind())
	require.Equal(t, "192.168.1.1", id.String())
}

func TestDstIPPolicy(t *testing.T) {
	pkt := buildQuery("example.com")
	id, ok := DstIP{}.Parse(pkt)
	require.True(t, ok)
	require.Equal(t, "192.168.1.2", id.String())
}

func TestQNamePolicySLD(t *testing.T) {
	pkt := buildQuery("foo.bar.example.co.uk")
	id, ok := QName{}.Parse(pkt)
	require.True(t, ok)
	require.Equal(t, ident.DomainLabel, id.Kind())
	require.Equal(t, "co.uk.", id.Domain())
}

func TestPolicyRejectsMalformed(t *testing.T) {
	_, ok := SrcIP{}.Parse([]byte{0x00})
	require.False(t, ok)
}

func TestPolicyNames(t *testing.T) {
	require.Equal(t, "Source IP Policy", SrcIP{}.Name())
	require.Equal(t, "Destination IP Policy", DstIP{}.Name())
	require.Equal(t, "Query Name Policy", QName{}.Name())
}
