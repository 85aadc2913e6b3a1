package fixtures

import "strings"

// BuildDNSQuery encodes a minimal DNS query with a single question for
// qname, wrapped in UDP and IPv4 headers — the same construction
// internal/dnswire's own parser tests use (parser_test.go's buildQuery),
// exported here since internal/fixtures is the one place synthetic
// packets need to cross a package boundary to seed capture-file
// scenarios.
func BuildDNSQuery(srcIP, dstIP [4]byte, srcPort, dstPort uint16, qname string) []byte {
	var qnameBytes []byte
	for _, label := range strings.Split(qname, ".") {
		if label == "" {
			continue
		}
		qnameBytes = append(qnameBytes, byte(len(label)))
		qnameBytes = append(qnameBytes, label...)
	}
	qnameBytes = append(qnameBytes, 0)

	dns := make([]byte, 12)
	dns[4], dns[5] = 0, 1 // qdcount = 1
	dns = append(dns, qnameBytes...)
	dns = append(dns, 0, 1, 0, 1) // QTYPE=A, QCLASS=IN

	udp := make([]byte, 8)
	udp[0], udp[1] = byte(srcPort>>8), byte(srcPort)
	udp[2], udp[3] = byte(dstPort>>8), byte(dstPort)
	udpLen := 8 + len(dns)
	udp[4], udp[5] = byte(udpLen>>8), byte(udpLen)
	udp = append(udp, dns...)

	totalLen := 20 + len(udp)
	ip := make([]byte, 20)
	ip[0] = 0x45 // version 4, IHL 5
	ip[2], ip[3] = byte(totalLen>>8), byte(totalLen)
	ip[9] = 17 // protocol = UDP
	copy(ip[12:16], srcIP[:])
	copy(ip[16:20], dstIP[:])
	return append(ip, udp...)
}

// uint32ToIPv4 splits a big-endian 32-bit address into its four octets,
// the form BuildDNSQuery's srcIP/dstIP parameters take.
func uint32ToIPv4(addr uint32) [4]byte {
	return [4]byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

// GenerateAllEqualTraffic builds a scenario matching spec.md §8's
// "all-equal traffic" test case: population addresses each query at the
// same steady rate for the full window, so no identifier should stand
// out as anomalous. A small per-second, per-address jitter
// (non-power-of-two period) keeps every aggregation level's variance
// non-zero, avoiding the degenerate constant-series edge case §7 kind 2
// flags as fatal.
func GenerateAllEqualTraffic(windowSize int64, population int) []Packet {
	dst := [4]byte{8, 8, 8, 8}
	var packets []Packet
	for s := int64(0); s < windowSize; s++ {
		for i := 0; i < population; i++ {
			src := uint32ToIPv4(0xC0A80000 | uint32(i))
			count := 1 + int((3*int64(i)+7*s)%5)
			for n := 0; n < count; n++ {
				packets = append(packets, Packet{
					Second:  s,
					Payload: BuildDNSQuery(src, dst, 53000+uint16(n), 53, "example.com"),
				})
			}
		}
	}
	return packets
}

// GenerateOneLoudIdentifier builds on GenerateAllEqualTraffic by adding
// loudIP querying at a rate far above the rest of the population for the
// full window, matching spec.md §8's "one loud identifier" test case.
func GenerateOneLoudIdentifier(windowSize int64, population int, loudIP uint32) []Packet {
	packets := GenerateAllEqualTraffic(windowSize, population)
	dst := [4]byte{8, 8, 8, 8}
	src := uint32ToIPv4(loudIP)
	for s := int64(0); s < windowSize; s++ {
		count := 40 + int((5*s)%7)
		for n := 0; n < count; n++ {
			packets = append(packets, Packet{
				Second:  s,
				Payload: BuildDNSQuery(src, dst, 53000+uint16(n), 53, "example.com"),
			})
		}
	}
	return packets
}
