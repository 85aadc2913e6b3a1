package report

import (
	"fmt"
	"strconv"
	"strings"

	radix "github.com/Emeline-1/radix"

	"github.com/DNSBelgium/qlad/internal/ident"
)

// ipv4PrefixBits is the full width of an IPv4 address in binary-string form.
const ipv4PrefixBits = 32

// SubnetOverlay groups a consensus anomalous-ID set by the IPv4 aggregate
// prefix its members share, mirroring the teacher's BGP-overlay detection
// (overlays_processing.go's process_overlays): insert every member's /32
// binary string into a radix tree, walk it post-order, and record an
// aggregate-to-members group wherever the walk reports a tree node with
// at least one leaf beneath it (single-member groups included; see
// Groups). This is purely a reporting enrichment (§11): it never feeds
// back into the intersection in internal/detector.
//
// The aggregate/member relationship is computed eagerly in
// BuildSubnetOverlay rather than kept as a live *radix.Tree field, so
// SubnetOverlay never needs to name the third-party package's concrete
// node type outside this one constructor.
type SubnetOverlay struct {
	groups map[string][]string
}

// BuildSubnetOverlay groups the IPv4 identifiers among ids by shared
// aggregate prefix. Non-IPv4 identifiers (IPv6, domain labels) are not
// addresses to aggregate and are silently skipped, matching spec.md's
// scoping of overlay grouping to address-keyed policies (srcIP/dstIP).
func BuildSubnetOverlay(ids []ident.Identifier) *SubnetOverlay {
	tree := radix.New()
	for _, id := range ids {
		if id.Kind() != ident.IPv4 {
			continue
		}
		tree.Insert(ipv4BinaryString(id.IPv4Value()), id.String())
	}

	groups := make(map[string][]string)
	tree.Walk_post(func(parent *radix.LeafNode, children []*radix.LeafNode) {
		if len(children) == 0 {
			return
		}
		aggregate := prefixFromBinary(parent.Key)
		for _, c := range children {
			addr, ok := c.Val.(string)
			if !ok {
				continue
			}
			groups[aggregate] = append(groups[aggregate], addr)
		}
	})

	return &SubnetOverlay{groups: groups}
}

// Groups returns the aggregate-prefix to member-address mapping computed
// by BuildSubnetOverlay. An aggregate with a single member is not overlay
// grouping (nothing shares it), so callers should ignore length-1 slices.
func (o *SubnetOverlay) Groups() map[string][]string { return o.groups }

// ipv4BinaryString renders addr (host byte order irrelevant, always
// big-endian per ident.Identifier.Bytes) as a 32-bit binary string, the
// same representation get_binary_string builds from a dotted-quad/CIDR
// string.
func ipv4BinaryString(addr uint32) string {
	return fmt.Sprintf("%032b", addr)
}

// prefixFromBinary is the inverse of ipv4BinaryString, reproducing
// get_prefix_from_binary's zero-padding and dotted-quad/mask rendering.
func prefixFromBinary(binary string) string {
	mask := len(binary)
	if mask < ipv4PrefixBits {
		binary += strings.Repeat("0", ipv4PrefixBits-mask)
	}

	var octets [4]string
	for i := 0; i < 4; i++ {
		v, _ := strconv.ParseUint(binary[i*8:i*8+8], 2, 8)
		octets[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(octets[:], ".") + "/" + strconv.Itoa(mask)
}
