package ident

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidity(t *testing.T) {
	require.True(t, NewIPv4(0).Valid())
	require.True(t, NewIPv6([16]byte{}).Valid())
	require.False(t, NewDomainLabel("").Valid())
	require.True(t, NewDomainLabel("example.com.").Valid())
}

func TestOrderingTotal(t *testing.T) {
	ids := []Identifier{
		NewDomainLabel("b.com."),
		NewIPv4(10),
		NewDomainLabel("a.com."),
		NewIPv6([16]byte{1}),
		NewIPv4(2),
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	require.Equal(t, IPv4, ids[0].Kind())
	require.Equal(t, uint32(2), ids[0].IPv4Value())
	require.Equal(t, uint32(10), ids[1].IPv4Value())
	require.Equal(t, IPv6, ids[2].Kind())
	require.Equal(t, DomainLabel, ids[3].Kind())
	require.Equal(t, "a.com.", ids[3].Domain())
	require.Equal(t, "b.com.", ids[4].Domain())
}

func TestStringFormatting(t *testing.T) {
	require.Equal(t, "0.0.0.1", NewIPv4(1).String())
	require.Equal(t, "co.uk.", NewDomainLabel("co.uk.").String())
}

func TestBytesRoundTrip(t *testing.T) {
	v4 := NewIPv4(0x0a000042)
	require.Equal(t, []byte{0x0a, 0x00, 0x00, 0x42}, v4.Bytes())

	v6 := NewIPv6([16]byte{0: 1, 15: 2})
	require.Len(t, v6.Bytes(), 16)
}
