package capture

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DNSBelgium/qlad/internal/flowdata"
	"github.com/DNSBelgium/qlad/internal/ident"
	"github.com/DNSBelgium/qlad/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedPolicy struct{}

func (fixedPolicy) Parse(payload []byte) (ident.Identifier, bool) {
	return ident.NewIPv4(1), true
}

func writeRecords(t *testing.T, records []struct {
	second  int64
	payload []byte
}) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "capture-*.bin")
	require.NoError(t, err)
	defer f.Close()

	for _, r := range records {
		var header [8]byte
		binary.BigEndian.PutUint32(header[0:4], uint32(r.second))
		binary.BigEndian.PutUint32(header[4:8], uint32(len(r.payload)))
		_, err := f.Write(header[:])
		require.NoError(t, err)
		_, err = f.Write(r.payload)
		require.NoError(t, err)
	}
	return f.Name()
}

func TestFileSourceDeliversRecordsWithinDuration(t *testing.T) {
	path := writeRecords(t, []struct {
		second  int64
		payload []byte
	}{
		{0, []byte("a")},
		{1, []byte("b")},
		{2, []byte("c")},
	})

	s := NewFileSource()
	require.NoError(t, s.Open(path, ""))
	defer s.Close()

	store := flowdata.NewFlowStore(10)
	require.NoError(t, s.StartCapture(store, fixedPolicy{}, 2))
	require.Equal(t, int64(0), store.StartTime())
}

func TestFileSourceCanCaptureFalseAfterEOF(t *testing.T) {
	path := writeRecords(t, []struct {
		second  int64
		payload []byte
	}{{0, []byte("a")}})

	s := NewFileSource()
	require.NoError(t, s.Open(path, ""))
	defer s.Close()

	store := flowdata.NewFlowStore(10)
	require.True(t, s.CanCapture())
	require.NoError(t, s.StartCapture(store, fixedPolicy{}, 100))
	require.False(t, s.CanCapture())
}

func TestFileSourceStopCaptureBreaksLoop(t *testing.T) {
	var records []struct {
		second  int64
		payload []byte
	}
	for i := int64(0); i < 1000; i++ {
		records = append(records, struct {
			second  int64
			payload []byte
		}{i, []byte("x")})
	}
	path := writeRecords(t, records)

	s := NewFileSource()
	require.NoError(t, s.Open(path, ""))
	defer s.Close()

	s.StopCapture()
	store := flowdata.NewFlowStore(10)
	require.NoError(t, s.StartCapture(store, fixedPolicy{}, 1000))
}

func TestFileSourceWithMetricsCountsPacketsSeen(t *testing.T) {
	path := writeRecords(t, []struct {
		second  int64
		payload []byte
	}{
		{0, []byte("a")},
		{1, []byte("b")},
	})

	m := metrics.New()
	s := NewFileSource().WithMetrics(m)
	require.NoError(t, s.Open(path, ""))
	defer s.Close()

	store := flowdata.NewFlowStore(10)
	require.NoError(t, s.StartCapture(store, fixedPolicy{}, 100))
	require.Equal(t, float64(2), testutil.ToFloat64(m.PacketsSeen))
}

func TestFileSourceOpenStdinMarker(t *testing.T) {
	var buf bytes.Buffer
	_ = buf // stdin path isn't exercised here; this just documents "-" support exists.
	s := NewFileSource()
	require.NoError(t, s.Open("-", ""))
	require.NoError(t, s.Close())
}
