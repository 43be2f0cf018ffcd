package container_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenidone/fith/container"
)

type recordingHandler struct {
	binver, iover uint32
	order         []container.Kind
	segments      map[container.Kind][]int32
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{segments: make(map[container.Kind][]int32)}
}

func (h *recordingHandler) OnHeader(binver, iover uint32) error {
	h.binver, h.iover = binver, iover
	return nil
}

func (h *recordingHandler) OnSegment(kind container.Kind, cells []int32) error {
	h.order = append(h.order, kind)
	h.segments[kind] = append([]int32(nil), cells...)
	return nil
}

func writeRoundTrip(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cw, err := container.NewWriter(&buf, 4, 7, 3)
	require.NoError(t, err)
	require.NoError(t, cw.WriteText([]int32{1, 2, 3}))
	require.NoError(t, cw.WriteData([]int32{42}))
	require.NoError(t, cw.WriteEntry(1))
	require.NoError(t, cw.WriteCRC())
	return &buf
}

func TestRoundTripWriteRead(t *testing.T) {
	buf := writeRoundTrip(t)

	h := newRecordingHandler()
	require.NoError(t, container.ReadFile(bytes.NewReader(buf.Bytes()), h))

	assert.Equal(t, uint32(7), h.binver)
	assert.Equal(t, uint32(3), h.iover)
	assert.Equal(t, []container.Kind{container.Text, container.Data, container.Entry}, h.order)
	assert.Equal(t, []int32{1, 2, 3}, h.segments[container.Text])
	assert.Equal(t, []int32{42}, h.segments[container.Data])
	assert.Equal(t, []int32{1}, h.segments[container.Entry])
}

func TestCRCMismatchOnFlippedByte(t *testing.T) {
	buf := writeRoundTrip(t)
	raw := buf.Bytes()
	// Flip a byte inside the TEXT payload (5 header words + TEXT's own
	// kind/count words = 28 bytes in, landing inside the first payload cell
	// without touching its declared count).
	raw[29] ^= 0xFF

	h := newRecordingHandler()
	err := container.ReadFile(bytes.NewReader(raw), h)
	require.Error(t, err)
	cerr, ok := err.(*container.Error)
	require.True(t, ok, "expected *container.Error, got %T", err)
	assert.Equal(t, container.ErrCRCMismatch, cerr.Code)
}

func TestBadMagicRejected(t *testing.T) {
	var buf bytes.Buffer
	// Four header words of garbage plus the segment count.
	garbage := []byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	buf.Write(garbage)

	h := newRecordingHandler()
	err := container.ReadFile(&buf, h)
	require.Error(t, err)
	cerr, ok := err.(*container.Error)
	require.True(t, ok)
	assert.Equal(t, container.ErrBadMagic, cerr.Code)
}

func TestMapSegmentRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	cw, err := container.NewWriter(&buf, 2, 1, 1)
	require.NoError(t, err)
	require.NoError(t, cw.WriteMap("00000001 SQ\n"))
	require.NoError(t, cw.WriteCRC())

	h := newRecordingHandler()
	require.NoError(t, container.ReadFile(bytes.NewReader(buf.Bytes()), h))
	require.Contains(t, h.segments, container.Map)
}
