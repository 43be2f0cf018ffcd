package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceBoundsChecking(t *testing.T) {
	sp := NewSpace(4, 1)
	require.True(t, sp.Write(1, 99))
	v, ok := sp.Read(1)
	require.True(t, ok)
	assert.Equal(t, Cell(99), v)

	assert.False(t, sp.Write(4, 1), "write past capacity must fail, not grow")
	_, ok = sp.Read(4)
	assert.False(t, ok)
	assert.False(t, sp.Write(-1, 1))
}

func TestSpaceAppendWatermark(t *testing.T) {
	sp := NewSpace(3, 1)
	require.True(t, sp.Append(7))
	assert.Equal(t, Cell(2), sp.Here())
	require.True(t, sp.Append(8))
	assert.Equal(t, Cell(3), sp.Here())

	// space is full: Append is a no-op, not a grow.
	assert.False(t, sp.Append(9))
	assert.Equal(t, Cell(3), sp.Here())
}

func TestSpaceStringRoundTrip(t *testing.T) {
	sp := NewSpace(16, 1)
	require.True(t, sp.PutString(1, "hello", 31))
	s, ok := sp.GetString(1)
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestSpaceStringTruncation(t *testing.T) {
	sp := NewSpace(16, 1)
	require.True(t, sp.PutString(1, "abcdef", 3))
	s, ok := sp.GetString(1)
	require.True(t, ok)
	assert.Equal(t, "abc", s)
}

func TestSpaceGetStringRejectsCorruptPayload(t *testing.T) {
	sp := NewSpace(16, 1)
	require.True(t, sp.PutString(1, "hi", 31))
	// Clobber the byte GetString expects to be the NUL terminator (buf[length]).
	sp.cells[2] |= 0x00FF0000
	_, ok := sp.GetString(1)
	assert.False(t, ok)
}
