package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemainderChangesWithInput(t *testing.T) {
	e1 := New()
	e1.InsertWords([]uint32{1, 2, 3})

	e2 := New()
	e2.InsertWords([]uint32{1, 2, 4})

	assert.NotEqual(t, e1.Remainder(), e2.Remainder())
}

func TestResetMatchesFreshEngine(t *testing.T) {
	e := New()
	e.InsertWord(0xDEADBEEF)
	e.Reset()

	fresh := New()
	assert.Equal(t, fresh.Remainder(), e.Remainder())
}

func TestEngineIsDeterministic(t *testing.T) {
	e1 := New()
	e1.InsertWords([]uint32{0x11223344, 0x55667788, 0xCAFEBABE})

	e2 := New()
	e2.InsertWords([]uint32{0x11223344, 0x55667788, 0xCAFEBABE})

	assert.Equal(t, e1.Remainder(), e2.Remainder())
}

func TestInsertWordOrderMatters(t *testing.T) {
	e1 := New()
	e1.InsertWords([]uint32{1, 2})

	e2 := New()
	e2.InsertWords([]uint32{2, 1})

	assert.NotEqual(t, e1.Remainder(), e2.Remainder())
}
