package outer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenidone/fith/vm"
)

func newTestOuter(t *testing.T) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	o := New(4*1024, 1024, &out)
	o.Bootstrap(true)
	return o, &out
}

func runQuit(t *testing.T, o *Interpreter, src string) vm.State {
	t.Helper()
	o.SetInput(strings.NewReader(src))
	ctx := o.VM.NewContext(o.Dict["QUIT"].Addr())
	return ctx.Execute(context.Background())
}

func TestBootstrapPopulatesCorePrimitives(t *testing.T) {
	o, _ := newTestOuter(t)
	for _, name := range []string{"DUP", "SWAP", "+", "-", "EXIT"} {
		_, ok := o.Dict[name]
		assert.True(t, ok, "missing core primitive %s", name)
	}
	for _, name := range []string{":", ";", "QUIT", "WORD", "CREATE", "FIND", "INTERPRET"} {
		_, ok := o.Dict[name]
		assert.True(t, ok, "missing full-mode word %s", name)
	}
}

func TestBootstrapColonCompiledAndSemicolonImmediate(t *testing.T) {
	o, _ := newTestOuter(t)
	colon, ok := o.Dict[":"]
	require.True(t, ok)
	assert.False(t, colon.IsMachine())

	semi, ok := o.Dict[";"]
	require.True(t, ok)
	assert.True(t, semi.IsImmed())
}

// ": SQ DUP * ; 7 SQ ." defines SQ as DUP*, applies it to 7, and prints
// the result: 49.
func TestDefineAndInterpretSquaringWord(t *testing.T) {
	o, out := newTestOuter(t)
	state := runQuit(t, o, ": SQ DUP * ; 7 SQ .")
	require.Equal(t, vm.Success, state)
	assert.Equal(t, "49 ", out.String())

	v, ok := o.Dict["SQ"]
	require.True(t, ok)
	assert.False(t, v.IsHide(), "SQ must be visible again after ;")
}

func TestInterpretUnrecognisedWordReportsAndContinues(t *testing.T) {
	o, out := newTestOuter(t)
	state := runQuit(t, o, "BOGUSWORD 3 4 + .")
	require.Equal(t, vm.Success, state)
	assert.Contains(t, out.String(), "Unrecognised word BOGUSWORD")
	assert.Contains(t, out.String(), "7 ")
}

func TestImmediateWordRunsWhileCompiling(t *testing.T) {
	o, out := newTestOuter(t)
	// IMMEDIATE words ([ and ;) run during compilation rather than being
	// compiled into the body; defining a second word right after the first
	// exercises that [ and ; both took effect.
	state := runQuit(t, o, ": DOUBLE DUP + ; : QUAD DOUBLE DOUBLE ; 5 QUAD .")
	require.Equal(t, vm.Success, state)
	assert.Equal(t, "20 ", out.String())
}
