package vm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(sp *Space, cells ...Cell) {
	here := sp.Here()
	for _, c := range cells {
		sp.Write(here, c)
		here++
	}
	sp.SetHere(here)
}

func lit(v Cell) []Cell { return []Cell{MachineCell(OpLit), v} }

func newTestInterp() *Interpreter {
	return NewInterpreter(64, 64, 1, 1)
}

// 3 4 DUP * SWAP DUP * + -> (3*3) + (4*4)... the spec's worked example is
// phrased as "3 4 DUP * SWAP DUP * +" producing 25, i.e. 3*3 + 4*4.
func TestExecuteArithmeticScenario(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(3)...)
	prog = append(prog, lit(4)...)
	prog = append(prog,
		MachineCell(OpDup), MachineCell(OpMul),
		MachineCell(OpSwap),
		MachineCell(OpDup), MachineCell(OpMul),
		MachineCell(OpPlus),
		MachineCell(OpExit),
	)
	compile(in.Text, prog...)

	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	require.Equal(t, Success, state)
	require.Equal(t, 1, ctx.DSP)
	assert.Equal(t, Cell(25), ctx.DStack[0])
}

func TestExecuteDivByZeroPreservesStack(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(5)...)
	prog = append(prog, lit(0)...)
	prog = append(prog, MachineCell(OpDiv), MachineCell(OpExit))
	compile(in.Text, prog...)

	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	assert.Equal(t, DivZero, state)
	require.Equal(t, 2, ctx.DSP, "DIV_ZERO must not mutate the stack")
	assert.Equal(t, Cell(5), ctx.DStack[0])
	assert.Equal(t, Cell(0), ctx.DStack[1])
}

func TestExecuteExitWithEmptyReturnStackSucceeds(t *testing.T) {
	in := newTestInterp()
	compile(in.Text, MachineCell(OpExit))
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	assert.Equal(t, Success, state)
}

// JMP's offset lands ip at (opcode address + offset): offset 0 re-fetches
// the JMP opcode itself forever. Bound the run with a context deadline
// instead of a step count; the loop never leaves the JMP cell.
func TestJmpZeroOffsetSelfLoops(t *testing.T) {
	in := newTestInterp()
	compile(in.Text, MachineCell(OpJmp), 0)
	ctx := in.NewContext(1)

	goctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	state := ctx.Execute(goctx)
	assert.Equal(t, Halted, state)
	assert.Equal(t, Cell(1), ctx.IP)
}

// An offset of 2 skips clean over the JMP instruction's own two cells,
// landing on whatever comes next.
func TestJmpSkipsOverOwnBody(t *testing.T) {
	in := newTestInterp()
	compile(in.Text, MachineCell(OpJmp), 2, MachineCell(OpExit))
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	assert.Equal(t, Success, state)
}

func TestRollZeroIsNoOp(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(1)...)
	prog = append(prog, lit(2)...)
	prog = append(prog, lit(0)...)
	prog = append(prog, MachineCell(OpRoll), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	require.Equal(t, Success, state)
	require.Equal(t, 2, ctx.DSP)
	assert.Equal(t, Cell(1), ctx.DStack[0])
	assert.Equal(t, Cell(2), ctx.DStack[1])
}

// ROLL 1 brings the item one below the top to the top, which is
// SWAP-equivalent per §4.D and the §9 Open Question on downward bounds.
func TestRollOneMatchesSwap(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(1)...)
	prog = append(prog, lit(2)...)
	prog = append(prog, lit(1)...)
	prog = append(prog, MachineCell(OpRoll), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	require.Equal(t, Success, state)
	require.Equal(t, 2, ctx.DSP)
	assert.Equal(t, Cell(2), ctx.DStack[0])
	assert.Equal(t, Cell(1), ctx.DStack[1])
}

// ROLL 2 brings the item two below the top to the top, equivalent to ROT.
func TestRollTwoMatchesRot(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(1)...)
	prog = append(prog, lit(2)...)
	prog = append(prog, lit(3)...)
	prog = append(prog, lit(2)...)
	prog = append(prog, MachineCell(OpRoll), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	require.Equal(t, Success, state)
	require.Equal(t, 3, ctx.DSP)
	assert.Equal(t, Cell(2), ctx.DStack[0])
	assert.Equal(t, Cell(3), ctx.DStack[1])
	assert.Equal(t, Cell(1), ctx.DStack[2])
}

// Downward ROLL -1 must produce the same result as upward ROLL 1 (the §9
// Open Question's "m=1 matches upward roll of 1").
func TestRollDownwardOneMatchesUpwardOne(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(1)...)
	prog = append(prog, lit(2)...)
	prog = append(prog, lit(-1)...)
	prog = append(prog, MachineCell(OpRoll), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	require.Equal(t, Success, state)
	require.Equal(t, 2, ctx.DSP)
	assert.Equal(t, Cell(2), ctx.DStack[0])
	assert.Equal(t, Cell(1), ctx.DStack[1])
}

// Downward ROLL -2 rotates the top three down by one, top wrapping under.
func TestRollDownwardTwo(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(1)...)
	prog = append(prog, lit(2)...)
	prog = append(prog, lit(3)...)
	prog = append(prog, lit(-2)...)
	prog = append(prog, MachineCell(OpRoll), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	require.Equal(t, Success, state)
	require.Equal(t, 3, ctx.DSP)
	assert.Equal(t, Cell(3), ctx.DStack[0])
	assert.Equal(t, Cell(1), ctx.DStack[1])
	assert.Equal(t, Cell(2), ctx.DStack[2])
}

func TestPickZeroMatchesDup(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(9)...)
	prog = append(prog, lit(0)...)
	prog = append(prog, MachineCell(OpPick), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	require.Equal(t, Success, state)
	require.Equal(t, 2, ctx.DSP)
	assert.Equal(t, Cell(9), ctx.DStack[0])
	assert.Equal(t, Cell(9), ctx.DStack[1])
}

func TestPickNegativeUnderflows(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(9)...)
	prog = append(prog, lit(-1)...)
	prog = append(prog, MachineCell(OpPick), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	assert.Equal(t, DstkUnder, state)
}

func TestMinIntDividedByNegOneDefined(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(MinCellForTest)...)
	prog = append(prog, lit(-1)...)
	prog = append(prog, MachineCell(OpDiv), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	require.Equal(t, Success, state)
	require.Equal(t, 1, ctx.DSP)
	// Go's division wraps MinInt32/-1 back to MinInt32 (two's-complement
	// overflow), rather than panicking.
	assert.Equal(t, MinCellForTest, ctx.DStack[0])
}

// MinCellForTest is the minimum 32-bit Cell value; naming it avoids a
// literal that golint tools mistake for an overflow typo.
const MinCellForTest Cell = -1 << 31

func TestBadOpcodeOnUnknownIndex(t *testing.T) {
	in := newTestInterp()
	compile(in.Text, MachineCell(Op(9999)))
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	assert.Equal(t, BadOpcode, state)
}

func TestReservedOpcodesAlwaysBad(t *testing.T) {
	in := newTestInterp()
	compile(in.Text, MachineCell(OpDivMod))
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	assert.Equal(t, BadOpcode, state)
}

func TestDataSpaceSegv(t *testing.T) {
	in := newTestInterp()
	var prog []Cell
	prog = append(prog, lit(1)...)
	prog = append(prog, lit(1000)...)
	prog = append(prog, MachineCell(OpStore), MachineCell(OpExit))
	compile(in.Text, prog...)
	ctx := in.NewContext(1)
	state := ctx.Execute(context.Background())
	assert.Equal(t, SegvData, state)
}
