package vm

import "context"

// Context is one thread of execution: an instruction pointer into code
// space, a bounded data stack, a bounded return stack, and a reference
// to the interpreter whose spaces and dispatch table it runs against.
// Context carries no hidden state beyond these fields, which is what
// makes execute() a pure function of its inputs (§8, "Deterministic
// execution").
type Context struct {
	IP    Cell
	State State

	DStack []Cell
	DSP    int

	RStack []Cell
	RSP    int

	Interp *Interpreter
}

// NewContext creates a context entering at ip, with data and return
// stacks of the given sizes.
func NewContext(interp *Interpreter, ip Cell, dstkSize, rstkSize int) *Context {
	return &Context{
		IP:     ip,
		State:  Running,
		DStack: make([]Cell, dstkSize),
		RStack: make([]Cell, rstkSize),
		Interp: interp,
	}
}

// Push pushes v onto the data stack, setting DstkOver on overflow.
func (ctx *Context) Push(v Cell) {
	if ctx.DSP >= len(ctx.DStack) {
		ctx.State = DstkOver
		return
	}
	ctx.DStack[ctx.DSP] = v
	ctx.DSP++
}

// Pop pops the top of the data stack, setting DstkUnder on underflow.
// Returns 0 and leaves State set on failure; callers must check State
// before using the result, per §8's stack-discipline property.
func (ctx *Context) Pop() Cell {
	if ctx.DSP <= 0 {
		ctx.State = DstkUnder
		return 0
	}
	ctx.DSP--
	return ctx.DStack[ctx.DSP]
}

// Peek returns the n-th cell below the top (0 is the top itself)
// without popping, setting DstkUnder if depth is insufficient.
func (ctx *Context) Peek(n int) Cell {
	i := ctx.DSP - 1 - n
	if i < 0 {
		ctx.State = DstkUnder
		return 0
	}
	return ctx.DStack[i]
}

// PushR pushes v onto the return stack, setting RstkOver on overflow.
func (ctx *Context) PushR(v Cell) {
	if ctx.RSP >= len(ctx.RStack) {
		ctx.State = RstkOver
		return
	}
	ctx.RStack[ctx.RSP] = v
	ctx.RSP++
}

// PopR pops the top of the return stack, setting RstkUnder on
// underflow.
func (ctx *Context) PopR() Cell {
	if ctx.RSP <= 0 {
		ctx.State = RstkUnder
		return 0
	}
	ctx.RSP--
	return ctx.RStack[ctx.RSP]
}

// fetch reads the next code cell and advances ip, setting SegvCode if
// ip runs outside code space.
func (ctx *Context) fetch() (Cell, bool) {
	cell, ok := ctx.Interp.Text.Read(ctx.IP)
	if !ok {
		ctx.State = SegvCode
		return 0, false
	}
	ctx.IP++
	return cell, true
}

// Execute runs the fetch-decode-dispatch loop until State leaves
// Running: success, a failure state, or Halted set by a primitive such
// as GC. ctx is accepted so a host can impose a deadline without the
// VM arming its own timer (§5).
func (ctx *Context) Execute(c context.Context) State {
	ctx.State = Running
	for ctx.State == Running {
		select {
		case <-c.Done():
			ctx.State = Halted
			return ctx.State
		default:
		}
		ctx.step()
	}
	return ctx.State
}

// step performs one fetch-decode-dispatch cycle, per §4.D.
func (ctx *Context) step() {
	cell, ok := ctx.fetch()
	if !ok {
		return
	}

	if cell.IsMachine() {
		ctx.invoke(cell.Op())
		return
	}

	// Word address: call by pushing the return ip, then jump.
	if ctx.RSP >= len(ctx.RStack) {
		ctx.State = RstkOver
		return
	}
	ctx.PushR(ctx.IP)
	ctx.IP = cell.Addr()
}

// invoke dispatches a MACHINE-tagged opcode, per §4.D step 3.
func (ctx *Context) invoke(op Op) {
	ctx.Invoke(op)
}

// Invoke dispatches op directly, the same path step takes for a
// MACHINE-tagged code cell. Exported so package outer's INTERPRET and
// CALL-equivalent logic can dispatch a found dictionary entry without
// round-tripping it through the data stack.
func (ctx *Context) Invoke(op Op) {
	ops := ctx.Interp.Ops
	if int(op) < 0 || int(op) >= len(ops) || ops[op] == nil {
		ctx.State = BadOpcode
		return
	}
	ctx.Interp.trace("op %s dsp=%d rsp=%d", ctx.Interp.OpName(op), ctx.DSP, ctx.RSP)
	ops[op](ctx)
}
