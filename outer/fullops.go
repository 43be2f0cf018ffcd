package outer

import (
	"fmt"

	"github.com/phenidone/fith/vm"
)

// opStoreCode implements !C ( val addr -- ): store into code space.
func (o *Interpreter) opStoreCode(ctx *vm.Context) {
	if ctx.DSP < 2 {
		ctx.State = vm.DstkUnder
		return
	}
	addr := ctx.DStack[ctx.DSP-1]
	val := ctx.DStack[ctx.DSP-2]
	if !o.VM.Text.Write(addr, val) {
		ctx.State = vm.SegvCode
		return
	}
	ctx.DSP -= 2
}

// opReadCode implements @C ( addr -- val ): load from code space.
func (o *Interpreter) opReadCode(ctx *vm.Context) {
	if ctx.DSP < 1 {
		ctx.State = vm.DstkUnder
		return
	}
	addr := ctx.DStack[ctx.DSP-1]
	val, ok := o.VM.Text.Read(addr)
	if !ok {
		ctx.State = vm.SegvCode
		return
	}
	ctx.DStack[ctx.DSP-1] = val
}

// opComma implements , ( val -- ): append val at the code-space
// watermark, failing with SegvCode if the space is full (not a silent
// no-op like vm.Space.Append, matching mw_comma's explicit bounds
// check).
func (o *Interpreter) opComma(ctx *vm.Context) {
	if ctx.DSP < 1 {
		ctx.State = vm.DstkUnder
		return
	}
	here := o.VM.Text.Here()
	val := ctx.DStack[ctx.DSP-1]
	if !o.VM.Text.Write(here, val) {
		ctx.State = vm.SegvCode
		return
	}
	o.VM.Text.SetHere(here + 1)
	ctx.DSP--
}

// compile appends a MACHINE-tagged op to code space, used by
// bootstrap and by INTERPRET when compiling a literal.
func (o *Interpreter) compile(op vm.Op) {
	here := o.VM.Text.Here()
	o.VM.Text.Write(here, vm.MachineCell(op))
	o.VM.Text.SetHere(here + 1)
}

func (o *Interpreter) opDot(ctx *vm.Context) {
	if ctx.DSP < 1 {
		ctx.State = vm.DstkUnder
		return
	}
	v := ctx.Pop()
	if ctx.State != vm.Running {
		return
	}
	o.printf("%d ", v)
}

func (o *Interpreter) opNumber(ctx *vm.Context) {
	if ctx.DSP < 1 {
		ctx.State = vm.DstkUnder
		return
	}
	if ctx.DSP >= len(ctx.DStack) {
		ctx.State = vm.DstkOver
		return
	}
	str, ok := o.VM.Heap.GetString(ctx.DStack[ctx.DSP-1])
	if !ok || str == "" {
		ctx.DStack[ctx.DSP-1] = 0
		ctx.DStack[ctx.DSP] = -1
		ctx.DSP++
		return
	}
	val, unconverted := strtol(str)
	ctx.DStack[ctx.DSP-1] = vm.Cell(val)
	ctx.DStack[ctx.DSP] = vm.Cell(unconverted)
	ctx.DSP++
}

func (o *Interpreter) opCreate(ctx *vm.Context) {
	if ctx.DSP < 2 {
		ctx.State = vm.DstkUnder
		return
	}
	ptr := ctx.Pop()
	if ctx.State != vm.Running {
		return
	}
	str, ok := o.VM.Heap.GetString(ctx.Pop())
	if ctx.State != vm.Running {
		return
	}
	if !ok {
		ctx.State = vm.SegvData
		return
	}
	o.create(str, ptr)
}

func (o *Interpreter) opFind(ctx *vm.Context) {
	if ctx.DSP < 1 {
		ctx.State = vm.DstkUnder
		return
	}
	str, ok := o.VM.Heap.GetString(ctx.DStack[ctx.DSP-1])
	if !ok {
		ctx.State = vm.SegvData
		return
	}
	ctx.DStack[ctx.DSP-1] = o.find(str)
}

func (o *Interpreter) opLatest(ctx *vm.Context) {
	if ctx.DSP >= len(ctx.DStack) {
		ctx.State = vm.DstkOver
		return
	}
	o.VM.Heap.PutString(LatestLenAt, o.Latest, maxWordLen)
	ctx.Push(LatestLenAt)
}

func (o *Interpreter) opImmediate(ctx *vm.Context) {
	if v, ok := o.Dict[o.Latest]; ok {
		o.Dict[o.Latest] = v ^ vm.FlagImmed
	}
}

func (o *Interpreter) opHidden(ctx *vm.Context) {
	if ctx.DSP < 1 {
		ctx.State = vm.DstkUnder
		return
	}
	str, ok := o.VM.Heap.GetString(ctx.Pop())
	if ctx.State != vm.Running {
		return
	}
	if !ok {
		ctx.State = vm.SegvData
		return
	}
	if v, present := o.Dict[str]; present {
		o.Dict[str] = v ^ vm.FlagHide
	}
}

func (o *Interpreter) opLbrac(ctx *vm.Context) { o.Compiling = false }
func (o *Interpreter) opRbrac(ctx *vm.Context) { o.Compiling = true }

func (o *Interpreter) opState(ctx *vm.Context) {
	if ctx.DSP >= len(ctx.DStack) {
		ctx.State = vm.DstkOver
		return
	}
	if o.Compiling {
		ctx.Push(1)
	} else {
		ctx.Push(0)
	}
}

// opInterpret implements one pass of the outer interpreter's compile
// loop: read a WORD, FIND it, and either call it (immediate word, or
// running outside compile mode), compile it (ordinary word while
// compiling), or else try NUMBER and either compile a LIT or leave the
// value on the stack, transcribing mw_interpret exactly.
func (o *Interpreter) opInterpret(ctx *vm.Context) {
	wordPtr := o.word()
	length, _ := o.VM.Heap.Read(WordLenAt)
	if length < 1 {
		return
	}

	str, _ := o.VM.Heap.GetString(wordPtr)
	found := o.find(str)
	if found != -1 {
		if found.IsHide() {
			o.printf("Unrecognised word %s\n", str)
			return
		}
		if !o.Compiling || found.IsImmed() {
			ctx.Push(found)
			if ctx.State != vm.Running {
				return
			}
			tgt := ctx.Pop()
			if tgt.IsMachine() {
				ctx.Invoke(tgt.Op())
			} else {
				if ctx.RSP >= len(ctx.RStack) {
					ctx.State = vm.RstkOver
					return
				}
				ctx.PushR(ctx.IP)
				ctx.IP = tgt.Addr()
			}
			return
		}
		here := o.VM.Text.Here()
		o.VM.Text.Write(here, found)
		o.VM.Text.SetHere(here + 1)
		return
	}

	val, unconverted := strtol(str)
	if unconverted == 0 {
		if o.Compiling {
			// The value is consumed into code space as LIT's operand,
			// not left on the data stack (mw_interpret: "compile mode:
			// LIT number" followed by comma, never a push).
			o.compile(vm.OpLit)
			here := o.VM.Text.Here()
			o.VM.Text.Write(here, vm.Cell(val))
			o.VM.Text.SetHere(here + 1)
		} else {
			ctx.Push(vm.Cell(val))
		}
	} else {
		o.printf("Unrecognised word %s\n", str)
	}
}

// Dump writes a human-readable disassembly of code space to w,
// transcribing mw_dump without the original's fixed "bindump.txt" path
// (the host chooses the writer).
func (o *Interpreter) Dump(w interface{ Write([]byte) (int, error) }) {
	here := o.VM.Text.Here()
	fmt.Fprintf(w, "HERE = %d\n", here)
	for p := vm.Cell(1); p < here; p++ {
		if label := o.reverseFind(p); label != "" {
			fmt.Fprintf(w, "%s:\n", label)
		}
		v, _ := o.VM.Text.Read(p)
		fmt.Fprintf(w, "%04d   %s", p, o.opcodeString(v))
		if v.IsMachine() {
			op := v.Op()
			switch op {
			case vm.OpLit, vm.OpJmp, vm.OpJz:
				p++
				arg, _ := o.VM.Text.Read(p)
				fmt.Fprintf(w, " %d", arg)
			case vm.OpTick:
				p++
				arg, _ := o.VM.Text.Read(p)
				fmt.Fprintf(w, " %s", o.opcodeString(arg))
			}
		}
		fmt.Fprintln(w)
	}
}

func (o *Interpreter) opcodeString(v vm.Cell) string {
	if v.IsMachine() {
		if name := o.VM.OpName(v.Op()); name != "" {
			return name
		}
		return "BAD OPCODE"
	}
	if name := o.reverseFind(v.Addr()); name != "" {
		return name
	}
	return fmt.Sprintf("%d", v)
}

func (o *Interpreter) opDump(ctx *vm.Context) {
	o.Dump(o.Out)
}
