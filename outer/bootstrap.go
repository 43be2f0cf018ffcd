package outer

import "github.com/phenidone/fith/vm"

// Bootstrap populates the dictionary with every primitive name (core and
// full-mode opcodes alike), marks IMMEDIATE and [ as immediate, and, when
// full is true, compiles the three hand-assembled words that make the
// dictionary self-sufficient: ":", ";", and "QUIT". This transcribes
// original_source/fithi.cc's bootstrap(bool full) directly: the raw opcode
// sequences below are not Forth source text run through INTERPRET (the
// dictionary doesn't exist yet to look anything up), they are built cell by
// cell the same way the original's compile() calls do.
//
// A second, partial call (full=false) is used by GC to repopulate just the
// opcode names after it has cleared the dictionary and compacted code
// space; the three bootstrap words are not recompiled: like any other
// word, they survive GC only if they are reachable from its root.
func (o *Interpreter) Bootstrap(full bool) {
	for op, name := range o.VM.OpNames {
		if name == "" {
			continue
		}
		o.create(name, vm.MachineCell(vm.Op(op)))
	}

	o.immediate("IMMEDIATE")
	o.immediate("[")

	if !full {
		return
	}

	// : : WORD HERE @C CREATE LATEST HIDDEN ] ;
	colon := o.VM.Text.Here()
	o.create(":", colon)
	o.compile(OpWord)
	o.compile(vm.OpHere)
	o.compile(OpReadCode)
	o.compile(OpCreate)
	o.compile(OpLatest)
	o.compile(OpHidden)
	o.compile(OpRbrac)
	o.compile(vm.OpExit)

	// : ; IMMEDIATE ' EXIT , LATEST HIDDEN [ ;
	semicolon := o.VM.Text.Here() | vm.FlagImmed
	o.create(";", semicolon)
	o.compile(vm.OpTick)
	o.appendRaw(vm.MachineCell(vm.OpExit))
	o.compile(OpComma)
	o.compile(OpLatest)
	o.compile(OpHidden)
	o.compile(OpLbrac)
	o.compile(vm.OpExit)

	// QUIT: do { INTERPRET } while(!EOF)
	quit := o.VM.Text.Here()
	o.create("QUIT", quit)
	o.compile(OpInterpret)
	o.compile(OpEof)
	o.compile(vm.OpJz)
	o.appendRaw(-2)
	o.compile(vm.OpExit)
}

// immediate sets FlagImmed on a dictionary entry created moments earlier by
// name, the Go equivalent of original's dictionary[name] |= FLAG_IMMED (not
// mw_immediate, which only ever targets LATEST; this helper is used by
// Bootstrap to flag names that aren't necessarily the most recent entry).
func (o *Interpreter) immediate(name string) {
	if v, ok := o.Dict[name]; ok {
		o.Dict[name] = v | vm.FlagImmed
	}
}

// appendRaw writes a raw (untagged) cell at the code-space watermark, used
// for TICK/JZ/JMP operands and other non-opcode data compiled by Bootstrap.
func (o *Interpreter) appendRaw(c vm.Cell) {
	here := o.VM.Text.Here()
	o.VM.Text.Write(here, c)
	o.VM.Text.SetHere(here + 1)
}
