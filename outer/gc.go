package outer

import (
	"sort"

	"github.com/phenidone/fith/vm"
)

// invertDict builds an address-to-name map restricted to non-primitive
// dictionary entries, stripping the IMMED/HIDE tag bits from the stored
// cell, transcribing original_source/fithi.cc's invert_dict().
func (o *Interpreter) invertDict() map[vm.Cell]string {
	rd := make(map[vm.Cell]string, len(o.Dict))
	for name, v := range o.Dict {
		if v.IsMachine() {
			continue
		}
		rd[v.Addr()] = name
	}
	return rd
}

// extents computes, for each known word start (ascending order), the
// distance to the next known start, with the final word running to the
// current code-space watermark. Per §4.F step 1.
func (o *Interpreter) extents(rd map[vm.Cell]string) (starts []vm.Cell, length map[vm.Cell]vm.Cell) {
	starts = make([]vm.Cell, 0, len(rd))
	for addr := range rd {
		starts = append(starts, addr)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	length = make(map[vm.Cell]vm.Cell, len(starts))
	here := o.VM.Text.Here()
	for i, addr := range starts {
		if i+1 < len(starts) {
			length[addr] = starts[i+1] - addr
		} else {
			length[addr] = here - addr
		}
	}
	return starts, length
}

// isBranchOpcode reports whether op consumes a following raw (non-reference)
// operand cell: LIT, JMP, JZ per §4.F step 2.
func isBranchOpcode(op vm.Op) bool {
	switch op {
	case vm.OpLit, vm.OpJmp, vm.OpJz:
		return true
	default:
		return false
	}
}

// mark runs the tracing collector rooted at root (tag bits already
// stripped), returning the set of reachable word starts. Transcribes
// original_source/fithi.cc's mw_gc mark loop: machine-tagged operand cells
// following LIT/JMP/JZ are data, all other machine-tagged cells are
// builtins and are skipped (this is also how a TICK operand that happens to
// be a plain word address still gets queued: TICK itself is skipped as a
// builtin, but its operand cell is examined on the next iteration like any
// other cell).
func (o *Interpreter) mark(root vm.Cell, length map[vm.Cell]vm.Cell) map[vm.Cell]bool {
	live := make(map[vm.Cell]bool)
	todo := []vm.Cell{root}
	queued := map[vm.Cell]bool{root: true}

	for len(todo) > 0 {
		ptr := todo[0]
		todo = todo[1:]

		l, known := length[ptr]
		if !known {
			continue
		}
		live[ptr] = true

		for k := vm.Cell(0); k < l; k++ {
			cell, _ := o.VM.Text.Read(ptr + k)
			if cell.IsMachine() {
				if isBranchOpcode(cell.Op()) {
					k++
				}
				continue
			}
			addr := cell.Addr()
			if !live[addr] && !queued[addr] {
				queued[addr] = true
				todo = append(todo, addr)
			}
		}
	}
	return live
}

// plan assigns each live word a fresh contiguous address starting at 1 (cell
// 0 stays the reserved watermark), in ascending old-address order, per
// §4.F step 3.
func plan(live map[vm.Cell]bool, length map[vm.Cell]vm.Cell) (remap map[vm.Cell]vm.Cell, newHere vm.Cell) {
	starts := make([]vm.Cell, 0, len(live))
	for addr := range live {
		starts = append(starts, addr)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	remap = make(map[vm.Cell]vm.Cell, len(starts))
	newHere = 1
	for _, addr := range starts {
		remap[addr] = newHere
		newHere += length[addr]
	}
	return remap, newHere
}

// rewrite copies each live word into a fresh image of size newHere,
// rewriting every interior reference cell via remap; opcodes and their
// raw operands (LIT/JMP/JZ's following cell) are copied verbatim. Returns
// false (leaving the live image untouched, per §7) if a reference cannot
// be resolved.
func (o *Interpreter) rewrite(live map[vm.Cell]bool, length map[vm.Cell]vm.Cell, remap map[vm.Cell]vm.Cell, newHere vm.Cell) ([]vm.Cell, bool) {
	img := make([]vm.Cell, newHere)
	img[0] = newHere

	for from := range live {
		to := remap[from]
		l := length[from]
		for k := vm.Cell(0); k < l; k++ {
			cell, _ := o.VM.Text.Read(from + k)
			if cell.IsMachine() {
				img[to+k] = cell
				if isBranchOpcode(cell.Op()) && k+1 < l {
					k++
					arg, _ := o.VM.Text.Read(from + k)
					img[to+k] = arg
				}
				continue
			}
			addr := cell.Addr()
			newAddr, ok := remap[addr]
			if !ok {
				return nil, false
			}
			img[to+k] = newAddr
		}
	}
	return img, true
}

// install overwrites code space with img, clears the dictionary, reruns the
// partial bootstrap (primitive names only), and reinserts every surviving
// name at its new address, per §4.F step 5.
func (o *Interpreter) install(img []vm.Cell, rd map[vm.Cell]string, remap map[vm.Cell]vm.Cell) {
	o.VM.Text.SetHere(vm.Cell(len(img)))
	for i, c := range img {
		o.VM.Text.Write(vm.Cell(i), c)
	}

	o.Dict = make(map[string]vm.Cell)
	o.Latest = ""
	o.Bootstrap(false)

	for old, name := range rd {
		if to, ok := remap[old]; ok {
			o.create(name, to)
		}
	}
}

// GC runs the tracing relocator rooted at the address on top of the data
// stack: invert the dictionary, mark everything reachable from the root,
// plan a compacted layout, rewrite, install it over the live code space,
// persist the result via SAVE, and halt. Transcribes
// original_source/fithi.cc's mw_gc() per §4.F. On an unresolvable
// reference the live image is left untouched and state is set to
// SegvCode, consistent with §7's no-rollback-needed guarantee.
func (o *Interpreter) GC(ctx *vm.Context) {
	if ctx.DSP < 1 {
		ctx.State = vm.DstkUnder
		return
	}
	root := ctx.Pop().Addr()
	if ctx.State != vm.Running {
		return
	}

	rd := o.invertDict()
	_, length := o.extents(rd)

	live := o.mark(root, length)

	remap, newHere := plan(live, length)

	img, ok := o.rewrite(live, length, remap, newHere)
	if !ok {
		ctx.State = vm.SegvCode
		return
	}

	o.install(img, rd, remap)

	o.Save("fith")

	ctx.State = vm.Halted
}

func (o *Interpreter) opGC(ctx *vm.Context) {
	o.GC(ctx)
}
