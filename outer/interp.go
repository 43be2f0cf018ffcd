package outer

import (
	"fmt"
	"io"

	"github.com/phenidone/fith/internal/fileinput"
	"github.com/phenidone/fith/vm"
)

// Interpreter wraps a vm.Interpreter with the full-mode dictionary and
// compiler state. Unlike the teacher's FIRST environment (which has no
// native dictionary), full-mode FITH's dictionary is the original
// design's std::map<string, fith_cell>, represented here as a plain Go
// map (§3 "Dictionary representation").
type Interpreter struct {
	VM   *vm.Interpreter
	Dict map[string]vm.Cell

	Latest    string
	Compiling bool

	in      *fileinput.Input
	Out     io.Writer
	badness bool // mirrors std::istream::good() turning false
}

// New builds a full-mode interpreter over a freshly constructed
// vm.Interpreter (textSize/heapSize in cells) and installs the
// full-mode opcode table. Bootstrap must be called separately to
// populate the dictionary.
func New(textSize, heapSize int, out io.Writer, opts ...vm.Option) *Interpreter {
	in := vm.NewInterpreter(textSize, heapSize, 1, HeapUsed, opts...)
	out2 := &Interpreter{VM: in, Dict: make(map[string]vm.Cell), Out: out}
	out2.installOps()
	return out2
}

// SetInput rebinds the outer interpreter's word-reading source.
func (o *Interpreter) SetInput(r io.Reader) {
	o.in = &fileinput.Input{Queue: []io.Reader{r}}
	o.badness = false
}

func (o *Interpreter) installOps() {
	ops := o.VM.Ops
	names := o.VM.OpNames
	for len(ops) < int(opFullCount) {
		ops = append(ops, nil)
		names = append(names, "")
	}
	copy(names[OpStoreCode:], fullOpNames)

	ops[OpStoreCode] = o.opStoreCode
	ops[OpReadCode] = o.opReadCode
	ops[OpComma] = o.opComma
	ops[OpKey] = o.opKey
	ops[OpEmit] = o.opEmit
	ops[OpWord] = o.opWord
	ops[OpEof] = o.opEof
	ops[OpNumber] = o.opNumber
	ops[OpDot] = o.opDot
	ops[OpCreate] = o.opCreate
	ops[OpFind] = o.opFind
	ops[OpLatest] = o.opLatest
	ops[OpImmediate] = o.opImmediate
	ops[OpHidden] = o.opHidden
	ops[OpLbrac] = o.opLbrac
	ops[OpRbrac] = o.opRbrac
	ops[OpState] = o.opState
	ops[OpInterpret] = o.opInterpret
	ops[OpDump] = o.opDump
	ops[OpSave] = o.opSave
	ops[OpGC] = o.opGC

	o.VM.Ops = ops
	o.VM.OpNames = names
}

// create stores a dictionary entry and updates LATEST, mirroring
// Interpreter::create.
func (o *Interpreter) create(name string, value vm.Cell) {
	o.Dict[name] = value
	o.Latest = name
}

// find returns the stored cell for name, or -1 if absent.
func (o *Interpreter) find(name string) vm.Cell {
	if v, ok := o.Dict[name]; ok {
		return v
	}
	return -1
}

// reverseFind returns the name bound (ignoring IMMED/HIDE) to value,
// or "" if none. Linear scan, used only for dumping and relocation
// (§4.E).
func (o *Interpreter) reverseFind(value vm.Cell) string {
	target := value &^ (vm.FlagImmed | vm.FlagHide)
	for name, v := range o.Dict {
		if v&^(vm.FlagImmed|vm.FlagHide) == target {
			return name
		}
	}
	return ""
}

func (o *Interpreter) printf(format string, args ...interface{}) {
	fmt.Fprintf(o.Out, format, args...)
}
