package hostio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phenidone/fith/container"
	"github.com/phenidone/fith/vm"
)

// Loaded is the result of reading a container: the populated interpreter,
// the entry address found in the ENTRY segment (if any), and the address to
// name table found in the MAP segment (if any). It implements
// container.SegmentHandler directly so callers need nothing more than
// container.ReadFile(r, loaded).
type Loaded struct {
	Interp *vm.Interpreter

	BinVer, IOVer uint32
	HasEntry      bool
	Entry         vm.Cell
	Symbols       map[string]vm.Cell
}

// NewLoaded returns a segment handler that populates a fresh interpreter
// of textSize/heapSize cells; a TEXT or DATA segment that does not fit
// makes OnSegment return an error. Per
// §4.G: "populates the code image from TEXT, the data image from DATA,
// picks up the entry address from ENTRY, and optionally scans a MAP for a
// named entry."
func NewLoaded(textSize, heapSize int, opts ...vm.Option) *Loaded {
	return &Loaded{
		Interp:  vm.NewInterpreter(textSize, heapSize, 1, 1, opts...),
		Symbols: make(map[string]vm.Cell),
	}
}

// OnHeader records the binary/IO versions; a host that cares about
// instruction-set or syscall-ABI compatibility can check BinVer/IOVer after
// ReadFile returns (this implementation accepts anything, matching §4.G's
// "must validate and may reject" being a host-supplied policy, not a codec
// one).
func (l *Loaded) OnHeader(binver, iover uint32) error {
	l.BinVer, l.IOVer = binver, iover
	return nil
}

// OnSegment populates the interpreter's spaces from TEXT/DATA, records the
// ENTRY address, and parses the MAP segment's "hex-address name" lines.
func (l *Loaded) OnSegment(kind container.Kind, cells []int32) error {
	switch kind {
	case container.Text:
		return l.loadSpace(l.Interp.Text, cells)
	case container.Data:
		return l.loadSpace(l.Interp.Heap, cells)
	case container.Entry:
		if len(cells) < 1 {
			return fmt.Errorf("ENTRY segment empty")
		}
		l.HasEntry = true
		l.Entry = vm.Cell(cells[0])
	case container.Map:
		l.Symbols = parseMap(cells)
	case container.Config:
		// opaque program config, no in-scope consumer yet (§4.B).
	}
	return nil
}

func (l *Loaded) loadSpace(sp *vm.Space, cells []int32) error {
	if len(cells) > sp.Cap()-1 {
		return fmt.Errorf("segment of %d cells exceeds space capacity %d", len(cells), sp.Cap())
	}
	for i, c := range cells {
		sp.Write(vm.Cell(i+1), vm.Cell(c))
	}
	sp.SetHere(vm.Cell(len(cells) + 1))
	return nil
}

// parseMap decodes a MAP segment's NUL-padded text back into "hex-address
// name" lines, mirroring the ASCII form container.Writer.WriteMap packs.
func parseMap(cells []int32) map[string]vm.Cell {
	buf := make([]byte, 4*len(cells))
	for i, c := range cells {
		buf[4*i] = byte(c)
		buf[4*i+1] = byte(c >> 8)
		buf[4*i+2] = byte(c >> 16)
		buf[4*i+3] = byte(c >> 24)
	}
	if i := strings.IndexByte(string(buf), 0); i >= 0 {
		buf = buf[:i]
	}

	out := make(map[string]vm.Cell)
	for _, line := range strings.Split(string(buf), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		addr, err := strconv.ParseUint(fields[0], 16, 32)
		if err != nil {
			continue
		}
		out[fields[1]] = vm.Cell(addr)
	}
	return out
}

// Load reads a container from r into a freshly sized interpreter.
func Load(r io.Reader, textSize, heapSize int, opts ...vm.Option) (*Loaded, error) {
	l := NewLoaded(textSize, heapSize, opts...)
	if err := container.ReadFile(r, l); err != nil {
		return nil, err
	}
	return l, nil
}
