// Package hostio supplies concrete SysCalls providers for the two
// FITH hosts: a desktop simulation used by cmd/fith and the no-op
// default used when cmd/fithrun is given no host at all.
package hostio

import (
	"io"
	"time"

	"github.com/phenidone/fith/internal/runeio"
	"github.com/phenidone/fith/vm"
)

// Null is the no-op provider: every syscall clears its arguments to 0,
// per §4.D. It is the same behavior as vm.NullSysCalls, kept here too
// so hosts can name hostio.Null alongside hostio.Desktop.
type Null = vm.NullSysCalls

// Selector constants recognized by Desktop, following the original
// PLC host's convention of treating the deepest argument as a
// selector (§6 "Syscall ABI", §4.G original_source supplementary
// feature: plcsim.cc's selector convention).
const (
	SelConsoleRead  = 1
	SelConsoleWrite = 2
	SelClockMillis  = 3
)

// Desktop is a simulated console/clock syscall provider for the
// full-mode desktop host, grounded on the original's plcsim.cc
// selector dispatch and on the teacher's rune-oriented stream I/O.
type Desktop struct {
	In    io.RuneReader
	Out   io.Writer
	Clock func() int64
}

// NewDesktop returns a Desktop reading/writing the given streams.
// clock defaults to time.Now().UnixMilli if nil.
func NewDesktop(in io.RuneReader, out io.Writer, clock func() int64) *Desktop {
	if clock == nil {
		clock = func() int64 { return time.Now().UnixMilli() }
	}
	return &Desktop{In: in, Out: out, Clock: clock}
}

// Syscall1 dispatches on the single selector argument.
func (d *Desktop) Syscall1(a vm.Cell) vm.Cell {
	switch a {
	case SelClockMillis:
		return vm.Cell(d.Clock())
	case SelConsoleRead:
		r, _, err := d.In.ReadRune()
		if err != nil {
			return -1
		}
		return vm.Cell(r)
	default:
		return 0
	}
}

// Syscall2 dispatches on the selector carried in the deepest (first)
// argument.
func (d *Desktop) Syscall2(a, b vm.Cell) vm.Cell {
	switch a {
	case SelConsoleWrite:
		_, _ = d.Out.Write([]byte{byte(b)})
		return 0
	default:
		return 0
	}
}

// Syscall3 has no assigned selectors yet; it clears its arguments.
func (d *Desktop) Syscall3(a, b, c vm.Cell) vm.Cell {
	return 0
}

// WithDesktopSysCalls installs a Desktop provider reading in and writing
// out, wrapping in for rune-at-a-time reads the way package outer's WORD
// and KEY require (§4.E).
func WithDesktopSysCalls(in io.Reader, out io.Writer) vm.Option {
	return vm.WithSysCalls(NewDesktop(runeio.NewReader(in), out, nil))
}
