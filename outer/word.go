package outer

import (
	"io"
	"unicode"

	"github.com/phenidone/fith/vm"
)

// readToken skips leading whitespace and accumulates runes up to the
// next whitespace or EOF, mirroring istream::operator>>(string&)'s
// "cheat" used by mw_word. ok is false only on EOF with nothing yet
// read (the original's !is test).
func (o *Interpreter) readToken() (string, bool) {
	if o.in == nil || o.badness {
		return "", false
	}
	var r rune
	var err error
	for {
		r, _, err = o.in.ReadRune()
		if err != nil {
			o.badness = true
			return "", false
		}
		if !unicode.IsSpace(r) {
			break
		}
	}
	var buf []rune
	for {
		buf = append(buf, r)
		r, _, err = o.in.ReadRune()
		if err == io.EOF {
			o.badness = true
			break
		}
		if err != nil {
			o.badness = true
			break
		}
		if unicode.IsSpace(r) {
			break
		}
	}
	return string(buf), true
}

// word implements WORD: read the next whitespace-delimited token (or
// flag EOF) into the fixed WORD buffer, truncating to maxWordLen
// bytes, and return the buffer's length-cell address.
func (o *Interpreter) word() vm.Cell {
	str, ok := o.readToken()
	if !ok {
		o.VM.Heap.Write(WordLenAt, -1)
		o.VM.Heap.Write(WordBufAt, 0)
		return WordLenAt
	}
	o.VM.Heap.PutString(WordLenAt, str, maxWordLen)
	return WordLenAt
}

func (o *Interpreter) opWord(ctx *vm.Context) {
	if ctx.DSP >= len(ctx.DStack) {
		ctx.State = vm.DstkOver
		return
	}
	ctx.Push(o.word())
}

func (o *Interpreter) opKey(ctx *vm.Context) {
	if ctx.DSP >= len(ctx.DStack) {
		ctx.State = vm.DstkOver
		return
	}
	if o.in == nil {
		ctx.Push(-1)
		return
	}
	r, _, err := o.in.ReadRune()
	if err != nil {
		o.badness = true
		ctx.Push(-1)
		return
	}
	ctx.Push(vm.Cell(r))
}

func (o *Interpreter) opEmit(ctx *vm.Context) {
	if ctx.DSP < 1 {
		ctx.State = vm.DstkUnder
		return
	}
	c := ctx.Pop()
	if ctx.State != vm.Running {
		return
	}
	o.Out.Write([]byte{byte(c & 0xFF)})
}

func (o *Interpreter) opEof(ctx *vm.Context) {
	if ctx.DSP >= len(ctx.DStack) {
		ctx.State = vm.DstkOver
		return
	}
	if o.badness {
		ctx.Push(1)
	} else {
		ctx.Push(0)
	}
}
