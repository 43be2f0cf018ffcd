package vm

// Interpreter owns the two address spaces and the primitive dispatch
// table shared by every Context run against it. Ops and OpNames start
// out holding only the constrained-mode primitives (OpCoreCount of
// them); package outer appends the full-mode opcodes past that point,
// the Go re-expression of the original's #ifdef FULLFITH opcode block
// (§9, "re-express as an indexed table").
type Interpreter struct {
	Text *Space
	Heap *Space

	Ops     []func(*Context)
	OpNames []string

	SysCalls SysCalls

	// DStackSize and RStackSize size new contexts created by host code
	// that doesn't specify its own (e.g. the outer interpreter's REPL
	// context).
	DStackSize int
	RStackSize int

	Logf func(format string, args ...interface{})
}

// Option configures an Interpreter at construction, following the
// teacher's functional-options convention (api.go's VMOption).
type Option func(*Interpreter)

// WithSysCalls installs the host's syscall provider.
func WithSysCalls(sc SysCalls) Option {
	return func(in *Interpreter) { in.SysCalls = sc }
}

// WithStackSizes sets the default data/return stack sizes for contexts
// created without explicit sizes.
func WithStackSizes(dstk, rstk int) Option {
	return func(in *Interpreter) { in.DStackSize, in.RStackSize = dstk, rstk }
}

// WithLogf installs a leveled trace sink; nil (the default) disables
// tracing entirely.
func WithLogf(logf func(string, ...interface{})) Option {
	return func(in *Interpreter) { in.Logf = logf }
}

const (
	defaultDStackSize = 64
	defaultRStackSize = 64
)

// NewInterpreter allocates code and data spaces of the given size (in
// cells) and installs the constrained-mode primitive table. textHere
// and heapHere set the initial watermark of each space: 1 for a
// constrained-mode interpreter with no reserved heap layout, or past
// package outer's fixed WORD/LATEST buffers for a full-mode one.
func NewInterpreter(textSize, heapSize int, textHere, heapHere Cell, opts ...Option) *Interpreter {
	in := &Interpreter{
		Text:       NewSpace(textSize, textHere),
		Heap:       NewSpace(heapSize, heapHere),
		DStackSize: defaultDStackSize,
		RStackSize: defaultRStackSize,
	}
	in.installCoreOps()
	for _, opt := range opts {
		opt(in)
	}
	if in.SysCalls == nil {
		in.SysCalls = NullSysCalls{}
	}
	return in
}

// NewContext creates a context entering at ip using the interpreter's
// default stack sizes.
func (in *Interpreter) NewContext(ip Cell) *Context {
	return NewContext(in, ip, in.DStackSize, in.RStackSize)
}

// trace emits a leveled log line if tracing is enabled.
func (in *Interpreter) trace(format string, args ...interface{}) {
	if in.Logf != nil {
		in.Logf(format, args...)
	}
}

// OpName returns the mnemonic for op, or "" if unknown.
func (in *Interpreter) OpName(op Op) string {
	if int(op) < 0 || int(op) >= len(in.OpNames) {
		return ""
	}
	return in.OpNames[op]
}
