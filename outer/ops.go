// Package outer implements the full-mode outer interpreter: the
// dictionary, the WORD/FIND/CREATE/NUMBER primitives, the interactive
// compiler, the tracing relocator, and the legacy/container save path.
// It is linked only into cmd/fith; cmd/fithrun never imports it, so a
// constrained-mode binary carries no compiler and cannot mutate code
// space.
package outer

import "github.com/phenidone/fith/vm"

// Full-mode opcodes, appended past vm.OpCoreCount. Index-aligned with
// original_source/fithi.cc's builtin[] table's #ifdef FULLFITH block.
const (
	OpStoreCode = vm.OpCoreCount + iota
	OpReadCode
	OpComma
	OpKey
	OpEmit
	OpWord
	OpEof
	OpNumber
	OpDot
	OpCreate
	OpFind
	OpLatest
	OpImmediate
	OpHidden
	OpLbrac
	OpRbrac
	OpState
	OpInterpret
	OpDump
	OpSave
	OpGC

	// opFullCount is vm.OpCoreCount plus the 21 full-mode opcodes above,
	// matching the original's MW_INTERP_COUNT.
	opFullCount
)

var fullOpNames = []string{
	"!C", "@C", ",", "KEY", "EMIT", "WORD", "EOF", "NUMBER", ".",
	"CREATE", "FIND", "LATEST", "IMMEDIATE", "HIDDEN", "[", "]", "STATE",
	"INTERPRET", "DUMP", "SAVE", "GC",
}

// Reserved layout of the fixed portion of data space: a word-read
// buffer and a latest-name buffer, each WordBufCells cells (§3 Data
// space, original_source/fithi.h's heap enum).
const (
	HereAt       = 0
	WordLenAt    = 1
	WordBufAt    = 2
	WordBufCells = 8 // max 8 cells = 31 chars + NUL
	LatestLenAt  = WordBufAt + WordBufCells
	LatestBufAt  = LatestLenAt + 1
	HeapUsed     = LatestBufAt + WordBufCells
)

const maxWordLen = WordBufCells*4 - 1
