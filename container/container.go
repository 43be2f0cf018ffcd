// Package container implements the segmented, checksum-protected file
// format used to persist a FITH image: a fixed header, any number of
// {kind,count,payload} segments, and a trailing CRC segment, directly
// transcribing original_source/fithfile.h and fithfile.cc.
package container

// Kind identifies a segment's content.
type Kind uint32

const (
	Text   Kind = 0x101
	Data   Kind = 0x102
	Config Kind = 0x103
	Entry  Kind = 0x104
	Map    Kind = 0x105
	CRC    Kind = 0x110
)

const magic uint32 = 0x48544946

// fileVersion is the container format's own version, distinct from
// binver (instruction-set compatibility) and iover (syscall ABI
// compatibility).
const fileVersion uint32 = 1

// SegmentHandler is the capability set a reader hands segments to, the
// re-expression of FithInFile::SegmentHandler as a capability set
// rather than an abstract base class (§9 Design Notes).
type SegmentHandler interface {
	// OnHeader validates the container's binary/IO versions. Returning
	// an error aborts the read.
	OnHeader(binver, iover uint32) error

	// OnSegment receives one non-CRC segment's cells. The handler may
	// retain cells; the reader does not reuse the slice.
	OnSegment(kind Kind, cells []int32) error
}
