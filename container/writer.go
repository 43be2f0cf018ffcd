package container

import (
	"encoding/binary"
	"io"

	"github.com/phenidone/fith/crc"
)

// Writer streams a container to an underlying io.Writer, threading a
// CRC through the header and every segment; the trailing CRC segment
// carries the remainder taken before its own kind/count cells (§4.B
// write contract).
type Writer struct {
	w            io.Writer
	crc          *crc.Engine
	declaredSegs uint32
	wroteSegs    uint32
	err          error
}

// NewWriter begins a container with the given binary/IO versions and
// declared segment count (including the trailing CRC segment).
func NewWriter(w io.Writer, segCount, binver, iover uint32) (*Writer, error) {
	cw := &Writer{w: w, crc: crc.New(), declaredSegs: segCount}
	header := []uint32{magic, fileVersion, binver, iover, segCount}
	if err := cw.writeWords(header); err != nil {
		return nil, err
	}
	return cw, nil
}

func (cw *Writer) writeWords(words []uint32) error {
	for _, word := range words {
		if err := binary.Write(cw.w, binary.BigEndian, word); err != nil {
			return newError(ErrShortRead, "write failed: %v", err)
		}
	}
	cw.crc.InsertWords(words)
	return nil
}

func (cw *Writer) writeSegment(kind Kind, payload []int32) error {
	if cw.err != nil {
		return cw.err
	}
	cw.wroteSegs++
	if cw.wroteSegs > cw.declaredSegs {
		cw.err = newError(ErrTooManySegments, "declared %d, writing segment %d", cw.declaredSegs, cw.wroteSegs)
		return cw.err
	}

	count := uint32(len(payload)) + 1
	if err := cw.writeWords([]uint32{uint32(kind), count}); err != nil {
		cw.err = err
		return err
	}

	words := make([]uint32, len(payload))
	for i, c := range payload {
		words[i] = uint32(c)
	}
	if err := cw.writeWords(words); err != nil {
		cw.err = err
		return err
	}
	return nil
}

// WriteText appends a TEXT segment carrying the code image past its
// watermark cell.
func (cw *Writer) WriteText(cells []int32) error { return cw.writeSegment(Text, cells) }

// WriteData appends a DATA segment carrying the data image past its
// watermark cell.
func (cw *Writer) WriteData(cells []int32) error { return cw.writeSegment(Data, cells) }

// WriteConfig appends an opaque CONFIG segment.
func (cw *Writer) WriteConfig(cells []int32) error { return cw.writeSegment(Config, cells) }

// WriteEntry appends a single-cell ENTRY segment.
func (cw *Writer) WriteEntry(addr int32) error { return cw.writeSegment(Entry, []int32{addr}) }

// WriteMap appends a MAP segment: NUL-padded text, packed 4 bytes to a
// cell, with at least one NUL byte of padding so the content is never
// left unterminated.
func (cw *Writer) WriteMap(text string) error {
	words := len(text)/4 + 1
	buf := make([]byte, words*4)
	copy(buf, text)
	cells := make([]int32, words)
	for i := 0; i < words; i++ {
		b := buf[i*4 : i*4+4]
		cells[i] = int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
	}
	return cw.writeSegment(Map, cells)
}

// WriteCRC appends the trailing CRC segment and must be the last
// segment written; its payload is the remainder captured before this
// call, so it does not include its own kind/count cells.
func (cw *Writer) WriteCRC() error {
	checksum := int32(cw.crc.Remainder())
	return cw.writeSegment(CRC, []int32{checksum})
}
