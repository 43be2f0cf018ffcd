package container

import (
	"encoding/binary"
	"io"

	"github.com/phenidone/fith/crc"
)

// ReadFile reads a container from r, feeding every consumed word
// (including segment headers) into a mirror CRC and handing each
// non-CRC segment to handler, per §4.B's read contract.
func ReadFile(r io.Reader, handler SegmentHandler) error {
	engine := crc.New()

	header, err := readWords(r, engine, 5)
	if err != nil {
		return err
	}
	if header[0] != magic {
		return newError(ErrBadMagic, "got 0x%08x", header[0])
	}
	binver, iover, segCount := header[2], header[3], header[4]

	if err := handler.OnHeader(binver, iover); err != nil {
		return err
	}

	for i := uint32(0); i < segCount; i++ {
		precrc := engine.Remainder()

		kindCount, err := readWords(r, engine, 2)
		if err != nil {
			return err
		}
		kind, count := Kind(kindCount[0]), kindCount[1]
		if count == 0 {
			return newError(ErrShortRead, "segment %d declares zero count", i)
		}

		payload, err := readWords(r, engine, count-1)
		if err != nil {
			return err
		}

		if kind == CRC {
			if precrc != payload[0] {
				return newError(ErrCRCMismatch, "segment %d", i)
			}
			continue
		}

		cells := make([]int32, len(payload))
		for j, w := range payload {
			cells[j] = int32(w)
		}
		if err := handler.OnSegment(kind, cells); err != nil {
			return err
		}
	}

	return nil
}

func readWords(r io.Reader, engine *crc.Engine, n uint32) ([]uint32, error) {
	words := make([]uint32, n)
	for i := range words {
		if err := binary.Read(r, binary.BigEndian, &words[i]); err != nil {
			return nil, newError(ErrShortRead, "%v", err)
		}
	}
	engine.InsertWords(words)
	return words, nil
}
