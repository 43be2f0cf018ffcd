package vm

// Space is a fixed-capacity array of cells with a reserved watermark at
// index 0. Unlike a growable buffer, Space never reallocates past its
// declared capacity: every access is bounds-checked against that fixed
// size, which is the whole of FITH's safety argument (§4.C).
type Space struct {
	cells []Cell
}

// NewSpace allocates a Space of the given capacity (in cells, including
// the reserved watermark at index 0) with the watermark initialized to
// initialHere, the index of the first free user cell.
func NewSpace(capacity int, initialHere Cell) *Space {
	s := &Space{cells: make([]Cell, capacity)}
	s.cells[0] = initialHere
	return s
}

// Cap returns the declared capacity of the space.
func (s *Space) Cap() int { return len(s.cells) }

// Here returns the watermark: the index of the next free cell.
func (s *Space) Here() Cell { return s.cells[0] }

// SetHere overwrites the watermark directly; used by the relocator and
// by container loading, which install an already-known extent.
func (s *Space) SetHere(v Cell) { s.cells[0] = v }

// inBounds reports whether i addresses an allocated cell.
func (s *Space) inBounds(i Cell) bool {
	return i >= 0 && int(i) < len(s.cells)
}

// Read returns the cell at i, or ok=false if i is out of bounds.
func (s *Space) Read(i Cell) (Cell, bool) {
	if !s.inBounds(i) {
		return 0, false
	}
	return s.cells[i], true
}

// Write stores v at i, returning false (and leaving the space
// untouched) if i is out of bounds.
func (s *Space) Write(i Cell, v Cell) bool {
	if !s.inBounds(i) {
		return false
	}
	s.cells[i] = v
	return true
}

// Append writes v at the watermark and advances it, a no-op (returning
// false) when the space is already full.
func (s *Space) Append(v Cell) bool {
	here := s.Here()
	if !s.inBounds(here) {
		return false
	}
	s.cells[here] = v
	s.SetHere(here + 1)
	return true
}

const wordBytesPerCell = 4

// cellsForBytes returns the number of cells needed to hold n bytes plus
// a NUL terminator, i.e. ceil((n+1)/4).
func cellsForBytes(n int) int {
	return (n + 1 + wordBytesPerCell - 1) / wordBytesPerCell
}

// PutString packs s (truncated to maxLen bytes) into the space starting
// at base: a length cell followed by NUL-terminated bytes packed four
// to a cell. Reports false if the write would run out of bounds.
func (s *Space) PutString(base Cell, str string, maxLen int) bool {
	if len(str) > maxLen {
		str = str[:maxLen]
	}
	n := cellsForBytes(len(str))
	if !s.inBounds(base) || !s.inBounds(base + Cell(n)) {
		return false
	}
	if !s.Write(base, Cell(len(str))) {
		return false
	}
	buf := make([]byte, n*wordBytesPerCell)
	copy(buf, str)
	for i := 0; i < n; i++ {
		w := buf[i*wordBytesPerCell : (i+1)*wordBytesPerCell]
		cell := Cell(w[0]) | Cell(w[1])<<8 | Cell(w[2])<<16 | Cell(w[3])<<24
		if !s.Write(base+1+Cell(i), cell) {
			return false
		}
	}
	return true
}

// GetString reads the length cell at i, verifies that i+1+ceil(length/4)
// is still in bounds, and that the byte at offset length inside the
// payload is NUL, per §4.C.
func (s *Space) GetString(i Cell) (string, bool) {
	length, ok := s.Read(i)
	if !ok || length < 0 {
		return "", false
	}
	n := cellsForBytes(int(length))
	if !s.inBounds(i + 1 + Cell((int(length)+wordBytesPerCell-1)/wordBytesPerCell)) {
		return "", false
	}
	buf := make([]byte, n*wordBytesPerCell)
	for c := 0; c < n; c++ {
		cell, _ := s.Read(i + 1 + Cell(c))
		w := buf[c*wordBytesPerCell : (c+1)*wordBytesPerCell]
		w[0] = byte(cell)
		w[1] = byte(cell >> 8)
		w[2] = byte(cell >> 16)
		w[3] = byte(cell >> 24)
	}
	if buf[length] != 0 {
		return "", false
	}
	return string(buf[:length]), true
}
