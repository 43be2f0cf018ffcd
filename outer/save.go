package outer

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/phenidone/fith/container"
	"github.com/phenidone/fith/vm"
)

// Save writes the legacy sidecar triple under prefix: "<prefix>.map" (ASCII
// hex-address/name lines), "<prefix>.bin" (the code image up to HERE_CODE),
// and "<prefix>.dat" (the data image up to HERE_DATA), in that order. The
// first open/write error is reported through o.printf and ends SAVE, so the
// files after it are not written, transcribing
// original_source/fithi.cc's mw_save() (§4.F "SAVE").
func (o *Interpreter) Save(prefix string) {
	here := o.VM.Text.Here()
	if here < 0 || int(here) > o.VM.Text.Cap() {
		o.printf("invalid HERE_CODE in SAVE\n")
		return
	}
	heapHere := o.VM.Heap.Here()
	if heapHere < 0 || int(heapHere) > o.VM.Heap.Cap() {
		o.printf("invalid HERE_DATA in SAVE\n")
		return
	}

	if err := o.saveMap(prefix + ".map"); err != nil {
		o.printf("%v\n", err)
		return
	}
	if err := o.saveImage(prefix+".bin", o.VM.Text, here); err != nil {
		o.printf("%v\n", err)
		return
	}
	if err := o.saveImage(prefix+".dat", o.VM.Heap, heapHere); err != nil {
		o.printf("%v\n", err)
		return
	}

	o.printf("SAVE success\n")
}

// saveMap writes one "%08x name" line per non-machine, non-hidden
// dictionary entry, sorted by address for reproducible output (the original
// iterates std::map's sorted-by-name order instead; sorting by address here
// makes the file double as a disassembly aid, and GC's reverse lookup needs
// no particular order so this doesn't change any observable semantics).
func (o *Interpreter) saveMap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open(%q) failed: %w", path, err)
	}
	defer f.Close()

	type entry struct {
		addr vm.Cell
		name string
	}
	var entries []entry
	for name, v := range o.Dict {
		if v&(vm.FlagMachine|vm.FlagHide) == 0 {
			entries = append(entries, entry{v, name})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].addr < entries[j].addr })

	for _, e := range entries {
		if _, err := fmt.Fprintf(f, "%08x %s\n", uint32(e.addr), e.name); err != nil {
			return fmt.Errorf("write(%q) failed: %w", path, err)
		}
	}
	return nil
}

// saveImage writes the first n cells of sp as big-endian 32-bit words.
func (o *Interpreter) saveImage(path string, sp *vm.Space, n vm.Cell) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open(%q) failed: %w", path, err)
	}
	defer f.Close()

	w := make([]byte, 4*int(n))
	for i := vm.Cell(0); i < n; i++ {
		c, _ := sp.Read(i)
		binary.BigEndian.PutUint32(w[4*i:], uint32(c))
	}
	if _, err := f.Write(w); err != nil {
		return fmt.Errorf("write(%q) failed: %w", path, err)
	}
	return nil
}

func (o *Interpreter) opSave(ctx *vm.Context) {
	o.Save("fith")
}

// SaveContainer persists the current code image, data image, entry address,
// and symbol map as a single segmented container (§4.B), the richer
// full-mode alternative to the legacy sidecar triple.
func (o *Interpreter) SaveContainer(w io.Writer, binver, iover uint32, entry vm.Cell) error {
	here := o.VM.Text.Here()
	heapHere := o.VM.Heap.Here()

	// TEXT/DATA segment payloads carry content past the reserved watermark
	// cell; hostio.Loaded reconstructs HERE_CODE/HERE_DATA as len+1 on load.
	textCells := make([]int32, 0, here-1)
	for i := vm.Cell(1); i < here; i++ {
		c, _ := o.VM.Text.Read(i)
		textCells = append(textCells, int32(c))
	}
	dataCells := make([]int32, 0, heapHere-1)
	for i := vm.Cell(1); i < heapHere; i++ {
		c, _ := o.VM.Heap.Read(i)
		dataCells = append(dataCells, int32(c))
	}

	var mapText []byte
	type entry2 struct {
		addr vm.Cell
		name string
	}
	var entries []entry2
	for name, v := range o.Dict {
		if v&(vm.FlagMachine|vm.FlagHide) == 0 {
			entries = append(entries, entry2{v, name})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].addr < entries[j].addr })
	for _, e := range entries {
		mapText = append(mapText, []byte(fmt.Sprintf("%08x %s\n", uint32(e.addr), e.name))...)
	}

	cw, err := container.NewWriter(w, 5, binver, iover)
	if err != nil {
		return err
	}
	if err := cw.WriteText(textCells); err != nil {
		return err
	}
	if err := cw.WriteData(dataCells); err != nil {
		return err
	}
	if err := cw.WriteEntry(int32(entry)); err != nil {
		return err
	}
	if err := cw.WriteMap(string(mapText)); err != nil {
		return err
	}
	return cw.WriteCRC()
}
