// Command fith is the full-mode FITH host: an interactive compiler/REPL,
// container writer, and relocator driver. It is the desktop analogue of
// original_source/main.cc with original_source/interp/fithi.cc's FULLFITH
// path enabled, restructured around package outer and package vm per
// SPEC_FULL.md §1.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/phenidone/fith/hostio"
	"github.com/phenidone/fith/internal/flushio"
	"github.com/phenidone/fith/internal/logio"
	"github.com/phenidone/fith/internal/panicerr"
	"github.com/phenidone/fith/outer"
	"github.com/phenidone/fith/vm"
)

const (
	defaultTextSize = 16 * 1024
	defaultHeapSize = 4 * 1024
)

func main() {
	var (
		loadPath      string
		entryName     string
		memLimit      uint
		timeout       time.Duration
		trace         bool
		dump          bool
		savePrefix    string
		saveContainer string
		interactive   bool
		binver        uint
		iover         uint
	)
	flag.StringVar(&loadPath, "r", "", "load a container and run instead of bootstrapping")
	flag.StringVar(&entryName, "entry", "", "entry word name (with -r); defaults to the container's ENTRY segment")
	flag.UintVar(&memLimit, "mem-limit", defaultHeapSize, "data-space capacity, in cells")
	flag.DurationVar(&timeout, "timeout", 0, "execution time limit")
	flag.BoolVar(&trace, "trace", false, "enable per-opcode trace logging")
	flag.BoolVar(&dump, "dump", false, "print a code-space disassembly after execution")
	flag.StringVar(&savePrefix, "save", "", "force a legacy sidecar-triple SAVE under this prefix after execution")
	flag.StringVar(&saveContainer, "save-container", "", "write a segmented container to this path after execution")
	flag.BoolVar(&interactive, "interactive", false, "force the liner REPL even if stdin is not a TTY")
	flag.UintVar(&binver, "binver", 1, "binary (instruction-set) version to write into a saved container")
	flag.UintVar(&iover, "iover", 1, "I/O (syscall ABI) version to write into a saved container")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	out := flushio.NewWriteFlusher(os.Stdout)
	defer out.Flush()

	goctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		goctx, cancel = context.WithTimeout(goctx, timeout)
		defer cancel()
	}

	var opts []vm.Option
	opts = append(opts, hostio.WithDesktopSysCalls(os.Stdin, out))
	if trace {
		opts = append(opts, vm.WithLogf(log.Leveledf("TRACE")))
	}

	if loadPath != "" {
		runLoaded(goctx, &log, loadPath, entryName, int(memLimit), opts...)
		return
	}

	o := outer.New(defaultTextSize, int(memLimit), out, opts...)
	o.Bootstrap(true)

	if f, err := os.Open("bootstrap.5th"); err == nil {
		o.SetInput(f)
		ctx := o.VM.NewContext(o.Dict["QUIT"].Addr())
		state := runIsolated(&log, ctx, goctx)
		f.Close()
		log.Printf("TRACE", "bootstrap.5th: %v", state)
	} else {
		log.Printf("TRACE", "no bootstrap.5th: %v", err)
	}

	var input io.Reader = os.Stdin
	var li *linerInput
	if interactive || term.IsTerminal(int(os.Stdin.Fd())) {
		li = newLinerInput("fith> ")
		li.SetCompleter(func(prefix string) (matches []string) {
			for name := range o.Dict {
				if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
					matches = append(matches, name)
				}
			}
			return matches
		})
		defer li.Close()
		input = li
	}
	o.SetInput(input)

	entry := o.Dict["QUIT"].Addr()
	ctx := o.VM.NewContext(entry)
	state := runIsolated(&log, ctx, goctx)

	if dump {
		o.Dump(&logio.Writer{Logf: log.Leveledf("DUMP")})
	}
	if savePrefix != "" {
		o.Save(savePrefix)
	}
	if saveContainer != "" {
		if err := writeContainer(o, saveContainer, uint32(binver), uint32(iover), entry); err != nil {
			log.Errorf("save-container %q: %v", saveContainer, err)
		}
	}

	if state != vm.Success && state != vm.Halted {
		log.Errorf("exec failed: %v", state)
	}
}

func writeContainer(o *outer.Interpreter, path string, binver, iover uint32, entry vm.Cell) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create(%q) failed: %w", path, err)
	}
	defer f.Close()
	return o.SaveContainer(f, binver, iover, entry)
}

func runIsolated(log *logio.Logger, ctx *vm.Context, goctx context.Context) vm.State {
	var state vm.State
	if err := panicerr.Recover("fith-exec", func() error {
		state = ctx.Execute(goctx)
		return nil
	}); err != nil {
		log.Errorf("%+v", err)
	}
	return state
}

func runLoaded(goctx context.Context, log *logio.Logger, path, entryName string, heapSize int, opts ...vm.Option) {
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("open %q: %v", path, err)
		return
	}
	defer f.Close()

	loaded, err := hostio.Load(f, defaultTextSize, heapSize, opts...)
	if err != nil {
		log.Errorf("load %q: %v", path, err)
		return
	}

	entry := loaded.Entry
	if entryName != "" {
		addr, ok := loaded.Symbols[entryName]
		if !ok {
			log.Errorf("entry %q not found in symbol map", entryName)
			return
		}
		entry = addr
	} else if !loaded.HasEntry {
		log.Errorf("container carries no ENTRY segment and no -entry given")
		return
	}

	ctx := loaded.Interp.NewContext(entry)
	state := runIsolated(log, ctx, goctx)
	fmt.Fprintf(os.Stderr, "exec %v\n", state)
	if state != vm.Success {
		log.Errorf("exec failed: %v", state)
	}
}
