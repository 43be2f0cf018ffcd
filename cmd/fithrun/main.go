// Command fithrun is the constrained-mode FITH host: it loads a
// container built by "fith -save-container" (or the equivalent
// cross-compiler) and executes it directly against package vm, with
// no outer import at all. A constrained-mode binary therefore carries
// no compiler and cannot mutate code space, the load-bearing guarantee
// behind §1's "constrained mode" split and the PLC deployment scenario
// original_source/plcsim.cc exists to simulate.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/phenidone/fith/hostio"
	"github.com/phenidone/fith/internal/logio"
	"github.com/phenidone/fith/internal/panicerr"
	"github.com/phenidone/fith/vm"
)

const (
	defaultTextSize = 16 * 1024
	defaultHeapSize = 4 * 1024
)

func main() {
	var (
		memLimit uint
		timeout  time.Duration
		trace    bool
	)
	flag.UintVar(&memLimit, "mem-limit", defaultHeapSize, "data-space capacity, in cells")
	flag.DurationVar(&timeout, "timeout", 0, "execution time limit")
	flag.BoolVar(&trace, "trace", false, "enable per-opcode trace logging")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: fithrun [flags] <container> [entry-name]")
		os.Exit(2)
	}
	path := args[0]
	var entryName string
	if len(args) > 1 {
		entryName = args[1]
	}

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	f, err := os.Open(path)
	if err != nil {
		log.Errorf("open %q: %v", path, err)
		return
	}
	defer f.Close()

	var opts []vm.Option
	opts = append(opts, vm.WithSysCalls(hostio.Null{}))
	if trace {
		opts = append(opts, vm.WithLogf(log.Leveledf("TRACE")))
	}

	loaded, err := hostio.Load(f, defaultTextSize, int(memLimit), opts...)
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
		log.Errorf("container carries no ENTRY segment and no entry name given")
		return
	}

	goctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		goctx, cancel = context.WithTimeout(goctx, timeout)
		defer cancel()
	}

	ctx := loaded.Interp.NewContext(entry)
	var state vm.State
	if perr := panicerr.Recover("fithrun-exec", func() error {
		state = ctx.Execute(goctx)
		return nil
	}); perr != nil {
		log.Errorf("%+v", perr)
		return
	}

	if state != vm.Success && state != vm.Halted {
		log.Errorf("exec failed: %v", state)
	}
}
