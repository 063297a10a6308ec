// lispbc CLI - compiles s-expressions to bytecode and runs them
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/lispbc/manifest"
	"github.com/chazu/lispbc/pkg/bytecode"
	"github.com/chazu/lispbc/vm"
)

var log = commonlog.GetLogger("lispbc.cli")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	expr := flag.String("e", "", "Evaluate the given source text")
	disasm := flag.Bool("d", false, "Print disassembly instead of running")
	output := flag.String("o", "", "Write a compiled program image to this file instead of running")
	heapPath := flag.String("heap", "", "SQLite heap store: loaded before the run, saved after it")
	entry := flag.String("entry", bytecode.EntrySymbol, "Sequence to run")
	strict := flag.Bool("strict", false, "Reject call forms whose head is not a symbol")
	maxDepth := flag.Int("max-depth", vm.DefaultMaxCallDepth, "Maximum call depth (0 for unbounded)")
	noPrelude := flag.Bool("no-prelude", false, "Do not bind the operator symbols + - * / <= = not")
	trace := flag.Bool("trace", false, "Log every executed instruction")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lispbc [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles source files (or .lbc program images) and runs them,\n")
		fmt.Fprintf(os.Stderr, "printing the final stack bottom first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lispbc -e '(+ 12 1)'           # prints 13\n")
		fmt.Fprintf(os.Stderr, "  lispbc -d main.lisp            # show bytecode\n")
		fmt.Fprintf(os.Stderr, "  lispbc -o main.lbc main.lisp   # compile to an image\n")
		fmt.Fprintf(os.Stderr, "  lispbc -heap state.db main.lbc # run with a persistent heap\n")
		fmt.Fprintf(os.Stderr, "  lispbc -i                      # start REPL\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	if *trace {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	opts := defaultOptions()

	// Manifest values first; explicitly set flags override them.
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if m != nil {
		if err := opts.applyManifest(m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Infof("using manifest %s", m.Dir)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "heap":
			opts.heapPath = *heapPath
		case "entry":
			opts.entry = *entry
		case "strict":
			opts.strict = *strict
		case "max-depth":
			if *maxDepth < 0 {
				fmt.Fprintf(os.Stderr, "Error: -max-depth must not be negative\n")
				os.Exit(2)
			}
			opts.maxDepth = *maxDepth
		case "no-prelude":
			opts.prelude = !*noPrelude
		case "trace":
			opts.trace = *trace
		}
	})

	paths := flag.Args()
	if len(paths) > 0 {
		opts.files = paths
	}

	if *interactive || (len(opts.files) == 0 && *expr == "") {
		if err := runREPL(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	prog, err := opts.load(*expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *disasm:
		fmt.Print(prog.Disassemble())
	case *output != "":
		if err := writeImage(*output, prog); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote %s (%d instructions)\n", *output, prog.Len())
		}
	default:
		stack, err := opts.run(prog)
		if stack != nil {
			printStack(os.Stdout, stack)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
