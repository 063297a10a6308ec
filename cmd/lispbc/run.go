package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/lispbc/compiler"
	"github.com/chazu/lispbc/manifest"
	"github.com/chazu/lispbc/pkg/bytecode"
	"github.com/chazu/lispbc/store"
	"github.com/chazu/lispbc/value"
	"github.com/chazu/lispbc/vm"
)

// options is the resolved configuration for one invocation.
type options struct {
	files    []string
	globals  map[string]value.Record
	heapPath string
	entry    string
	strict   bool
	maxDepth int
	prelude  bool
	trace    bool
}

func defaultOptions() *options {
	return &options{
		entry:    bytecode.EntrySymbol,
		maxDepth: vm.DefaultMaxCallDepth,
		prelude:  true,
	}
}

func (o *options) applyManifest(m *manifest.Manifest) error {
	globals, err := m.GlobalRecords()
	if err != nil {
		return err
	}
	o.globals = globals
	o.files = m.SourcePaths()
	o.heapPath = m.StorePath()
	o.entry = m.Source.Entry
	o.strict = m.VM.StrictCallHead
	if m.VM.MaxCallDepth != nil {
		o.maxDepth = *m.VM.MaxCallDepth
	}
	o.prelude = m.PreludeEnabled()
	o.trace = m.VM.Trace
	return nil
}

func (o *options) newCompiler() *compiler.Compiler {
	c := compiler.New()
	c.StrictCallHead = o.strict
	return c
}

func (o *options) newVM() *vm.VM {
	v := vm.NewVM()
	v.MaxCallDepth = o.maxDepth
	v.Trace = o.trace
	return v
}

// load builds one program from the manifest globals, the configured files
// and expr, in that order. The prelude is not included.
func (o *options) load(expr string) (*bytecode.Program, error) {
	prog := compiler.Globals(o.globals)

	for _, path := range o.files {
		p, err := loadFile(path, o.newCompiler())
		if err != nil {
			return nil, err
		}
		if err := prog.Merge(p); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if expr != "" {
		p, err := o.newCompiler().CompileSource(expr)
		if err != nil {
			return nil, err
		}
		if err := prog.Merge(p); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// loadFile reads a program image or compiles a source file.
func loadFile(path string, c *compiler.Compiler) (*bytecode.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if bytecode.IsImage(data) {
		p, err := bytecode.UnmarshalProgram(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Debugf("loaded image %s (%d instructions)", path, p.Len())
		return p, nil
	}
	p, err := c.CompileSource(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("compiled %s (%d instructions)", path, p.Len())
	return p, nil
}

func writeImage(path string, prog *bytecode.Program) error {
	data, err := bytecode.MarshalProgram(prog)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// run executes prog on a fresh stack. The heap is loaded from and saved
// to the heap store when one is configured. The stack is returned even
// when the run fails.
func (o *options) run(prog *bytecode.Program) (*vm.Stack, error) {
	if o.prelude {
		var err error
		if prog, err = vm.WithPrelude(prog); err != nil {
			return nil, err
		}
	}

	heap := vm.NewHeap()
	var st *store.Store
	if o.heapPath != "" {
		var err error
		if st, err = store.Open(o.heapPath); err != nil {
			return nil, err
		}
		defer st.Close()
		if err := st.LoadHeap(heap); err != nil {
			return nil, err
		}
	}

	stack := vm.NewStack()
	if err := o.newVM().Run(prog, o.entry, stack, heap); err != nil {
		return stack, err
	}

	if st != nil {
		if err := st.SaveHeap(heap); err != nil {
			return stack, err
		}
	}
	return stack, nil
}

// printStack writes the stack bottom first, one record per line.
func printStack(w io.Writer, stack *vm.Stack) {
	for _, r := range stack.Items() {
		fmt.Fprintln(w, r)
	}
}
