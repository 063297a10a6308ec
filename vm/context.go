package vm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/lispbc/pkg/bytecode"
)

// Context is the state of one execution: the program being run, its stack
// and heap, and the current call depth. Nothing in it is shared with other
// executions; run independent programs concurrently with separate
// contexts, stacks and heaps.
type Context struct {
	ID      string
	Program *bytecode.Program
	Stack   *Stack
	Heap    Heap

	vm    *VM
	depth int
}

// NewContext binds prog, stack and heap into an execution context. A nil
// stack or heap is replaced by an empty one.
func (vm *VM) NewContext(prog *bytecode.Program, stack *Stack, heap Heap) *Context {
	if stack == nil {
		stack = NewStack()
	}
	if heap == nil {
		heap = NewHeap()
	}
	return &Context{
		ID:      uuid.New().String(),
		Program: prog,
		Stack:   stack,
		Heap:    heap,
		vm:      vm,
	}
}

// Run executes the sequence bound to entry. Unlike an inner call, a
// missing outermost sequence is an error.
func (c *Context) Run(entry string) error {
	seq, ok := c.Program.Lookup(entry)
	if !ok {
		return fmt.Errorf("%w: %s", bytecode.ErrNoEntry, entry)
	}
	log.Debugf("[%s] run %s (%d instructions)", c.shortID(), entry, len(seq))
	return c.execute(entry, seq)
}

// Depth returns the current call depth; 0 while running the outermost
// sequence.
func (c *Context) Depth() int {
	return c.depth
}

// call runs the sequence bound to sym. An unbound symbol is a no-op.
func (c *Context) call(sym string) error {
	seq, ok := c.Program.Lookup(sym)
	if !ok {
		if c.vm.Trace {
			log.Debugf("[%s] call %s: unbound, skipped", c.shortID(), sym)
		}
		return nil
	}
	if c.vm.MaxCallDepth > 0 && c.depth >= c.vm.MaxCallDepth {
		return fmt.Errorf("%w: %d calls deep at %s", ErrCallDepth, c.depth, sym)
	}

	c.depth++
	defer func() { c.depth-- }()
	return c.execute(sym, seq)
}

func (c *Context) shortID() string {
	if len(c.ID) > 8 {
		return c.ID[:8]
	}
	return c.ID
}
