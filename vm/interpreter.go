package vm

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/lispbc/pkg/bytecode"
	"github.com/chazu/lispbc/value"
)

var log = commonlog.GetLogger("lispbc.vm")

// DefaultMaxCallDepth bounds call recursion for VMs built with NewVM.
const DefaultMaxCallDepth = 10000

// VM holds execution settings shared by the contexts it creates.
type VM struct {
	// MaxCallDepth bounds nested Call instructions. Zero means unbounded,
	// in which case deep recursion is limited only by the Go stack.
	MaxCallDepth int

	// Trace logs every instruction at debug level.
	Trace bool
}

// NewVM creates a VM with default settings.
func NewVM() *VM {
	return &VM{MaxCallDepth: DefaultMaxCallDepth}
}

// Run executes the sequence bound to entry against stack and heap, which
// are mutated in place.
func (vm *VM) Run(prog *bytecode.Program, entry string, stack *Stack, heap Heap) error {
	return vm.NewContext(prog, stack, heap).Run(entry)
}

// Run executes prog's entry sequence with a default VM.
func Run(prog *bytecode.Program, stack *Stack, heap Heap) error {
	return NewVM().Run(prog, bytecode.EntrySymbol, stack, heap)
}

// execute is the main execution loop for one sequence.
func (c *Context) execute(name string, seq []bytecode.Instruction) error {
	for ip, in := range seq {
		if c.vm.Trace {
			log.Debugf("[%s] %s/%04d %-30s depth=%d sp=%d", c.shortID(), name, ip, in, c.depth, c.Stack.Len())
		}

		if err := c.step(in); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) step(in bytecode.Instruction) error {
	switch in.Op {
	// ============ Stack and heap ============
	case bytecode.OpPushConst:
		c.Stack.Push(in.Const.Clone())

	case bytecode.OpPush, bytecode.OpLoad:
		c.Stack.Push(c.load(in.Symbol))

	case bytecode.OpPop:
		r, ok := c.Stack.Pop()
		if !ok {
			r = value.DefaultRecord()
		}
		c.Heap.Insert(in.Symbol, r)

	case bytecode.OpStoreConst:
		c.Heap.Insert(in.Symbol, in.Const.Clone())

	// ============ Calls ============
	case bytecode.OpCall:
		return c.call(in.Symbol)

	// ============ Arithmetic ============
	case bytecode.OpAdd:
		return c.arith(in.Op, func(a, b float64) float64 { return a + b })

	case bytecode.OpSub:
		return c.arith(in.Op, func(a, b float64) float64 { return a - b })

	case bytecode.OpMul:
		return c.arith(in.Op, func(a, b float64) float64 { return a * b })

	case bytecode.OpDiv:
		return c.arith(in.Op, func(a, b float64) float64 { return a / b })

	// ============ Comparison and logic ============
	case bytecode.OpLte:
		a, b, err := c.numbers(in.Op)
		if err != nil {
			return err
		}
		c.Stack.Push(value.Bools.EmbedRecord(a <= b))

	case bytecode.OpEqu:
		a, b, err := c.pop2(in.Op)
		if err != nil {
			return err
		}
		c.Stack.Push(value.Bools.EmbedRecord(a.Equal(b)))

	case bytecode.OpNot:
		r, ok := c.Stack.Pop()
		if !ok {
			return notEnoughArguments(in.Op)
		}
		x, err := value.Bools.ExtractRecord(r)
		if err != nil {
			return wrongArgumentType(in.Op, err)
		}
		c.Stack.Push(value.Bools.EmbedRecord(!x))

	default:
		return &RuntimeError{Op: in.Op, Err: errUnknownOpcode}
	}
	return nil
}

// load returns the heap record at sym, or the default record.
func (c *Context) load(sym string) value.Record {
	if r, ok := c.Heap.Get(sym); ok {
		return r
	}
	return value.DefaultRecord()
}

// pop2 pops a then b. a is the most recently pushed value.
func (c *Context) pop2(op bytecode.Opcode) (a, b value.Record, err error) {
	a, ok := c.Stack.Pop()
	if !ok {
		return a, b, notEnoughArguments(op)
	}
	b, ok = c.Stack.Pop()
	if !ok {
		return a, b, notEnoughArguments(op)
	}
	return a, b, nil
}

// numbers pops two operands and projects both to float64.
func (c *Context) numbers(op bytecode.Opcode) (a, b float64, err error) {
	ra, rb, err := c.pop2(op)
	if err != nil {
		return 0, 0, err
	}
	if a, err = value.Numbers.ExtractRecord(ra); err != nil {
		return 0, 0, wrongArgumentType(op, err)
	}
	if b, err = value.Numbers.ExtractRecord(rb); err != nil {
		return 0, 0, wrongArgumentType(op, err)
	}
	return a, b, nil
}

func (c *Context) arith(op bytecode.Opcode, f func(a, b float64) float64) error {
	a, b, err := c.numbers(op)
	if err != nil {
		return err
	}
	c.Stack.Push(value.Numbers.EmbedRecord(f(a, b)))
	return nil
}
