package vm

import (
	"errors"
	"testing"

	"github.com/chazu/lispbc/compiler"
	"github.com/chazu/lispbc/pkg/bytecode"
	"github.com/chazu/lispbc/value"
)

func num(f float64) value.Record {
	return value.Numbers.EmbedRecord(f)
}

// runSource compiles src with the prelude and runs it on a fresh stack and
// heap.
func runSource(t *testing.T, src string) (*Stack, *MapHeap, error) {
	t.Helper()
	prog, err := compiler.CompileSource(src)
	if err != nil {
		t.Fatalf("CompileSource(%q): %v", src, err)
	}
	prog, err = WithPrelude(prog)
	if err != nil {
		t.Fatalf("WithPrelude: %v", err)
	}
	stack, heap := NewStack(), NewHeap()
	err = NewVM().Run(prog, bytecode.EntrySymbol, stack, heap)
	return stack, heap, err
}

// runEntry runs a hand-built entry sequence.
func runEntry(stack *Stack, heap Heap, ins ...bytecode.Instruction) error {
	p := bytecode.NewProgram()
	p.Append(ins...)
	return NewVM().Run(p, bytecode.EntrySymbol, stack, heap)
}

func singleNumber(t *testing.T, s *Stack) float64 {
	t.Helper()
	if s.Len() != 1 {
		t.Fatalf("stack depth = %d, want 1: %v", s.Len(), s.Items())
	}
	top, _ := s.Peek()
	n, err := value.Numbers.ExtractRecord(top)
	if err != nil {
		t.Fatalf("top of stack is not a number: %v", err)
	}
	return n
}

func singleBool(t *testing.T, s *Stack) bool {
	t.Helper()
	if s.Len() != 1 {
		t.Fatalf("stack depth = %d, want 1: %v", s.Len(), s.Items())
	}
	top, _ := s.Peek()
	b, err := value.Bools.ExtractRecord(top)
	if err != nil {
		t.Fatalf("top of stack is not a bool: %v", err)
	}
	return b
}

// ============ End-to-end ============

func TestRunAddition(t *testing.T) {
	stack, _, err := runSource(t, "(+ 12 1)")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := singleNumber(t, stack); got != 13 {
		t.Errorf("(+ 12 1) = %v, want 13", got)
	}
}

func TestRunLteOperandOrder(t *testing.T) {
	// 3 is pushed first and popped second (b); 5 is popped first (a).
	// The result is a <= b, that is 5 <= 3.
	stack, _, err := runSource(t, "(<= 3 5)")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := singleBool(t, stack); got != false {
		t.Errorf("(<= 3 5) = %v, want false", got)
	}

	stack, _, err = runSource(t, "(<= 5 3)")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := singleBool(t, stack); got != true {
		t.Errorf("(<= 5 3) = %v, want true", got)
	}
}

func TestRunNonCommutativeOperandOrder(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"(- 10 3)", -7},
		{"(/ 2 10)", 5},
		{"(* 4 2.5)", 10},
		{"(+ (- 1 4) 2)", 5},
	}

	for _, tt := range tests {
		stack, _, err := runSource(t, tt.src)
		if err != nil {
			t.Fatalf("%s: %v", tt.src, err)
		}
		if got := singleNumber(t, stack); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestRunEquality(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"(= 1 1)", true},
		{"(= 1 2)", false},
		{`(= "a" "a")`, true},
		{`(= 1 "1")`, false},
		{"(= `(a b) `(a b))", true},
		{"(= 'c' 'c')", true},
	}

	for _, tt := range tests {
		stack, _, err := runSource(t, tt.src)
		if err != nil {
			t.Fatalf("%s: %v", tt.src, err)
		}
		if got := singleBool(t, stack); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestRunNot(t *testing.T) {
	stack := NewStack()
	if err := runEntry(stack, NewHeap(),
		bytecode.PushConst(value.RecordOf(value.Symbol("true"))),
		bytecode.Simple(bytecode.OpNot),
	); err != nil {
		t.Fatal(err)
	}
	top, _ := stack.Peek()
	if !value.Equal(top.Val, value.Symbol("false")) {
		t.Errorf("not true = %s, want false", top)
	}

	stack = NewStack()
	if err := runEntry(stack, NewHeap(),
		bytecode.PushConst(value.RecordOf(value.Symbol("false"))),
		bytecode.Simple(bytecode.OpNot),
	); err != nil {
		t.Fatal(err)
	}
	top, _ = stack.Peek()
	if !value.Equal(top.Val, value.Symbol("true")) {
		t.Errorf("not false = %s, want true", top)
	}
}

func TestRunNotOfComparison(t *testing.T) {
	stack, _, err := runSource(t, "(not (<= 3 5))")
	if err != nil {
		t.Fatal(err)
	}
	if got := singleBool(t, stack); got != true {
		t.Errorf("(not (<= 3 5)) = %v, want true", got)
	}
}

func TestRunQuotedValuesArePushedUnevaluated(t *testing.T) {
	stack, _, err := runSource(t, "`(+ 1 2)")
	if err != nil {
		t.Fatal(err)
	}
	top, _ := stack.Peek()
	want := value.List{value.Symbol("+"), value.Number(1), value.Number(2)}
	if stack.Len() != 1 || !value.Equal(top.Val, want) {
		t.Errorf("stack = %v, want [%s]", stack.Items(), value.Format(want))
	}
}

func TestRunMultipleTopLevelForms(t *testing.T) {
	stack, _, err := runSource(t, "(+ 1 2) (* 2 3)")
	if err != nil {
		t.Fatal(err)
	}
	items := stack.Items()
	if len(items) != 2 {
		t.Fatalf("stack = %v", items)
	}
	for i, want := range []float64{3, 6} {
		if n, _ := value.Numbers.ExtractRecord(items[i]); n != want {
			t.Errorf("item %d = %v, want %v", i, n, want)
		}
	}
}

// ============ Instruction semantics ============

func TestPushUndefinedYieldsDefault(t *testing.T) {
	for _, op := range []func(string) bytecode.Instruction{bytecode.Push, bytecode.Load} {
		stack := NewStack()
		if err := runEntry(stack, NewHeap(), op("nope")); err != nil {
			t.Fatal(err)
		}
		top, _ := stack.Peek()
		if !top.Equal(value.DefaultRecord()) {
			t.Errorf("push of unbound symbol = %s, want undefined", top)
		}
	}
}

func TestStoreConstThenPush(t *testing.T) {
	heap := NewHeap()
	stack := NewStack()
	if err := runEntry(stack, heap,
		bytecode.StoreConst(num(4), "x"),
		bytecode.Push("x"),
		bytecode.Load("x"),
	); err != nil {
		t.Fatal(err)
	}
	if stack.Len() != 2 {
		t.Fatalf("stack depth = %d, want 2", stack.Len())
	}
	for _, r := range stack.Items() {
		if n, _ := value.Numbers.ExtractRecord(r); n != 4 {
			t.Errorf("pushed %s, want 4", r)
		}
	}
}

func TestPopStoresTopOfStack(t *testing.T) {
	heap := NewHeap()
	stack := NewStack()
	if err := runEntry(stack, heap,
		bytecode.PushConst(num(9)),
		bytecode.Pop("x"),
	); err != nil {
		t.Fatal(err)
	}
	if stack.Len() != 0 {
		t.Errorf("stack depth = %d, want 0", stack.Len())
	}
	got, ok := heap.Get("x")
	if !ok || !got.Equal(num(9)) {
		t.Errorf("x = %v (%v), want 9", got, ok)
	}
}

func TestPopFromEmptyStackStoresDefault(t *testing.T) {
	heap := NewHeap()
	if err := runEntry(NewStack(), heap, bytecode.Pop("x")); err != nil {
		t.Fatalf("Pop on empty stack should not fail: %v", err)
	}
	got, ok := heap.Get("x")
	if !ok || !got.Equal(value.DefaultRecord()) {
		t.Errorf("x = %v, want undefined", got)
	}
}

func TestPopPreservesHeapProperties(t *testing.T) {
	heap := NewHeap()
	heap.Insert("x", num(1).WithProperty("doc", value.String("d")))
	if err := runEntry(NewStack(), heap, bytecode.PushConst(num(2)), bytecode.Pop("x")); err != nil {
		t.Fatal(err)
	}
	got, _ := heap.Get("x")
	if _, ok := got.Property("doc"); !ok {
		t.Error("Pop dropped existing property")
	}
	if n, _ := value.Numbers.ExtractRecord(got); n != 2 {
		t.Errorf("x = %v, want 2", n)
	}
}

func TestCallUndefinedIsNoOp(t *testing.T) {
	heap := NewHeap()
	heap.Insert("x", num(1))
	stack := NewStack(num(5))

	if err := runEntry(stack, heap, bytecode.Call("missing")); err != nil {
		t.Fatalf("Call of unbound symbol failed: %v", err)
	}
	if stack.Len() != 1 {
		t.Errorf("stack depth = %d, want 1", stack.Len())
	}
	if top, _ := stack.Peek(); !top.Equal(num(5)) {
		t.Errorf("top = %s, want 5", top)
	}
	if heap.Len() != 1 {
		t.Errorf("heap size = %d, want 1", heap.Len())
	}
}

func TestCallSharesStackWithCaller(t *testing.T) {
	p := bytecode.NewProgram()
	p.Define("two", []bytecode.Instruction{bytecode.PushConst(num(2))})
	p.Define("double", []bytecode.Instruction{bytecode.Call("two"), bytecode.Simple(bytecode.OpMul)})
	p.Append(bytecode.PushConst(num(21)), bytecode.Call("double"))

	stack := NewStack()
	if err := NewVM().Run(p, bytecode.EntrySymbol, stack, NewHeap()); err != nil {
		t.Fatal(err)
	}
	if got := singleNumber(t, stack); got != 42 {
		t.Errorf("result = %v, want 42", got)
	}
}

func TestRunNamedSequence(t *testing.T) {
	p := bytecode.NewProgram()
	p.Define("answer", []bytecode.Instruction{bytecode.PushConst(num(42))})
	stack := NewStack()
	if err := NewVM().Run(p, "answer", stack, NewHeap()); err != nil {
		t.Fatal(err)
	}
	if got := singleNumber(t, stack); got != 42 {
		t.Errorf("result = %v, want 42", got)
	}
}

// ============ Errors ============

func TestArithmeticOnEmptyStackFails(t *testing.T) {
	ops := []bytecode.Opcode{
		bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv,
		bytecode.OpLte, bytecode.OpEqu, bytecode.OpNot,
	}
	for _, op := range ops {
		stack := NewStack()
		err := runEntry(stack, NewHeap(), bytecode.Simple(op))
		if !errors.Is(err, ErrNotEnoughArguments) {
			t.Errorf("%s on empty stack: error = %v, want ErrNotEnoughArguments", op, err)
			continue
		}
		var rtErr *RuntimeError
		if !errors.As(err, &rtErr) || rtErr.Op != op {
			t.Errorf("%s: error does not name the operator: %v", op, err)
		}
		if stack.Len() != 0 {
			t.Errorf("%s: a default was substituted, stack = %v", op, stack.Items())
		}
	}
}

func TestBinaryOpWithOneOperandFails(t *testing.T) {
	err := runEntry(NewStack(num(1)), NewHeap(), bytecode.Simple(bytecode.OpAdd))
	if !errors.Is(err, ErrNotEnoughArguments) {
		t.Errorf("error = %v, want ErrNotEnoughArguments", err)
	}
}

func TestWrongArgumentType(t *testing.T) {
	tests := []struct {
		name  string
		stack []value.Record
		op    bytecode.Opcode
	}{
		{"add symbol", []value.Record{num(1), value.RecordOf(value.Symbol("x"))}, bytecode.OpAdd},
		{"sub string", []value.Record{value.Strings.EmbedRecord("s"), num(1)}, bytecode.OpSub},
		{"lte char", []value.Record{value.Chars.EmbedRecord('c'), num(1)}, bytecode.OpLte},
		{"not number", []value.Record{num(0)}, bytecode.OpNot},
		{"not other symbol", []value.Record{value.RecordOf(value.Symbol("maybe"))}, bytecode.OpNot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runEntry(NewStack(tt.stack...), NewHeap(), bytecode.Simple(tt.op))
			if !errors.Is(err, ErrWrongArgumentType) {
				t.Fatalf("error = %v, want ErrWrongArgumentType", err)
			}
			var convErr *value.ConversionError
			if !errors.As(err, &convErr) {
				t.Errorf("error does not carry the conversion error: %v", err)
			}
		})
	}
}

func TestErrorAbortsRemainingInstructions(t *testing.T) {
	heap := NewHeap()
	err := runEntry(NewStack(), heap,
		bytecode.Simple(bytecode.OpAdd),
		bytecode.StoreConst(num(1), "after"),
	)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := heap.Get("after"); ok {
		t.Error("instructions after the failure were executed")
	}
}

func TestUndefinedOperandsFailTypeCheck(t *testing.T) {
	_, _, err := runSource(t, "(+ x 1)")
	if !errors.Is(err, ErrWrongArgumentType) {
		t.Errorf("error = %v, want ErrWrongArgumentType", err)
	}
}

func TestMissingEntryFails(t *testing.T) {
	err := NewVM().Run(&bytecode.Program{}, bytecode.EntrySymbol, NewStack(), NewHeap())
	if !errors.Is(err, bytecode.ErrNoEntry) {
		t.Errorf("error = %v, want ErrNoEntry", err)
	}

	err = NewVM().Run(bytecode.NewProgram(), "main", NewStack(), NewHeap())
	if !errors.Is(err, bytecode.ErrNoEntry) {
		t.Errorf("error = %v, want ErrNoEntry for unbound outer symbol", err)
	}
}

func TestCallDepthIsBounded(t *testing.T) {
	p := bytecode.NewProgram()
	p.Define("loop", []bytecode.Instruction{bytecode.Call("loop")})
	p.Append(bytecode.Call("loop"))

	v := NewVM()
	v.MaxCallDepth = 50
	ctx := v.NewContext(p, nil, nil)
	err := ctx.Run(bytecode.EntrySymbol)
	if !errors.Is(err, ErrCallDepth) {
		t.Fatalf("error = %v, want ErrCallDepth", err)
	}
	if ctx.Depth() != 0 {
		t.Errorf("depth after unwinding = %d, want 0", ctx.Depth())
	}
}

func TestMutualRecursionWithinDepth(t *testing.T) {
	// A finite call chain three deep fits exactly within the bound.
	p := bytecode.NewProgram()
	p.Define("a3", []bytecode.Instruction{bytecode.PushConst(num(3))})
	p.Define("a2", []bytecode.Instruction{bytecode.Call("a3"), bytecode.PushConst(num(2)), bytecode.Simple(bytecode.OpAdd)})
	p.Define("a1", []bytecode.Instruction{bytecode.Call("a2"), bytecode.PushConst(num(1)), bytecode.Simple(bytecode.OpAdd)})
	p.Append(bytecode.Call("a1"))

	v := NewVM()
	v.MaxCallDepth = 3
	stack := NewStack()
	if err := v.Run(p, bytecode.EntrySymbol, stack, NewHeap()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := singleNumber(t, stack); got != 6 {
		t.Errorf("result = %v, want 6", got)
	}
}

func TestTraceDoesNotChangeResults(t *testing.T) {
	prog, _ := compiler.CompileSource("(+ 1 (* 2 3))")
	prog, _ = WithPrelude(prog)

	v := NewVM()
	v.Trace = true
	stack := NewStack()
	if err := v.Run(prog, bytecode.EntrySymbol, stack, NewHeap()); err != nil {
		t.Fatal(err)
	}
	if got := singleNumber(t, stack); got != 7 {
		t.Errorf("result = %v, want 7", got)
	}
}

func TestNewContextDefaults(t *testing.T) {
	ctx := NewVM().NewContext(bytecode.NewProgram(), nil, nil)
	if ctx.Stack == nil || ctx.Heap == nil {
		t.Fatal("nil stack or heap not replaced")
	}
	if ctx.ID == "" {
		t.Error("context has no id")
	}
	other := NewVM().NewContext(bytecode.NewProgram(), nil, nil)
	if ctx.ID == other.ID {
		t.Error("contexts share an id")
	}
}
