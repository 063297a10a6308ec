package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lmorg/readline"

	"github.com/chazu/lispbc/pkg/bytecode"
	"github.com/chazu/lispbc/store"
	"github.com/chazu/lispbc/vm"
)

const replPrompt = "lispbc> "

// session is REPL state: the stack and heap persist across inputs.
type session struct {
	opts   *options
	stack  *vm.Stack
	heap   *vm.MapHeap
	disasm bool
}

func newSession(opts *options) (*session, error) {
	s := &session{
		opts:  opts,
		stack: vm.NewStack(),
		heap:  vm.NewHeap(),
	}

	// Files and globals from the manifest or command line run first.
	prog, err := opts.load("")
	if err != nil {
		return nil, err
	}
	if opts.heapPath != "" {
		st, err := store.Open(opts.heapPath)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		if err := st.LoadHeap(s.heap); err != nil {
			return nil, err
		}
	}
	if err := s.exec(prog, opts.entry); err != nil {
		return nil, err
	}
	return s, nil
}

func runREPL(opts *options) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}

	fmt.Println("lispbc REPL (type 'exit' to quit, ':help' for commands)")
	fmt.Println()

	rline := readline.NewInstance()
	rline.SetPrompt(replPrompt)
	rline.TabCompleter = s.complete
	for {
		line, err := rline.Readline()
		if err != nil {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if strings.HasPrefix(line, ":") {
			s.command(line)
			continue
		}
		s.eval(line)
	}

	fmt.Println()
	return s.save()
}

// command handles REPL meta-commands.
func (s *session) command(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Println("REPL Commands:")
		fmt.Println("  :help, :h, :?     Show this help")
		fmt.Println("  :stack            Show the stack")
		fmt.Println("  :clear            Empty the stack")
		fmt.Println("  :heap             Show heap bindings")
		fmt.Println("  :dis              Toggle disassembly of each input")
		fmt.Println("  :prelude          List operator bindings")
		fmt.Println("  exit, quit        Exit REPL")
	case ":stack":
		s.printStack()
	case ":clear":
		s.stack = vm.NewStack()
	case ":heap":
		for _, sym := range s.heap.Symbols() {
			r, _ := s.heap.Get(sym)
			fmt.Printf("%s = %s\n", sym, r)
		}
	case ":dis":
		s.disasm = !s.disasm
		fmt.Printf("Disassembly %s\n", map[bool]string{true: "on", false: "off"}[s.disasm])
	case ":prelude":
		fmt.Println(strings.Join(vm.PreludeSymbols(), " "))
	default:
		fmt.Printf("Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// eval compiles and runs one input against the session stack and heap.
func (s *session) eval(input string) {
	prog, err := s.opts.newCompiler().CompileSource(input)
	if err != nil {
		fmt.Printf("Compile error: %v\n", err)
		return
	}
	if s.disasm {
		fmt.Print(prog.Disassemble())
	}
	if err := s.exec(prog, bytecode.EntrySymbol); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	s.printStack()
}

// exec runs the sequence bound to entry. The configured entry applies to
// the files loaded at startup; each REPL input only has an entry sequence.
func (s *session) exec(prog *bytecode.Program, entry string) error {
	if s.opts.prelude {
		var err error
		if prog, err = vm.WithPrelude(prog); err != nil {
			return err
		}
	}
	return s.opts.newVM().Run(prog, entry, s.stack, s.heap)
}

func (s *session) printStack() {
	items := s.stack.Items()
	if len(items) == 0 {
		fmt.Println("(empty)")
		return
	}
	for i, r := range items {
		fmt.Printf("%d: %s\n", i, r)
	}
}

// save writes the heap back to the store, if one is configured.
func (s *session) save() error {
	if s.opts.heapPath == "" {
		return nil
	}
	st, err := store.Open(s.opts.heapPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SaveHeap(s.heap)
}

// complete suggests prelude and heap symbols for the word under the cursor.
func (s *session) complete(line []rune, pos int, dtx readline.DelayedTabContext) (string, []string, map[string]string, readline.TabDisplayType) {
	start := pos
	for start > 0 && !strings.ContainsRune("() \t`", line[start-1]) {
		start--
	}
	word := string(line[start:pos])

	var suggestions []string
	for _, sym := range s.symbols() {
		if strings.HasPrefix(sym, word) && sym != word {
			suggestions = append(suggestions, sym[len(word):])
		}
	}
	return word, suggestions, nil, readline.TabDisplayGrid
}

// symbols returns the known symbols, sorted and deduplicated.
func (s *session) symbols() []string {
	seen := make(map[string]bool)
	var out []string
	for _, sym := range append(vm.PreludeSymbols(), s.heap.Symbols()...) {
		if !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}
