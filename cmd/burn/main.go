// Command burn is the thin, out-of-scope CLI shell around package vm (§6
// "External interfaces"). It owns flag parsing, file/`-`/REPL dispatch and
// exit codes; everything that actually runs a program is package vm.
//
// This repo has no lexer/parser (internal/ast is a parser boundary
// stand-in, SPEC_FULL.md's carried-forward Non-goal): source text handed
// to burn on the command line or typed into the REPL is turned into an
// ast.Root by parseSource below, which is the one seam an embedding front
// end is expected to replace. Left as a named, documented stub rather than
// a silent TODO so the boundary is visible instead of surprising.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/trace"
	"github.com/rainbow-alex/burn/internal/value"
	"github.com/rainbow-alex/burn/internal/vm"
)

const usage = `usage: burn [options...] <file> [args...]

  <file> is a source path, or - for standard input; with no file, burn
  launches a REPL.

options:
  -d, --debug    enable verbose runtime tracing
  -q, --quiet    suppress source-fragment echo in error messages
  -h, --help     print this message
`

// errNoParser is returned by parseSource: this build has no front end, so
// any real source text fails to load. It exists so the CLI dispatch, exit
// codes and REPL loop below are exercised end to end even though nothing
// in this repo can turn text into an ast.Root.
var errNoParser = errors.New("burn: no source parser is linked into this build")

// parseSource turns source text from name (a file path or "<stdin>"/"<repl>")
// into an ast.Root. See the package doc: this is the parser-boundary stub.
func parseSource(name, src string) (*ast.Root, error) {
	if strings.TrimSpace(src) == "" {
		return &ast.Root{}, nil
	}
	return nil, fmt.Errorf("%s: %w", name, errNoParser)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("burn", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	var debug, quiet, help bool
	fs.BoolVar(&debug, "d", false, "")
	fs.BoolVar(&debug, "debug", false, "")
	fs.BoolVar(&quiet, "q", false, "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&help, "h", false, "")
	fs.BoolVar(&help, "help", false, "")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if help {
		fmt.Print(usage)
		return 0
	}

	rest := fs.Args()

	opts := vm.Options{
		Quiet: quiet,
	}
	if debug {
		opts.Tracer = trace.New(os.Stderr)
	}

	loader := func(path string) (*ast.Root, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parseSource(path, string(data))
	}

	var uncaught bool
	opts.UncaughtHandlers = append(opts.UncaughtHandlers, func(thrown value.Value) {
		uncaught = true
		fmt.Fprintln(os.Stderr, "uncaught:", thrown.ToString())
	})

	engine := vm.New(opts, loader)

	if len(rest) == 0 {
		return runRepl(engine, opts)
	}
	return runFile(engine, rest[0])
}

// runFile loads and runs a single source file (or standard input, for
// path "-") as one root frame (§6 "Command-line").
func runFile(engine *vm.VM, path string) int {
	var src string
	var name string
	if path == "-" {
		data, err := readAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "burn:", err)
			return 1
		}
		src, name = data, "<stdin>"
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "burn:", err)
			return 1
		}
		src, name = string(data), path
	}

	root, err := parseSource(name, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "burn:", err)
		return 1
	}

	fb, errs := engine.Eval(root)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "burn:", e)
		}
		return 1
	}
	if fb.HasThrown {
		return 2
	}
	return 0
}

func readAll(f *os.File) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	return sb.String(), scanner.Err()
}

// runRepl accumulates input until a blank line, then compiles and runs it
// as one entry against a persistent vm.ReplSession, so declared top-level
// variables survive across entries (§6 "REPL").
func runRepl(engine *vm.VM, opts vm.Options) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if opts.ReplHistory != "" {
		if f, err := os.Open(opts.ReplHistory); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	session := vm.NewReplSession(engine)

	for {
		entry, err := readReplEntry(line)
		if err != nil {
			if opts.ReplHistory != "" {
				if f, err := os.Create(opts.ReplHistory); err == nil {
					line.WriteHistory(f)
					f.Close()
				}
			}
			return 0
		}
		if strings.TrimSpace(entry) == "" {
			continue
		}
		line.AppendHistory(entry)

		root, err := parseSource("<repl>", entry)
		if err != nil {
			fmt.Fprintln(os.Stderr, "burn:", err)
			continue
		}

		fb, errs := session.Eval(root)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, "burn:", e)
			}
			continue
		}
		if fb.HasThrown {
			fmt.Fprintln(os.Stderr, "uncaught:", fb.Thrown.ToString())
		}
	}
}

// readReplEntry reads lines from line until a blank one terminates the
// entry, or returns an error once the user sends EOF (Ctrl-D) with no
// partial entry pending.
func readReplEntry(line *liner.State) (string, error) {
	var sb strings.Builder
	first := true
	for {
		prompt := "... "
		if first {
			prompt = ">>> "
		}
		text, err := line.Prompt(prompt)
		if err != nil {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return sb.String(), nil
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
		first = false
	}
}
