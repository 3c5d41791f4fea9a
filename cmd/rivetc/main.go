// Command rivetc drives the front end end to end: it lexes, parses,
// registers, resolves and checks every file given on the command line, then
// prints any diagnostics and exits non-zero if compilation failed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/checker"
	"github.com/rivet-lang/rivetc/lexer"
	"github.com/rivet-lang/rivetc/parser"
	"github.com/rivet-lang/rivetc/registrar"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/resolver"
	"github.com/rivet-lang/rivetc/sema"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("rivetc", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: rivetc [flags] <file.ri>...")
		fs.PrintDefaults()
	}
	warnAsErr := fs.BoolP("warn-as-error", "W", false, "treat warnings as errors")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	inputs := fs.Args()
	if len(inputs) == 0 {
		fs.Usage()
		return 2
	}

	warnings := 0
	h := report.NewHandler(report.SinkFunc(func(d report.Diagnostic) {
		if d.Severity == report.SeverityWarning {
			warnings++
		}
		printDiagnostic(d)
	}))
	ctx := sema.NewCompilerContext(sema.Prefs{Inputs: inputs})

	files, ok := parseInputs(ctx, h, inputs)
	if !ok || h.HasErrors() {
		return 1
	}

	reg := registrar.New(ctx, h)
	reg.Files(files)
	if h.HasErrors() {
		return 1
	}

	res := resolver.New(ctx, h, reg)
	res.Files(files)
	if h.HasErrors() {
		return 1
	}

	chk := checker.New(ctx, h)
	chk.Files(files)

	if h.HasErrors() {
		return 1
	}
	if *warnAsErr && warnings > 0 {
		return 1
	}
	return 0
}

// parseInputs lexes and parses every input path, in order; ok is false if
// any file could not be read.
func parseInputs(ctx *sema.CompilerContext, h *report.Handler, inputs []string) ([]*ast.SourceFile, bool) {
	files := make([]*ast.SourceFile, 0, len(inputs))
	ok := true
	for _, path := range inputs {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rivetc: %s: %v\n", path, err)
			ok = false
			continue
		}
		toks := lexer.Lex(h, path, src)
		files = append(files, parser.ParseFile(ctx, h, path, toks))
	}
	return files, ok
}

func printDiagnostic(d report.Diagnostic) {
	fmt.Fprintln(os.Stderr, d.Error())
}
