// Command reactorlint statically flags a narrow, common reactor misuse:
// calling Signal.Set from inside a function literal passed to
// reactor.NewDerived/reactor.NewDerivedWithEquals, which the runtime
// itself catches dynamically via WriteInsideDerivedError (spec §4.1/§7)
// but only the first time the offending path actually executes. This
// scans source ahead of time so the mistake turns up at review time
// instead of at runtime.
//
// Deliberately stdlib-only (flag, go/parser, go/ast): a lint pass over
// one repo's source tree has no networking, configuration, or output
// surface that a third-party CLI framework would meaningfully improve —
// see DESIGN.md's entry for this command for the fuller justification.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: reactorlint [dir ...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	dirs := flag.Args()
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	fset := token.NewFileSet()
	findings := 0

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}

			file, perr := parser.ParseFile(fset, path, nil, 0)
			if perr != nil {
				return nil // best-effort: skip files that don't parse standalone
			}

			for _, f := range findWritesInsideDerived(fset, path, file) {
				fmt.Println(f)
				findings++
			}
			return nil
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "reactorlint:", err)
			os.Exit(1)
		}
	}

	if findings > 0 {
		os.Exit(1)
	}
}

// findWritesInsideDerived walks file for calls to reactor.NewDerived /
// reactor.NewDerivedWithEquals whose first argument is a function literal,
// and reports every .Set(...) method call written anywhere inside that
// literal's body, nested function literals included, whatever the
// receiver's type. Calls reached through other named functions are not
// seen (no call-graph analysis).
func findWritesInsideDerived(fset *token.FileSet, path string, file *ast.File) []string {
	var findings []string

	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		if !isDerivedConstructor(call.Fun) || len(call.Args) == 0 {
			return true
		}

		lit, ok := call.Args[0].(*ast.FuncLit)
		if !ok {
			return true
		}

		ast.Inspect(lit.Body, func(inner ast.Node) bool {
			innerCall, ok := inner.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := innerCall.Fun.(*ast.SelectorExpr)
			if ok && sel.Sel.Name == "Set" {
				pos := fset.Position(innerCall.Pos())
				findings = append(findings, fmt.Sprintf("%s:%d: Set call inside a derived's compute function", path, pos.Line))
			}
			return true
		})

		return true
	})

	return findings
}

func isDerivedConstructor(fun ast.Expr) bool {
	sel, ok := fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != "reactor" {
		return false
	}
	return sel.Sel.Name == "NewDerived" || sel.Sel.Name == "NewDerivedWithEquals"
}
