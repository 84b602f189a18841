// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package complexity

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// goFunctions measures every function declaration and function literal in
// a Go source file. Literals are reported on their own and do not add to
// the complexity of the function that contains them.
func goFunctions(path string, src []byte) ([]FunctionMetrics, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(src), "\n")

	var out []FunctionMetrics
	ast.Inspect(file, func(n ast.Node) bool {
		switch fn := n.(type) {
		case *ast.FuncDecl:
			if fn.Body != nil {
				out = append(out, measureGo(fset, lines, goFuncName(fn), fn.Type, fn.Body))
			}
		case *ast.FuncLit:
			start := fset.Position(fn.Pos()).Line
			out = append(out, measureGo(fset, lines, fmt.Sprintf("func@%d", start), fn.Type, fn.Body))
		}
		return true
	})
	return out, nil
}

func measureGo(fset *token.FileSet, lines []string, name string, typ *ast.FuncType, body *ast.BlockStmt) FunctionMetrics {
	start := fset.Position(typ.Pos()).Line
	end := fset.Position(body.End()).Line

	counter := &goCounter{ccn: 1}
	for _, stmt := range body.List {
		ast.Walk(goWalker{c: counter}, stmt)
	}

	return FunctionMetrics{
		Name:       name,
		StartLine:  start,
		EndLine:    end,
		NLOC:       codeLines(lines, start, end),
		CCN:        counter.ccn,
		MaxNesting: counter.maxNesting,
		Parameters: countParams(typ.Params),
	}
}

type goCounter struct {
	ccn        int
	maxNesting int
}

type goWalker struct {
	c     *goCounter
	depth int
}

func (w goWalker) nested() goWalker {
	inner := goWalker{c: w.c, depth: w.depth + 1}
	if inner.depth > w.c.maxNesting {
		w.c.maxNesting = inner.depth
	}
	return inner
}

func (w goWalker) Visit(n ast.Node) ast.Visitor {
	switch n := n.(type) {
	case *ast.FuncLit:
		return nil
	case *ast.IfStmt:
		w.c.ccn++
		inner := w.nested()
		if n.Init != nil {
			ast.Walk(inner, n.Init)
		}
		ast.Walk(inner, n.Cond)
		ast.Walk(inner, n.Body)
		// else if continues the chain at the same level
		if elif, ok := n.Else.(*ast.IfStmt); ok {
			ast.Walk(w, elif)
		} else if n.Else != nil {
			ast.Walk(inner, n.Else)
		}
		return nil
	case *ast.ForStmt, *ast.RangeStmt:
		w.c.ccn++
		return w.nested()
	case *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
		return w.nested()
	case *ast.CaseClause:
		if n.List != nil {
			w.c.ccn++
		}
	case *ast.CommClause:
		if n.Comm != nil {
			w.c.ccn++
		}
	case *ast.BinaryExpr:
		if n.Op == token.LAND || n.Op == token.LOR {
			w.c.ccn++
		}
	}
	return w
}

func goFuncName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	return receiverName(fn.Recv.List[0].Type) + "." + fn.Name.Name
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return "?"
	}
}

func countParams(fl *ast.FieldList) int {
	if fl == nil {
		return 0
	}
	total := 0
	for _, f := range fl.List {
		if len(f.Names) == 0 {
			total++
		} else {
			total += len(f.Names)
		}
	}
	return total
}
