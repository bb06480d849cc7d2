// Command jsonata evaluates a JSONata expression against a JSON input.
//
//	jsonata [FLAGS] [OPTIONS] [<expr>] [<input>]
//
// The expression comes from the first positional argument or --expr-file;
// the input JSON from the second positional argument, --input-file, or
// stdin. Exit codes: 0 success, 1 I/O error, 2 parse error, 3 runtime
// error, 4 usage error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/johanventer/jsonata-go/pkg/evaluator"
	"github.com/johanventer/jsonata-go/pkg/parser"
	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

const version = "v0.1.0"

const (
	exitOK = iota
	exitIO
	exitParse
	exitRuntime
	exitUsage
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		showAST   bool
		exprFile  string
		inputFile string
		prettyOut bool
		showVer   bool
	)

	flags := flag.NewFlagSet("jsonata", flag.ContinueOnError)
	flags.BoolVar(&showAST, "a", false, "print the AST and exit")
	flags.BoolVar(&showAST, "ast", false, "print the AST and exit")
	flags.StringVar(&exprFile, "e", "", "read the expression from a file")
	flags.StringVar(&exprFile, "expr-file", "", "read the expression from a file")
	flags.StringVar(&inputFile, "i", "", "read the input JSON from a file (else stdin)")
	flags.StringVar(&inputFile, "input-file", "", "read the input JSON from a file (else stdin)")
	flags.BoolVar(&prettyOut, "p", false, "pretty-print the result")
	flags.BoolVar(&prettyOut, "pretty", false, "pretty-print the result")
	flags.BoolVar(&showVer, "V", false, "print the version and exit")
	flags.BoolVar(&showVer, "version", false, "print the version and exit")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: jsonata [FLAGS] [OPTIONS] [<expr>] [<input>]")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if showVer {
		fmt.Println("jsonata", version)
		return exitOK
	}

	args := flags.Args()

	src, argsUsed, err := readExpression(exprFile, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIO
	}
	if src == "" {
		flags.Usage()
		return exitUsage
	}

	expr, err := parser.Compile(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitParse
	}

	if showAST {
		fmt.Println(formatAST(expr.AST(), 0))
		return exitOK
	}

	inputJSON, err := readInput(inputFile, args[argsUsed:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIO
	}

	arena := value.NewArena()
	input := value.Undefined()
	if inputJSON != "" {
		if input, err = value.ParseJSON(arena, inputJSON); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitParse
		}
	}

	result, err := evaluator.New().Eval(context.Background(), expr, arena, input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}

	out, err := value.Serialize(result, prettyOut)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	fmt.Println(out)
	return exitOK
}

// readExpression resolves the expression source and reports how many
// positional arguments it consumed.
func readExpression(exprFile string, args []string) (string, int, error) {
	if exprFile != "" {
		data, err := os.ReadFile(exprFile)
		if err != nil {
			return "", 0, err
		}
		return strings.TrimSpace(string(data)), 0, nil
	}
	if len(args) > 0 {
		return args[0], 1, nil
	}
	return "", 0, nil
}

// readInput resolves the input JSON: positional argument, file, or stdin.
// An interactive stdin with no other source means no input at all.
func readInput(inputFile string, args []string) (string, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// formatAST renders the tree one node per line, children indented.
func formatAST(n *types.ASTNode, depth int) string {
	if n == nil {
		return ""
	}

	var sb strings.Builder
	indent := strings.Repeat("  ", depth)
	sb.WriteString(fmt.Sprintf("%s%s", indent, n.Type))
	switch n.Type {
	case types.NodeString, types.NodeName, types.NodeVariable, types.NodeBinary, types.NodeBind:
		sb.WriteString(fmt.Sprintf(" %q", n.StrValue))
	case types.NodeNumber:
		sb.WriteString(fmt.Sprintf(" %v", n.NumValue))
	case types.NodeBoolean:
		sb.WriteString(fmt.Sprintf(" %v", n.BoolValue))
	}
	sb.WriteString(fmt.Sprintf(" @ %d", n.Position))

	for _, child := range [][]*types.ASTNode{
		{n.LHS, n.RHS}, n.Steps, n.Arguments, n.Expressions,
	} {
		for _, c := range child {
			if c != nil {
				sb.WriteString("\n")
				sb.WriteString(formatAST(c, depth+1))
			}
		}
	}
	return sb.String()
}
