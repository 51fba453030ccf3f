package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/spf13/cobra"
)

var (
	runExpression bool
	runPrint      bool
)

// errFailed reports a failure that was already printed.
var errFailed = errors.New("evaluation failed")

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] FILE|EXPR...",
	Short: "Run lisp code",
	Long:  `Run lisp code provided supplied via the command line or a file.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		env := rt.NewEnv()
		for i, arg := range args {
			name, r, err := runSource(i, arg)
			if err != nil {
				return err
			}
			err = runEval(rt, env, name, r, runPrint, os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
		}
		return nil
	},
}

// runSource returns the i-th source named on the command line.
func runSource(i int, arg string) (string, io.Reader, error) {
	if runExpression {
		return fmt.Sprintf("expr%d", i+1), strings.NewReader(arg), nil
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return "", nil, err
	}
	return arg, bytes.NewReader(b), nil
}

// runEval evaluates each expression read from r.  Evaluation stops at the
// first error, which is written with its stack trace to stderr.
func runEval(rt *lisp.Runtime, env *lisp.LEnv, name string, r io.Reader, print bool, stdout, stderr io.Writer) error {
	exprs, err := rt.Reader.Read(name, r)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return errFailed
	}
	for _, expr := range exprs {
		stack := rt.NewCallStack()
		v, err := rt.EvalSyntax(expr, stack, env)
		if err != nil {
			fmt.Fprintln(stderr, err)
			if trace := lisp.ErrorStack(err); trace != nil {
				trace.DebugPrint(stderr)
			}
			return errFailed
		}
		if print {
			fmt.Fprintln(stdout, v)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here flags for the run command are defined
	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
}
