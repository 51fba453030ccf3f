package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/spf13/cobra"
)

var docGroup string

var docCmd = &cobra.Command{
	Use:   "doc [NAME...]",
	Short: "Show documentation of functions and special forms",
	Long: `Show the lambda list and documentation of the named functions and
special forms, or of every registered entry when no name is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		return writeDoc(os.Stdout, rt.Registry, docGroup, args)
	},
}

func writeDoc(w io.Writer, reg *lisp.Registry, group string, names []string) error {
	var entries []*lisp.Entry
	if len(names) == 0 {
		entries = reg.Entries(group)
	}
	for _, name := range names {
		e := reg.Lookup(name)
		if e == nil {
			return fmt.Errorf("no function or special form named %s", name)
		}
		entries = append(entries, e)
	}
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		kind := e.Kind.String()
		if e.Builtin {
			kind = "builtin " + kind
		}
		fmt.Fprintf(w, "%s %s\n  %s in group %s\n", e.Name, e.Spec, kind, e.Group)
		if e.Source != nil {
			fmt.Fprintf(w, "  defined at %v\n", e.Source)
		}
		if e.Doc != "" {
			fmt.Fprintf(w, "\n  %s\n", e.Doc)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.Flags().StringVarP(&docGroup, "group", "g", "",
		"Only list entries of a group, such as lang or math")
}
