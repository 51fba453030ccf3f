package cmd

import (
	"github.com/opsit-io/opsit-explang-core-sub000/repl"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run an interactive read-eval-print loop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		return repl.RunRepl(rt, &repl.Config{
			Prompt:       settings.REPL.Prompt,
			Continuation: settings.REPL.Continuation,
			HistoryFile:  settings.REPL.History,
		})
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
