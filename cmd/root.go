package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/opsit-io/opsit-explang-core-sub000/internal/config"
	"github.com/opsit-io/opsit-explang-core-sub000/internal/logs"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib"
	"github.com/spf13/cobra"
)

var (
	configFiles []string
	logLevel    string
	logFile     string
	logJournal  bool
	missPolicy  string
	maxStack    int

	settings  *config.Config
	logger    *slog.Logger
	logCloser io.Closer = io.NopCloser(nil)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "explang",
	Short: "An embeddable lisp interpreter",
	Long: `explang evaluates lisp source files and expressions and runs an
interactive read-eval-print loop.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = loadSettings(cmd)
		if err != nil {
			return err
		}
		level, err := settings.LogLevel()
		if err != nil {
			return err
		}
		var closer io.Closer
		logger, closer, err = logs.New(logs.Options{
			Level:   level,
			File:    settings.Log.File,
			Journal: settings.Log.Journal,
		})
		if err != nil {
			return err
		}
		logCloser = closer
		logger.Debug("configured", "files", configFiles, "level", level)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logCloser.Close()
	},
}

// loadSettings reads the configuration files and applies the flags the user
// set explicitly.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(configFiles...)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		c.Log.File = logFile
	}
	if flags.Changed("log-journal") {
		c.Log.Journal = logJournal
	}
	if flags.Changed("miss-policy") {
		c.Interpreter.MissPolicy = missPolicy
	}
	if flags.Changed("max-stack") {
		c.Interpreter.MaxStackHeight = maxStack
	}
	return c, nil
}

// newRuntime returns a runtime with the standard library loaded, configured
// by the settings and flags.
func newRuntime(extra ...lisp.Config) (*lisp.Runtime, error) {
	opts, err := settings.RuntimeOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, lisp.WithLogger(logger), lisp.WithLibrary(lisplib.LoadLibrary))
	return lisp.NewRuntime(append(opts, extra...)...)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main().  It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringArrayVar(&configFiles, "config", nil,
		"Read settings from a CUE file (repeatable, earlier files take precedence)")
	flags.StringVar(&logLevel, "log-level", "warn",
		"Minimum level of log messages: debug, info, warn or error")
	flags.StringVar(&logFile, "log-file", "",
		"Append JSON log records to a file")
	flags.BoolVar(&logJournal, "log-journal", false,
		"Send log records to the systemd journal")
	flags.StringVar(&missPolicy, "miss-policy", "error",
		"Result of reading an unbound variable: error or nil")
	flags.IntVar(&maxStack, "max-stack", lisp.DefaultMaxHeight,
		"Maximum call stack height, 0 for no limit")
}
