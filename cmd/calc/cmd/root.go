// Package cmd implements the calc command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pengelbrecht/calc/internal/calculator"
	"github.com/pengelbrecht/calc/internal/config"
	"github.com/pengelbrecht/calc/internal/history"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Exit codes returned by Execute.
const (
	exitSuccess         = 0
	exitFailure         = 1
	exitUsage           = 2
	exitInvalidArgument = 3
)

var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "A small arithmetic calculator",
	Long: `calc evaluates add, subtract, multiply, divide and power.

Examples:
  calc add 2 3
  calc divide 10 4 --json
  calc eval 2 ^ 10
  calc run ops.txt
  calc repl`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	debug      bool
	noHistory  bool
)

// Loaded by setup before every command.
var (
	cfg    config.Config
	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $CALC_CONFIG or ~/.calc/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record evaluations")

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError{err}
	})
}

// usageError marks errors caused by invalid command line input.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

func exactArgs(n int) cobra.PositionalArgs {
	return func(c *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(c, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(c *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(c, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func setup(c *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	loaded, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(c.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.Path()
}

// historyStore returns the store next to the config file, or nil when
// recording is disabled.
func historyStore() (*history.Store, error) {
	if noHistory || !cfg.History.IsEnabled() {
		return nil, nil
	}
	path, err := historyFile()
	if err != nil {
		return nil, err
	}
	return history.NewStore(path, cfg.History.GetMaxEntries()), nil
}

// historyFile returns the history file, kept next to the config file.
func historyFile() (string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), config.DefaultHistoryFile), nil
}

func record(op calculator.Op, a, b, v float64, evalErr error) {
	recordAll([]history.Entry{history.NewEntry(op, a, b, v, evalErr)})
}

func recordAll(entries []history.Entry) {
	store, err := historyStore()
	if err != nil || store == nil {
		return
	}
	if err := store.AppendAll(entries); err != nil {
		logger.Warn("failed to record history", "error", err)
	}
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	resetFlags(rootCmd)
	rootCmd.SetArgs(protectNegatives(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return exitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var uerr usageError
	switch {
	case errors.As(err, &uerr), strings.HasPrefix(err.Error(), "unknown command"):
		return exitUsage
	case errors.Is(err, calculator.ErrInvalidArgument):
		return exitInvalidArgument
	default:
		return exitFailure
	}
}

// annotationNumeric marks commands whose operands may be negative numbers.
const annotationNumeric = "calc/numeric-args"

// protectNegatives inserts "--" before a numeric command's first operand when
// it is a negative number, so "calc subtract -4 2" is not parsed as a -4 flag.
// Later operands need no help because flag parsing stops at the first operand.
func protectNegatives(args []string) []string {
	c, _, err := rootCmd.Find(args)
	if err != nil || c.Annotations[annotationNumeric] == "" {
		return args
	}

	seenCmd := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return args
		case isNegativeNumber(arg):
			if !seenCmd {
				return args
			}
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")
			return append(out, args[i:]...)
		case strings.HasPrefix(arg, "-"):
			if takesValue(c, arg) {
				i++
			}
		case !seenCmd && (arg == c.Name() || c.HasAlias(arg)):
			seenCmd = true
		default:
			return args
		}
	}
	return args
}

func isNegativeNumber(s string) bool {
	if !strings.HasPrefix(s, "-") || strings.HasPrefix(s, "--") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// takesValue reports whether arg is a flag that consumes the next argument.
func takesValue(c *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	var f *pflag.Flag
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		if f = c.Flags().Lookup(name); f == nil {
			f = c.InheritedFlags().Lookup(name)
		}
	} else if len(arg) == 2 {
		if f = c.Flags().ShorthandLookup(arg[1:]); f == nil {
			f = c.InheritedFlags().ShorthandLookup(arg[1:])
		}
	}
	return f != nil && f.NoOptDefVal == ""
}

// resetFlags restores every flag to its default so Execute can run more than once.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
