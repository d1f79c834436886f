package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script"
	"github.com/msto63/frege/internal/history/store"
	"github.com/msto63/frege/internal/tui/repl"
	"github.com/msto63/frege/pkg/core/config"
	"github.com/msto63/frege/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logger    *flog.Logger
)

// errScriptFailed marks a run whose error was already reported
var errScriptFailed = errors.New("script failed")

var rootCmd = &cobra.Command{
	Use:   "frege",
	Short: "Frege - minimal scripting engine",
	Long: `Frege runs small programs made of assignments and print calls.

  x = 4 * 2;
  print(x);

Commands:
  run      - run a program file, an inline source or the demo program
  check    - parse a program and show its statements
  repl     - interactive session with persistent bindings
  serve    - playground server (WebSocket and HTTP)
  history  - list and prune recorded runs`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errScriptFailed) {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $FREGE_CONFIG or ./frege.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

// setup loads the configuration and installs the process logger
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		appConfig, err = config.Load(cfgFile)
	} else {
		appConfig, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	lc := logging.FromConfig("frege", appConfig)
	lc.Output = cmd.ErrOrStderr()
	if verbose {
		lc.Level = "debug"
	}
	logger = logging.NewLogger(lc)
	flog.SetDefault(logger)
	return nil
}

// newEngine creates an engine configured from appConfig. out, when set,
// receives printed lines as they are written.
func newEngine(out io.Writer) *script.Engine {
	return script.NewEngine(script.Options{
		Logger:          logger,
		MaxSourceLength: appConfig.Engine.MaxSourceLength,
		MaxResolveDepth: appConfig.Engine.ResolveDepth(),
		Output:          out,
	})
}

// openHistory opens the run history, or returns nil when it is disabled.
// Runs older than the configured retention are dropped on open.
func openHistory() (store.RunStore, error) {
	if !appConfig.HistoryEnabled() {
		return nil, nil
	}
	s, err := store.NewSQLiteRunStore(store.SQLiteRunConfig{Path: appConfig.History.Path})
	if err != nil {
		return nil, err
	}

	if retention := appConfig.History.Retention.Duration; retention > 0 {
		n, err := s.Prune(context.Background(), retention)
		if err != nil {
			logger.WarnWithErr("failed to prune run history", err)
		} else if n > 0 {
			logger.Debug("pruned run history", flog.Fields{"removed": n, "retention": retention.String()})
		}
	}
	return s, nil
}

// readSource returns the program text of path, "-" meaning stdin
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, repl.RenderError("Error: "+err.Error()))
}
