package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/foundation/script"
	"github.com/msto63/frege/internal/history/store"
	"github.com/msto63/frege/internal/playground/server"
	"github.com/msto63/frege/internal/watch"
	corerpc "github.com/msto63/frege/pkg/core/grpc"
)

var (
	runSource    string
	runWatch     bool
	runNoHistory bool
	runRemote    string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a program",
	Long: `Runs a program and prints one line per printed argument.

Without a file or -e the demo program is run.
Build errors are reported with an "Error: " prefix, runtime errors as they
are. A failed run exits with status 1.

Examples:
  frege run                      # demo program, prints 8
  frege run main.frege
  frege run -e 'print(4 + "a");'
  frege run --watch main.frege   # rerun on every save
  frege run --remote localhost:8421 main.frege`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runSource, "eval", "e", "", "program source to run instead of a file")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "rerun the file whenever it changes")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run")
	runCmd.Flags().StringVar(&runRemote, "remote", "", "run on the playground gRPC service at host:port")
}

func runProgram(cmd *cobra.Command, args []string) error {
	if runSource != "" && len(args) > 0 {
		return errors.New("use either a file or -e, not both")
	}
	if runWatch && len(args) == 0 {
		return errors.New("--watch needs a file")
	}
	if runWatch && runRemote != "" {
		return errors.New("--watch and --remote cannot be combined")
	}

	if runRemote != "" {
		source, err := programSource(args)
		if err != nil {
			return err
		}
		return executeRemote(cmd.Context(), cmd.OutOrStdout(), runRemote, source)
	}

	var history store.RunStore
	if !runNoHistory {
		var err error
		history, err = openHistory()
		if err != nil {
			logger.WarnWithErr("run history unavailable", err)
			history = nil
		}
	}
	if history != nil {
		defer history.Close()
	}

	out := cmd.OutOrStdout()
	engine := newEngine(out)

	if runWatch {
		return watchProgram(cmd.Context(), engine, history, out, args[0])
	}

	source, err := programSource(args)
	if err != nil {
		return err
	}
	return execute(cmd.Context(), engine, history, store.OriginCLI, out, source)
}

// programSource picks -e, the file argument or the demo program
func programSource(args []string) (string, error) {
	switch {
	case runSource != "":
		return runSource, nil
	case len(args) == 1:
		return readSource(args[0])
	default:
		return script.DemoProgram, nil
	}
}

// executeRemote runs source on a playground over gRPC. The playground
// records the run in its own history.
func executeRemote(ctx context.Context, out io.Writer, target, source string) error {
	conn, err := corerpc.Dial(corerpc.DefaultClientConfig(target), logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := server.RemoteRun(ctx, conn, source)
	if err != nil {
		return err
	}
	for _, line := range result.Output {
		fmt.Fprintln(out, line)
	}
	if result.Type == server.TypeError {
		fmt.Fprintln(out, result.Message)
		return errScriptFailed
	}
	return nil
}

// execute runs source once. Printed lines reach out through the engine;
// a failure is reported after them and turned into errScriptFailed.
func execute(ctx context.Context, engine *script.Engine, history store.RunStore, origin store.Origin, out io.Writer, source string) error {
	result, err := engine.Run(ctx, source)

	if history != nil {
		if recErr := history.Record(context.Background(), store.NewRunRecord(origin, source, result, err)); recErr != nil {
			logger.WarnWithErr("failed to record run", recErr)
		}
	}

	if err != nil {
		fmt.Fprintln(out, script.Describe(err))
		return errScriptFailed
	}
	return nil
}

func watchProgram(ctx context.Context, engine *script.Engine, history store.RunStore, out io.Writer, path string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(path, watch.Options{Logger: logger})
	if err != nil {
		return err
	}

	rerun := func() {
		source, err := readSource(w.Path())
		if err != nil {
			printError(out, err)
			return
		}
		// Failures are already printed; watching goes on
		_ = execute(ctx, engine, history, store.OriginWatch, out, source)
	}

	fmt.Fprintf(out, "watching %s (ctrl+c to stop)\n", w.Path())
	rerun()
	return w.Run(ctx, func() {
		fmt.Fprintf(out, "--- %s changed\n", w.Path())
		rerun()
	})
}
