package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msto63/frege/internal/tui/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive REPL",
	Long: `Starts an interactive session. Bindings persist across lines.

Commands:
  :vars     list bindings
  :reset    clear all bindings
  :help     show help
  :quit     leave

Keys:
  Up/Down   recall earlier lines
  Ctrl+L    clear the transcript
  Ctrl+C    quit`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		logger.WarnWithErr("run history unavailable", err)
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	return repl.Run(cmd.Context(), repl.Options{
		Logger:          logger,
		MaxSourceLength: appConfig.Engine.MaxSourceLength,
		MaxResolveDepth: appConfig.Engine.ResolveDepth(),
		History:         history,
	})
}
