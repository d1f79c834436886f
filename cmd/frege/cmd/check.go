package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/foundation/script"
)

var checkSource string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Parse a program without running it",
	Long: `Parses a program and prints the statements it translates to, one per
line with its source line. Nothing is executed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkSource, "eval", "e", "", "program source to check instead of a file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	source := script.DemoProgram
	switch {
	case checkSource != "":
		source = checkSource
	case len(args) == 1:
		var err error
		if source, err = readSource(args[0]); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	statements, err := newEngine(nil).Build(source)
	if err != nil {
		fmt.Fprintln(out, script.Describe(err))
		return errScriptFailed
	}

	for _, stmt := range statements {
		fmt.Fprintf(out, "%4d  %s\n", stmt.Line(), stmt.String())
	}
	fmt.Fprintf(out, "ok: %d statements\n", len(statements))
	return nil
}
