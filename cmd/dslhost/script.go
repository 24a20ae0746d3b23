package main

import (
	"fmt"
	"os"

	"github.com/aretw0/dslhost/internal/presentation/tui"
	"github.com/aretw0/dslhost/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the script served on /get-initial-data",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		data := domain.NewInitialData()

		if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(cmd.OutOrStdout(), data.Script)
			return nil
		}

		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(tui.ScriptMarkdown(data.Script))
		if err != nil {
			return fmt.Errorf("failed to render script: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	scriptCmd.Flags().Bool("raw", false, "Print the bare script without markdown rendering")
}
