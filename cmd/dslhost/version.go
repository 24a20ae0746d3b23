package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/dslhost"
	"github.com/aretw0/dslhost/api"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dslhost",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dslhost version %s (api %s)\n", strings.TrimSpace(dslhost.Version), api.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
