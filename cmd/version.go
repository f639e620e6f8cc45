package main

import (
	"github.com/spf13/cobra"
)

// set via -ldflags "-X main.version=..."
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lookup-cli version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
