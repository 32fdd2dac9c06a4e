package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tsel/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tsel version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
