package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aviator-co/stackcore/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the stackcore version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.Version)
		return nil
	},
}
