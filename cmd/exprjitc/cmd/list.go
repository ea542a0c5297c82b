package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in demo scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range demoScenarios {
			fmt.Printf("%-22s %s\n", s.Name, s.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
