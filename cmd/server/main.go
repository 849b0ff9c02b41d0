// Package main is the entry point for the saga engine server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "saga-api",
	Short: "Saga engine server",
	Long:  `Saga API runs the tactical RPG engine: world simulation, grid combat, campaign runtime, and the narrative turn pipeline.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
