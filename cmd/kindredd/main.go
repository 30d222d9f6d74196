package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kindred-health/kindred/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kindredd",
		Short: "Kindred daemon and admin CLI",
		Long:  "Kindred daemon for running the API server and managing the knowledge base",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.KnowledgeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
