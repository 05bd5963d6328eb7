package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dannyswat/htmledit/internal/txn"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Print the structural operations between two documents",
	Long: `Print the operations that turn one HTML document into another as a JSON delta.

Examples:
  htmledit ops --old before.html --new after.html`,
	Args: cobra.NoArgs,
	RunE: runOps,
}

func init() {
	opsCmd.Flags().String("old", "", "original document (required)")
	opsCmd.Flags().String("new", "", "changed document (required)")
	_ = opsCmd.MarkFlagRequired("old")
	_ = opsCmd.MarkFlagRequired("new")
	rootCmd.AddCommand(opsCmd)
}

func runOps(cmd *cobra.Command, _ []string) error {
	oldPath, _ := cmd.Flags().GetString("old")
	newPath, _ := cmd.Flags().GetString("new")
	oldHTML, err := os.ReadFile(oldPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", oldPath, err)
	}
	newHTML, err := os.ReadFile(newPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", newPath, err)
	}
	delta, err := txn.DiffHTML(string(oldHTML), string(newHTML), cfg.Author)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(delta)
}
