// Command atomspace is a thin operator CLI over the core AtomSpace:
// seed a demo hypergraph, inspect stats, run one forward-chaining
// pass, and manage snapshot backups. It carries no reasoning of its
// own — every subcommand is a direct client of the core/atomspace,
// core/ure, and core/storage packages (spec §2: "the thin top-level
// CLI ... carries no interesting design").
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var snapshotPath string

var rootCmd = &cobra.Command{
	Use:   "atomspace",
	Short: "Operate a content-addressed hypergraph knowledge base",
	Long: `atomspace is an operator CLI for the AtomSpace cognitive substrate:
a content-addressed hypergraph with pattern matching, PLN/URE inference,
and ECAN attention dynamics.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "atomspace.snapshot.json", "path to the AtomSpace snapshot file")
	rootCmd.AddCommand(seedCmd, statsCmd, inferCmd, snapshotCmd)
}
