package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/containerd/console"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/EchoCog/atomspace/core/atomspace"
	"github.com/EchoCog/atomspace/core/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a per-type breakdown of the atoms in --snapshot",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	as := atomspace.New(nil)
	writer := storage.NewSnapshotWriter(snapshotPath)
	if err := writer.LoadInto(as); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	counts := make(map[atomspace.AtomType]int)
	for _, h := range as.AllHandles() {
		atom, ok := as.GetAtom(h)
		if !ok {
			continue
		}
		counts[atom.Type()]++
	}

	types := make([]atomspace.AtomType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Type", "Count"})
	if width := terminalWidth(); width > 0 {
		table.SetColWidth(width / 2)
	}
	for _, t := range types {
		table.Append([]string{t.String(), fmt.Sprintf("%d", counts[t])})
	}
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", as.Size())})
	table.Render()
	return nil
}

// terminalWidth reports the attached terminal's column width, or 0
// when stdout isn't a terminal (piped output, CI logs).
func terminalWidth() int {
	c, err := console.ConsoleFromFile(os.Stdout)
	if err != nil {
		return 0
	}
	size, err := c.Size()
	if err != nil {
		return 0
	}
	return int(size.Width)
}
