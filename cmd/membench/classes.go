package main

import (
	"github.com/dustin/go-humanize"
	"github.com/memkit/memkit/alloc"
	"github.com/spf13/cobra"
)

var classesMax int

func init() {
	cmd := newClassesCmd()
	cmd.Flags().IntVar(&classesMax, "max", 8192, "Largest request size to probe")
	rootCmd.AddCommand(cmd)
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "Print the general-purpose allocator's size classes",
		Long: `The classes command probes GoodSize over a range of request sizes
and prints each distinct class with the request range it serves, which makes
internal fragmentation of a workload's size profile easy to eyeball.

Example:
  membench classes
  membench classes --max 65536 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
}

// SizeClass is one row of the probed table.
type SizeClass struct {
	From, To  int
	BlockSize int
	Waste     int // worst-case slack for the class, BlockSize - From
}

func runClasses() error {
	gp, err := alloc.NewGeneralPurpose()
	if err != nil {
		return err
	}
	defer gp.Release()

	var classes []SizeClass
	for n := 1; n <= classesMax; n++ {
		gs := gp.GoodSize(n)
		if len(classes) > 0 && classes[len(classes)-1].BlockSize == gs {
			classes[len(classes)-1].To = n
			continue
		}
		classes = append(classes, SizeClass{From: n, To: n, BlockSize: gs})
	}
	for i := range classes {
		classes[i].Waste = classes[i].BlockSize - classes[i].From
	}

	if jsonOut {
		return printJSON(classes)
	}
	printInfo("%10s  %10s  %10s  %s\n", "from", "to", "block", "worst waste")
	for _, c := range classes {
		printInfo("%10d  %10d  %10d  %s\n",
			c.From, c.To, c.BlockSize, humanize.IBytes(uint64(c.Waste)))
	}
	return nil
}
