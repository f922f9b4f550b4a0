package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/memkit/memkit/alloc"
	"github.com/spf13/cobra"
)

var (
	stressGoroutines int
	stressRounds     int
	stressSizes      []int
	stressAllocator  string
	stressSpan       int
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressGoroutines, "goroutines", "g", 8, "Concurrent workers")
	cmd.Flags().IntVarP(&stressRounds, "rounds", "r", 100000, "Allocations per worker")
	cmd.Flags().
		IntSliceVarP(&stressSizes, "sizes", "s", []int{8, 64, 512, 4096}, "Request sizes to cycle through")
	cmd.Flags().
		StringVarP(&stressAllocator, "allocator", "a", "general", "Allocator under test: general, shared, heap")
	cmd.Flags().
		IntVar(&stressSpan, "span", 256<<20, "Span size in bytes for the shared bump allocator")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Hammer an allocator from many goroutines",
		Long: `The stress command runs an allocate/free loop on every worker and
reports aggregate throughput.

Example:
  membench stress
  membench stress -a shared -g 16 -r 1000000
  membench stress -a general -s 8,100,5000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
}

// StressResult is the JSON shape of one stress run.
type StressResult struct {
	Allocator  string
	Goroutines int
	Rounds     int
	Sizes      []int
	Failed     int64
	Elapsed    time.Duration
	OpsPerSec  float64
	BytesMoved uint64
}

func runStress() error {
	a, cleanup, err := buildAllocator()
	if err != nil {
		return err
	}
	defer cleanup()

	for _, n := range stressSizes {
		if n < 1 {
			return fmt.Errorf("invalid request size %d", n)
		}
	}

	printVerbose("stressing %q with %d goroutines x %d rounds\n",
		stressAllocator, stressGoroutines, stressRounds)

	var (
		wg     sync.WaitGroup
		failed int64
		moved  uint64
		mu     sync.Mutex
	)

	start := time.Now()
	for g := 0; g < stressGoroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var localFailed int64
			var localMoved uint64
			for i := 0; i < stressRounds; i++ {
				n := stressSizes[(i+id)%len(stressSizes)]
				blk := a.Alloc(n)
				if blk == nil {
					localFailed++
					continue
				}
				blk[0] = byte(id)
				localMoved += uint64(n)
				a.Free(blk)
			}
			mu.Lock()
			failed += localFailed
			moved += localMoved
			mu.Unlock()
		}(g)
	}
	wg.Wait()
	elapsed := time.Since(start)

	totalOps := stressGoroutines * stressRounds
	res := StressResult{
		Allocator:  stressAllocator,
		Goroutines: stressGoroutines,
		Rounds:     stressRounds,
		Sizes:      stressSizes,
		Failed:     failed,
		Elapsed:    elapsed,
		OpsPerSec:  float64(totalOps) / elapsed.Seconds(),
		BytesMoved: moved,
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("allocator:   %s\n", res.Allocator)
	printInfo("workers:     %d x %d rounds\n", res.Goroutines, res.Rounds)
	printInfo("elapsed:     %s\n", res.Elapsed.Round(time.Millisecond))
	printInfo("throughput:  %s ops/s\n", humanize.CommafWithDigits(res.OpsPerSec, 0))
	printInfo("moved:       %s\n", humanize.IBytes(res.BytesMoved))
	if res.Failed > 0 {
		printInfo("failed:      %d (allocator exhausted)\n", res.Failed)
	}
	return nil
}

// buildAllocator maps the --allocator flag to a concrete instance plus its
// teardown.
func buildAllocator() (alloc.Allocator, func(), error) {
	switch stressAllocator {
	case "general":
		gp, err := alloc.NewGeneralPurpose()
		if err != nil {
			return nil, nil, err
		}
		return gp, func() { gp.Release() }, nil
	case "shared":
		sb, err := alloc.NewSharedBump(stressSpan)
		if err != nil {
			return nil, nil, err
		}
		// A bump span cannot reclaim individual frees, so a stress run
		// needs a span big enough for the whole burn.
		printVerbose("shared bump span: %s\n", humanize.IBytes(uint64(sb.Capacity())))
		return sb, func() { sb.Release() }, nil
	case "heap":
		return alloc.NewHeap(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown allocator %q (want general, shared or heap)", stressAllocator)
	}
}
