// Command pram-pqsort generates a random array, sorts a copy of it
// sequentially and another copy with the parallel quicksort, and reports
// both timings; it fails with an invariant violation if either result is
// not sorted.
package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"github.com/volodya-labs/pram"
)

var (
	size    int
	workers int

	rootCmd = &cobra.Command{
		Use:   "pram-pqsort",
		Short: "Benchmark sequential vs. parallel quicksort",
		Long: `pram-pqsort generates a random int16 array and sorts it once
sequentially and once with the parallel, blocking-queue-driven quicksort,
printing the elapsed time for each and asserting both results are sorted.`,
		SilenceUsage: true,
		RunE:         runPqsort,
	}
)

func init() {
	rootCmd.Flags().IntVar(&size, "size", 10000, "number of elements to sort")
	rootCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel quicksort worker count")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		switch err.(type) {
		case *pram.UsageError:
			os.Exit(1)
		case *pram.InvariantViolation:
			os.Exit(2)
		default:
			os.Exit(1)
		}
	}
}

func runPqsort(cmd *cobra.Command, args []string) error {
	if size <= 0 {
		return pram.NewUsageError("--size must be positive, got %d", size)
	}
	if workers <= 0 {
		return pram.NewUsageError("--workers must be positive, got %d", workers)
	}

	rng := pram.NewGenerator()
	base := make([]int16, size)
	for i := range base {
		base[i] = int16(rng.IntN(1 << 15))
	}

	sequential := append([]int16(nil), base...)
	clock := pram.DefaultClock
	sw := pram.NewStopwatch(clock)
	pram.Sort(sequential, rng)
	seqElapsed := sw.Elapsed()
	if !sort.SliceIsSorted(sequential, func(i, j int) bool { return sequential[i] < sequential[j] }) {
		return pram.NewInvariantViolation("pqsort", "sequential Sort did not produce a sorted array", nil)
	}

	parallel := append([]int16(nil), base...)
	sorter := pram.NewSorter[int16](workers, pram.DefaultThreshold, rng)
	sw.Reset()
	sorter.Sort(parallel)
	parElapsed := sw.Elapsed()
	if !sort.SliceIsSorted(parallel, func(i, j int) bool { return parallel[i] < parallel[j] }) {
		return pram.NewInvariantViolation("pqsort", "parallel Sort did not produce a sorted array", nil)
	}

	fmt.Printf("n=%d workers=%d\n", size, workers)
	fmt.Printf("sequential: %d us\n", seqElapsed.Microseconds())
	fmt.Printf("parallel:   %d us\n", parElapsed.Microseconds())
	return nil
}
