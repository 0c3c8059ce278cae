// Command pram-pbfs builds a cubic implicit graph, runs sequential and
// (optionally) parallel level-synchronous BFS from the origin vertex, and
// validates every distance against the known Manhattan-distance answer.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/volodya-labs/pram"
)

const gridSide = 500

var rootCmd = &cobra.Command{
	Use:          "pram-pbfs <parallelism>",
	Short:        "Benchmark sequential vs. level-synchronous parallel BFS",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runPbfs,
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

func runPbfs(cmd *cobra.Command, args []string) error {
	parallelism, err := strconv.Atoi(args[0])
	if err != nil || parallelism < 0 {
		return pram.NewUsageError("parallelism must be a non-negative integer, got %q", args[0])
	}

	g := pram.NewCubicGraph(gridSide)
	source := g.Idx3Dto1D(0, 0, 0)

	clock := pram.DefaultClock
	sw := pram.NewStopwatch(clock)
	seq := pram.BFSDistances(g, source)
	seqElapsed := sw.Elapsed()
	if err := validateCubeDistances(g, seq); err != nil {
		return err
	}
	fmt.Printf("sequential BFS over a %d^3 grid: %s\n", gridSide, seqElapsed)

	if parallelism == 0 {
		return nil
	}

	pool := pram.NewPool(parallelism)
	defer pool.FinishAll()
	exec := pram.NewExecutor(pool)

	sw.Reset()
	par := pram.ParallelBFSDistances(exec, g, source)
	parElapsed := sw.Elapsed()
	if err := validateCubeDistances(g, par); err != nil {
		return err
	}
	fmt.Printf("parallel BFS (parallelism=%d): %s\n", parallelism, parElapsed)

	for i := range seq {
		if seq[i] != par[i] {
			return pram.NewInvariantViolation("pbfs", "sequential and parallel BFS disagree",
				fmt.Sprintf("vertex %d: sequential=%d parallel=%d", i, seq[i], par[i]))
		}
	}
	return nil
}

func validateCubeDistances(g *pram.CubicGraph, dist []uint64) error {
	for idx, d := range dist {
		x, y, z := g.Idx1Dto3D(idx)
		want := uint64(x + y + z)
		if d != want {
			return pram.NewInvariantViolation("pbfs", "distance disagrees with the known Manhattan distance",
				fmt.Sprintf("vertex (%d,%d,%d): got=%d want=%d", x, y, z, d, want))
		}
	}
	return nil
}
