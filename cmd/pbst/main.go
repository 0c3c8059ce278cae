// Command pram-pbst drives a concurrent external binary search tree under
// randomized, weighted load and checks the recorded history for
// linearizability and the tree itself against the BST predicate.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/volodya-labs/pram"
)

const keyspaceUpperBound = 100000

var rootCmd = &cobra.Command{
	Use:          "pram-pbst <parallelism> <x> <duration-seconds>",
	Short:        "Randomized concurrency test for the external BST",
	Args:         cobra.ExactArgs(3),
	SilenceUsage: true,
	RunE:         runPbst,
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

func runPbst(cmd *cobra.Command, args []string) error {
	parallelism, err := strconv.Atoi(args[0])
	if err != nil || parallelism <= 0 {
		return pram.NewUsageError("parallelism must be a positive integer, got %q", args[0])
	}
	x, err := strconv.Atoi(args[1])
	if err != nil || x < 0 || x > 5 {
		return pram.NewUsageError("x must be an integer in [0, 5], got %q", args[1])
	}
	duration, err := strconv.Atoi(args[2])
	if err != nil || duration <= 0 {
		return pram.NewUsageError("duration-seconds must be a positive integer, got %q", args[2])
	}

	fmt.Printf("Running experiment for parallelism=%d, x=%d, duration=%ds...\n", parallelism, x, duration)

	tree := pram.NewTree[int]()
	defer tree.Close()

	values := make([]int, keyspaceUpperBound)
	for i := range values {
		values[i] = i
	}
	rng := pram.NewGenerator()
	clock := pram.DefaultClock

	sw := pram.NewStopwatch(clock)
	history, err := pram.RunHistoryTest(pram.HistoryTestConfig[int]{
		Tree:        tree,
		Values:      values,
		Parallelism: parallelism,
		X:           x,
		NewStopCondition: func() pram.StopCondition {
			return pram.NewDurationSeconds(clock, duration)
		},
		Rng: rng,
	})
	if err != nil {
		return err
	}
	elapsed := sw.Elapsed()

	fmt.Println("Experiment finished, running checks...")

	linearizable, violation := pram.CheckLinearizable(history)
	fmt.Printf("Performed operations history is linearizable: %t\n", linearizable)
	if !linearizable {
		return pram.NewInvariantViolation("pbst", "recorded history is not linearizable", violation)
	}

	validBST := tree.ValidBST()
	fmt.Printf("Result structure is a valid external BST: %t\n", validBST)
	if !validBST {
		return pram.NewInvariantViolation("pbst", "tree failed the BST predicate after the run", nil)
	}

	fmt.Printf("Average bandwidth: %.0f op/s\n", pram.OperationsPerSecond(history, elapsed))
	return nil
}
