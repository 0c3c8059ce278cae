package pram

import (
	"context"
	"sync/atomic"

	"github.com/zoobzio/capitan"
)

// Unreachable is the distance reported for a vertex with no path from the
// BFS source.
const Unreachable = ^uint64(0)

// BFSDistances computes single-source shortest-path distances over g using
// a plain sequential breadth-first search. Edge weights are relaxed in
// discovery order, so this is only correct for graphs where BFS order is a
// valid relaxation order (non-negative, typically unit, weights).
func BFSDistances(g Graph, source int) []uint64 {
	dist := make([]uint64, g.Size())
	for i := range dist {
		dist[i] = Unreachable
	}
	dist[source] = 0

	visited := make([]bool, g.Size())
	queue := []int{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, e := range g.EdgesOf(cur) {
			if nd := dist[cur] + e.Weight; nd < dist[e.To] {
				dist[e.To] = nd
			}
			queue = append(queue, e.To)
		}
	}
	return dist
}

// frontierAt returns the vertex at position idx in a frontier split across
// per-batch shards, scanning shards in order and subtracting their lengths
// — the same linear addressing the level-synchronous walk uses to turn a
// flat pfor index back into a (shard, offset) pair without materializing a
// combined slice every level.
func frontierAt(level [][]int, idx int) int {
	for _, part := range level {
		if idx < len(part) {
			return part[idx]
		}
		idx -= len(part)
	}
	panic("pram: bfs frontier index out of range")
}

// ParallelBFSDistances computes single-source shortest-path distances over
// g using a level-synchronous parallel breadth-first search on exec. Each
// level is processed as one parallel-for over the current frontier: the
// atomic compare-and-swap on visited is the linearization point deciding
// which goroutine "discovers" a vertex first, and each batch appends newly
// discovered vertices to its own frontier shard so no synchronization is
// needed within a level. Shards are only read after the level's barrier,
// when every writer has finished.
func ParallelBFSDistances(exec *Executor, g Graph, source int) []uint64 {
	n := g.Size()
	dist := make([]uint64, n)
	for i := range dist {
		dist[i] = Unreachable
	}
	dist[source] = 0

	visited := make([]atomic.Bool, n)
	visited[source].Store(true)

	parallelism := exec.Parallelism()
	curLevel := make([][]int, parallelism)
	curLevel[0] = []int{source}
	levelSize := 1
	level := 0
	ctx := context.Background()

	for levelSize > 0 {
		capitan.Info(ctx, SignalBFSLevelStart, FieldLevel.Field(level), FieldFrontierSize.Field(levelSize))

		nextLevel := make([][]int, parallelism)
		b := parallelism
		if b > levelSize {
			b = levelSize
		}
		snapshot := curLevel
		exec.runBatched(0, levelSize, b, func(batchIdx, lo, hi int) {
			shard := nextLevel[batchIdx]
			for idx := lo; idx < hi; idx++ {
				cur := frontierAt(snapshot, idx)
				for _, e := range g.EdgesOf(cur) {
					if visited[e.To].CompareAndSwap(false, true) {
						if nd := dist[cur] + e.Weight; nd < dist[e.To] {
							dist[e.To] = nd
						}
						shard = append(shard, e.To)
					}
				}
			}
			nextLevel[batchIdx] = shard
		})

		curLevel = nextLevel
		levelSize = 0
		for _, part := range curLevel {
			levelSize += len(part)
		}
		capitan.Info(ctx, SignalBFSLevelDone, FieldLevel.Field(level), FieldFrontierSize.Field(levelSize))
		level++
	}
	return dist
}
