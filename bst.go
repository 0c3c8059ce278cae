package pram

import (
	"cmp"
	"context"
	"fmt"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// OpKind identifies the three operations a Tree (and the linearizability
// validator's recorded histories) support.
type OpKind int

const (
	OpInsert OpKind = iota
	OpRemove
	OpContains
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpContains:
		return "contains"
	default:
		return "unknown"
	}
}

// Metric keys for Tree observability.
const (
	TreeOperationsTotal  = metricz.Key("tree.operations.total")
	TreeInsertsTotal     = metricz.Key("tree.inserts.total")
	TreeRemovesTotal     = metricz.Key("tree.removes.total")
	TreeContainsTotal    = metricz.Key("tree.contains.total")
	TreePredicateChecks  = metricz.Key("tree.predicate_checks.total")
	TreePredicateFailure = metricz.Key("tree.predicate_failures.total")
)

// Span names for Tree.
const (
	TreeOperationSpan = tracez.Key("tree.operation")
)

// Span tags for Tree.
const (
	TreeTagOpKind = tracez.Tag("tree.op_kind")
	TreeTagKey    = tracez.Tag("tree.key")
)

// Hook event keys for Tree.
const (
	TreeEventOperationCommitted = hookz.Key("tree.operation_committed")
)

// BSTEvent is emitted via hookz whenever an Insert, Remove, or Contains
// commits against the tree.
type BSTEvent struct {
	Kind    OpKind
	EntryTS uint64
	Result  bool
}

// node is an external-BST node. Leaves carry a key and no children;
// routing nodes carry a separator key (every leaf on the left is <= it,
// every leaf on the right is > it) and exactly two children. Every node owns its own lock; hand-over-hand descent
// holds at most two or three adjacent nodes' locks at a time.
type node[K cmp.Ordered] struct {
	mu        TATASLock
	key       K
	isRouting bool
	left      *node[K]
	right     *node[K]
}

func newLeaf[K cmp.Ordered](key K) *node[K] {
	return &node[K]{key: key}
}

// Tree is a concurrent external binary search tree with hand-over-hand
// (lock-coupling) locking. All keys live in leaves; interior nodes are
// routing nodes carrying a separator key, which Insert sets to the
// maximum key of the new node's left subtree. Remove does not update
// separators, so after removals a separator is an upper bound for its
// left subtree rather than necessarily its maximum. A sentinel root
// always exists; the live tree hangs off its right child.
//
// Reclamation is leak-on-remove: Remove unlinks a routing node and its
// leaf from the tree but never frees them, so a thread mid hand-over-hand
// descent that already holds one of their locks can never observe a
// dangling pointer. This is the simpler interim choice suited to bounded
// test runs, not a long-running server.
type Tree[K cmp.Ordered] struct {
	root *node[K]

	timerMu sync.Mutex
	timer   uint64

	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[BSTEvent]
}

// NewTree creates an empty Tree.
func NewTree[K cmp.Ordered]() *Tree[K] {
	registry := metricz.New()
	registry.Counter(TreeOperationsTotal)
	registry.Counter(TreeInsertsTotal)
	registry.Counter(TreeRemovesTotal)
	registry.Counter(TreeContainsTotal)
	registry.Counter(TreePredicateChecks)
	registry.Counter(TreePredicateFailure)

	return &Tree[K]{
		root:    &node[K]{isRouting: true},
		metrics: registry,
		tracer:  tracez.New(),
		hooks:   hookz.New[BSTEvent](),
	}
}

// nextEntryTS increments the monotone operation counter under the root's
// lock, guaranteeing a total order of entry timestamps across every
// concurrent operation.
func (t *Tree[K]) nextEntryTS() uint64 {
	t.root.mu.Lock()
	defer t.root.mu.Unlock()
	t.timerMu.Lock()
	defer t.timerMu.Unlock()
	t.timer++
	return t.timer
}

func (t *Tree[K]) emit(ctx context.Context, kind OpKind, entryTS uint64, result bool) {
	t.metrics.Counter(TreeOperationsTotal).Inc()
	switch kind {
	case OpInsert:
		t.metrics.Counter(TreeInsertsTotal).Inc()
	case OpRemove:
		t.metrics.Counter(TreeRemovesTotal).Inc()
	case OpContains:
		t.metrics.Counter(TreeContainsTotal).Inc()
	}
	capitan.Info(ctx, SignalBSTOperationCommit,
		FieldOpKind.Field(kind.String()),
		FieldEntryTS.Field(int(entryTS)),
	)
	_ = t.hooks.Emit(ctx, TreeEventOperationCommitted, BSTEvent{Kind: kind, EntryTS: entryTS, Result: result}) //nolint:errcheck
}

// Contains reports whether key is present in the tree, along with the
// monotone timestamp assigned to this operation's entry.
func (t *Tree[K]) Contains(key K) (result bool, entryTS uint64) {
	entryTS = t.nextEntryTS()
	ctx, span := t.tracer.StartSpan(context.Background(), TreeOperationSpan)
	span.SetTag(TreeTagOpKind, OpContains.String())
	span.SetTag(TreeTagKey, fmt.Sprint(key))
	defer span.Finish()
	capitan.Info(ctx, SignalBSTOperationStart, FieldOpKind.Field(OpContains.String()), FieldEntryTS.Field(int(entryTS)))

	t.root.mu.Lock()
	if t.root.right == nil {
		t.root.mu.Unlock()
		t.emit(ctx, OpContains, entryTS, false)
		return false, entryTS
	}
	parent, leaf := t.descendFrom(t.root, key)
	result = leaf.key == key
	leaf.mu.Unlock()
	parent.mu.Unlock()
	t.emit(ctx, OpContains, entryTS, result)
	return result, entryTS
}

// Insert adds key to the tree if absent; it is a no-op if key is already
// present. Returns the monotone timestamp assigned to this operation's
// entry.
func (t *Tree[K]) Insert(key K) (inserted bool, entryTS uint64) {
	entryTS = t.nextEntryTS()
	ctx, span := t.tracer.StartSpan(context.Background(), TreeOperationSpan)
	span.SetTag(TreeTagOpKind, OpInsert.String())
	span.SetTag(TreeTagKey, fmt.Sprint(key))
	defer span.Finish()
	capitan.Info(ctx, SignalBSTOperationStart, FieldOpKind.Field(OpInsert.String()), FieldEntryTS.Field(int(entryTS)))

	t.root.mu.Lock()
	if t.root.right == nil {
		t.root.right = newLeaf(key)
		t.root.mu.Unlock()
		t.emit(ctx, OpInsert, entryTS, true)
		return true, entryTS
	}

	parent, leaf := t.descendFrom(t.root, key)
	if leaf.key == key {
		leaf.mu.Unlock()
		parent.mu.Unlock()
		t.emit(ctx, OpInsert, entryTS, false)
		return false, entryTS
	}

	newNode := newLeaf(key)
	routing := &node[K]{isRouting: true}
	// routing.key is the separator: every leaf under left is <= routing.key,
	// every leaf under right is > routing.key, so it takes the value of
	// whichever of the two leaves lands on the left.
	if key < leaf.key {
		routing.key = key
		routing.left, routing.right = newNode, leaf
	} else {
		routing.key = leaf.key
		routing.left, routing.right = leaf, newNode
	}
	t.replaceChild(parent, leaf, routing)

	leaf.mu.Unlock()
	parent.mu.Unlock()
	t.emit(ctx, OpInsert, entryTS, true)
	return true, entryTS
}

// Remove deletes key from the tree if present. It performs the standard
// external-BST deletion: the grandparent of the removed pair is relinked
// directly to the leaf's sibling, and both the parent routing node and
// the leaf are unlinked (and, per this tree's leak-on-remove reclamation
// policy, never freed).
func (t *Tree[K]) Remove(key K) (removed bool, entryTS uint64) {
	entryTS = t.nextEntryTS()
	ctx, span := t.tracer.StartSpan(context.Background(), TreeOperationSpan)
	span.SetTag(TreeTagOpKind, OpRemove.String())
	span.SetTag(TreeTagKey, fmt.Sprint(key))
	defer span.Finish()
	capitan.Info(ctx, SignalBSTOperationStart, FieldOpKind.Field(OpRemove.String()), FieldEntryTS.Field(int(entryTS)))

	t.root.mu.Lock()
	if t.root.right == nil {
		t.root.mu.Unlock()
		t.emit(ctx, OpRemove, entryTS, false)
		return false, entryTS
	}
	if !t.root.right.isRouting {
		if t.root.right.key != key {
			t.root.mu.Unlock()
			t.emit(ctx, OpRemove, entryTS, false)
			return false, entryTS
		}
		t.root.right = nil
		t.root.mu.Unlock()
		t.emit(ctx, OpRemove, entryTS, true)
		return true, entryTS
	}

	gp, parent, leaf := t.descendTriple(key)
	if leaf.key != key {
		leaf.mu.Unlock()
		parent.mu.Unlock()
		gp.mu.Unlock()
		t.emit(ctx, OpRemove, entryTS, false)
		return false, entryTS
	}

	sibling := parent.left
	if sibling == leaf {
		sibling = parent.right
	}
	t.replaceChild(gp, parent, sibling)

	leaf.mu.Unlock()
	parent.mu.Unlock()
	gp.mu.Unlock()
	t.emit(ctx, OpRemove, entryTS, true)
	return true, entryTS
}

func (t *Tree[K]) replaceChild(parent, oldChild, newChild *node[K]) {
	if parent.left == oldChild {
		parent.left = newChild
	} else {
		parent.right = newChild
	}
}

// descendFrom hand-over-hand descends from an already-locked ancestor
// (whose right child is known non-nil) down to the leaf that would hold
// key, returning the locked immediate parent and leaf. At most two
// adjacent locks are held at any instant.
func (t *Tree[K]) descendFrom(ancestor *node[K], key K) (parent, leaf *node[K]) {
	cur := ancestor.right
	cur.mu.Lock()
	prev := ancestor
	for cur.isRouting {
		prev.mu.Unlock()
		prev = cur
		if key <= cur.key {
			cur = cur.left
		} else {
			cur = cur.right
		}
		cur.mu.Lock()
	}
	return prev, cur
}

// descendTriple hand-over-hand descends from the root (already locked,
// with root.right known to be a routing node) down to the leaf that
// would hold key, returning the locked grandparent, immediate parent,
// and leaf — the three nodes Remove must hold simultaneously to relink
// the grandparent's pointer around the removed (parent, leaf) pair.
func (t *Tree[K]) descendTriple(key K) (grandparent, parent, leaf *node[K]) {
	gp := t.root
	cur := t.root.right
	cur.mu.Lock()
	for {
		var next *node[K]
		if key <= cur.key {
			next = cur.left
		} else {
			next = cur.right
		}
		next.mu.Lock()
		if !next.isRouting {
			return gp, cur, next
		}
		gp.mu.Unlock()
		gp = cur
		cur = next
	}
}

// ValidBST reports whether the BST predicate holds: every routing node
// has two non-nil children, every leaf reachable under a routing node's
// left child has a key no greater than the routing node's key and every
// leaf under its right child has a strictly greater key, and leaf keys
// are unique. It is intended for use between operations (e.g. by test
// harnesses), not concurrently with live mutators.
func (t *Tree[K]) ValidBST() bool {
	t.metrics.Counter(TreePredicateChecks).Inc()
	seen := make(map[K]bool)
	ok := validSubtree(t.root.right, nil, nil, seen)
	if !ok {
		t.metrics.Counter(TreePredicateFailure).Inc()
		capitan.Error(context.Background(), SignalBSTPredicateFailed)
	}
	return ok
}

func validSubtree[K cmp.Ordered](n *node[K], lo, hi *K, seen map[K]bool) bool {
	if n == nil {
		return true
	}
	if !n.isRouting {
		if lo != nil && n.key <= *lo {
			return false
		}
		if hi != nil && n.key > *hi {
			return false
		}
		if seen[n.key] {
			return false
		}
		seen[n.key] = true
		return n.left == nil && n.right == nil
	}
	if n.left == nil || n.right == nil {
		return false
	}
	key := n.key
	if !validSubtree(n.left, lo, &key, seen) {
		return false
	}
	return validSubtree(n.right, &key, hi, seen)
}

// OnCommitted registers a handler invoked whenever an Insert, Remove, or
// Contains commits against the tree.
func (t *Tree[K]) OnCommitted(handler func(context.Context, BSTEvent) error) error {
	_, err := t.hooks.Hook(TreeEventOperationCommitted, handler)
	return err
}

// Metrics returns the tree's metrics registry.
func (t *Tree[K]) Metrics() *metricz.Registry {
	return t.metrics
}

// Close releases the tree's tracer and hook resources. Call once no
// operation is in flight.
func (t *Tree[K]) Close() {
	t.tracer.Close()
	t.hooks.Close()
}
