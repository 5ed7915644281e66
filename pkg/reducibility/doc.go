// Package reducibility decides whether a circuit fits on a given number of
// physical qubits.
//
// # Minimum Width
//
// Qubits sharing one physical slot must form a chain in the precedence
// relation: each occupant is measured before the next one starts. The
// fewest slots needed is therefore the minimum chain cover of the
// dependency graph's transitive closure, which equals
//
//	|Q| − (size of a maximum bipartite matching)
//
// where the bipartite graph has a tail copy and a head copy of every node
// and an edge tail(a)–head(b) whenever a reaches b. A circuit is reducible
// to k slots iff its minimum width is at most k. See [Decide].
//
// # Methods
//
// Three [Decider] implementations compute the same number along different
// paths:
//
//   - [MethodGraph]: augmenting-path matching (Kuhn) whose candidate heads are
//     discovered by depth-first search through the covering DAG. No closure
//     is stored. Polynomial: O(V²·(V+E)) time, O(V) extra space.
//   - [MethodReachability]: closure by breadth-first traversal from every node
//     (gonum graph/traverse), then Kuhn over the closure rows. O(V·(V+E))
//     for the closure plus O(V³) for matching.
//   - [MethodMatrix]: closure by repeated Boolean squaring of the bit
//     adjacency matrix, C ← C ∨ C·C, in at most ⌈log₂ V⌉+1 rounds of
//     word-parallel row unions, then Kuhn over set bits.
//
// All three must agree on every input; the package tests cross-check them
// on random circuits.
//
// # Budgets
//
// Every method charges its work to a [budget.Meter]: one step per
// augmenting call, DFS expansion, BFS visit or squaring round. Exhausting
// the configured [budget.Limits] yields a *errors.BudgetExceededError,
// which means "unknown", never "not reducible".
package reducibility
