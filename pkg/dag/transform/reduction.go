package transform

import "github.com/matzehuels/qreuse/pkg/dag"

// TransitiveReduction removes redundant edges from the graph.
//
// TransitiveReduction removes any edge (u, v) where there exists an
// alternate path from u to v through at least one intermediate node. If
// edges A→B, B→C and A→C all exist, then A→C is removed because A reaches C
// via B.
//
// Dependency graphs built from circuits are already reduced. This is used
// on graphs read from JSON, which may list the full precedence relation, to
// bring them to the canonical covering edge set.
//
// # Algorithm
//
// TransitiveReduction computes the full transitive closure using DFS-based
// reachability, then removes any edge (u, v) where u→w and w reaches v for
// some w ≠ v.
//
// # Performance
//
// Time complexity is O(V²·E) in the worst case. Space complexity is O(V²)
// for the reachability matrix.
//
// # Edge Metadata
//
// Metadata on surviving edges is preserved.
func TransitiveReduction(g *dag.DAG) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return
	}

	nodeIndex := dag.PosMap(ids)
	adjacency := make([][]int, len(ids))
	for _, e := range g.Edges() {
		src, okS := nodeIndex[e.From]
		dst, okD := nodeIndex[e.To]
		if okS && okD {
			adjacency[src] = append(adjacency[src], dst)
		}
	}

	reachability := computeReachability(adjacency)

	for _, e := range g.Edges() {
		src, dst := nodeIndex[e.From], nodeIndex[e.To]
		for _, intermediate := range adjacency[src] {
			if intermediate != dst && reachability[intermediate][dst] {
				g.RemoveEdge(e.From, e.To)
				break
			}
		}
	}
}

func computeReachability(adjacency [][]int) [][]bool {
	n := len(adjacency)
	reachable := make([][]bool, n)
	for i := range reachable {
		reachable[i] = make([]bool, n)
	}

	var dfs func(source, current int)
	dfs = func(source, current int) {
		if reachable[source][current] {
			return
		}
		reachable[source][current] = true
		for _, next := range adjacency[current] {
			dfs(source, next)
		}
	}

	for i := range reachable {
		dfs(i, i)
	}
	return reachable
}
