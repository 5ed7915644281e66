package transform

import "github.com/matzehuels/qreuse/pkg/dag"

// AssignLayers assigns nodes to rows (layers) based on their depth in the
// graph.
//
// AssignLayers uses a longest-path algorithm via topological sort (Kahn's
// algorithm). Each node is placed at one plus the maximum row of any of its
// parents, so that:
//   - Source nodes (no incoming edges) are at row 0
//   - All parents are strictly above their children
//
// For a reuse dependency graph the row of a qubit is the length of the
// longest reuse chain ending at it. Existing row assignments are
// overwritten.
//
// # Cycles
//
// AssignLayers assumes the graph is acyclic. Nodes on a cycle never reach
// zero in-degree and stay at row 0.
//
// # Performance
//
// Time complexity is O(V + E). Space complexity is O(V).
func AssignLayers(g *dag.DAG) {
	ids := g.NodeIDs()
	inDegree := make(map[int]int, len(ids))
	rows := make(map[int]int, len(ids))
	queue := make([]int, 0, len(ids))

	for _, id := range ids {
		rows[id] = 0
		degree := g.InDegree(id)
		inDegree[id] = degree
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
