package reuse_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/qreuse/pkg/circuit"
	"github.com/matzehuels/qreuse/pkg/reducibility"
	"github.com/matzehuels/qreuse/pkg/reduction"
	"github.com/matzehuels/qreuse/pkg/reuse"
)

func Example() {
	// Four qubits that never interact can share one physical qubit.
	c := circuit.NewBuilder("chain").
		H(0).Measure(0).
		H(1).Measure(1).
		H(2).Measure(2).
		H(3).Measure(3).
		MustBuild()

	ok, _ := reuse.IsReducible(context.Background(), c, 1, reducibility.MethodMatrix)
	fmt.Println("fits on 1:", ok)

	rc, _ := reuse.Reduce(context.Background(), c, 1, reduction.HeuristicGreedy)
	fmt.Println("width:", rc.Width, "resets:", len(rc.Resets))
	// Output:
	// fits on 1: true
	// width: 1 resets: 3
}
