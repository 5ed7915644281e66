package reuse

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qio "github.com/matzehuels/qreuse/pkg/io"
	"github.com/matzehuels/qreuse/pkg/reducibility"
	"github.com/matzehuels/qreuse/pkg/reduction"
)

// The circuits shipped under examples/circuits must keep their documented
// widths.
func TestSampleCircuits(t *testing.T) {
	tests := []struct {
		file   string
		qubits int
		width  int
	}{
		{"bell.json", 2, 2},
		{"ghz.json", 5, 2},
		{"chain.json", 4, 1},
		{"two-chains.json", 4, 2},
		{"bv.json", 5, 2},
	}
	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			c, err := qio.ImportCircuit(filepath.Join("..", "..", "examples", "circuits", tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.qubits, c.Width())

			for _, m := range reducibility.Methods {
				s, err := NewSession(c, Options{Method: m})
				require.NoError(t, err)
				got, err := s.MinWidth(ctx)
				require.NoError(t, err)
				assert.Equal(t, tt.width, got, "method %s", m)
			}

			r, err := Reduce(ctx, c, tt.width, reduction.HeuristicMRV)
			require.NoError(t, err)
			assert.Equal(t, tt.width, r.Width)
		})
	}
}
