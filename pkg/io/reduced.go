package io

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/qreuse/pkg/circuit"
	"github.com/matzehuels/qreuse/pkg/emit"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

// WriteReduced encodes a reduced circuit as indented JSON.
func WriteReduced(r *emit.ReducedCircuit, w io.Writer) error {
	return encode(w, r)
}

// ReadReduced decodes a reduced circuit written by WriteReduced.
func ReadReduced(r io.Reader) (*emit.ReducedCircuit, error) {
	var rc emit.ReducedCircuit
	if err := json.NewDecoder(r).Decode(&rc); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidFormat, err, "decode reduced circuit")
	}
	return &rc, nil
}

// WriteQASM writes r as an OpenQASM 2.0 program. Slots become q[0..K-1];
// each logical qubit keeps its own classical bit, numbered by ascending
// qubit identifier.
func WriteQASM(r *emit.ReducedCircuit, w io.Writer) error {
	logical := make([]int, 0, len(r.Assignment.Slots))
	for q := range r.Assignment.Slots {
		logical = append(logical, q)
	}
	slices.Sort(logical)
	bit := make(map[int]int, len(logical))
	for i, q := range logical {
		bit[q] = i
	}

	var b strings.Builder
	b.WriteString("OPENQASM 2.0;\ninclude \"qelib1.inc\";\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "// %s\n", r.Name)
	}
	fmt.Fprintf(&b, "qreg q[%d];\ncreg c[%d];\n", r.Width, len(logical))
	for _, op := range r.Ops {
		switch op.Kind {
		case circuit.KindMeasure:
			fmt.Fprintf(&b, "measure q[%d] -> c[%d];\n", op.Slots[0], bit[op.Logical[0]])
		case circuit.KindReset:
			fmt.Fprintf(&b, "reset q[%d];\n", op.Slots[0])
		default:
			b.WriteString(op.Name)
			if len(op.Params) > 0 {
				ps := make([]string, len(op.Params))
				for i, p := range op.Params {
					ps[i] = strconv.FormatFloat(p, 'g', -1, 64)
				}
				fmt.Fprintf(&b, "(%s)", strings.Join(ps, ","))
			}
			args := make([]string, len(op.Slots))
			for i, s := range op.Slots {
				args[i] = fmt.Sprintf("q[%d]", s)
			}
			fmt.Fprintf(&b, " %s;\n", strings.Join(args, ","))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
