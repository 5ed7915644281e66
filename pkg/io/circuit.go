package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/qreuse/pkg/circuit"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

type circuitDoc struct {
	Name       string  `json:"name,omitempty"`
	Ordered    bool    `json:"ordered,omitempty"`
	Ops        []opDoc `json:"ops"`
	MeasureAll bool    `json:"measure_all,omitempty"`
}

type opDoc struct {
	Kind   string    `json:"kind,omitempty"`
	Name   string    `json:"name,omitempty"`
	Qubits []int     `json:"qubits"`
	Params []float64 `json:"params,omitempty"`
}

// ReadCircuit decodes a circuit document from r. It checks operation
// shape; measurement discipline is left to the analysis, which reports
// it with the offending qubit.
func ReadCircuit(r io.Reader) (*circuit.Circuit, error) {
	var doc circuitDoc
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidFormat, err, "decode circuit")
	}

	b := circuit.NewBuilder(doc.Name)
	for i, op := range doc.Ops {
		kind, err := circuit.ParseKind(op.Kind)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		b.Append(circuit.Operation{Kind: kind, Name: op.Name, Qubits: op.Qubits, Params: op.Params})
	}
	if doc.MeasureAll {
		b.MeasureAll()
	}
	if doc.Ordered {
		b.Ordered()
	}
	return b.Build()
}

// ImportCircuit reads a circuit document from the file at path.
func ImportCircuit(path string) (*circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, qerrors.Wrap(qerrors.ErrCodeFileNotFound, err, "circuit file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCircuit(f)
}

// WriteCircuit encodes c as a circuit document. Measurements are written
// explicitly, so the output never sets measure_all.
func WriteCircuit(c *circuit.Circuit, w io.Writer) error {
	doc := circuitDoc{Name: c.Name(), Ordered: c.IsOrdered(), Ops: make([]opDoc, c.Len())}
	for i, op := range c.Ops() {
		d := opDoc{Name: op.Name, Qubits: op.Qubits, Params: op.Params}
		if op.Kind != circuit.KindGate {
			d.Kind = op.Kind.String()
			if op.Name == d.Kind {
				d.Name = ""
			}
		}
		doc.Ops[i] = d
	}
	return encode(w, doc)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
