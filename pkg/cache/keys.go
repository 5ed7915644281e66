package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// schema is bumped whenever a cached payload changes shape.
const schema = "v1"

// Keyer derives cache keys.
type Keyer interface {
	AnalysisKey(circuitHash string, opts AnalysisKeyOpts) string
	ReductionKey(circuitHash string, opts ReductionKeyOpts) string
	CrossCheckKey(circuitHash string, opts CrossCheckKeyOpts) string
}

// AnalysisKeyOpts are the inputs that change a reducibility answer.
type AnalysisKeyOpts struct {
	Method   string `json:"method"`
	Target   int    `json:"target"`
	MaxSteps int64  `json:"max_steps"`
}

// ReductionKeyOpts are the inputs that change a reduced circuit.
type ReductionKeyOpts struct {
	Method    string `json:"method"`
	Heuristic string `json:"heuristic"`
	Target    int    `json:"target"`
	MaxSteps  int64  `json:"max_steps"`
}

// CrossCheckKeyOpts are the inputs that change a cross-check report.
type CrossCheckKeyOpts struct {
	Target   int   `json:"target"`
	MaxSteps int64 `json:"max_steps"`
}

// DefaultKeyer produces "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AnalysisKey keys an is-reducible answer.
func (DefaultKeyer) AnalysisKey(circuitHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", schema, circuitHash, opts)
}

// ReductionKey keys a reduced circuit.
func (DefaultKeyer) ReductionKey(circuitHash string, opts ReductionKeyOpts) string {
	return hashKey("reduction", schema, circuitHash, opts)
}

// CrossCheckKey keys a cross-check report.
func (DefaultKeyer) CrossCheckKey(circuitHash string, opts CrossCheckKeyOpts) string {
	return hashKey("crosscheck", schema, circuitHash, opts)
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
