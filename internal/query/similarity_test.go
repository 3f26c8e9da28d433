package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{name: "identical", a: "Alice", b: "Alice", min: 1, max: 1},
		{name: "case only differs", a: "ALICE", b: "alice", min: 1, max: 1},
		{name: "both empty", a: "", b: "", min: 1, max: 1},
		{name: "one substitution", a: "alise", b: "Alice", min: 0.5, max: 0.99},
		{name: "nothing in common", a: "Alice", b: "Zzzzz", min: 0, max: 0.2},
		{name: "empty vs non-empty", a: "", b: "Alice", min: 0, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
			// Symmetric by construction.
			assert.InDelta(t, got, Similarity(tt.b, tt.a), 1e-9)
		})
	}
}
