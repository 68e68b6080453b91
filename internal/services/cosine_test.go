package services

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "scaled", a: []float32{1, 1}, b: []float32{3, 3}, want: 1},
		{name: "empty", a: nil, b: nil, want: 0},
		{name: "length mismatch", a: []float32{1, 2}, b: []float32{1, 2, 3}, want: 0},
		{name: "zero norm", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarityToScore(t *testing.T) {
	tests := []struct {
		cos  float64
		want int
	}{
		{cos: 1, want: 100},
		{cos: 0.823, want: 82},
		{cos: 0.5, want: 50},
		{cos: 0, want: 0},
		{cos: -0.7, want: 0},
		{cos: 1.2, want: 100},
	}

	for _, tt := range tests {
		if got := similarityToScore(tt.cos); got != tt.want {
			t.Errorf("similarityToScore(%v) = %d, want %d", tt.cos, got, tt.want)
		}
	}
}
