package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityRatio_KnownValues(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected float64
	}{
		{"", "", 1},
		{"abc", "", 0},
		{"abcd", "abcd", 1},
		{"abcd", "bcde", 0.75},
		{"Grilled Salmon", "Grilled Salmon Special", 28.0 / 36.0},
		{"abxcd", "abcd", 8.0 / 9.0},
	}

	for _, test := range testCases {
		assert.InDelta(t, test.expected, SimilarityRatio(test.a, test.b), 1e-9, "%q vs %q", test.a, test.b)
	}
}

func TestSimilarityRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Grilled Salmon", "Pasta"},
		{"tide", "diet"},
		{"Chicken Tikka Masala", "Tikka masala (chicken)"},
		{"aaab", "abaa"},
		{"Crème brûlée", "creme brulee"},
	}
	for _, p := range pairs {
		assert.Equal(t, SimilarityRatio(p[0], p[1]), SimilarityRatio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestSimilarityRatio_Threshold(t *testing.T) {
	assert.GreaterOrEqual(t, SimilarityRatio("Grilled Salmon", "Grilled Salmon Special"), 0.6)
	assert.Less(t, SimilarityRatio("Grilled Salmon", "Pasta"), 0.6)
}
