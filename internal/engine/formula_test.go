package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalFormula(t *testing.T) {
	cases := []struct {
		formula string
		qty     int
		want    string
	}{
		{"1", 5, "1"},
		{"qty", 5, "5"},
		{"qty * 2", 3, "6"},
		{"qty / 2", 6, "3"},
		{"qty + 1", 4, "5"},
		{"(qty + 1) * 2", 4, "10"},
		{"2 + 3 * 4", 0, "14"}, // precedence
		{"-qty + 10", 3, "7"},
		{"0.5 * qty", 8, "4"},
	}
	for _, tc := range cases {
		got, err := EvalFormula(tc.formula, tc.qty)
		require.NoError(t, err, "formula %q", tc.formula)
		assert.True(t, got.Equal(dec(tc.want)), "formula %q: want %s, got %s", tc.formula, tc.want, got)
	}
}

func TestEvalFormulaMalformed(t *testing.T) {
	for _, formula := range []string{"", "qty +", "1 2", "foo", "qty % 2", "(qty", "1 / 0"} {
		_, err := EvalFormula(formula, 5)
		assert.Error(t, err, "formula %q must fail", formula)
	}
}
