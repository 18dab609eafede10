package natsort

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringsOrdersControlNumbersNumerically(t *testing.T) {
	got := []string{"AC-1", "AC-9", "AC-10", "AC-2"}
	Strings(got)
	assert.Equal(t, []string{"AC-1", "AC-2", "AC-9", "AC-10"}, got)

	// Lexicographic order would put AC-10 second; guard against regressions.
	lex := []string{"AC-1", "AC-9", "AC-10", "AC-2"}
	sort.Strings(lex)
	assert.NotEqual(t, lex, got)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"AC-2", "AC-10", -1},
		{"AC-10", "AC-2", 1},
		{"ac-2", "AC-2", 0},
		{"AC-02", "AC-2", 0},
		{"AC-2 (1)", "AC-2 (12)", -1},
		{"AC-2", "AC-2 (1)", -1},
		{"AU", "AC", 1},
		{"1", "a", -1},
		{"", "a", -1},
		{"", "", 0},
		{"NIST-800-53", "NIST-800-171", -1},
		{"99999999999999999999999", "100000000000000000000000", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestLessIsTotal(t *testing.T) {
	// Equal under Compare but different bytes: order must still be fixed.
	assert.True(t, Less("AC-2", "ac-2"))
	assert.False(t, Less("ac-2", "AC-2"))
	assert.False(t, Less("AC-2", "AC-2"))
}

func TestKeys(t *testing.T) {
	m := map[string]int{"SC-12": 1, "SC-7": 2, "AC-1": 3}
	assert.Equal(t, []string{"AC-1", "SC-7", "SC-12"}, Keys(m))
	assert.Empty(t, Keys(map[string]int{}))
}
