package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistinct(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"supporters across candidacies", []string{"P-2", "P-1", "P-2", "P-3", "P-1"}, []string{"P-2", "P-1", "P-3"}},
		{"padding collapses", []string{" P-1", "P-1 ", "P-1"}, []string{"P-1"}},
		{"blanks dropped", []string{"", "  ", "P-9"}, []string{"P-9"}},
		{"case is significant", []string{"ab", "AB"}, []string{"ab", "AB"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distinct(tt.input))
		})
	}
}
