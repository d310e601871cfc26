package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single tag", "#fitness", []string{"#fitness"}},
		{"multiple tags", "#fitness #running", []string{"#fitness", "#running"}},
		{"untagged tokens dropped", "fitness #running plan", []string{"#running"}},
		{"bare hash dropped", "# #a", []string{"#a"}},
		{"duplicates keep first", "#a #b #a", []string{"#a", "#b"}},
		{"case preserved and distinct", "#Run #run", []string{"#Run", "#run"}},
		{"mixed whitespace", "  #a\t#b\n#c  ", []string{"#a", "#b", "#c"}},
		{"empty input", "", nil},
		{"no valid tags", "just some words", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.input))
		})
	}
}
