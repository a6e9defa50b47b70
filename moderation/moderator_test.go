package moderation

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const mask = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g. "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, mask, slog.Default())
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
		},
		{
			name:     "Multiple occurrences",
			input:    "badger badger badger",
			expected: "****** ****** ******",
		},
		{
			name:     "Leet speak and internal punctuation",
			input:    "Look at B.4.d.g.€r !",
			expected: "Look at ********** !",
		},
		{
			name:     "Uppercase and noise",
			input:    "S-N-A-K-E is not a MUSHROOM",
			expected: "********* is not a ********",
		},
		{
			name:     "Clean text untouched",
			input:    "Nothing to see here",
			expected: "Nothing to see here",
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, mod.Censor(tt.input))
		})
	}
}

func TestModerator_Empty_Dictionary_Is_Passthrough(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator(nil, mask, slog.Default())
	req.NoError(err)
	req.Equal("anything goes", mod.Censor("anything goes"))
}
