package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token Token
		want  string
	}{
		{"exact", Token{Op: OpExact, Old: 3, New: 5}, "3:5"},
		{"similar", Token{Op: OpSimilar, Old: 12, New: 4}, "12~4"},
		{"delete", Token{Op: OpDelete, Old: 7}, "7-"},
		{"insert", Token{Op: OpInsert, New: 9}, "9+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.token.String())
		})
	}
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Token
	}{
		{"3:5", Token{Op: OpExact, Old: 3, New: 5}},
		{"12~4", Token{Op: OpSimilar, Old: 12, New: 4}},
		{"7-", Token{Op: OpDelete, Old: 7}},
		{"9+", Token{Op: OpInsert, New: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseToken(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "abc", "x:y", "3~", "-", "+", "3 5"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			_, err := ParseToken(input)
			require.ErrorIs(t, err, ErrBadToken)
		})
	}
}

func TestStrings_PreservesOrder(t *testing.T) {
	t.Parallel()

	tokens := []Token{
		{Op: OpExact, Old: 1, New: 1},
		{Op: OpDelete, Old: 2},
		{Op: OpInsert, New: 2},
	}

	assert.Equal(t, []string{"1:1", "2-", "2+"}, Strings(tokens))
}
