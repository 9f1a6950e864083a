package passgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateContainsAllClasses(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := Generate(MinLength)
		require.NoError(t, err)
		require.Len(t, pw, MinLength)

		assert.True(t, strings.ContainsAny(pw, lower), pw)
		assert.True(t, strings.ContainsAny(pw, upper), pw)
		assert.True(t, strings.ContainsAny(pw, digits), pw)
		assert.True(t, strings.ContainsAny(pw, symbols), pw)
		assert.NoError(t, Validate(pw))
	}
}

func TestGenerateLength(t *testing.T) {
	pw, err := Generate(DefaultLength)
	require.NoError(t, err)
	assert.Len(t, pw, DefaultLength)

	_, err = Generate(MinLength - 1)
	assert.ErrorIs(t, err, ErrLength)
	_, err = Generate(MaxLength + 1)
	assert.ErrorIs(t, err, ErrLength)
}

func TestGenerateDiffers(t *testing.T) {
	a, err := Generate(DefaultLength)
	require.NoError(t, err)
	b, err := Generate(DefaultLength)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "hunter2", true},
		{"unicode", "pässwörd", true},
		{"empty", "", false},
		{"space", "two words", false},
		{"newline", "line\n", false},
		{"control", "a\x01b", false},
		{"too long", strings.Repeat("a", MaxLength+1), false},
		{"invalid utf8", "\xff\xfe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}
