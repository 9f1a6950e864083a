// Package passgen generates and validates service passwords.
package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultLength = 20
	MinLength     = 4
	MaxLength     = 512
)

const (
	lower   = "abcdefghijklmnopqrstuvwxyz"
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
	symbols = "!#$%&()*+,-./:;<=>?@[]^_{|}~"
)

var (
	ErrLength  = fmt.Errorf("password length must be between %d and %d", MinLength, MaxLength)
	ErrInvalid = errors.New("not a valid password")
)

// Generate returns a random password of the given length containing at
// least one lowercase letter, uppercase letter, digit and symbol.
func Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", ErrLength
	}

	classes := []string{lower, upper, digits, symbols}
	all := lower + upper + digits + symbols

	out := make([]byte, length)
	for i, class := range classes {
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	for i := len(classes); i < length; i++ {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		out[i] = c
	}

	// Fisher-Yates so the guaranteed characters are not always first
	for i := length - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

// Validate reports whether s can be stored as a password: non-empty, valid
// UTF-8, at most MaxLength bytes, without whitespace or control characters.
func Validate(s string) error {
	if s == "" || len(s) > MaxLength || !utf8.ValidString(s) {
		return ErrInvalid
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrInvalid
		}
	}
	return nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(v.Int64()), nil
}
