package core

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/illarion/passlane/internal/crypto"
	"golang.org/x/term"
)

var stdin = bufio.NewReader(os.Stdin)

// ReadPassword reads a password from the terminal without echoing
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	// Read password without echo
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm(prompt string) ([]byte, error) {
	password1, err := ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, fmt.Errorf("passwords do not match")
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// ReadLine prompts for a single line of visible input
func ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// AskIndex asks the user to pick a row out of n. "q" or an empty answer
// cancels with ErrInvalidSelection.
func AskIndex(prompt string, n int) (int, error) {
	answer, err := ReadLine(prompt)
	if err != nil {
		return 0, err
	}
	if answer == "" || strings.EqualFold(answer, "q") {
		return 0, fmt.Errorf("%w: cancelled", ErrInvalidSelection)
	}
	i, err := strconv.Atoi(answer)
	if err != nil || i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, answer)
	}
	return i, nil
}
