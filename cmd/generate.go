package cmd

import (
	"fmt"

	"github.com/illarion/passlane/internal/passgen"
)

// Generate prints a new random password and copies it to the clipboard
func Generate(env *Env, length int) {
	if length <= 0 {
		length = env.Config.PasswordLength
	}

	password, err := passgen.Generate(length)
	if err != nil {
		HandleError(err)
	}

	if copyToClipboard(env, password) {
		fmt.Printf("Password - also copied to clipboard: %s\n", password)
		return
	}
	fmt.Println(password)
}
