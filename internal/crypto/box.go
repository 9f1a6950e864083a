package crypto

import "fmt"

// Sealed is a password-encrypted payload together with the values needed to
// open it again.
type Sealed struct {
	Salt       []byte
	Iterations int
	Nonce      []byte
	Ciphertext []byte
}

// Encrypt derives a key from password with kdf and seals plaintext under it.
// The derived key is wiped before returning.
func Encrypt(plaintext, password []byte, kdf *KDF, aad []byte) (*Sealed, error) {
	key := kdf.DeriveKey(password)
	enc := NewEncryptor(key)
	defer enc.Destroy()

	nonce, ciphertext, err := enc.Seal(plaintext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}

	return &Sealed{
		Salt:       append([]byte(nil), kdf.Salt...),
		Iterations: kdf.Iterations,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// Decrypt re-derives the key from password and opens s.
// A wrong password and a corrupted payload both yield ErrAuthFailed.
func Decrypt(s *Sealed, password []byte, aad []byte) ([]byte, error) {
	kdf := &KDF{Salt: s.Salt, Iterations: s.Iterations}
	key := kdf.DeriveKey(password)
	enc := NewEncryptor(key)
	defer enc.Destroy()

	return enc.Open(s.Nonce, s.Ciphertext, aad)
}
