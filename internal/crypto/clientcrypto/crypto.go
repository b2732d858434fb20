// Package clientcrypto contains client-side primitives for sealing values at rest.
package clientcrypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Params
const (
	KeyLen  = 32
	SaltLen = 16

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// ErrSealedTooShort is returned when a sealed value cannot even hold a nonce.
var ErrSealedTooShort = errors.New("sealed value too short")

func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives a store key from a passphrase and per-store salt using Argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// Seal encrypts plaintext with XChaCha20-Poly1305 and a random nonce.
// The name is bound as AAD so a value cannot be replayed under another key.
func Seal(key []byte, name string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, []byte(name))...)
	return out, nil
}

// Open decrypts a value produced by Seal under the same key and name.
func Open(key []byte, name string, sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, ErrSealedTooShort
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := sealed[:chacha20poly1305.NonceSizeX]
	ct := sealed[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, []byte(name))
}
