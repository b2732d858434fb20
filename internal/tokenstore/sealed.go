package tokenstore

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/and161185/roommaster/internal/crypto/clientcrypto"
)

// saltKey holds the per-store Argon2id salt in clear.
const saltKey = "_salt"

// Sealed encrypts every value before handing it to the wrapped Store.
type Sealed struct {
	inner Store
	key   []byte
}

var _ Store = (*Sealed)(nil)

// NewSealed derives the store key from passphrase, creating the salt on first use.
func NewSealed(ctx context.Context, inner Store, passphrase string) (*Sealed, error) {
	salt, err := loadOrCreateSalt(ctx, inner)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, key: clientcrypto.DeriveKey([]byte(passphrase), salt)}, nil
}

func loadOrCreateSalt(ctx context.Context, inner Store) ([]byte, error) {
	enc, ok, err := inner.Get(ctx, saltKey)
	if err != nil {
		return nil, err
	}
	if ok {
		salt, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decode salt: %w", err)
		}
		return salt, nil
	}
	salt, err := clientcrypto.Rand(clientcrypto.SaltLen)
	if err != nil {
		return nil, err
	}
	if err := inner.Set(ctx, saltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return salt, nil
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	enc, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", false, fmt.Errorf("decode %s: %w", key, err)
	}
	pt, err := clientcrypto.Open(s.key, key, raw)
	if err != nil {
		return "", false, fmt.Errorf("open %s: %w", key, err)
	}
	return string(pt), true, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	sealed, err := clientcrypto.Seal(s.key, key, []byte(value))
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
