package crypto

import "fmt"

// Sealer шифрует и расшифровывает сериализованный payload перед передачей
// провайдеру. additionalData привязывает шифротекст к конкретному элементу.
type Sealer interface {
	Seal(plaintext, additionalData []byte) ([]byte, error)
	Open(sealed, additionalData []byte) ([]byte, error)
	Enabled() bool
}

// NoopSealer is the identity transform used when encryption is disabled.
type NoopSealer struct{}

func (NoopSealer) Seal(plaintext, _ []byte) ([]byte, error) { return plaintext, nil }
func (NoopSealer) Open(sealed, _ []byte) ([]byte, error)    { return sealed, nil }
func (NoopSealer) Enabled() bool                            { return false }

// AESSealer seals payloads with AES-256-GCM.
type AESSealer struct {
	key []byte
}

// NewAESSealer creates a sealer for a 32-byte key.
func NewAESSealer(key []byte) (*AESSealer, error) {
	if len(key) != 32 {
		return nil, errKeyLength(len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &AESSealer{key: k}, nil
}

func (s *AESSealer) Seal(plaintext, additionalData []byte) ([]byte, error) {
	return Encrypt(plaintext, s.key, additionalData)
}

func (s *AESSealer) Open(sealed, additionalData []byte) ([]byte, error) {
	return Decrypt(sealed, s.key, additionalData)
}

func (s *AESSealer) Enabled() bool { return true }

// NewSealer returns an AES sealer keyed from the passphrase when encryption
// is enabled, otherwise the identity sealer.
func NewSealer(enabled bool, passphrase, saltBase64 string) (Sealer, error) {
	if !enabled {
		return NoopSealer{}, nil
	}
	key, err := DeriveKeyFromBase64Salt(passphrase, saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	return NewAESSealer(key)
}
