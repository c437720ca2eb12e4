package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/trip-journal/internal/domain"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrKeySize is returned for keys that are not KeySize bytes long.
var ErrKeySize = errors.New("backup: encryption key must be 32 bytes")

// Sealer encrypts stored snapshots with AES-256-GCM. The random nonce is
// prepended to the ciphertext. Sealing happens only at the storage layer;
// Encode output itself stays deterministic.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer returns a Sealer for a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("backup.NewSealer: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("backup.NewSealer: create GCM: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// ParseKey decodes a hex-encoded 32-byte key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("backup.ParseKey: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	return key, nil
}

// GenerateKey returns a new random hex-encoded key.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("backup.GenerateKey: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Seal encrypts plaintext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("backup.Sealer.Seal: generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal. Data that cannot be authenticated,
// including a wrong key, is reported as domain.ErrCorruptBackup.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(data) < n {
		return nil, fmt.Errorf("backup.Sealer.Open: %w: sealed data too short", domain.ErrCorruptBackup)
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("backup.Sealer.Open: %w: %w", domain.ErrCorruptBackup, err)
	}
	return plain, nil
}
