package compliance

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// keyringService identifies CodeShift entries in the system keyring.
	keyringService = "codeshift"
	// keyringTokenKey is the keyring account holding the token store key.
	keyringTokenKey = "tokenstore-key"
)

// storeFile is the serialized form of a TokenStore. Only the forward
// map is persisted; the reverse map is rebuilt on load.
type storeFile struct {
	Tokens map[string]string `json:"tokens"`
}

// Save persists the token store to path, encrypted at rest. The token
// map is the sensitive artifact of a reversible anonymization run, so
// it never hits disk in plaintext. The encryption key lives in the OS
// keyring (Keychain, Credential Manager, or Secret Service) and is
// created on first use.
func (s *TokenStore) Save(path string) error {
	s.mu.RLock()
	payload, err := json.Marshal(storeFile{Tokens: s.tokens})
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal token store: %w", err)
	}

	key, err := encryptionKey()
	if err != nil {
		return err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, payload, nil)
	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return fmt.Errorf("failed to write token store: %w", err)
	}
	return nil
}

// LoadTokenStore reads an encrypted token store written by Save.
func LoadTokenStore(path string) (*TokenStore, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("token store file is truncated")
	}

	key, err := encryptionKey()
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	payload, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token store: %w", err)
	}

	var file storeFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("failed to parse token store: %w", err)
	}

	store := NewTokenStore()
	for value, token := range file.Tokens {
		store.put(value, token)
	}
	return store, nil
}

// encryptionKey fetches the token store key from the system keyring,
// generating and storing a fresh one on first use.
func encryptionKey() ([]byte, error) {
	encoded, err := keyring.Get(keyringService, keyringTokenKey)
	if err == nil {
		key, decodeErr := hex.DecodeString(encoded)
		if decodeErr != nil || len(key) != chacha20poly1305.KeySize {
			return nil, errors.New("stored token store key is corrupt")
		}
		return key, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("failed to read key from keyring: %w", err)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := keyring.Set(keyringService, keyringTokenKey, hex.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("failed to store key in keyring: %w", err)
	}
	return key, nil
}
