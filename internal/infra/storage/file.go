// Package storage persists the dashboard session (auth token and user
// snapshot) so it survives a restart of the dashboard process.
package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Well-known session keys.
const (
	KeyAuthToken = "authToken"
	KeyUserData  = "userData"
)

const fileFormatVersion = 1

// argon2id parameters for deriving the file key from SESSION_SECRET.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
	saltSize   = 16
)

// fileEnvelope is the on-disk layout. Exactly one of Values or Sealed is set.
type fileEnvelope struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values,omitempty"`
	Salt    []byte            `json:"salt,omitempty"`
	Nonce   []byte            `json:"nonce,omitempty"`
	Sealed  []byte            `json:"sealed,omitempty"`
}

// FileStore keeps session values in a single JSON file. When a secret is
// configured the values are sealed with XChaCha20-Poly1305 under an
// argon2id-derived key. Writes go through a temp file and rename.
type FileStore struct {
	mu     sync.Mutex
	path   string
	secret []byte
}

// NewFileStore creates a store at path. An empty secret stores values in clear.
func NewFileStore(path, secret string) *FileStore {
	s := &FileStore{path: path}
	if secret != "" {
		s.secret = []byte(secret)
	}
	return s
}

// Get returns the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Delete removes keys. Removing the last key removes the file.
func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		// An unreadable file is cleared rather than left behind.
		return s.remove()
	}
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		return s.remove()
	}
	return s.save(values)
}

func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if env.Version != fileFormatVersion {
		return nil, fmt.Errorf("unsupported session file version %d", env.Version)
	}

	if env.Sealed == nil {
		if env.Values == nil {
			env.Values = map[string]string{}
		}
		return env.Values, nil
	}
	if s.secret == nil {
		return nil, errors.New("session file is encrypted but no secret is configured")
	}

	aead, err := s.aead(env.Salt)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, env.Nonce, env.Sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, fmt.Errorf("decode sealed session: %w", err)
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	env := fileEnvelope{Version: fileFormatVersion}

	if s.secret == nil {
		env.Values = values
	} else {
		plain, err := json.Marshal(values)
		if err != nil {
			return err
		}
		env.Salt = make([]byte, saltSize)
		if _, err := rand.Read(env.Salt); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		aead, err := s.aead(env.Salt)
		if err != nil {
			return err
		}
		env.Nonce = make([]byte, aead.NonceSize())
		if _, err := rand.Read(env.Nonce); err != nil {
			return fmt.Errorf("generate nonce: %w", err)
		}
		env.Sealed = aead.Seal(nil, env.Nonce, plain, nil)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}

func (s *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	if len(salt) != saltSize {
		return nil, errors.New("session file salt is malformed")
	}
	key := argon2.IDKey(s.secret, salt, kdfTime, kdfMemory, kdfThreads, chacha20poly1305.KeySize)
	return chacha20poly1305.NewX(key)
}

func (s *FileStore) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
