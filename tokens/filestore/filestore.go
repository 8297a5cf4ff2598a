// Package filestore persists browser session tokens as one JSON file per session,
// optionally sealed with NaCl secretbox.
package filestore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var (
	_ tokens.Store   = (*Store)(nil)
	_ tokens.Factory = (*Factory)(nil)

	errSealedFile = errors.New("token file could not be opened with the configured key")
)

// Store reads and writes a single session file. Every call goes to disk so that
// a restarted process sees the latest values.
type Store struct {
	path string
	key  *[32]byte
	mu   sync.Mutex
}

// New opens the store at path. A nil key stores plain JSON.
func New(path string, key *[32]byte) *Store {
	return &Store{path: path, key: key}
}

func (s *Store) Get(_ context.Context, kind tokens.Kind) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		log.Err(err).Str("path", s.path).Msg("token file read failed")
		return "", false
	}
	v, ok := values[kind.Key()]
	return v, ok && v != ""
}

func (s *Store) Set(_ context.Context, kind tokens.Kind, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		log.Err(err).Str("path", s.path).Msg("token file unreadable, rewriting")
		values = map[string]string{}
	}
	if value == "" {
		delete(values, kind.Key())
	} else {
		values[kind.Key()] = value
	}
	if err := s.write(values); err != nil {
		log.Err(err).Str("path", s.path).Msg("token file write failed")
	}
}

func (s *Store) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Err(err).Str("path", s.path).Msg("token file remove failed")
	}
}

func (s *Store) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}

	if s.key != nil {
		if len(data) < nonceSize {
			return nil, errSealedFile
		}
		var nonce [nonceSize]byte
		copy(nonce[:], data[:nonceSize])
		opened, ok := secretbox.Open(nil, data[nonceSize:], &nonce, s.key)
		if !ok {
			return nil, errSealedFile
		}
		data = opened
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return values, nil
}

func (s *Store) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	if s.key != nil {
		var nonce [nonceSize]byte
		if _, err := rand.Read(nonce[:]); err != nil {
			return fmt.Errorf("failed to generate nonce: %w", err)
		}
		data = secretbox.Seal(nonce[:], data, &nonce, s.key)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token folder: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Factory maps browser sessions to files inside a folder.
type Factory struct {
	dir string
	key *[32]byte

	mu     sync.Mutex
	stores map[string]*Store
}

func NewFactory(dir string, key *[32]byte) *Factory {
	return &Factory{dir: dir, key: key, stores: make(map[string]*Store)}
}

func (f *Factory) Open(sessionID string) tokens.Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	if store, ok := f.stores[sessionID]; ok {
		return store
	}
	store := New(f.pathFor(sessionID), f.key)
	f.stores[sessionID] = store
	return store
}

// Forget drops the cached handle; the file itself stays until Clear.
func (f *Factory) Forget(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stores, sessionID)
}

func (f *Factory) pathFor(sessionID string) string {
	return filepath.Join(f.dir, filepath.Base(filepath.Clean("/"+sessionID))+".json")
}
