package session

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"yowa/models"
)

// The two durable slots. Both must be present and readable for a persisted
// session to count; anything less is treated as "no session".
const (
	keyToken    = "yowa_token"
	keyIdentity = "yowa_user"
)

// State is what readers observe. Loading is true only until Restore finishes.
type State struct {
	IsAuthenticated bool
	Identity        *models.User
	Loading         bool
}

// Store owns the current credential and identity and persists them in an
// embedded badger database. No network calls originate here.
type Store struct {
	mu      sync.RWMutex
	db      *badger.DB
	token   string
	user    *models.User
	loading bool
	log     zerolog.Logger
}

// Open opens the session database under dir. The store starts in the loading
// state; call Restore before authorizing anything.
func Open(dir string, log zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(filepath.Join(dir, "session")).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, loading: true, log: log}, nil
}

// OpenInMemory opens a throwaway store for tests.
func OpenInMemory(log zerolog.Logger) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{db: db, loading: true, log: log}, nil
}

// Restore reads the persisted token and identity. A missing or malformed
// record yields an unauthenticated session and clears both slots so the
// failure does not repeat; it is never an error.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	var token, rawUser []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyToken))
		if err != nil {
			return err
		}
		if token, err = item.ValueCopy(nil); err != nil {
			return err
		}
		item, err = txn.Get([]byte(keyIdentity))
		if err != nil {
			return err
		}
		rawUser, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		s.clearLocked()
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read persisted session")
		s.clearLocked()
		return
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil || user.ID == "" || len(token) == 0 {
		s.log.Warn().Msg("persisted session is malformed, clearing")
		s.clearLocked()
		return
	}

	s.token = string(token)
	s.user = &user
}

// Login persists the credential and identity and makes them current.
func (s *Store) Login(token string, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyToken), []byte(token)); err != nil {
			return err
		}
		return txn.Set([]byte(keyIdentity), raw)
	})
	if err != nil {
		return err
	}

	s.token = token
	s.user = &user
	s.loading = false
	return nil
}

// Logout clears both the in-memory and persisted copies.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Store) clearLocked() error {
	s.token = ""
	s.user = nil
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(keyToken)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete([]byte(keyIdentity)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	return err
}

// Current returns the state readers may act on.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var identity *models.User
	if s.user != nil {
		u := *s.user
		identity = &u
	}
	return State{
		IsAuthenticated: s.token != "" && s.user != nil,
		Identity:        identity,
		Loading:         s.loading,
	}
}

// Token returns the bearer token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
