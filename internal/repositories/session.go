package repositories

import (
	"database/sql"

	"github.com/desertthunder/kino/internal/shared"
)

// SessionStore persists the access token under [AccessTokenKey].
type SessionStore struct {
	storage *StorageRepository
}

// NewSessionStore creates a new [SessionStore] with the given database connection
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{storage: NewStorageRepository(db)}
}

// Load returns the stored session. A missing token yields an anonymous session.
func (s *SessionStore) Load() (shared.Session, error) {
	token, ok, err := s.storage.Get(AccessTokenKey)
	if err != nil {
		return shared.Anonymous(), err
	}
	if !ok {
		return shared.Anonymous(), nil
	}
	return shared.NewSession(token), nil
}

// Save stores the session's token; anonymous sessions clear it.
func (s *SessionStore) Save(session shared.Session) error {
	if !session.Authenticated() {
		return s.Clear()
	}
	return s.storage.Set(AccessTokenKey, session.AccessToken())
}

// Clear forgets the stored token.
func (s *SessionStore) Clear() error {
	return s.storage.Delete(AccessTokenKey)
}
