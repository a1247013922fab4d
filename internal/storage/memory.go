package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryUserStore keeps users in a map. It is used when no database is configured.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryUserStore creates an empty in-memory store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*User)}
}

// FindByUsername returns the user or ErrUserNotFound
func (s *MemoryUserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// CreateUser adds a user, failing with ErrUserAlreadyExists on a duplicate username
func (s *MemoryUserStore) CreateUser(ctx context.Context, username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return nil, ErrUserAlreadyExists
	}

	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}
	s.users[username] = user

	clone := *user
	return &clone, nil
}

// ParseSeedUsers parses "alice:secret,bob:hunter2" into username/password pairs
func ParseSeedUsers(spec string) (map[string]string, error) {
	users := make(map[string]string)
	if strings.TrimSpace(spec) == "" {
		return users, nil
	}

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		username, password, ok := strings.Cut(entry, ":")
		if !ok || username == "" || password == "" {
			return nil, fmt.Errorf("invalid seed user %q: want username:password", entry)
		}
		if _, dup := users[username]; dup {
			return nil, fmt.Errorf("duplicate seed user %q", username)
		}
		users[username] = password
	}

	return users, nil
}

// Seed creates every user in users, skipping ones that already exist
func Seed(ctx context.Context, store UserStore, users map[string]string) error {
	for username, password := range users {
		if _, err := store.CreateUser(ctx, username, password); err != nil && !errors.Is(err, ErrUserAlreadyExists) {
			return fmt.Errorf("failed to seed user %s: %w", username, err)
		}
	}
	return nil
}
