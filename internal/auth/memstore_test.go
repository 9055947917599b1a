package auth

import (
	"context"
	"errors"
	"sync"
)

var errStorage = errors.New("storage unavailable")

// memUsers はテスト用のインメモリ UserRepository。
type memUsers struct {
	mu      sync.Mutex
	users   map[string]User
	inserts int
	failAll bool
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]User)}
}

func (m *memUsers) FindUserByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) InsertUserIfAbsent(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return User{}, errStorage
	}
	if existing, ok := m.users[user.Username]; ok {
		return existing, nil
	}
	m.inserts++
	m.users[user.Username] = user
	return user, nil
}
