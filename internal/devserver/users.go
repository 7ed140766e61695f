package devserver

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists     = errors.New("username already registered")
	ErrBadCredentials = errors.New("incorrect username or password")
	ErrUnknownUser    = errors.New("user not found")
)

type user struct {
	email string
	hash  []byte
}

// Registry keeps accounts in memory for the lifetime of the server.
type Registry struct {
	mu    sync.RWMutex
	users map[string]user
	cost  int
}

func NewRegistry() *Registry {
	return NewRegistryWithCost(bcrypt.DefaultCost)
}

func NewRegistryWithCost(cost int) *Registry {
	return &Registry{users: make(map[string]user), cost: cost}
}

func (r *Registry) Register(username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; ok {
		return ErrUserExists
	}
	r.users[username] = user{email: email, hash: hash}
	return nil
}

func (r *Registry) Authenticate(username, password string) error {
	r.mu.RLock()
	u, ok := r.users[username]
	r.mu.RUnlock()
	if !ok {
		return ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return ErrBadCredentials
	}
	return nil
}

func (r *Registry) Exists(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[username]
	return ok
}

func (r *Registry) Delete(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return ErrUnknownUser
	}
	delete(r.users, username)
	return nil
}
