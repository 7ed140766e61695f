package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Rorical/katabasis/internal/api"
	"github.com/Rorical/katabasis/internal/credential"
	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// recorder collects effects.
type recorder struct {
	mu      sync.Mutex
	views   []models.View
	notices []models.Notice
}

func (r *recorder) Navigate(v models.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) Notify(n models.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) Views() []models.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.View(nil), r.views...)
}

func (r *recorder) Notices() []models.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notice(nil), r.notices...)
}

// fakeBackend answers every endpoint from funcs. A non-nil gate makes calls
// wait until it is closed; entered receives once per call before waiting.
type fakeBackend struct {
	mu     sync.Mutex
	chats  []api.ChatRequest
	tokens []string
	logins []api.LoginRequest
	signup []api.SignupRequest
	delete int

	chatFn   func(api.ChatRequest) (*api.ChatResponse, error)
	loginFn  func(api.LoginRequest) (*api.LoginResponse, error)
	signupFn func(api.SignupRequest) error
	deleteFn func() error

	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) wait(ctx context.Context) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) Chat(ctx context.Context, token string, req api.ChatRequest) (*api.ChatResponse, error) {
	f.mu.Lock()
	f.chats = append(f.chats, req)
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.chatFn == nil {
		return &api.ChatResponse{Response: "echo: " + req.Message}, nil
	}
	return f.chatFn(req)
}

func (f *fakeBackend) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	f.mu.Lock()
	f.logins = append(f.logins, req)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.loginFn(req)
}

func (f *fakeBackend) Signup(ctx context.Context, req api.SignupRequest) error {
	f.mu.Lock()
	f.signup = append(f.signup, req)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.signupFn == nil {
		return nil
	}
	return f.signupFn(req)
}

func (f *fakeBackend) DeleteAccount(ctx context.Context, token string) error {
	f.mu.Lock()
	f.delete++
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn()
}

func (f *fakeBackend) chatCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chats)
}

func (f *fakeBackend) deleteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.delete
}

func newSession(t *testing.T, token string) (*session.Session, credential.Store) {
	t.Helper()
	store := credential.NewMemoryStore()
	if token != "" {
		require.NoError(t, store.Set(credential.TokenKey, token))
	}
	sess, err := session.Open(store, nil)
	require.NoError(t, err)
	return sess, store
}

func storedToken(t *testing.T, store credential.Store) (string, bool) {
	t.Helper()
	v, ok, err := store.Get(credential.TokenKey)
	require.NoError(t, err)
	return v, ok
}
