package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rorical/katabasis/internal/api"
)

type failingResponder struct{}

func (failingResponder) Reply(context.Context, string, string) (string, error) {
	return "", errors.New("model offline")
}

func newTestServer(t *testing.T, responder Responder) (*api.Client, *TokenIssuer) {
	t.Helper()
	tokens := NewTokenIssuer([]byte("test-secret"), time.Hour)
	srv := httptest.NewServer(NewServer(NewRegistryWithCost(bcrypt.MinCost), tokens, responder, nil).Handler())
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, api.WithHTTPClient(srv.Client())), tokens
}

func signupAndLogin(t *testing.T, client *api.Client) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, client.Signup(ctx, api.SignupRequest{Username: "orpheus", Email: "o@example.com", Password: "lyre"}))
	resp, err := client.Login(ctx, api.LoginRequest{Username: "orpheus", Password: "lyre"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func apiStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Status, apiErr.Detail
}

func TestAccountLifecycle(t *testing.T) {
	client, tokens := newTestServer(t, EchoResponder{})
	ctx := context.Background()

	token := signupAndLogin(t, client)
	subject, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "orpheus", subject)

	resp, err := client.Chat(ctx, token, api.ChatRequest{Message: "hello", NPCName: "guide"})
	require.NoError(t, err)
	assert.Equal(t, `[guide] I hear you. You said "hello". Tell me more.`, resp.Response)

	require.NoError(t, client.DeleteAccount(ctx, token))

	_, err = client.Chat(ctx, token, api.ChatRequest{Message: "hello", NPCName: "guide"})
	assert.ErrorIs(t, err, api.ErrUnknownIdentity, "a deleted user is unknown")

	_, err = client.Login(ctx, api.LoginRequest{Username: "orpheus", Password: "lyre"})
	status, _ := apiStatus(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSignupDuplicate(t *testing.T) {
	client, _ := newTestServer(t, EchoResponder{})
	signupAndLogin(t, client)

	err := client.Signup(context.Background(), api.SignupRequest{Username: "orpheus", Email: "x@example.com", Password: "p"})
	status, detail := apiStatus(t, err)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Username already registered", detail)
}

func TestSignupMissingFields(t *testing.T) {
	client, _ := newTestServer(t, EchoResponder{})
	err := client.Signup(context.Background(), api.SignupRequest{Username: "orpheus"})
	status, _ := apiStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginWrongPassword(t *testing.T) {
	client, _ := newTestServer(t, EchoResponder{})
	signupAndLogin(t, client)

	_, err := client.Login(context.Background(), api.LoginRequest{Username: "orpheus", Password: "harp"})
	status, detail := apiStatus(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Incorrect username or password", detail)
}

func TestChatRequiresToken(t *testing.T) {
	client, _ := newTestServer(t, EchoResponder{})
	ctx := context.Background()

	_, err := client.Chat(ctx, "", api.ChatRequest{Message: "hello"})
	status, _ := apiStatus(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	_, err = client.Chat(ctx, "not-a-jwt", api.ChatRequest{Message: "hello"})
	status, detail := apiStatus(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Could not validate credentials", detail)
	assert.NotErrorIs(t, err, api.ErrUnknownIdentity)
}

func TestChatForeignToken(t *testing.T) {
	client, _ := newTestServer(t, EchoResponder{})
	other := NewTokenIssuer([]byte("other-secret"), time.Hour)
	token, err := other.Issue("orpheus")
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), token, api.ChatRequest{Message: "hello"})
	status, _ := apiStatus(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestChatUnknownUser(t *testing.T) {
	client, tokens := newTestServer(t, EchoResponder{})
	token, err := tokens.Issue("eurydice")
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), token, api.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, api.ErrUnknownIdentity)
}

func TestChatResponderFailure(t *testing.T) {
	client, _ := newTestServer(t, failingResponder{})
	token := signupAndLogin(t, client)

	_, err := client.Chat(context.Background(), token, api.ChatRequest{Message: "hello"})
	status, _ := apiStatus(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestRequestIDEchoed(t *testing.T) {
	tokens := NewTokenIssuer([]byte("s"), time.Hour)
	h := NewServer(NewRegistryWithCost(bcrypt.MinCost), tokens, EchoResponder{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodPost, "/auth/login/", strings.NewReader("{"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Invalid request body", body["detail"])
}

func TestTokenExpiry(t *testing.T) {
	tokens := NewTokenIssuer([]byte("s"), time.Minute)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }
	token, err := tokens.Issue("orpheus")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOpenAIResponder(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Descend, then."},"finish_reason":"stop"}]}`))
	}))
	defer fake.Close()

	r := NewOpenAIResponder("sk-test", fake.URL+"/v1", "gpt-4o-mini")
	reply, err := r.Reply(context.Background(), "ferryman", "where am I?")
	require.NoError(t, err)
	assert.Equal(t, "Descend, then.", reply)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "ferryman")
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "where am I?", got.Messages[1].Content)
}

func TestNewResponder(t *testing.T) {
	assert.IsType(t, EchoResponder{}, NewResponder(Config{}))
	assert.IsType(t, &OpenAIResponder{}, NewResponder(Config{OpenAIKey: "k", OpenAIModel: "m"}))
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, Config{Addr: "127.0.0.1:0", TokenTTL: time.Hour}, nil, func(addr string) { addrCh <- addr })
	}()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, <-done)
}
