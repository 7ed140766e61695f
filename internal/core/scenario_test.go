package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/katabasis/internal/api"
	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/internal/session"
)

func TestLoginThenChatOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username != "a" || req.Password != "b" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "T1", "token_type": "bearer"})
	})
	mux.HandleFunc("POST /chat/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req api.ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultPersona, req.NPCName)
		json.NewEncoder(w).Encode(map[string]string{"response": "hi there"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := api.NewClient(srv.URL, api.WithHTTPClient(srv.Client()))
	sess, store := newSession(t, "")
	effects := &recorder{}

	assert.Equal(t, models.ViewLogin, session.Guard(sess))

	auth := NewAuthenticator(client, sess, effects, nil)
	require.NoError(t, auth.Login(context.Background(), "a", "b"))
	token, _ := storedToken(t, store)
	assert.Equal(t, "T1", token)
	assert.Equal(t, models.ViewChat, session.Guard(sess))

	conv := NewConversation(client, sess, effects)
	require.Equal(t, TurnAnswered, conv.SubmitTurn(context.Background(), "hello"))

	entries := conv.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Content)
	assert.Equal(t, models.User, entries[0].Origin)
	assert.Equal(t, "hi there", entries[1].Content)
	assert.Equal(t, models.Agent, entries[1].Origin)
	assert.Equal(t, []models.View{models.ViewChat}, effects.Views())
}
