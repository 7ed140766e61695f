// Package devserver is a local stand-in for the conversational backend. It
// serves the same four endpoints the client talks to, keeps accounts in
// memory and signs its own access tokens.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPersona = "guide"

type Server struct {
	users     *Registry
	tokens    *TokenIssuer
	responder Responder
	log       *zap.Logger
}

func NewServer(users *Registry, tokens *TokenIssuer, responder Responder, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{users: users, tokens: tokens, responder: responder, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login/{$}", s.handleLogin)
	mux.HandleFunc("POST /auth/signup/{$}", s.handleSignup)
	mux.HandleFunc("DELETE /auth/delete-account", s.handleDeleteAccount)
	mux.HandleFunc("POST /chat/{$}", s.handleChat)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return chainMiddlewares(mux, s.withRequestID, s.withLogging)
}

// DTOs

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type chatRequest struct {
	Message string `json:"message"`
	NPCName string `json:"npc_name"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Handlers

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := s.users.Authenticate(req.Username, req.Password); err != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		badRequest(w, "Username, email and password are required")
		return
	}
	err := s.users.Register(req.Username, req.Email, req.Password)
	if errors.Is(err, ErrUserExists) {
		writeDetail(w, http.StatusConflict, "Username already registered")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username, "email": req.Email})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if !s.users.Exists(username) {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(w, "Message must not be empty")
		return
	}
	persona := req.NPCName
	if persona == "" {
		persona = defaultPersona
	}
	reply, err := s.responder.Reply(r.Context(), persona, req.Message)
	if err != nil {
		s.log.Warn("responder failed", zap.Error(err))
		writeDetail(w, http.StatusBadGateway, "The agent is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if err := s.users.Delete(username); err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	s.log.Info("account deleted", zap.String("username", username))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

// authenticate writes a 401 and reports false when the bearer token is
// missing or invalid.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return "", false
	}
	username, err := s.tokens.Verify(token)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return "", false
	}
	return username, true
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeDetail(w, http.StatusBadRequest, msg)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

// Middleware

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID echoes the caller's X-Request-ID, minting one when absent.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info("request",
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// chainMiddlewares applies middlewares in order; the last one runs first.
func chainMiddlewares(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
