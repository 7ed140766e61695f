package core

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/Rorical/katabasis/internal/api"
	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/internal/session"
)

// AuthBackend performs the unauthenticated account exchanges.
type AuthBackend interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Signup(ctx context.Context, req api.SignupRequest) error
}

// SignupForm is what the signup view collects.
type SignupForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Authenticator logs in and signs up. A successful login is the only way a
// token enters the session.
type Authenticator struct {
	backend AuthBackend
	session *session.Session
	effects Effects
	log     *zap.Logger
	busy    Gate
}

func NewAuthenticator(backend AuthBackend, sess *session.Session, effects Effects, log *zap.Logger) *Authenticator {
	if effects == nil {
		effects = Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{
		backend: backend,
		session: sess,
		effects: effects,
		log:     log,
	}
}

// Busy reports whether a login or signup is in flight.
func (a *Authenticator) Busy() bool { return a.busy.Pending() }

// Login stores the issued token and moves to the chat view. Errors are
// *ValidationError or *RejectedError, both safe to show as-is.
func (a *Authenticator) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Message: "Username is required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	if !a.busy.TryEnter() {
		return ErrBusy
	}
	defer a.busy.Leave()

	resp, err := a.backend.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		a.log.Info("login refused", zap.Error(err))
		return rejected(err, "Login failed. Please check your credentials.", "An error occurred during login.")
	}
	if err := a.session.Establish(resp.AccessToken); err != nil {
		a.log.Error("could not persist token", zap.Error(err))
		return &RejectedError{Message: "An error occurred during login.", Err: err}
	}
	a.log.Info("logged in", zap.String("username", username))
	a.effects.Navigate(models.ViewChat)
	return nil
}

// Signup validates locally before anything is sent, then creates the
// account and moves to the login view.
func (a *Authenticator) Signup(ctx context.Context, form SignupForm) error {
	if err := ValidateSignup(form); err != nil {
		return err
	}
	if !a.busy.TryEnter() {
		return ErrBusy
	}
	defer a.busy.Leave()

	err := a.backend.Signup(ctx, api.SignupRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		a.log.Info("signup refused", zap.Error(err))
		return rejected(err, "Signup failed. Please try again.", "An error occurred during signup.")
	}
	a.log.Info("signed up", zap.String("username", form.Username))
	a.effects.Navigate(models.ViewLogin)
	return nil
}

// Logout forgets the token without telling the backend.
func (a *Authenticator) Logout() error {
	err := a.session.Invalidate()
	a.effects.Navigate(models.ViewLogin)
	return err
}

// ValidateSignup checks required fields, the email shape and that both
// passwords match.
func ValidateSignup(form SignupForm) error {
	required := []struct {
		field, label, value string
	}{
		{"username", "Username", form.Username},
		{"email", "Email", form.Email},
		{"password", "Password", form.Password},
		{"confirm_password", "Confirm password", form.ConfirmPassword},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: r.label + " is required"}
		}
	}
	if _, err := mail.ParseAddress(form.Email); err != nil {
		return &ValidationError{Field: "email", Message: "Enter a valid email address"}
	}
	if form.Password != form.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "Passwords do not match"}
	}
	return nil
}

// rejected keeps the server's detail verbatim when there is one.
func rejected(err error, fallback, transport string) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Detail
		if msg == "" {
			msg = fallback
		}
		return &RejectedError{Message: msg, Err: err}
	}
	return &RejectedError{Message: transport, Err: err}
}
