package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Rorical/katabasis/internal/api"
	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/internal/session"
)

// AccountBackend deletes the authenticated account.
type AccountBackend interface {
	DeleteAccount(ctx context.Context, token string) error
}

// AccountController handles the irreversible termination of the account.
// Nothing destructive can happen until the confirmation gate was opened.
type AccountController struct {
	backend AccountBackend
	session *session.Session
	effects Effects
	log     *zap.Logger

	mu          sync.Mutex
	confirmOpen bool
	deleting    Gate
}

func NewAccountController(backend AccountBackend, sess *session.Session, effects Effects, log *zap.Logger) *AccountController {
	if effects == nil {
		effects = Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountController{
		backend: backend,
		session: sess,
		effects: effects,
		log:     log,
	}
}

// ConfirmOpen reports whether the confirmation gate is open.
func (a *AccountController) ConfirmOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.confirmOpen
}

// Deleting reports whether a termination request is in flight.
func (a *AccountController) Deleting() bool { return a.deleting.Pending() }

// RequestTermination opens the confirmation gate. It sends nothing.
func (a *AccountController) RequestTermination() bool {
	if a.deleting.Pending() {
		return false
	}
	a.mu.Lock()
	a.confirmOpen = true
	a.mu.Unlock()
	return true
}

// CancelTermination closes the gate. It cannot interrupt a request in flight.
func (a *AccountController) CancelTermination() bool {
	if a.deleting.Pending() {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.confirmOpen {
		return false
	}
	a.confirmOpen = false
	return true
}

// Termination is a confirmed deletion whose request has not been sent yet.
type Termination struct {
	ctrl *AccountController
	done atomic.Bool
}

// BeginTermination marks the deletion as pending. It is a no-op unless the
// gate is open and no deletion is already running.
func (a *AccountController) BeginTermination() (*Termination, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.confirmOpen {
		return nil, false
	}
	if !a.deleting.TryEnter() {
		return nil, false
	}
	return &Termination{ctrl: a}, true
}

// Run sends the deletion. The gate is closed and the pending flag cleared on
// every path, only after the outcome has been applied.
func (t *Termination) Run(ctx context.Context) error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}
	a := t.ctrl
	defer func() {
		a.mu.Lock()
		a.confirmOpen = false
		a.mu.Unlock()
		a.deleting.Leave()
	}()
	token, _ := a.session.Token()

	err := a.backend.DeleteAccount(ctx, token)
	if err != nil {
		a.log.Warn("account deletion failed", zap.Error(err))
		notice := models.Notice{
			Title:   "Account not deleted",
			Message: "Failed to delete account. Please try again.",
		}
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			notice.Detail = apiErr.Detail
		}
		a.effects.Notify(notice)
		return err
	}

	a.log.Info("account deleted")
	if serr := a.session.Terminate(); serr != nil {
		a.log.Error("credential store not cleared", zap.Error(serr))
	}
	a.effects.Navigate(models.ViewLogin)
	return nil
}

// ConfirmTermination is BeginTermination followed by Run. It returns
// ErrNotConfirmed when the preconditions do not hold.
func (a *AccountController) ConfirmTermination(ctx context.Context) error {
	t, ok := a.BeginTermination()
	if !ok {
		return ErrNotConfirmed
	}
	return t.Run(ctx)
}
