package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Rorical/katabasis/internal/api"
	"github.com/Rorical/katabasis/internal/config"
	"github.com/Rorical/katabasis/internal/core"
	"github.com/Rorical/katabasis/internal/credential"
	"github.com/Rorical/katabasis/internal/session"
)

// Backend is every exchange the client makes. *api.Client implements it.
type Backend interface {
	core.ChatBackend
	core.AccountBackend
	core.AuthBackend
}

// Runtime is what both the TUI and the plain commands need: the profile in
// effect, the credential store behind the session, and the wire client.
type Runtime struct {
	ProfileName string
	Profile     config.Profile
	Log         *zap.Logger
	Store       credential.Store
	Session     *session.Session
	Client      *api.Client
}

// OpenRuntime opens the current profile's credential store and reads the
// session from it. Ephemeral keeps credentials in memory only.
func OpenRuntime(cfg *config.Config, log *zap.Logger, ephemeral bool) (*Runtime, error) {
	if log == nil {
		log = zap.NewNop()
	}
	name := cfg.CurrentName()
	profile := cfg.Current()
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}

	backend := profile.CredentialStore
	if ephemeral {
		backend = credential.BackendMemory
	}
	store, err := credential.Open(backend, cfg.CredentialDir())
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	sess, err := session.Open(store, log.Named("session"))
	if err != nil {
		store.Close()
		return nil, err
	}

	client := api.NewClient(profile.BaseURL,
		api.WithTimeout(profile.RequestTimeout),
		api.WithLogger(log.Named("api")),
	)

	log.Debug("runtime opened",
		zap.String("profile", name),
		zap.String("base_url", profile.BaseURL),
		zap.String("credential_store", backend),
	)
	return &Runtime{
		ProfileName: name,
		Profile:     profile,
		Log:         log,
		Store:       store,
		Session:     sess,
		Client:      client,
	}, nil
}

func (rt *Runtime) Close() error {
	return rt.Store.Close()
}
