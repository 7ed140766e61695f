package devserver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Addr          string        `env:"KATABASIS_DEV_ADDR" envDefault:"127.0.0.1:8000"`
	Secret        string        `env:"KATABASIS_DEV_SECRET"`
	TokenTTL      time.Duration `env:"KATABASIS_DEV_TOKEN_TTL" envDefault:"24h"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// secret returns the configured signing key or a random one. Tokens signed
// with a random key die with the process.
func (c Config) secret() ([]byte, error) {
	if c.Secret != "" {
		return []byte(c.Secret), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}

// NewResponder picks the OpenAI responder when an API key is configured.
func NewResponder(cfg Config) Responder {
	if cfg.OpenAIKey == "" {
		return EchoResponder{}
	}
	return NewOpenAIResponder(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
}

// New assembles a server from cfg.
func New(cfg Config, log *zap.Logger) (*Server, error) {
	key, err := cfg.secret()
	if err != nil {
		return nil, err
	}
	return NewServer(NewRegistry(), NewTokenIssuer(key, cfg.TokenTTL), NewResponder(cfg), log), nil
}

// Serve runs until ctx is cancelled, then shuts down gracefully. ready, when
// non-nil, receives the bound address once the listener is open.
func Serve(ctx context.Context, cfg Config, log *zap.Logger, ready func(addr string)) error {
	srv, err := New(cfg, log)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	if ready != nil {
		ready(ln.Addr().String())
	}

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
