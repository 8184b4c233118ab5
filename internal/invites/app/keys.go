package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aussiebroadwan/brandhub/pkg/cryptox"
	"github.com/aussiebroadwan/brandhub/pkg/jwtx"
)

// InitVerifierKeys loads the keys bearer tokens are verified against.
//
// Key sources:
//   - JWKS URL: fetched once at startup (failure is fatal) and refreshed in
//     the background by the returned JWKSRefresher.
//   - Static public key: a single Ed25519 PEM, inline or from a file, under
//     AUTH_PUBLIC_KEY_ID. The returned refresher is nil.
func InitVerifierKeys(ctx context.Context, cfg Config, logger *slog.Logger) (*jwtx.KeySet, *JWKSRefresher, error) {
	keys := jwtx.NewKeySet()

	if cfg.JWKSURL != "" {
		r := NewJWKSRefresher(keys, cfg.JWKSURL, cfg.JWKSRefreshInterval, logger)
		if err := r.Refresh(ctx); err != nil {
			return nil, nil, fmt.Errorf("initial JWKS fetch: %w", err)
		}
		logger.Info("verification keys loaded from JWKS", "url", cfg.JWKSURL, "num_keys", keys.Len())
		return keys, r, nil
	}

	pemBytes := []byte(cfg.PublicKey)
	if cfg.PublicKeyFile != "" {
		b, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read public key: %w", err)
		}
		pemBytes = b
	}

	pub, err := cryptox.ParseEd25519PublicKey(pemBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse public key: %w", err)
	}
	keys.AddKey(cfg.PublicKeyID, pub)

	logger.Info("static verification key loaded", "kid", cfg.PublicKeyID)
	return keys, nil, nil
}

// JWKSRefresher periodically replaces the key set with the identity
// provider's current JWKS so rotated keys are picked up. A failed refresh
// keeps the previous keys.
type JWKSRefresher struct {
	Keys     *jwtx.KeySet
	URL      string
	Interval time.Duration
	Client   *http.Client
	Logger   *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewJWKSRefresher creates a refresher. If interval is 0 or negative it
// defaults to 15 minutes.
func NewJWKSRefresher(keys *jwtx.KeySet, url string, interval time.Duration, logger *slog.Logger) *JWKSRefresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &JWKSRefresher{
		Keys:     keys,
		URL:      url,
		Interval: interval,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Refresh fetches the JWKS once.
func (r *JWKSRefresher) Refresh(ctx context.Context) error {
	jwks, err := jwtx.FetchJWKS(ctx, r.Client, r.URL)
	if err != nil {
		return err
	}
	return r.Keys.ResetFromJWKS(jwks)
}

// Start begins the background refresh loop.
func (r *JWKSRefresher) Start() {
	go r.run()
	r.Logger.Info("jwks refresher started", "interval", r.Interval)
}

// Stop shuts the loop down and waits for it to exit.
func (r *JWKSRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
	r.Logger.Info("jwks refresher stopped")
}

func (r *JWKSRefresher) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := r.Refresh(ctx); err != nil {
				r.Logger.Error("jwks refresh failed", "error", err)
			} else {
				r.Logger.Debug("jwks refreshed", "num_keys", r.Keys.Len())
			}
			cancel()
		case <-r.stopCh:
			return
		}
	}
}
