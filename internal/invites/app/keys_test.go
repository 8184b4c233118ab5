package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/brandhub/pkg/cryptox"
	"github.com/aussiebroadwan/brandhub/pkg/jwtx"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"
)

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	s, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return s
}

func TestInitVerifierKeys(t *testing.T) {
	logger := slogx.Discard()

	t.Run("jwks with rotation", func(t *testing.T) {
		first := newSigner(t, "k1")
		second := newSigner(t, "k2")

		var rotated atomic.Bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			set := jwtx.JWKS{Keys: []jwtx.JWK{first.PublicJWK()}}
			if rotated.Load() {
				set.Keys = []jwtx.JWK{second.PublicJWK()}
			}
			_ = json.NewEncoder(w).Encode(set)
		}))
		defer srv.Close()

		keys, refresher, err := InitVerifierKeys(context.Background(), Config{JWKSURL: srv.URL}, logger)
		require.NoError(t, err)
		require.NotNil(t, refresher)
		_, err = keys.Get("k1")
		require.NoError(t, err)

		rotated.Store(true)
		require.NoError(t, refresher.Refresh(context.Background()))
		_, err = keys.Get("k2")
		require.NoError(t, err)
		_, err = keys.Get("k1")
		require.Error(t, err)
	})

	t.Run("jwks unreachable is fatal", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, _, err := InitVerifierKeys(context.Background(), Config{JWKSURL: srv.URL}, logger)
		require.Error(t, err)
	})

	t.Run("static key", func(t *testing.T) {
		pemKey, err := cryptox.GenerateEd25519Key()
		require.NoError(t, err)
		signer, err := jwtx.NewSignerEdDSA("static", pemKey)
		require.NoError(t, err)

		pub, err := cryptox.MarshalEd25519PublicKey(signer.PublicKey())
		require.NoError(t, err)

		keys, refresher, err := InitVerifierKeys(context.Background(), Config{
			PublicKey:   string(pub),
			PublicKeyID: "static",
		}, logger)
		require.NoError(t, err)
		require.Nil(t, refresher)

		v := jwtx.NewVerifierEdDSA(keys, "iss", nil, 0)
		tok, err := signer.Sign(jwtx.NewUserClaims("u1", "a@b.co", nil, time.Minute, "iss", nil, time.Now()))
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.NoError(t, err)
	})

	t.Run("refresher loop stops", func(t *testing.T) {
		r := NewJWKSRefresher(jwtx.NewKeySet(), "http://127.0.0.1:0", 0, logger)
		require.Equal(t, 15*time.Minute, r.Interval)
		r.Start()
		r.Stop()
	})
}
