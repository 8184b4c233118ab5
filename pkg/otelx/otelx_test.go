package otelx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/brandhub/pkg/otelx"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := otelx.Setup(context.Background(), otelx.Config{ServiceName: "invites"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so nothing is exported.
	shutdown, err := otelx.Setup(context.Background(), otelx.Config{
		ServiceName: "invites",
		Version:     "test",
		Endpoint:    "http://192.0.2.1:4318",
		SampleRatio: 0.5,
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestRecordError(t *testing.T) {
	_, span := otelx.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	require.NoError(t, otelx.RecordError(span, nil))
	boom := errors.New("boom")
	require.ErrorIs(t, otelx.RecordError(span, boom), boom)
}
