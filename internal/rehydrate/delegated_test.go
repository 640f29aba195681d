package rehydrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leedsrising/pdf-to-text/internal/testutil"
)

func TestDelegatedRehydrateEchoesChunksInOrder(t *testing.T) {
	provider := &testutil.MockProvider{ProviderName: "openai", Echo: true}
	r := NewDelegated(provider, DelegatedConfig{Model: "gpt-4o-mini", ChunkBudget: 6})

	text := "alpha\nbravo\ncharl\n"
	out, err := r.Rehydrate(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, text, out)
	assert.Equal(t, 3, provider.Calls())
}

func TestDelegatedRehydrateChunkFailureIsIsolated(t *testing.T) {
	provider := &testutil.MockProvider{
		ProviderName: "openai",
		Echo:         true,
		Err:          errors.New("rate limited"),
		ErrOnCall:    2,
	}
	r := NewDelegated(provider, DelegatedConfig{Model: "gpt-4o-mini", ChunkBudget: 6})

	out, err := r.Rehydrate(context.Background(), "alpha\nbravo\ncharl\n")
	require.NoError(t, err)

	// The failed middle chunk becomes the sentinel; chunks after it still
	// appear in order.
	assert.Equal(t, "alpha\n"+ChunkFailureSentinel+"charl\n", out)
	assert.Equal(t, 3, provider.Calls())
}

func TestDelegatedRehydrateAllChunksFailing(t *testing.T) {
	provider := &testutil.MockProvider{ProviderName: "openai", Err: errors.New("down")}
	r := NewDelegated(provider, DelegatedConfig{Model: "gpt-4o-mini", ChunkBudget: 6})

	out, err := r.Rehydrate(context.Background(), "alpha\nbravo\n")
	require.NoError(t, err)
	assert.Equal(t, ChunkFailureSentinel+ChunkFailureSentinel, out)
}

func TestDelegatedRehydrateEmptyInput(t *testing.T) {
	provider := &testutil.MockProvider{ProviderName: "openai"}
	r := NewDelegated(provider, DelegatedConfig{Model: "gpt-4o-mini"})

	out, err := r.Rehydrate(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, provider.Calls())
}

func TestDelegatedRehydrateCancelledContext(t *testing.T) {
	provider := &testutil.MockProvider{ProviderName: "openai", Echo: true}
	r := NewDelegated(provider, DelegatedConfig{
		Model:             "gpt-4o-mini",
		RequestsPerSecond: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Rehydrate(ctx, "some text")
	assert.ErrorContains(t, err, "rate limiter")
}

func TestNewDelegatedDefaults(t *testing.T) {
	r := NewDelegated(&testutil.MockProvider{ProviderName: "openai"}, DelegatedConfig{})
	assert.Equal(t, DefaultChunkBudget, r.cfg.ChunkBudget)
	assert.Equal(t, 2048, r.cfg.MaxTokens)
	assert.Nil(t, r.limiter)
}
