package viewer

import (
	"testing"

	"linview/internal/naming"

	"github.com/stretchr/testify/require"
)

func TestSelectStrategy(t *testing.T) {
	opts := DefaultOptions()

	orig := SelectStrategy(naming.VariantOriginal, opts)
	require.False(t, orig.AllowPartialFetch)

	lin := SelectStrategy(naming.VariantLinearized, opts)
	require.True(t, lin.AllowPartialFetch)
	require.Equal(t, 32768, lin.ChunkSizeBytes)
	require.Equal(t, DefaultCMapURL, lin.Resources.CMapURL)

	require.Equal(t, lin, SelectStrategy(naming.VariantLinearized, opts))
}

func TestSelectStrategyCustomChunk(t *testing.T) {
	opts := DefaultOptions()
	opts.ChunkSizeBytes = 65536
	require.Equal(t, 65536, SelectStrategy(naming.VariantLinearized, opts).ChunkSizeBytes)

	opts.ChunkSizeBytes = 0
	require.Equal(t, DefaultChunkSizeBytes, SelectStrategy(naming.VariantLinearized, opts).ChunkSizeBytes)
}

func TestDegradedDisablesPartialFetchOnly(t *testing.T) {
	lin := SelectStrategy(naming.VariantLinearized, DefaultOptions())
	d := lin.Degraded()
	require.False(t, d.AllowPartialFetch)
	require.Equal(t, lin.ChunkSizeBytes, d.ChunkSizeBytes)
	require.True(t, lin.AllowPartialFetch)
}
