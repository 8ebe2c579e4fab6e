package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorageGetSet(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "s1", "potter-cart")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "s1", "potter-cart", `[{"quantity":1}]`))
	require.NoError(t, s.Set(ctx, "s2", "potter-cart", `[]`))

	v, ok, err := s.Get(ctx, "s1", "potter-cart")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"quantity":1}]`, v)

	v, _, err = s.Get(ctx, "s2", "potter-cart")
	require.NoError(t, err)
	require.Equal(t, `[]`, v)
}
