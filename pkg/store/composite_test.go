package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-syncloader/pkg/source"
	"github.com/illmade-knight/go-syncloader/pkg/store"
)

func TestNewComposite_RequiresBothSides(t *testing.T) {
	local := store.NewInMemoryStore("")

	_, err := store.NewComposite[string](local, nil)
	require.Error(t, err)

	_, err = store.NewComposite[string](nil, local)
	require.Error(t, err)
}

func TestComposite_RoutesCapabilities(t *testing.T) {
	// Arrange: an in-memory local side and a closure-backed remote side.
	ctx := context.Background()
	local := store.NewInMemoryStore("")
	remote := &source.FuncHandler[string]{
		ReadRemoteFunc: func(_ context.Context) (string, error) {
			return "from-remote", nil
		},
	}
	composite, err := store.NewComposite[string](local, remote)
	require.NoError(t, err)

	// Act & Assert: remote reads go to the remote side.
	value, err := composite.ReadRemote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-remote", value)

	// Local operations go to the local side.
	require.NoError(t, composite.WriteLocal(ctx, "cached"))
	cached, err := composite.ReadLocal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cached", cached)

	require.NoError(t, composite.DeleteLocal(ctx))
	_, err = composite.ReadLocal(ctx)
	assert.ErrorIs(t, err, source.ErrNoLocalData)

	assert.Equal(t, "", composite.EmptyValue())
}
