package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-syncloader/pkg/source"
	"github.com/illmade-knight/go-syncloader/pkg/store"
)

type profile struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

func setupRedisStore(t *testing.T) (*store.RedisStore[profile], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := store.NewRedisStore(context.Background(), store.RedisConfig{
		Addr: mr.Addr(),
		Key:  "profile:current",
		TTL:  time.Hour,
	}, profile{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s, mr
}

func TestNewRedisStore_RejectsEmptyKey(t *testing.T) {
	_, err := store.NewRedisStore(context.Background(), store.RedisConfig{Addr: "localhost:0"}, "", zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "key cannot be empty")
}

func TestRedisStore_MissingKeyIsNoLocalData(t *testing.T) {
	s, _ := setupRedisStore(t)

	_, err := s.ReadLocal(context.Background())

	assert.ErrorIs(t, err, source.ErrNoLocalData)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s, _ := setupRedisStore(t)
	stored := profile{Name: "ada", Level: 3}

	// Act
	require.NoError(t, s.WriteLocal(ctx, stored))
	value, err := s.ReadLocal(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, stored, value)
}

func TestRedisStore_WriteAppliesTTL(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s, mr := setupRedisStore(t)
	require.NoError(t, s.WriteLocal(ctx, profile{Name: "ada"}))

	// Act: the entry expires server-side.
	mr.FastForward(2 * time.Hour)

	// Assert
	_, err := s.ReadLocal(ctx)
	assert.ErrorIs(t, err, source.ErrNoLocalData)
}

func TestRedisStore_DeleteLocal(t *testing.T) {
	ctx := context.Background()
	s, _ := setupRedisStore(t)
	require.NoError(t, s.WriteLocal(ctx, profile{Name: "ada"}))

	require.NoError(t, s.DeleteLocal(ctx))

	_, err := s.ReadLocal(ctx)
	assert.ErrorIs(t, err, source.ErrNoLocalData)

	// Deleting an absent key is not an error.
	assert.NoError(t, s.DeleteLocal(ctx))
}

func TestRedisStore_CorruptDataIsAnError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s, mr := setupRedisStore(t)
	require.NoError(t, mr.Set("profile:current", "not-json"))

	// Act
	_, err := s.ReadLocal(ctx)

	// Assert
	require.Error(t, err)
	assert.NotErrorIs(t, err, source.ErrNoLocalData)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestRedisStore_RemoteReadsUnsupported(t *testing.T) {
	s, _ := setupRedisStore(t)

	_, err := s.ReadRemote(context.Background())

	assert.ErrorIs(t, err, source.ErrUnsupported)
}
