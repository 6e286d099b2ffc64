package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "order-desk/pkg/errors"
)

func TestMemoryCacheRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewMemoryCacheRepository()
	r.now = func() time.Time { return now }

	_, err := r.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, r.Set(ctx, "k", []byte(`[1,2]`), time.Minute))
	require.NoError(t, r.Set(ctx, "forever", "v", 0))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, v)

	now = now.Add(time.Minute)
	_, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	v, err = r.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, r.Del(ctx, "forever"))
	_, err = r.Get(ctx, "forever")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
