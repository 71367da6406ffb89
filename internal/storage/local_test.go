package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveExistsDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	key := "products/test.jpg"
	require.NoError(t, store.Save(ctx, key, strings.NewReader("image-bytes"), 11, "image/jpeg"))

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocal_DeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "products/never-saved.jpg"))
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Save(ctx, "../outside.jpg", strings.NewReader("x"), 1, "image/jpeg")
	assert.Error(t, err)

	err = store.Save(ctx, "/etc/passwd", strings.NewReader("x"), 1, "image/jpeg")
	assert.Error(t, err)
}

func TestLocal_URL(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	assert.Equal(t, "/media/products/a.jpg", store.URL("products/a.jpg"))
}
