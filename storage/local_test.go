package storage_test

import (
	"context"
	"testing"

	"github.com/JamieOgun/PixelPanel/storage"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.LocalStore {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir(), "/storage")
	require.NoError(t, err)
	return store
}

func TestLocalStorePutGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	obj, err := store.Put(ctx, "users/u1/comics/c1/panel_1.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "users/u1/comics/c1/panel_1.png", obj.Path)
	assert.Equal(t, int64(9), obj.Size)
	assert.Equal(t, "image/png", obj.ContentType)

	data, err := store.Get(ctx, "users/u1/comics/c1/panel_1.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestLocalStorePutOverwrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "a/b.png", []byte("one"), "image/png")
	require.NoError(t, err)

	_, err = store.Put(ctx, "a/b.png", []byte("two"), "image/png")
	require.NoError(t, err)

	data, err := store.Get(ctx, "a/b.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestLocalStoreGetMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.Get(context.Background(), "does/not/exist.png")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestLocalStoreRemove(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "a/b.png", []byte("data"), "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, "a/b.png"))

	_, err = store.Get(ctx, "a/b.png")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	assert.ErrorIs(t, store.Remove(ctx, "a/b.png"), storage.ErrObjectNotFound)
}

func TestLocalStoreRemovePrefix(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "users/u1/comics/c1/panel_1.png", []byte("one"), "image/png")
	require.NoError(t, err)
	_, err = store.Put(ctx, "users/u1/comics/c1/panel_2.png", []byte("two"), "image/png")
	require.NoError(t, err)
	_, err = store.Put(ctx, "users/u1/comics/c2/panel_1.png", []byte("keep"), "image/png")
	require.NoError(t, err)

	require.NoError(t, store.RemovePrefix(ctx, "users/u1/comics/c1"))

	_, err = store.Get(ctx, "users/u1/comics/c1/panel_1.png")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	data, err := store.Get(ctx, "users/u1/comics/c2/panel_1.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), data)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "../outside.png", []byte("nope"), "image/png")
	if err != nil {
		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, goerrors.CategoryBadInput, richErr.Category)
		return
	}

	// the cleaned path must still land inside the root
	_, err = store.Get(ctx, "outside.png")
	assert.NoError(t, err)
}

func TestLocalStorePublicURL(t *testing.T) {
	store := newStore(t)

	assert.Equal(t, "/storage/users/u1/panel_1.png", store.PublicURL("users/u1/panel_1.png"))
	assert.Equal(t, "/storage/users/u1/panel_1.png", store.PublicURL("/users/u1/panel_1.png"))
}
