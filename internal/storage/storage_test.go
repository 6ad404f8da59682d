package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", "../x.jpg", "a/../../x", "a\\b", "a//b", "."} {
		_, err := cleanKey(bad)
		assert.True(t, errors.Is(err, ErrInvalidKey), bad)
	}
	k, err := cleanKey("form-returns/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, "form-returns/abc.jpg", k)
}

func TestLocalStore_SaveListDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "form-returns/a.jpg", strings.NewReader("one"), 3, "image/jpeg"))
	require.NoError(t, store.Save(ctx, "profiles/b.png", strings.NewReader("two"), 3, "image/png"))

	data, err := os.ReadFile(filepath.Join(dir, "form-returns", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
	assert.Equal(t, "/uploads/form-returns/a.jpg", store.URL("form-returns/a.jpg"))

	objs, err := store.List(ctx, "form-returns")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "form-returns/a.jpg", objs[0].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Delete(ctx, "form-returns/a.jpg"))
	require.NoError(t, store.Delete(ctx, "form-returns/a.jpg"))
	_, err = os.Stat(filepath.Join(dir, "form-returns", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	empty, err := store.List(ctx, "missing-folder")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUploader_DownscalesAndKeepsPNG(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	up := NewUploader(store, 100)
	ctx := context.Background()

	key, err := up.Upload(ctx, "form-returns", bytes.NewReader(pngBytes(t, 400, 200)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "form-returns/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	img, err := imaging.Open(filepath.Join(store.BaseDir(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestUploader_RejectsNonImage(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	up := NewUploader(store, 100)

	_, err = up.Prepare(strings.NewReader("definitely not an image"))
	assert.True(t, errors.Is(err, ErrInvalidImage))

	objs, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, objs)
}
