package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestDetectImage(t *testing.T) {
	tests := map[string]struct {
		data        []byte
		contentType string
		ext         string
	}{
		"png":  {pngHeader, "image/png", "png"},
		"gif":  {[]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"), "image/gif", "gif"},
		"jpeg": {[]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01"), "image/jpeg", "jpg"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			img, err := DetectImage(bytes.NewReader(tc.data))
			require.NoError(t, err)
			assert.Equal(t, tc.contentType, img.ContentType)
			assert.Equal(t, tc.ext, img.Ext)
			assert.Equal(t, tc.data, img.Data)
		})
	}
}

func TestDetectImage_RejectsNonImages(t *testing.T) {
	_, err := DetectImage(strings.NewReader("<html><body>not an image</body></html>"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDetectImage_RejectsOversized(t *testing.T) {
	body := io.MultiReader(bytes.NewReader(pngHeader), bytes.NewReader(make([]byte, MaxImageSize)))
	_, err := DetectImage(body)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestImageKey(t *testing.T) {
	now := time.UnixMilli(1760000000123)
	key := ImageKey(now, "png")
	assert.Regexp(t, regexp.MustCompile(`^blog-images/1760000000123-[0-9a-z]{26}\.png$`), key)
	assert.NotEqual(t, key, ImageKey(now, "png"))
}

type recordingStore struct {
	obj  Object
	body []byte
	err  error
}

func (r *recordingStore) Put(_ context.Context, obj Object) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.obj = obj
	r.body, _ = io.ReadAll(obj.Body)
	return "https://cdn.example.com/" + obj.Key, nil
}

func TestUploadImage(t *testing.T) {
	store := &recordingStore{}
	img := &Image{ContentType: "image/png", Ext: "png", Data: pngHeader}

	url, key, err := UploadImage(context.Background(), store, img, time.UnixMilli(1000))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
	assert.True(t, strings.HasPrefix(key, "blog-images/1000-"))
	assert.Equal(t, "public, max-age=3600", store.obj.CacheControl)
	assert.Equal(t, "image/png", store.obj.ContentType)
	assert.Equal(t, pngHeader, store.body)

	failing := &recordingStore{err: errors.New("bucket gone")}
	_, _, err = UploadImage(context.Background(), failing, img, time.UnixMilli(1000))
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/my-bucket/blog-images/a.png",
		PublicURL("", "my-bucket", "blog-images/a.png"))
	assert.Equal(t, "https://cdn.example.com/blog-images/a.png",
		PublicURL("https://cdn.example.com/", "my-bucket", "blog-images/a.png"))
}
