// Package objectstore uploads blog images to object storage.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
)

// MaxImageSize is the largest accepted upload, 5 MiB.
const MaxImageSize = 5 << 20

const imagePrefix = "blog-images/"

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// allowedImages maps accepted content types to the extension used in object keys.
var allowedImages = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Store writes an object and returns its public URL.
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
}

type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Body         io.Reader
}

// Image is an upload that passed DetectImage.
type Image struct {
	ContentType string
	Ext         string
	Data        []byte
}

// DetectImage reads r up to MaxImageSize and sniffs its content type from
// the bytes themselves; the client-declared type is not trusted.
func DetectImage(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	contentType, _, _ := strings.Cut(mtype.String(), ";")
	ext, ok := allowedImages[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return &Image{ContentType: contentType, Ext: ext, Data: data}, nil
}

// ImageKey names an uploaded image: blog-images/<unix-ms>-<ulid>.<ext>.
func ImageKey(now time.Time, ext string) string {
	id := strings.ToLower(ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String())
	return fmt.Sprintf("%s%d-%s.%s", imagePrefix, now.UnixMilli(), id, ext)
}

// UploadImage stores img under a fresh key and returns the public URL and key.
func UploadImage(ctx context.Context, store Store, img *Image, now time.Time) (url, key string, err error) {
	key = ImageKey(now, img.Ext)
	url, err = store.Put(ctx, Object{
		Key:          key,
		ContentType:  img.ContentType,
		CacheControl: "public, max-age=3600",
		Body:         bytes.NewReader(img.Data),
	})
	if err != nil {
		return "", "", fmt.Errorf("upload %s: %w", key, err)
	}
	return url, key, nil
}
