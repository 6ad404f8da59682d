package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage means the upload could not be decoded as an image.
var ErrInvalidImage = errors.New("file is not a supported image")

// Uploader normalises images before handing them to the store: EXIF
// orientation is applied, the long side is capped and the result re-encoded.
type Uploader struct {
	store   ImageStore
	maxSide int
}

func NewUploader(store ImageStore, maxSide int) *Uploader {
	return &Uploader{store: store, maxSide: maxSide}
}

func (u *Uploader) Store() ImageStore {
	return u.store
}

// Prepared is a decoded and re-encoded image that has not been stored yet.
type Prepared struct {
	data        []byte
	ext         string
	contentType string
}

// Prepare decodes and normalises r. Nothing is written, so callers can
// validate every upload before storing any of them.
func (u *Uploader) Prepare(r io.Reader) (*Prepared, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrInvalidImage
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidImage
	}

	if u.maxSide > 0 {
		img = imaging.Fit(img, u.maxSide, u.maxSide, imaging.Lanczos)
	}

	out := &Prepared{ext: ".jpg", contentType: "image/jpeg"}
	enc := imaging.JPEG
	opts := []imaging.EncodeOption{imaging.JPEGQuality(85)}
	if format == "png" {
		out.ext, out.contentType, enc, opts = ".png", "image/png", imaging.PNG, nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, enc, opts...); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	out.data = buf.Bytes()
	return out, nil
}

// Put stores a prepared image under a new key in folder.
func (u *Uploader) Put(ctx context.Context, folder string, img *Prepared) (string, error) {
	key := NewKey(folder, img.ext)
	if err := u.store.Save(ctx, key, bytes.NewReader(img.data), int64(len(img.data)), img.contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Upload is Prepare followed by Put, for callers storing a single image.
func (u *Uploader) Upload(ctx context.Context, folder string, r io.Reader) (string, error) {
	img, err := u.Prepare(r)
	if err != nil {
		return "", err
	}
	return u.Put(ctx, folder, img)
}

// DeleteAll removes keys, returning the first error after trying every key.
func (u *Uploader) DeleteAll(ctx context.Context, keys ...string) error {
	var first error
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := u.store.Delete(ctx, k); err != nil && first == nil {
			first = err
		}
	}
	return first
}
