// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging turns uploaded product, badge and ingredient images into
// web-ready files. Uploads are sniffed, checked against a pixel budget,
// downscaled to a maximum width and re-encoded before being handed to a
// storage backend. Callers get back an opaque path to store on the record.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // registers the WebP decoder
)

const (
	// DefaultMaxWidth is the widest image kept after processing.
	DefaultMaxWidth = 1600

	// DefaultQuality is the JPEG quality used for re-encoding.
	DefaultQuality = 82

	// MaxPixels guards against decompression bombs.
	MaxPixels = 40_000_000
)

// ErrUnsupportedType is returned for uploads that are not JPEG, PNG, GIF or WebP.
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrTooLarge is returned when the decoded image would exceed MaxPixels.
var ErrTooLarge = errors.New("image dimensions too large")

// Uploader is a storage backend. Put returns the public path of the object.
type Uploader interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, path string) error
}

// allowedTypes maps sniffed content types to whether they may carry alpha.
var allowedTypes = map[string]bool{
	"image/jpeg": false,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Processor resizes and stores uploaded images.
type Processor struct {
	store    Uploader
	maxWidth int
	quality  int
}

// New creates a Processor writing to store with default limits.
func New(store Uploader) *Processor {
	return &Processor{store: store, maxWidth: DefaultMaxWidth, quality: DefaultQuality}
}

// Process validates, downscales and stores an image. name is the kind of
// image ("product", "badge", "ingredient") and becomes the key prefix.
func (p *Processor) Process(ctx context.Context, data []byte, name string) (string, error) {
	out, contentType, ext, err := p.transform(data)
	if err != nil {
		return "", err
	}

	now := time.Now()
	key := fmt.Sprintf("%s/%d/%02d/%s%s", keyPrefix(name), now.Year(), now.Month(), uuid.NewString(), ext)
	path, err := p.store.Put(ctx, key, contentType, out)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	slog.Info("image stored", "key", key, "bytes", len(out), "source_bytes", len(data))
	return path, nil
}

// Remove deletes a previously stored image, logging rather than failing.
func (p *Processor) Remove(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := p.store.Remove(ctx, path); err != nil {
		slog.Warn("image remove failed", "path", path, "error", err)
	}
}

// transform decodes data, scales it down if wider than maxWidth and
// re-encodes it. Opaque sources become JPEG, the rest PNG.
func (p *Processor) transform(data []byte) ([]byte, string, string, error) {
	sniffed := http.DetectContentType(data)
	hasAlpha, ok := allowedTypes[sniffed]
	if !ok {
		return nil, "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, sniffed)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", fmt.Errorf("decode image config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", "", fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	var src image.Image
	if sniffed == "image/gif" {
		// First frame only.
		src, err = gif.Decode(bytes.NewReader(data))
	} else {
		src, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("decode image: %w", err)
	}

	dst := p.scale(src)

	var buf bytes.Buffer
	if hasAlpha {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", ".png", nil
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, "", "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", ".jpg", nil
}

// scale returns src resized to maxWidth, preserving aspect ratio. Images
// already narrow enough are returned as they are.
func (p *Processor) scale(src image.Image) image.Image {
	b := src.Bounds()
	if b.Dx() <= p.maxWidth {
		return src
	}
	height := b.Dy() * p.maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, p.maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// keyPrefix restricts the storage prefix to known image kinds.
func keyPrefix(name string) string {
	switch n := strings.ToLower(name); n {
	case "product", "badge", "ingredient":
		return n + "s"
	default:
		return "images"
	}
}
