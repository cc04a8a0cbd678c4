// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package form

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"hsadmin/internal/resource"
)

var (
	// ErrImageTooLarge is returned for files above the schema's size limit.
	ErrImageTooLarge = errors.New("image is too large")

	// ErrImageType is returned for files whose content is not an accepted
	// image type.
	ErrImageType = errors.New("image type is not allowed")
)

const (
	// previewMaxWidth is the widest preview rendered in the modal.
	previewMaxWidth = 320

	// previewQuality is the JPEG quality of downscaled previews.
	previewQuality = 80

	// maxImagePixels caps decoded dimensions, ~400 MB in RGBA.
	maxImagePixels = 100_000_000

	svgType = "image/svg+xml"
)

// AttachImage checks a picked or dropped file against the schema's limits
// and, if accepted, keeps it for submission and returns its preview as a
// data URI. A rejected file leaves the modal with no image and no preview.
func (f *Form) AttachImage(filename string, data []byte) (string, error) {
	return f.attach(filename, int64(len(data)), data)
}

// AttachUpload is AttachImage for a streamed upload. The declared size is
// checked first, so an oversized file is rejected without being read.
func (f *Form) AttachUpload(filename string, size int64, r io.Reader) (string, error) {
	var data []byte
	if size <= f.schema.Image.MaxBytes {
		var err error
		data, err = io.ReadAll(io.LimitReader(r, f.schema.Image.MaxBytes+1))
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
		size = int64(len(data))
	}
	return f.attach(filename, size, data)
}

func (f *Form) attach(filename string, size int64, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.phase {
	case Closed:
		return "", ErrClosed
	case Submitting:
		return "", ErrBusy
	}

	f.image = nil
	f.preview = ""
	delete(f.errors, FieldImage)

	img, preview, err := checkImage(f.schema.Image, filename, size, data)
	if err != nil {
		if f.errors == nil {
			f.errors = FieldErrors{}
		}
		f.errors[FieldImage] = err.Error()
		return "", err
	}
	f.image = img
	f.preview = preview
	return preview, nil
}

// ClearImage drops the attached file and its preview.
func (f *Form) ClearImage() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = nil
	f.preview = ""
	delete(f.errors, FieldImage)
}

// checkImage validates size first so oversized files are never sniffed or
// decoded.
func checkImage(rules resource.ImageRules, filename string, size int64, data []byte) (*resource.Image, string, error) {
	if size > rules.MaxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds the %s limit", ErrImageTooLarge, humanSize(size), rules.MaxLabel())
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: the file is empty", ErrImageType)
	}

	mt := mimetype.Detect(data)
	contentType := mt.String()
	if mt.Is(svgType) {
		contentType = svgType
	}
	if !rules.Allows(contentType) {
		return nil, "", fmt.Errorf("%w: %s", ErrImageType, mt.String())
	}

	var preview string
	if contentType == svgType {
		preview = dataURI(svgType, data)
	} else {
		thumb, err := previewImage(data)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrImageType, err)
		}
		if thumb == nil {
			preview = dataURI(contentType, data)
		} else {
			preview = dataURI("image/jpeg", thumb)
		}
	}

	return &resource.Image{Filename: filename, ContentType: contentType, Data: data}, preview, nil
}

// previewImage downscales a raster image to previewMaxWidth. It returns nil
// when the image is already narrow enough to show as is.
func previewImage(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	if cfg.Width <= previewMaxWidth {
		return nil, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	height := max(1, int(float64(bounds.Dy())*float64(previewMaxWidth)/float64(bounds.Dx())))
	dst := image.NewRGBA(image.Rect(0, 0, previewMaxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: previewQuality}); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func dataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
