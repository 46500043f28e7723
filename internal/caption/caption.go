// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package caption generates text captions for a directory of images using a
// vision-language model.
package caption

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// DefaultPrompt asks the model for a dense description suited to text search.
const DefaultPrompt = "What is this image? Describe it with detailed elements, unique objects, and background context."

// Image is an image file loaded for captioning.
type Image struct {
	Path     string
	Data     []byte
	MIMEType string
}

// Captioner describes one image. Implementations return the trimmed caption
// or an error; Run turns errors into an empty caption.
type Captioner interface {
	Caption(ctx context.Context, img Image) (string, error)
	Name() string
}

// ImageEmbedder embeds image bytes directly, e.g. with a CLIP model.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, img Image) ([]float32, error)
	Name() string
	Model() string
}

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// IsImage reports whether name has a supported image extension. Matching is
// case-insensitive.
func IsImage(name string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ListImages returns the image files directly inside dir, sorted by name.
// Subdirectories are not visited.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, glimpseerr.Wrap(err, glimpseerr.CodeCaptionStoreNotFound, "image directory does not exist",
				glimpseerr.FieldPath(dir))
		}
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeCaptionImageReadFailure, "listing image directory",
			glimpseerr.FieldPath(dir))
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// LoadImage reads path and infers its MIME type from the extension.
func LoadImage(path string) (Image, error) {
	mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Image{}, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "unsupported image extension",
			glimpseerr.FieldPath(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, glimpseerr.Wrap(err, glimpseerr.CodeCaptionImageReadFailure, "reading image",
			glimpseerr.FieldPath(path))
	}
	return Image{Path: path, Data: data, MIMEType: mime}, nil
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URL.
func (img Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + img.Base64()
}
