// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package caption

import (
	"context"
	"log/slog"

	"github.com/glimpse-dev/glimpse/internal/index"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Result is the outcome of captioning a directory.
type Result struct {
	// Captions maps every processed image path to its caption. Images whose
	// captioning failed map to "".
	Captions map[string]string
	// Failed counts images that received an empty caption.
	Failed int
	// Unreadable counts image files that could not be read and were skipped.
	Unreadable int
	// ImageVectors holds one entry per successfully embedded image, in
	// processing order. Empty unless an ImageEmbedder was supplied.
	ImageVectors []index.Entry
}

// Run captions every image in dir. The image embedder is optional.
//
// Captioning failures never abort the run: the image is recorded with an
// empty caption. A run that processes no image at all returns an error.
func Run(ctx context.Context, dir string, c Captioner, ie ImageEmbedder) (*Result, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}

	res := &Result{Captions: make(map[string]string, len(paths))}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := LoadImage(p)
		if err != nil {
			slog.Warn("skipping unreadable image", "path", p, "error", err)
			res.Unreadable++
			continue
		}

		text, err := c.Caption(ctx, img)
		if err != nil {
			slog.Warn("caption failed", "path", p, "captioner", c.Name(), "error", err)
			text = ""
		}
		if text == "" {
			res.Failed++
		}
		res.Captions[p] = text

		if ie != nil {
			vec, err := ie.EmbedImage(ctx, img)
			if err != nil {
				slog.Warn("image embedding failed", "path", p, "embedder", ie.Name(), "error", err)
			} else {
				res.ImageVectors = append(res.ImageVectors, index.Entry{Path: p, Vector: vec})
			}
		}

		slog.Info("processed", "path", p, "caption_chars", len(text))
	}

	if len(res.Captions) == 0 {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRunEmpty, "no images were processed",
			glimpseerr.FieldPath(dir))
	}
	return res, nil
}
