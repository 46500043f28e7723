// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package caption

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/glimpse-dev/glimpse/internal/fsutil"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// SaveCaptions writes captions as a JSON object with two-space indentation.
// Keys are emitted in sorted order. An existing file is replaced.
func SaveCaptions(path string, captions map[string]string) error {
	if captions == nil {
		captions = map[string]string{}
	}
	data, err := json.MarshalIndent(captions, "", "  ")
	if err != nil {
		return glimpseerr.Wrap(err, glimpseerr.CodeCaptionStoreFailure, "encoding captions")
	}
	data = append(data, '\n')

	err = fsutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return glimpseerr.Wrap(err, glimpseerr.CodeCaptionStoreFailure, "writing captions", glimpseerr.FieldPath(path))
	}
	return nil
}

// LoadCaptions reads a caption map written by SaveCaptions.
func LoadCaptions(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, glimpseerr.Wrap(err, glimpseerr.CodeCaptionStoreNotFound, "captions file does not exist",
				glimpseerr.FieldPath(path))
		}
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeCaptionStoreFailure, "reading captions", glimpseerr.FieldPath(path))
	}

	captions := map[string]string{}
	if err := json.Unmarshal(data, &captions); err != nil {
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeCaptionStoreFailure, "parsing captions", glimpseerr.FieldPath(path))
	}
	return captions, nil
}
