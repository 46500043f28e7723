// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/glimpse-dev/glimpse/internal/fsutil"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

var flatMagic = [4]byte{'G', 'L', 'X', '1'}

const flatVersion uint32 = 1

// maxFlatValues bounds the float count accepted from a file header.
const maxFlatValues = 1 << 31

// WriteFlat serializes f to w.
//
// Format:
//
//	[4B magic "GLX1"] [4B version] [4B dim] [4B n]
//	[n × dim × 4B float32], little-endian, row-major
func WriteFlat(w io.Writer, f *Flat) error {
	le := binary.LittleEndian
	if _, err := w.Write(flatMagic[:]); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexWriteFailure, "writing index magic")
	}
	for _, v := range []uint32{flatVersion, uint32(f.dim), uint32(f.Len())} {
		if err := binary.Write(w, le, v); err != nil {
			return glimpseerr.Wrapf(err, glimpseerr.CodeIndexWriteFailure, "writing index header")
		}
	}
	if err := binary.Write(w, le, f.data); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexWriteFailure, "writing index vectors")
	}
	return nil
}

// ReadFlat deserializes an index written by WriteFlat.
func ReadFlat(r io.Reader) (*Flat, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeIndexFormatInvalid, "reading index magic")
	}
	if magic != flatMagic {
		return nil, glimpseerr.Errorf(glimpseerr.CodeIndexFormatInvalid, "not a glimpse index (magic %q)", magic[:])
	}

	var header [3]uint32
	if err := binary.Read(br, le, &header); err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeIndexFormatInvalid, "reading index header")
	}
	version, dim, n := header[0], header[1], header[2]
	if version != flatVersion {
		return nil, glimpseerr.Errorf(glimpseerr.CodeIndexFormatInvalid, "unsupported index version %d", version)
	}
	if dim == 0 {
		return nil, glimpseerr.New(glimpseerr.CodeIndexFormatInvalid, "index header has zero dimension")
	}
	total := uint64(dim) * uint64(n)
	if total > maxFlatValues {
		return nil, glimpseerr.Errorf(glimpseerr.CodeIndexFormatInvalid, "index header too large: %d x %d", n, dim)
	}

	f := &Flat{dim: int(dim), data: make([]float32, total)}
	if err := binary.Read(br, le, f.data); err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeIndexFormatInvalid, "reading index vectors")
	}
	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, glimpseerr.New(glimpseerr.CodeIndexFormatInvalid, "trailing bytes after index vectors")
	}
	return f, nil
}

// SaveFlatFile atomically writes f to path.
func SaveFlatFile(path string, f *Flat) error {
	err := fsutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteFlat(w, f)
	})
	if err != nil && glimpseerr.CodeOf(err) == "" {
		return glimpseerr.Wrap(err, glimpseerr.CodeIndexWriteFailure, "saving index", glimpseerr.FieldPath(path))
	}
	return err
}

// LoadFlatFile reads an index from path.
func LoadFlatFile(path string) (*Flat, error) {
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexNotFound, "index file does not exist", glimpseerr.FieldPath(path))
		}
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexReadFailure, "opening index", glimpseerr.FieldPath(path))
	}
	defer func() { _ = fh.Close() }()
	return ReadFlat(fh)
}
