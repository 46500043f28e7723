// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package server

import (
	"io/fs"
	"net/http"
)

// mountImages serves files from dir under /images/. Directories are
// reported as not found so the tree cannot be listed.
func (s *Server) mountImages(dir string) {
	files := http.StripPrefix("/images/", http.FileServer(filesOnly{http.Dir(dir)}))
	s.router.Method(http.MethodGet, "/images/*", files)
	s.router.Method(http.MethodHead, "/images/*", files)
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
