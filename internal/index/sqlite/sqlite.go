// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package sqlite stores the caption index in a SQLite database using the
// sqlite-vec vec0 virtual table. vec0 performs exact KNN, so results match
// the flat backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/glimpse-dev/glimpse/internal/index"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
	index.RegisterBackend("sqlite", Build, Open)
}

// maxKNN is the largest k vec0 accepts in a single query.
const maxKNN = 4096

// Compile-time interface check.
var _ index.Searcher = (*Searcher)(nil)

// Build writes entries into a fresh database at cfg's SQLite path. The
// database is assembled under a temporary name and renamed into place.
func Build(ctx context.Context, cfg index.Config, entries []index.Entry) error {
	dbPath := cfg.Resolve(cfg.SQLiteFile)
	tmpPath := dbPath + ".building"
	_ = os.Remove(tmpPath)

	if err := writeDB(ctx, tmpPath, entries); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dbPath); err != nil {
		_ = os.Remove(tmpPath)
		return glimpseerr.Wrap(err, glimpseerr.CodeIndexWriteFailure, "moving index database into place",
			glimpseerr.FieldPath(dbPath))
	}
	return nil
}

func writeDB(ctx context.Context, dbPath string, entries []index.Entry) error {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=DELETE&_busy_timeout=5000")
	if err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "opening sqlite db")
	}
	defer func() { _ = db.Close() }()

	dim := len(entries[0].Vector)
	if err := migrate(ctx, db, dim); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	vecStmt, err := tx.PrepareContext(ctx, `INSERT INTO caption_vectors(rowid, embedding) VALUES (?, ?)`)
	if err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "preparing vector insert")
	}
	defer func() { _ = vecStmt.Close() }()

	pathStmt, err := tx.PrepareContext(ctx, `INSERT INTO images(row, path) VALUES (?, ?)`)
	if err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "preparing path insert")
	}
	defer func() { _ = pathStmt.Close() }()

	for row, e := range entries {
		blob, err := sqlite_vec.SerializeFloat32(e.Vector)
		if err != nil {
			return glimpseerr.Wrapf(err, glimpseerr.CodeIndexWriteFailure, "serializing vector %d", row)
		}
		// vec0 rowids start at 1; image rows start at 0.
		if _, err := vecStmt.ExecContext(ctx, row+1, blob); err != nil {
			return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "inserting vector %d", row)
		}
		if _, err := pathStmt.ExecContext(ctx, row, e.Path); err != nil {
			return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "inserting path %d", row)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO index_meta(key, value) VALUES ('dimensions', ?)`, strconv.Itoa(dim)); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "writing index metadata")
	}

	if err := tx.Commit(); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "committing index")
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB, dim int) error {
	vecDDL := fmt.Sprintf(`CREATE VIRTUAL TABLE caption_vectors USING vec0(embedding float[%d])`, dim)
	if _, err := db.ExecContext(ctx, vecDDL); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "creating caption_vectors virtual table")
	}

	const imagesDDL = `
CREATE TABLE images (
	row  INTEGER PRIMARY KEY,
	path TEXT NOT NULL
)`
	if _, err := db.ExecContext(ctx, imagesDDL); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "creating images table")
	}

	const metaDDL = `
CREATE TABLE index_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	if _, err := db.ExecContext(ctx, metaDDL); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "creating index_meta table")
	}
	return nil
}

// Searcher answers KNN queries from a read-only index database. Paths are
// held in memory; vectors stay in SQLite.
type Searcher struct {
	db       *sql.DB
	dim      int
	paths    []string
	manifest *index.Manifest
}

// Open loads the index database named by cfg.
func Open(ctx context.Context, cfg index.Config) (index.Searcher, error) {
	dbPath := cfg.Resolve(cfg.SQLiteFile)
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexNotFound, "index database does not exist",
				glimpseerr.FieldPath(dbPath))
		}
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexReadFailure, "checking index database",
			glimpseerr.FieldPath(dbPath))
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "opening sqlite db")
	}

	s := &Searcher{db: db}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.ManifestFile != "" {
		if s.manifest, err = index.LoadManifest(cfg.Resolve(cfg.ManifestFile)); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Searcher) load(ctx context.Context) error {
	var dimStr string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM index_meta WHERE key = 'dimensions'`).Scan(&dimStr)
	if err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexFormatInvalid, "reading index dimensions")
	}
	if s.dim, err = strconv.Atoi(dimStr); err != nil || s.dim <= 0 {
		return glimpseerr.Errorf(glimpseerr.CodeIndexFormatInvalid, "invalid index dimensions %q", dimStr)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT row, path FROM images ORDER BY row`)
	if err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "reading image paths")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var row int
		var path string
		if err := rows.Scan(&row, &path); err != nil {
			return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "scanning image path")
		}
		if row != len(s.paths) {
			return glimpseerr.Errorf(glimpseerr.CodeIndexMisaligned, "image rows are not contiguous at row %d", row)
		}
		s.paths = append(s.paths, path)
	}
	if err := rows.Err(); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "iterating image paths")
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM caption_vectors`).Scan(&count); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "counting vectors")
	}
	return index.CheckAligned(count, len(s.paths))
}

// Search runs an exact KNN query. Distances are returned squared so they
// compare directly with the flat backend. Rows tied at the k-th distance
// are resolved by row order as in the flat backend: vec0 is asked for more
// rows until the last one fetched lies strictly beyond the cut.
func (s *Searcher) Search(ctx context.Context, query []float32, k int) ([]index.Hit, error) {
	if len(query) != s.dim {
		return nil, glimpseerr.Errorf(glimpseerr.CodeIndexQueryInvalid,
			"query has %d dimensions, index expects %d", len(query), s.dim)
	}
	limit := min(len(s.paths), maxKNN)
	k = min(k, limit)
	if k <= 0 {
		return []index.Hit{}, nil
	}

	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeIndexQueryInvalid, "serializing query vector")
	}

	fetch := min(k+1, limit)
	for {
		hits, err := s.knn(ctx, blob, fetch)
		if err != nil {
			return nil, err
		}
		if len(hits) > k && fetch < limit && hits[len(hits)-1].Distance == hits[k-1].Distance {
			fetch = min(fetch*2, limit)
			continue
		}
		return hits[:min(k, len(hits))], nil
	}
}

// knn returns the n nearest rows ordered by distance, then row.
func (s *Searcher) knn(ctx context.Context, blob []byte, n int) ([]index.Hit, error) {
	const q = `SELECT rowid, distance
FROM caption_vectors
WHERE embedding MATCH ? AND k = ?
ORDER BY distance`

	rows, err := s.db.QueryContext(ctx, q, blob, n)
	if err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "searching vectors")
	}
	defer func() { _ = rows.Close() }()

	hits := make([]index.Hit, 0, n)
	for rows.Next() {
		var rowid int
		var dist float64
		if err := rows.Scan(&rowid, &dist); err != nil {
			return nil, glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "scanning vector result")
		}
		row := rowid - 1
		path, ok := s.Path(row)
		if !ok {
			return nil, glimpseerr.Errorf(glimpseerr.CodeIndexMisaligned, "vector row %d has no image path", row)
		}
		hits = append(hits, index.Hit{Row: row, Path: path, Distance: float32(dist * dist)})
	}
	if err := rows.Err(); err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeIndexDatabaseFailure, "iterating vector results")
	}

	slices.SortStableFunc(hits, func(a, b index.Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return a.Row - b.Row
		}
	})
	return hits, nil
}

func (s *Searcher) Len() int                  { return len(s.paths) }
func (s *Searcher) Dim() int                  { return s.dim }
func (s *Searcher) Manifest() *index.Manifest { return s.manifest }

func (s *Searcher) Path(row int) (string, bool) {
	if row < 0 || row >= len(s.paths) {
		return "", false
	}
	return s.paths[row], true
}

// Close closes the underlying database connection.
func (s *Searcher) Close() error {
	return s.db.Close()
}
