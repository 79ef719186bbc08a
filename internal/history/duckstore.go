// Package history keeps a record of finished exports in DuckDB.
package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/marcboeker/go-duckdb"

	"github.com/pid-digitizer/backend/internal/logging"
	"github.com/pid-digitizer/backend/internal/models"
)

// ErrNotFound is returned for unknown export ids.
var ErrNotFound = errors.New("export not found")

// Options tunes the DuckDB connection.
type Options struct {
	Threads     int
	MemoryLimit string // e.g. "256MB"
}

// FallbackCount summarizes how often a symbol class was drawn with the
// generic shape.
type FallbackCount struct {
	BlockName string    `json:"blockName"`
	Exports   int       `json:"exports"`
	LastSeen  time.Time `json:"lastSeen"`
}

// Store records exports in a DuckDB database file.
type Store struct {
	db     *sql.DB
	dbPath string
	log    *log.Logger
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS exports (
		id              VARCHAR PRIMARY KEY,
		drawing_id      VARCHAR NOT NULL,
		paper_size      VARCHAR NOT NULL,
		file_id         VARCHAR NOT NULL,
		bytes           BIGINT NOT NULL,
		duration_ms     BIGINT NOT NULL,
		blocks          INTEGER NOT NULL,
		insertions      INTEGER NOT NULL,
		line_entities   INTEGER NOT NULL,
		text_entities   INTEGER NOT NULL,
		skipped_deleted INTEGER NOT NULL,
		created_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS block_usage (
		export_id  VARCHAR NOT NULL,
		block_name VARCHAR NOT NULL,
		fallback   BOOLEAN NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at)`,
}

// Open opens or creates the history database at dbPath. An empty path opens
// an in-memory database.
func Open(dbPath string, opts Options) (*Store, error) {
	logger := logging.New("history")

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		var pragmas []string
		if opts.MemoryLimit != "" {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit))
		}
		if opts.Threads > 0 {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
		}
		pragmas = append(pragmas, "PRAGMA enable_progress_bar=false")
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logger.Infof("history database ready at %q", dbPath)
	return &Store{db: db, dbPath: dbPath, log: logger}, nil
}

// Record stores a finished export and the blocks it defined.
func (s *Store) Record(ctx context.Context, rec *models.ExportRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	st := rec.Stats
	_, err = tx.ExecContext(ctx, `
		INSERT INTO exports (id, drawing_id, paper_size, file_id, bytes, duration_ms,
			blocks, insertions, line_entities, text_entities, skipped_deleted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DrawingID, string(rec.PaperSize), rec.FileID, rec.Bytes, rec.DurationMs,
		st.Blocks, st.Insertions, st.LineEntities, st.TextEntities, st.SkippedDeleted, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}

	fallback := make(map[string]bool, len(st.FallbackClasses))
	for _, name := range st.FallbackClasses {
		fallback[name] = true
	}
	for _, name := range st.BlockNames {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO block_usage (export_id, block_name, fallback) VALUES (?, ?, ?)`,
			rec.ID, name, fallback[name])
		if err != nil {
			return fmt.Errorf("insert block usage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debugj(log.JSON{"event": "export_recorded", "id": rec.ID, "blocks": len(st.BlockNames)})
	return nil
}

const selectExports = `
	SELECT id, drawing_id, paper_size, file_id, bytes, duration_ms,
		blocks, insertions, line_entities, text_entities, skipped_deleted, created_at
	FROM exports`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (models.ExportRecord, error) {
	var rec models.ExportRecord
	var paper string
	err := row.Scan(&rec.ID, &rec.DrawingID, &paper, &rec.FileID, &rec.Bytes, &rec.DurationMs,
		&rec.Stats.Blocks, &rec.Stats.Insertions, &rec.Stats.LineEntities, &rec.Stats.TextEntities,
		&rec.Stats.SkippedDeleted, &rec.CreatedAt)
	rec.PaperSize = models.PaperSize(paper)
	return rec, err
}

// Recent returns the latest exports, newest first. Block names are not loaded.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.ExportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectExports+` ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent exports: %w", err)
	}
	defer rows.Close()

	records := make([]models.ExportRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns one export with the blocks it defined.
func (s *Store) Get(ctx context.Context, id string) (*models.ExportRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectExports+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query export: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT block_name, fallback FROM block_usage WHERE export_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("query block usage: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var fallback bool
		if err := rows.Scan(&name, &fallback); err != nil {
			return nil, fmt.Errorf("scan block usage: %w", err)
		}
		rec.Stats.BlockNames = append(rec.Stats.BlockNames, name)
		if fallback {
			rec.Stats.FallbackClasses = append(rec.Stats.FallbackClasses, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FallbackSummary lists the classes most often drawn with the generic shape.
func (s *Store) FallbackSummary(ctx context.Context, limit int) ([]FallbackCount, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.block_name, COUNT(DISTINCT u.export_id) AS n, MAX(e.created_at)
		FROM block_usage u JOIN exports e ON e.id = u.export_id
		WHERE u.fallback
		GROUP BY u.block_name
		ORDER BY n DESC, u.block_name
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query fallbacks: %w", err)
	}
	defer rows.Close()

	var out []FallbackCount
	for rows.Next() {
		var fc FallbackCount
		if err := rows.Scan(&fc.BlockName, &fc.Exports, &fc.LastSeen); err != nil {
			return nil, fmt.Errorf("scan fallback: %w", err)
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// Close closes the database. The file is kept.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
