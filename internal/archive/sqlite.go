package archive

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/go-libsql"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Ensure SQLIndex implements interfaces.ArchiveIndex
var _ interfaces.ArchiveIndex = (*SQLIndex)(nil)

// SQLIndex keeps the archive metadata in an embedded libsql database at
// <workdir>/icondb/index.db. Artifacts stay on disk in the same layout as
// the filesystem backend.
type SQLIndex struct {
	db     *sql.DB
	dir    string
	logger *zap.Logger
}

// NewSQLIndex opens (or creates) the database and applies the embedded
// schema migrations.
func NewSQLIndex(workdir string, logger *zap.Logger) (*SQLIndex, error) {
	dir := filepath.Join(workdir, indexDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	dbPath := filepath.Join(dir, "index.db")
	db, err := sql.Open("libsql", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate index database: %w", err)
	}

	logger.Info("Archive index database ready", zap.String("path", dbPath))
	return &SQLIndex{db: db, dir: dir, logger: logger}, nil
}

// ArtifactPath returns where the built artifact for a release lives.
func (ix *SQLIndex) ArtifactPath(release models.ReleaseInstant) string {
	return filepath.Join(ix.dir, "forecast-"+release.Identifier()+artifactSuffix)
}

// ReadEntry returns nil when no row exists. A row that cannot be scanned
// back into an entry is reported as models.ErrCorruptEntry.
func (ix *SQLIndex) ReadEntry(ctx context.Context, release models.ReleaseInstant) (*models.ArchiveEntry, error) {
	row := ix.db.QueryRowContext(ctx, `
		SELECT release, fingerprint, status, build_id, artifact_path, size_bytes, created_at, completed_at
		FROM archive_entries WHERE release = ?`, release.Identifier())

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptEntry, err)
	}
	return entry, nil
}

// WriteEntry upserts the row for the entry's release.
func (ix *SQLIndex) WriteEntry(ctx context.Context, entry models.ArchiveEntry) error {
	var completedAt any
	if entry.CompletedAt != nil {
		completedAt = entry.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO archive_entries
			(release, fingerprint, status, build_id, artifact_path, size_bytes, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(release) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			status = excluded.status,
			build_id = excluded.build_id,
			artifact_path = excluded.artifact_path,
			size_bytes = excluded.size_bytes,
			created_at = excluded.created_at,
			completed_at = excluded.completed_at`,
		entry.Release.Identifier(), entry.Fingerprint, string(entry.Status), entry.BuildID,
		entry.ArtifactPath, entry.SizeBytes, entry.CreatedAt.UTC().Format(time.RFC3339Nano), completedAt)
	if err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// DeleteEntry removes the row plus the artifact and any staging file.
func (ix *SQLIndex) DeleteEntry(ctx context.Context, release models.ReleaseInstant) error {
	for _, path := range []string{
		ix.ArtifactPath(release),
		ix.ArtifactPath(release) + tempSuffix,
	} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}
	if _, err := ix.db.ExecContext(ctx,
		`DELETE FROM archive_entries WHERE release = ?`, release.Identifier()); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// ListEntries returns all entries in release order. Unscannable rows are
// logged and skipped.
func (ix *SQLIndex) ListEntries(ctx context.Context) ([]models.ArchiveEntry, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT release, fingerprint, status, build_id, artifact_path, size_bytes, created_at, completed_at
		FROM archive_entries ORDER BY release`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ArchiveEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			ix.logger.Warn("Skipping corrupt archive entry row", zap.Error(err))
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (ix *SQLIndex) Close() error {
	return ix.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.ArchiveEntry, error) {
	var (
		releaseID   string
		status      string
		createdAt   string
		completedAt sql.NullString
		entry       models.ArchiveEntry
	)
	if err := row.Scan(&releaseID, &entry.Fingerprint, &status, &entry.BuildID,
		&entry.ArtifactPath, &entry.SizeBytes, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	release, err := models.ParseReleaseIdentifier(releaseID)
	if err != nil {
		return nil, err
	}
	entry.Release = release
	entry.Status = models.BuildStatus(status)

	entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at for %s: %w", releaseID, err)
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad completed_at for %s: %w", releaseID, err)
		}
		entry.CompletedAt = &t
	}
	return &entry, nil
}
