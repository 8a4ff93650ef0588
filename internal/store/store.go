package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"docket/internal/logging"
	"docket/internal/record"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db        *sql.DB
	path      string
	lock      *flock.Flock
	logger    *slog.Logger
	threshold int
	sessionID string
	buffer    []*record.Record
	writable  bool
}

// Open initializes or connects to the catalog database as the single writer.
// An exclusive lock is taken on `<path>.lock`; a second writer gets ErrLocked.
// When the database already exists, policy decides: append keeps it,
// overwrite recreates it, error returns ErrConflict.
func Open(path string, policy Policy, threshold int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if _, ok := policySet[policy]; !ok {
		return nil, fmt.Errorf("unknown store policy %q", policy)
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("flush threshold must be positive, got %d", threshold)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	release := func() { _ = lock.Unlock() }

	if info, statErr := os.Stat(path); statErr == nil {
		if info.IsDir() {
			release()
			return nil, fmt.Errorf("store path %s is a directory", path)
		}
		switch policy {
		case PolicyError:
			release()
			return nil, fmt.Errorf("%w: %s (choose the append or overwrite policy)", ErrConflict, path)
		case PolicyOverwrite:
			for _, stale := range []string{path, path + "-wal", path + "-shm"} {
				if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
					release()
					return nil, fmt.Errorf("remove existing store %s: %w", stale, err)
				}
			}
		case PolicyAppend:
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		release()
		return nil, fmt.Errorf("stat store: %w", statErr)
	}

	db, err := openDB(path)
	if err != nil {
		release()
		return nil, err
	}

	s := &Store{
		db:        db,
		path:      path,
		lock:      lock,
		logger:    logging.NewComponentLogger(logger, "store"),
		threshold: threshold,
		writable:  true,
	}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		release()
		return nil, err
	}

	s.logger.Debug("store opened",
		logging.String(logging.FieldPath, path),
		logging.String("policy", string(policy)))
	return s, nil
}

// OpenRead connects to an existing catalog database without taking the writer
// lock. A missing database is ErrMissing, not an empty store.
func OpenRead(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("stat store: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("store path %s is a directory", path)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, path: path, logger: logging.NewNop()}
	if err := s.checkSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// Close closes the database and releases the writer lock if held.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if len(s.buffer) > 0 {
		s.logger.Warn("closing store with unflushed records", logging.Int(logging.FieldCount, len(s.buffer)))
	}
	err := s.db.Close()
	s.db = nil
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
		s.lock = nil
	}
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// InsertSession records the run's session row. Must be called before Enqueue;
// subsequent file rows reference this session.
func (s *Store) InsertSession(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("session is nil")
	}
	if !s.writable {
		return ErrReadOnly
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	searchDirs, err := json.Marshal(emptyIfNil(session.SearchDirs))
	if err != nil {
		return fmt.Errorf("marshal search dirs: %w", err)
	}
	excludeDirs, err := json.Marshal(emptyIfNil(session.ExcludeDirs))
	if err != nil {
		return fmt.Errorf("marshal exclude dirs: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
            session_id, search_dirs, base_dir, exclude_dirs, content_check,
            hash_algorithm, buffer_size, flush_threshold, import_source, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		string(searchDirs),
		session.BaseDir,
		string(excludeDirs),
		boolToInt(session.ContentCheck),
		session.HashAlgorithm,
		session.BufferSize,
		session.FlushThreshold,
		nullableString(session.ImportSource),
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	s.sessionID = session.ID
	s.logger.Debug("session recorded", logging.String(logging.FieldSession, session.ID))
	return nil
}

// Enqueue stages one record for the next batch write, flushing when the
// buffer reaches the threshold.
func (s *Store) Enqueue(ctx context.Context, rec *record.Record) error {
	if !s.writable {
		return ErrReadOnly
	}
	if rec == nil {
		return errors.New("record is nil")
	}
	s.buffer = append(s.buffer, rec)
	if len(s.buffer) >= s.threshold {
		return s.Flush(ctx)
	}
	return nil
}

// Flush writes all buffered records in one transaction. The buffer is cleared
// only after a successful commit, so a failed flush can be retried.
func (s *Store) Flush(ctx context.Context) error {
	if len(s.buffer) == 0 {
		return nil
	}
	if !s.writable {
		return ErrReadOnly
	}
	if s.sessionID == "" {
		return errors.New("flush before session insert")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (
            file_key, relative_path, filename, extension, size_bytes,
            human_readable_size, checksum, hash_algorithm, session_id
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range s.buffer {
		if _, err := stmt.ExecContext(
			ctx,
			rec.Key(),
			rec.RelPath,
			rec.Name,
			rec.Extension,
			sizeValue(rec),
			rec.HumanSize(),
			rec.Checksum,
			rec.HashAlgorithm,
			s.sessionID,
		); err != nil {
			return fmt.Errorf("insert file %s: %w", rec.RelPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.logger.Debug("flushed batch", logging.Int(logging.FieldCount, len(s.buffer)))
	s.buffer = s.buffer[:0]
	return nil
}

// Buffered returns the number of records staged but not yet flushed.
func (s *Store) Buffered() int { return len(s.buffer) }

// Count returns the number of file rows in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM files").Scan(&count); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return count, nil
}

// LoadAll returns every file row across all sessions in insertion order,
// reconstructed against each row's originating base directory.
func (s *Store) LoadAll(ctx context.Context) ([]*record.Record, error) {
	return s.loadRecords(ctx, "")
}

// LoadSession returns the file rows of one session in insertion order.
func (s *Store) LoadSession(ctx context.Context, sessionID string) ([]*record.Record, error) {
	if sessionID == "" {
		return nil, errors.New("session id is empty")
	}
	return s.loadRecords(ctx, sessionID)
}

func (s *Store) loadRecords(ctx context.Context, sessionID string) ([]*record.Record, error) {
	query := `SELECT f.relative_path, f.filename, f.extension, f.size_bytes,
        f.checksum, f.hash_algorithm, s.base_dir
        FROM files f JOIN sessions s ON s.session_id = f.session_id`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE f.session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY f.rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		var (
			relPath, name, extension string
			checksum, algorithm      string
			baseDir                  string
			size                     sql.NullInt64
		)
		if err := rows.Scan(&relPath, &name, &extension, &size, &checksum, &algorithm, &baseDir); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		rec := record.FromStoreRow(baseDir, relPath, name, extension)
		if size.Valid {
			rec.SetSize(size.Int64)
		}
		if checksum != "" {
			rec.Checksum = checksum
			rec.HashAlgorithm = algorithm
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file rows: %w", err)
	}
	return records, nil
}

// Session fetches one session row by id, nil when absent.
func (s *Store) Session(ctx context.Context, sessionID string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, search_dirs, base_dir, exclude_dirs, content_check,
            hash_algorithm, buffer_size, flush_threshold, import_source, created_at
        FROM sessions WHERE session_id = ?`, sessionID)
	session, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// Sessions lists all sessions oldest-first with their file counts.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.session_id, s.search_dirs, s.base_dir, s.exclude_dirs, s.content_check,
            s.hash_algorithm, s.buffer_size, s.flush_threshold, s.import_source, s.created_at,
            COUNT(f.file_key)
        FROM sessions s LEFT JOIN files f ON f.session_id = s.session_id
        GROUP BY s.session_id
        ORDER BY s.rowid`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var count int
		session, err := scanSession(func(dest ...any) error {
			dest = append(dest, &count)
			return rows.Scan(dest...)
		})
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		session.FileCount = count
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return sessions, nil
}

func scanSession(scan func(dest ...any) error) (*Session, error) {
	var (
		session                  Session
		searchDirs, excludeDirs  string
		contentCheck             int
		importSource             sql.NullString
		createdAt                string
	)
	if err := scan(
		&session.ID, &searchDirs, &session.BaseDir, &excludeDirs, &contentCheck,
		&session.HashAlgorithm, &session.BufferSize, &session.FlushThreshold,
		&importSource, &createdAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(searchDirs), &session.SearchDirs); err != nil {
		return nil, fmt.Errorf("decode search dirs: %w", err)
	}
	if err := json.Unmarshal([]byte(excludeDirs), &session.ExcludeDirs); err != nil {
		return nil, fmt.Errorf("decode exclude dirs: %w", err)
	}
	session.ContentCheck = contentCheck != 0
	session.ImportSource = importSource.String
	session.CreatedAt = parseTimeString(createdAt)
	return &session, nil
}

func parseTimeString(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func sizeValue(rec *record.Record) any {
	if !rec.SizeKnown {
		return nil
	}
	return rec.Size
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
