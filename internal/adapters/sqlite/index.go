// Package sqlite keeps the revision history of memory bank documents in a
// SQLite database. Only metadata is stored; content stays on disk.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3"

	"memorybank/internal/domain"
	"memorybank/internal/ports"
)

const (
	schemaVersion = "1"

	// DefaultRetention is how many revisions are kept per document
	DefaultRetention = 200
)

// Index implements ports.RevisionIndex using SQLite
type Index struct {
	db        *sql.DB
	dbPath    string
	retention int
}

// Ensure Index implements RevisionIndex
var _ ports.RevisionIndex = (*Index)(nil)

// Open opens the history database for the memory bank at root, stored in
// the XDG data directory under a name derived from the root path.
func Open(root string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	return OpenPath(DatabasePath(abs))
}

// OpenPath opens or creates the database at dbPath
func OpenPath(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	// WAL lets the TUI read while the MCP server writes
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	idx := &Index{db: db, dbPath: dbPath, retention: DefaultRetention}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	return idx, nil
}

// SetRetention changes how many revisions are kept per document
func (idx *Index) SetRetention(n int) {
	if n > 0 {
		idx.retention = n
	}
}

// Path returns the database file path
func (idx *Index) Path() string {
	return idx.dbPath
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

func (idx *Index) migrate() error {
	var version string
	err := idx.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err == nil && version != schemaVersion {
		// History is disposable; an old layout is dropped rather than converted
		if _, err := idx.db.Exec(`DROP TABLE IF EXISTS revisions`); err != nil {
			return err
		}
	}

	_, err = idx.db.Exec(`
		CREATE TABLE IF NOT EXISTS revisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_type TEXT NOT NULL,
			path TEXT NOT NULL,
			checksum INTEGER NOT NULL,
			status TEXT NOT NULL,
			mtime INTEGER NOT NULL,
			created INTEGER NOT NULL,
			recorded_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_revisions_type ON revisions(doc_type, id);
	`)
	if err != nil {
		return err
	}

	_, err = idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	return err
}

// Record appends rev unless it repeats the latest revision of its document.
// Revisions produced by self-healing are always kept.
func (idx *Index) Record(rev domain.Revision) error {
	if !rev.Type.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrUnknownDocument, int(rev.Type))
	}

	tx, err := idx.begin()
	if err != nil {
		return err
	}
	defer tx.rollback()

	if !rev.Created {
		latest, ok, err := tx.latestChecksum(rev.Type)
		if err != nil {
			return err
		}
		if ok && latest == rev.Checksum {
			return nil
		}
	}

	if err := tx.insert(rev); err != nil {
		return err
	}
	if err := tx.prune(rev.Type, idx.retention); err != nil {
		return err
	}
	return tx.commit()
}

// History returns up to limit revisions of docType, newest first.
// A limit of zero or less returns every kept revision.
func (idx *Index) History(docType domain.DocumentType, limit int) ([]domain.Revision, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := idx.db.Query(`
		SELECT doc_type, path, checksum, status, mtime, created, recorded_at
		FROM revisions WHERE doc_type = ?
		ORDER BY id DESC LIMIT ?
	`, docType.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []domain.Revision
	for rows.Next() {
		var (
			rev        domain.Revision
			key        string
			checksum   int64
			status     string
			recordedAt int64
		)
		if err := rows.Scan(&key, &rev.Path, &checksum, &status, &rev.Mtime, &rev.Created, &recordedAt); err != nil {
			return nil, err
		}
		rev.Type, err = domain.ParseDocumentType(key)
		if err != nil {
			return nil, err
		}
		rev.Checksum = uint64(checksum)
		rev.Status = domain.ValidationStatus(status)
		rev.RecordedAt = time.Unix(0, recordedAt)
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

// DatabasePath returns the path of the history database for root
func DatabasePath(root string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "memorybank", hashRoot(root)+".db")
}

// hashRoot returns a short stable name for a root path
func hashRoot(root string) string {
	return strconv.FormatUint(xxhash.Sum64String(root), 16)
}

var errClosed = errors.New("index is closed")

func (idx *Index) begin() (*revisionTx, error) {
	if idx.db == nil {
		return nil, errClosed
	}
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &revisionTx{tx: tx}, nil
}
