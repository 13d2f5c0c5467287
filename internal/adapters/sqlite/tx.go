package sqlite

import (
	"database/sql"
	"errors"

	"memorybank/internal/domain"
)

// revisionTx groups the statements of one Record call
type revisionTx struct {
	tx *sql.Tx
}

// latestChecksum returns the checksum of the newest revision of docType
func (t *revisionTx) latestChecksum(docType domain.DocumentType) (uint64, bool, error) {
	var checksum int64
	err := t.tx.QueryRow(`
		SELECT checksum FROM revisions WHERE doc_type = ?
		ORDER BY id DESC LIMIT 1
	`, docType.String()).Scan(&checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint64(checksum), true, nil
}

// insert adds a revision. Checksums are stored as their int64 bit pattern
// because the driver rejects uint64 values with the high bit set.
func (t *revisionTx) insert(rev domain.Revision) error {
	_, err := t.tx.Exec(`
		INSERT INTO revisions (doc_type, path, checksum, status, mtime, created, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rev.Type.String(), rev.Path, int64(rev.Checksum), string(rev.Status), rev.Mtime, rev.Created, rev.RecordedAt.UnixNano())
	return err
}

// prune keeps only the newest keep revisions of docType
func (t *revisionTx) prune(docType domain.DocumentType, keep int) error {
	_, err := t.tx.Exec(`
		DELETE FROM revisions
		WHERE doc_type = ? AND id NOT IN (
			SELECT id FROM revisions WHERE doc_type = ? ORDER BY id DESC LIMIT ?
		)
	`, docType.String(), docType.String(), keep)
	return err
}

func (t *revisionTx) commit() error {
	return t.tx.Commit()
}

// rollback aborts the transaction. It is a no-op after commit.
func (t *revisionTx) rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
