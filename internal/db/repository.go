package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"prose_lens/internal/doc"
)

var ErrNotFound = errors.New("draft not found")

// Draft is a stored document. Only the text and its formatting are kept;
// analysis results are always recomputed.
type Draft struct {
	ID         int64
	Title      string
	SourcePath string
	Blocks     []doc.Block
	UpdatedAt  time.Time
}

type DraftInfo struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	SourcePath string    `json:"sourcePath,omitempty"`
	Size       int64     `json:"size"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SaveDraft inserts d when d.ID is zero and replaces the stored draft
// otherwise. It returns the draft id.
func SaveDraft(dbPath string, d Draft) (int64, error) {
	blob, err := msgpack.Marshal(d.Blocks)
	if err != nil {
		return 0, fmt.Errorf("encode blocks: %w", err)
	}
	size, err := safecast.Conv[int64](len(blob))
	if err != nil {
		return 0, fmt.Errorf("blob size: %w", err)
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}

	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if d.ID == 0 {
		res, err := conn.Exec(
			`INSERT INTO drafts(title, source_path, blocks, size, updated_at) VALUES(?,?,?,?,?)`,
			d.Title, d.SourcePath, blob, size, d.UpdatedAt.UnixMilli(),
		)
		if err != nil {
			return 0, fmt.Errorf("insert draft: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("draft last insert id: %w", err)
		}
		return id, nil
	}

	res, err := conn.Exec(
		`UPDATE drafts SET title = ?, source_path = ?, blocks = ?, size = ?, updated_at = ? WHERE id = ?`,
		d.Title, d.SourcePath, blob, size, d.UpdatedAt.UnixMilli(), d.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update draft: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, fmt.Errorf("%w: %d", ErrNotFound, d.ID)
	}
	return d.ID, nil
}

func LoadDraft(dbPath string, id int64) (Draft, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return Draft{}, err
	}
	defer conn.Close()

	var (
		d       Draft
		source  sql.NullString
		blob    []byte
		updated int64
	)
	row := conn.QueryRow(`SELECT id, title, source_path, blocks, updated_at FROM drafts WHERE id = ?`, id)
	if err := row.Scan(&d.ID, &d.Title, &source, &blob, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Draft{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return Draft{}, fmt.Errorf("scan draft: %w", err)
	}
	if err := msgpack.Unmarshal(blob, &d.Blocks); err != nil {
		return Draft{}, fmt.Errorf("decode blocks: %w", err)
	}
	d.SourcePath = source.String
	d.UpdatedAt = time.UnixMilli(updated)
	return d, nil
}

func ListDrafts(dbPath string) ([]DraftInfo, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.Query(`SELECT id, title, source_path, size, updated_at FROM drafts ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}
	defer rows.Close()

	var out []DraftInfo
	for rows.Next() {
		var (
			info    DraftInfo
			source  sql.NullString
			updated int64
		)
		if err := rows.Scan(&info.ID, &info.Title, &source, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		info.SourcePath = source.String
		info.UpdatedAt = time.UnixMilli(updated)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return out, nil
}

func DeleteDraft(dbPath string, id int64) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := conn.Exec(`DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
