// Package sqlite stores submissions, photos, blobs and operators in a single
// SQLite database. It backs local development and the CLI.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
)

// DB owns the connection shared by the stores.
type DB struct {
	db *sql.DB
}

// Open opens (creating when needed) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func Open(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		dsn += "?_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	s := &DB{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

// Stores returns the repository implementations over this database.
func (s *DB) Stores() *repository.Stores {
	return &repository.Stores{
		Submissions: &SubmissionStore{db: s.db},
		Photos:      &PhotoStore{db: s.db},
		Blobs:       &BlobStore{db: s.db},
		Admins:      &AdminStore{db: s.db},
	}
}

func answerColumns() []string {
	fields := catalog.Fields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.SchemaKey
	}
	return cols
}

func (s *DB) migrate() error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS submissions (\n\tid INTEGER PRIMARY KEY AUTOINCREMENT,\n")
	for _, col := range answerColumns() {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", col)
	}
	b.WriteString(`	status TEXT NOT NULL DEFAULT 'novo',
	observacoes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS submission_photos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	submission_id TEXT NOT NULL,
	file_path TEXT NOT NULL UNIQUE,
	file_name TEXT NOT NULL,
	legenda TEXT NOT NULL DEFAULT '',
	ano TEXT NOT NULL DEFAULT '',
	file_size INTEGER NOT NULL,
	mime_type TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS blobs (
	path TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS admins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, created_at);
CREATE INDEX IF NOT EXISTS idx_photos_submission ON submission_photos(submission_id);
`)
	_, err := s.db.Exec(b.String())
	return err
}

type SubmissionStore struct {
	db *sql.DB
}

var updatable = map[string]bool{"status": true, "observacoes": true, "updated_at": true}

func init() {
	for _, col := range answerColumns() {
		updatable[col] = true
	}
}

func (s *SubmissionStore) Create(ctx context.Context, sub *models.Submission) (string, error) {
	doc := sub.Columns()
	cols := append(answerColumns(), "status", "observacoes", "created_at", "updated_at")
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = doc[c]
	}
	q := fmt.Sprintf("INSERT INTO submissions (%s) VALUES (?%s)",
		strings.Join(cols, ", "), strings.Repeat(", ?", len(cols)-1))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *SubmissionStore) selectColumns() string {
	return "id, " + strings.Join(answerColumns(), ", ") + ", status, observacoes, created_at, updated_at"
}

func (s *SubmissionStore) scan(row interface{ Scan(...any) error }) (*models.Submission, error) {
	cols := append([]string{"id"}, answerColumns()...)
	cols = append(cols, "status", "observacoes", "created_at", "updated_at")
	vals := make([]string, len(cols))
	var id int64
	ptrs := make([]any, len(cols))
	ptrs[0] = &id
	for i := 1; i < len(cols); i++ {
		ptrs[i] = &vals[i]
	}
	if err := row.Scan(ptrs...); err != nil {
		return nil, err
	}
	doc := make(map[string]any, len(cols))
	for i := 1; i < len(cols); i++ {
		doc[cols[i]] = vals[i]
	}
	return models.SubmissionFromColumns(strconv.FormatInt(id, 10), doc), nil
}

func (s *SubmissionStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+s.selectColumns()+" FROM submissions WHERE id = ?", id)
	sub, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return sub, err
}

func (s *SubmissionStore) List(ctx context.Context, status models.Status) ([]*models.Submission, error) {
	q := "SELECT " + s.selectColumns() + " FROM submissions"
	var args []any
	if status != "" && status != models.StatusAny {
		q += " WHERE status = ?"
		args = append(args, string(status))
	}
	q += " ORDER BY created_at DESC, id DESC"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		sub, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SubmissionStore) Update(ctx context.Context, id string, set map[string]string) error {
	if len(set) == 0 {
		return nil
	}
	var (
		assigns []string
		args    []any
	)
	for col, v := range set {
		if !updatable[col] {
			return fmt.Errorf("column %q is not updatable", col)
		}
		assigns = append(assigns, col+" = ?")
		args = append(args, v)
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, "UPDATE submissions SET "+strings.Join(assigns, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *SubmissionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM submissions WHERE id = ?", id)
	return err
}

func (s *SubmissionStore) Count(ctx context.Context, status models.Status) (int, error) {
	q := "SELECT COUNT(*) FROM submissions"
	var args []any
	if status != "" && status != models.StatusAny {
		q += " WHERE status = ?"
		args = append(args, string(status))
	}
	var n int
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

type PhotoStore struct {
	db *sql.DB
}

func (s *PhotoStore) Create(ctx context.Context, p *models.Photo) (string, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO submission_photos
		(submission_id, file_path, file_name, legenda, ano, file_size, mime_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.SubmissionID, p.FilePath, p.FileName, p.Caption, p.Year, p.FileSize, p.MimeType, p.CreatedAt)
	if err != nil {
		return "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *PhotoStore) ListBySubmission(ctx context.Context, submissionID string) ([]models.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, submission_id, file_path, file_name, legenda, ano,
		file_size, mime_type, created_at FROM submission_photos WHERE submission_id = ? ORDER BY length(file_path), file_path`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var (
			p  models.Photo
			id int64
		)
		if err := rows.Scan(&id, &p.SubmissionID, &p.FilePath, &p.FileName, &p.Caption, &p.Year,
			&p.FileSize, &p.MimeType, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.ID = strconv.FormatInt(id, 10)
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *PhotoStore) DeleteBySubmission(ctx context.Context, submissionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM submission_photos WHERE submission_id = ?", submissionID)
	return err
}

type BlobStore struct {
	db *sql.DB
}

func (s *BlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO blobs (path, content_type, data) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET content_type = excluded.content_type, data = excluded.data`,
		path, contentType, data)
	return err
}

func (s *BlobStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	var (
		data []byte
		ct   string
	)
	err := s.db.QueryRowContext(ctx, "SELECT data, content_type FROM blobs WHERE path = ?", path).Scan(&data, &ct)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", repository.ErrNotFound
	}
	return data, ct, err
}

func (s *BlobStore) Delete(ctx context.Context, path string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE path = ?", path)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *BlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path FROM blobs WHERE substr(path, 1, ?) = ? ORDER BY path",
		len(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

type AdminStore struct {
	db *sql.DB
}

func (s *AdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var (
		a  models.Admin
		id int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT id, email, password_hash, created_at FROM admins WHERE email = ?", email).
		Scan(&id, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.ID = strconv.FormatInt(id, 10)
	return &a, nil
}

func (s *AdminStore) Create(ctx context.Context, a *models.Admin) (string, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO admins (email, password_hash, created_at) VALUES (?, ?, ?)",
		a.Email, a.PasswordHash, a.CreatedAt)
	if err != nil {
		return "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}
