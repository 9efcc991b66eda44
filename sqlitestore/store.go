// Package sqlitestore persists documents, globals and redirects in SQLite and
// serves them through the content store contract.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eringen/contentsite/content"
)

// Store wraps a SQLite database holding every revision of every document.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlitestore: create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", path, err)
	}
	// WAL lets readers run while the importer writes; writers wait on the
	// busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    id TEXT NOT NULL,
    status TEXT NOT NULL,
    collection TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    meta_title TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    title_fold TEXT NOT NULL DEFAULT '',
    slug_fold TEXT NOT NULL DEFAULT '',
    meta_title_fold TEXT NOT NULL DEFAULT '',
    meta_description_fold TEXT NOT NULL DEFAULT '',
    published_at TEXT,
    updated_at TEXT NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (id, status)
);
CREATE INDEX IF NOT EXISTS documents_collection_slug ON documents (collection, slug);
CREATE TABLE IF NOT EXISTS globals (
    key TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    data TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS redirects (
    from_path TEXT PRIMARY KEY,
    data TEXT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("sqlitestore: schema: %w", err)
	}
	return s.migrateFolds()
}

// foldColumns are the case-folded copies of the searchable columns.
var foldColumns = []string{"title_fold", "slug_fold", "meta_title_fold", "meta_description_fold"}

// migrateFolds adds the folded columns to databases created before they
// existed and fills them from the stored text.
func (s *Store) migrateFolds() error {
	added := false
	for _, col := range foldColumns {
		_, err := s.db.Exec(`ALTER TABLE documents ADD COLUMN ` + col + ` TEXT NOT NULL DEFAULT ''`)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
				continue
			}
			return fmt.Errorf("sqlitestore: add %s: %w", col, err)
		}
		added = true
	}
	if !added {
		return nil
	}

	rows, err := s.db.Query(`SELECT id, status, title, slug, meta_title, meta_description FROM documents`)
	if err != nil {
		return fmt.Errorf("sqlitestore: backfill folds: %w", err)
	}
	type folded struct{ id, status, title, slug, metaTitle, metaDesc string }
	var pending []folded
	for rows.Next() {
		var f folded
		if err := rows.Scan(&f.id, &f.status, &f.title, &f.slug, &f.metaTitle, &f.metaDesc); err != nil {
			rows.Close()
			return fmt.Errorf("sqlitestore: backfill folds: %w", err)
		}
		pending = append(pending, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlitestore: backfill folds: %w", err)
	}
	for _, f := range pending {
		_, err := s.db.Exec(`
UPDATE documents SET title_fold = ?, slug_fold = ?, meta_title_fold = ?, meta_description_fold = ?
WHERE id = ? AND status = ?`,
			fold(f.title), fold(f.slug), fold(f.metaTitle), fold(f.metaDesc), f.id, f.status)
		if err != nil {
			return fmt.Errorf("sqlitestore: backfill %s: %w", f.id, err)
		}
	}
	return nil
}

// timeLayout sorts lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// SaveDocument upserts the revision (ID, Status) of doc. A missing ID is
// generated. Saving a published post refreshes its search index entry.
func (s *Store) SaveDocument(ctx context.Context, doc content.Document) (content.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = content.StatusPublished
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return content.Document{}, fmt.Errorf("sqlitestore: begin: %w", err)
	}
	defer tx.Rollback()

	if err := upsertDocument(ctx, tx, doc); err != nil {
		return content.Document{}, err
	}
	if doc.Collection == content.Posts && doc.Published() {
		if err := upsertDocument(ctx, tx, searchEntry(doc)); err != nil {
			return content.Document{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return content.Document{}, fmt.Errorf("sqlitestore: commit: %w", err)
	}
	return doc, nil
}

func upsertDocument(ctx context.Context, tx *sql.Tx, doc content.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sqlitestore: encode %s: %w", doc.ID, err)
	}
	var publishedAt sql.NullString
	if doc.PublishedAt != nil {
		publishedAt = sql.NullString{String: formatTime(*doc.PublishedAt), Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO documents (id, status, collection, slug, title, meta_title, meta_description,
    title_fold, slug_fold, meta_title_fold, meta_description_fold, published_at, updated_at, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id, status) DO UPDATE SET
    collection = excluded.collection,
    slug = excluded.slug,
    title = excluded.title,
    meta_title = excluded.meta_title,
    meta_description = excluded.meta_description,
    title_fold = excluded.title_fold,
    slug_fold = excluded.slug_fold,
    meta_title_fold = excluded.meta_title_fold,
    meta_description_fold = excluded.meta_description_fold,
    published_at = excluded.published_at,
    updated_at = excluded.updated_at,
    data = excluded.data`,
		doc.ID, string(doc.Status), string(doc.Collection), doc.Slug, doc.Title,
		doc.Meta.Title, doc.Meta.Description,
		fold(doc.Title), fold(doc.Slug), fold(doc.Meta.Title), fold(doc.Meta.Description),
		publishedAt, formatTime(doc.UpdatedAt), string(data))
	if err != nil {
		return fmt.Errorf("sqlitestore: save %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

func searchID(docID string) string {
	return "search-" + docID
}

func searchEntry(post content.Document) content.Document {
	return content.Document{
		ID:         searchID(post.ID),
		Collection: content.Search,
		Slug:       post.Slug,
		Title:      post.Title,
		Status:     content.StatusPublished,
		UpdatedAt:  post.UpdatedAt,
		Meta:       post.Meta,
		HeroImage:  post.HeroImage,
		Categories: post.Categories,
		Doc:        &content.DocRef{Collection: content.Posts, ID: post.ID, Slug: post.Slug, Title: post.Title},
	}
}

// DeleteDocument removes every revision of id and its search entry.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ? OR id = ?`, id, searchID(id))
	if err != nil {
		return fmt.Errorf("sqlitestore: delete %s: %w", id, err)
	}
	return nil
}

// Find implements content.Finder.
func (s *Store) Find(ctx context.Context, q content.Query) (content.Result, error) {
	where, args, err := compileQuery(q)
	if err != nil {
		return content.Result{}, err
	}
	order, err := orderBy(q.Sort)
	if err != nil {
		return content.Result{}, err
	}

	page := 1
	if q.Pagination && q.Page > 1 {
		page = q.Page
	}
	res := content.Result{Page: page, TotalPages: 1}
	if q.Pagination {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&res.TotalDocs); err != nil {
			return content.Result{}, fmt.Errorf("sqlitestore: count %s: %w", q.Collection, err)
		}
		res.TotalPages = content.TotalPages(res.TotalDocs, q.Limit)
	}

	stmt := `SELECT data FROM documents WHERE ` + where + ` ORDER BY ` + order
	if q.Limit > 0 {
		stmt += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, (page-1)*q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return content.Result{}, fmt.Errorf("sqlitestore: find %s: %w", q.Collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return content.Result{}, fmt.Errorf("sqlitestore: scan %s: %w", q.Collection, err)
		}
		var doc content.Document
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return content.Result{}, fmt.Errorf("sqlitestore: decode %s: %w", q.Collection, err)
		}
		res.Docs = append(res.Docs, doc)
	}
	if err := rows.Err(); err != nil {
		return content.Result{}, fmt.Errorf("sqlitestore: find %s: %w", q.Collection, err)
	}
	rows.Close()

	for i, doc := range res.Docs {
		if q.Depth > 0 {
			if doc, err = s.populate(ctx, doc); err != nil {
				return content.Result{}, err
			}
		}
		res.Docs[i] = doc.Project(q.Select)
	}
	if !q.Pagination {
		res.TotalDocs = len(res.Docs)
	}
	return res, nil
}

// populate fills slug and title of related references from their published
// revision, dropping references to documents that are not published.
func (s *Store) populate(ctx context.Context, doc content.Document) (content.Document, error) {
	if len(doc.Related) == 0 {
		return doc, nil
	}
	related := make([]content.DocRef, 0, len(doc.Related))
	for _, ref := range doc.Related {
		resolved, ok, err := s.resolveRef(ctx, ref)
		if err != nil {
			return content.Document{}, err
		}
		if ok {
			related = append(related, resolved)
		}
	}
	doc.Related = related
	return doc, nil
}

func (s *Store) resolveRef(ctx context.Context, ref content.DocRef) (content.DocRef, bool, error) {
	err := s.db.QueryRowContext(ctx,
		`SELECT slug, title FROM documents WHERE id = ? AND collection = ? AND status = ?`,
		ref.ID, string(ref.Collection), string(content.StatusPublished)).Scan(&ref.Slug, &ref.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return ref, false, nil
	}
	if err != nil {
		return ref, false, fmt.Errorf("sqlitestore: resolve %s/%s: %w", ref.Collection, ref.ID, err)
	}
	return ref, true, nil
}

// SaveGlobal stores g and returns it with its new version, which is always
// greater than the stored one.
func (s *Store) SaveGlobal(ctx context.Context, g content.Global) (content.Global, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return content.Global{}, fmt.Errorf("sqlitestore: begin: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `SELECT version FROM globals WHERE key = ?`, g.Key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return content.Global{}, fmt.Errorf("sqlitestore: global %s: %w", g.Key, err)
	}
	if g.Version <= current {
		g.Version = current + 1
	}
	data, err := json.Marshal(g)
	if err != nil {
		return content.Global{}, fmt.Errorf("sqlitestore: encode global %s: %w", g.Key, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO globals (key, version, data) VALUES (?, ?, ?)`,
		g.Key, g.Version, string(data)); err != nil {
		return content.Global{}, fmt.Errorf("sqlitestore: save global %s: %w", g.Key, err)
	}
	if err := tx.Commit(); err != nil {
		return content.Global{}, fmt.Errorf("sqlitestore: commit: %w", err)
	}
	return g, nil
}

// FindGlobal implements content.GlobalFinder. With depth >= 1, navigation
// references carry the slug and title of their published target.
func (s *Store) FindGlobal(ctx context.Context, key string, depth int) (content.Global, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM globals WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Global{}, content.ErrNotFound
	}
	if err != nil {
		return content.Global{}, fmt.Errorf("sqlitestore: global %s: %w", key, err)
	}
	var g content.Global
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return content.Global{}, fmt.Errorf("sqlitestore: decode global %s: %w", key, err)
	}
	for i, item := range g.NavItems {
		ref := item.Link.Reference
		if ref == nil {
			continue
		}
		r := content.DocRef{Collection: ref.Collection, ID: ref.ID}
		if depth > 0 {
			resolved, ok, err := s.resolveRef(ctx, r)
			if err != nil {
				return content.Global{}, err
			}
			if ok {
				r = resolved
			}
		}
		g.NavItems[i].Link.Reference = &r
	}
	return g, nil
}

// SaveRedirect upserts r under its normalized source path.
func (s *Store) SaveRedirect(ctx context.Context, r content.Redirect) error {
	r.From = content.NormalizePath(r.From)
	if r.Type == "" {
		r.Type = content.RedirectPermanent
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("sqlitestore: encode redirect %s: %w", r.From, err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO redirects (from_path, data) VALUES (?, ?)`,
		r.From, string(data)); err != nil {
		return fmt.Errorf("sqlitestore: save redirect %s: %w", r.From, err)
	}
	return nil
}

// FindRedirect implements content.RedirectFinder. Document references are
// resolved to their published slug.
func (s *Store) FindRedirect(ctx context.Context, from string) (content.Redirect, error) {
	from = content.NormalizePath(from)
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM redirects WHERE from_path = ?`, from).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Redirect{}, content.ErrNotFound
	}
	if err != nil {
		return content.Redirect{}, fmt.Errorf("sqlitestore: redirect %s: %w", from, err)
	}
	var r content.Redirect
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return content.Redirect{}, fmt.Errorf("sqlitestore: decode redirect %s: %w", from, err)
	}
	if ref := r.To.Reference; ref != nil && ref.Slug == "" {
		resolved, ok, err := s.resolveRef(ctx, *ref)
		if err != nil {
			return content.Redirect{}, err
		}
		if ok {
			r.To.Reference = &resolved
		}
	}
	return r, nil
}

// Counts returns the number of stored document revisions per collection.
func (s *Store) Counts(ctx context.Context) (map[content.Collection]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT collection, COUNT(*) FROM documents GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: counts: %w", err)
	}
	defer rows.Close()
	counts := make(map[content.Collection]int)
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("sqlitestore: counts: %w", err)
		}
		counts[content.Collection(c)] = n
	}
	return counts, rows.Err()
}

var _ content.Store = (*Store)(nil)

// escapeLike escapes LIKE wildcards so the value matches literally.
func escapeLike(v string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(v)
}
