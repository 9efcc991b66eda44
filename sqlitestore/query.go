package sqlitestore

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/eringen/contentsite/content"
)

// columns maps filterable document fields to their columns.
var columns = map[string]string{
	"id":               "id",
	"slug":             "slug",
	"title":            "title",
	"status":           "status",
	"meta.title":       "meta_title",
	"meta.description": "meta_description",
}

// likeColumns maps fields matched by OpLike to their case-folded columns.
var likeColumns = map[string]string{
	"slug":             "slug_fold",
	"title":            "title_fold",
	"meta.title":       "meta_title_fold",
	"meta.description": "meta_description_fold",
}

// fold applies Unicode case folding. SQLite's LIKE only folds ASCII, so
// matching runs over folded columns with a folded pattern.
func fold(s string) string {
	return cases.Fold().String(s)
}

// sortColumns maps sortable fields to their columns.
var sortColumns = map[string]string{
	"publishedAt": "published_at",
	"updatedAt":   "updated_at",
	"title":       "title",
	"slug":        "slug",
}

// compileQuery builds the WHERE clause of q: collection, revision visibility
// and the filter tree.
func compileQuery(q content.Query) (string, []any, error) {
	var b strings.Builder
	args := []any{string(q.Collection)}
	b.WriteString(`collection = ?`)

	if q.Draft && q.OverrideAccess {
		b.WriteString(` AND (status = ? OR NOT EXISTS (SELECT 1 FROM documents d WHERE d.id = documents.id AND d.status = ?))`)
		args = append(args, string(content.StatusDraft), string(content.StatusDraft))
	} else {
		b.WriteString(` AND status = ?`)
		args = append(args, string(content.StatusPublished))
	}

	if q.Where != nil {
		clause, wargs, err := compileWhere(q.Where)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(` AND ` + clause)
		args = append(args, wargs...)
	}
	return b.String(), args, nil
}

func compileWhere(w *content.Where) (string, []any, error) {
	if w.IsLeaf() {
		col, ok := columns[w.Field]
		if !ok {
			return "", nil, fmt.Errorf("sqlitestore: %w: %q", content.ErrUnknownField, w.Field)
		}
		switch w.Op {
		case content.OpEquals:
			return col + ` = ?`, []any{w.Value}, nil
		case content.OpLike:
			if fc, ok := likeColumns[w.Field]; ok {
				return fc + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(fold(w.Value)) + "%"}, nil
			}
			return col + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(w.Value) + "%"}, nil
		default:
			return "", nil, fmt.Errorf("sqlitestore: unsupported operator %q", w.Op)
		}
	}

	conds, joiner := w.And, " AND "
	if len(w.Or) > 0 {
		conds, joiner = w.Or, " OR "
	}
	if len(conds) == 0 {
		return "1", nil, nil
	}
	parts := make([]string, 0, len(conds))
	var args []any
	for _, c := range conds {
		clause, cargs, err := compileWhere(c)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, clause)
		args = append(args, cargs...)
	}
	return "(" + strings.Join(parts, joiner) + ")", args, nil
}

// orderBy returns the ORDER BY clause for a field name optionally prefixed with
// '-'. Ties, and an empty sort, keep insertion order.
func orderBy(sort string) (string, error) {
	if sort == "" {
		return "rowid", nil
	}
	dir := "ASC"
	field := sort
	if strings.HasPrefix(sort, "-") {
		dir, field = "DESC", sort[1:]
	}
	col, ok := sortColumns[field]
	if !ok {
		return "", fmt.Errorf("sqlitestore: %w: sort %q", content.ErrUnknownField, sort)
	}
	return col + " " + dir + ", rowid", nil
}
