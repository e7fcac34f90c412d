package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DeusData/syl/internal/annotation"
)

const annotationColumns = "id, path, body, author, created, updated"

func scanAnnotations(rows *sql.Rows) ([]string, []annotation.Annotation, error) {
	defer rows.Close()
	var paths []string
	var out []annotation.Annotation
	for rows.Next() {
		var a annotation.Annotation
		var p, created, updated string
		if err := rows.Scan(&a.ID, &p, &a.Body, &a.Author, &created, &updated); err != nil {
			return nil, nil, fmt.Errorf("scan annotation: %w", err)
		}
		a.Created = parseTime(created)
		a.Updated = parseTime(updated)
		paths = append(paths, p)
		out = append(out, a)
	}
	return paths, out, rows.Err()
}

// Load returns every annotation of sourceFile in insertion order.
func (s *Store) Load(ctx context.Context, sourceFile string) (*annotation.File, error) {
	sourceFile, err := annotation.CleanSourceFile(sourceFile)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+annotationColumns+" FROM annotations WHERE source_file=? ORDER BY seq", sourceFile)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}
	paths, list, err := scanAnnotations(rows)
	if err != nil {
		return nil, err
	}
	f := annotation.NewFile(sourceFile)
	for i, a := range list {
		f.Annotations[paths[i]] = append(f.Annotations[paths[i]], a)
	}
	return f, nil
}

// Add inserts a new annotation.
func (s *Store) Add(ctx context.Context, sourceFile, semPath, body, author string) (annotation.Annotation, error) {
	sourceFile, err := annotation.CleanSourceFile(sourceFile)
	if err != nil {
		return annotation.Annotation{}, err
	}
	now := s.now().UTC()
	a := annotation.Annotation{ID: uuid.NewString(), Body: body, Author: author, Created: now, Updated: now}
	if _, err := s.insert(ctx, sourceFile, semPath, a); err != nil {
		return annotation.Annotation{}, err
	}
	slog.Debug("store.add", "file", sourceFile, "path", semPath, "id", a.ID)
	return a, nil
}

// insert stores a and reports whether a row was written; an existing id is
// left untouched.
func (s *Store) insert(ctx context.Context, sourceFile, semPath string, a annotation.Annotation) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO annotations (id, source_file, path, body, author, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		a.ID, sourceFile, semPath, a.Body, a.Author, formatTime(a.Created), formatTime(a.Updated))
	if err != nil {
		return false, fmt.Errorf("insert annotation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Update replaces the body of annotation id under semPath.
func (s *Store) Update(ctx context.Context, sourceFile, semPath, id, body string) (annotation.Annotation, error) {
	sourceFile, err := annotation.CleanSourceFile(sourceFile)
	if err != nil {
		return annotation.Annotation{}, err
	}
	var out annotation.Annotation
	err = s.WithTransaction(ctx, func(tx *Store) error {
		rows, err := tx.q.QueryContext(ctx,
			"SELECT "+annotationColumns+" FROM annotations WHERE source_file=? AND path=? AND id=?",
			sourceFile, semPath, id)
		if err != nil {
			return fmt.Errorf("find annotation: %w", err)
		}
		_, list, err := scanAnnotations(rows)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return annotation.ErrNotFound
		}
		out = list[0]
		out.Body = body
		if now := tx.now().UTC(); now.After(out.Updated) {
			out.Updated = now
		}
		_, err = tx.q.ExecContext(ctx, "UPDATE annotations SET body=?, updated=? WHERE id=?",
			out.Body, formatTime(out.Updated), id)
		if err != nil {
			return fmt.Errorf("update annotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return annotation.Annotation{}, err
	}
	return out, nil
}

// Remove deletes annotation id under semPath and reports whether it existed.
func (s *Store) Remove(ctx context.Context, sourceFile, semPath, id string) (bool, error) {
	sourceFile, err := annotation.CleanSourceFile(sourceFile)
	if err != nil {
		return false, err
	}
	res, err := s.q.ExecContext(ctx,
		"DELETE FROM annotations WHERE source_file=? AND path=? AND id=?", sourceFile, semPath, id)
	if err != nil {
		return false, fmt.Errorf("delete annotation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListPaths returns the annotated paths of sourceFile in ascending order.
func (s *Store) ListPaths(ctx context.Context, sourceFile string) ([]string, error) {
	sourceFile, err := annotation.CleanSourceFile(sourceFile)
	if err != nil {
		return nil, err
	}
	return s.strings(ctx, "SELECT DISTINCT path FROM annotations WHERE source_file=? ORDER BY path", sourceFile)
}

// ForPath returns the annotations stored under one path.
func (s *Store) ForPath(ctx context.Context, sourceFile, semPath string) ([]annotation.Annotation, error) {
	sourceFile, err := annotation.CleanSourceFile(sourceFile)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+annotationColumns+" FROM annotations WHERE source_file=? AND path=? ORDER BY seq",
		sourceFile, semPath)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	_, list, err := scanAnnotations(rows)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []annotation.Annotation{}
	}
	return list, nil
}

// Files lists every source file with at least one annotation.
func (s *Store) Files(ctx context.Context) ([]string, error) {
	return s.strings(ctx, "SELECT DISTINCT source_file FROM annotations ORDER BY source_file")
}

// Count returns the number of stored annotations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM annotations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count annotations: %w", err)
	}
	return n, nil
}

func (s *Store) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
