package annotation

import "context"

// Store persists annotation files. Every mutation rewrites the file it
// touches before returning.
type Store interface {
	// Load returns the annotations of sourceFile, or an empty file if none exist.
	Load(ctx context.Context, sourceFile string) (*File, error)
	Add(ctx context.Context, sourceFile, path, body, author string) (Annotation, error)
	// Update returns ErrNotFound when no annotation id exists under path.
	Update(ctx context.Context, sourceFile, path, id, body string) (Annotation, error)
	Remove(ctx context.Context, sourceFile, path, id string) (bool, error)
	ListPaths(ctx context.Context, sourceFile string) ([]string, error)
	ForPath(ctx context.Context, sourceFile, path string) ([]Annotation, error)
	// Files lists the source files holding at least one annotation.
	Files(ctx context.Context) ([]string, error)
}
