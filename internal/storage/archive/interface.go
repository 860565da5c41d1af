package archive

import "context"

// Store is the blob backend for trade archive snapshots. Snapshots are
// rewritten whole on every merge, so Write must be atomic: a concurrent
// Read never observes a partially written object.
type Store interface {
	// Write stores an object at the given path, replacing any previous
	// version in one step.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves the object at the given path.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object at the given path.
	Delete(ctx context.Context, path string) error

	// Exists checks whether an object exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}
