package driven

import "context"

// CorpusWatcher watches a directory of example corpus files and folds
// new or changed files into the example store.
//
// This is an optional service owned by the scheduler loop - when nil,
// corpus files are only picked up by an explicit reindex.
type CorpusWatcher interface {
	// Start begins watching. Blocks until the context is cancelled or an
	// unrecoverable watch error occurs.
	Start(ctx context.Context) error

	// Close stops watching and releases the underlying watcher.
	Close() error
}
