// Package treestore holds the realtime tree store contract and its backends.
package treestore

import (
	"context"
	"errors"
	"portal/internal/models"
	"sort"
)

// ErrInvalidPath is returned for writes to the root or to an empty path.
var ErrInvalidPath = errors.New("treestore: invalid path")

// Store is a tree-structured document store with an atomic multi-path update.
type Store interface {
	// Read returns the subtree at path, or models.Undefined when absent.
	Read(ctx context.Context, path string) (models.Node, error)
	// AtomicUpdate applies every entry or none. An undefined value deletes.
	AtomicUpdate(ctx context.Context, updates map[string]models.Node) error
	// Delete removes the subtree at path.
	Delete(ctx context.Context, path string) error
}

// Snapshotter is implemented by backends that keep the whole tree in process
// and need external persistence.
type Snapshotter interface {
	Snapshot() models.Node
	Load(root models.Node)
}

type update struct {
	segs  []string
	value models.Node
}

// orderUpdates validates paths and orders them shortest-first so a parent
// write followed by a child write composes.
func orderUpdates(updates map[string]models.Node) ([]update, error) {
	out := make([]update, 0, len(updates))
	for path, value := range updates {
		segs := models.SplitPath(path)
		if len(segs) == 0 {
			return nil, ErrInvalidPath
		}
		out = append(out, update{segs: segs, value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].segs) != len(out[j].segs) {
			return len(out[i].segs) < len(out[j].segs)
		}
		return models.JoinPath(out[i].segs...) < models.JoinPath(out[j].segs...)
	})
	return out, nil
}
