package treestore

import (
	"context"
	"portal/internal/models"
	"sync"
)

// MemoryStore keeps the tree in process. Updates are applied to a
// copy-on-write root that is swapped in only once every entry applied.
type MemoryStore struct {
	mu   sync.RWMutex
	root models.Node
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read(ctx context.Context, path string) (models.Node, error) {
	if err := ctx.Err(); err != nil {
		return models.Undefined, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.GetAt(s.root, models.SplitPath(path)), nil
}

func (s *MemoryStore) AtomicUpdate(ctx context.Context, updates map[string]models.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ordered, err := orderUpdates(updates)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.root
	for _, u := range ordered {
		next = models.SetAt(next, u.segs, u.value)
	}
	s.root = next
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	return s.AtomicUpdate(ctx, map[string]models.Node{path: models.Undefined})
}

func (s *MemoryStore) Snapshot() models.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *MemoryStore) Load(root models.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
}
