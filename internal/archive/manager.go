// Package archive moves entity records between live storage and the
// archives/{entity}/{id} namespace of the tree store.
package archive

import (
	"context"
	"fmt"
	"portal/internal/models"
	"portal/internal/providers"
	"portal/internal/treestore"
	"sort"
	"strings"
	"time"
)

// Namespace is the root segment under which archive entries live.
const Namespace = "archives"

type ManagerInterface interface {
	Archive(ctx context.Context, entity, id string, paths models.ArchivePaths, opts ...ArchiveOption) (*models.ArchiveEntry, error)
	Restore(ctx context.Context, entity, id string) (*models.ArchiveEntry, error)
	Delete(ctx context.Context, entity, id string) (*models.ArchiveEntry, error)
	List(ctx context.Context, entity string) ([]*models.ArchiveEntry, error)
}

type archiveOptions struct {
	preview    map[string]models.Node
	archivedBy *string
}

type ArchiveOption func(*archiveOptions)

// WithPreview attaches display fields. Undefined values are dropped.
func WithPreview(preview map[string]models.Node) ArchiveOption {
	return func(o *archiveOptions) {
		o.preview = preview
	}
}

// WithArchivedBy records the acting user. An empty actor is stored as null.
func WithArchivedBy(actor string) ArchiveOption {
	return func(o *archiveOptions) {
		if actor != "" {
			o.archivedBy = &actor
		}
	}
}

// Manager holds no state of its own; every call re-reads the store and
// atomicity comes from the store's multi-path update.
type Manager struct {
	store  treestore.Store
	logger providers.Logger
	now    func() time.Time
}

func NewManager(store treestore.Store, logger providers.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// EntryPath is the store location of one archive entry.
func EntryPath(entity, id string) string {
	return Namespace + "/" + entity + "/" + id
}

func (m *Manager) Archive(ctx context.Context, entity, id string, paths models.ArchivePaths, opts ...ArchiveOption) (*models.ArchiveEntry, error) {
	if err := validateKey(entity, id); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths to archive", ErrInvalidArgument)
	}

	var o archiveOptions
	for _, opt := range opts {
		opt(&o)
	}

	entryPath := EntryPath(entity, id)
	updates := make(map[string]models.Node, len(paths)+1)
	normalized := make(models.ArchivePaths, 0, len(paths))
	for _, p := range paths {
		path := models.JoinPath(p.Path)
		if path == "" {
			return nil, fmt.Errorf("%w: empty path", ErrInvalidArgument)
		}
		if !p.Value.IsDefined() {
			return nil, fmt.Errorf("%w: no value captured for %q", ErrInvalidArgument, path)
		}
		if _, dup := updates[path]; dup {
			return nil, fmt.Errorf("%w: duplicate path %q", ErrInvalidArgument, path)
		}
		if path == Namespace || strings.HasPrefix(path, Namespace+"/") {
			return nil, fmt.Errorf("%w: path %q is inside the archive namespace", ErrInvalidArgument, path)
		}
		updates[path] = models.Undefined
		normalized = append(normalized, models.ArchivePath{Path: path, Value: p.Value})
	}

	entry := &models.ArchiveEntry{
		Entity:     entity,
		ID:         id,
		ArchivedAt: m.now().UnixMilli(),
		ArchivedBy: o.archivedBy,
		Paths:      normalized,
		Preview:    models.SanitizePreview(o.preview),
	}
	node, err := entry.ToNode()
	if err != nil {
		return nil, fmt.Errorf("%w: encode entry: %w", ErrOperationFailed, err)
	}
	updates[entryPath] = node

	if err := m.store.AtomicUpdate(ctx, updates); err != nil {
		m.logger.Errorf(providers.TypeArchive, "archive %s failed: %v", entryPath, err)
		return nil, fmt.Errorf("%w: archive %s: %w", ErrOperationFailed, entryPath, err)
	}

	m.logger.Infof(providers.TypeArchive, "archived %s (%d paths)", entryPath, len(normalized))
	return entry, nil
}

func (m *Manager) Restore(ctx context.Context, entity, id string) (*models.ArchiveEntry, error) {
	entry, err := m.load(ctx, entity, id)
	if err != nil {
		return nil, err
	}

	entryPath := EntryPath(entity, id)
	updates := make(map[string]models.Node, len(entry.Paths)+1)
	for _, p := range entry.Paths {
		path := models.JoinPath(p.Path)
		if path == "" {
			return nil, fmt.Errorf("%w: %s holds an empty path", ErrOperationFailed, entryPath)
		}
		updates[path] = p.Value
	}
	updates[entryPath] = models.Undefined

	if err := m.store.AtomicUpdate(ctx, updates); err != nil {
		m.logger.Errorf(providers.TypeArchive, "restore %s failed: %v", entryPath, err)
		return nil, fmt.Errorf("%w: restore %s: %w", ErrOperationFailed, entryPath, err)
	}

	m.logger.Infof(providers.TypeArchive, "restored %s (%d paths)", entryPath, len(entry.Paths))
	return entry, nil
}

// Delete removes the entry for good and returns it. Legacy mapping paths
// come back in the same sorted sequence form that List and Restore use.
func (m *Manager) Delete(ctx context.Context, entity, id string) (*models.ArchiveEntry, error) {
	entry, err := m.load(ctx, entity, id)
	if err != nil {
		return nil, err
	}

	entryPath := EntryPath(entity, id)
	if err := m.store.Delete(ctx, entryPath); err != nil {
		m.logger.Errorf(providers.TypeArchive, "delete %s failed: %v", entryPath, err)
		return nil, fmt.Errorf("%w: delete %s: %w", ErrOperationFailed, entryPath, err)
	}

	m.logger.Infof(providers.TypeArchive, "deleted %s permanently", entryPath)
	return entry, nil
}

// List returns the entries of one entity, or of every entity when entity is
// empty, most recently archived first.
func (m *Manager) List(ctx context.Context, entity string) ([]*models.ArchiveEntry, error) {
	path := Namespace
	if entity != "" {
		if err := validateSegment("entity", entity); err != nil {
			return nil, err
		}
		path = Namespace + "/" + entity
	}

	node, err := m.store.Read(ctx, path)
	if err != nil {
		m.logger.Errorf(providers.TypeArchive, "list %s failed: %v", path, err)
		return nil, fmt.Errorf("%w: list %s: %w", ErrOperationFailed, path, err)
	}

	entries := make([]*models.ArchiveEntry, 0)
	if entity != "" {
		entries = m.collect(entries, entity, node)
	} else {
		for _, name := range node.Keys() {
			entries = m.collect(entries, name, node.Member(name))
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ArchivedAt > entries[j].ArchivedAt
	})
	return entries, nil
}

func (m *Manager) collect(dst []*models.ArchiveEntry, entity string, bucket models.Node) []*models.ArchiveEntry {
	for _, id := range bucket.Keys() {
		entry, err := models.EntryFromNode(bucket.Member(id))
		if err != nil {
			m.logger.Warnf(providers.TypeArchive, "skipping %s: %v", EntryPath(entity, id), err)
			continue
		}
		entry.Entity = entity
		entry.ID = id
		dst = append(dst, entry)
	}
	return dst
}

func (m *Manager) load(ctx context.Context, entity, id string) (*models.ArchiveEntry, error) {
	if err := validateKey(entity, id); err != nil {
		return nil, err
	}

	entryPath := EntryPath(entity, id)
	node, err := m.store.Read(ctx, entryPath)
	if err != nil {
		m.logger.Errorf(providers.TypeArchive, "read %s failed: %v", entryPath, err)
		return nil, fmt.Errorf("%w: read %s: %w", ErrOperationFailed, entryPath, err)
	}
	if !node.IsDefined() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, entryPath)
	}

	entry, err := models.EntryFromNode(node)
	if err != nil {
		m.logger.Errorf(providers.TypeArchive, "decode %s failed: %v", entryPath, err)
		return nil, fmt.Errorf("%w: decode %s: %w", ErrOperationFailed, entryPath, err)
	}
	entry.Entity = entity
	entry.ID = id
	return entry, nil
}

func validateKey(entity, id string) error {
	if err := validateSegment("entity", entity); err != nil {
		return err
	}
	return validateSegment("id", id)
}

func validateSegment(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	if strings.Contains(value, "/") {
		return fmt.Errorf("%w: %s must not contain '/'", ErrInvalidArgument, name)
	}
	return nil
}
