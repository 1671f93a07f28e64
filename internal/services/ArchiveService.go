package services

import (
	"context"
	"errors"
	"fmt"
	"portal/internal/archive"
	"portal/internal/assets"
	"portal/internal/identity"
	"portal/internal/models"
	"portal/internal/providers"
	"portal/internal/structures"
	"portal/internal/treestore"

	"golang.org/x/sync/errgroup"
)

const (
	OpArchive = "archive"
	OpRestore = "restore"
	OpDelete  = "delete"
	OpList    = "list"

	cleanupIdentity = "identity"
	cleanupAsset    = "asset"
)

// ArchiveRequest describes what to archive. Paths carries captured values
// directly; Capture names live paths whose current values are read first.
type ArchiveRequest struct {
	Paths      models.ArchivePaths    `json:"paths"`
	Capture    []string               `json:"capture"`
	Preview    map[string]models.Node `json:"preview"`
	ArchivedBy string                 `json:"-"`
}

type ArchiveServiceInterface interface {
	Archive(ctx context.Context, entity, id string, req *ArchiveRequest) (*models.ArchiveEntry, error)
	Restore(ctx context.Context, entity, id string) (*models.ArchiveEntry, error)
	Delete(ctx context.Context, entity, id string) (*models.ArchiveEntry, error)
	List(ctx context.Context, entity string) ([]*models.ArchiveEntry, error)
	GetNode(ctx context.Context, path string) (models.Node, error)
	SetNode(ctx context.Context, path string, value models.Node) error
}

// ArchiveService runs the archive lifecycle and the account and asset
// cleanups that must follow it. Cleanups never undo a committed store change.
type ArchiveService struct {
	manager          archive.ManagerInterface
	store            treestore.Store
	identity         identity.Provider
	assets           assets.Store
	metrics          providers.MetricsProviderInterface
	logger           providers.Logger
	identityEntities map[string]struct{}
	assetField       string
}

func NewArchiveService(
	manager archive.ManagerInterface,
	store treestore.Store,
	idp identity.Provider,
	assetStore assets.Store,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
	conf *structures.Config,
) ArchiveServiceInterface {
	entities := make(map[string]struct{}, len(conf.Archive.IdentityEntities))
	for _, e := range conf.Archive.IdentityEntities {
		entities[e] = struct{}{}
	}
	return &ArchiveService{
		manager:          manager,
		store:            store,
		identity:         idp,
		assets:           assetStore,
		metrics:          metrics,
		logger:           logger,
		identityEntities: entities,
		assetField:       conf.Archive.AssetPreviewField,
	}
}

func (s *ArchiveService) Archive(ctx context.Context, entity, id string, req *ArchiveRequest) (*models.ArchiveEntry, error) {
	if req == nil {
		req = &ArchiveRequest{}
	}

	paths, err := s.capture(ctx, req)
	if err != nil {
		s.count(OpArchive, err)
		return nil, err
	}

	entry, err := s.manager.Archive(ctx, entity, id, paths,
		archive.WithPreview(req.Preview),
		archive.WithArchivedBy(req.ArchivedBy),
	)
	s.count(OpArchive, err)
	if err != nil {
		return nil, err
	}

	if s.hasIdentity(entity) {
		s.logCleanup(OpArchive, s.cleanup(context.WithoutCancel(ctx), cleanupIdentity, entity, id, func(ctx context.Context) error {
			return s.identity.SetAccountEnabled(ctx, id, false)
		}))
	}
	return entry, nil
}

// capture merges explicit paths with the current values of req.Capture.
// Captured paths that are absent are skipped.
func (s *ArchiveService) capture(ctx context.Context, req *ArchiveRequest) (models.ArchivePaths, error) {
	if len(req.Capture) == 0 {
		return req.Paths, nil
	}

	paths := append(models.ArchivePaths(nil), req.Paths...)
	found := 0
	for _, p := range req.Capture {
		path := models.JoinPath(p)
		if path == "" {
			return nil, fmt.Errorf("%w: empty capture path", archive.ErrInvalidArgument)
		}
		v, err := s.store.Read(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: capture %s: %w", archive.ErrOperationFailed, path, err)
		}
		if !v.IsDefined() {
			s.logger.Debugf(providers.TypeArchive, "capture %s: nothing stored", path)
			continue
		}
		paths = append(paths, models.ArchivePath{Path: path, Value: v})
		found++
	}
	if found == 0 && len(req.Paths) == 0 {
		return nil, fmt.Errorf("%w: none of the captured paths exist", archive.ErrNotFound)
	}
	return paths, nil
}

func (s *ArchiveService) Restore(ctx context.Context, entity, id string) (*models.ArchiveEntry, error) {
	entry, err := s.manager.Restore(ctx, entity, id)
	s.count(OpRestore, err)
	if err != nil {
		return nil, err
	}

	if s.hasIdentity(entity) {
		s.logCleanup(OpRestore, s.cleanup(context.WithoutCancel(ctx), cleanupIdentity, entity, id, func(ctx context.Context) error {
			return s.identity.SetAccountEnabled(ctx, id, true)
		}))
	}
	return entry, nil
}

func (s *ArchiveService) Delete(ctx context.Context, entity, id string) (*models.ArchiveEntry, error) {
	entry, err := s.manager.Delete(ctx, entity, id)
	s.count(OpDelete, err)
	if err != nil {
		return nil, err
	}

	// The cleanups are independent; one failing does not stop the other.
	cctx := context.WithoutCancel(ctx)
	var g errgroup.Group
	var failures [2]error
	if s.hasIdentity(entity) {
		g.Go(func() error {
			failures[0] = s.cleanup(cctx, cleanupIdentity, entity, id, func(ctx context.Context) error {
				return s.identity.DeleteAccount(ctx, id)
			})
			return failures[0]
		})
	}
	if publicID, ok := entry.PreviewString(s.assetField); ok && publicID != "" {
		g.Go(func() error {
			failures[1] = s.cleanup(cctx, cleanupAsset, entity, id, func(ctx context.Context) error {
				return s.assets.DeleteAsset(ctx, publicID)
			})
			return failures[1]
		})
	}
	if err := g.Wait(); err != nil {
		s.logCleanup(OpDelete, errors.Join(failures[:]...))
	}

	return entry, nil
}

func (s *ArchiveService) List(ctx context.Context, entity string) ([]*models.ArchiveEntry, error) {
	entries, err := s.manager.List(ctx, entity)
	s.count(OpList, err)
	return entries, err
}

func (s *ArchiveService) GetNode(ctx context.Context, path string) (models.Node, error) {
	v, err := s.store.Read(ctx, path)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "read %q failed: %v", path, err)
		return models.Undefined, fmt.Errorf("%w: read %q: %w", archive.ErrOperationFailed, path, err)
	}
	return v, nil
}

// SetNode writes value at path; an undefined or null value deletes.
func (s *ArchiveService) SetNode(ctx context.Context, path string, value models.Node) error {
	if value.IsNull() {
		value = models.Undefined
	}
	err := s.store.AtomicUpdate(ctx, map[string]models.Node{path: value})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, treestore.ErrInvalidPath):
		return fmt.Errorf("%w: %w", archive.ErrInvalidArgument, err)
	default:
		s.logger.Errorf(providers.TypeApp, "write %q failed: %v", path, err)
		return fmt.Errorf("%w: write %q: %w", archive.ErrOperationFailed, path, err)
	}
}

func (s *ArchiveService) hasIdentity(entity string) bool {
	_, ok := s.identityEntities[entity]
	return ok
}

// cleanup runs one post-commit side effect. A missing account counts as
// done. Failures are counted and returned for logging; they never reach the
// caller of the archive operation.
func (s *ArchiveService) cleanup(ctx context.Context, target, entity, id string, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || errors.Is(err, identity.ErrAccountNotFound) {
		return nil
	}
	s.metrics.IncCleanupFailure(target)
	return fmt.Errorf("%s cleanup for %s/%s failed: %w", target, entity, id, err)
}

func (s *ArchiveService) logCleanup(op string, err error) {
	if err != nil {
		s.logger.Errorf(providers.TypeArchive, "%s committed, %v", op, err)
	}
}

func (s *ArchiveService) count(op string, err error) {
	s.metrics.IncArchiveOperation(op, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, archive.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, archive.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
