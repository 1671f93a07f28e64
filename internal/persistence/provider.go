package persistence

import (
	"portal/internal/persistence/interfaces"
	"portal/internal/providers"
	"portal/internal/structures"
	"portal/internal/treestore"
)

// NewSchedulerProvider wires snapshot persistence for stores that keep the
// tree in process. Other stores get a scheduler that does nothing.
func NewSchedulerProvider(
	conf *structures.Config,
	logger providers.Logger,
	store treestore.Store,
	metrics providers.MetricsProviderInterface,
) (interfaces.SchedulerInterface, func(), error) {
	tree, ok := store.(treestore.Snapshotter)
	if !ok {
		logger.Infof(providers.TypeApp, "Tree store persists itself, snapshot scheduler disabled")
		return noopScheduler{}, func() {}, nil
	}

	compressor, err := NewZstdCompressor()
	if err != nil {
		return nil, nil, err
	}
	fm := NewFileManager(compressor, tree, logger)
	return NewScheduler(conf, logger, fm, metrics), fm.Close, nil
}
