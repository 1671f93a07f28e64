package persistence

import (
	"errors"
	"fmt"
	"portal/internal/persistence/interfaces"
	"portal/internal/providers"
	"portal/internal/structures"
	"sync"
	"time"
)

var ErrSnapshotUnreadable = errors.New("snapshot on disk could not be restored, not overwriting it")

// Scheduler saves the in-process tree every persistence.saveInterval and
// once more on shutdown.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	fileManager *FileManager
	opsMu       sync.Mutex
	restoreErr  error
	ticker      *time.Ticker
	done        chan struct{}
	wg          sync.WaitGroup
}

func (s *Scheduler) Init() {
	interval := s.config.Persistence.SaveInterval
	if interval <= 0 {
		s.logger.Warnf(providers.TypeApp, "Persistence interval is not set, periodic saves disabled")
		return
	}

	s.ticker = time.NewTicker(interval)
	s.done = make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ticker.C:
				if err := s.save(); err != nil {
					s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
					continue
				}
				s.logger.Debugf(providers.TypeApp, "Persisted data to file %s", s.config.Persistence.FilePath)
			case <-s.done:
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.wg.Wait()
	s.ticker = nil
}

// Restore loads the snapshot. After a failed load every save is refused so
// the unreadable file stays on disk for inspection.
func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.restoreErr = s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
	return s.restoreErr
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeApp, "Persisting tree to file...")
	if err := s.save(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) save() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if s.restoreErr != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotUnreadable, s.restoreErr)
	}

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		fileManager: fileManager,
	}
}

// noopScheduler stands in when the tree lives outside the process.
type noopScheduler struct{}

func (noopScheduler) Init()          {}
func (noopScheduler) Stop()          {}
func (noopScheduler) Restore() error { return nil }
func (noopScheduler) Persist() error { return nil }
