package testutil

import (
	"context"
	"errors"
	"portal/internal/models"
	"portal/internal/providers"
	"portal/internal/treestore"
	"sync"
	"time"
)

// ErrInjected is returned by mocks configured to fail.
var ErrInjected = errors.New("injected failure")

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// FlakyStore wraps a treestore.Store and fails selected operations.
type FlakyStore struct {
	treestore.Store
	FailRead   bool
	FailUpdate bool
	FailDelete bool

	mu          sync.Mutex
	UpdateCalls int
	DeleteCalls int
}

func NewFlakyStore(inner treestore.Store) *FlakyStore {
	return &FlakyStore{Store: inner}
}

func (f *FlakyStore) Read(ctx context.Context, path string) (models.Node, error) {
	if f.FailRead {
		return models.Undefined, ErrInjected
	}
	return f.Store.Read(ctx, path)
}

func (f *FlakyStore) AtomicUpdate(ctx context.Context, updates map[string]models.Node) error {
	f.mu.Lock()
	f.UpdateCalls++
	f.mu.Unlock()
	if f.FailUpdate {
		return ErrInjected
	}
	return f.Store.AtomicUpdate(ctx, updates)
}

func (f *FlakyStore) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	f.DeleteCalls++
	f.mu.Unlock()
	if f.FailDelete {
		return ErrInjected
	}
	return f.Store.Delete(ctx, path)
}

// MockIdentity implements identity.Provider.
type MockIdentity struct {
	mu       sync.Mutex
	Enabled  map[string]bool
	Deleted  []string
	EnableFn func(id string, enabled bool) error
	DeleteFn func(id string) error
}

func NewMockIdentity() *MockIdentity {
	return &MockIdentity{Enabled: make(map[string]bool)}
}

func (m *MockIdentity) SetAccountEnabled(_ context.Context, id string, enabled bool) error {
	if m.EnableFn != nil {
		if err := m.EnableFn(id, enabled); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Enabled[id] = enabled
	return nil
}

func (m *MockIdentity) DeleteAccount(_ context.Context, id string) error {
	if m.DeleteFn != nil {
		if err := m.DeleteFn(id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockIdentity) EnabledState(id string) (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Enabled[id]
	return v, ok
}

func (m *MockIdentity) DeletedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

// MockAssets implements assets.Store.
type MockAssets struct {
	mu       sync.Mutex
	Deleted  []string
	DeleteFn func(publicID string) error
}

func (m *MockAssets) DeleteAsset(_ context.Context, publicID string) error {
	if m.DeleteFn != nil {
		if err := m.DeleteFn(publicID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, publicID)
	return nil
}

func (m *MockAssets) DeletedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu                  sync.Mutex
	Operations          map[string]int
	CleanupFailures     map[string]int
	PersistenceObserved int
	CacheHits           int
	CacheMisses         int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Operations:      make(map[string]int),
		CleanupFailures: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceObserved++
}
func (m *MockMetrics) IncArchiveOperation(op string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Operations[op+":"+outcome]++
}
func (m *MockMetrics) IncCleanupFailure(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CleanupFailures[target]++
}

func (m *MockMetrics) Operation(op, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Operations[op+":"+outcome]
}

func (m *MockMetrics) CleanupFailure(target string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CleanupFailures[target]
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements persistence.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
