package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type mockStatsProvider struct {
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	return m.stats
}

type mockDBUpdater struct {
	mu    sync.Mutex
	count int
}

func (m *mockDBUpdater) UpdateDBMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
}

func (m *mockDBUpdater) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{AudioAssets: 80, VideoAssets: 20},
	}

	collector := NewCollector(provider, "/tmp/test.db", 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}
	if collector.statsProvider != provider {
		t.Error("statsProvider not set correctly")
	}
	if collector.dbPath != "/tmp/test.db" {
		t.Errorf("dbPath = %q, want %q", collector.dbPath, "/tmp/test.db")
	}
	if collector.interval != 5*time.Second {
		t.Errorf("interval = %v, want %v", collector.interval, 5*time.Second)
	}
	if collector.stopChan == nil {
		t.Error("stopChan not initialized")
	}
}

func TestCollectorStartStop(_ *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{AudioAssets: 50},
	}

	collector := NewCollector(provider, "", 100*time.Millisecond)

	collector.Start()
	time.Sleep(150 * time.Millisecond)
	collector.Stop()

	// Test should complete without hanging
}

func TestCollectWithNilProvider(t *testing.T) {
	collector := NewCollector(nil, "/tmp/test.db", 1*time.Second)

	// Should not panic when collecting with nil provider
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect() panicked with nil provider: %v", r)
		}
	}()

	collector.collect()
}

func TestCollectCallsDBUpdater(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{AudioAssets: 10},
	}
	updater := &mockDBUpdater{}

	collector := NewCollector(provider, "", 1*time.Second)
	collector.SetDBMetricsUpdater(updater)

	collector.collect()
	collector.collect()

	if cnt := updater.calls(); cnt != 2 {
		t.Errorf("UpdateDBMetrics called %d times, want 2", cnt)
	}
}

func TestCollectDBSizeWithWALAndSHM(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	if err := os.WriteFile(dbPath, []byte("main db"), 0o644); err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := os.WriteFile(dbPath+"-wal", []byte("wal file"), 0o644); err != nil {
		t.Fatalf("failed to create WAL file: %v", err)
	}
	if err := os.WriteFile(dbPath+"-shm", []byte("shm file"), 0o644); err != nil {
		t.Fatalf("failed to create SHM file: %v", err)
	}

	collector := NewCollector(nil, dbPath, 1*time.Second)
	collector.collectDBSize()
}

func TestCollectDBSizeWithMissingDatabase(t *testing.T) {
	collector := NewCollector(nil, "/nonexistent/path/db.db", 1*time.Second)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collectDBSize() panicked with missing database: %v", r)
		}
	}()

	collector.collectDBSize()
}

func TestCollectDBSizeWithEmptyPath(t *testing.T) {
	collector := NewCollector(nil, "", 1*time.Second)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collectDBSize() panicked with empty path: %v", r)
		}
	}()

	collector.collectDBSize()
}

func TestCollectWithStatsProvider(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{
			AudioAssets:        100,
			VideoAssets:        45,
			TotalFormats:       12,
			StreamsPreparation: 2,
			StreamsInProgress:  1,
			StreamsSuccessful:  400,
			StreamsFailure:     5,
		},
	}

	collector := NewCollector(provider, "", 1*time.Second)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect() panicked: %v", r)
		}
	}()

	collector.collect()
}

func TestStatsProviderInterface(_ *testing.T) {
	var _ StatsProvider = (*mockStatsProvider)(nil)
}

func TestDBMetricsUpdaterInterface(_ *testing.T) {
	var _ DBMetricsUpdater = (*mockDBUpdater)(nil)
}

func TestCollectorStopBeforeStart(t *testing.T) {
	provider := &mockStatsProvider{}
	collector := NewCollector(provider, "", 1*time.Second)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Stop() before Start() panicked: %v", r)
		}
	}()

	collector.Stop()
}
