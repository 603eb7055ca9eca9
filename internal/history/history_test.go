package history

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sizeup-ci/sizeup/schema"
)

func sampleRecord(jobName string, buildNumber int64) schema.RunRecord {
	durationMs := int32(840)
	return schema.RunRecord{
		JobName:         jobName,
		BuildNumber:     buildNumber,
		CreatedAt:       time.Now(),
		Branch:          "feature/login-retry",
		ProjectType:     "nodejs",
		FeatureJSON:     `{"schema_version":2,"files_changed":4}`,
		CPUPercent:      61.5,
		MemoryGB:        3.4,
		TimeMinutes:     11.2,
		Confidence:      "high",
		Method:          "model",
		ClassName:       "medium",
		InstanceType:    "t3.medium",
		BufferedGB:      4.08,
		AtCapacity:      false,
		RunDurationMs:   &durationMs,
		FallbackApplied: false,
	}
}

func TestHistoryStore_UnsupportedBackend(t *testing.T) {
	_, err := NewHistoryStore(schema.DatabaseBackend("bogus"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestHistoryStore_SQLite(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Record a run and verify the returned ID
	record := sampleRecord("web-frontend", 12)
	runID, err := store.RecordRun(record)
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	// Count runs for the job
	count, err := store.CountRuns("web-frontend")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Read the run back and verify fields survive the round trip
	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, record.JobName, got.JobName)
	assert.Equal(t, record.BuildNumber, got.BuildNumber)
	assert.WithinDuration(t, record.CreatedAt, got.CreatedAt, time.Second)
	assert.Equal(t, record.Branch, got.Branch)
	assert.Equal(t, record.ProjectType, got.ProjectType)
	assert.Equal(t, record.FeatureJSON, got.FeatureJSON)
	assert.InDelta(t, record.CPUPercent, got.CPUPercent, 0.001)
	assert.InDelta(t, record.MemoryGB, got.MemoryGB, 0.001)
	assert.InDelta(t, record.TimeMinutes, got.TimeMinutes, 0.001)
	assert.Equal(t, record.Confidence, got.Confidence)
	assert.Equal(t, record.Method, got.Method)
	assert.Equal(t, record.ClassName, got.ClassName)
	assert.Equal(t, record.InstanceType, got.InstanceType)
	assert.InDelta(t, record.BufferedGB, got.BufferedGB, 0.001)
	assert.Equal(t, record.AtCapacity, got.AtCapacity)
	require.NotNil(t, got.RunDurationMs)
	assert.Equal(t, *record.RunDurationMs, *got.RunDurationMs)
	assert.Equal(t, record.FallbackApplied, got.FallbackApplied)
}

func TestHistoryStore_MultipleRuns(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Record several runs and verify IDs are unique and ascending
	var runIDs []int64
	for i := range 3 {
		id, err := store.RecordRun(sampleRecord("api-service", int64(i+1)))
		require.NoError(t, err)
		runIDs = append(runIDs, id)
	}

	assert.Len(t, runIDs, 3)
	assert.Less(t, runIDs[0], runIDs[1])
	assert.Less(t, runIDs[1], runIDs[2])

	// GetAllRuns returns oldest first
	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, int64(1), runs[0].BuildNumber)
	assert.Equal(t, int64(3), runs[2].BuildNumber)
}

func TestHistoryStore_CountRunsPerJob(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	for i := range 2 {
		_, err := store.RecordRun(sampleRecord("job-a", int64(i+1)))
		require.NoError(t, err)
	}
	_, err = store.RecordRun(sampleRecord("job-b", 1))
	require.NoError(t, err)

	countA, err := store.CountRuns("job-a")
	require.NoError(t, err)
	assert.Equal(t, 2, countA)

	countB, err := store.CountRuns("job-b")
	require.NoError(t, err)
	assert.Equal(t, 1, countB)

	countMissing, err := store.CountRuns("no-such-job")
	require.NoError(t, err)
	assert.Equal(t, 0, countMissing)
}

func TestHistoryStore_GetAllRuns_Empty(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestHistoryStore_GetStatus(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Empty store reports zero runs but a live connection
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes["sizeup_runs"])

	// Record runs for two jobs
	firstID, err := store.RecordRun(sampleRecord("job-a", 1))
	require.NoError(t, err)
	lastID, err := store.RecordRun(sampleRecord("job-b", 1))
	require.NoError(t, err)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, lastID, status.LastRunID)
	assert.Equal(t, 2, status.JobCount)
	assert.False(t, status.LastRunTime.IsZero())
	assert.False(t, status.FirstRunTime.IsZero())
	assert.True(t, firstID < status.LastRunID)
	assert.Equal(t, int64(2), status.TableSizes["sizeup_runs"])
}

func TestHistoryStore_Clear(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.RecordRun(sampleRecord("job-a", 1))
	require.NoError(t, err)

	err = store.Clear()
	require.NoError(t, err)

	count, err := store.CountRuns("job-a")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestHistoryStore_NullableDuration(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	record := sampleRecord("job-a", 1)
	record.RunDurationMs = nil
	_, err = store.RecordRun(record)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].RunDurationMs)
}

func TestInitStores(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "sizeup_history.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		err := InitStores(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NotNil(t, Manager.GetHistoryStore())

		CloseStores()

		// Verify database file was created
		_, err = os.Stat(dbPath)
		assert.NoError(t, err)
	})

	t.Run("idempotent setup", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "sizeup_history.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Multiple initializations should be safe (sync.Once)
		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))

		// Multiple closes should be safe (sync.Once)
		CloseStores()
		CloseStores()
		CloseStores()
	})

	t.Run("none backend", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		Manager.Lock()
		Manager.store = nil
		Manager.Unlock()

		err := InitStores(schema.NoneBackend, "")
		require.NoError(t, err)

		// The none backend leaves run tracking disabled
		assert.Nil(t, Manager.GetHistoryStore())

		CloseStores()
	})
}

func withManagerStore(t *testing.T, dbPath string) {
	t.Helper()

	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)

	Manager.Lock()
	prev := Manager.store
	Manager.store = store
	Manager.Unlock()

	t.Cleanup(func() {
		Manager.Lock()
		Manager.store = prev
		Manager.Unlock()
		_ = store.Close()
	})
}

func TestExecuteHistoryExport(t *testing.T) {
	t.Run("missing output file", func(t *testing.T) {
		err := ExecuteHistoryExport("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output-file is required")
	})

	t.Run("disabled store", func(t *testing.T) {
		Manager.Lock()
		prev := Manager.store
		Manager.store = nil
		Manager.Unlock()
		defer func() {
			Manager.Lock()
			Manager.store = prev
			Manager.Unlock()
		}()

		err := ExecuteHistoryExport("out")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disabled")
	})

	t.Run("no data", func(t *testing.T) {
		tmpDir := t.TempDir()
		withManagerStore(t, filepath.Join(tmpDir, "empty.db"))

		err := ExecuteHistoryExport(filepath.Join(tmpDir, "out"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no recorded runs")
	})

	t.Run("exports runs", func(t *testing.T) {
		tmpDir := t.TempDir()
		withManagerStore(t, filepath.Join(tmpDir, "runs.db"))

		_, err := Manager.GetHistoryStore().RecordRun(sampleRecord("job-a", 1))
		require.NoError(t, err)
		_, err = Manager.GetHistoryStore().RecordRun(sampleRecord("job-a", 2))
		require.NoError(t, err)

		outputFile := filepath.Join(tmpDir, "training")
		err = ExecuteHistoryExport(outputFile)
		require.NoError(t, err)

		info, err := os.Stat(outputFile + ".runs.parquet")
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}

func TestMigrateHistory_NoneBackend(t *testing.T) {
	err := MigrateHistory(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported")
}

func TestMigrateHistory_SQLite(t *testing.T) {
	// Create a temporary database file for testing
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_migration.db")

	// Run migration to latest version
	err := MigrateHistory(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)

	// Verify migration was successful by checking the database file exists
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	// Run migration again (should be a no-op)
	err = MigrateHistory(schema.SQLiteBackend, dbPath, -1)
	assert.NoError(t, err)

	// Step back to version 1 (drops the job_name index)
	err = MigrateHistory(schema.SQLiteBackend, dbPath, 1)
	assert.NoError(t, err)

	// Rollback to version 0
	err = MigrateHistory(schema.SQLiteBackend, dbPath, 0)
	assert.NoError(t, err)

	// Migrate back up to version 2
	err = MigrateHistory(schema.SQLiteBackend, dbPath, 2)
	assert.NoError(t, err)
}

func TestMigrateHistory_SQLiteInMemory(t *testing.T) {
	// Test with in-memory database
	err := MigrateHistory(schema.SQLiteBackend, ":memory:", -1)
	require.NoError(t, err)
}
