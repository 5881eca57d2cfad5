package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/khoshoo3/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "khoshoo3.db")

	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Init())
	settings, err := store.GetSettings()
	require.NoError(t, err)
	settings.WindowMinutes = 20
	require.NoError(t, store.SaveSettings(settings))
	require.NoError(t, store.Close())

	return dbPath
}

// steppingClock advances one minute per call
func steppingClock() func() time.Time {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func windowMinutes(t *testing.T, dbPath string) int {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Load())
	defer store.Close()
	settings, err := store.GetSettings()
	require.NoError(t, err)
	return settings.WindowMinutes
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(dbPath), BackupDirName), filepath.Dir(backupPath))
	assert.Equal(t, 20, windowMinutes(t, backupPath))
}

func TestCreateBackup_MissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))

	_, err := mgr.CreateBackup()
	assert.Error(t, err)
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	var newest string
	for i := 0; i < MaxBackups+3; i++ {
		path, err := mgr.CreateBackup()
		require.NoError(t, err)
		newest = path
	}

	backups, err := mgr.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)
	assert.Equal(t, newest, backups[0].Path)
	for i := 1; i < len(backups); i++ {
		assert.True(t, backups[i-1].Timestamp.After(backups[i].Timestamp))
	}
}

func TestListBackups_IgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)

	_, err = mgr.CreateBackup()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(mgr.GetBackupDir(), BackupFilePrefix+"garbage.db"), nil, 0600))

	backups, err = mgr.ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	first, err := mgr.CreateBackup()
	require.NoError(t, err)
	second, err := mgr.CreateBackup()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	backups, err := mgr.ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	backupPath, err := mgr.CreateBackup()
	require.NoError(t, err)

	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Load())
	settings, err := store.GetSettings()
	require.NoError(t, err)
	settings.WindowMinutes = 45
	require.NoError(t, store.SaveSettings(settings))
	require.NoError(t, store.Close())

	previous, err := mgr.RestoreBackup(backupPath)
	require.NoError(t, err)

	assert.Equal(t, 20, windowMinutes(t, dbPath))
	require.NotEmpty(t, previous)
	assert.Equal(t, 45, windowMinutes(t, previous), "pre-restore state is kept")
}

func TestRestoreBackup_Invalid(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	_, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	require.NoError(t, os.WriteFile(bogus, []byte("not a database at all, just some text"), 0600))
	_, err = mgr.RestoreBackup(bogus)
	assert.Error(t, err)

	assert.Equal(t, 20, windowMinutes(t, dbPath))
}
