package backups

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/khoshoo3/internal/backup"
	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/cli/clitest"
	"github.com/julianstephens/khoshoo3/internal/storage/postgres"
)

func TestBackupCreateAndList(t *testing.T) {
	env := clitest.New(t, nil)

	assert.NoError(t, (&BackupListCmd{}).Run(env.Ctx))
	require.NoError(t, (&BackupCreateCmd{}).Run(env.Ctx))
	assert.NoError(t, (&BackupListCmd{}).Run(env.Ctx))

	backups, err := backup.NewManager(env.Store.GetConfigPath()).ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestBackupRestore(t *testing.T) {
	env := clitest.New(t, nil)
	mgr := backup.NewManager(env.Store.GetConfigPath())
	backupPath, err := mgr.CreateBackup()
	require.NoError(t, err)

	settings := env.Settings(t)
	settings.WindowMinutes = 40
	require.NoError(t, env.Store.SaveSettings(settings))

	t.Run("declined", func(t *testing.T) {
		cmd := &BackupRestoreCmd{BackupFile: filepath.Base(backupPath), in: strings.NewReader("n\n")}
		require.NoError(t, cmd.Run(env.Ctx))
		assert.Equal(t, 40, env.Settings(t).WindowMinutes)
	})

	t.Run("confirmed", func(t *testing.T) {
		cmd := &BackupRestoreCmd{BackupFile: filepath.Base(backupPath), in: strings.NewReader("yes\n")}
		require.NoError(t, cmd.Run(env.Ctx))

		require.NoError(t, env.Store.Load())
		assert.Equal(t, 15, env.Settings(t).WindowMinutes)
	})
}

func TestBackupRestore_NotFound(t *testing.T) {
	env := clitest.New(t, nil)

	err := (&BackupRestoreCmd{BackupFile: "nope.db", Yes: true}).Run(env.Ctx)
	assert.ErrorContains(t, err, "backup file not found")
}

func TestBackupPostgresRejected(t *testing.T) {
	ctx := &cli.Context{Store: postgres.New("postgres://user@localhost/khoshoo3")}

	assert.ErrorIs(t, (&BackupCreateCmd{}).Run(ctx), errPostgres)
	assert.ErrorIs(t, (&BackupListCmd{}).Run(ctx), errPostgres)
}
