package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverUpMigrations_SortedByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_indexes_up.sql":   {Data: []byte("CREATE INDEX ...")},
		"0001_init_up.sql":      {Data: []byte("CREATE TABLE ...")},
		"0001_init_down.sql":    {Data: []byte("DROP TABLE ...")},
		"0010_retention_up.sql": {Data: []byte("ALTER TABLE ...")},
		"notes.md":              {Data: []byte("irrelevant")},
	}

	files, err := Runner{Dir: "db/migrations"}.discoverUpMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, int64(1), files[0].Version)
	assert.Equal(t, int64(2), files[1].Version)
	assert.Equal(t, int64(10), files[2].Version)
}

func TestDiscoverUpMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_init_up.sql":    {Data: []byte("CREATE TABLE ...")},
		"0001_devices_up.sql": {Data: []byte("CREATE TABLE ...")},
	}

	_, err := Runner{Dir: "db/migrations"}.discoverUpMigrations(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate migration version 1")
}
