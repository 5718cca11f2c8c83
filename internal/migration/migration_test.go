package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	m := &Migrator{}

	migrations, err := m.loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	// Versions are strictly increasing.
	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].Version, migrations[i-1].Version)
	}

	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "init_schema", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "tracking_counters")
	assert.Contains(t, migrations[0].SQL, "pg_trgm")
}
