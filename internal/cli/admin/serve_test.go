package admin

import (
	"fmt"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMigrationOutcome(t *testing.T) {
	capture := func(logged *string) func(string, ...any) {
		return func(format string, args ...any) {
			*logged = fmt.Sprintf(format, args...)
		}
	}

	t.Run("empty schema", func(t *testing.T) {
		var logged string
		err := reportMigrationOutcome(capture(&logged), migrate.ErrNoChange, migrate.ErrNilVersion, 0, false)
		require.NoError(t, err)
		assert.Equal(t, "migrations: database is up to date (no migrations applied)", logged)
	})

	t.Run("dirty schema fails", func(t *testing.T) {
		var logged string
		err := reportMigrationOutcome(capture(&logged), nil, nil, 3, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version 3 is dirty")
		assert.Empty(t, logged)
	})

	t.Run("already current", func(t *testing.T) {
		var logged string
		err := reportMigrationOutcome(capture(&logged), migrate.ErrNoChange, nil, 2, false)
		require.NoError(t, err)
		assert.Equal(t, "migrations: database is up to date (version 2)", logged)
	})

	t.Run("migrations applied", func(t *testing.T) {
		var logged string
		err := reportMigrationOutcome(capture(&logged), nil, nil, 2, false)
		require.NoError(t, err)
		assert.Equal(t, "migrations: applied successfully (version 2)", logged)
	})
}
