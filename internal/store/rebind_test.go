package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		driver Driver
		in     string
		want   string
	}{
		{"sqlite unchanged", DriverSQLite, "SELECT * FROM trips WHERE id = ?", "SELECT * FROM trips WHERE id = ?"},
		{"postgres single", DriverPostgres, "SELECT * FROM trips WHERE id = ?", "SELECT * FROM trips WHERE id = $1"},
		{"postgres many", DriverPostgres, "INSERT INTO t (a, b, c) VALUES (?, ?, ?)", "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
		{"postgres none", DriverPostgres, "SELECT 1", "SELECT 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rebind(tc.driver, tc.in))
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=1&_busy_timeout=5000", sqliteDSN(":memory:"))
	assert.Equal(t, "journal.db?mode=rwc&_foreign_keys=1&_busy_timeout=5000", sqliteDSN("journal.db?mode=rwc"))
	assert.Equal(t, "j.db?_fk=1&_busy_timeout=10", sqliteDSN("j.db?_fk=1&_busy_timeout=10"))
}

func TestParseDriver(t *testing.T) {
	d, err := ParseDriver(" SQLite ")
	assert.NoError(t, err)
	assert.Equal(t, DriverSQLite, d)

	d, err = ParseDriver("postgres")
	assert.NoError(t, err)
	assert.Equal(t, DriverPostgres, d)

	_, err = ParseDriver("mysql")
	assert.Error(t, err)
}
