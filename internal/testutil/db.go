package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pickaxe/internal/store"
)

// OpenSQLite opens a private in-memory database on the pure-Go driver.
// It is closed when the test ends.
func OpenSQLite(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{Driver: store.DriverPure, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
