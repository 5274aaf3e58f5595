package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore opens a private in-memory database on driver.
func openTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	s, err := Open(Config{Driver: driver, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Drivers(t *testing.T) {
	for _, driver := range []string{DriverCGo, DriverPure} {
		t.Run(driver, func(t *testing.T) {
			s := openTestStore(t, driver)

			timeout, err := s.pragma("busy_timeout")
			require.NoError(t, err)
			assert.Equal(t, "5000", timeout)

			ctx := context.Background()
			_, err = s.Exec(ctx, "CREATE TABLE t (v TEXT)")
			require.NoError(t, err)
			_, err = s.Exec(ctx, "INSERT INTO t (v) VALUES (json_extract('{\"a\":1}', '$.a'))")
			require.NoError(t, err)

			var n int
			require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
			assert.Equal(t, 1, n)
		})
	}
}

func TestOpen_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DriverCGo, cfg.Driver)
	assert.Equal(t, ":memory:", cfg.DSN)
	assert.NotNil(t, cfg.Logger)

	assert.Equal(t, Config{Driver: DriverCGo, DSN: ":memory:"}, DefaultConfig())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sqlite driver")
}

func TestClose_Nil(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}

func TestMarshalValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "x", "x"},
		{"int", 3, 3},
		{"true", true, int64(1)},
		{"false", false, int64(0)},
		{"array", []any{"b", 1, nil}, `["b",1,null]`},
		{"object sorted", map[string]any{"z": 1, "a": []any{true}}, `{"a":[true],"z":1}`},
		{"uint", uint8(7), uint8(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := marshalValue(struct{}{})
	assert.Error(t, err)
}
