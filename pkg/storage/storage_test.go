package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuntStorage_SaveAndLoad(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	overrides, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, overrides)

	require.NoError(t, store.Save("UNI", "uniswap"))
	require.NoError(t, store.Save("BTC", "bitcoin"))
	// replacing an existing override keeps a single entry
	require.NoError(t, store.Save("UNI", "unicorn-token"))

	overrides, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"UNI": "unicorn-token",
		"BTC": "bitcoin",
	}, overrides)
}

func TestBuntStorage_FileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.db")

	store, err := FromFile(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("UNI", "uniswap"))
	require.NoError(t, store.Close())

	reopened, err := FromFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	overrides, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"UNI": "uniswap"}, overrides)
}

func TestSQLStorage_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.sqlite")

	store, err := FromSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("UNI", "uniswap"))
	require.NoError(t, store.Save("UNI", "unicorn-token"))

	overrides, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"UNI": "unicorn-token"}, overrides)
}
