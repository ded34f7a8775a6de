package driver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nsyszr/flowpilot/config"
	"github.com/nsyszr/flowpilot/pkg/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemorySharesStore(t *testing.T) {
	ini, err := NewInitializer(&config.Config{StorageDriver: Memory})
	require.NoError(t, err)

	ctx := context.Background()
	s, err := ini.Init(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Events().Create(ctx, storagetest.NewEvent("c1", "click #a", 1)))

	// A torn down handle does not lose the events of the memory backend.
	ini.Invalidate()
	s, err = ini.Init(ctx)
	require.NoError(t, err)

	events, err := s.Events().FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestNewSQLiteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ini, err := NewInitializer(&config.Config{SQLitePath: path})
	require.NoError(t, err)
	defer ini.Close()

	s, err := ini.Init(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.FileExists(t, path)
}

func TestNewUnknown(t *testing.T) {
	_, err := New(&config.Config{StorageDriver: "mongodb"})
	assert.Error(t, err)
}
