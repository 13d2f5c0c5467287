package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybank/internal/config"
	"memorybank/internal/domain"
	"memorybank/internal/ports"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Root = filepath.Join(t.TempDir(), "bank")
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	return cfg
}

func TestRuntime_LoadAndHistory(t *testing.T) {
	ctx := context.Background()
	rt, err := New(testConfig(t), nil)
	require.NoError(t, err)
	defer rt.Close()

	created, err := rt.Orchestrator.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, created, len(domain.AllDocumentTypes()))

	revs, err := rt.Orchestrator.History(domain.DocProgress, 0)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.True(t, revs[0].Created)
}

func TestRuntime_HistoryDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = false

	rt, err := New(cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Index)
	_, err = rt.Orchestrator.LoadAll(context.Background())
	require.NoError(t, err)

	revs, err := rt.Orchestrator.History(domain.DocProgress, 0)
	require.NoError(t, err)
	assert.Empty(t, revs)
	assert.NoFileExists(t, cfg.History.Path)
}

func TestRuntime_WatcherInvalidatesExternalEdits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := New(testConfig(t), nil)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Orchestrator.LoadAll(ctx)
	require.NoError(t, err)
	require.NoError(t, rt.Start(ctx, true))

	path := filepath.Join(rt.Orchestrator.Root(), domain.DocProgress.RelativePath())
	_, err = rt.Reader.Read(ctx, path, ports.ReadOptions{})
	require.NoError(t, err)
	_, cached := rt.Cache.Peek(path)
	require.True(t, cached)

	require.NoError(t, os.WriteFile(path, []byte("edited elsewhere"), 0o644))
	assert.Eventually(t, func() bool {
		_, ok := rt.Cache.Peek(path)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRuntime_CloseIsSafe(t *testing.T) {
	rt, err := New(testConfig(t), nil)
	require.NoError(t, err)

	require.NoError(t, rt.Start(context.Background(), false))
	assert.NoError(t, rt.Close())
	assert.False(t, rt.Orchestrator.IsInitialized())
}
