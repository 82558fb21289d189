package os_test

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmos "github.com/tendermint/lightivc/libs/os"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.False(t, tmos.FileExists(dir))

	require.NoError(t, tmos.EnsureDir(dir, 0700))
	assert.True(t, tmos.FileExists(dir))

	// existing directories are left alone
	require.NoError(t, tmos.EnsureDir(dir, 0700))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))
	assert.Error(t, tmos.EnsureDir(filepath.Join(file, "sub"), 0700))
}

type mockLogger struct{ infos int }

func (ml *mockLogger) Info(msg string, keyvals ...interface{}) { ml.infos++ }

func TestTrapSignal(t *testing.T) {
	defer leaktest.Check(t)()

	ctx, stop := tmos.TrapSignal(context.Background(), &mockLogger{})
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not canceled by SIGTERM")
	}
}

func TestTrapSignalStop(t *testing.T) {
	defer leaktest.Check(t)()

	parent, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx, stop := tmos.TrapSignal(parent, &mockLogger{})
	stop()
	stop()
	assert.Error(t, ctx.Err())
	assert.NoError(t, parent.Err())
}
