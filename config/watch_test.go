package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, validYAML)
	w, err := NewWatcher(path, 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates := make(chan AppConfig, 1)
	go func() {
		_ = w.Start(ctx, func(cfg AppConfig) {
			select {
			case updates <- cfg:
			default:
			}
		}, nil)
	}()

	// Give the watch loop a moment to come up, then touch the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	select {
	case cfg := <-updates:
		require.Equal(t, "test", cfg.Env)
	case <-ctx.Done():
		t.Fatal("watcher did not deliver an update")
	}
}

func TestWatcher_ReportsReloadErrors(t *testing.T) {
	path := writeConfig(t, validYAML)
	w, err := NewWatcher(path, 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errs := make(chan error, 1)
	go func() {
		_ = w.Start(ctx, nil, func(err error) {
			select {
			case errs <- err:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("env: [broken"), 0o644))

	select {
	case err := <-errs:
		require.Error(t, err)
	case <-ctx.Done():
		t.Fatal("watcher did not report the reload error")
	}
}

func TestNewWatcher_MissingFile(t *testing.T) {
	_, err := NewWatcher("/nonexistent/config.yaml", 0)
	require.Error(t, err)
}
