package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRun_ServesUntilSignalled(t *testing.T) {
	port := freePort(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "insight.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
server:
  host: 127.0.0.1
  port: %d
storage:
  engine: sqlite
  data_path: %s
llm:
  base_url: http://127.0.0.1:1
  call_timeout: 1s
embedding:
  provider: hashing
log:
  level: error
`, port, dir)), 0o600))

	stop := make(chan os.Signal, 1)
	errc := make(chan error, 1)
	go func() { errc <- run(configPath, stop) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	stop <- syscall.SIGTERM
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after signal")
	}

	_, err := os.Stat(filepath.Join(dir, "insight.db"))
	assert.NoError(t, err)
}

func TestRun_InvalidConfig(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "missing.yaml"), make(chan os.Signal))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
