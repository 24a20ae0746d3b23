package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/dslhost/internal/config"
	"github.com/aretw0/dslhost/internal/logging"
	"github.com/aretw0/dslhost/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func newServeTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().String("config", "", "")
	addServeFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestVersionCommand(t *testing.T) {
	out := executeRoot(t, "version")
	assert.Equal(t, "dslhost version 0.1.0 (api 1.0.0)\n", out)
}

func TestScriptCommand_Raw(t *testing.T) {
	out := executeRoot(t, "script", "--raw")
	assert.Equal(t, domain.DefaultScript+"\n", out)
}

func TestResolveConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := resolveConfig(newServeTestCmd(t))
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("Flags override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dslhost.yaml")
		require.NoError(t, os.WriteFile(path, []byte("port: 6000\nhost: 0.0.0.0\nlog_level: warn\n"), 0644))

		cfg, err := resolveConfig(newServeTestCmd(t, "--config", path, "--port", "7000"))
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Port)
		assert.Equal(t, "0.0.0.0", cfg.Host)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("Invalid port", func(t *testing.T) {
		_, err := resolveConfig(newServeTestCmd(t, "--port", "70000"))
		assert.ErrorIs(t, err, config.ErrInvalidPort)
	})

	t.Run("Invalid level", func(t *testing.T) {
		_, err := resolveConfig(newServeTestCmd(t, "--log-level", "chatty"))
		assert.Error(t, err)
	})

	t.Run("Missing config file", func(t *testing.T) {
		_, err := resolveConfig(newServeTestCmd(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
		assert.Error(t, err)
	})
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	metricsLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, config.Default(), logging.NewNop(), ln, metricsLn)
	}()

	base := "http://" + ln.Addr().String()
	client := &http.Client{Timeout: 2 * time.Second}

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = client.Get(base + "/get-initial-data")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"script": "form(Product Review): rating(1-5), comments  -> /api/comments"}`, string(body))

	resp, err = client.Post(base+"/api/comments", "application/json", bytes.NewBufferString(`{"rating": 4}`))
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"i_am_a_response"`, string(body))

	// The counter is bumped after the response is flushed, so poll for it.
	assert.Eventually(t, func() bool {
		resp, err := client.Get("http://" + metricsLn.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		return err == nil && bytes.Contains(body, []byte(`dslhost_http_requests_total{method="POST",route="/*",status="200"} 1`))
	}, 2*time.Second, 20*time.Millisecond)

	resp, err = client.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, resp.StatusCode, "metrics stay off the public listener")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}
