package mcpfetch

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()

	require.False(t, Running())
	assert.Empty(t, ManagedAddr())

	inv := Invocation{Inputs: InvocationInputs{Port: 0}, ConsumerID: "test-consumer"}

	result, err := Run(ctx, inv, WithHost("127.0.0.1"))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Contains(t, result.Message, "started")

	require.True(t, Running())
	addr := ManagedAddr()
	require.NotEmpty(t, addr)

	t.Run("health endpoint responds while running", func(t *testing.T) {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get("http://" + addr + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("second run reports already running", func(t *testing.T) {
		again, err := Run(ctx, inv, WithHost("127.0.0.1"))
		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, again.Status)
		assert.Contains(t, again.Message, "already running")
		assert.Equal(t, addr, ManagedAddr())
	})

	require.NoError(t, Shutdown(ctx))
	assert.False(t, Running())
	assert.Empty(t, ManagedAddr())

	t.Run("shutdown without a server is a no-op", func(t *testing.T) {
		require.NoError(t, Shutdown(ctx))
	})
}

func TestRunReportsBindFailure(t *testing.T) {
	ctx := context.Background()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port

	result, err := Run(ctx, Invocation{Inputs: InvocationInputs{Port: port}}, WithHost("127.0.0.1"))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StatusError, result.Status)
	assert.True(t, strings.Contains(result.Message, "Failed to start"))

	assert.False(t, Running())
}
