// Command mcpfetch starts the website fetcher MCP server and runs it until
// interrupted.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mcpfetch/mcpfetch"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	port := getEnvInt("PORT", 8000)
	host := getEnv("HOST", "0.0.0.0")
	if nodeURL := os.Getenv("NODE_URL"); nodeURL != "" {
		log.Info("node URL configured", "node_url", nodeURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inv := mcpfetch.Invocation{Inputs: mcpfetch.InvocationInputs{Port: port}}
	result, err := mcpfetch.Run(ctx, inv,
		mcpfetch.WithLogger(log),
		mcpfetch.WithHost(host),
	)
	if err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	if result.Status != mcpfetch.StatusSuccess {
		log.Error("server did not start", "message", result.Message)
		os.Exit(1)
	}

	log.Info("server running", "addr", mcpfetch.ManagedAddr())

	<-ctx.Done()
	stop()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := mcpfetch.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown did not complete cleanly", "error", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
