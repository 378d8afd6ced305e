// Command falmcp serves the fal.ai image-editing tools over MCP. By
// default it speaks the protocol on stdin/stdout; with -http (or a PORT
// environment variable) it serves the SSE transport and a small REST
// surface over HTTP instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/config"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/fal"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/httpapi"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/imagetools"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/mcpserver"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/slackclient"
)

const (
	serverName    = "fal-ai-image-editor"
	serverVersion = "1.0.0"
	defaultPort   = 8000
)

func main() {
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	httpMode := flag.Bool("http", false, "serve over HTTP (SSE + REST) instead of stdio")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*httpMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(httpMode bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	// Protocol traffic owns stdout in stdio mode, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	falClient := fal.New(cfg.FalKey, fal.WithLogger(logger))
	slackClient := slackclient.New(cfg.SlackBotToken, cfg.DefaultChannel, slackclient.WithLogger(logger))

	tb := imagetools.New(falClient, slackClient).Toolbox()

	srv := mcpserver.New(serverName, serverVersion)
	srv.Register(tb)

	if httpMode || cfg.Port != 0 {
		port := cfg.Port
		if port == 0 {
			port = defaultPort
		}

		addr := fmt.Sprintf(":%d", port)
		logger.Info("serving HTTP", "addr", addr)

		handler := httpapi.New(falClient, srv.SSEHandler(), logger)

		return httpapi.Serve(ctx, addr, handler)
	}

	logger.Info("serving MCP on stdio", "server", serverName)

	err = srv.Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// loadDotEnv loads environment variables from path. Missing files are
// ignored.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}
