package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/a3tai/copa-listings/internal/config"
)

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	version, buildTime, gitCommit = "1.2.3", "2025-06-01_10:30:00", "abc123"
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	var buf bytes.Buffer
	printVersion(&buf)

	output := buf.String()
	for _, expected := range []string{
		"COPA Listings MCP Server",
		"Version: 1.2.3",
		"Build Time: 2025-06-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		assert.Contains(t, output, expected)
	}
}

func TestRun_Version(t *testing.T) {
	for _, arg := range []string{"--version", "-v"} {
		var buf bytes.Buffer
		require.NoError(t, run(context.Background(), []string{arg}, &buf))
		assert.Contains(t, buf.String(), "Version: dev")
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	err := run(context.Background(), []string{"--no-such-flag"}, &bytes.Buffer{})
	assert.Error(t, err)

	err = run(context.Background(), []string{"--mode", "carrier-pigeon", "--dir", t.TempDir()}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestParseFlags(t *testing.T) {
	dir := t.TempDir()
	flags, err := parseFlags([]string{"--mode", "server", "--port", "9090", "--dir", dir})
	require.NoError(t, err)

	cfg, err := config.Load(flags)
	require.NoError(t, err)
	assert.True(t, cfg.IsServerMode())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, dir, cfg.PDFDirectory)
}

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	logger, err := newLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug is off in stdio mode")
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel), "info is silenced in stdio mode")

	cfg.Mode = config.ModeServer
	logger, err = newLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = t.TempDir()

	server, closeFn, err := newServer(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, server)
	closeFn()
}
