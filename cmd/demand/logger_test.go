package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualHandler_CopiesErrorsOnly(t *testing.T) {
	var core, errs bytes.Buffer

	log := slog.New(&dualHandler{
		coreHandler:  slog.NewTextHandler(&core, &slog.HandlerOptions{Level: slog.LevelDebug}),
		errorHandler: slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}).With(slog.String("op", "test"))

	log.Info("imported")
	log.Error("failed to save hours records")

	assert.Contains(t, core.String(), "imported")
	assert.Contains(t, core.String(), "failed to save hours records")
	assert.NotContains(t, errs.String(), "imported")
	assert.Contains(t, errs.String(), "failed to save hours records")
	assert.Contains(t, errs.String(), "op=test")
}

func TestSetupLogger_WritesErrorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")

	log, closeLog := setupLogger(envProd, path)
	log.Error("db unreachable")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "db unreachable")
}

func TestSetupLogger_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "errors.log")

	log, closeLog := setupLogger(envLocal, path)
	defer closeLog()

	require.NotNil(t, log)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
