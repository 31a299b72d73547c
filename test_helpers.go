package main

import (
	"bytes"
	"log/slog"
	"os"
)

// TestHelper provides utilities for testing
type TestHelper struct {
	originalEnv map[string]string
	logBuffer   *bytes.Buffer
}

// SetupTestEnv captures the current environment and clears every WEBSERVER_*
// variable so tests start from a known state
func SetupTestEnv() *TestHelper {
	helper := &TestHelper{
		originalEnv: make(map[string]string),
		logBuffer:   &bytes.Buffer{},
	}

	// Capture original environment
	envVars := []string{
		"WEBSERVER_HOST",
		"WEBSERVER_PORT",
		"WEBSERVER_WEBDIR",
		"WEBSERVER_LOG_LEVEL",
		"WEBSERVER_CONFIG_FILE",
	}
	for _, envVar := range envVars {
		helper.originalEnv[envVar] = os.Getenv(envVar)
		os.Unsetenv(envVar)
	}

	return helper
}

// RestoreEnv restores the original environment
func (h *TestHelper) RestoreEnv() {
	for key, value := range h.originalEnv {
		if value == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, value)
		}
	}
}

// SetEnv sets an environment variable for testing
func (h *TestHelper) SetEnv(key, value string) {
	os.Setenv(key, value)
}

// Logger returns a debug-level logger writing into the capture buffer
func (h *TestHelper) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(h.logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// GetLogs returns the captured log output
func (h *TestHelper) GetLogs() string {
	return h.logBuffer.String()
}

// ClearLogs clears the log buffer
func (h *TestHelper) ClearLogs() {
	h.logBuffer.Reset()
}
