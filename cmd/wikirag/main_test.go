package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newLogLevelContext(t *testing.T, level string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", "", "")
	require.NoError(t, set.Set("log-level", level))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetupLogger_ValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO", "Debug"} {
		t.Run(level, func(t *testing.T) {
			assert.NoError(t, setupLogger(newLogLevelContext(t, level)))
		})
	}
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	err := setupLogger(newLogLevelContext(t, "verbose"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
