package main

import (
	"context"
	"flag"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestAppCommands(t *testing.T) {
	app := newApp()

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"sync", "embed-worker", "search", "get"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestSyncCommandFlags(t *testing.T) {
	app := newApp()

	var syncCmd *cli.Command
	for _, cmd := range app.Commands {
		if cmd.Name == "sync" {
			syncCmd = cmd
		}
	}
	require.NotNil(t, syncCmd)

	required := map[string]bool{}
	for _, f := range syncCmd.Flags {
		if rf, ok := f.(cli.RequiredFlag); ok && rf.IsRequired() {
			for _, name := range f.Names() {
				required[name] = true
			}
		}
	}
	assert.True(t, required["tenant"])
	assert.True(t, required["source"])
}

func TestSetupLogger(t *testing.T) {
	makeContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return cli.NewContext(newApp(), set, nil)
	}

	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG"} {
			assert.NoError(t, setupLogger(makeContext(level)), "level %q", level)
		}
		// Leave the default logger sane for other tests.
		require.NoError(t, setupLogger(makeContext("info")))
		assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	})

	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, setupLogger(makeContext("verbose")))
	})
}

func TestTenantIDParsing(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("tenant", "not-a-uuid", "")
	ctx := cli.NewContext(newApp(), set, nil)

	_, err := tenantID(ctx)
	assert.Error(t, err)
}
