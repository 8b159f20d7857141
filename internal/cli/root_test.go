package cli

import (
	"io"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"scan", "render", "browse", "serve", "snapshot", "dot", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandMetadata(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q", root.Use)
	}
	if !root.SilenceUsage {
		t.Error("usage should be silenced on errors")
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag not registered")
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.SetLogLevel(LogDebug)
	if c.Logger.GetLevel() != LogDebug {
		t.Error("SetLogLevel did not change the logger level")
	}
}
