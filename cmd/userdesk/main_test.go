package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("userdesk %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestMigrateThenUpToDate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("SQLITE_PATH", dbPath)
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	out := run(t, "--config", cfgPath, "migrate")
	if !strings.Contains(out, "applied 0001_users.sql") {
		t.Fatalf("first migrate output: %q", out)
	}

	out = run(t, "--config", cfgPath, "migrate")
	if !strings.Contains(out, "database is up to date") {
		t.Fatalf("second migrate output: %q", out)
	}
}

func TestSeedLoadsDemoUsers(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("SQLITE_PATH", dbPath)
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	out := run(t, "--config", cfgPath, "seed")
	if !strings.Contains(out, "seeded 23 users (23 total)") {
		t.Fatalf("seed output: %q", out)
	}

	out = run(t, "--config", cfgPath, "seed", "--reset")
	if !strings.Contains(out, "(23 total)") {
		t.Fatalf("reseed output: %q", out)
	}
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "seed"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("command %s not registered: %v", name, err)
		}
	}
}
