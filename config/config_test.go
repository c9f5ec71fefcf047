package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingExplicitConfigFileIsError(t *testing.T) {
	dir := t.TempDir()
	app, err := Load(filepath.Join(dir, "nonexistent.yaml"))
	// A missing explicit --config file is a hard error (the user asked
	// for a specific file); falling back to defaults only happens when
	// no file was named at all.
	if err == nil {
		t.Fatalf("Load with missing explicit config file: want error, got app=%+v", app)
	}
}

func TestLoadFallsBackToDefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	app, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if app.Lease.PeriodMs != 10000 {
		t.Fatalf("Lease.PeriodMs = %d, want 10000", app.Lease.PeriodMs)
	}
	if app.Lease.LeasePath != "/omid/tso-lease" {
		t.Fatalf("Lease.LeasePath = %q, want /omid/tso-lease", app.Lease.LeasePath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	os.Setenv("LEASE_PERIOD_MS", "5000")
	defer os.Unsetenv("LEASE_PERIOD_MS")

	app, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if app.Lease.PeriodMs != 5000 {
		t.Fatalf("Lease.PeriodMs = %d, want 5000 (env override)", app.Lease.PeriodMs)
	}
}
