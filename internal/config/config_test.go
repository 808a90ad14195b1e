package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCheckerConfig(t *testing.T) {
	cfg := DefaultCheckerConfig()
	if !cfg.CheckOverflow || cfg.ScrapeQuals {
		t.Errorf("DefaultCheckerConfig() = %+v, want overflow checking on and qualifier scraping off", cfg)
	}
}

func TestLoadProjectFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadProjectFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadProjectFile on a missing file should not error: %v", err)
	}
	if cfg != DefaultCheckerConfig() {
		t.Errorf("LoadProjectFile on a missing file = %+v, want defaults", cfg)
	}
}

func TestLoadProjectFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".liquidgo.yaml")
	if err := os.WriteFile(path, []byte("check_overflow: false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadProjectFile(path)
	if err != nil {
		t.Fatalf("LoadProjectFile: %v", err)
	}
	if cfg.CheckOverflow {
		t.Errorf("CheckOverflow should be overlaid to false")
	}
	if cfg.ScrapeQuals {
		t.Errorf("ScrapeQuals should keep its default (false) when absent from the file")
	}
}

func TestTrimAndHasSourceExt(t *testing.T) {
	if got, want := TrimSourceExt("foo.rlq"), "foo"; got != want {
		t.Errorf("TrimSourceExt(foo.rlq) = %q, want %q", got, want)
	}
	if got, want := TrimSourceExt("foo.refine"), "foo"; got != want {
		t.Errorf("TrimSourceExt(foo.refine) = %q, want %q", got, want)
	}
	if got, want := TrimSourceExt("foo.txt"), "foo.txt"; got != want {
		t.Errorf("TrimSourceExt(foo.txt) = %q, want %q (unrecognized ext left alone)", got, want)
	}
	if !HasSourceExt("a/b/foo.rlq") {
		t.Errorf("HasSourceExt(foo.rlq) should be true")
	}
	if HasSourceExt("foo.go") {
		t.Errorf("HasSourceExt(foo.go) should be false")
	}
}
