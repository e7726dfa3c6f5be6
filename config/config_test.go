package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BaseBranch != "master" {
		t.Errorf("BaseBranch = %q, want %q", cfg.BaseBranch, "master")
	}
	if cfg.RemoteName != "origin" {
		t.Errorf("RemoteName = %q, want %q", cfg.RemoteName, "origin")
	}
	if cfg.PostSuffix != ".kp" {
		t.Errorf("PostSuffix = %q, want %q", cfg.PostSuffix, ".kp")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.BaseBranch = "main"
	cfg.ResourcesURL = "git@git.example.com:team/resources.git"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.BaseBranch != "main" {
		t.Errorf("BaseBranch = %q, want %q", loaded.BaseBranch, "main")
	}
	if loaded.ResourcesURL != cfg.ResourcesURL {
		t.Errorf("ResourcesURL = %q, want %q", loaded.ResourcesURL, cfg.ResourcesURL)
	}
	if loaded.ResourcesBranch != "stable" {
		t.Errorf("ResourcesBranch = %q, want %q", loaded.ResourcesBranch, "stable")
	}
}

func TestLoad_NormalizesEmptyFields(t *testing.T) {
	dir := t.TempDir()
	raw := "base_branch: \"\"\nremote_name: upstream\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseBranch != "master" {
		t.Errorf("BaseBranch = %q, want default %q", cfg.BaseBranch, "master")
	}
	if cfg.RemoteName != "upstream" {
		t.Errorf("RemoteName = %q, want %q", cfg.RemoteName, "upstream")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on malformed yaml")
	}
}

func TestIsPostPath(t *testing.T) {
	cfg := Default()

	tests := []struct {
		path string
		want bool
	}{
		{"2020/report.kp", true},
		{"2020/report.kp/", true},
		{"2020/report", false},
		{"2020/report.kp/images/chart.png", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := cfg.IsPostPath(tt.path); got != tt.want {
			t.Errorf("IsPostPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
