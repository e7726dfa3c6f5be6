package gitrepo

import "testing"

func TestRemoteHost(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"ssh shorthand", "git@git.example.com:team/repo.git", "git.example.com"},
		{"ssh shorthand trimmed", "  git@git.example.com:team/repo.git ", "git.example.com"},
		{"https", "https://git.example.com/team/repo.git", ""},
		{"local path", "/srv/git/repo.git", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoteHost(tt.url); got != tt.want {
				t.Errorf("RemoteHost(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestRemoteAvailable_NoRemote(t *testing.T) {
	dir, _ := initTestRepo(t)
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !r.RemoteAvailable() {
		t.Error("RemoteAvailable should report true without a configured remote")
	}
}

func TestRemoteAvailable_NonSSHRemote(t *testing.T) {
	dir, gr := initTestRepo(t)
	addRemote(t, gr, "https://git.example.com/team/repo.git")
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !r.RemoteAvailable() {
		t.Error("RemoteAvailable should report true for remotes without a probeable host")
	}
}

func TestRemoteAvailable_UnreachableHost(t *testing.T) {
	dir, gr := initTestRepo(t)
	addRemote(t, gr, "git@192.0.2.1:team/repo.git") // TEST-NET, never routable
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.RemoteAvailable() {
		t.Error("RemoteAvailable should report false for an unreachable host")
	}
}
