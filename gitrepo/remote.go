package gitrepo

import (
	"net"
	"regexp"
	"strings"
	"time"
)

// probeTimeout bounds how long the reachability preflight can stall before
// the system falls back to local-only operation.
const probeTimeout = 500 * time.Millisecond

const sshPort = "22"

// sshShorthand matches the scp-like remote form user@host:path.
var sshShorthand = regexp.MustCompile(`^[^@/]+@([^:/]+):`)

// RemoteHost extracts the host from a shorthand SSH remote URL
// (git@git.example.com:team/repo.git → git.example.com). Other URL forms
// yield no host; reachability then reports true, a known limitation for
// HTTPS remotes.
func RemoteHost(url string) string {
	m := sshShorthand.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return ""
	}
	return m[1]
}

// remoteURL returns the first URL of the configured remote, or "".
func (r *Repo) remoteURL() string {
	remote, err := r.repo.Remote(r.cfg.RemoteName)
	if err != nil || len(remote.Config().URLs) == 0 {
		return ""
	}
	return remote.Config().URLs[0]
}

// RemoteAvailable probes the remote host's SSH port with a short timeout.
// No configured remote, or no parseable host, counts as reachable. Probe
// failures degrade to false and are never raised.
func (r *Repo) RemoteAvailable() bool {
	host := RemoteHost(r.remoteURL())
	if host == "" {
		return true
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, sshPort), probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
