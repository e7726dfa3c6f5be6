// Package refstore reads and writes named reference files stored inside a
// knowledge post's own directory.
//
// The most important reference is the REVISION counter: a plain decimal
// integer bumped on every update. Resolving a post's revision from version
// control history would mean an O(history) log scan; a counter file inside
// the post makes it a single read.
package refstore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// RevisionFile is the name of the per-post revision counter file.
const RevisionFile = "REVISION"

// Store reads and writes per-post reference files beneath a repository root.
// The filesystem is abstracted so tests can run against an in-memory fs.
type Store struct {
	fs billy.Filesystem
}

// New returns a Store over the given filesystem. The filesystem root is the
// knowledge repository root; post paths are relative to it.
func New(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

// NewOS returns a Store over the OS filesystem rooted at repoPath.
func NewOS(repoPath string) *Store {
	return New(osfs.New(repoPath))
}

// ReadRef returns the bytes of the named reference inside the post directory.
func (s *Store) ReadRef(post, name string) ([]byte, error) {
	data, err := util.ReadFile(s.fs, s.refPath(post, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read ref %s for post %s: %w", name, post, err)
	}
	return data, nil
}

// WriteRef writes the named reference inside the post directory, creating
// intervening directories as needed.
func (s *Store) WriteRef(post, name string, data []byte) error {
	refPath := s.refPath(post, name)
	if err := s.fs.MkdirAll(filepath.Dir(refPath), 0755); err != nil {
		return fmt.Errorf("failed to create ref directory for post %s: %w", post, err)
	}
	if err := util.WriteFile(s.fs, refPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ref %s for post %s: %w", name, post, err)
	}
	return nil
}

// HasRef reports whether the named reference exists for the post.
func (s *Store) HasRef(post, name string) bool {
	info, err := s.fs.Stat(s.refPath(post, name))
	return err == nil && !info.IsDir()
}

// Revision returns the post's current revision counter. A missing or
// unreadable counter file counts as revision 0.
func (s *Store) Revision(post string) int {
	data, err := util.ReadFile(s.fs, s.refPath(post, RevisionFile))
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(string(bytes.TrimSpace(data)))
	if err != nil {
		return 0
	}
	return n
}

// NextRevision increments the post's revision counter, persists it, and
// returns the new value.
func (s *Store) NextRevision(post string) (int, error) {
	next := s.Revision(post) + 1
	if err := s.WriteRef(post, RevisionFile, []byte(strconv.Itoa(next))); err != nil {
		return 0, err
	}
	return next, nil
}

// PostFiles lists the files inside a post directory, relative to the post
// root. The top-level REVISION counter is excluded since it is bookkeeping,
// not content.
func (s *Store) PostFiles(post string) ([]string, error) {
	var files []string
	root := filepath.FromSlash(post)

	err := util.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == RevisionFile {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk post %s: %w", post, err)
	}
	return files, nil
}

func (s *Store) refPath(post, name string) string {
	return filepath.Join(filepath.FromSlash(post), name)
}
