package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/FooBarQuaxx/knowledge-repo/config"
)

// Prerequisite represents a condition the repository path must satisfy
// before commands operate on it.
type Prerequisite struct {
	Name        string                      // Short identifier (e.g. "path", "git")
	Required    bool                        // Whether failure blocks the command
	Description string                      // Human-readable description
	Check       func(repoPath string) error // Probe, nil error means satisfied
}

// DefaultPrerequisites returns the checks run before repository commands.
func DefaultPrerequisites() []Prerequisite {
	return []Prerequisite{
		{
			Name:        "path",
			Required:    true,
			Description: "repository path exists and is a directory",
			Check: func(repoPath string) error {
				info, err := os.Stat(repoPath)
				if err != nil {
					return fmt.Errorf("path %s does not exist", repoPath)
				}
				if !info.IsDir() {
					return fmt.Errorf("path %s is not a directory", repoPath)
				}
				return nil
			},
		},
		{
			Name:        "git",
			Required:    true,
			Description: "path contains a git repository",
			Check: func(repoPath string) error {
				if _, err := gogit.PlainOpen(repoPath); err != nil {
					return fmt.Errorf("%s is not a git repository (run 'knowledge init' first)", repoPath)
				}
				return nil
			},
		},
		{
			Name:        "config",
			Required:    false, // a missing file falls back to defaults
			Description: "repository configuration parses",
			Check: func(repoPath string) error {
				if _, err := os.Stat(filepath.Join(repoPath, config.FileName)); err != nil {
					return nil
				}
				_, err := config.Load(repoPath)
				return err
			},
		},
	}
}

// CheckResult contains the result of checking a prerequisite.
type CheckResult struct {
	Prerequisite Prerequisite
	OK           bool
	Error        error
}

// CheckAll evaluates all prerequisites against the repository path.
func CheckAll(prereqs []Prerequisite, repoPath string) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, prereq := range prereqs {
		err := prereq.Check(repoPath)
		results[i] = CheckResult{Prerequisite: prereq, OK: err == nil, Error: err}
	}
	return results
}

// ValidateRequired checks that all required prerequisites hold for the
// repository path. Returns nil when they do, otherwise an error describing
// everything that failed.
func ValidateRequired(prereqs []Prerequisite, repoPath string) error {
	var failed []string

	for _, prereq := range prereqs {
		if !prereq.Required {
			continue
		}
		if err := prereq.Check(repoPath); err != nil {
			failed = append(failed, fmt.Sprintf("  - %s: %v", prereq.Name, err))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("repository checks failed:\n%s", strings.Join(failed, "\n"))
	}
	return nil
}

// FormatCheckResults formats check results for display.
func FormatCheckResults(results []CheckResult) string {
	var sb strings.Builder

	sb.WriteString("Repository checks:\n")
	for _, r := range results {
		status := "✓"
		if !r.OK {
			if r.Prerequisite.Required {
				status = "✗"
			} else {
				status = "○"
			}
		}
		sb.WriteString(fmt.Sprintf("  %s %s", status, r.Prerequisite.Description))
		if !r.OK && r.Error != nil {
			sb.WriteString(fmt.Sprintf(" (%v)", r.Error))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
