package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

func TestAddPrepare_NewPost(t *testing.T) {
	dir, _ := initTestRepo(t)
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	branch, err := r.AddPrepare("2020/report.kp", AddOptions{})
	if err != nil {
		t.Fatalf("AddPrepare: %v", err)
	}
	if branch != "2020/report.kp" {
		t.Errorf("branch = %q, want post path", branch)
	}
	if cur, _ := r.CurrentBranch(); cur != "2020/report.kp" {
		t.Errorf("current branch = %q, want 2020/report.kp", cur)
	}
}

func TestAddPrepare_ExistingPostRefused(t *testing.T) {
	dir, gr := initTestRepo(t)
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = r.AddPrepare("2019/overview.kp", AddOptions{})
	if !errors.Is(err, ErrPostExists) {
		t.Fatalf("AddPrepare existing = %v, want ErrPostExists", err)
	}
	// Refusal must happen before any branch mutation.
	if cur, _ := r.CurrentBranch(); cur != "master" {
		t.Errorf("current branch = %q, want master untouched", cur)
	}
	if _, err := gr.Reference(plumbing.NewBranchReferenceName("2019/overview.kp"), true); err == nil {
		t.Error("refused add created a branch")
	}
}

func TestAddPrepare_UpdateAllowsExisting(t *testing.T) {
	dir, _ := initTestRepo(t)
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	branch, err := r.AddPrepare("2019/overview.kp", AddOptions{Update: true})
	if err != nil {
		t.Fatalf("AddPrepare update: %v", err)
	}
	if branch != "2019/overview.kp" {
		t.Errorf("branch = %q, want post path", branch)
	}
}

func TestAddPrepare_BadSuffix(t *testing.T) {
	r, _ := openTestRepo(t)
	if _, err := r.AddPrepare("2020/report.md", AddOptions{}); err == nil {
		t.Error("AddPrepare should reject paths without the post suffix")
	}
}

func TestAddPrepare_BranchOverride(t *testing.T) {
	dir, _ := initTestRepo(t)
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	branch, err := r.AddPrepare("2020/report.kp", AddOptions{Branch: "feature/report"})
	if err != nil {
		t.Fatalf("AddPrepare: %v", err)
	}
	if branch != "feature/report" {
		t.Errorf("branch = %q, want feature/report", branch)
	}
}

func TestAddFinalize_Commits(t *testing.T) {
	dir, gr := initTestRepo(t)
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := r.AddPrepare("2020/report.kp", AddOptions{}); err != nil {
		t.Fatalf("AddPrepare: %v", err)
	}
	writeRepoFile(t, dir, "2020/report.kp/knowledge.md", "# Report")

	if err := r.AddFinalize("2020/report.kp", "Add report post"); err != nil {
		t.Fatalf("AddFinalize: %v", err)
	}

	head, err := gr.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	c, err := gr.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("CommitObject: %v", err)
	}
	if c.Message != "Add report post" {
		t.Errorf("commit message = %q", c.Message)
	}
	if _, err := c.File("2020/report.kp/knowledge.md"); err != nil {
		t.Errorf("committed tree is missing the post file: %v", err)
	}
}

func TestAddFinalize_MissingMessageRollsBack(t *testing.T) {
	dir, _ := initTestRepo(t)
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := r.AddPrepare("2020/report.kp", AddOptions{}); err != nil {
		t.Fatalf("AddPrepare: %v", err)
	}
	writeRepoFile(t, dir, "2020/report.kp/knowledge.md", "# Report")
	writeRepoFile(t, dir, "2020/report.kp/images/chart.png", "png")

	err = r.AddFinalize("2020/report.kp", "")
	if !errors.Is(err, ErrNoCommitMessage) {
		t.Fatalf("AddFinalize = %v, want ErrNoCommitMessage", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "2020", "report.kp")); !os.IsNotExist(err) {
		t.Error("rollback left the staged post behind")
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	st, err := wt.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.IsClean() {
		t.Errorf("worktree dirty after rollback: %v", st)
	}
}

func TestSubmit_NoRemote(t *testing.T) {
	r, _ := openTestRepo(t)
	_, err := r.Submit(context.Background(), "2019/overview.kp", "", false)
	if !errors.Is(err, ErrNoRemote) {
		t.Errorf("Submit = %v, want ErrNoRemote", err)
	}
}

func TestSubmit_AmbiguousTarget(t *testing.T) {
	dir, gr := initTestRepo(t)
	addRemote(t, gr, "https://git.example.com/team/repo.git")
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := r.Submit(context.Background(), "", "", false); !errors.Is(err, ErrAmbiguousTarget) {
		t.Errorf("Submit = %v, want ErrAmbiguousTarget", err)
	}
}

func TestSubmit_NoDraft(t *testing.T) {
	dir, gr := initTestRepo(t)
	addRemote(t, gr, "https://git.example.com/team/repo.git")
	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = r.Submit(context.Background(), "2099/missing.kp", "", false)
	if !errors.Is(err, ErrNoDraft) {
		t.Errorf("Submit = %v, want ErrNoDraft", err)
	}
}

func TestSubmit_UnreachableRemote(t *testing.T) {
	dir, gr := initTestRepo(t)
	addRemote(t, gr, "git@192.0.2.1:team/repo.git")

	checkoutNew(t, gr, "2020/report.kp")
	writeRepoFile(t, dir, "2020/report.kp/knowledge.md", "# Report")
	commitAll(t, gr, "Draft")
	checkout(t, gr, "master")

	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = r.Submit(context.Background(), "2020/report.kp", "", false)
	if !errors.Is(err, ErrRemoteUnreachable) {
		t.Errorf("Submit = %v, want ErrRemoteUnreachable", err)
	}
}

func TestSubmit_PushesBranch(t *testing.T) {
	dir, gr := initTestRepo(t)

	bareDir := t.TempDir()
	bare, err := git.PlainInit(bareDir, true)
	if err != nil {
		t.Fatalf("PlainInit bare: %v", err)
	}
	addRemote(t, gr, bareDir)

	checkoutNew(t, gr, "2020/report.kp")
	writeRepoFile(t, dir, "2020/report.kp/knowledge.md", "# Report")
	tip := commitAll(t, gr, "Draft")
	checkout(t, gr, "master")

	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	branch, err := r.Submit(context.Background(), "2020/report.kp", "", false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if branch != "2020/report.kp" {
		t.Errorf("branch = %q, want 2020/report.kp", branch)
	}

	ref, err := bare.Reference(plumbing.NewBranchReferenceName("2020/report.kp"), true)
	if err != nil {
		t.Fatalf("remote ref missing after push: %v", err)
	}
	if ref.Hash() != tip {
		t.Errorf("remote tip = %s, want %s", ref.Hash(), tip)
	}
}

func TestSubmit_ExplicitBranch(t *testing.T) {
	dir, gr := initTestRepo(t)

	bareDir := t.TempDir()
	if _, err := git.PlainInit(bareDir, true); err != nil {
		t.Fatalf("PlainInit bare: %v", err)
	}
	addRemote(t, gr, bareDir)

	checkoutNew(t, gr, "wip")
	writeRepoFile(t, dir, "2020/report.kp/knowledge.md", "# Report")
	commitAll(t, gr, "Draft")
	checkout(t, gr, "master")

	r, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	branch, err := r.Submit(context.Background(), "", "wip", false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if branch != "wip" {
		t.Errorf("branch = %q, want wip", branch)
	}
}
