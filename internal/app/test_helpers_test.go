package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/cascade/internal/core/gate"
	"github.com/example/cascade/internal/core/semver"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/ports/secondary"
)

var testLogger = zerolog.Nop()

// Ensure the fakes implement their ports.
var (
	_ secondary.SyncRepository       = (*fakeSyncRepo)(nil)
	_ secondary.WorktreeRepository   = (*fakeWorktreeRepo)(nil)
	_ secondary.PRRepository         = (*fakePRRepo)(nil)
	_ secondary.ReleaseTagRepository = (*fakeTagRepo)(nil)
	_ secondary.Git                  = (*fakeGit)(nil)
	_ secondary.WindowOpener         = (*fakeWindowOpener)(nil)
	_ primary.GateService            = (*fakeGateService)(nil)
)

// fakeSyncRepo implements secondary.SyncRepository in memory.
type fakeSyncRepo struct {
	records []*secondary.SyncRecord
	seq     int
}

func newFakeSyncRepo() *fakeSyncRepo { return &fakeSyncRepo{} }

func (f *fakeSyncRepo) Create(ctx context.Context, record *secondary.SyncRecord) error {
	if record.SyncID == "" {
		f.seq++
		record.SyncID = fmt.Sprintf("sync-%03d", f.seq)
	}
	if record.Status == "" {
		record.Status = "pending"
	}
	record.CreatedAt = time.Now()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeSyncRepo) GetByID(ctx context.Context, syncID string) (*secondary.SyncRecord, error) {
	for _, r := range f.records {
		if r.SyncID == syncID {
			return r, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "sync record %s", syncID)
}

func (f *fakeSyncRepo) UpdateStatus(ctx context.Context, syncID, status string) error {
	record, err := f.GetByID(ctx, syncID)
	if err != nil {
		return err
	}
	record.Status = status
	if status == "completed" || status == "failed" {
		now := time.Now()
		record.CompletedAt = &now
	}
	return nil
}

func (f *fakeSyncRepo) ListByWorktree(ctx context.Context, worktreeID string) ([]*secondary.SyncRecord, error) {
	var out []*secondary.SyncRecord
	for _, r := range f.records {
		if r.WorktreeID == worktreeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSyncRepo) ListCompletedByTarget(ctx context.Context, syncType, target string) ([]*secondary.SyncRecord, error) {
	var out []*secondary.SyncRecord
	for _, r := range f.records {
		if r.SyncType == syncType && r.Target == target && r.Status == "completed" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSyncRepo) ListStaleInProgress(ctx context.Context, cutoff time.Time) ([]*secondary.SyncRecord, error) {
	var out []*secondary.SyncRecord
	for _, r := range f.records {
		if r.Status == "in_progress" && r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeWorktreeRepo implements secondary.WorktreeRepository in memory.
type fakeWorktreeRepo struct {
	records []*secondary.WorktreeRecord
}

func newFakeWorktreeRepo() *fakeWorktreeRepo { return &fakeWorktreeRepo{} }

func (f *fakeWorktreeRepo) Create(ctx context.Context, record *secondary.WorktreeRecord) error {
	if record.Status == "" {
		record.Status = "active"
	}
	for _, r := range f.records {
		if r.Status == "active" && (r.Branch == record.Branch || r.Path == record.Path) {
			return errors.Wrapf(errors.ErrConflict, "worktree for branch %s", record.Branch)
		}
	}
	record.CreatedAt = time.Now()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeWorktreeRepo) GetByID(ctx context.Context, id string) (*secondary.WorktreeRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "worktree %s", id)
}

func (f *fakeWorktreeRepo) GetActiveByBranch(ctx context.Context, branch string) (*secondary.WorktreeRecord, error) {
	for _, r := range f.records {
		if r.Branch == branch && r.Status == "active" {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeWorktreeRepo) List(ctx context.Context, includeRemoved bool) ([]*secondary.WorktreeRecord, error) {
	var out []*secondary.WorktreeRecord
	for _, r := range f.records {
		if includeRemoved || r.Status == "active" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeWorktreeRepo) MarkRemoved(ctx context.Context, id string) error {
	for _, r := range f.records {
		if r.ID == id && r.Status == "active" {
			r.Status = "removed"
			now := time.Now()
			r.RemovedAt = &now
			return nil
		}
	}
	return errors.Wrapf(errors.ErrNotFound, "active worktree %s", id)
}

// fakePRRepo implements secondary.PRRepository in memory.
type fakePRRepo struct {
	records []*secondary.PRRecord
	seq     int
}

func newFakePRRepo() *fakePRRepo { return &fakePRRepo{} }

func (f *fakePRRepo) Create(ctx context.Context, pr *secondary.PRRecord) error {
	f.seq++
	pr.ID = fmt.Sprintf("PR-%03d", f.seq)
	if pr.Status == "" {
		pr.Status = "open"
	}
	pr.CreatedAt = time.Now()
	f.records = append(f.records, pr)
	return nil
}

func (f *fakePRRepo) GetByID(ctx context.Context, id string) (*secondary.PRRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "pull request %s", id)
}

func (f *fakePRRepo) GetOpenBySource(ctx context.Context, sourceBranch string) (*secondary.PRRecord, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		if r.Source == sourceBranch && (r.Status == "open" || r.Status == "draft") {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakePRRepo) UpdateStatus(ctx context.Context, id, status string) error {
	record, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	record.Status = status
	now := time.Now()
	switch status {
	case "merged":
		record.MergedAt = &now
	case "closed":
		record.ClosedAt = &now
	}
	return nil
}

// fakeTagRepo implements secondary.ReleaseTagRepository in memory.
type fakeTagRepo struct {
	versions map[string]string
}

func newFakeTagRepo() *fakeTagRepo { return &fakeTagRepo{versions: make(map[string]string)} }

func (f *fakeTagRepo) Create(ctx context.Context, version, tag string) error {
	if _, exists := f.versions[version]; exists {
		return fmt.Errorf("version %s already released", version)
	}
	f.versions[version] = tag
	return nil
}

func (f *fakeTagRepo) Latest(ctx context.Context) (string, error) {
	latest := ""
	var latestVersion semver.Version
	for v := range f.versions {
		parsed, err := semver.Parse(v)
		if err != nil {
			continue
		}
		if latest == "" || latestVersion.Less(parsed) {
			latest = v
			latestVersion = parsed
		}
	}
	return latest, nil
}

func (f *fakeTagRepo) Exists(ctx context.Context, version string) (bool, error) {
	_, exists := f.versions[version]
	return exists, nil
}

// fakeGit implements secondary.Git in memory.
type fakeGit struct {
	branches      map[string]bool
	worktreePaths map[string]string // path -> branch
	merges        []string          // "source->target"
	rebased       []string
	tags          []string
	subjects      []string
	files         []string
	mergeErr      error
	rebaseErr     error
}

func newFakeGit(branches ...string) *fakeGit {
	g := &fakeGit{
		branches:      make(map[string]bool),
		worktreePaths: make(map[string]string),
	}
	for _, b := range branches {
		g.branches[b] = true
	}
	return g
}

func (g *fakeGit) BranchExists(ctx context.Context, branch string) (bool, error) {
	return g.branches[branch], nil
}

func (g *fakeGit) CreateBranch(ctx context.Context, branch, base string) error {
	if !g.branches[base] {
		return fmt.Errorf("base branch %s does not exist", base)
	}
	g.branches[branch] = true
	return nil
}

func (g *fakeGit) DeleteBranch(ctx context.Context, branch string) error {
	if !g.branches[branch] {
		return errors.Wrapf(errors.ErrNotFound, "branch %s", branch)
	}
	delete(g.branches, branch)
	return nil
}

func (g *fakeGit) ListBranches(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	for b := range g.branches {
		if strings.HasPrefix(b, prefix) {
			out = append(out, b)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (g *fakeGit) AddWorktree(ctx context.Context, path, branch string) error {
	g.worktreePaths[path] = branch
	return nil
}

func (g *fakeGit) RemoveWorktree(ctx context.Context, path string) error {
	if _, ok := g.worktreePaths[path]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "worktree at %s", path)
	}
	delete(g.worktreePaths, path)
	return nil
}

func (g *fakeGit) Merge(ctx context.Context, target, source, message string) error {
	if g.mergeErr != nil {
		return g.mergeErr
	}
	g.merges = append(g.merges, source+"->"+target)
	return nil
}

func (g *fakeGit) Tag(ctx context.Context, name, message, branch string) error {
	g.tags = append(g.tags, name)
	return nil
}

func (g *fakeGit) Rebase(ctx context.Context, branch, onto string) error {
	if g.rebaseErr != nil {
		return g.rebaseErr
	}
	g.rebased = append(g.rebased, branch)
	return nil
}

func (g *fakeGit) CommitSubjects(ctx context.Context, base, candidate string) ([]string, error) {
	return g.subjects, nil
}

func (g *fakeGit) ChangedFiles(ctx context.Context, base, candidate string) ([]string, error) {
	return g.files, nil
}

// fakeWindowOpener implements secondary.WindowOpener in memory.
type fakeWindowOpener struct {
	session string
	opened  []string // "session/window"
}

func (f *fakeWindowOpener) OpenWindow(sessionName, windowName, dir string) error {
	f.opened = append(f.opened, sessionName+"/"+windowName)
	return nil
}

func (f *fakeWindowOpener) CurrentSession() string { return f.session }

// fakeGateService implements primary.GateService with a canned result.
type fakeGateService struct {
	result gate.Result
	err    error
	runs   []string // paths the battery ran against
}

func passingGates() *fakeGateService {
	return &fakeGateService{result: gate.Result{Checks: []gate.CheckResult{{Name: "build", Passed: true}}}}
}

func failingGates(name, diagnostic string) *fakeGateService {
	return &fakeGateService{result: gate.Result{Checks: []gate.CheckResult{
		{Name: name, Passed: false, Diagnostic: diagnostic},
	}}}
}

func (f *fakeGateService) Run(ctx context.Context, worktreePath string) (gate.Result, error) {
	f.runs = append(f.runs, worktreePath)
	if f.err != nil {
		return gate.Result{}, f.err
	}
	return f.result, nil
}
