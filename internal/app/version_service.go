package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/example/cascade/internal/core/change"
	"github.com/example/cascade/internal/core/semver"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/secondary"
)

// VersionServiceImpl implements the VersionService interface.
type VersionServiceImpl struct {
	tagRepo secondary.ReleaseTagRepository
	git     secondary.Git
	rules   change.RuleTable
	log     zerolog.Logger
}

// NewVersionService creates a new VersionService with injected
// dependencies.
func NewVersionService(
	tagRepo secondary.ReleaseTagRepository,
	git secondary.Git,
	rules change.RuleTable,
	log zerolog.Logger,
) *VersionServiceImpl {
	return &VersionServiceImpl{
		tagRepo: tagRepo,
		git:     git,
		rules:   rules,
		log:     log,
	}
}

// Current returns the highest version ever released, or 0.0.0 before the
// first release.
func (s *VersionServiceImpl) Current(ctx context.Context) (semver.Version, error) {
	latest, err := s.tagRepo.Latest(ctx)
	if err != nil {
		return semver.Zero, err
	}
	if latest == "" {
		return semver.Zero, nil
	}
	return semver.Parse(latest)
}

// ComputeNext classifies the diff between base and candidate and returns
// the next version. An empty diff, or one that produces no increase over
// the current version, yields ErrNoChange.
func (s *VersionServiceImpl) ComputeNext(ctx context.Context, base, candidate string) (semver.Version, error) {
	subjects, err := s.git.CommitSubjects(ctx, base, candidate)
	if err != nil {
		return semver.Zero, err
	}
	files, err := s.git.ChangedFiles(ctx, base, candidate)
	if err != nil {
		return semver.Zero, err
	}

	diff := change.Diff{Subjects: subjects, Files: files}
	if diff.Empty() {
		return semver.Zero, errors.Wrapf(errors.ErrNoChange, "no commits between %s and %s", base, candidate)
	}

	bump := s.rules.Classify(diff)
	if bump == semver.BumpNone {
		return semver.Zero, errors.Wrapf(errors.ErrNoChange, "diff between %s and %s carries no version-relevant change", base, candidate)
	}

	current, err := s.Current(ctx)
	if err != nil {
		return semver.Zero, err
	}
	next := current.Next(bump)
	if !current.Less(next) {
		return semver.Zero, errors.Wrapf(errors.ErrNoChange, "computed version %s does not advance %s", next, current)
	}

	s.log.Debug().
		Str("bump", bump.String()).
		Str("current", current.String()).
		Str("next", next.String()).
		Msg("next version computed")
	return next, nil
}
