// Package wire provides dependency injection for the cascade application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/rs/zerolog"

	gitadapter "github.com/example/cascade/internal/adapters/git"
	"github.com/example/cascade/internal/adapters/sqlite"
	tmuxadapter "github.com/example/cascade/internal/adapters/tmux"
	"github.com/example/cascade/internal/app"
	"github.com/example/cascade/internal/config"
	"github.com/example/cascade/internal/core/change"
	"github.com/example/cascade/internal/core/gate"
	"github.com/example/cascade/internal/core/hierarchy"
	"github.com/example/cascade/internal/core/phase"
	"github.com/example/cascade/internal/db"
	cascadeerrors "github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/logging"
	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/ports/secondary"
)

var (
	repoRoot         string
	cfg              *config.Config
	logger           zerolog.Logger
	worktreeService  primary.WorktreeService
	stateService     primary.StateService
	gateService      primary.GateService
	versionService   primary.VersionService
	promotionService primary.PromotionService
	releaseService   primary.ReleaseService
	lifecycleService primary.LifecycleService
	once             sync.Once
)

// RepoRoot returns the repository root the process operates on.
func RepoRoot() string {
	once.Do(initServices)
	return repoRoot
}

// Cfg returns the loaded configuration.
func Cfg() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() zerolog.Logger {
	once.Do(initServices)
	return logger
}

// WorktreeService returns the singleton WorktreeService instance.
func WorktreeService() primary.WorktreeService {
	once.Do(initServices)
	return worktreeService
}

// StateService returns the singleton StateService instance.
func StateService() primary.StateService {
	once.Do(initServices)
	return stateService
}

// GateService returns the singleton GateService instance.
func GateService() primary.GateService {
	once.Do(initServices)
	return gateService
}

// VersionService returns the singleton VersionService instance.
func VersionService() primary.VersionService {
	once.Do(initServices)
	return versionService
}

// PromotionService returns the singleton PromotionService instance.
func PromotionService() primary.PromotionService {
	once.Do(initServices)
	return promotionService
}

// ReleaseService returns the singleton ReleaseService instance.
func ReleaseService() primary.ReleaseService {
	once.Do(initServices)
	return releaseService
}

// LifecycleService returns the singleton LifecycleService instance.
func LifecycleService() primary.LifecycleService {
	once.Do(initServices)
	return lifecycleService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	ctx := context.Background()

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	repoRoot, err = gitadapter.DiscoverRoot(ctx, cwd)
	if err != nil {
		log.Fatalf("%v", err)
	}

	cfg, err = config.Load(repoRoot)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger = logging.New(cfg.LogLevel)

	database, err := db.Open(db.Path(repoRoot))
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) with the injected DB.
	syncRepo := sqlite.NewSyncRepository(database)
	worktreeRepo := sqlite.NewWorktreeRepository(database)
	prRepo := sqlite.NewPRRepository(database)
	tagRepo := sqlite.NewReleaseTagRepository(database)

	gitService := gitadapter.NewService(repoRoot)

	// tmux is optional; without a server `worktree open` reports a
	// precondition error instead.
	var windows secondary.WindowOpener
	if adapter, err := tmuxadapter.NewAdapter(); err == nil {
		windows = adapter
	} else {
		logger.Debug().Err(err).Msg("tmux unavailable")
	}

	specs := make([]gate.Spec, 0, len(cfg.Gates))
	for _, g := range cfg.Gates {
		specs = append(specs, gate.Spec{Name: g.Name, Command: g.Command})
	}

	// Services (primary port implementations).
	stateService = app.NewStateService(syncRepo, worktreeRepo, cfg.SweepStaleness, logger)
	worktreeService = app.NewWorktreeService(repoRoot, worktreeRepo, gitService, windows, logger)
	gateService = app.NewGateService(specs, logger)
	versionService = app.NewVersionService(tagRepo, gitService, change.DefaultRules(), logger)
	promotionService = app.NewPromotionService(repoRoot, prRepo, syncRepo, worktreeRepo,
		gitService, stateService, gateService, worktreeService, logger)
	releaseService = app.NewReleaseService(syncRepo, tagRepo, worktreeRepo, gitService,
		stateService, gateService, worktreeService, versionService, logger)

	registry := buildRegistry(worktreeRepo, gitService)
	lifecycleService = app.NewLifecycleService(registry, stateService, worktreeRepo, logger)
}

// buildRegistry binds every phase to its runner. The mapping is fixed here
// and never changes at runtime.
func buildRegistry(worktreeRepo secondary.WorktreeRepository, gitService secondary.Git) *phase.Registry {
	registry := phase.NewRegistry()

	for _, p := range []phase.Phase{phase.Specify, phase.Plan, phase.Tasks, phase.Implement} {
		runner := app.NewArtifactPhaseRunner(p, cfg.PhaseCommands[p.String()], stateService, worktreeRepo, logger)
		mustRegister(registry, p, runner)
	}

	mustRegister(registry, phase.Integrate, phase.RunnerFunc(func(ctx context.Context, worktreeID string) error {
		record, err := worktreeRepo.GetByID(ctx, worktreeID)
		if err != nil {
			return err
		}
		edge := hierarchy.EdgeFeatureToContrib
		// Propose is skipped when a review unit is already open.
		if _, err := promotionService.Propose(ctx, edge, record.Branch); err != nil &&
			!cascadeerrors.Is(err, cascadeerrors.ErrConflict) {
			return err
		}
		_, err = promotionService.Finish(ctx, edge, record.Branch)
		return err
	}))

	mustRegister(registry, phase.Release, phase.RunnerFunc(func(ctx context.Context, worktreeID string) error {
		_, err := releaseService.Release(ctx)
		return err
	}))

	mustRegister(registry, phase.Backmerge, phase.RunnerFunc(func(ctx context.Context, worktreeID string) error {
		branches, err := gitService.ListBranches(ctx, hierarchy.PrefixRelease)
		if err != nil {
			return err
		}
		if len(branches) != 1 {
			return cascadeerrors.Wrapf(cascadeerrors.ErrPrecondition,
				"expected exactly one release branch to backmerge, found %d", len(branches))
		}
		_, err = releaseService.Backmerge(ctx, branches[0])
		return err
	}))

	return registry
}

func mustRegister(registry *phase.Registry, p phase.Phase, runner phase.Runner) {
	if err := registry.Register(p, runner); err != nil {
		log.Fatalf("failed to build phase registry: %v", err)
	}
}
