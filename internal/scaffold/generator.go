package scaffold

import (
	"errors"
	iofs "io/fs"
	"os"

	"github.com/charmbracelet/log"

	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
	"github.com/artisanexperiences/kiln/internal/fs"
	"github.com/artisanexperiences/kiln/internal/logging"
	"github.com/artisanexperiences/kiln/internal/scaffold/manifest"
	"github.com/artisanexperiences/kiln/internal/scaffold/paths"
	"github.com/artisanexperiences/kiln/internal/scaffold/steps"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
	"github.com/artisanexperiences/kiln/internal/scaffold/validation"
	"github.com/artisanexperiences/kiln/internal/templates"
)

type State string

const (
	StateValidating    State = "validating"
	StateMaterializing State = "materializing"
	StateDone          State = "done"
	StateRejected      State = "rejected"
	StateAborted       State = "aborted"
)

// StepRegistry builds the steps for a list of manifest entries.
type StepRegistry interface {
	CreateAll(entries []types.ManifestEntry) ([]types.ScaffoldStep, error)
}

type globalStepRegistryAdapter struct{}

func (globalStepRegistryAdapter) CreateAll(entries []types.ManifestEntry) ([]types.ScaffoldStep, error) {
	return steps.CreateAll(entries)
}

// Generator turns a ScaffoldRequest into a project tree.
type Generator struct {
	fs        fs.FS
	templates iofs.FS
	entries   []types.ManifestEntry
	registry  StepRegistry
	logger    *log.Logger
	dirMode   os.FileMode
	fileMode  os.FileMode
}

type Option func(*Generator)

func WithFS(filesystem fs.FS) Option {
	return func(g *Generator) { g.fs = filesystem }
}

// WithTemplates overrides the embedded template bundle.
func WithTemplates(bundle iofs.FS) Option {
	return func(g *Generator) { g.templates = bundle }
}

// WithEntries overrides the embedded manifest.
func WithEntries(entries []types.ManifestEntry) Option {
	return func(g *Generator) { g.entries = entries }
}

func WithRegistry(registry StepRegistry) Option {
	return func(g *Generator) { g.registry = registry }
}

func WithLogger(logger *log.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithModes sets the permissions for created directories and files. A zero
// mode keeps the default.
func WithModes(dirMode, fileMode os.FileMode) Option {
	return func(g *Generator) {
		if dirMode != 0 {
			g.dirMode = dirMode
		}
		if fileMode != 0 {
			g.fileMode = fileMode
		}
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		fs:        fs.Default,
		templates: templates.Bundle,
		registry:  globalStepRegistryAdapter{},
		logger:    logging.Discard(),
		dirMode:   0o755,
		fileMode:  0o644,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate validates req and materializes every manifest entry under
// <ParentDir>/<ProjectName>. Validation failures write nothing. A failure
// after the first write removes everything the run created before
// returning, so the target is either complete or absent.
//
// The returned result is never nil; on failure its Reason matches the
// returned error. In a dry run CreatedPaths lists what would be created.
func (g *Generator) Generate(req types.ScaffoldRequest, opts types.StepOptions) (*types.GenerationResult, error) {
	root := validation.Target(req)
	result := &types.GenerationResult{ProjectRoot: root, Outcome: types.OutcomeFailure}

	g.transition(StateValidating, root)

	stepsList, err := g.validate(req)
	if err != nil {
		g.transition(StateRejected, root, "err", err)
		result.Reason = err
		return result, err
	}

	ctx := &types.ScaffoldContext{
		Root:        root,
		ProjectName: req.ProjectName,
		Templates:   g.templates,
		FS:          g.fs,
		DirMode:     g.dirMode,
		FileMode:    g.fileMode,
	}

	g.transition(StateMaterializing, root, "entries", len(stepsList), "dry_run", opts.DryRun)

	if opts.DryRun {
		return g.plan(ctx, stepsList, opts, result)
	}

	if err := g.fs.Mkdir(root, g.dirMode); err != nil {
		err = kilnerrors.IO("create project directory", root, err)
		g.transition(StateAborted, root, "err", err)
		result.Reason = err
		return result, err
	}
	ctx.RecordCreated(root)

	executor := NewStepExecutor(stepsList, ctx, opts).WithLogger(g.logger)
	if err := executor.Execute(); err != nil {
		rollbackErr := executor.Rollback()
		result.RolledBack = rollbackErr == nil
		result.CreatedPaths = ctx.Created()
		result.Reason = err
		if rollbackErr != nil {
			result.Reason = errors.Join(err, rollbackErr)
		}
		g.transition(StateAborted, root, "err", err, "rolled_back", result.RolledBack)
		return result, result.Reason
	}

	result.Outcome = types.OutcomeSuccess
	result.CreatedPaths = ctx.Created()
	g.transition(StateDone, root, "created", len(result.CreatedPaths))
	return result, nil
}

// validate runs every check that must pass before the first write and
// returns the steps to execute.
func (g *Generator) validate(req types.ScaffoldRequest) ([]types.ScaffoldStep, error) {
	if err := validation.NewNameValidator().Validate(req); err != nil {
		return nil, kilnerrors.Validation(req.ProjectName, err)
	}

	entries := g.entries
	if entries == nil {
		var err error
		if entries, err = manifest.AllEntries(); err != nil {
			return nil, err
		}
	} else if err := manifest.CheckEntries(entries); err != nil {
		return nil, kilnerrors.Manifest("entries", err)
	}

	stepsList, err := g.registry.CreateAll(entries)
	if err != nil {
		return nil, kilnerrors.Manifest("entries", err)
	}

	if err := validation.NewTargetValidator(g.fs).ValidateFirst(req); err != nil {
		return nil, kilnerrors.Validation(req.ProjectName, err)
	}

	return stepsList, nil
}

func (g *Generator) plan(ctx *types.ScaffoldContext, stepsList []types.ScaffoldStep, opts types.StepOptions, result *types.GenerationResult) (*types.GenerationResult, error) {
	executor := NewStepExecutor(stepsList, ctx, opts).WithLogger(g.logger)
	if err := executor.Execute(); err != nil {
		result.Reason = err
		return result, err
	}

	planned := []string{ctx.Root}
	for _, r := range executor.Results() {
		target, err := paths.Resolve(ctx.Root, r.Target)
		if err != nil {
			result.Reason = err
			g.transition(StateRejected, ctx.Root, "err", err)
			return result, err
		}
		planned = append(planned, target)
	}

	result.Outcome = types.OutcomeSuccess
	result.CreatedPaths = planned
	g.transition(StateDone, ctx.Root, "planned", len(planned))
	return result, nil
}

func (g *Generator) transition(state State, root string, keyvals ...interface{}) {
	args := append([]interface{}{"state", state, "root", root}, keyvals...)
	switch state {
	case StateRejected, StateAborted:
		g.logger.Info("scaffold stopped", args...)
	default:
		g.logger.Debug("scaffold", args...)
	}
}
