package steps

import (
	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
	"github.com/artisanexperiences/kiln/internal/scaffold/paths"
	"github.com/artisanexperiences/kiln/internal/scaffold/template"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

type DirCreateStep struct {
	to string
}

func NewDirCreateStep(to string) *DirCreateStep {
	return &DirCreateStep{to: to}
}

func (s *DirCreateStep) Name() string {
	return "dir.create"
}

func (s *DirCreateStep) Target(ctx *types.ScaffoldContext) string {
	return template.ReplacePlaceholder(s.to, ctx)
}

// Run creates exactly one directory. An existing path at the target is an
// error: a directory that appeared mid-run was not created by this run and
// must not be claimed for rollback.
func (s *DirCreateStep) Run(ctx *types.ScaffoldContext, opts types.StepOptions) error {
	target, err := paths.Resolve(ctx.Root, s.Target(ctx))
	if err != nil {
		return err
	}

	mode := ctx.DirMode
	if mode == 0 {
		mode = 0o755
	}

	if err := fsFor(ctx).Mkdir(target, mode); err != nil {
		return kilnerrors.IO("create directory", target, err)
	}
	ctx.RecordCreated(target)
	return nil
}
