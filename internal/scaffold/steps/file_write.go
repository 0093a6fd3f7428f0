package steps

import (
	"errors"
	iofs "io/fs"

	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
	"github.com/artisanexperiences/kiln/internal/scaffold/paths"
	"github.com/artisanexperiences/kiln/internal/scaffold/template"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

type FileWriteStep struct {
	from       string
	to         string
	substitute bool
}

// NewFileWriteStep creates a step that renders template from into the
// output path to. When substitute is false the bytes are copied verbatim.
func NewFileWriteStep(from, to string, substitute bool) *FileWriteStep {
	return &FileWriteStep{from: from, to: to, substitute: substitute}
}

func (s *FileWriteStep) Name() string {
	return "file.write"
}

func (s *FileWriteStep) Target(ctx *types.ScaffoldContext) string {
	return template.ReplacePlaceholder(s.to, ctx)
}

func (s *FileWriteStep) Run(ctx *types.ScaffoldContext, opts types.StepOptions) error {
	target, err := paths.Resolve(ctx.Root, s.Target(ctx))
	if err != nil {
		return err
	}

	data, err := s.render(ctx)
	if err != nil {
		return err
	}

	mode := ctx.FileMode
	if mode == 0 {
		mode = 0o644
	}

	if err := fsFor(ctx).CreateFile(target, data, mode); err != nil {
		return kilnerrors.IO("write file", target, err)
	}
	ctx.RecordCreated(target)
	return nil
}

// render returns the complete output bytes before anything touches disk.
func (s *FileWriteStep) render(ctx *types.ScaffoldContext) ([]byte, error) {
	if ctx.Templates == nil {
		return nil, kilnerrors.MissingTemplate(s.from, errors.New("no template bundle configured"))
	}

	data, err := iofs.ReadFile(ctx.Templates, s.from)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) || errors.Is(err, iofs.ErrInvalid) {
			return nil, kilnerrors.MissingTemplate(s.from, err)
		}
		return nil, kilnerrors.IO("read template", s.from, err)
	}

	if !s.substitute {
		return data, nil
	}
	return []byte(template.ReplacePlaceholder(string(data), ctx)), nil
}
