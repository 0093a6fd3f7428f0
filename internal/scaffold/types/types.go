package types

import (
	iofs "io/fs"
	"os"
	"sync"

	"github.com/artisanexperiences/kiln/internal/fs"
)

// Placeholder is the token replaced with the project name in template
// contents and output paths.
const Placeholder = "{{project-name}}"

type EntryKind string

const (
	KindDirectory EntryKind = "directory"
	KindFile      EntryKind = "file"
)

// ManifestEntry describes one directory or file the generator creates.
// OutputRelPath uses forward slashes and may contain Placeholder.
type ManifestEntry struct {
	TemplateRelPath string    `yaml:"template,omitempty" json:"template,omitempty"`
	OutputRelPath   string    `yaml:"output" json:"output"`
	Substitute      bool      `yaml:"substitute,omitempty" json:"substitute,omitempty"`
	Kind            EntryKind `yaml:"kind" json:"kind"`
}

// ScaffoldRequest is built once per invocation and never mutated.
type ScaffoldRequest struct {
	ProjectName string
	ParentDir   string
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

type GenerationResult struct {
	ProjectRoot  string
	CreatedPaths []string
	Outcome      Outcome
	Reason       error
	RolledBack   bool
}

// Succeeded reports whether the run reached Done.
func (r *GenerationResult) Succeeded() bool {
	return r != nil && r.Outcome == OutcomeSuccess
}

// ScaffoldContext is the state shared by the steps of one generation run.
type ScaffoldContext struct {
	Root        string
	ProjectName string
	Templates   iofs.FS
	FS          fs.FS
	DirMode     os.FileMode
	FileMode    os.FileMode

	mu      sync.Mutex
	created []string
}

// RecordCreated appends path to the list of paths this run has created.
func (ctx *ScaffoldContext) RecordCreated(path string) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.created = append(ctx.created, path)
}

// Created returns a copy of the created paths in creation order.
func (ctx *ScaffoldContext) Created() []string {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return append([]string(nil), ctx.created...)
}

type StepOptions struct {
	DryRun  bool
	Verbose bool
	Quiet   bool
}

type ScaffoldStep interface {
	Name() string
	// Target is the output path relative to the project root, after substitution.
	Target(ctx *ScaffoldContext) string
	Run(ctx *ScaffoldContext, opts StepOptions) error
}
