package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/artisanexperiences/kiln/internal/fs"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

// NotEmpty rejects an empty or whitespace-only project name.
type NotEmpty struct{}

func (NotEmpty) Validate(req types.ScaffoldRequest) error {
	if strings.TrimSpace(req.ProjectName) == "" {
		return errors.New("project name must not be empty")
	}
	return nil
}

// NoPathSeparator rejects names containing '/' or '\' on every platform, so a
// name never selects a directory other than <parent>/<name>.
type NoPathSeparator struct{}

func (NoPathSeparator) Validate(req types.ScaffoldRequest) error {
	if strings.ContainsAny(req.ProjectName, `/\`) || strings.ContainsRune(req.ProjectName, filepath.Separator) {
		return fmt.Errorf("project name %q must not contain a path separator", req.ProjectName)
	}
	return nil
}

// NotDotName rejects "." and "..".
type NotDotName struct{}

func (NotDotName) Validate(req types.ScaffoldRequest) error {
	if req.ProjectName == "." || req.ProjectName == ".." {
		return fmt.Errorf("project name %q is reserved", req.ProjectName)
	}
	return nil
}

// PrintableName rejects control characters, which no shell user can type back.
type PrintableName struct{}

func (PrintableName) Validate(req types.ScaffoldRequest) error {
	for _, r := range req.ProjectName {
		if unicode.IsControl(r) {
			return fmt.Errorf("project name %q contains a control character", req.ProjectName)
		}
	}
	return nil
}

// NoPlaceholder rejects names containing a brace. A name carrying the
// placeholder token would survive substitution and leave the token in the
// generated files, and Cargo refuses braces in package names anyway.
type NoPlaceholder struct{}

func (NoPlaceholder) Validate(req types.ScaffoldRequest) error {
	if strings.Contains(req.ProjectName, types.Placeholder) {
		return fmt.Errorf("project name %q must not contain the %s placeholder", req.ProjectName, types.Placeholder)
	}
	if strings.ContainsAny(req.ProjectName, "{}") {
		return fmt.Errorf("project name %q must not contain braces", req.ProjectName)
	}
	return nil
}

// TargetAbsent requires that nothing, not even a dangling symlink, exists at
// <ParentDir>/<ProjectName>.
type TargetAbsent struct {
	FS fs.FS
}

func (t TargetAbsent) Validate(req types.ScaffoldRequest) error {
	target := Target(req)

	filesystem := t.FS
	if filesystem == nil {
		filesystem = fs.Default
	}

	info, err := filesystem.Lstat(target)
	if err == nil {
		kind := "file"
		if info.IsDir() {
			kind = "directory"
		} else if info.Mode()&os.ModeSymlink != 0 {
			kind = "symlink"
		}
		return fmt.Errorf("project %s '%s' already exists", kind, target)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", target, err)
	}
	return nil
}

// Target is the project root a request would create.
func Target(req types.ScaffoldRequest) string {
	parent := req.ParentDir
	if parent == "" {
		parent = "."
	}
	return filepath.Join(parent, req.ProjectName)
}

// NewNameValidator checks the project name on its own, without touching the
// file system.
func NewNameValidator() *Validator {
	return NewValidator("project name").
		AddRule(NotEmpty{}).
		AddRule(NoPathSeparator{}).
		AddRule(NotDotName{}).
		AddRule(PrintableName{}).
		AddRule(NoPlaceholder{})
}

// NewTargetValidator checks that the request's target path is unoccupied.
func NewTargetValidator(filesystem fs.FS) *Validator {
	return NewValidator("target directory").
		AddRule(TargetAbsent{FS: filesystem})
}
