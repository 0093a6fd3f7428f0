// Package manifest loads the ordered list of entries a generation run
// materializes. The list is data in the embedded bundle, checked against a
// JSON schema and then for ordering and consistency before any step runs.
package manifest

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
	"github.com/artisanexperiences/kiln/internal/scaffold/template"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
	"github.com/artisanexperiences/kiln/internal/templates"
)

type Manifest struct {
	Name        string                `yaml:"name" json:"name"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Entries     []types.ManifestEntry `yaml:"entries" json:"entries"`
}

// Load reads and checks manifest.yaml from bundle.
func Load(bundle iofs.FS) (*Manifest, error) {
	data, err := iofs.ReadFile(bundle, templates.ManifestPath)
	if err != nil {
		return nil, kilnerrors.Manifest(templates.ManifestPath, err)
	}
	return Parse(data)
}

// Parse decodes manifest YAML and runs the schema and ordering checks.
func Parse(data []byte) (*Manifest, error) {
	issues, err := validateSchema(data)
	if err != nil {
		return nil, kilnerrors.Manifest(templates.ManifestPath, err)
	}
	if len(issues) > 0 {
		errs := make([]error, 0, len(issues))
		for _, issue := range issues {
			errs = append(errs, errors.New(issue.String()))
		}
		return nil, kilnerrors.Manifest(templates.ManifestPath, errors.Join(errs...))
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, kilnerrors.Manifest(templates.ManifestPath, fmt.Errorf("decoding: %w", err))
	}

	if err := CheckEntries(m.Entries); err != nil {
		return nil, kilnerrors.Manifest(templates.ManifestPath, err)
	}
	return &m, nil
}

// CheckEntries enforces the rules the schema cannot express: output paths
// are clean and unique, and each entry's parent is the project root or a
// directory declared earlier.
func CheckEntries(entries []types.ManifestEntry) error {
	if len(entries) == 0 {
		return errors.New("manifest has no entries")
	}

	seen := make(map[string]types.EntryKind, len(entries))
	var errs []error
	for i, entry := range entries {
		out := entry.OutputRelPath
		where := fmt.Sprintf("entry %d (%s)", i, out)

		switch entry.Kind {
		case types.KindDirectory:
			if entry.Substitute {
				errs = append(errs, fmt.Errorf("%s: directories are never substituted", where))
			}
			if entry.TemplateRelPath != "" {
				errs = append(errs, fmt.Errorf("%s: directories take no template", where))
			}
		case types.KindFile:
			if entry.TemplateRelPath == "" {
				errs = append(errs, fmt.Errorf("%s: file entries need a template", where))
			}
		default:
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", where, entry.Kind))
		}

		if out == "" || path.IsAbs(out) || strings.Contains(out, `\`) || path.Clean(out) != out || out == "." || out == ".." || strings.HasPrefix(out, "../") {
			errs = append(errs, fmt.Errorf("%s: output must be a clean relative slash path", where))
			continue
		}

		if _, dup := seen[out]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate output path", where))
			continue
		}

		if parent := path.Dir(out); parent != "." && seen[parent] != types.KindDirectory {
			errs = append(errs, fmt.Errorf("%s: parent %s is not declared as an earlier directory", where, parent))
		}
		seen[out] = entry.Kind
	}

	return errors.Join(errs...)
}

// Verify checks entries against the template content in bundle: every file
// template exists, and an entry is marked for substitution exactly when its
// template contains the placeholder.
func Verify(bundle iofs.FS, entries []types.ManifestEntry) error {
	var errs []error
	for _, entry := range entries {
		if entry.Kind != types.KindFile {
			continue
		}

		data, err := iofs.ReadFile(bundle, entry.TemplateRelPath)
		if err != nil {
			errs = append(errs, kilnerrors.MissingTemplate(entry.TemplateRelPath, err))
			continue
		}

		hasToken := strings.Contains(string(data), types.Placeholder)
		switch {
		case hasToken && !entry.Substitute:
			errs = append(errs, kilnerrors.Manifest(entry.TemplateRelPath, fmt.Errorf("contains %s but is not marked substitute", types.Placeholder)))
		case !hasToken && entry.Substitute:
			errs = append(errs, kilnerrors.Manifest(entry.TemplateRelPath, fmt.Errorf("marked substitute but has no %s", types.Placeholder)))
		}
	}
	return errors.Join(errs...)
}

var (
	defaultOnce     sync.Once
	defaultManifest *Manifest
	defaultErr      error
)

// Default returns the manifest embedded in the binary, loaded once.
func Default() (*Manifest, error) {
	defaultOnce.Do(func() {
		defaultManifest, defaultErr = Load(templates.Bundle)
	})
	return defaultManifest, defaultErr
}

// AllEntries returns a copy of the embedded manifest's entries in order.
func AllEntries() ([]types.ManifestEntry, error) {
	m, err := Default()
	if err != nil {
		return nil, err
	}
	return append([]types.ManifestEntry(nil), m.Entries...), nil
}

// Outputs lists the output paths of entries with the placeholder replaced.
func Outputs(entries []types.ManifestEntry, projectName string) []string {
	outputs := make([]string, 0, len(entries))
	for _, entry := range entries {
		outputs = append(outputs, template.Substitute(entry.OutputRelPath, types.Placeholder, projectName))
	}
	return outputs
}
