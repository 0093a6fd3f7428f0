package steps

import (
	"fmt"
	"sort"

	"github.com/artisanexperiences/kiln/internal/fs"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

type StepFactory func(entry types.ManifestEntry) types.ScaffoldStep

var registry = make(map[types.EntryKind]StepFactory)

func Register(kind types.EntryKind, factory StepFactory) {
	if _, exists := registry[kind]; exists {
		panic(fmt.Sprintf("step for kind %q already registered", kind))
	}
	registry[kind] = factory
}

// Create builds the step that materializes entry.
func Create(entry types.ManifestEntry) (types.ScaffoldStep, error) {
	if factory, ok := registry[entry.Kind]; ok {
		return factory(entry), nil
	}
	return nil, fmt.Errorf("unknown entry kind %q for %s (available: %v)", entry.Kind, entry.OutputRelPath, ListRegistered())
}

// CreateAll builds one step per entry, preserving order.
func CreateAll(entries []types.ManifestEntry) ([]types.ScaffoldStep, error) {
	stepsList := make([]types.ScaffoldStep, 0, len(entries))
	for _, entry := range entries {
		step, err := Create(entry)
		if err != nil {
			return nil, err
		}
		stepsList = append(stepsList, step)
	}
	return stepsList, nil
}

func ListRegistered() []string {
	names := make([]string, 0, len(registry))
	for kind := range registry {
		names = append(names, string(kind))
	}
	sort.Strings(names)
	return names
}

func fsFor(ctx *types.ScaffoldContext) fs.FS {
	if ctx.FS == nil {
		return fs.Default
	}
	return ctx.FS
}

func init() {
	Register(types.KindDirectory, func(entry types.ManifestEntry) types.ScaffoldStep {
		return NewDirCreateStep(entry.OutputRelPath)
	})
	Register(types.KindFile, func(entry types.ManifestEntry) types.ScaffoldStep {
		return NewFileWriteStep(entry.TemplateRelPath, entry.OutputRelPath, entry.Substitute)
	})
}
