package scaffold

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
	"github.com/artisanexperiences/kiln/internal/fs"
	"github.com/artisanexperiences/kiln/internal/logging"
	"github.com/artisanexperiences/kiln/internal/scaffold/manifest"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

var emptyMockPaths = []string{".", "/"}

func expectedPaths(t *testing.T, root, name string) []string {
	t.Helper()
	entries, err := manifest.AllEntries()
	require.NoError(t, err)

	expected := []string{root}
	for _, out := range manifest.Outputs(entries, name) {
		expected = append(expected, filepath.Join(root, filepath.FromSlash(out)))
	}
	return expected
}

func writeCalls(calls []string) []string {
	var writes []string
	for _, c := range calls {
		if strings.HasPrefix(c, string(fs.OpMkdir)+" ") || strings.HasPrefix(c, string(fs.OpCreateFile)+" ") {
			writes = append(writes, c)
		}
	}
	return writes
}

func TestGenerator_Generate_Success(t *testing.T) {
	mockFS := fs.NewMockFS()
	g := NewGenerator(WithFS(mockFS))

	result, err := g.Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "demo", result.ProjectRoot)
	assert.False(t, result.RolledBack)

	expected := expectedPaths(t, "demo", "demo")
	assert.Equal(t, expected, result.CreatedPaths)
	assert.ElementsMatch(t, append(append([]string{}, emptyMockPaths...), expected...), mockFS.Paths())
}

func TestGenerator_Generate_SubstitutesProjectName(t *testing.T) {
	mockFS := fs.NewMockFS()

	_, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "orders"}, types.StepOptions{})
	require.NoError(t, err)

	cargo, err := mockFS.ReadFile(filepath.Join("orders", "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(cargo), `name = "orders"`)
	assert.Contains(t, string(cargo), `name = "orders_lambda"`)

	for _, p := range mockFS.Paths() {
		if mockFS.FileExists(p) {
			data, _ := mockFS.ReadFile(p)
			assert.NotContains(t, string(data), types.Placeholder, p)
		}
	}
}

func TestGenerator_Generate_ParentDir(t *testing.T) {
	mockFS := fs.NewMockFS()
	mockFS.AddDir("work")

	result, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "demo", ParentDir: "work"}, types.StepOptions{})

	require.NoError(t, err)
	root := filepath.Join("work", "demo")
	assert.Equal(t, root, result.ProjectRoot)
	assert.True(t, mockFS.FileExists(filepath.Join(root, "Makefile")))
}

func TestWithModes(t *testing.T) {
	g := NewGenerator(WithModes(0o700, 0o600))
	assert.Equal(t, os.FileMode(0o700), g.dirMode)
	assert.Equal(t, os.FileMode(0o600), g.fileMode)

	g = NewGenerator(WithModes(0, 0))
	assert.Equal(t, os.FileMode(0o755), g.dirMode)
	assert.Equal(t, os.FileMode(0o644), g.fileMode)
}

func TestGenerator_Generate_InvalidNameWritesNothing(t *testing.T) {
	for _, name := range []string{"", "a/b", "..", ".", types.Placeholder, "svc-{x}"} {
		t.Run(name, func(t *testing.T) {
			mockFS := fs.NewMockFS()

			result, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: name}, types.StepOptions{})

			require.Error(t, err)
			assert.True(t, errors.Is(err, kilnerrors.ErrValidation), "got %v", err)
			assert.False(t, result.Succeeded())
			assert.Equal(t, err, result.Reason)
			assert.Empty(t, mockFS.Calls(), "name validation must not touch the file system")
		})
	}
}

func TestGenerator_Generate_CollisionWritesNothing(t *testing.T) {
	t.Run("directory", func(t *testing.T) {
		mockFS := fs.NewMockFS()
		mockFS.AddDir("demo")
		before := mockFS.Paths()

		_, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

		require.Error(t, err)
		assert.True(t, errors.Is(err, kilnerrors.ErrValidation))
		assert.Contains(t, err.Error(), "already exists")
		assert.Equal(t, before, mockFS.Paths())
		assert.Empty(t, writeCalls(mockFS.Calls()))
	})

	t.Run("file", func(t *testing.T) {
		mockFS := fs.NewMockFS()
		mockFS.AddFile("demo", []byte("not a project"), 0o644)

		_, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

		require.Error(t, err)
		assert.True(t, errors.Is(err, kilnerrors.ErrValidation))
		assert.Empty(t, writeCalls(mockFS.Calls()))
	})
}

func TestGenerator_Generate_IOErrorRollsBack(t *testing.T) {
	failures := []struct {
		name string
		op   fs.Op
		path string
	}{
		{name: "first directory", op: fs.OpMkdir, path: filepath.Join("demo", "src")},
		{name: "mid-run file", op: fs.OpCreateFile, path: filepath.Join("demo", "src", "routes", "mod.rs")},
		{name: "mid-run directory", op: fs.OpMkdir, path: filepath.Join("demo", "src", "services")},
		{name: "last file", op: fs.OpCreateFile, path: filepath.Join("demo", "Makefile")},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			mockFS := fs.NewMockFS()
			mockFS.FailOn(tt.op, tt.path, errors.New("no space left on device"))

			result, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

			require.Error(t, err)
			assert.True(t, errors.Is(err, kilnerrors.ErrIO), "got %v", err)
			assert.Contains(t, err.Error(), tt.path)
			assert.True(t, result.RolledBack)
			assert.Equal(t, emptyMockPaths, mockFS.Paths(), "working directory must be left as it was")
		})
	}
}

func TestGenerator_Generate_RollbackFailureIsReported(t *testing.T) {
	mockFS := fs.NewMockFS()
	mockFS.FailOn(fs.OpCreateFile, filepath.Join("demo", "Makefile"), errors.New("disk full"))
	mockFS.FailOn(fs.OpRemove, filepath.Join("demo", "Cargo.toml"), errors.New("busy"))

	result, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

	require.Error(t, err)
	assert.False(t, result.RolledBack)
	assert.True(t, errors.Is(err, kilnerrors.ErrIO))
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "rollback incomplete")
	assert.True(t, errors.Is(err, kilnerrors.ErrRollbackIncomplete))
	root, ok := kilnerrors.LeftBehind(err)
	assert.True(t, ok)
	assert.Equal(t, "demo", root)
	assert.True(t, mockFS.FileExists(filepath.Join("demo", "Cargo.toml")))
	assert.False(t, mockFS.FileExists(filepath.Join("demo", "src", "main.rs")))
}

func TestGenerator_Generate_RootCreationFails(t *testing.T) {
	mockFS := fs.NewMockFS()
	mockFS.FailOn(fs.OpMkdir, "demo", errors.New("read-only file system"))

	result, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, kilnerrors.ErrIO))
	assert.Empty(t, result.CreatedPaths)
	assert.Equal(t, emptyMockPaths, mockFS.Paths())
}

func TestGenerator_Generate_MissingTemplateRollsBack(t *testing.T) {
	mockFS := fs.NewMockFS()
	bundle := fstest.MapFS{
		"t/Cargo.toml": {Data: []byte("name = \"{{project-name}}\"\n")},
	}
	entries := []types.ManifestEntry{
		{Kind: types.KindFile, TemplateRelPath: "t/Cargo.toml", OutputRelPath: "Cargo.toml", Substitute: true},
		{Kind: types.KindDirectory, OutputRelPath: "src"},
		{Kind: types.KindFile, TemplateRelPath: "t/src/main.rs", OutputRelPath: "src/main.rs", Substitute: true},
	}

	result, err := NewGenerator(WithFS(mockFS), WithTemplates(bundle), WithEntries(entries)).
		Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, kilnerrors.ErrMissingTemplate))
	assert.Contains(t, err.Error(), "t/src/main.rs")
	assert.True(t, result.RolledBack)
	assert.Equal(t, emptyMockPaths, mockFS.Paths())
}

func TestGenerator_Generate_RejectsMisorderedEntries(t *testing.T) {
	mockFS := fs.NewMockFS()
	entries := []types.ManifestEntry{
		{Kind: types.KindFile, TemplateRelPath: "t/main.rs", OutputRelPath: "src/main.rs"},
		{Kind: types.KindDirectory, OutputRelPath: "src"},
	}

	_, err := NewGenerator(WithFS(mockFS), WithEntries(entries)).
		Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, kilnerrors.ErrManifest))
	assert.Empty(t, writeCalls(mockFS.Calls()))
}

func TestGenerator_Generate_DryRun(t *testing.T) {
	mockFS := fs.NewMockFS()

	result, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{DryRun: true})

	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, expectedPaths(t, "demo", "demo"), result.CreatedPaths)
	assert.Empty(t, writeCalls(mockFS.Calls()))
	assert.Equal(t, emptyMockPaths, mockFS.Paths())
}

func TestGenerator_Generate_DryRunStillValidates(t *testing.T) {
	mockFS := fs.NewMockFS()
	mockFS.AddDir("demo")

	_, err := NewGenerator(WithFS(mockFS)).Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{DryRun: true})

	assert.True(t, errors.Is(err, kilnerrors.ErrValidation))
}

func TestGenerator_Generate_LogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	mockFS := fs.NewMockFS()

	_, err := NewGenerator(WithFS(mockFS), WithLogger(logging.New(&buf, "debug"))).
		Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, string(StateValidating))
	assert.Contains(t, out, string(StateMaterializing))
	assert.Contains(t, out, string(StateDone))
	assert.Contains(t, out, "Cargo.toml")
}

type failingRegistry struct{}

func (failingRegistry) CreateAll([]types.ManifestEntry) ([]types.ScaffoldStep, error) {
	return nil, errors.New("no factory")
}

func TestGenerator_Generate_RegistryFailure(t *testing.T) {
	mockFS := fs.NewMockFS()

	_, err := NewGenerator(WithFS(mockFS), WithRegistry(failingRegistry{})).
		Generate(types.ScaffoldRequest{ProjectName: "demo"}, types.StepOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, kilnerrors.ErrManifest))
	assert.Empty(t, mockFS.Calls())
}
