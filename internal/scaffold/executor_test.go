package scaffold

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
	"github.com/artisanexperiences/kiln/internal/fs"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

type mockStep struct {
	name      string
	target    string
	runError  error
	runCalled bool
	creates   string
	order     *[]string
}

func (s *mockStep) Name() string {
	return s.name
}

func (s *mockStep) Target(ctx *types.ScaffoldContext) string {
	return s.target
}

func (s *mockStep) Run(ctx *types.ScaffoldContext, opts types.StepOptions) error {
	s.runCalled = true
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	if s.runError != nil {
		return s.runError
	}
	if s.creates != "" {
		ctx.RecordCreated(s.creates)
	}
	return nil
}

func TestStepExecutor_Execute_AllStepsPass(t *testing.T) {
	ctx := &types.ScaffoldContext{Root: "demo", ProjectName: "demo"}

	step1 := &mockStep{name: "step1", target: "a"}
	step2 := &mockStep{name: "step2", target: "b"}

	executor := NewStepExecutor([]types.ScaffoldStep{step1, step2}, ctx, types.StepOptions{})

	err := executor.Execute()

	assert.NoError(t, err)
	assert.True(t, step1.runCalled)
	assert.True(t, step2.runCalled)
}

func TestStepExecutor_Execute_StepFails(t *testing.T) {
	ctx := &types.ScaffoldContext{Root: "demo", ProjectName: "demo"}

	step1 := &mockStep{name: "step1", target: "a"}
	step2 := &mockStep{name: "step2", target: "b", runError: assert.AnError}
	step3 := &mockStep{name: "step3", target: "c"}

	executor := NewStepExecutor([]types.ScaffoldStep{step1, step2, step3}, ctx, types.StepOptions{})

	err := executor.Execute()

	require.Error(t, err)
	assert.True(t, errors.Is(err, assert.AnError))
	assert.Contains(t, err.Error(), "step2")
	assert.Contains(t, err.Error(), "b")
	assert.True(t, step1.runCalled)
	assert.True(t, step2.runCalled)
	assert.False(t, step3.runCalled, "execution must stop at the first failure")
}

func TestStepExecutor_Execute_DryRun(t *testing.T) {
	ctx := &types.ScaffoldContext{Root: "demo", ProjectName: "demo"}

	step1 := &mockStep{name: "step1", target: "src"}
	step2 := &mockStep{name: "step2", target: "src/main.rs"}

	executor := NewStepExecutor([]types.ScaffoldStep{step1, step2}, ctx, types.StepOptions{DryRun: true})

	require.NoError(t, executor.Execute())
	assert.False(t, step1.runCalled)
	assert.False(t, step2.runCalled)

	results := executor.Results()
	require.Len(t, results, 2)
	assert.True(t, results[0].Planned)
	assert.Equal(t, "src/main.rs", results[1].Target)
}

func TestStepExecutor_Results(t *testing.T) {
	ctx := &types.ScaffoldContext{Root: "demo", ProjectName: "demo"}

	step1 := &mockStep{name: "step1", target: "a"}
	step2 := &mockStep{name: "step2", target: "b", runError: assert.AnError}

	executor := NewStepExecutor([]types.ScaffoldStep{step1, step2}, ctx, types.StepOptions{})
	_ = executor.Execute()

	results := executor.Results()
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	assert.False(t, results[0].Planned)
	assert.Equal(t, assert.AnError, results[1].Error)
}

func TestStepExecutor_SequentialExecution(t *testing.T) {
	ctx := &types.ScaffoldContext{Root: "demo", ProjectName: "demo"}

	var order []string
	stepsList := []types.ScaffoldStep{
		&mockStep{name: "dir", target: "src", order: &order},
		&mockStep{name: "file", target: "src/main.rs", order: &order},
		&mockStep{name: "dir2", target: "src/common", order: &order},
		&mockStep{name: "file2", target: "src/common/mod.rs", order: &order},
	}

	require.NoError(t, NewStepExecutor(stepsList, ctx, types.StepOptions{}).Execute())
	assert.Equal(t, []string{"dir", "file", "dir2", "file2"}, order)
}

func TestStepExecutor_Rollback(t *testing.T) {
	mockFS := fs.NewMockFS()
	mockFS.AddDir("demo")
	mockFS.AddDir(filepath.Join("demo", "src"))
	mockFS.AddFile(filepath.Join("demo", "src", "main.rs"), []byte("fn main() {}"), 0o644)

	ctx := &types.ScaffoldContext{Root: "demo", ProjectName: "demo", FS: mockFS}
	ctx.RecordCreated("demo")
	ctx.RecordCreated(filepath.Join("demo", "src"))
	ctx.RecordCreated(filepath.Join("demo", "src", "main.rs"))

	executor := NewStepExecutor(nil, ctx, types.StepOptions{})
	require.NoError(t, executor.Rollback())

	assert.False(t, mockFS.DirExists("demo"))
	assert.Equal(t, []string{
		"remove " + filepath.Join("demo", "src", "main.rs"),
		"remove " + filepath.Join("demo", "src"),
		"remove demo",
	}, mockFS.Calls())
}

func TestStepExecutor_RollbackContinuesPastFailures(t *testing.T) {
	mockFS := fs.NewMockFS()
	mockFS.AddDir("demo")
	mockFS.AddFile(filepath.Join("demo", "a.txt"), []byte("a"), 0o644)
	mockFS.AddFile(filepath.Join("demo", "b.txt"), []byte("b"), 0o644)
	mockFS.FailOn(fs.OpRemove, filepath.Join("demo", "b.txt"), errors.New("busy"))

	ctx := &types.ScaffoldContext{Root: "demo", ProjectName: "demo", FS: mockFS}
	ctx.RecordCreated("demo")
	ctx.RecordCreated(filepath.Join("demo", "a.txt"))
	ctx.RecordCreated(filepath.Join("demo", "b.txt"))

	err := NewStepExecutor(nil, ctx, types.StepOptions{}).Rollback()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "busy")
	assert.True(t, errors.Is(err, kilnerrors.ErrRollbackIncomplete))
	root, ok := kilnerrors.LeftBehind(err)
	assert.True(t, ok)
	assert.Equal(t, "demo", root)
	assert.False(t, mockFS.FileExists(filepath.Join("demo", "a.txt")))
	assert.True(t, mockFS.FileExists(filepath.Join("demo", "b.txt")))
	assert.True(t, mockFS.DirExists("demo"), "non-empty root cannot be removed")
}
