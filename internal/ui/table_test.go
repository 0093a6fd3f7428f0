package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable(t *testing.T) {
	SetNoColor(true)
	out := RenderTable([]string{"NAME", "VALUE"}, [][]string{{"log_level", "warn"}})

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "log_level")
	assert.Contains(t, out, "warn")
}

func TestRenderStatusTable(t *testing.T) {
	SetNoColor(true)
	out := RenderStatusTable([][]string{{"cargo", "✓ found", "1.80.0"}, {"make", "✗ not found", "-"}})

	assert.Contains(t, out, "TOOL")
	assert.Contains(t, out, "cargo")
	assert.Contains(t, out, "1.80.0")
	assert.Contains(t, out, "not found")
}

func TestRenderManifestTable(t *testing.T) {
	SetNoColor(true)
	out := RenderManifestTable([][]string{
		{"directory", "src", "-", "no"},
		{"file", "Cargo.toml", "rust-service/Cargo.toml", "yes"},
	})

	for _, want := range []string{"KIND", "OUTPUT", "TEMPLATE", "SUBST", "src", "Cargo.toml", "rust-service/Cargo.toml", "yes"} {
		assert.Contains(t, out, want)
	}
}
