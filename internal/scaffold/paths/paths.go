// Package paths turns manifest output paths into host paths under a project root.
package paths

import (
	"path"
	"path/filepath"
	"strings"

	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
)

// Resolve joins the forward-slash relative path rel onto root using the host's
// separator. An empty rel or "." resolves to root itself. Absolute paths and
// paths that climb above root via ".." fail with a PathEscape error.
func Resolve(root, rel string) (string, error) {
	if rel == "" {
		return filepath.Clean(root), nil
	}
	if path.IsAbs(rel) || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", kilnerrors.PathEscape(root, rel)
	}

	cleaned := path.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", kilnerrors.PathEscape(root, rel)
	}

	local := filepath.FromSlash(cleaned)
	if cleaned != "." && !filepath.IsLocal(local) {
		return "", kilnerrors.PathEscape(root, rel)
	}

	return filepath.Join(root, local), nil
}
