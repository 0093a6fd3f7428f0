// Package errors defines the failure kinds a scaffold run can end with.
// Every error surfaced by the generator wraps exactly one of the sentinel
// kinds below, so callers can branch with errors.Is.
package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrValidation reports a bad or colliding project name. Nothing was written.
	ErrValidation = stderrors.New("validation failed")

	// ErrMissingTemplate reports a template absent from the embedded bundle.
	ErrMissingTemplate = stderrors.New("template missing from bundle")

	// ErrIO reports a directory or file operation that failed mid-run.
	ErrIO = stderrors.New("filesystem operation failed")

	// ErrPathEscape reports an output path resolving outside the project root.
	ErrPathEscape = stderrors.New("path escapes project root")

	// ErrManifest reports a malformed manifest in the bundle.
	ErrManifest = stderrors.New("invalid manifest")

	// ErrRollbackIncomplete reports that cleanup after a failed run left
	// paths behind. It accompanies the failure that triggered the rollback.
	ErrRollbackIncomplete = stderrors.New("rollback incomplete")
)

// ScaffoldError carries a failure kind together with the entity it concerns
// (project name, path or template id) and the underlying cause.
type ScaffoldError struct {
	Kind    error
	Op      string
	Subject string
	Err     error
}

func (e *ScaffoldError) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Subject != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScaffoldError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation wraps err as a validation failure for the given project name.
func Validation(name string, err error) error {
	return &ScaffoldError{Kind: ErrValidation, Op: "validate", Subject: name, Err: err}
}

// MissingTemplate reports that template id could not be found in the bundle.
func MissingTemplate(id string, err error) error {
	return &ScaffoldError{Kind: ErrMissingTemplate, Op: "read template", Subject: id, Err: err}
}

// IO wraps a filesystem failure on path.
func IO(op, path string, err error) error {
	return &ScaffoldError{Kind: ErrIO, Op: op, Subject: path, Err: err}
}

// PathEscape reports that rel would resolve outside root.
func PathEscape(root, rel string) error {
	return &ScaffoldError{Kind: ErrPathEscape, Op: "resolve", Subject: rel, Err: fmt.Errorf("root is %s", root)}
}

// Manifest wraps a manifest decoding or consistency failure.
func Manifest(subject string, err error) error {
	return &ScaffoldError{Kind: ErrManifest, Op: "load manifest", Subject: subject, Err: err}
}

// RollbackError reports that rollback could not remove everything under Root.
type RollbackError struct {
	Root string
	Err  error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrRollbackIncomplete, e.Root, e.Err)
}

func (e *RollbackError) Unwrap() []error {
	return []error{ErrRollbackIncomplete, e.Err}
}

// RollbackIncomplete wraps the removal failures rollback hit under root.
func RollbackIncomplete(root string, err error) error {
	return &RollbackError{Root: root, Err: err}
}

// LeftBehind returns the project root a failed rollback left on disk.
func LeftBehind(err error) (string, bool) {
	var re *RollbackError
	if stderrors.As(err, &re) {
		return re.Root, true
	}
	return "", false
}

// KindOf returns the sentinel kind wrapped by err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrMissingTemplate, ErrPathEscape, ErrManifest, ErrIO} {
		if stderrors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
