package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

// ErrAborted is returned in place of huh's abort error so callers can report
// a cancelled prompt uniformly.
var ErrAborted = errors.New("aborted by user")

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// ShouldPrompt reports whether cmd may ask the user a question. A value
// already supplied on the command line, --no-interactive, --quiet or a
// non-terminal session all disable prompting.
func ShouldPrompt(cmd *cobra.Command, hasValue bool) bool {
	if hasValue {
		return false
	}
	for _, name := range []string{"no-interactive", "quiet"} {
		if v, err := cmd.Flags().GetBool(name); err == nil && v {
			return false
		}
	}
	return IsInteractive()
}

func Confirm(title string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return false, NormalizeAbort(err)
	}

	return confirmed, nil
}

// RunWithSpinner runs action behind a spinner when attached to a terminal
// and directly otherwise.
func RunWithSpinner(title string, action func() error) error {
	if !IsInteractive() {
		return action()
	}

	var actionErr error
	if err := spinner.New().
		Title(title).
		Action(func() { actionErr = action() }).
		Run(); err != nil {
		return err
	}
	return actionErr
}

func IsAbort(err error) bool {
	return errors.Is(err, huh.ErrUserAborted) || errors.Is(err, ErrAborted)
}

func NormalizeAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
