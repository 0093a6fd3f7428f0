package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	outMu  sync.Mutex
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
	quiet  bool
)

// SetOutput redirects normal and error output. Nil leaves a stream unchanged.
func SetOutput(stdout, stderr io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if stdout != nil {
		out = stdout
	}
	if stderr != nil {
		errOut = stderr
	}
}

// SetQuiet suppresses everything except errors and warnings.
func SetQuiet(q bool) {
	outMu.Lock()
	defer outMu.Unlock()
	quiet = q
}

// SetNoColor forces plain ASCII rendering for every style.
func SetNoColor(disable bool) {
	if disable {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func Out() io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	return out
}

func emit(toErr bool, s string) {
	outMu.Lock()
	defer outMu.Unlock()
	if toErr {
		fmt.Fprintln(errOut, s)
		return
	}
	if quiet {
		return
	}
	fmt.Fprintln(out, s)
}

func PrintSuccess(msg string) {
	emit(false, lipgloss.NewStyle().Foreground(ColorSuccess).Render("✓")+" "+msg)
}

func PrintInfo(msg string) {
	emit(false, "  "+msg)
}

func PrintStep(msg string) {
	emit(false, lipgloss.NewStyle().Foreground(Primary).Render("→")+" "+msg)
}

// PrintDryRun reports a planned action that was not carried out.
func PrintDryRun(msg string) {
	emit(false, InfoBadge.Render("DRY RUN")+" "+msg)
}

func PrintDone(msg string) {
	emit(false, "\n"+SuccessBadge.Render("DONE")+" "+msg)
}

func PrintWarning(msg string) {
	emit(true, WarningBadge.Render("WARN")+" "+msg)
}

func PrintError(msg string) {
	emit(true, ErrorBadge.Render("ERROR")+" "+msg)
}

func PrintErrorWithHint(msg, hint string) {
	PrintError(msg)
	if hint != "" {
		emit(true, MutedStyle.Render("  "+hint))
	}
}

// PrintCode prints a command the user is expected to run.
func PrintCode(cmd string) {
	emit(false, "  "+CodeStyle.Render(cmd))
}
