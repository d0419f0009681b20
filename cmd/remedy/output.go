package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kalambet/remedy/internal/matching"
	"github.com/kalambet/remedy/internal/pipeline"
	"github.com/kalambet/remedy/internal/storage"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// renderTurn prints a chat turn for humans: what was understood, what it
// matched and which questions remain. Once a severity is known only the
// interventions tagged with it are listed.
func renderTurn(w io.Writer, t pipeline.Turn) {
	info := t.Extracted
	symptoms := "none"
	if len(info.Symptoms) > 0 {
		symptoms = strings.Join(info.Symptoms, ", ")
	}
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Symptoms:"), symptoms)
	if info.Severity != nil {
		fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Severity:"), *info.Severity)
	}
	if info.Duration != nil {
		fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Duration:"), *info.Duration)
	}

	severity := ""
	if info.Severity != nil {
		severity = *info.Severity
	}
	for _, e := range t.Matched {
		renderEntry(w, e, severity)
	}

	if len(t.FollowUps) > 0 {
		fmt.Fprintln(w)
	}
	for _, f := range t.FollowUps {
		fmt.Fprintf(w, "%s %s\n", colorize(colorYellow, "?"), f.Description)
		if len(f.Options) > 0 {
			fmt.Fprintf(w, "  (%s)\n", strings.Join(f.Options, " / "))
		}
	}
}

func renderEntry(w io.Writer, e matching.Entry, severity string) {
	fmt.Fprintln(w)
	if !e.Matched() {
		fmt.Fprintf(w, "%s %s\n", colorize(colorCyan, e.Symptom), "(not in catalog)")
		return
	}
	fmt.Fprintf(w, "%s → %s\n", colorize(colorCyan, e.Symptom), e.Record.Name)
	renderInterventions(w, e.Interventions, severity)
}

// renderInterventions lists ivs narrowed to severity ("" lists all).
func renderInterventions(w io.Writer, ivs []storage.Intervention, severity string) {
	shown := matching.ForSeverity(ivs, severity)
	switch {
	case len(ivs) == 0:
		fmt.Fprintln(w, "  no interventions on file")
	case len(shown) == 0:
		fmt.Fprintf(w, "  no interventions for %s severity\n", severity)
	}
	for _, iv := range shown {
		fmt.Fprintf(w, "  - %s\n", interventionLine(iv))
	}
}

func interventionLine(iv storage.Intervention) string {
	line := iv.Name
	if len(iv.Severity) > 0 {
		line += " [" + strings.Join(iv.Severity, ", ") + "]"
	}
	if iv.Urgent() {
		line += " " + colorize(colorRed, "SOS")
	}
	return line
}
