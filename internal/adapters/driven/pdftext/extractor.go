// Package pdftext extracts plain text from PDF documents by shelling
// out to pdftotext from the poppler toolkit.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner is the production CommandRunner backed by os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor pulls text out of PDF files via pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates an extractor using the real pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install the pdftotext dependency.
func InstallInstructions() string {
	return strings.Join([]string{
		"pdftotext is required for content-based matching.",
		"  macOS:  brew install poppler",
		"  Debian: apt install poppler-utils",
	}, "\n")
}

// ExtractText returns the text content of a PDF file. Non-PDF files
// yield empty text without running the tool.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", nil
	}
	out, err := e.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed for %s: %w", path, err)
	}
	return string(out), nil
}
