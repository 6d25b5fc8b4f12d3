// Package ocr extracts text from receipt images with the tesseract CLI.
// Requires: tesseract (tesseract-ocr) on PATH or configured explicitly.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrUnavailable is returned when the tesseract binary cannot be found.
var ErrUnavailable = errors.New("tesseract not available (install tesseract-ocr)")

// Tesseract runs the tesseract binary once per image.
type Tesseract struct {
	binary   string
	language string
	psm      int
}

// Option configures a Tesseract extractor.
type Option func(*Tesseract)

// WithLanguage sets the tesseract -l language (default "eng").
func WithLanguage(lang string) Option {
	return func(t *Tesseract) {
		if lang != "" {
			t.language = lang
		}
	}
}

// WithPageSegMode sets the tesseract --psm value. Zero keeps tesseract's default.
func WithPageSegMode(psm int) Option {
	return func(t *Tesseract) {
		t.psm = psm
	}
}

// NewTesseract returns an extractor using binary (default "tesseract").
func NewTesseract(binary string, opts ...Option) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	t := &Tesseract{binary: binary, language: "eng"}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Available reports whether the configured binary can be executed.
func (t *Tesseract) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

// ExtractText returns the raw text tesseract reads from the image at path.
// The call blocks until tesseract exits; there is no retry.
func (t *Tesseract) ExtractText(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath(t.binary); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.binary, t.args(path)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w (output: %s)", err, strings.TrimSpace(stderr.String()))
	}

	slog.DebugContext(ctx, "OCR completed",
		"path", path,
		"chars", stdout.Len(),
		"duration_ms", time.Since(start).Milliseconds())

	return stdout.String(), nil
}

// args builds: tesseract <input> stdout -l <lang> [--psm N]
func (t *Tesseract) args(path string) []string {
	args := []string{path, "stdout", "-l", t.language}
	if t.psm > 0 {
		args = append(args, "--psm", fmt.Sprint(t.psm))
	}
	return args
}
