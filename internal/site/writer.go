// Package site materializes the export artifact stream onto a filesystem.
package site

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "nbexport/internal/errors"
	"nbexport/internal/export"
	"nbexport/internal/logfields"
)

// Writer places artifacts under an output root. The export core only yields
// content; all write concurrency and lifecycle decisions live here.
type Writer struct {
	outputDir string
	written   int
}

// NewWriter creates a writer rooted at outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// Clean removes a previous export from the output root. Only the directories
// this tool produces are removed, so an output root shared with other files
// is safe.
func (w *Writer) Clean() error {
	for _, sub := range []string{export.TreeDir, export.RenderDir, ManifestName} {
		if err := os.RemoveAll(filepath.Join(w.outputDir, sub)); err != nil {
			return fmt.Errorf("clean output: %w", err)
		}
	}
	return nil
}

// Write materializes one artifact. Parent directories are created as needed;
// anything already at the destination (file or directory) is replaced.
func (w *Writer) Write(artifact export.Artifact) error {
	cleanRel := filepath.Clean(filepath.FromSlash(artifact.Path))
	if filepath.IsAbs(cleanRel) || strings.HasPrefix(cleanRel, "..") {
		return apperrors.New(apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			"artifact path escapes output root").WithPath(artifact.Path)
	}

	dest := filepath.Join(w.outputDir, cleanRel)
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		if err := os.RemoveAll(dest); err != nil {
			return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
				"replace directory at artifact path").WithPath(dest)
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			"stat artifact destination").WithPath(dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			"create output directory").WithPath(filepath.Dir(dest))
	}
	if err := os.WriteFile(dest, artifact.Content, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			"write artifact").WithPath(dest)
	}

	w.written++
	slog.Debug("Artifact written", logfields.Output(artifact.Path), logfields.Count(len(artifact.Content)))
	return nil
}

// Written reports how many artifacts this writer has materialized.
func (w *Writer) Written() int { return w.written }
