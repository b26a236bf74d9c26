// Package linearize rewrites PDFs into linearized ("fast web view") form
// using the qpdf command line tool.
package linearize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"linview/internal/util"
)

// qpdf exits with 3 when it succeeded but printed warnings.
const qpdfExitWarnings = 3

type QPDF struct {
	Path string
}

func NewQPDF(path string) QPDF {
	if strings.TrimSpace(path) == "" {
		path = "qpdf"
	}
	return QPDF{Path: path}
}

func (q QPDF) args(in, out string) []string {
	return []string{
		"--linearize",
		"--object-streams=generate",
		"--compress-streams=y",
		"--recompress-flate",
		in,
		out,
	}
}

// Linearize writes a linearized copy of in to out. out is replaced
// atomically; a failed run leaves no partial file behind.
func (q QPDF) Linearize(ctx context.Context, in, out string) error {
	if err := util.EnsureDir(filepath.Dir(out)); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(out), "tmp-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp pdf: %w", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpName)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, q.Path, q.args(in, tmpName)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != qpdfExitWarnings {
			return fmt.Errorf("qpdf linearize %s: %w: %s", filepath.Base(in), err, strings.TrimSpace(stderr.String()))
		}
	}
	if err := os.Rename(tmpName, out); err != nil {
		return fmt.Errorf("rename linearized pdf: %w", err)
	}
	return nil
}
