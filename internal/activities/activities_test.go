package activities

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"linview/internal/config"
	"linview/internal/models"
	"linview/internal/pdfmeta"
	"linview/internal/util"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
)

type copyLinearizer struct{ err error }

func (c copyLinearizer) Linearize(_ context.Context, in, out string) error {
	if c.err != nil {
		return c.err
	}
	b, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0o644)
}

type memFiles struct{ got []models.FileRecord }

func (m *memFiles) UpsertFile(_ context.Context, f models.FileRecord) error {
	m.got = append(m.got, f)
	return nil
}

func inspector(linear bool, err error) Inspector {
	return func(path string) (pdfmeta.Info, error) {
		if err != nil {
			return pdfmeta.Info{}, err
		}
		return pdfmeta.Info{Path: path, SizeBytes: 12, PageCount: 5, Linearized: linear, SHA256: "abc"}, nil
	}
}

func writeSource(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "original_a.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 doc"), 0o644))
	return src, filepath.Join(dir, "linear_a.pdf")
}

func requireNonRetryable(t *testing.T, err error, errType string) {
	t.Helper()
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.True(t, appErr.NonRetryable())
	require.Equal(t, errType, appErr.Type())
}

func TestLinearizePDFActivity(t *testing.T) {
	src, dst := writeSource(t)
	a := NewWithDeps(config.Config{}, &memFiles{}, copyLinearizer{}, inspector(true, nil))

	out, err := a.LinearizePDFActivity(context.Background(), LinearizePDFInput{SourcePath: src, TargetPath: dst})
	require.NoError(t, err)
	require.Equal(t, 5, out.PageCount)
	_, err = os.Stat(dst)
	require.NoError(t, err)
}

func TestLinearizePDFActivityRejectsUnlinearizedOutput(t *testing.T) {
	src, dst := writeSource(t)
	a := NewWithDeps(config.Config{}, &memFiles{}, copyLinearizer{}, inspector(false, nil))

	_, err := a.LinearizePDFActivity(context.Background(), LinearizePDFInput{SourcePath: src, TargetPath: dst})
	require.Error(t, err)
	require.Contains(t, err.Error(), "PDF linearization failed")
	requireNonRetryable(t, err, ErrTypeNotLinearized)
	_, statErr := os.Stat(dst)
	require.True(t, os.IsNotExist(statErr))
}

func TestLinearizePDFActivityToolFailureIsRetryable(t *testing.T) {
	src, dst := writeSource(t)
	a := NewWithDeps(config.Config{}, &memFiles{}, copyLinearizer{err: errors.New("qpdf: killed")}, inspector(true, nil))

	_, err := a.LinearizePDFActivity(context.Background(), LinearizePDFInput{SourcePath: src, TargetPath: dst})
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.False(t, errors.As(err, &appErr))
}

func TestInspectPDFActivity(t *testing.T) {
	a := NewWithDeps(config.Config{}, &memFiles{}, copyLinearizer{}, inspector(false, nil))
	out, err := a.InspectPDFActivity(context.Background(), InspectPDFInput{Path: "/tmp/original_a.pdf"})
	require.NoError(t, err)
	require.Equal(t, InspectPDFOutput{SizeBytes: 12, PageCount: 5, SHA256: "abc"}, out)

	a = NewWithDeps(config.Config{}, &memFiles{}, copyLinearizer{}, inspector(false, util.ErrInvalidPDF))
	_, err = a.InspectPDFActivity(context.Background(), InspectPDFInput{Path: "/tmp/original_a.pdf"})
	requireNonRetryable(t, err, ErrTypeInvalidPDF)
}

func TestRecordFilesActivity(t *testing.T) {
	files := &memFiles{}
	a := NewWithDeps(config.Config{}, files, copyLinearizer{}, nil)
	in := RecordFilesInput{Files: []models.FileRecord{{Name: "original_a.pdf"}, {Name: "linear_a.pdf"}}}
	require.NoError(t, a.RecordFilesActivity(context.Background(), in))
	require.Equal(t, in.Files, files.got)
}
