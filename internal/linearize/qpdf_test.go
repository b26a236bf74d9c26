package linearize

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeQPDF writes a script that copies its input to its output and exits
// with code.
func fakeQPDF(t *testing.T, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "qpdf")
	script := "#!/bin/sh\nfor a; do in=$out; out=$a; done\ncp \"$in\" \"$out\"\necho 'qpdf: something odd' >&2\nexit " + strconv.Itoa(code) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestQPDFLinearize(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "original_a.pdf")
	out := filepath.Join(dir, "linear_a.pdf")
	require.NoError(t, os.WriteFile(in, []byte("%PDF-1.4 body"), 0o644))

	require.NoError(t, NewQPDF(fakeQPDF(t, 0)).Linearize(context.Background(), in, out))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 body", string(b))
}

func TestQPDFWarningsAreSuccess(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "original_a.pdf")
	require.NoError(t, os.WriteFile(in, []byte("%PDF-1.4"), 0o644))
	require.NoError(t, NewQPDF(fakeQPDF(t, 3)).Linearize(context.Background(), in, filepath.Join(dir, "linear_a.pdf")))
}

func TestQPDFFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "original_a.pdf")
	out := filepath.Join(dir, "linear_a.pdf")
	require.NoError(t, os.WriteFile(in, []byte("%PDF-1.4"), 0o644))

	err := NewQPDF(fakeQPDF(t, 2)).Linearize(context.Background(), in, out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "something odd")
	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestQPDFMissingBinary(t *testing.T) {
	dir := t.TempDir()
	err := NewQPDF(filepath.Join(dir, "no-such-qpdf")).Linearize(context.Background(), filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf"))
	require.Error(t, err)
}

func TestNewQPDFDefault(t *testing.T) {
	require.Equal(t, "qpdf", NewQPDF(" ").Path)
}
