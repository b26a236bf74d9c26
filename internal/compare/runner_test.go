package compare

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"linview/internal/models"
	"linview/internal/naming"
	"linview/internal/pdfmeta/pdfmetatest"
	"linview/internal/viewer"

	"github.com/stretchr/testify/require"
)

type recordingPoster struct {
	mu      sync.Mutex
	reports []models.LoadReport
}

func (p *recordingPoster) PostReport(_ context.Context, rep models.LoadReport) (models.LoadReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, rep)
	return rep, nil
}

func pdfServer(t *testing.T, docs map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := docs[strings.TrimPrefix(r.URL.Path, "/pdf/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, "doc.pdf", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompareMeasuresBothVariants(t *testing.T) {
	srv := pdfServer(t, map[string][]byte{
		"original_book.pdf": pdfmetatest.Build(pdfmetatest.Options{Pages: 6, Padding: 40000}),
		"linear_book.pdf":   pdfmetatest.Build(pdfmetatest.Options{Pages: 6, Linearized: true, Padding: 40000}),
	})
	poster := &recordingPoster{}
	opts := viewer.DefaultOptions()
	opts.ChunkSizeBytes = 8192
	r := &Runner{BaseURL: srv.URL, HTTP: srv.Client(), Options: opts, Timeout: 10 * time.Second, Reports: poster}

	results, err := r.Compare(context.Background(), "book.pdf")
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, "original_book.pdf", results[0].Document)
	require.Equal(t, "original", results[0].State.Variant)
	require.False(t, results[0].State.PartialFetch)
	require.Equal(t, "linearized", results[1].State.Variant)
	require.True(t, results[1].State.PartialFetch)
	for _, res := range results {
		require.True(t, res.State.Measured(), res.Document)
		require.Equal(t, 6, *res.State.PageCount)
		require.Equal(t, 100, res.State.ProgressPercent)
	}

	require.Len(t, poster.reports, 2)
	for _, rep := range poster.reports {
		require.Equal(t, "book.pdf", rep.BaseName)
		require.Empty(t, rep.Error)
	}

	var out bytes.Buffer
	require.NoError(t, WriteTable(&out, results))
	require.Contains(t, out.String(), "linear_book.pdf")
	require.Contains(t, out.String(), "first page (s)")
}

func TestMeasureMissingDocumentFails(t *testing.T) {
	srv := pdfServer(t, map[string][]byte{})
	r := &Runner{BaseURL: srv.URL, HTTP: srv.Client(), Options: viewer.DefaultOptions(), Timeout: 5 * time.Second}

	res, err := r.Measure(context.Background(), "linear_gone.pdf")
	require.NoError(t, err)
	require.Equal(t, "failed_terminal", res.State.Status)
	require.Equal(t, 2, res.State.Attempt)
	require.Contains(t, *res.State.Error, "after 2 attempts")
}

func TestMeasureTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	r := &Runner{BaseURL: srv.URL, HTTP: srv.Client(), Options: viewer.DefaultOptions(), Timeout: 100 * time.Millisecond}

	res, err := r.Measure(context.Background(), "original_slow.pdf")
	require.Error(t, err)
	require.True(t, res.TimedOut)
	require.Equal(t, "loading", res.State.Status)
}

func TestReportFromState(t *testing.T) {
	first, full := 0.25, 1.5
	msg := "Could not load the PDF: boom"
	rep := Report(viewer.DisplayState{
		DocumentRef:      "linear_a_b.pdf",
		Variant:          "linearized",
		Attempt:          1,
		PartialFetch:     true,
		FirstPageSeconds: &first,
		FullLoadSeconds:  &full,
		Error:            &msg,
	}, naming.DefaultTags())
	require.Equal(t, "a_b.pdf", rep.BaseName)
	require.Equal(t, "linear_a_b.pdf", rep.Document)
	require.Equal(t, 0.25, *rep.FirstPageSeconds)
	require.Equal(t, msg, rep.Error)
}
