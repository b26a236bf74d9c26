package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"linview/internal/models"
	"linview/internal/viewer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	loads   []viewer.LoadRequest
	renders []int
}

func (e *stubEngine) Load(req viewer.LoadRequest)             { e.loads = append(e.loads, req) }
func (e *stubEngine) RenderPage(_ viewer.SessionID, page int) { e.renders = append(e.renders, page) }
func (e *stubEngine) Cancel(viewer.SessionID)                 {}
func (e *stubEngine) last() viewer.LoadRequest                { return e.loads[len(e.loads)-1] }

type stubFiles struct {
	files []models.FileInfo
	err   error
}

func (s stubFiles) ListFiles(context.Context) ([]models.FileInfo, error) { return s.files, s.err }

type stubReports struct {
	mu      sync.Mutex
	reports []models.LoadReport
}

func (s *stubReports) PostReport(_ context.Context, rep models.LoadReport) (models.LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, rep)
	return rep, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*Model, *stubEngine, *stubReports, *clock) {
	t.Helper()
	eng := &stubEngine{}
	reps := &stubReports{}
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	m := New(Config{
		Files: stubFiles{files: []models.FileInfo{
			{Name: "original_a.pdf"}, {Name: "linear_a.pdf"}, {Name: "original_b.pdf"},
		}},
		Reports: reps,
		Engine:  eng,
		Options: viewer.DefaultOptions(),
		Now:     clk.now,
	})
	msg := m.loadFiles()()
	m.Update(msg)
	return m, eng, reps, clk
}

func TestFilesAreGroupedIntoPairs(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	require.Len(t, m.pairs, 2)
	require.Equal(t, "a.pdf", m.pairs[0].Base)
	require.True(t, m.pairs[0].Complete())
	require.Equal(t, "", m.pairs[1].Linearized)
	require.Contains(t, m.View(), "a.pdf  [o] [l]")
}

func TestFilesErrorIsShown(t *testing.T) {
	m := New(Config{Files: stubFiles{err: errors.New("connection refused")}, Options: viewer.DefaultOptions()})
	m.Update(m.loadFiles()())
	require.Contains(t, m.View(), "Could not list files: connection refused")
}

func TestOpenLinearizedAndPostReportOnce(t *testing.T) {
	m, eng, reps, clk := newTestModel(t)

	m.Update(key("l"))
	require.Len(t, eng.loads, 1)
	req := eng.last()
	require.Equal(t, "linear_a.pdf", req.DocumentRef)
	require.True(t, req.Strategy.AllowPartialFetch)

	clk.t = clk.t.Add(200 * time.Millisecond)
	_, cmd := m.Update(eventMsg{ev: viewer.LoadSucceededEvent{Session: req.Session, PageCount: 3}})
	require.NotNil(t, cmd)
	require.Equal(t, []int{1}, eng.renders)

	clk.t = clk.t.Add(220 * time.Millisecond)
	m.Update(eventMsg{ev: viewer.PageRenderedEvent{Session: req.Session, Page: 1}})
	require.Empty(t, reps.reports)

	clk.t = clk.t.Add(time.Second)
	require.Nil(t, m.maybeReport())
	m.Update(eventMsg{ev: viewer.ProgressEvent{Session: req.Session, Loaded: 100, Total: 100}})
	require.True(t, m.reported[req.Session])
	require.Nil(t, m.maybeReport())

	view := m.View()
	require.Contains(t, view, "First page shown in 0.42 s")
	require.Contains(t, view, "Full document loaded in 1.42 s")
	require.Contains(t, view, "Page 1 of 3")
}

func TestReportCommandPostsMeasurements(t *testing.T) {
	m, eng, reps, clk := newTestModel(t)
	m.Update(key("o"))
	req := eng.last()
	require.False(t, req.Strategy.AllowPartialFetch)

	clk.t = clk.t.Add(time.Second)
	m.Update(eventMsg{ev: viewer.ProgressEvent{Session: req.Session, Loaded: 10, Total: 10}})
	m.Update(eventMsg{ev: viewer.LoadSucceededEvent{Session: req.Session, PageCount: 2}})
	clk.t = clk.t.Add(500 * time.Millisecond)

	m.mgr.Handle(viewer.PageRenderedEvent{Session: req.Session, Page: 1})
	cmd := m.maybeReport()
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, reportMsg{document: "original_a.pdf"}, msg)

	require.Len(t, reps.reports, 1)
	rep := reps.reports[0]
	require.Equal(t, "a.pdf", rep.BaseName)
	require.Equal(t, "original", rep.Variant)
	require.InDelta(t, 1.5, *rep.FirstPageSeconds, 1e-9)
	require.InDelta(t, 1.0, *rep.FullLoadSeconds, 1e-9)
}

func TestPagingKeys(t *testing.T) {
	m, eng, _, _ := newTestModel(t)
	m.Update(key("l"))
	req := eng.last()
	m.Update(eventMsg{ev: viewer.LoadSucceededEvent{Session: req.Session, PageCount: 3}})

	m.Update(key("right"))
	m.Update(key("n"))
	m.Update(key("n"))
	m.Update(key("left"))
	m.Update(key("p"))
	m.Update(key("p"))
	require.Equal(t, []int{1, 2, 3, 2, 1}, eng.renders)
}

func TestOpenMissingVariant(t *testing.T) {
	m, eng, _, _ := newTestModel(t)
	m.Update(key("down"))
	m.Update(key("l"))
	require.Empty(t, eng.loads)
	require.Contains(t, m.View(), "No linearized variant of b.pdf")

	m.Update(key("o"))
	require.Equal(t, "original_b.pdf", eng.last().DocumentRef)
}

func TestQuitStopsEventDelivery(t *testing.T) {
	m, eng, _, _ := newTestModel(t)
	m.Update(key("l"))
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())

	done := make(chan struct{})
	go func() {
		m.emit(viewer.ProgressEvent{Session: eng.last().Session})
		for i := 0; i < 300; i++ {
			m.emit(viewer.ProgressEvent{Session: eng.last().Session})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked after quit")
	}
}
