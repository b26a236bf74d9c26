package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"linview/internal/compare"
	"linview/internal/models"
	"linview/internal/naming"
	"linview/internal/viewer"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// FileSource lists stored documents. *backend.Client satisfies it.
type FileSource interface {
	ListFiles(ctx context.Context) ([]models.FileInfo, error)
}

// Config wires runtime collaborators into the TUI program.
type Config struct {
	Files   FileSource
	Reports compare.ReportPoster
	Engine  viewer.Engine
	Options viewer.Options
	Now     viewer.Clock
}

type eventMsg struct{ ev viewer.Event }

type filesMsg struct {
	files []models.FileInfo
	err   error
}

type reportMsg struct {
	document string
	err      error
}

// Model is the bubbletea model. Engine events are funnelled through a
// channel into Update, so the manager only ever runs on the UI loop.
type Model struct {
	cfg  Config
	tags naming.Tags
	mgr  *viewer.Manager

	events   chan viewer.Event
	done     chan struct{}
	stopOnce sync.Once

	pairs    []naming.Pair
	selected int
	bar      progress.Model
	info     string
	err      string
	reported map[viewer.SessionID]bool
}

func New(cfg Config) *Model {
	m := &Model{
		cfg:      cfg,
		tags:     cfg.Options.Tags,
		events:   make(chan viewer.Event, 256),
		done:     make(chan struct{}),
		bar:      progress.New(progress.WithDefaultGradient()),
		info:     "Loading files...",
		reported: map[viewer.SessionID]bool{},
	}
	if m.tags == (naming.Tags{}) {
		m.tags = naming.DefaultTags()
	}
	m.bar.Width = 40
	m.mgr = viewer.NewManager(cfg.Engine, m.emit, cfg.Options, cfg.Now)
	return m
}

func (m *Model) emit(ev viewer.Event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadFiles(), m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return eventMsg{ev: ev}
		case <-m.done:
			return nil
		}
	}
}

func (m *Model) loadFiles() tea.Cmd {
	files := m.cfg.Files
	return func() tea.Msg {
		if files == nil {
			return filesMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		out, err := files.ListFiles(ctx)
		return filesMsg{files: out, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		if w := msg.Width - 20; w > 10 {
			m.bar.Width = min(w, 80)
		}
	case filesMsg:
		if msg.err != nil {
			m.err = fmt.Sprintf("Could not list files: %v", msg.err)
			return m, nil
		}
		names := make([]string, 0, len(msg.files))
		for _, f := range msg.files {
			names = append(names, f.Name)
		}
		m.pairs = m.tags.Group(names)
		if m.selected >= len(m.pairs) {
			m.selected = max(len(m.pairs)-1, 0)
		}
		m.err = ""
		m.info = fmt.Sprintf("%d documents", len(m.pairs))
	case eventMsg:
		m.mgr.Handle(msg.ev)
		return m, tea.Batch(m.maybeReport(), m.waitForEvent())
	case reportMsg:
		if msg.err != nil {
			log.Printf("tui: post report document=%s err=%v", msg.document, msg.err)
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.stop()
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.pairs)-1 {
			m.selected++
		}
	case "o":
		m.open(naming.VariantOriginal)
	case "l":
		m.open(naming.VariantLinearized)
	case "right", "n":
		m.mgr.NextPage()
	case "left", "p":
		m.mgr.PreviousPage()
	case "r":
		m.info = "Refreshing..."
		return m, m.loadFiles()
	}
	return m, nil
}

func (m *Model) open(v naming.Variant) {
	if len(m.pairs) == 0 {
		return
	}
	ref := m.pairs[m.selected].Ref(v)
	if ref == "" {
		m.err = fmt.Sprintf("No %s variant of %s", v, m.pairs[m.selected].Base)
		return
	}
	m.err = ""
	m.mgr.SelectDocument(ref)
}

// maybeReport posts the session's measurements the first time it settles.
func (m *Model) maybeReport() tea.Cmd {
	s := m.mgr.Session()
	if m.cfg.Reports == nil || s == nil || m.reported[s.ID] {
		return nil
	}
	st := m.mgr.DisplayState()
	if !st.Settled() {
		return nil
	}
	m.reported[s.ID] = true
	rep := compare.Report(st, m.tags)
	poster := m.cfg.Reports
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := poster.PostReport(ctx, rep)
		return reportMsg{document: rep.Document, err: err}
	}
}

func (m *Model) stop() {
	m.stopOnce.Do(func() {
		m.mgr.Close()
		close(m.done)
	})
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("linview: linearized vs original PDF loading"))
	b.WriteString("\n")

	var list strings.Builder
	if len(m.pairs) == 0 {
		list.WriteString(mutedStyle.Render("No documents. Upload one with `viewer upload <file>`."))
	}
	for i, p := range m.pairs {
		line := fmt.Sprintf("%s  [%s] [%s]", p.Base, mark(p.Original != "", "o"), mark(p.Linearized != "", "l"))
		if i == m.selected {
			list.WriteString(selectedStyle.Render("> " + line))
		} else {
			list.WriteString("  " + line)
		}
		if i < len(m.pairs)-1 {
			list.WriteString("\n")
		}
	}
	b.WriteString(sectionStyle.Render(list.String()))
	b.WriteString("\n")

	st := m.mgr.DisplayState()
	var view strings.Builder
	if st.DocumentRef == "" {
		view.WriteString(mutedStyle.Render("Select a document and press o or l."))
	} else {
		fmt.Fprintf(&view, "%s (%s) %s attempt %d\n", st.DocumentRef, st.Variant, st.Status, st.Attempt)
		view.WriteString(m.bar.ViewAs(float64(st.ProgressPercent) / 100))
		view.WriteString("\n")
		view.WriteString(metricStyle.Render(st.FirstPageLabel()))
		view.WriteString("\n")
		view.WriteString(metricStyle.Render(st.FullLoadLabel()))
		view.WriteString("\n")
		view.WriteString(st.PageLabel())
		if st.Error != nil {
			view.WriteString("\n")
			view.WriteString(errorStyle.Render(*st.Error))
		}
	}
	b.WriteString(sectionStyle.Render(view.String()))
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	} else if m.info != "" {
		b.WriteString(mutedStyle.Render(m.info))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select • o original • l linearized • ←/→ p/n page • r refresh • q quit"))
	return b.String()
}

func mark(ok bool, s string) string {
	if ok {
		return s
	}
	return "-"
}
