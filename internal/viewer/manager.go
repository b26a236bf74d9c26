package viewer

import "linview/internal/naming"

// Manager owns the viewer state for the currently selected document. Like
// Controller it expects every call to come from one event loop.
type Manager struct {
	engine Engine
	opts   Options
	ctrl   *Controller

	ref      string
	variant  naming.Variant
	cursor   PageCursor
	cursorOf SessionID
}

// NewManager wires a manager to an engine. emit is handed to the engine with
// every load request and must deliver events back to Handle on the loop.
func NewManager(engine Engine, emit func(Event), opts Options, now Clock) *Manager {
	opts = opts.normalized()
	return &Manager{
		engine: engine,
		opts:   opts,
		ctrl:   NewController(engine, emit, opts, now),
		cursor: NewPageCursor(),
	}
}

// SelectDocument supersedes whatever was loading and starts over for ref.
func (m *Manager) SelectDocument(ref string) SessionID {
	m.ref = ref
	m.variant = m.opts.Tags.Classify(ref)
	m.cursor.Reset()
	id := m.ctrl.Begin(ref, SelectStrategy(m.variant, m.opts))
	m.cursorOf = id
	return id
}

func (m *Manager) Close() {
	m.ctrl.Abandon()
}

func (m *Manager) NextPage() {
	if m.cursor.Next() {
		m.render()
	}
}

func (m *Manager) PreviousPage() {
	if m.cursor.Previous() {
		m.render()
	}
}

// Handle applies an engine event. Events from abandoned sessions are
// dropped and reported as not applied.
func (m *Manager) Handle(ev Event) bool {
	if ev == nil {
		return false
	}
	id := ev.SessionID()
	switch e := ev.(type) {
	case ProgressEvent:
		return m.ctrl.OnProgress(id, e.Loaded, e.Total)
	case LoadSucceededEvent:
		if !m.ctrl.OnLoadSucceeded(id, e.PageCount) {
			return false
		}
		m.cursor.SetCount(e.PageCount)
		m.render()
		return true
	case LoadFailedEvent:
		if !m.ctrl.OnLoadFailed(id, e.Err) {
			return false
		}
		if s := m.ctrl.Session(); s != nil && s.ID != m.cursorOf {
			m.cursor.Count = nil
			m.cursorOf = s.ID
		}
		return true
	case PageRenderedEvent:
		return m.ctrl.OnPageRenderSucceeded(id)
	default:
		return false
	}
}

func (m *Manager) render() {
	s := m.ctrl.Session()
	if s == nil || s.Status != StatusSucceeded || m.engine == nil {
		return
	}
	m.engine.RenderPage(s.ID, m.cursor.Page)
}

// Session exposes the active load session for reporting.
func (m *Manager) Session() *LoadSession {
	return m.ctrl.Session()
}

func (m *Manager) DisplayState() DisplayState {
	st := DisplayState{
		DocumentRef: m.ref,
		Status:      StatusIdle.String(),
		PageNumber:  m.cursor.Page,
	}
	s := m.ctrl.Session()
	if s == nil {
		return st
	}
	metrics := s.Metrics()
	st.Variant = m.variant.String()
	st.Status = s.Status.String()
	st.Attempt = s.Attempt
	st.PartialFetch = s.Strategy.AllowPartialFetch
	st.ProgressPercent = s.Percent()
	st.FirstPageSeconds = metrics.FirstPageSeconds
	st.FullLoadSeconds = metrics.FullLoadSeconds
	if m.cursor.Count != nil {
		n := *m.cursor.Count
		st.PageCount = &n
	}
	if s.Status == StatusFailedTerminal {
		msg := loadErrorMessage(s.Err, s.Attempt)
		st.Error = &msg
	}
	return st
}
