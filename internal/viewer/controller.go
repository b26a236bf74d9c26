package viewer

import "time"

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
	StatusRetryingDegraded
	StatusFailedTerminal
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusRetryingDegraded:
		return "retrying_degraded"
	case StatusFailedTerminal:
		return "failed_terminal"
	default:
		return "idle"
	}
}

// LoadSession is one attempt to load one document.
type LoadSession struct {
	ID          SessionID
	DocumentRef string
	Strategy    FetchStrategy
	Attempt     int
	Status      Status
	StartedAt   time.Time
	BytesLoaded int64
	BytesTotal  *int64
	PageCount   *int
	Err         error

	recorder *Recorder
}

func (s *LoadSession) Metrics() Metrics {
	return s.recorder.Metrics()
}

func (s *LoadSession) Percent() int {
	return s.recorder.Percent()
}

// Controller drives the load lifecycle of the selected document. It is not
// safe for concurrent use; feed it from a single event loop.
type Controller struct {
	engine Engine
	emit   func(Event)
	opts   Options
	now    Clock

	lastID SessionID
	active *LoadSession
}

func NewController(engine Engine, emit func(Event), opts Options, now Clock) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{engine: engine, emit: emit, opts: opts.normalized(), now: now}
}

// Begin starts a fresh load for a newly selected document. Any in-flight
// session is abandoned and attempt numbering restarts at 1.
func (c *Controller) Begin(ref string, strategy FetchStrategy) SessionID {
	return c.begin(ref, strategy, 1)
}

func (c *Controller) begin(ref string, strategy FetchStrategy, attempt int) SessionID {
	c.abandon()

	c.lastID++
	rec := NewRecorder(c.now)
	rec.Start()
	c.active = &LoadSession{
		ID:          c.lastID,
		DocumentRef: ref,
		Strategy:    strategy,
		Attempt:     attempt,
		Status:      StatusLoading,
		StartedAt:   rec.StartedAt(),
		recorder:    rec,
	}
	if c.engine != nil {
		c.engine.Load(LoadRequest{
			Session:     c.active.ID,
			DocumentRef: ref,
			Strategy:    strategy,
			Attempt:     attempt,
			Emit:        c.emit,
		})
	}
	return c.active.ID
}

// Abandon drops the active session, if any.
func (c *Controller) Abandon() {
	c.abandon()
	c.active = nil
}

func (c *Controller) abandon() {
	if c.active != nil && c.engine != nil {
		c.engine.Cancel(c.active.ID)
	}
}

func (c *Controller) Session() *LoadSession {
	return c.active
}

func (c *Controller) Status() Status {
	if c.active == nil {
		return StatusIdle
	}
	return c.active.Status
}

func (c *Controller) current(id SessionID) (*LoadSession, bool) {
	if c.active == nil || c.active.ID != id {
		return nil, false
	}
	return c.active, true
}

func (c *Controller) OnProgress(id SessionID, loaded, total int64) bool {
	s, ok := c.current(id)
	if !ok || s.Status == StatusFailedTerminal {
		return false
	}
	s.BytesLoaded = loaded
	if total > 0 {
		t := total
		s.BytesTotal = &t
	}
	s.recorder.OnProgress(loaded, total)
	return true
}

// OnLoadSucceeded records document metadata. Full load stays driven by
// progress, since metadata can arrive before every byte is streamed.
func (c *Controller) OnLoadSucceeded(id SessionID, pageCount int) bool {
	s, ok := c.current(id)
	if !ok || s.Status != StatusLoading {
		return false
	}
	n := pageCount
	s.PageCount = &n
	s.Status = StatusSucceeded
	return true
}

// OnLoadFailed retries once with partial fetch disabled when the failed
// session was streaming; otherwise the failure is terminal.
func (c *Controller) OnLoadFailed(id SessionID, err error) bool {
	s, ok := c.current(id)
	if !ok || s.Status == StatusFailedTerminal {
		return false
	}
	if err == nil {
		err = ErrNetworkLoad
	}
	s.Status = StatusFailed
	s.Err = err

	if s.Strategy.AllowPartialFetch && s.Attempt <= c.opts.MaxRetries {
		s.Status = StatusRetryingDegraded
		c.begin(s.DocumentRef, s.Strategy.Degraded(), s.Attempt+1)
		return true
	}
	s.Status = StatusFailedTerminal
	return true
}

func (c *Controller) OnPageRenderSucceeded(id SessionID) bool {
	s, ok := c.current(id)
	if !ok || s.Status == StatusFailedTerminal {
		return false
	}
	s.recorder.OnFirstPageRendered()
	return true
}
