package viewer

// SessionID tags every load session. Ids grow monotonically per controller.
type SessionID uint64

// Event is emitted by an Engine for one load session.
type Event interface {
	SessionID() SessionID
}

type ProgressEvent struct {
	Session SessionID
	Loaded  int64
	Total   int64
}

type LoadSucceededEvent struct {
	Session   SessionID
	PageCount int
}

type LoadFailedEvent struct {
	Session SessionID
	Err     error
}

type PageRenderedEvent struct {
	Session SessionID
	Page    int
}

func (e ProgressEvent) SessionID() SessionID      { return e.Session }
func (e LoadSucceededEvent) SessionID() SessionID { return e.Session }
func (e LoadFailedEvent) SessionID() SessionID    { return e.Session }
func (e PageRenderedEvent) SessionID() SessionID  { return e.Session }

// LoadRequest describes one document load handed to an Engine. Emit may be
// called from any goroutine; it must hand the event to the loop that owns
// the Manager.
type LoadRequest struct {
	Session     SessionID
	DocumentRef string
	Strategy    FetchStrategy
	Attempt     int
	Emit        func(Event)
}

// Engine is the rendering collaborator: it fetches and parses documents and
// reports progress and lifecycle events tagged with the session id.
type Engine interface {
	Load(req LoadRequest)
	RenderPage(session SessionID, page int)
	Cancel(session SessionID)
}
