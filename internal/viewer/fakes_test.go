package viewer

import "time"

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type renderCall struct {
	Session SessionID
	Page    int
}

type fakeEngine struct {
	loads     []LoadRequest
	renders   []renderCall
	cancelled []SessionID
}

func (e *fakeEngine) Load(req LoadRequest) { e.loads = append(e.loads, req) }

func (e *fakeEngine) RenderPage(session SessionID, page int) {
	e.renders = append(e.renders, renderCall{Session: session, Page: page})
}

func (e *fakeEngine) Cancel(session SessionID) { e.cancelled = append(e.cancelled, session) }

func (e *fakeEngine) last() LoadRequest { return e.loads[len(e.loads)-1] }
