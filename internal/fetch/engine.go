package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"linview/internal/pdfmeta"
	"linview/internal/util"
	"linview/internal/viewer"
)

// PageCounter parses a fully downloaded document.
type PageCounter func(data []byte) (int, error)

// Engine fetches documents over HTTP and reports progress as viewer events.
// Linearized documents are streamed in byte ranges so metadata and the first
// page become available before the download completes.
type Engine struct {
	client     *http.Client
	baseURL    string
	countPages PageCounter

	mu   sync.Mutex
	jobs map[viewer.SessionID]*job
}

type Option func(*Engine)

func WithPageCounter(fn PageCounter) Option {
	return func(e *Engine) {
		if fn != nil {
			e.countPages = fn
		}
	}
}

func New(client *http.Client, baseURL string, opts ...Option) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Engine{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		countPages: pdfmeta.PageCount,
		jobs:       map[viewer.SessionID]*job{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type job struct {
	req    viewer.LoadRequest
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	loaded       int64
	firstPageEnd int64
	ready        bool
	complete     bool
	pending      []int
}

// Load starts fetching in the background. Events go to req.Emit.
func (e *Engine) Load(req viewer.LoadRequest) {
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{req: req, ctx: ctx, cancel: cancel}

	e.mu.Lock()
	if old, ok := e.jobs[req.Session]; ok {
		old.cancel()
	}
	e.jobs[req.Session] = j
	e.mu.Unlock()

	go e.run(j)
}

func (e *Engine) Cancel(session viewer.SessionID) {
	e.mu.Lock()
	j, ok := e.jobs[session]
	delete(e.jobs, session)
	e.mu.Unlock()
	if ok {
		j.cancel()
	}
}

// RenderPage reports the page as rendered once the bytes it needs are in.
func (e *Engine) RenderPage(session viewer.SessionID, page int) {
	e.mu.Lock()
	j, ok := e.jobs[session]
	e.mu.Unlock()
	if !ok {
		return
	}
	j.mu.Lock()
	if j.renderableLocked(page) {
		j.mu.Unlock()
		go j.emit(viewer.PageRenderedEvent{Session: session, Page: page})
		return
	}
	j.pending = append(j.pending, page)
	j.mu.Unlock()
}

// ResolveURL turns a document reference into a fetchable URL. Bare names
// are served from the backend's /pdf/ route.
func ResolveURL(baseURL, ref string) string {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/pdf/" + url.PathEscape(ref)
}

func (e *Engine) run(j *job) {
	var err error
	if j.req.Strategy.AllowPartialFetch {
		err = e.fetchRanges(j)
	} else {
		err = e.fetchWhole(j)
	}
	if err == nil || j.ctx.Err() != nil {
		return
	}
	log.Printf("fetch failed session=%d ref=%s attempt=%d err=%v", j.req.Session, j.req.DocumentRef, j.req.Attempt, err)
	j.emit(viewer.LoadFailedEvent{Session: j.req.Session, Err: err})
}

func (e *Engine) fetchWhole(j *job) error {
	target := ResolveURL(e.baseURL, j.req.DocumentRef)
	req, err := http.NewRequestWithContext(j.ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", viewer.ErrNetworkLoad, err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", viewer.ErrNetworkLoad, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", viewer.ErrNetworkLoad, resp.StatusCode)
	}

	total := resp.ContentLength
	var data bytes.Buffer
	if total > 0 {
		data.Grow(int(total))
	}
	buf := make([]byte, chunkSize(j.req.Strategy))
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			data.Write(buf[:n])
			j.setLoaded(int64(data.Len()))
			j.emit(viewer.ProgressEvent{Session: j.req.Session, Loaded: int64(data.Len()), Total: total})
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return fmt.Errorf("%w: %v", viewer.ErrNetworkLoad, rerr)
		}
	}
	if total <= 0 {
		size := int64(data.Len())
		j.emit(viewer.ProgressEvent{Session: j.req.Session, Loaded: size, Total: size})
	}
	return e.finish(j, data.Bytes())
}

func (e *Engine) fetchRanges(j *job) error {
	target := ResolveURL(e.baseURL, j.req.DocumentRef)
	size := chunkSize(j.req.Strategy)
	var data bytes.Buffer
	total := int64(-1)

	for first := true; total < 0 || int64(data.Len()) < total; first = false {
		r := util.NextRange(int64(data.Len()), total, size)
		req, err := http.NewRequestWithContext(j.ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", viewer.ErrNetworkLoad, err)
		}
		req.Header.Set("Range", r.Header())
		resp, err := e.client.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", viewer.ErrNetworkLoad, err)
		}
		body, got, err := readRange(resp, r)
		if err != nil {
			return err
		}
		if got.Start != int64(data.Len()) {
			return fmt.Errorf("%w: range starts at %d, want %d", viewer.ErrUnsupportedRange, got.Start, data.Len())
		}
		if total < 0 {
			total = got.total
		}
		data.Write(body)
		j.setLoaded(int64(data.Len()))
		j.emit(viewer.ProgressEvent{Session: j.req.Session, Loaded: int64(data.Len()), Total: total})

		if first {
			if lin, ok := pdfmeta.ParseLinearization(data.Bytes()); ok {
				j.markReady(lin.FirstPageEnd)
				j.emit(viewer.LoadSucceededEvent{Session: j.req.Session, PageCount: lin.PageCount})
			}
		}
		e.flushPending(j)
		if total < 0 && len(body) < int(r.Len()) {
			total = int64(data.Len())
		}
	}
	return e.finish(j, data.Bytes())
}

type rangeReply struct {
	util.ByteRange
	total int64
}

func readRange(resp *http.Response, want util.ByteRange) ([]byte, rangeReply, error) {
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK, http.StatusRequestedRangeNotSatisfiable:
		return nil, rangeReply{}, fmt.Errorf("%w: status %d", viewer.ErrUnsupportedRange, resp.StatusCode)
	default:
		return nil, rangeReply{}, fmt.Errorf("%w: unexpected status %d", viewer.ErrNetworkLoad, resp.StatusCode)
	}
	got, total, err := util.ParseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return nil, rangeReply{}, fmt.Errorf("%w: %v", viewer.ErrUnsupportedRange, err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, want.Len()))
	if err != nil {
		return nil, rangeReply{}, fmt.Errorf("%w: %v", viewer.ErrNetworkLoad, err)
	}
	if int64(len(body)) != got.Len() {
		return nil, rangeReply{}, fmt.Errorf("%w: short range body %d of %d", viewer.ErrNetworkLoad, len(body), got.Len())
	}
	return body, rangeReply{ByteRange: got, total: total}, nil
}

// finish runs once every byte is in. Documents without a usable
// linearization header get their metadata here.
func (e *Engine) finish(j *job, data []byte) error {
	j.mu.Lock()
	wasReady := j.ready
	j.mu.Unlock()
	if !wasReady {
		n, err := e.countPages(data)
		if err != nil {
			return fmt.Errorf("%w: %v", viewer.ErrNetworkLoad, err)
		}
		j.markReady(0)
		j.emit(viewer.LoadSucceededEvent{Session: j.req.Session, PageCount: n})
	}
	j.mu.Lock()
	j.complete = true
	j.mu.Unlock()
	e.flushPending(j)
	return nil
}

func (e *Engine) flushPending(j *job) {
	j.mu.Lock()
	var ready []int
	keep := j.pending[:0]
	for _, p := range j.pending {
		if j.renderableLocked(p) {
			ready = append(ready, p)
		} else {
			keep = append(keep, p)
		}
	}
	j.pending = keep
	j.mu.Unlock()
	for _, p := range ready {
		j.emit(viewer.PageRenderedEvent{Session: j.req.Session, Page: p})
	}
}

func (j *job) setLoaded(n int64) {
	j.mu.Lock()
	j.loaded = n
	j.mu.Unlock()
}

func (j *job) markReady(firstPageEnd int64) {
	j.mu.Lock()
	j.ready = true
	j.firstPageEnd = firstPageEnd
	j.mu.Unlock()
}

func (j *job) renderableLocked(page int) bool {
	if !j.ready {
		return false
	}
	if j.complete {
		return true
	}
	return page == 1 && j.firstPageEnd > 0 && j.loaded >= j.firstPageEnd
}

func (j *job) emit(ev viewer.Event) {
	if j.ctx.Err() != nil || j.req.Emit == nil {
		return
	}
	j.req.Emit(ev)
}

func chunkSize(s viewer.FetchStrategy) int {
	if s.ChunkSizeBytes <= 0 {
		return viewer.DefaultChunkSizeBytes
	}
	return s.ChunkSizeBytes
}
