package viewer

import (
	"math"
	"time"
)

// Clock returns the current instant. Tests substitute a fake.
type Clock func() time.Time

type Metrics struct {
	FirstPageSeconds *float64 `json:"first_page_seconds"`
	FullLoadSeconds  *float64 `json:"full_load_seconds"`
}

// Recorder holds the timing state of one load session.
type Recorder struct {
	now       Clock
	startedAt time.Time
	percent   int
	firstPage bool
	fullLoad  bool
	metrics   Metrics
}

func NewRecorder(now Clock) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

func (r *Recorder) Start() {
	r.startedAt = r.now()
	r.percent = 0
	r.firstPage = false
	r.fullLoad = false
	r.metrics = Metrics{}
}

func (r *Recorder) StartedAt() time.Time {
	return r.startedAt
}

// OnProgress updates the displayed percentage and records the full-load
// time the first time every byte is in. It returns the displayed percentage.
func (r *Recorder) OnProgress(loaded, total int64) int {
	if total <= 0 {
		return r.percent
	}
	progress := math.Min(float64(loaded)/float64(total)*100, 100)
	if p := int(math.Round(progress)); p > r.percent {
		r.percent = p
	}
	if progress >= 100 && !r.fullLoad {
		r.fullLoad = true
		r.metrics.FullLoadSeconds = r.elapsed()
	}
	return r.percent
}

func (r *Recorder) OnFirstPageRendered() {
	if r.firstPage {
		return
	}
	r.firstPage = true
	r.metrics.FirstPageSeconds = r.elapsed()
}

func (r *Recorder) Percent() int {
	return r.percent
}

func (r *Recorder) Metrics() Metrics {
	return Metrics{
		FirstPageSeconds: copyFloat(r.metrics.FirstPageSeconds),
		FullLoadSeconds:  copyFloat(r.metrics.FullLoadSeconds),
	}
}

func (r *Recorder) elapsed() *float64 {
	s := r.now().Sub(r.startedAt).Seconds()
	return &s
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
