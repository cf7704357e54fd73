package prep

import (
	"context"
	"sync/atomic"

	"github.com/opentracing/opentracing-go"
)

// TracingProgress implements Progress on top of an opentracing.Tracer:
// BeginTask/EndTask open and close a span, DisplayProgression sets a
// span tag, and interruption is driven by an external atomic flag the
// caller can flip from another goroutine or signal handler. It is an
// optional adapter for the external Progress collaborator named in
// spec §6; NewContext defaults to NoopProgress.
type TracingProgress struct {
	tracer      opentracing.Tracer
	parent      context.Context
	span        opentracing.Span
	interrupted int32
}

// NewTracingProgress builds a TracingProgress over the given tracer and
// parent context (used only to carry span baggage; no deadline is
// derived from it — timeouts are the optimizer's own concern, spec §5).
func NewTracingProgress(tracer opentracing.Tracer, parent context.Context) *TracingProgress {
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	if parent == nil {
		parent = context.Background()
	}
	return &TracingProgress{tracer: tracer, parent: parent}
}

// BeginTask opens a new span named after the task; a previously open
// span (if the caller forgot to EndTask) is finished first so spans
// never leak.
func (t *TracingProgress) BeginTask(name string) {
	if t.span != nil {
		t.span.Finish()
	}
	t.span = t.tracer.StartSpan(name)
}

// EndTask finishes the current span, if any.
func (t *TracingProgress) EndTask() {
	if t.span != nil {
		t.span.Finish()
		t.span = nil
	}
}

// DisplayProgression records pct as a span tag on the current task.
func (t *TracingProgress) DisplayProgression(pct int) {
	if t.span != nil {
		t.span.SetTag("progress_pct", pct)
	}
}

// IsInterruptionRequested reports the current value of the external
// interruption flag. Safe to call and to flip (via RequestInterruption)
// concurrently with a running builder/optimizer — spec §5 only
// guarantees suspension happens at well-defined hook points, not that
// the flag itself is single-writer.
func (t *TracingProgress) IsInterruptionRequested() bool {
	return atomic.LoadInt32(&t.interrupted) != 0
}

// RequestInterruption flips the interruption flag; subsequent
// IsInterruptionRequested calls return true.
func (t *TracingProgress) RequestInterruption() {
	atomic.StoreInt32(&t.interrupted, 1)
}
