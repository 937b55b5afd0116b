// Package stacktrace normalizes event stack traces for display: it picks the thread worth showing,
// links exceptions to threads, filters and collapses frames, resolves instruction addresses
// against loaded debug images and renders traces as platform-native text.
package stacktrace

import (
	"crashview/common/format/event"
)

// FindBestThread picks the thread shown by default: the first crashed thread, else the first
// thread with a stack trace, else the first thread. It returns nil for an empty list.
func FindBestThread(threads []event.Thread) *event.Thread {
	if len(threads) == 0 {
		return nil
	}
	for i := range threads {
		if threads[i].Crashed {
			return &threads[i]
		}
	}
	for i := range threads {
		if threads[i].Stacktrace != nil {
			return &threads[i]
		}
	}
	return &threads[0]
}

// FindThreadException returns the exception entry describing thread, or nil when the thread's
// own stack trace should be shown instead.
//
// A lone exception value without a stack trace borrows the thread's traces. Otherwise the
// whole entry belongs to the thread when any value names the thread id, or when no value names
// any thread at all and the thread crashed.
func FindThreadException(ev *event.Event, thread *event.Thread) *event.Exception {
	exc := ev.Exception()
	if exc == nil || len(exc.Values) == 0 || thread == nil {
		return nil
	}

	if len(exc.Values) == 1 && exc.Values[0].Stacktrace == nil {
		merged := *exc
		value := exc.Values[0]
		value.Stacktrace = thread.Stacktrace
		value.RawStacktrace = thread.RawStacktrace
		merged.Values = []event.ExceptionValue{value}
		return &merged
	}

	hasThreadID := false
	for _, v := range exc.Values {
		if v.ThreadID != "" {
			hasThreadID = true
		}
		if v.ThreadID != "" && v.ThreadID == thread.ID {
			return exc
		}
	}
	if !hasThreadID && thread.Crashed {
		return exc
	}
	return nil
}

// ThreadStacktrace returns the symbolicated or the raw stack trace of a thread.
func ThreadStacktrace(thread *event.Thread, raw bool) *event.Stacktrace {
	if thread == nil {
		return nil
	}
	if raw {
		return thread.RawStacktrace
	}
	return thread.Stacktrace
}

// ValueStacktrace returns the original or minified stack trace of an exception value.
// A minified request falls back to the original trace when no raw trace was recorded.
func ValueStacktrace(v *event.ExceptionValue, minified bool) *event.Stacktrace {
	if v == nil {
		return nil
	}
	if minified && v.RawStacktrace != nil {
		return v.RawStacktrace
	}
	return v.Stacktrace
}

// Trace is the authoritative trace source of an event: either an exception entry (possibly
// resolved through a thread) or a bare stack trace.
type Trace struct {
	Thread     *event.Thread
	Exception  *event.Exception
	Stacktrace *event.Stacktrace
}

// ResolveTrace finds the authoritative trace of an event. Threads take precedence: the best
// thread's exception when one resolves to it, else that thread's own trace. Without threads
// the exception entry is used, then a plain stacktrace entry.
func ResolveTrace(ev *event.Event, minified bool) Trace {
	if threads := ev.Threads(); threads != nil && len(threads.Values) > 0 {
		best := FindBestThread(threads.Values)
		if exc := FindThreadException(ev, best); exc != nil {
			return Trace{Thread: best, Exception: exc}
		}
		st := ThreadStacktrace(best, minified)
		if st == nil {
			st = best.Stacktrace
		}
		return Trace{Thread: best, Stacktrace: st}
	}
	if exc := ev.Exception(); exc != nil && len(exc.Values) > 0 {
		return Trace{Exception: exc}
	}
	return Trace{Stacktrace: ev.Stacktrace()}
}

// Frames returns every frame of the trace in payload order, across all exception values.
func (t Trace) Frames(minified bool) []event.Frame {
	if t.Exception != nil {
		var frames []event.Frame
		for i := range t.Exception.Values {
			if st := ValueStacktrace(&t.Exception.Values[i], minified); st != nil {
				frames = append(frames, st.Frames...)
			}
		}
		return frames
	}
	if t.Stacktrace != nil {
		return t.Stacktrace.Frames
	}
	return nil
}
