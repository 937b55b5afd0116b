package stacktrace

import "crashview/common/format/event"

func intp(n int) *int { return &n }

func inApp(function string, line int) event.Frame {
	return event.Frame{Function: function, LineNo: intp(line), InApp: true}
}

func system(function string, line int) event.Frame {
	return event.Frame{Function: function, LineNo: intp(line)}
}

func newEvent(platform string, entries ...event.Entry) *event.Event {
	return &event.Event{ID: "ev", Platform: platform, Entries: entries}
}

func exceptionEntry(values ...event.ExceptionValue) event.Entry {
	return event.Entry{Type: event.EntryException, Data: &event.Exception{Values: values}}
}

func threadsEntry(threads ...event.Thread) event.Entry {
	return event.Entry{Type: event.EntryThreads, Data: &event.Threads{Values: threads}}
}

func debugMetaEntry(images ...event.DebugImage) event.Entry {
	return event.Entry{Type: event.EntryDebugMeta, Data: &event.DebugMeta{Images: images}}
}

func rowIndices(rows []Row) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Index)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
