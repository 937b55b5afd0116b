package render

import (
	"crashview/common/format/event"
	"crashview/common/stacktrace"
	"crashview/common/utils"
)

var nativePlatforms = map[string]bool{
	"native": true,
	"objc":   true,
	"cocoa":  true,
}

func renderException(c *Context, entry *event.Entry) (*Section, error) {
	exc, ok := entry.Data.(*event.Exception)
	if !ok {
		return nil, unexpectedData(entry)
	}
	if c.ThreadException != nil && exc == c.Event.Exception() {
		return nil, nil
	}
	return &Section{Title: "Exception", Exceptions: exceptionViews(c, exc)}, nil
}

func renderThreads(c *Context, entry *event.Entry) (*Section, error) {
	threads, ok := entry.Data.(*event.Threads)
	if !ok {
		return nil, unexpectedData(entry)
	}
	best := stacktrace.FindBestThread(threads.Values)
	if best == nil {
		return nil, nil
	}

	view := &ThreadView{
		ThreadSummary: summary(best),
		LockReason:    stacktrace.LockReason(best.HeldLocks),
		Threads:       make([]ThreadSummary, 0, len(threads.Values)),
	}
	if best.State != "" {
		view.State = stacktrace.ThreadState(best.State)
	}
	for i := range threads.Values {
		view.Threads = append(view.Threads, summary(&threads.Values[i]))
	}

	section := &Section{Title: "Threads", Thread: view}
	if len(threads.Values) == 1 {
		section.Title = "Stack Trace"
	}
	if exc := stacktrace.FindThreadException(c.Event, best); exc != nil {
		section.Exceptions = exceptionViews(c, exc)
		return section, nil
	}

	st := stacktrace.ThreadStacktrace(best, c.Prefs.Minified())
	if st == nil {
		st = best.Stacktrace
	}
	section.Stacktrace = stacktraceView(c, st, nil)
	return section, nil
}

func renderStacktrace(c *Context, entry *event.Entry) (*Section, error) {
	st, ok := entry.Data.(*event.Stacktrace)
	if !ok {
		return nil, unexpectedData(entry)
	}
	return &Section{Title: "Stack Trace", Stacktrace: stacktraceView(c, st, nil)}, nil
}

// renderData passes non-trace entries through untouched.
func renderData(title string) EntryRenderer {
	return func(c *Context, entry *event.Entry) (*Section, error) {
		return &Section{Title: title, Data: entry.Data}, nil
	}
}

func summary(t *event.Thread) ThreadSummary {
	return ThreadSummary{ID: t.ID, Name: t.Name, Crashed: t.Crashed, Current: t.Current}
}

func exceptionViews(c *Context, exc *event.Exception) []ExceptionView {
	views := make([]ExceptionView, 0, len(exc.Values))
	for i := range exc.Values {
		v := &exc.Values[i]
		views = append(views, ExceptionView{
			Type:       v.Type,
			Value:      v.Value,
			Module:     v.Module,
			Mechanism:  v.Mechanism,
			Stacktrace: stacktraceView(c, stacktrace.ValueStacktrace(v, c.Prefs.Minified()), v),
		})
	}
	// newest exception first, matching the frame order
	if c.Prefs.NewestFirst {
		for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
			views[i], views[j] = views[j], views[i]
		}
	}
	return views
}

func stacktraceView(c *Context, st *event.Stacktrace, exc *event.ExceptionValue) *StacktraceView {
	if st == nil {
		return nil
	}
	view := &StacktraceView{HasSystemFrames: st.HasSystemFrames}
	if c.Prefs.View == stacktrace.ViewRaw {
		view.Raw = stacktrace.RawContent(st, c.Event.Platform, exc)
		return view
	}

	native := nativePlatforms[c.Event.Platform]
	var rows []stacktrace.Row
	if native {
		rows = stacktrace.NativeRows(st, c.Prefs)
	} else {
		rows = stacktrace.Rows(st, c.Prefs)
	}

	width := stacktrace.MaxRelativeAddressLength(st.Frames, c.Images)
	view.Rows = make([]FrameRow, 0, len(rows))
	for _, row := range rows {
		fr := FrameRow{Row: row}
		if row.Frame != nil {
			fr.Function = stacktrace.DisplayFunction(row.Frame, c.Prefs)
			if row.Frame.InstructionAddr != "" {
				fr.Address = stacktrace.DisplayAddress(row.Frame, c.Images, width, c.Prefs)
			}
			if native && row.Frame.Package != "" {
				fr.Package = utils.TrimPackage(row.Frame.Package)
			}
		}
		view.Rows = append(view.Rows, fr)
	}
	return view
}
