package render

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"crashview/common/format/event"
	"crashview/common/stacktrace"
)

func intp(n int) *int { return &n }

func newRenderer() (*Renderer, *test.Hook) {
	logger, hook := test.NewNullLogger()
	r := NewRenderer()
	r.Logger = logger
	return r, hook
}

func TestEveryKnownEntryTypeHasRenderer(t *testing.T) {
	r := NewRenderer()
	for _, typ := range event.KnownEntryTypes() {
		if !r.Has(typ) {
			t.Errorf("no renderer registered for %q", typ)
		}
	}
}

func TestRenderIsolatesFailures(t *testing.T) {
	ev, err := event.Parse([]byte(`{
	  "id": "e1", "platform": "python",
	  "entries": [
	    {"type": "message", "data": {"formatted": "hello"}},
	    {"type": "breadcrumbs", "data": {"values": 12}},
	    {"type": "request", "data": {"url": "http://example.com"}},
	    {"type": "spans", "data": []}
	  ]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	r, hook := newRenderer()
	r.Register(event.EntryRequest, func(*Context, *event.Entry) (*Section, error) {
		panic("boom")
	})

	sections := r.Render(ev, stacktrace.DefaultPreferences())
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %+v", sections)
	}
	if sections[0].Type != event.EntryMessage || sections[0].Error != "" {
		t.Errorf("message section = %+v", sections[0])
	}
	if sections[1].Type != event.EntryBreadcrumbs || sections[1].Error != ErrorMessage {
		t.Errorf("breadcrumbs section = %+v", sections[1])
	}
	if sections[2].Type != event.EntryRequest || sections[2].Error != ErrorMessage {
		t.Errorf("request section = %+v", sections[2])
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != log.ErrorLevel {
		t.Errorf("panic should be logged, got %+v", entry)
	}
}

func TestRenderReportsRendererError(t *testing.T) {
	ev := &event.Event{ID: "e1", Entries: []event.Entry{{Type: event.EntryMessage, Data: &event.Message{}}}}
	r, _ := newRenderer()
	r.Register(event.EntryMessage, func(*Context, *event.Entry) (*Section, error) {
		return nil, errors.New("bad message")
	})
	sections := r.Render(ev, stacktrace.DefaultPreferences())
	if len(sections) != 1 || sections[0].Error != ErrorMessage {
		t.Fatalf("sections = %+v", sections)
	}
}

const javaThreads = `{
  "id": "e2", "platform": "java",
  "entries": [
    {"type": "exception", "data": {"values": [
      {"type": "IllegalStateException", "value": "boom", "threadId": 1,
       "stacktrace": {"frames": [
         {"function": "run", "module": "java.lang.Thread", "filename": "Thread.java", "lineNo": 10},
         {"function": "onCreate", "module": "com.example.Main", "filename": "Main.java", "lineNo": 42, "inApp": true}
       ]}}
    ]}},
    {"type": "threads", "data": {"values": [
      {"id": 1, "name": "main", "crashed": true, "state": "BLOCKED",
       "heldLocks": {"0x01": {"type": 8, "address": "0x01", "package_name": "java.lang", "class_name": "Object", "thread_id": 2}}},
      {"id": 2, "name": "worker", "stacktrace": {"frames": [{"function": "park", "lineNo": 1}]}}
    ]}}
  ]
}`

func TestThreadsSectionResolvesException(t *testing.T) {
	ev, err := event.Parse([]byte(javaThreads))
	if err != nil {
		t.Fatal(err)
	}
	r, _ := newRenderer()
	sections := r.Render(ev, stacktrace.DefaultPreferences())
	if len(sections) != 1 {
		t.Fatalf("exception section should be folded into threads: %+v", sections)
	}

	s := sections[0]
	if s.Type != event.EntryThreads || s.Thread == nil {
		t.Fatalf("threads section = %+v", s)
	}
	if s.Thread.ID != "1" || s.Thread.State != stacktrace.ThreadBlocked || len(s.Thread.Threads) != 2 {
		t.Errorf("thread view = %+v", s.Thread)
	}
	if !strings.Contains(s.Thread.LockReason, "held by thread 2") {
		t.Errorf("lock reason = %q", s.Thread.LockReason)
	}
	if len(s.Exceptions) != 1 || s.Stacktrace != nil {
		t.Fatalf("expected the exception inside the thread, got %+v", s)
	}
	rows := s.Exceptions[0].Stacktrace.Rows
	if len(rows) != 2 || rows[0].Index != 1 || !rows[0].IsExpanded {
		t.Errorf("rows = %+v", rows)
	}
}

func TestThreadsSectionWithoutException(t *testing.T) {
	ev := &event.Event{ID: "e3", Platform: "java", Entries: []event.Entry{
		{Type: event.EntryThreads, Data: &event.Threads{Values: []event.Thread{
			{ID: "7", Name: "main", Stacktrace: &event.Stacktrace{Frames: []event.Frame{
				{Function: "main", LineNo: intp(3), InApp: true},
			}}},
		}}},
	}}
	r, _ := newRenderer()
	sections := r.Render(ev, stacktrace.DefaultPreferences())
	if len(sections) != 1 || sections[0].Title != "Stack Trace" {
		t.Fatalf("sections = %+v", sections)
	}
	st := sections[0].Stacktrace
	if st == nil || len(st.Rows) != 1 || st.Rows[0].Function != "main" {
		t.Fatalf("stacktrace = %+v", st)
	}
}

func TestExceptionSectionKeptForUnrelatedThread(t *testing.T) {
	ev := &event.Event{ID: "e4", Platform: "java", Entries: []event.Entry{
		{Type: event.EntryException, Data: &event.Exception{Values: []event.ExceptionValue{{
			Type: "E", ThreadID: "9", Stacktrace: &event.Stacktrace{Frames: []event.Frame{{Function: "f", InApp: true}}},
		}}}},
		{Type: event.EntryThreads, Data: &event.Threads{Values: []event.Thread{
			{ID: "1", Stacktrace: &event.Stacktrace{Frames: []event.Frame{{Function: "g"}}}},
		}}},
	}}
	r, _ := newRenderer()
	sections := r.Render(ev, stacktrace.DefaultPreferences())
	if len(sections) != 2 || sections[0].Type != event.EntryException || len(sections[0].Exceptions) != 1 {
		t.Fatalf("sections = %+v", sections)
	}
}

func TestNativeAddresses(t *testing.T) {
	ev := &event.Event{ID: "e5", Platform: "cocoa", Entries: []event.Entry{
		{Type: event.EntryStacktrace, Data: &event.Stacktrace{Frames: []event.Frame{
			{Function: "main", InstructionAddr: "0x1050", Package: "/usr/lib/libApp.dylib", InApp: true},
			{Function: "crash", InstructionAddr: "0x3000", InApp: true},
		}}},
		{Type: event.EntryDebugMeta, Data: &event.DebugMeta{Images: []event.DebugImage{
			{Type: "macho", ImageAddr: "0x1000", ImageSize: 0x100, CodeFile: "libApp.dylib"},
		}}},
	}}
	prefs := stacktrace.DefaultPreferences()
	prefs.NewestFirst = false
	r, _ := newRenderer()
	sections := r.Render(ev, prefs)
	if len(sections) != 2 {
		t.Fatalf("sections = %+v", sections)
	}
	rows := sections[0].Stacktrace.Rows
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Address != "0x50" || rows[0].Package != "libApp" {
		t.Errorf("resolved row = %+v", rows[0])
	}
	if rows[1].Address != "0x3000" {
		t.Errorf("unresolved row keeps its absolute address: %q", rows[1].Address)
	}

	prefs.ShowAbsoluteAddress = true
	rows = r.Render(ev, prefs)[0].Stacktrace.Rows
	if rows[0].Address != "0x1050" {
		t.Errorf("absolute address = %q", rows[0].Address)
	}
}

func TestRawView(t *testing.T) {
	ev, err := event.Parse([]byte(javaThreads))
	if err != nil {
		t.Fatal(err)
	}
	prefs := stacktrace.DefaultPreferences()
	prefs.View = stacktrace.ViewRaw
	r, _ := newRenderer()
	sections := r.Render(ev, prefs)
	raw := sections[0].Exceptions[0].Stacktrace.Raw
	want := "IllegalStateException: boom\n" +
		"    at com.example.Main.onCreate(Main.java:42)\n" +
		"    at java.lang.Thread.run(Thread.java:10)"
	if raw != want {
		t.Errorf("raw =\n%s\nwant\n%s", raw, want)
	}

	data, err := json.Marshal(sections)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"rows"`) {
		t.Errorf("raw view must not carry rows: %s", data)
	}
}
