package pipeline

import (
	"context"
	"strings"
	"testing"

	"crashview/common/format/event"
	"crashview/common/stacktrace"
)

func intp(n int) *int { return &n }

func javaReport() *event.Report {
	ev := &event.Event{ID: "e1", Platform: "java", Entries: []event.Entry{
		{Type: event.EntryException, Data: &event.Exception{Values: []event.ExceptionValue{{
			Type:  "IllegalStateException",
			Value: "boom\nat line two",
			Stacktrace: &event.Stacktrace{Frames: []event.Frame{
				{Module: "com.example.Main", Function: "onCreate", Filename: "Main.java", LineNo: intp(42), InApp: true},
				{Module: "com.example.Util", Function: "check", Filename: "Util.java", LineNo: intp(7), InApp: true},
				{Module: "java.lang.Objects", Function: "requireNonNull", Filename: "Objects.java", LineNo: intp(3)},
			}},
		}}}},
	}}
	return event.NewReport(ev, "2024-01-01T00:00:00Z")
}

func TestTitle(t *testing.T) {
	r := javaReport()
	(&Title{}).Process(context.Background(), r)
	if r.Title != "IllegalStateException: boom" {
		t.Errorf("title = %q", r.Title)
	}

	msg := event.NewReport(&event.Event{Entries: []event.Entry{
		{Type: event.EntryMessage, Data: &event.Message{Formatted: "disk full"}},
	}}, "")
	(&Title{}).Process(context.Background(), msg)
	if msg.Title != "disk full" {
		t.Errorf("message title = %q", msg.Title)
	}

	empty := event.NewReport(&event.Event{}, "")
	(&Title{}).Process(context.Background(), empty)
	if empty.Title != "<unlabeled event>" {
		t.Errorf("empty title = %q", empty.Title)
	}
}

func TestSignatureAndSource(t *testing.T) {
	r := javaReport()
	(&SignatureAndSource{}).Process(context.Background(), r)
	if r.Signature != "check" || r.Culprit != "com.example.Util in check" {
		t.Errorf("signature = %q, culprit = %q", r.Signature, r.Culprit)
	}

	system := event.NewReport(&event.Event{Platform: "python", Entries: []event.Entry{
		{Type: event.EntryStacktrace, Data: &event.Stacktrace{Frames: []event.Frame{
			{Filename: "a.py", Function: "outer"},
			{Filename: "b.py", Function: "inner"},
		}}},
	}}, "")
	(&SignatureAndSource{}).Process(context.Background(), system)
	if system.Culprit != "b.py in inner" {
		t.Errorf("culprit without in-app frames = %q", system.Culprit)
	}
}

func TestRx(t *testing.T) {
	r := javaReport()
	rx := NewRx([]string{`^com\.example\.Util$`, `([`})
	if len(rx.Regexps) != 1 {
		t.Fatalf("invalid expressions must be dropped, got %d", len(rx.Regexps))
	}
	if !rx.Process(context.Background(), r) {
		t.Fatalf("Rx should stop the pipeline once it picked a frame")
	}
	if r.Signature != "onCreate" {
		t.Errorf("signature = %q", r.Signature)
	}

	all := NewRx([]string{`.*`})
	r = javaReport()
	if all.Process(context.Background(), r) || r.Signature != "" {
		t.Errorf("fully blacklisted trace must fall through, signature = %q", r.Signature)
	}

	if NewRx(nil).Process(context.Background(), javaReport()) {
		t.Errorf("empty blacklist must fall through")
	}
}

func TestRunStopsAtRx(t *testing.T) {
	r := javaReport()
	Run(context.Background(), []Stage{
		&Title{},
		NewRx([]string{`^check$`}),
		&SignatureAndSource{},
	}, r)
	if r.Signature != "onCreate" {
		t.Errorf("SignatureAndSource must not override Rx, got %q", r.Signature)
	}
}

func TestThreadResolutionAndRaw(t *testing.T) {
	r := javaReport()
	r.Entries = append(r.Entries, event.Entry{Type: event.EntryThreads, Data: &event.Threads{Values: []event.Thread{
		{ID: "3", Name: "worker"},
		{ID: "1", Name: "main", Crashed: true},
	}}})

	(&ThreadResolution{}).Process(context.Background(), r)
	if r.ActiveThread != "1" {
		t.Errorf("active thread = %q", r.ActiveThread)
	}

	(&RawStacktrace{}).Process(context.Background(), r)
	if !strings.HasPrefix(r.RawStacktrace, "IllegalStateException: boom") ||
		!strings.Contains(r.RawStacktrace, "    at java.lang.Objects.requireNonNull(Objects.java:3)") {
		t.Errorf("raw stacktrace = %q", r.RawStacktrace)
	}
}

type noMappings struct{}

func (noMappings) FindMappingFiles(context.Context, string) ([]stacktrace.MappingFile, error) {
	return nil, nil
}

func TestProguardStage(t *testing.T) {
	r := javaReport()
	r.Entries = append(r.Entries, event.Entry{Type: event.EntryDebugMeta, Data: &event.DebugMeta{
		Images: []event.DebugImage{{Type: event.ImageTypeProguard, UUID: "m-1"}},
	}})
	(&Proguard{Detector: stacktrace.NewProguardDetector(noMappings{})}).Process(context.Background(), r)
	if len(r.Diagnostics) != 1 || r.Diagnostics[0].Type != event.ErrProguardMissingMapping {
		t.Errorf("diagnostics = %+v", r.Diagnostics)
	}
}
