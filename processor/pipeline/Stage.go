// Package pipeline contains objects for processing by a conveyor
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"crashview/common/format/event"
	"crashview/common/stacktrace"
)

// Pipeline stage
type Stage interface {
	//Process the report
	//If return true then pipeline stop
	Process(ctx context.Context, report *event.Report) bool
}

// Run passes the report through the stages until one of them stops the pipeline.
func Run(ctx context.Context, stages []Stage, report *event.Report) {
	for _, stage := range stages {
		if stage.Process(ctx, report) {
			return
		}
	}
}

// Title names the report after its first exception, or its message.
type Title struct{}

func (t *Title) Process(_ context.Context, report *event.Report) bool {
	if report.Title != "" {
		return false
	}
	if exc := report.Exception(); exc != nil && len(exc.Values) > 0 {
		v := exc.Values[0]
		report.Title = v.Type
		if v.Value != "" {
			report.Title += ": " + firstLine(v.Value)
		}
		if report.Title != "" {
			return false
		}
	}
	if msg := report.Message(); msg != nil {
		report.Title = firstLine(msg.Formatted)
		if report.Title == "" {
			report.Title = firstLine(msg.Message)
		}
	}
	if report.Title == "" {
		report.Title = "<unlabeled event>"
	}
	return false
}

// ThreadResolution records the thread whose trace represents the report.
type ThreadResolution struct{}

func (t *ThreadResolution) Process(_ context.Context, report *event.Report) bool {
	if trace := stacktrace.ResolveTrace(&report.Event, false); trace.Thread != nil {
		report.ActiveThread = trace.Thread.ID
	}
	return false
}

// RawStacktrace stores the clipboard text of the authoritative trace.
type RawStacktrace struct{}

func (r *RawStacktrace) Process(_ context.Context, report *event.Report) bool {
	report.RawStacktrace = stacktrace.RawTraceContent(&report.Event, false)
	return false
}

// Proguard appends ProGuard diagnostics for Java reports.
type Proguard struct {
	Detector *stacktrace.ProguardDetector
}

func (p *Proguard) Process(ctx context.Context, report *event.Report) bool {
	if p.Detector == nil {
		return false
	}
	report.Diagnostics = append(report.Diagnostics, p.Detector.Check(ctx, &report.Event)...)
	return false
}

// SignatureAndSource derives signature and culprit from the innermost in-app frame, or the
// innermost frame when no frame is in-app.
type SignatureAndSource struct{}

func (m *SignatureAndSource) Process(_ context.Context, report *event.Report) bool {
	frames := stacktrace.ResolveTrace(&report.Event, false).Frames(false)
	if frame := relevantFrame(frames, nil); frame != nil {
		setSignature(report, frame)
	}
	return false
}

// relevantFrame walks frames innermost first, preferring in-app frames. Frames for which skip
// returns true are never picked.
func relevantFrame(frames []event.Frame, skip func(*event.Frame) bool) *event.Frame {
	var fallback *event.Frame
	for i := len(frames) - 1; i >= 0; i-- {
		frame := &frames[i]
		if skip != nil && skip(frame) {
			continue
		}
		if frame.InApp {
			return frame
		}
		if fallback == nil {
			fallback = frame
		}
	}
	return fallback
}

func setSignature(report *event.Report, frame *event.Frame) {
	function := frame.Function
	if function == "" {
		function = frame.RawFunction
	}
	if function == "" {
		function = frame.SymbolAddr
	}
	if function == "" {
		function = "?"
	}
	report.Signature = function

	location := frame.Module
	if location == "" {
		location = frame.Filename
	}
	if location == "" {
		report.Culprit = function
		return
	}
	report.Culprit = fmt.Sprintf("%s in %s", location, function)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
