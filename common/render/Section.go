package render

import (
	"crashview/common/format/event"
	"crashview/common/stacktrace"
)

// Section is the display form of one event entry. Exactly one of the payload fields is set, or
// Error when the entry could not be rendered.
type Section struct {
	Type  event.EntryType `json:"type"`
	Title string          `json:"title"`
	Error string          `json:"error,omitempty"`

	Thread     *ThreadView     `json:"thread,omitempty"`
	Exceptions []ExceptionView `json:"exceptions,omitempty"`
	Stacktrace *StacktraceView `json:"stacktrace,omitempty"`
	Data       interface{}     `json:"data,omitempty"`
}

type FrameRow struct {
	stacktrace.Row
	Address  string `json:"address,omitempty"`
	Function string `json:"function,omitempty"`
	Package  string `json:"package,omitempty"`
}

// StacktraceView holds either the filtered frame rows or, in the raw view, the plain text.
type StacktraceView struct {
	Rows            []FrameRow `json:"rows,omitempty"`
	Raw             string     `json:"raw,omitempty"`
	HasSystemFrames bool       `json:"hasSystemFrames"`
}

type ExceptionView struct {
	Type       string           `json:"type"`
	Value      string           `json:"value,omitempty"`
	Module     string           `json:"module,omitempty"`
	Mechanism  *event.Mechanism `json:"mechanism,omitempty"`
	Stacktrace *StacktraceView  `json:"stacktrace,omitempty"`
}

type ThreadSummary struct {
	ID      event.ThreadID `json:"id"`
	Name    string         `json:"name,omitempty"`
	Crashed bool           `json:"crashed,omitempty"`
	Current bool           `json:"current,omitempty"`
}

// ThreadView is the active thread of a threads entry plus the list to pick from.
type ThreadView struct {
	ThreadSummary
	State      stacktrace.ThreadStateName `json:"state,omitempty"`
	LockReason string                     `json:"lockReason,omitempty"`
	Threads    []ThreadSummary            `json:"threads"`
}
