package event

import "encoding/json"

// Report is an event after processing. The derived fields are filled by the processor pipeline.
type Report struct {
	Event
	Culprit       string       `json:"culprit"`
	Signature     string       `json:"signature"`
	GroupID       string       `json:"group_id,omitempty"`
	ActiveThread  ThreadID     `json:"active_thread,omitempty"`
	Diagnostics   []EventError `json:"diagnostics,omitempty"`
	RawStacktrace string       `json:"raw_stacktrace,omitempty"`
	DateAdded     string       `json:"date_added"`

	// Payload is the event as received, including fields the model does not declare.
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewReport(ev *Event, dateAdded string) *Report {
	return &Report{
		Event:     *ev,
		DateAdded: dateAdded,
	}
}
