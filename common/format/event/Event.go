package event

import (
	"encoding/json"
	"errors"
)

const (
	ErrProguardMissingMapping                 = "proguard_missing_mapping"
	ErrProguardPotentiallyMisconfiguredPlugin = "proguard_potentially_misconfigured_plugin"
)

type SDK struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type EventError struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

type Event struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title,omitempty"`
	Platform     string                 `json:"platform"`
	SDK          *SDK                   `json:"sdk,omitempty"`
	Contexts     map[string]interface{} `json:"contexts,omitempty"`
	Tags         []Tag                  `json:"tags,omitempty"`
	Errors       []EventError           `json:"errors,omitempty"`
	Entries      []Entry                `json:"entries"`
	DateReceived string                 `json:"dateReceived,omitempty"`
}

// Parse decodes an event payload.
func Parse(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if len(ev.Entries) == 0 && ev.ID == "" && ev.Platform == "" {
		return nil, errors.New("payload is not an event")
	}
	return &ev, nil
}

// Entry returns the first entry of the given type.
func (e *Event) Entry(t EntryType) *Entry {
	if e == nil {
		return nil
	}
	for i := range e.Entries {
		if e.Entries[i].Type == t {
			return &e.Entries[i]
		}
	}
	return nil
}

func (e *Event) Exception() *Exception {
	if entry := e.Entry(EntryException); entry != nil {
		if v, ok := entry.Data.(*Exception); ok {
			return v
		}
	}
	return nil
}

func (e *Event) Threads() *Threads {
	if entry := e.Entry(EntryThreads); entry != nil {
		if v, ok := entry.Data.(*Threads); ok {
			return v
		}
	}
	return nil
}

func (e *Event) Stacktrace() *Stacktrace {
	if entry := e.Entry(EntryStacktrace); entry != nil {
		if v, ok := entry.Data.(*Stacktrace); ok {
			return v
		}
	}
	return nil
}

func (e *Event) Message() *Message {
	if entry := e.Entry(EntryMessage); entry != nil {
		if v, ok := entry.Data.(*Message); ok {
			return v
		}
	}
	return nil
}

func (e *Event) DebugImages() []DebugImage {
	if entry := e.Entry(EntryDebugMeta); entry != nil {
		if v, ok := entry.Data.(*DebugMeta); ok {
			return v.Images
		}
	}
	return nil
}

// HasError reports whether the event already records a processing error of the given type.
func (e *Event) HasError(errType string) bool {
	if e == nil {
		return false
	}
	for _, err := range e.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}
