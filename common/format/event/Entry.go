package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type EntryType string

const (
	EntryException   EntryType = "exception"
	EntryThreads     EntryType = "threads"
	EntryStacktrace  EntryType = "stacktrace"
	EntryMessage     EntryType = "message"
	EntryDebugMeta   EntryType = "debugmeta"
	EntryRequest     EntryType = "request"
	EntryBreadcrumbs EntryType = "breadcrumbs"
)

// entryDecoders maps an entry type to a constructor of its typed payload.
var entryDecoders = map[EntryType]func() interface{}{
	EntryException:   func() interface{} { return &Exception{} },
	EntryThreads:     func() interface{} { return &Threads{} },
	EntryStacktrace:  func() interface{} { return &Stacktrace{} },
	EntryMessage:     func() interface{} { return &Message{} },
	EntryDebugMeta:   func() interface{} { return &DebugMeta{} },
	EntryRequest:     func() interface{} { return &Request{} },
	EntryBreadcrumbs: func() interface{} { return &Breadcrumbs{} },
}

// KnownEntryTypes lists every entry type with a typed decoder, sorted.
func KnownEntryTypes() []EntryType {
	types := make([]EntryType, 0, len(entryDecoders))
	for t := range entryDecoders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Entry is one typed section of an event. Data holds a pointer to the typed payload for known
// types and the raw JSON for anything else. A payload that fails to decode keeps its raw JSON
// and records the failure in DecodeErr, so one malformed section never rejects the event.
type Entry struct {
	Type      EntryType
	Data      interface{}
	DecodeErr error
}

type rawEntry struct {
	Type EntryType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Type = raw.Type
	e.Data = raw.Data
	e.DecodeErr = nil

	factory, ok := entryDecoders[raw.Type]
	if !ok {
		return nil
	}
	v := factory()
	if len(raw.Data) != 0 && !bytes.Equal(raw.Data, []byte("null")) {
		if err := json.Unmarshal(raw.Data, v); err != nil {
			e.DecodeErr = fmt.Errorf("decode %s entry: %w", raw.Type, err)
			return nil
		}
	}
	e.Data = v
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type EntryType   `json:"type"`
		Data interface{} `json:"data"`
	}{e.Type, e.Data})
}
