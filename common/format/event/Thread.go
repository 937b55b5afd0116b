package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ThreadID identifies a thread. Payloads carry it either as a JSON number or a string,
// both decode to the same textual id.
type ThreadID string

func (id *ThreadID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ThreadID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("thread id: %w", err)
	}
	*id = ThreadID(n.String())
	return nil
}

// LockType is a bit flag describing how a thread relates to a held monitor.
type LockType int

const (
	LockLocked   LockType = 1
	LockWaiting  LockType = 2
	LockSleeping LockType = 4
	LockBlocked  LockType = 8
)

type Lock struct {
	Type        LockType `json:"type"`
	Address     string   `json:"address,omitempty"`
	PackageName string   `json:"package_name,omitempty"`
	ClassName   string   `json:"class_name,omitempty"`
	ThreadID    ThreadID `json:"thread_id,omitempty"`
}

type Thread struct {
	ID            ThreadID        `json:"id"`
	Name          string          `json:"name,omitempty"`
	Crashed       bool            `json:"crashed"`
	Current       bool            `json:"current"`
	State         string          `json:"state,omitempty"`
	HeldLocks     map[string]Lock `json:"heldLocks,omitempty"`
	Stacktrace    *Stacktrace     `json:"stacktrace,omitempty"`
	RawStacktrace *Stacktrace     `json:"rawStacktrace,omitempty"`
}

type Threads struct {
	Values []Thread `json:"values"`
}
