package event

import (
	"encoding/json"
	"fmt"
)

// ContextLine is one `[lineNo, text]` pair of the source context around a frame.
type ContextLine struct {
	Line int
	Text string
}

func (c *ContextLine) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("context line: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Line); err != nil {
		return fmt.Errorf("context line number: %w", err)
	}
	// source text may be null for lines the server could not fetch
	var text *string
	if err := json.Unmarshal(pair[1], &text); err != nil {
		return fmt.Errorf("context line text: %w", err)
	}
	if text != nil {
		c.Text = *text
	}
	return nil
}

func (c ContextLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{c.Line, c.Text})
}

type Frame struct {
	Filename         string                 `json:"filename,omitempty"`
	AbsPath          string                 `json:"absPath,omitempty"`
	Module           string                 `json:"module,omitempty"`
	Function         string                 `json:"function,omitempty"`
	RawFunction      string                 `json:"rawFunction,omitempty"`
	LineNo           *int                   `json:"lineNo,omitempty"`
	ColNo            *int                   `json:"colNo,omitempty"`
	InstructionAddr  string                 `json:"instructionAddr,omitempty"`
	SymbolAddr       string                 `json:"symbolAddr,omitempty"`
	Package          string                 `json:"package,omitempty"`
	Platform         string                 `json:"platform,omitempty"`
	InApp            bool                   `json:"inApp"`
	AddrMode         string                 `json:"addrMode,omitempty"`
	MinGroupingLevel *int                   `json:"minGroupingLevel,omitempty"`
	Context          []ContextLine          `json:"context,omitempty"`
	Vars             map[string]interface{} `json:"vars,omitempty"`
}

// Line returns the frame line number and whether it is set to a non-negative value.
func (f *Frame) Line() (int, bool) {
	if f.LineNo == nil || *f.LineNo < 0 {
		return 0, false
	}
	return *f.LineNo, true
}

// Column returns the frame column and whether it is set to a non-negative value.
func (f *Frame) Column() (int, bool) {
	if f.ColNo == nil || *f.ColNo < 0 {
		return 0, false
	}
	return *f.ColNo, true
}

type Stacktrace struct {
	Frames          []Frame           `json:"frames"`
	FramesOmitted   *[2]int           `json:"framesOmitted,omitempty"`
	Registers       map[string]string `json:"registers,omitempty"`
	HasSystemFrames bool              `json:"hasSystemFrames"`
}

// Len is nil-safe.
func (s *Stacktrace) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}
