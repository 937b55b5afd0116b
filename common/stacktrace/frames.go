package stacktrace

import (
	"fmt"

	"crashview/common/format/event"
)

type RowKind string

const (
	RowFrame   RowKind = "frame"
	RowOmitted RowKind = "omitted"
)

// Row is one line of a rendered frame list: a frame, or the marker standing in for a range
// of frames the server dropped.
type Row struct {
	Kind          RowKind           `json:"kind"`
	Index         int               `json:"index"`
	Frame         *event.Frame      `json:"frame,omitempty"`
	NextFrame     *event.Frame      `json:"-"`
	TimesRepeated int               `json:"timesRepeated,omitempty"`
	Registers     map[string]string `json:"registers,omitempty"`
	IsExpanded    bool              `json:"isExpanded,omitempty"`
	Omitted       *[2]int           `json:"omitted,omitempty"`
	Message       string            `json:"message,omitempty"`

	// Native collapsible runs.
	HiddenFrameCount int  `json:"hiddenFrameCount,omitempty"`
	IsRunExpanded    bool `json:"isRunExpanded,omitempty"`
	IsSubFrame       bool `json:"isSubFrame,omitempty"`
}

// frameList is a stack trace's frames with the server-omitted range applied.
type frameList struct {
	frames       []event.Frame
	firstOmitted int
	lastOmitted  int
}

func newFrameList(st *event.Stacktrace) frameList {
	l := frameList{frames: st.Frames, firstOmitted: -1, lastOmitted: -1}
	if st.FramesOmitted != nil {
		l.firstOmitted, l.lastOmitted = st.FramesOmitted[0], st.FramesOmitted[1]
	}
	return l
}

// omitted reports whether frame i lies inside the dropped range. The first index of the range
// stays renderable; the marker follows it.
func (l frameList) omitted(i int) bool {
	return l.firstOmitted >= 0 && i > l.firstOmitted && i <= l.lastOmitted
}

// next returns the following renderable frame.
func (l frameList) next(i int) *event.Frame {
	for j := i + 1; j < len(l.frames); j++ {
		if !l.omitted(j) {
			return &l.frames[j]
		}
	}
	return nil
}

func (l frameList) omittedRow() Row {
	return Row{
		Kind:    RowOmitted,
		Index:   l.firstOmitted,
		Omitted: &[2]int{l.firstOmitted, l.lastOmitted},
		Message: fmt.Sprintf("Frames %d until %d were omitted and not available.", l.firstOmitted, l.lastOmitted),
	}
}

// lastInAppIndex is the frame expanded by default: the innermost in-app frame, or the last one.
func (l frameList) lastInAppIndex() int {
	idx := -1
	for i := range l.frames {
		if l.frames[i].InApp && !l.omitted(i) {
			idx = i
		}
	}
	if idx == -1 {
		idx = len(l.frames) - 1
	}
	return idx
}

// IsRepeatedFrame reports whether frame is a recursion repeat of next.
func IsRepeatedFrame(frame, next *event.Frame) bool {
	if frame == nil || next == nil {
		return false
	}
	return intPtrEqual(frame.LineNo, next.LineNo) &&
		frame.InstructionAddr == next.InstructionAddr &&
		frame.Package == next.Package &&
		frame.Module == next.Module &&
		frame.Function == next.Function
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IsFrameUsedForGrouping reports whether the current grouping level forces the frame visible.
func IsFrameUsedForGrouping(frame *event.Frame, level *int) bool {
	if frame.MinGroupingLevel == nil || level == nil {
		return false
	}
	return *frame.MinGroupingLevel <= *level
}

// FrameIsVisible decides whether a non-repeated frame gets its own row.
func FrameIsVisible(frame, next *event.Frame, prefs DisplayPreferences) bool {
	return prefs.IncludeSystemFrames() ||
		frame.InApp ||
		(next != nil && next.InApp) ||
		(!frame.InApp && next == nil) ||
		IsFrameUsedForGrouping(frame, prefs.GroupingCurrentLevel)
}

// Rows filters, collapses and orders a stack trace's frames for display.
//
// Frames are walked in payload order (oldest first). Recursion repeats fold into the
// TimesRepeated counter of the next rendered frame; system frames are hidden unless the full
// view is on or an in-app or grouping frame needs them as context. Registers go to the
// innermost rendered frame. MaxDepth keeps the innermost rows, NewestFirst reverses.
func Rows(st *event.Stacktrace, prefs DisplayPreferences) []Row {
	if st == nil {
		return nil
	}
	l := newFrameList(st)
	expandIdx := l.lastInAppIndex()

	var rows []Row
	repeats := 0
	for i := range l.frames {
		if l.omitted(i) {
			continue
		}
		frame := &l.frames[i]
		next := l.next(i)
		repeated := IsRepeatedFrame(frame, next)
		if repeated {
			repeats++
		}

		if FrameIsVisible(frame, next, prefs) && !repeated {
			rows = append(rows, Row{
				Kind:          RowFrame,
				Index:         i,
				Frame:         frame,
				NextFrame:     next,
				TimesRepeated: repeats,
				IsExpanded:    i == expandIdx,
			})
			repeats = 0
		} else if !repeated {
			repeats = 0
		}

		if i == l.firstOmitted {
			rows = append(rows, l.omittedRow())
		}
	}

	return finishRows(rows, st.Registers, prefs)
}

func finishRows(rows []Row, registers map[string]string, prefs DisplayPreferences) []Row {
	if len(registers) != 0 {
		for i := len(rows) - 1; i >= 0; i-- {
			if rows[i].Kind == RowFrame {
				rows[i].Registers = registers
				break
			}
		}
	}
	if prefs.MaxDepth > 0 && len(rows) > prefs.MaxDepth {
		rows = rows[len(rows)-prefs.MaxDepth:]
	}
	if prefs.NewestFirst {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows
}
