package stacktrace

import (
	"crashview/common/format/event"
)

// NativeRows renders native frames with collapsible runs of system frames.
//
// A boundary is a visible, non-repeated, non-in-app frame. It carries the number of hidden
// system frames since the previous boundary; expanding it (prefs.ExpandedRuns) reveals those
// frames as sub-frames. Omitted frames never join a run.
func NativeRows(st *event.Stacktrace, prefs DisplayPreferences) []Row {
	if st == nil {
		return nil
	}
	l := newFrameList(st)
	expandIdx := l.lastInAppIndex()
	repeated := l.repeatedIndices()
	counts := l.hiddenFrameCounts(repeated, prefs)
	hidden := l.hiddenFrameIndices(repeated, counts, prefs.ExpandedRuns)

	var rows []Row
	repeats := 0
	for i := range l.frames {
		if l.omitted(i) {
			continue
		}
		frame := &l.frames[i]
		next := l.next(i)
		if repeated[i] {
			repeats++
		}

		if (FrameIsVisible(frame, next, prefs) && !repeated[i]) || hidden[i] {
			row := Row{
				Kind:          RowFrame,
				Index:         i,
				Frame:         frame,
				NextFrame:     next,
				TimesRepeated: repeats,
				IsExpanded:    i == expandIdx,
				IsSubFrame:    hidden[i],
			}
			if n, ok := counts[i]; ok {
				row.HiddenFrameCount = n
				row.IsRunExpanded = prefs.ExpandedRuns[i]
			}
			rows = append(rows, row)
			repeats = 0
		} else if !repeated[i] {
			repeats = 0
		}

		if i == l.firstOmitted {
			rows = append(rows, l.omittedRow())
		}
	}

	return finishRows(rows, st.Registers, prefs)
}

func (l frameList) repeatedIndices() map[int]bool {
	repeated := make(map[int]bool)
	for i := range l.frames {
		if l.omitted(i) {
			continue
		}
		if IsRepeatedFrame(&l.frames[i], l.next(i)) {
			repeated[i] = true
		}
	}
	return repeated
}

// hiddenFrameCounts maps every boundary frame index to the size of the hidden run before it.
func (l frameList) hiddenFrameCounts(repeated map[int]bool, prefs DisplayPreferences) map[int]int {
	counts := make(map[int]int)
	count := 0
	for i := range l.frames {
		if l.omitted(i) {
			continue
		}
		frame := &l.frames[i]
		if FrameIsVisible(frame, l.next(i), prefs) && !repeated[i] && !frame.InApp {
			counts[i] = count
			count = 0
		} else if !repeated[i] && !frame.InApp {
			count++
		}
	}
	return counts
}

// hiddenFrameIndices walks backward from each expanded boundary collecting its hidden run,
// skipping repeats and omitted frames.
func (l frameList) hiddenFrameIndices(repeated map[int]bool, counts map[int]int, expanded map[int]bool) map[int]bool {
	hidden := make(map[int]bool)
	for idx, on := range expanded {
		if !on {
			continue
		}
		remaining := counts[idx]
		for j := idx - 1; remaining > 0 && j >= 0; j-- {
			if repeated[j] || l.omitted(j) {
				continue
			}
			hidden[j] = true
			remaining--
		}
	}
	return hidden
}
