package stacktrace

import (
	"testing"

	"crashview/common/format/event"
)

func nativeTrace() *event.Stacktrace {
	return &event.Stacktrace{Frames: []event.Frame{
		system("start", 1),
		system("dispatch", 2),
		system("invoke", 3),
		system("call", 4),
		inApp("handler", 5),
		system("objc_msgSend", 6),
		system("abort", 7),
		system("raise", 8),
	}}
}

func TestNativeRowsCollapsed(t *testing.T) {
	rows := NativeRows(nativeTrace(), DisplayPreferences{})
	if got := rowIndices(rows); !equalInts(got, []int{3, 4, 7}) {
		t.Fatalf("row indices = %v", got)
	}
	if rows[0].HiddenFrameCount != 3 || rows[2].HiddenFrameCount != 2 {
		t.Fatalf("hidden counts = %d, %d", rows[0].HiddenFrameCount, rows[2].HiddenFrameCount)
	}
	if rows[1].HiddenFrameCount != 0 {
		t.Fatalf("in-app frames are never boundaries: %+v", rows[1])
	}
}

func TestNativeRowsExpanded(t *testing.T) {
	prefs := DisplayPreferences{}.WithExpandedRun(3, true)
	rows := NativeRows(nativeTrace(), prefs)
	if got := rowIndices(rows); !equalInts(got, []int{0, 1, 2, 3, 4, 7}) {
		t.Fatalf("row indices = %v", got)
	}
	for _, r := range rows[:3] {
		if !r.IsSubFrame {
			t.Fatalf("frame %d should be a revealed sub frame", r.Index)
		}
	}
	if !rows[3].IsRunExpanded || rows[3].IsSubFrame {
		t.Fatalf("boundary row = %+v", rows[3])
	}
	if rows[5].IsRunExpanded {
		t.Fatalf("second run should stay collapsed")
	}
}

func TestNativeRowsExpandedSkipsRepeats(t *testing.T) {
	st := nativeTrace()
	st.Frames[1] = st.Frames[2]

	collapsed := NativeRows(st, DisplayPreferences{})
	if collapsed[0].Index != 3 || collapsed[0].HiddenFrameCount != 2 {
		t.Fatalf("repeats must not count as hidden frames: %+v", collapsed[0])
	}

	rows := NativeRows(st, DisplayPreferences{}.WithExpandedRun(3, true))
	if got := rowIndices(rows); !equalInts(got, []int{0, 2, 3, 4, 7}) {
		t.Fatalf("row indices = %v", got)
	}
	if rows[1].TimesRepeated != 1 {
		t.Fatalf("TimesRepeated = %d, want 1", rows[1].TimesRepeated)
	}
}

func TestNativeRowsIgnoresOmittedFrames(t *testing.T) {
	st := nativeTrace()
	st.FramesOmitted = &[2]int{0, 1}

	rows := NativeRows(st, DisplayPreferences{}.WithExpandedRun(3, true))
	if got := rowIndices(rows); !equalInts(got, []int{0, 0, 2, 3, 4, 7}) {
		t.Fatalf("row indices = %v", got)
	}
	if rows[1].Kind != RowOmitted {
		t.Fatalf("expected omitted marker after frame 0, got %+v", rows[1])
	}
	if rows[3].HiddenFrameCount != 2 {
		t.Fatalf("hidden count = %d, want 2", rows[3].HiddenFrameCount)
	}
}

func TestWithExpandedRunCopies(t *testing.T) {
	base := DisplayPreferences{}.WithExpandedRun(1, true)
	other := base.WithExpandedRun(2, true)
	if base.ExpandedRuns[2] {
		t.Fatalf("WithExpandedRun mutated its receiver")
	}
	if !other.ExpandedRuns[1] || !other.ExpandedRuns[2] {
		t.Fatalf("expanded runs = %v", other.ExpandedRuns)
	}
}
