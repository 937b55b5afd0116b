package stacktrace

import (
	"testing"

	"crashview/common/format/event"
)

func TestParseAddress(t *testing.T) {
	tests := map[string]uint64{
		"0x1050":                0x1050,
		"1050":                  0x1050,
		"0X1f":                  0x1f,
		"0x12zz":                0x12,
		"zz":                    0,
		"":                      0,
		"0x":                    0,
		"0xfffffffffffffffffff": 0,
	}
	for in, want := range tests {
		if got := ParseAddress(in); got != want {
			t.Errorf("ParseAddress(%q) = %#x, want %#x", in, got, want)
		}
	}
}

func TestFindImageForAddress(t *testing.T) {
	images := []event.DebugImage{
		{Type: "macho", ImageAddr: "0x1000", ImageSize: 0x100, CodeFile: "app"},
		{Type: "macho", ImageAddr: "0x4000", ImageSize: 0x1000, CodeFile: "lib"},
	}

	tests := []struct {
		name string
		addr uint64
		mode string
		want string
	}{
		{"inside", 0x1050, "", "app"},
		{"start inclusive", 0x1000, "abs", "app"},
		{"end exclusive", 0x1100, "", ""},
		{"outside", 0x2000, "", ""},
		{"relative index", 0x10, "rel:1", "lib"},
		{"relative image start", 0x0, "rel:1", "lib"},
		{"absolute zero", 0x0, "", ""},
		{"relative out of range", 0x10, "rel:5", ""},
		{"relative garbage", 0x10, "rel:x", ""},
		{"unknown mode", 0x1050, "sym", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindImageForAddress(images, tt.addr, tt.mode)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no image, got %+v", got)
				}
				return
			}
			if got == nil || got.CodeFile != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, got)
			}
		})
	}
}

func TestMaxRelativeAddressLength(t *testing.T) {
	images := []event.DebugImage{
		{ImageAddr: "0x1000", ImageSize: 0x100},
		{ImageAddr: "0x2000", ImageSize: 0x1000},
	}
	frames := []event.Frame{
		{InstructionAddr: "0x1050"},
		{InstructionAddr: "0x10ff"},
		{InstructionAddr: "0x9000"},
		{InstructionAddr: "0x2abc", AddrMode: "rel:1"},
		{InstructionAddr: "not-an-address"},
	}
	if got := MaxRelativeAddressLength(frames, images); got != 3 {
		t.Fatalf("MaxRelativeAddressLength = %d, want 3", got)
	}
	if got := MaxRelativeAddressLength(frames, nil); got != 0 {
		t.Fatalf("MaxRelativeAddressLength without images = %d, want 0", got)
	}
}

func TestDisplayAddress(t *testing.T) {
	images := []event.DebugImage{{ImageAddr: "0x1000", ImageSize: 0x100}}
	frame := &event.Frame{InstructionAddr: "0x1050"}

	if got := DisplayAddress(frame, images, 4, DisplayPreferences{}); got != "0x0050" {
		t.Fatalf("relative address = %q", got)
	}
	if got := DisplayAddress(frame, images, 4, DisplayPreferences{ShowAbsoluteAddress: true}); got != "0x1050" {
		t.Fatalf("absolute address = %q", got)
	}
	orphan := &event.Frame{InstructionAddr: "0x9999"}
	if got := DisplayAddress(orphan, images, 4, DisplayPreferences{}); got != "0x9999" {
		t.Fatalf("orphan address = %q", got)
	}
}

func TestDisplayFunction(t *testing.T) {
	frame := &event.Frame{Function: "run", RawFunction: "void Worker::run(int)", SymbolAddr: "0x10"}
	if got := DisplayFunction(frame, DisplayPreferences{}); got != "run" {
		t.Fatalf("DisplayFunction = %q", got)
	}
	if got := DisplayFunction(frame, DisplayPreferences{ShowFullFunctionName: true}); got != "void Worker::run(int)" {
		t.Fatalf("DisplayFunction full = %q", got)
	}
	if got := DisplayFunction(&event.Frame{SymbolAddr: "0x10"}, DisplayPreferences{}); got != "0x10" {
		t.Fatalf("DisplayFunction symbol = %q", got)
	}
}
